package renderer

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v2"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"github.com/vkngwrapper/extensions/v2/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v2/khr_portability_enumeration"
	"golang.org/x/exp/slog"
)

// InstanceBuilder records what the instance was created with.
type InstanceBuilder struct {
	AppName    string
	Validation bool
	Layers     []string
	Extensions []string

	// ProviderExtensions are the extensions the windowing layer needs for surfaces.
	ProviderExtensions []string

	BreakOnValidationError bool
}

type Instance struct {
	Handle     core1_0.Instance
	Builder    InstanceBuilder
	Extensions []string
	Layers     []string
}

func nameSet[V any](m map[string]V) map[string]struct{} {
	set := make(map[string]struct{}, len(m))
	for name := range m {
		set[name] = struct{}{}
	}
	return set
}

type instanceNames struct {
	extensions  []string
	layers      []string
	portability bool
}

func (b InstanceBuilder) resolveNames(availableExtensions, availableLayers map[string]struct{}) (instanceNames, error) {
	var names instanceNames

	required := append([]string{}, b.ProviderExtensions...)
	required = append(required, b.Extensions...)
	if b.Validation {
		required = append(required, ext_debug_utils.ExtensionName)
	}

	seen := make(map[string]struct{})
	for _, ext := range required {
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}

		if _, hasExt := availableExtensions[ext]; !hasExt {
			return names, errors.Wrapf(ErrMissingExtension, "instance extension %s", ext)
		}
		names.extensions = append(names.extensions, ext)
	}

	if _, enumerationSupported := availableExtensions[khr_portability_enumeration.ExtensionName]; enumerationSupported {
		if _, dup := seen[khr_portability_enumeration.ExtensionName]; !dup {
			names.extensions = append(names.extensions, khr_portability_enumeration.ExtensionName)
		}
		names.portability = true
	}

	if b.Validation {
		for _, layer := range b.Layers {
			if _, hasLayer := availableLayers[layer]; !hasLayer {
				return names, errors.Wrapf(ErrMissingLayer, "layer %s not available- install the LunarG Vulkan SDK", layer)
			}
			names.layers = append(names.layers, layer)
		}
	}

	return names, nil
}

func BuildInstance(loader core.Loader, b InstanceBuilder, logger *slog.Logger) (Instance, error) {
	extensions, res, err := loader.AvailableExtensions()
	if err != nil {
		return Instance{}, initError("instance", res, err)
	}

	layers, res, err := loader.AvailableLayers()
	if err != nil {
		return Instance{}, initError("instance", res, err)
	}

	names, err := b.resolveNames(nameSet(extensions), nameSet(layers))
	if err != nil {
		return Instance{}, initError("instance", core1_0.VKSuccess, err)
	}

	createInfo := core1_0.InstanceCreateInfo{
		ApplicationName:       b.AppName,
		ApplicationVersion:    common.CreateVersion(1, 0, 0),
		EngineName:            "vkframe",
		EngineVersion:         common.CreateVersion(1, 0, 0),
		APIVersion:            common.Vulkan1_2,
		EnabledExtensionNames: names.extensions,
		EnabledLayerNames:     names.layers,
	}
	if names.portability {
		createInfo.Flags |= khr_portability_enumeration.InstanceCreateEnumeratePortability
	}
	if b.Validation {
		// Covers messages emitted by instance creation and destruction themselves.
		createInfo.Next = debugMessengerOptions(logger, b.BreakOnValidationError)
	}

	handle, res, err := loader.CreateInstance(nil, createInfo)
	if err != nil {
		return Instance{}, initError("instance", res, err)
	}

	logger.Info("created instance", "extensions", names.extensions, "layers", names.layers)
	return Instance{
		Handle:     handle,
		Builder:    b,
		Extensions: names.extensions,
		Layers:     names.layers,
	}, nil
}

func (i Instance) Destroy() {
	i.Handle.Destroy(nil)
}
