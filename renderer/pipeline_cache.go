package renderer

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/core/v2/core1_0"
	"golang.org/x/exp/slog"
)

const (
	pipelineCacheHeaderVersionOne = 1
	pipelineCacheHeaderSize       = 16 + 16
)

type pipelineCacheHeader struct {
	HeaderLength uint32
	Version      uint32
	VendorID     uint32
	DeviceID     uint32
	CacheUUID    uuid.UUID
}

// validatePipelineCacheHeader checks that data was written by the same driver and
// device that will read it.
//
// Offset  Size  Meaning
// 0       4     header length in bytes
// 4       4     header version
// 8       4     vendor ID
// 12      4     device ID
// 16      16    pipeline cache UUID
func validatePipelineCacheHeader(data []byte, vendorID, deviceID uint32, cacheUUID uuid.UUID) error {
	if len(data) < pipelineCacheHeaderSize {
		return errors.Newf("pipeline cache is %d bytes, shorter than its header", len(data))
	}

	var header pipelineCacheHeader
	err := binary.Read(bytes.NewReader(data), common.ByteOrder, &header)
	if err != nil {
		return errors.Wrap(err, "read pipeline cache header")
	}

	if header.HeaderLength < pipelineCacheHeaderSize {
		return errors.Newf("bad pipeline cache header length 0x%x", header.HeaderLength)
	}
	if header.Version != pipelineCacheHeaderVersionOne {
		return errors.Newf("unsupported pipeline cache header version 0x%x", header.Version)
	}
	if header.VendorID != vendorID {
		return errors.Newf("pipeline cache vendor ID 0x%x, driver expects 0x%x", header.VendorID, vendorID)
	}
	if header.DeviceID != deviceID {
		return errors.Newf("pipeline cache device ID 0x%x, driver expects 0x%x", header.DeviceID, deviceID)
	}
	if header.CacheUUID != cacheUUID {
		return errors.Newf("pipeline cache UUID %s, driver expects %s", header.CacheUUID, cacheUUID)
	}

	return nil
}

// LoadPipelineCache creates a pipeline cache seeded from path. A missing or stale file
// yields an empty cache.
func LoadPipelineCache(device core1_0.Device, physical PhysicalDevice, path string, logger *slog.Logger) (core1_0.PipelineCache, error) {
	var initialData []byte

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			logger.Info("pipeline cache miss", "path", path)
		case err != nil:
			return nil, errors.Wrapf(err, "read pipeline cache %s", path)
		default:
			props := physical.Properties
			err = validatePipelineCacheHeader(data, props.VendorID, props.DeviceID, props.PipelineCacheUUID)
			if err != nil {
				logger.Warn("discarding pipeline cache", "path", path, "err", err)
			} else {
				initialData = data
			}
		}
	}

	cache, res, err := device.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		return nil, initError("pipeline cache", res, err)
	}

	return cache, nil
}

func SavePipelineCache(cache core1_0.PipelineCache, path string) error {
	data, _, err := cache.CacheData()
	if err != nil {
		return errors.Wrap(err, "read pipeline cache data")
	}

	err = os.WriteFile(path, data, 0666)
	return errors.Wrapf(err, "write pipeline cache %s", path)
}
