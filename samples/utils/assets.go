package utils

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/emberforge/vkframe/renderer"
	"golang.org/x/sync/errgroup"
)

type AssetKind int

const (
	// AssetShader checks that a SPIR-V blob is present and well formed. Pipelines read
	// it again when they are built.
	AssetShader AssetKind = iota
	AssetMesh
	AssetImage
)

func (k AssetKind) String() string {
	switch k {
	case AssetShader:
		return "shader"
	case AssetMesh:
		return "mesh"
	case AssetImage:
		return "image"
	}
	return "unknown"
}

type AssetRequest struct {
	Kind AssetKind
	Name string
	Path string
	// MaterialPath is the .mtl file that goes with a mesh. Optional.
	MaterialPath string
	// FS overrides the filesystem passed to LoadAssets for this request.
	FS fs.FS
}

// Assets holds decoded CPU-side data, ready for upload.
type Assets struct {
	Meshes map[string]*renderer.Mesh
	Images map[string]image.Image

	lock sync.Mutex
}

// LoadAssets decodes every request concurrently. Nothing here touches the GPU, so it
// may run before the renderer exists.
func LoadAssets(ctx context.Context, fsys fs.FS, requests []AssetRequest) (*Assets, error) {
	assets := &Assets{
		Meshes: make(map[string]*renderer.Mesh),
		Images: make(map[string]image.Image),
	}

	group, ctx := errgroup.WithContext(ctx)
	for _, request := range requests {
		req := request
		if req.FS == nil {
			req.FS = fsys
		}

		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			err := assets.load(req)
			if err != nil {
				return errors.Wrapf(err, "load %s %s", req.Kind, req.Path)
			}
			return nil
		})
	}

	err := group.Wait()
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (a *Assets) load(req AssetRequest) error {
	switch req.Kind {
	case AssetShader:
		_, err := renderer.ReadShader(req.FS, req.Path)
		return err

	case AssetMesh:
		mesh, err := loadMesh(req)
		if err != nil {
			return err
		}

		a.lock.Lock()
		defer a.lock.Unlock()
		a.Meshes[req.Name] = mesh
		return nil

	case AssetImage:
		file, err := req.FS.Open(req.Path)
		if err != nil {
			return err
		}
		defer file.Close()

		img, _, err := image.Decode(file)
		if err != nil {
			return err
		}

		a.lock.Lock()
		defer a.lock.Unlock()
		a.Images[req.Name] = img
		return nil
	}

	return errors.Newf("unknown asset kind %d", req.Kind)
}

func loadMesh(req AssetRequest) (*renderer.Mesh, error) {
	meshFile, err := req.FS.Open(req.Path)
	if err != nil {
		return nil, err
	}
	defer meshFile.Close()

	if req.MaterialPath == "" {
		return LoadOBJ(meshFile, strings.NewReader(""))
	}

	matFile, err := req.FS.Open(req.MaterialPath)
	if err != nil {
		return nil, err
	}
	defer matFile.Close()

	return LoadOBJ(meshFile, matFile)
}
