package reader

import (
	"path/filepath"
	"strings"

	"github.com/achilleasa/polaris-accel/asset"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/pkg/errors"
)

// A Mesh is the triangle soup produced by a reader together with the
// materials referenced by its triangles. Triangle material indices are
// local to the mesh.
type Mesh struct {
	// The path of the resource the mesh was loaded from.
	Name string

	Triangles []scene.Triangle
	Materials []scene.Material

	// Material names in the same order as Materials.
	MaterialNames []string

	// Optional camera defined by the mesh file.
	Camera *scene.Camera
}

// The Reader interface is implemented by all mesh readers.
type Reader interface {
	// Read mesh definition from a resource.
	Read(*asset.Resource) (*Mesh, error)
}

// Read mesh from file or URL.
func ReadMesh(filename string) (*Mesh, error) {
	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		reader = newWavefrontReader()
	default:
		return nil, errors.Errorf("readMesh: unsupported file format %q", filepath.Ext(filename))
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
