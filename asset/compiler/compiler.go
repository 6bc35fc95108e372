package compiler

import (
	"time"

	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/asset/scene/reader"
	"github.com/achilleasa/polaris-accel/log"
	"github.com/achilleasa/polaris-accel/types"
)

var logger = log.New("scene compiler")

// Compile a set of meshes parsed by a mesh reader into a scene whose
// triangles are ordered for traversal through the generated BVH. Material
// indices of each mesh are re-based so they index into the merged
// material list. The camera of the first mesh that defines one is used;
// otherwise a camera framing the scene is generated.
func Compile(meshes []*reader.Mesh, opts bvh.Options) (*scene.Scene, bvh.Stats, error) {
	builder, err := bvh.NewBuilder(opts)
	if err != nil {
		return nil, bvh.Stats{}, err
	}

	start := time.Now()
	logger.Noticef("compiling scene from %d meshes", len(meshes))

	var materials []scene.Material
	var camera *scene.Camera
	for _, mesh := range meshes {
		base := int32(len(materials))
		materials = append(materials, mesh.Materials...)

		for _, tri := range mesh.Triangles {
			tri.Material += base
			builder.AddTriangle(tri)
		}

		if camera == nil && mesh.Camera != nil {
			camera = mesh.Camera
		}
	}

	sc := BuildScene(builder, materials, camera)
	logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return sc, builder.Stats(), nil
}

// Build the BVH for all triangles registered with builder and assemble
// the output into a scene. If camera is nil, a camera framing the scene
// bounds is generated.
func BuildScene(builder *bvh.Builder, materials []scene.Material, camera *scene.Camera) *scene.Scene {
	builder.Build()
	logger.Infof("partitioned %d triangles into %d bvh nodes", builder.Count(), len(builder.Nodes()))

	sc := &scene.Scene{
		Nodes:     builder.Nodes(),
		Triangles: builder.Triangles(),
		Materials: materials,
		Camera:    camera,
	}

	if sc.Camera == nil {
		sc.Camera = frameCamera(sc.Nodes[0].Bounds)
	}

	return sc
}

// Generate a camera that looks at the center of bounds from a point in
// front of it (towards -Z) far enough for the whole box to be visible.
func frameCamera(bounds types.AABB) *scene.Camera {
	if !bounds.Valid() {
		return scene.NewCamera(types.Vec3{0, 0, -1}, types.Vec3{})
	}

	center := bounds.Centroid()
	radius := bounds.Extent().Len() * 0.5
	eye := center.Sub(types.Vec3{0, 0, radius*2 + 1})
	return scene.NewCamera(eye, center)
}
