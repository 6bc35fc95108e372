// Package generator populates a BVH builder with a random, seeded test
// scene made of axis-aligned boxes inside a room lit by an emissive
// ceiling panel.
package generator

import (
	"fmt"
	"math/rand"

	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/log"
	"github.com/achilleasa/polaris-accel/types"
)

const (
	// Index of the gray floor material.
	FloorMaterial = 0

	// Index of the ceiling light material.
	LightMaterial = 1

	// Height of the ceiling panel.
	ceilingHeight = 10

	// Half-size of the floor and ceiling panels.
	panelSize = 5

	// Emissive random materials are scaled by this amount.
	emissiveScale = 15

	// Refraction index assigned to random materials.
	randomMaterialIndex = 1.2
)

var logger = log.New("scene generator")

// Options control scene generation.
type Options struct {
	// Seed for the random number generator. Identical options always
	// produce an identical scene.
	Seed int64

	// Number of boxes to generate.
	Boxes int

	// Number of random materials to generate.
	Materials int

	// Boxes are scattered inside [-Extent, Extent] along X and Z.
	Extent float32
}

// Get the default generator options.
func DefaultOptions() Options {
	return Options{
		Seed:      7,
		Boxes:     20,
		Materials: 30,
		Extent:    2.5,
	}
}

// Validate options.
func (o Options) Validate() error {
	if o.Boxes < 0 {
		return fmt.Errorf("generator: box count must not be negative; got %d", o.Boxes)
	}
	if o.Materials < 1 {
		return fmt.Errorf("generator: material count must be at least 1; got %d", o.Materials)
	}
	if o.Extent <= 0 {
		return fmt.Errorf("generator: extent must be positive; got %f", o.Extent)
	}
	return nil
}

// Populate registers the triangles of a random scene with builder and
// returns the materials they reference. The first two materials are always
// the floor and the ceiling light; the rest are random.
func Populate(builder *bvh.Builder, opts Options) ([]scene.Material, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	materials := append(
		[]scene.Material{
			{Color: types.Vec4{0.8, 0.8, 0.8, 0}, Type: scene.Diffuse},
			{Color: types.Vec4{4, 4, 4, 0}, Type: scene.Emissive},
		},
		randomMaterials(opts.Materials, rng)...,
	)

	// Floor and ceiling panels
	addQuad(builder, 0, FloorMaterial, true)
	addQuad(builder, ceilingHeight, LightMaterial, false)

	for i := 0; i < opts.Boxes; i++ {
		center := types.Vec3{
			rng.Float32()*2*opts.Extent - opts.Extent,
			rng.Float32()*5 + 1.2,
			rng.Float32()*2*opts.Extent - opts.Extent,
		}
		halfSize := rng.Float32()*0.6 + 0.2
		material := int32(2 + rng.Intn(opts.Materials))
		AddBox(builder, center.Sub(types.Splat3(halfSize)), center.Add(types.Splat3(halfSize)), material)
	}

	logger.Infof("generated %d triangles and %d materials (seed: %d)", builder.Count(), len(materials), opts.Seed)
	return materials, nil
}

// Get a camera that overlooks the generated scene.
func Camera() *scene.Camera {
	return scene.NewCamera(types.Vec3{0, 5, -12}, types.Vec3{0, 3, 0})
}

// Generate count random materials. Roughly 15% of them are emissive.
func randomMaterials(count int, rng *rand.Rand) []scene.Material {
	out := make([]scene.Material, count)
	for i := range out {
		color := types.Vec4{rng.Float32(), rng.Float32(), rng.Float32(), 1}

		if emissive := rng.Intn(100) > 85; emissive {
			out[i] = scene.Material{Color: color.Mul(emissiveScale), Type: scene.Emissive, Index: randomMaterialIndex}
			continue
		}

		matType := scene.Emissive
		for matType == scene.Emissive {
			matType = scene.MaterialType(rng.Intn(4))
		}
		out[i] = scene.Material{Color: color, Type: matType, Index: randomMaterialIndex}
	}
	return out
}

// Add a horizontal square panel at the given height whose normal points
// up or down.
func addQuad(builder *bvh.Builder, height float32, material int32, facingUp bool) {
	v := [4]types.Vec3{
		{-panelSize, height, -panelSize},
		{panelSize, height, -panelSize},
		{panelSize, height, panelSize},
		{-panelSize, height, panelSize},
	}
	if facingUp {
		v[1], v[3] = v[3], v[1]
	}
	builder.AddTriangle(scene.NewTriangle(v[0], v[1], v[2], material))
	builder.AddTriangle(scene.NewTriangle(v[2], v[3], v[0], material))
}

// Cube faces as corner indices in counter-clockwise order when viewed from
// outside. Corner i has its X/Y/Z coordinate taken from max if bit 0/1/2
// of i is set.
var boxFaces = [6][4]int{
	{0, 2, 3, 1}, // -Z
	{4, 5, 7, 6}, // +Z
	{0, 4, 6, 2}, // -X
	{1, 3, 7, 5}, // +X
	{0, 1, 5, 4}, // -Y
	{2, 6, 7, 3}, // +Y
}

// AddBox registers the 12 triangles of an axis-aligned box.
func AddBox(builder *bvh.Builder, min, max types.Vec3, material int32) {
	var corners [8]types.Vec3
	for i := range corners {
		for axis := 0; axis < 3; axis++ {
			if i&(1<<uint(axis)) != 0 {
				corners[i][axis] = max[axis]
			} else {
				corners[i][axis] = min[axis]
			}
		}
	}

	for _, face := range boxFaces {
		builder.AddTriangle(scene.NewTriangle(corners[face[0]], corners[face[1]], corners[face[2]], material))
		builder.AddTriangle(scene.NewTriangle(corners[face[2]], corners[face[3]], corners[face[0]], material))
	}
}
