package bvh

import (
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/types"
)

// A Primitive is the builder's view of an ingested triangle. Primitives
// are only ever relocated inside the working list while partitioning.
type Primitive struct {
	// Index of the triangle in the builder's reference list.
	Index int

	Bounds   types.AABB
	Centroid types.Vec3
}

// Create a primitive for the triangle stored at index.
func newPrimitive(index int, tri *scene.Triangle) Primitive {
	box := triangleBounds(tri)
	return Primitive{
		Index:    index,
		Bounds:   box,
		Centroid: box.Centroid(),
	}
}

// Calculate the inflated AABB of a triangle. NaN coordinates are skipped;
// an axis where all three coordinates are NaN collapses to 0 so that the
// triangle still gets an epsilon-sized box.
func triangleBounds(tri *scene.Triangle) types.AABB {
	box := types.AABBFromPoints(tri.Position(0), tri.Position(1), tri.Position(2))
	for axis := 0; axis < 3; axis++ {
		if !(box.Min[axis] <= box.Max[axis]) {
			box.Min[axis], box.Max[axis] = 0, 0
		}
	}
	return box.Inflate(Epsilon)
}

// Calculate the union of the primitive bounds.
func primitiveBounds(prims []Primitive) types.AABB {
	box := types.NegativeAABB()
	for i := range prims {
		box = types.Union(box, prims[i].Bounds)
	}
	return box
}

// Calculate the AABB enclosing the primitive centroids.
func centroidBounds(prims []Primitive) types.AABB {
	box := types.NegativeAABB()
	for i := range prims {
		box = box.GrowPoint(prims[i].Centroid)
	}
	return box
}
