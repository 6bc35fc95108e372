// Package tracer implements a reference CPU consumer for the flat BVH
// node and triangle arrays generated by the bvh builder.
package tracer

import (
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/types"
)

// Hit describes the closest intersection along a ray.
type Hit struct {
	// Distance along the ray.
	T float32

	// Index into the triangle list or -1 if nothing was hit.
	Triangle int32

	// Barycentric coordinates of the hit point.
	U, V float32
}

// Returns true if the ray hit a triangle.
func (h Hit) Valid() bool {
	return h.Triangle >= 0
}

func miss() Hit {
	return Hit{T: maxDistance, Triangle: -1}
}

// Tracer intersects rays against a compiled scene. It only reads the node
// and triangle lists so it is safe for concurrent use.
type Tracer struct {
	nodes     []scene.BvhNode
	triangles []scene.Triangle
}

// Create a tracer for a node list and the triangle list its leafs index.
func New(nodes []scene.BvhNode, triangles []scene.Triangle) *Tracer {
	return &Tracer{
		nodes:     nodes,
		triangles: triangles,
	}
}

// Intersect finds the closest triangle hit by the ray using a stack-based
// BVH traversal. Children are visited nearest first so that far subtrees
// can be culled by the current closest hit.
func (tr *Tracer) Intersect(r Ray) Hit {
	closest := miss()
	if len(tr.triangles) == 0 || len(tr.nodes) == 0 {
		return closest
	}

	if _, ok := IntersectAABB(&r, tr.nodes[0].Bounds, closest.T); !ok {
		return closest
	}

	var stackBuf [64]uint32
	stack := append(stackBuf[:0], 0)
	for len(stack) > 0 {
		node := &tr.nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]

		if node.IsLeaf() {
			first, count := node.GetPrimitives()
			tr.intersectRange(&r, first, first+count, &closest)
			continue
		}

		left, right := node.GetChildNodes()
		tLeft, hitLeft := IntersectAABB(&r, tr.nodes[left].Bounds, closest.T)
		tRight, hitRight := IntersectAABB(&r, tr.nodes[right].Bounds, closest.T)

		switch {
		case hitLeft && hitRight:
			// Push the farthest child first so the nearest one is
			// processed next
			if tLeft <= tRight {
				stack = append(stack, right, left)
			} else {
				stack = append(stack, left, right)
			}
		case hitLeft:
			stack = append(stack, left)
		case hitRight:
			stack = append(stack, right)
		}
	}

	return closest
}

// IntersectBruteForce tests the ray against every triangle. It is used to
// verify BVH traversal.
func (tr *Tracer) IntersectBruteForce(r Ray) Hit {
	closest := miss()
	tr.intersectRange(&r, 0, uint32(len(tr.triangles)), &closest)
	return closest
}

// Test the triangles in [first, last) and update closest with any nearer hit.
func (tr *Tracer) intersectRange(r *Ray, first, last uint32, closest *Hit) {
	for index := first; index < last; index++ {
		t, u, v, ok := IntersectTriangle(r, &tr.triangles[index])
		if ok && t < closest.T {
			*closest = Hit{T: t, Triangle: int32(index), U: u, V: v}
		}
	}
}

// Get the interpolated shading normal at a hit point.
func (tr *Tracer) Normal(hit Hit) types.Vec3 {
	tri := &tr.triangles[hit.Triangle]
	w := 1 - hit.U - hit.V
	return tri.V[0].Normal.Vec3().Mul(w).
		Add(tri.V[1].Normal.Vec3().Mul(hit.U)).
		Add(tri.V[2].Normal.Vec3().Mul(hit.V)).
		Normalize()
}

// Get the triangle referenced by a hit.
func (tr *Tracer) Triangle(hit Hit) *scene.Triangle {
	return &tr.triangles[hit.Triangle]
}
