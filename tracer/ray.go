package tracer

import (
	"math"

	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/types"
)

// Intersections closer than this distance are ignored to avoid
// self-intersections of rays spawned on a surface.
const RayEpsilon float32 = 1e-5

var maxDistance = float32(math.Inf(1))

// A Ray with a precomputed inverse direction for slab tests.
type Ray struct {
	Origin types.Vec3
	Dir    types.Vec3

	invDir types.Vec3
}

// Create a new ray. The direction does not need to be normalized but hit
// distances are expressed in multiples of its length.
func NewRay(origin, dir types.Vec3) Ray {
	return Ray{
		Origin: origin,
		Dir:    dir,
		invDir: types.Vec3{1.0 / dir[0], 1.0 / dir[1], 1.0 / dir[2]},
	}
}

// Get the point at distance t along the ray.
func (r *Ray) At(t float32) types.Vec3 {
	return r.Origin.Add(r.Dir.Mul(t))
}

// IntersectAABB performs a slab test between the ray and box. It returns the
// entry distance (clamped to zero when the origin is inside the box) and
// true if the box is hit before tMax.
func IntersectAABB(r *Ray, box types.AABB, tMax float32) (float32, bool) {
	tNear, tFar := float32(0), tMax
	for axis := 0; axis < 3; axis++ {
		t1 := (box.Min[axis] - r.Origin[axis]) * r.invDir[axis]
		t2 := (box.Max[axis] - r.Origin[axis]) * r.invDir[axis]
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		// NaN slabs (origin on a slab plane of a parallel ray) are
		// ignored by these comparisons.
		if t1 > tNear {
			tNear = t1
		}
		if t2 < tFar {
			tFar = t2
		}
		if tNear > tFar {
			return 0, false
		}
	}
	return tNear, true
}

// IntersectTriangle implements the Möller–Trumbore ray-triangle test. It
// returns the hit distance and the barycentric coordinates of the hit
// point relative to the second and third vertex.
func IntersectTriangle(r *Ray, tri *scene.Triangle) (t, u, v float32, hit bool) {
	v0 := tri.Position(0)
	edge1 := tri.Position(1).Sub(v0)
	edge2 := tri.Position(2).Sub(v0)

	h := r.Dir.Cross(edge2)
	a := edge1.Dot(h)
	if a > -1e-9 && a < 1e-9 {
		return 0, 0, 0, false
	}

	f := 1.0 / a
	s := r.Origin.Sub(v0)
	u = f * s.Dot(h)
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * r.Dir.Dot(q)
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}

	t = f * edge2.Dot(q)
	if t <= RayEpsilon {
		return 0, 0, 0, false
	}
	return t, u, v, true
}
