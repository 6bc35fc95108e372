package types

import (
	"fmt"
	"math"
)

// An axis of the 3D coordinate system.
type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

func (a Axis) String() string {
	switch a {
	case XAxis:
		return "X"
	case YAxis:
		return "Y"
	case ZAxis:
		return "Z"
	}
	return fmt.Sprintf("Axis(%d)", uint8(a))
}

// An axis-aligned bounding box. The layout (two packed Vec3) matches the
// 24-byte box record expected by device-side traversal code.
type AABB struct {
	Min Vec3
	Max Vec3
}

var (
	posInf = float32(math.Inf(1))
	negInf = float32(math.Inf(-1))
)

// Return the empty box (min = +inf, max = -inf). It is the identity element
// for Union.
func NegativeAABB() AABB {
	return AABB{
		Min: Vec3{posInf, posInf, posInf},
		Max: Vec3{negInf, negInf, negInf},
	}
}

// Calculate the AABB enclosing a set of points.
func AABBFromPoints(points ...Vec3) AABB {
	box := NegativeAABB()
	for _, p := range points {
		box = box.GrowPoint(p)
	}
	return box
}

// Return the union of two boxes.
func Union(a, b AABB) AABB {
	return AABB{
		Min: MinVec3(a.Min, b.Min),
		Max: MaxVec3(a.Max, b.Max),
	}
}

// Grow box to include another box.
func (b AABB) Grow(other AABB) AABB {
	return Union(b, other)
}

// Grow box to include a point.
func (b AABB) GrowPoint(p Vec3) AABB {
	return AABB{
		Min: MinVec3(b.Min, p),
		Max: MaxVec3(b.Max, p),
	}
}

// Expand the box by eps in every direction.
func (b AABB) Inflate(eps float32) AABB {
	d := Splat3(eps)
	return AABB{
		Min: b.Min.Sub(d),
		Max: b.Max.Add(d),
	}
}

// Returns true if min <= max along every axis.
func (b AABB) Valid() bool {
	return b.Min[0] <= b.Max[0] && b.Min[1] <= b.Max[1] && b.Min[2] <= b.Max[2]
}

// Get box side lengths.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get box surface area: 2 * (dx*dy + dx*dz + dy*dz). The empty box has a
// zero area.
func (b AABB) Area() float32 {
	if !b.Valid() {
		return 0
	}
	d := b.Extent()
	return 2.0 * (d[0]*d[1] + d[0]*d[2] + d[1]*d[2])
}

// Get box center.
func (b AABB) Centroid() Vec3 {
	return b.Min.Mul(0.5).Add(b.Max.Mul(0.5))
}

// Return the axis with the largest extent. Ties resolve to the first
// axis in X, Y, Z order.
func (b AABB) Domain() Axis {
	d := b.Extent()
	switch {
	case d[0] >= d[1] && d[0] >= d[2]:
		return XAxis
	case d[1] >= d[2]:
		return YAxis
	}
	return ZAxis
}

// Returns true if other lies inside this box.
func (b AABB) Contains(other AABB) bool {
	return b.Min[0] <= other.Min[0] && b.Min[1] <= other.Min[1] && b.Min[2] <= other.Min[2] &&
		b.Max[0] >= other.Max[0] && b.Max[1] >= other.Max[1] && b.Max[2] >= other.Max[2]
}

func (b AABB) String() string {
	return fmt.Sprintf("[(%3.3f, %3.3f, %3.3f) - (%3.3f, %3.3f, %3.3f)]",
		b.Min[0], b.Min[1], b.Min[2], b.Max[0], b.Max[1], b.Max[2],
	)
}
