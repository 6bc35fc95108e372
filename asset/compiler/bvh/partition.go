package bvh

import (
	"math"
	"sort"

	"github.com/achilleasa/polaris-accel/types"
)

// Returned by partitioners when no split improves on keeping the range as
// a single leaf.
const noSplit = -1

// A split selection strategy.
type PartitionStrategy interface {
	// Decide whether and where to split a contiguous primitive range whose
	// union is nodeBounds. Implementations may reorder prims in place and
	// return a split point p with 0 < p < len(prims) such that prims[:p]
	// and prims[p:] form the two children, or -1 if the range should not
	// be split.
	Partition(prims []Primitive, nodeBounds types.AABB) int
}

// Calculate the SAH cost of keeping count primitives in a node with the
// given bounds.
func leafCost(bounds types.AABB, count int) float32 {
	return bounds.Area() * float32(count)
}

// Select the split axis for a node and check whether the primitive
// centroids are spread far enough along it to be worth splitting.
func splitAxis(prims []Primitive, nodeBounds types.AABB) (axis types.Axis, minC, extent float32, ok bool) {
	axis = nodeBounds.Domain()
	cb := centroidBounds(prims)
	minC = cb.Min[axis]
	extent = cb.Max[axis] - minC

	// The negated comparison also rejects NaN extents.
	if !(extent >= Epsilon) {
		return axis, minC, extent, false
	}
	return axis, minC, extent, true
}

// BinnedSAH approximates the SAH by distributing primitive centroids
// along the split axis into a fixed number of equal-width buckets and only
// evaluating splits at bucket boundaries.
//
// Boundaries are evaluated from left to right and a candidate only replaces
// the current best if its cost is strictly lower; on exact ties the
// leftmost boundary wins. The selected split must also be strictly cheaper
// than the leaf cost of the node. Primitives are reordered by bucket using
// a stable scatter so that the selected boundary maps to a contiguous split.
type BinnedSAH struct {
	Buckets int

	// Scratch space reused across calls.
	bins    []int
	counts  []int
	domains []types.AABB
	right   []types.AABB
	offsets []int
	scratch []Primitive
}

// Partition implements PartitionStrategy.
func (h *BinnedSAH) Partition(prims []Primitive, nodeBounds types.AABB) int {
	axis, k0, extent, ok := splitAxis(prims, nodeBounds)
	if !ok {
		return noSplit
	}

	buckets := h.Buckets
	if buckets < 2 {
		buckets = BucketCount
	}
	h.reset(len(prims), buckets)

	// Bin primitives
	k1 := (float32(buckets) - Epsilon) / extent
	for i := range prims {
		b := int((prims[i].Centroid[axis] - k0) * k1)
		if b < 0 {
			b = 0
		} else if b >= buckets {
			b = buckets - 1
		}

		h.bins[i] = b
		h.counts[b]++
		h.domains[b] = types.Union(h.domains[b], prims[i].Bounds)
	}

	// right[i] holds the union of buckets [i, buckets)
	h.right[buckets-1] = h.domains[buckets-1]
	for i := buckets - 2; i > 0; i-- {
		h.right[i] = types.Union(h.domains[i], h.right[i+1])
	}

	// Sweep the internal bucket boundaries and select the best split
	partition := noSplit
	cost := leafCost(nodeBounds, len(prims))
	leftBox := types.NegativeAABB()
	leftCount := 0
	for i := 1; i < buckets; i++ {
		leftCount += h.counts[i-1]
		leftBox = types.Union(leftBox, h.domains[i-1])
		rightCount := len(prims) - leftCount
		if leftCount == 0 || rightCount == 0 {
			continue
		}

		c := leafCost(leftBox, leftCount) + leafCost(h.right[i], rightCount)
		if c < cost {
			partition = leftCount
			cost = c
		}
	}

	if partition == noSplit {
		return noSplit
	}

	// Reorder primitives by bucket
	offset := 0
	for b := 0; b < buckets; b++ {
		h.offsets[b] = offset
		offset += h.counts[b]
	}
	for i := range prims {
		b := h.bins[i]
		h.scratch[h.offsets[b]] = prims[i]
		h.offsets[b]++
	}
	copy(prims, h.scratch)

	return partition
}

// Prepare scratch buffers for partitioning count primitives into buckets.
func (h *BinnedSAH) reset(count, buckets int) {
	if cap(h.bins) < count {
		h.bins = make([]int, count)
		h.scratch = make([]Primitive, count)
	}
	h.bins = h.bins[:count]
	h.scratch = h.scratch[:count]

	if cap(h.counts) < buckets {
		h.counts = make([]int, buckets)
		h.offsets = make([]int, buckets)
		h.domains = make([]types.AABB, buckets)
		h.right = make([]types.AABB, buckets)
	}
	h.counts = h.counts[:buckets]
	h.offsets = h.offsets[:buckets]
	h.domains = h.domains[:buckets]
	h.right = h.right[:buckets]

	for b := 0; b < buckets; b++ {
		h.counts[b] = 0
		h.domains[b] = types.NegativeAABB()
	}
}

// ExhaustiveSAH evaluates the exact SAH cost of every split of the
// primitive range after sorting it by centroid along the split axis.
//
// The sort is stable so equal centroids keep their relative order. A
// candidate replaces the current best if its cost is lower or equal, so on
// exact ties the split with the most primitives on the left wins. The
// selected split must be strictly cheaper than the leaf cost of the node.
type ExhaustiveSAH struct {
	// Scratch space reused across calls.
	rightAreas []float32
}

// Partition implements PartitionStrategy.
func (h *ExhaustiveSAH) Partition(prims []Primitive, nodeBounds types.AABB) int {
	axis, _, _, ok := splitAxis(prims, nodeBounds)
	if !ok {
		return noSplit
	}

	sort.SliceStable(prims, func(i, j int) bool {
		return prims[i].Centroid[axis] < prims[j].Centroid[axis]
	})

	count := len(prims)
	if cap(h.rightAreas) < count {
		h.rightAreas = make([]float32, count)
	}
	h.rightAreas = h.rightAreas[:count]

	// rightAreas[l] holds the area of the union of prims[l:]
	rightBox := types.NegativeAABB()
	for l := count - 1; l > 0; l-- {
		rightBox = types.Union(rightBox, prims[l].Bounds)
		h.rightAreas[l] = rightBox.Area()
	}

	partition := noSplit
	cost := float32(math.Inf(1))
	leftBox := types.NegativeAABB()
	for l := 1; l < count; l++ {
		leftBox = types.Union(leftBox, prims[l-1].Bounds)
		c := leftBox.Area()*float32(l) + h.rightAreas[l]*float32(count-l)
		if c <= cost {
			partition = l
			cost = c
		}
	}

	if partition == noSplit || !(cost < leafCost(nodeBounds, count)) {
		return noSplit
	}

	return partition
}
