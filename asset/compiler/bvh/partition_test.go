package bvh

import (
	"testing"

	"github.com/achilleasa/polaris-accel/types"
	"github.com/google/go-cmp/cmp"
)

// Unit cubes placed side by side along X starting at the given offsets.
func cubePrimitives(offsets ...float32) []Primitive {
	prims := make([]Primitive, len(offsets))
	for i, x := range offsets {
		box := types.AABB{Min: types.Vec3{x, 0, 0}, Max: types.Vec3{x + 1, 1, 1}}
		prims[i] = Primitive{Index: i, Bounds: box, Centroid: box.Centroid()}
	}
	return prims
}

func primitiveIndices(prims []Primitive) []int {
	out := make([]int, len(prims))
	for i := range prims {
		out[i] = prims[i].Index
	}
	return out
}

func TestPartitionTieBreak(t *testing.T) {
	// Splitting three adjacent cubes after the first or the second one
	// yields the same cost (6*1 + 10*2 == 10*2 + 6*1).
	type spec struct {
		partitioner PartitionStrategy
		expSplit    int
	}
	specs := []spec{
		{&BinnedSAH{Buckets: BucketCount}, 1},
		{&ExhaustiveSAH{}, 2},
	}

	for index, s := range specs {
		prims := cubePrimitives(0, 1, 2)
		if got := s.partitioner.Partition(prims, primitiveBounds(prims)); got != s.expSplit {
			t.Fatalf("[spec %d] expected split at %d; got %d", index, s.expSplit, got)
		}
		if diff := cmp.Diff([]int{0, 1, 2}, primitiveIndices(prims)); diff != "" {
			t.Fatalf("[spec %d] unexpected primitive order (-want +got):\n%s", index, diff)
		}
	}
}

func TestPartitionReordersRange(t *testing.T) {
	type spec struct {
		partitioner PartitionStrategy
	}
	specs := []spec{
		{&BinnedSAH{Buckets: BucketCount}},
		{&ExhaustiveSAH{}},
	}

	for index, s := range specs {
		// Interleave two clusters; each partitioner must group them
		prims := cubePrimitives(20, 0, 21, 1, 22, 2)
		split := s.partitioner.Partition(prims, primitiveBounds(prims))
		if split != 3 {
			t.Fatalf("[spec %d] expected split at 3; got %d", index, split)
		}

		// Both strategies keep the relative order of primitives that
		// end up on the same side.
		exp := []int{1, 3, 5, 0, 2, 4}
		if diff := cmp.Diff(exp, primitiveIndices(prims)); diff != "" {
			t.Fatalf("[spec %d] unexpected primitive order (-want +got):\n%s", index, diff)
		}
	}
}

func TestPartitionCoincidentCentroids(t *testing.T) {
	prims := cubePrimitives(4, 4, 4, 4)
	for index, p := range []PartitionStrategy{&BinnedSAH{Buckets: BucketCount}, &ExhaustiveSAH{}} {
		if got := p.Partition(prims, primitiveBounds(prims)); got != noSplit {
			t.Fatalf("[spec %d] expected no split for coincident centroids; got %d", index, got)
		}
	}
}

func TestBinnedScratchReuse(t *testing.T) {
	p := &BinnedSAH{Buckets: 4}

	large := cubePrimitives(0, 1, 2, 10, 11, 12, 20, 21)
	if split := p.Partition(large, primitiveBounds(large)); split <= 0 || split >= len(large) {
		t.Fatalf("expected a valid split; got %d", split)
	}

	small := cubePrimitives(0, 10)
	if split := p.Partition(small, primitiveBounds(small)); split != 1 {
		t.Fatalf("expected split at 1 after reusing scratch buffers; got %d", split)
	}
}
