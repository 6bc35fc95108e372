package bvh

import "fmt"

const (
	// Primitive boxes are inflated by this amount along every axis so that
	// axis-aligned triangles never produce zero-thickness boxes. It is also
	// the minimum centroid extent the partitioners will attempt to split.
	Epsilon float32 = 1e-5

	// Nodes covering fewer primitives than this are never split.
	LeafNodeSize = 3

	// The default number of buckets used by the binned SAH partitioner.
	BucketCount = 8
)

// The split selection algorithm used by the builder.
type Strategy uint8

const (
	// Approximate SAH evaluation over a fixed number of centroid buckets.
	Binned Strategy = iota

	// Exact SAH evaluation over every split of a centroid-sorted range.
	Exhaustive
)

func (s Strategy) String() string {
	switch s {
	case Binned:
		return "binned"
	case Exhaustive:
		return "exhaustive"
	}
	return fmt.Sprintf("Strategy(%d)", uint8(s))
}

// Parse a strategy name as returned by Strategy.String.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "binned":
		return Binned, nil
	case "exhaustive":
		return Exhaustive, nil
	}
	return Binned, fmt.Errorf("bvh: unknown partition strategy %q", name)
}

// Options control the BVH builder.
type Options struct {
	Strategy Strategy

	// Number of buckets for the binned strategy.
	BucketCount int

	// Nodes with fewer primitives than LeafSize become leafs.
	LeafSize int
}

// Get the default builder options.
func DefaultOptions() Options {
	return Options{
		Strategy:    Binned,
		BucketCount: BucketCount,
		LeafSize:    LeafNodeSize,
	}
}

// Validate options.
func (o Options) Validate() error {
	switch o.Strategy {
	case Binned:
		if o.BucketCount < 2 {
			return fmt.Errorf("bvh: bucket count must be at least 2; got %d", o.BucketCount)
		}
	case Exhaustive:
	default:
		return fmt.Errorf("bvh: unknown partition strategy %d", o.Strategy)
	}

	if o.LeafSize < 1 {
		return fmt.Errorf("bvh: leaf size must be at least 1; got %d", o.LeafSize)
	}

	return nil
}

// Create the partitioner selected by these options.
func (o Options) partitioner() PartitionStrategy {
	if o.Strategy == Exhaustive {
		return &ExhaustiveSAH{}
	}
	return &BinnedSAH{Buckets: o.BucketCount}
}
