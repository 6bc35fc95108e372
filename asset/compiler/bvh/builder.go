package bvh

import (
	"fmt"
	"time"

	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/log"
	"github.com/achilleasa/polaris-accel/types"
)

// A Builder constructs a BVH over a set of triangles. Triangles are
// registered with AddTriangle; Build then produces a flat node list and a
// triangle list ordered so that each leaf owns a contiguous slice of it.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	logger log.Logger
	opts   Options

	// The split selection strategy.
	partitioner PartitionStrategy

	// Ingested triangles in registration order.
	references []scene.Triangle

	// The working list that gets reordered while partitioning.
	primitives []Primitive

	// Build output.
	nodes     []scene.BvhNode
	triangles []scene.Triangle
	order     []int
	stats     Stats
}

// Create a new builder using the supplied options.
func NewBuilder(opts Options) (*Builder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	return &Builder{
		logger:      log.New("bvh builder"),
		opts:        opts,
		partitioner: opts.partitioner(),
	}, nil
}

// Create a new builder using the default options.
func NewDefaultBuilder() *Builder {
	b, _ := NewBuilder(DefaultOptions())
	return b
}

// Get the builder options.
func (b *Builder) Options() Options {
	return b.opts
}

// Register a triangle.
func (b *Builder) AddTriangle(tri scene.Triangle) {
	b.references = append(b.references, tri)
	b.primitives = append(b.primitives, newPrimitive(len(b.references)-1, &b.references[len(b.references)-1]))
}

// Get the number of registered triangles.
func (b *Builder) Count() int {
	return len(b.primitives)
}

// Discard all registered triangles and any previous build output.
func (b *Builder) Clear() {
	b.references = b.references[:0]
	b.primitives = b.primitives[:0]
	b.nodes = nil
	b.triangles = nil
	b.order = nil
	b.stats = Stats{}
}

// Get the nodes generated by the last call to Build. Node 0 is the root.
func (b *Builder) Nodes() []scene.BvhNode {
	return b.nodes
}

// Get the triangles in the order expected by the leaf nodes generated by
// the last call to Build.
func (b *Builder) Triangles() []scene.Triangle {
	return b.triangles
}

// Get the registration index of each entry in the triangle list generated
// by the last call to Build.
func (b *Builder) Order() []int {
	return b.order
}

// Get statistics for the last build.
func (b *Builder) Stats() Stats {
	return b.stats
}

// Build the BVH for all registered triangles. Any previous output is
// discarded.
func (b *Builder) Build() {
	start := time.Now()
	count := len(b.primitives)
	b.logger.Infof("building bvh containing %d primitives (strategy: %s)", count, b.opts.Strategy)

	// A full binary tree over count leafs has 2*count-1 nodes
	maxNodes := 2*count - 1
	if maxNodes < 1 {
		maxNodes = 1
	}
	b.nodes = make([]scene.BvhNode, 0, maxNodes)
	b.nodes = append(b.nodes, scene.BvhNode{
		Bounds:    b.bounds(0, count),
		LeftFirst: 0,
		Count:     int32(count),
	})

	b.subdivide()
	b.triangles = linearize(b.references, b.primitives, make([]scene.Triangle, 0, count))
	b.order = make([]int, count)
	for i := range b.primitives {
		b.order[i] = b.primitives[i].Index
	}

	b.stats = collectStats(b.nodes)
	b.stats.Primitives = count
	b.stats.BuildTime = time.Since(start)
	b.logger.Debugf(
		"BVH tree build time: %d ms, maxDepth: %d, nodes: %d, leafs: %d, SAH cost: %.3f",
		b.stats.BuildTime.Nanoseconds()/1e6,
		b.stats.MaxDepth, b.stats.Nodes, b.stats.Leaves, b.stats.Cost,
	)
}

// Split nodes top-down starting from the root. A work list is used
// instead of recursion so degenerate inputs cannot exhaust the stack.
// Left children are always processed before their right siblings.
func (b *Builder) subdivide() {
	pending := []uint32{0}
	for len(pending) > 0 {
		index := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		// Copy the node; appending children may relocate the node list
		node := b.nodes[index]
		first, count := int(node.LeftFirst), int(node.Count)
		if count < b.opts.LeafSize {
			continue
		}

		p := b.partitioner.Partition(b.primitives[first:first+count], node.Bounds)
		if p == noSplit {
			continue
		}
		if p <= 0 || p >= count {
			panic(fmt.Sprintf("bvh: partitioner returned split %d for a range of %d primitives", p, count))
		}

		left := uint32(len(b.nodes))
		b.nodes = append(b.nodes,
			scene.BvhNode{
				Bounds:    b.bounds(first, p),
				LeftFirst: int32(first),
				Count:     int32(p),
			},
			scene.BvhNode{
				Bounds:    b.bounds(first+p, count-p),
				LeftFirst: int32(first + p),
				Count:     int32(count - p),
			},
		)
		b.nodes[index].SetChildNodes(left)

		pending = append(pending, left+1, left)
	}
}

// Calculate the bounds of count primitives starting at first.
func (b *Builder) bounds(first, count int) types.AABB {
	if first < 0 || count < 0 || first+count > len(b.primitives) {
		panic(fmt.Sprintf("bvh: invalid primitive range [%d, %d+%d) for %d primitives", first, first, count, len(b.primitives)))
	}
	return primitiveBounds(b.primitives[first : first+count])
}
