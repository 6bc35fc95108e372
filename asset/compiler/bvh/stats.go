package bvh

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/olekukonko/tablewriter"
	"gonum.org/v1/gonum/stat"
)

// Stats describes the shape and quality of a built BVH.
type Stats struct {
	Primitives int
	Nodes      int
	Leaves     int
	MaxDepth   int

	// The SAH cost of the tree normalized by the root surface area:
	// (Σ interior area + Σ leaf area * leaf count) / root area.
	Cost float64

	// Distribution of primitive counts across leafs.
	LeafSizeMean   float64
	LeafSizeStdDev float64
	MaxLeafSize    int

	BuildTime time.Duration
}

// Walk the node list and collect tree statistics.
func collectStats(nodes []scene.BvhNode) Stats {
	var s Stats
	if len(nodes) == 0 {
		return s
	}

	type item struct {
		index uint32
		depth int
	}

	var cost float64
	leafSizes := make([]float64, 0, len(nodes)/2+1)
	pending := []item{{0, 0}}
	for len(pending) > 0 {
		it := pending[len(pending)-1]
		pending = pending[:len(pending)-1]
		node := &nodes[it.index]

		s.Nodes++
		if it.depth > s.MaxDepth {
			s.MaxDepth = it.depth
		}

		if isLeaf(nodes, it.index) {
			s.Leaves++
			leafSizes = append(leafSizes, float64(node.Count))
			if int(node.Count) > s.MaxLeafSize {
				s.MaxLeafSize = int(node.Count)
			}
			cost += float64(node.Bounds.Area()) * float64(node.Count)
			continue
		}

		cost += float64(node.Bounds.Area())
		left, right := node.GetChildNodes()
		pending = append(pending, item{right, it.depth + 1}, item{left, it.depth + 1})
	}

	if rootArea := float64(nodes[0].Bounds.Area()); rootArea > 0 {
		s.Cost = cost / rootArea
	}

	s.LeafSizeMean = stat.Mean(leafSizes, nil)
	if len(leafSizes) > 1 {
		s.LeafSizeStdDev = stat.StdDev(leafSizes, nil)
	}

	return s
}

// Returns true if the node at index is a leaf. An empty tree consists of a
// single root leaf with a zero primitive count.
func isLeaf(nodes []scene.BvhNode, index uint32) bool {
	return nodes[index].Count > 0 || len(nodes) == 1
}

// Build a tabular representation of the build statistics.
func (s Stats) Table() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"BVH", "Value"})
	table.Append([]string{"Primitives", fmt.Sprint(s.Primitives)})
	table.Append([]string{"Nodes", fmt.Sprint(s.Nodes)})
	table.Append([]string{"Leafs", fmt.Sprint(s.Leaves)})
	table.Append([]string{"Max depth", fmt.Sprint(s.MaxDepth)})
	table.Append([]string{"Leaf size (mean)", fmt.Sprintf("%.2f", s.LeafSizeMean)})
	table.Append([]string{"Leaf size (stddev)", fmt.Sprintf("%.2f", s.LeafSizeStdDev)})
	table.Append([]string{"Leaf size (max)", fmt.Sprint(s.MaxLeafSize)})
	table.Append([]string{"SAH cost", fmt.Sprintf("%.3f", s.Cost)})
	table.SetFooter([]string{"Build time", s.BuildTime.String()})

	table.Render()
	return buf.String()
}
