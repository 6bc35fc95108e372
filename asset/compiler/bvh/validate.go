package bvh

import (
	"fmt"

	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/types"
)

// Validate checks that a node list and its triangle list satisfy the layout
// contract relied upon by traversal code:
//
// - node 0 is the root and every node is reachable exactly once;
// - interior nodes point to an adjacent child pair stored after them;
// - leaf ranges tile the triangle list exactly once;
// - leaf bounds are the union of their (inflated) triangle bounds and
//   interior bounds are the union of their children's bounds.
func Validate(nodes []scene.BvhNode, triangles []scene.Triangle) error {
	if len(nodes) == 0 {
		return fmt.Errorf("bvh: empty node list")
	}

	if len(triangles) == 0 {
		if len(nodes) != 1 || nodes[0].Count != 0 || nodes[0].LeftFirst != 0 {
			return fmt.Errorf("bvh: expected a single empty root leaf for an empty triangle list")
		}
		return nil
	}

	visited := make([]bool, len(nodes))
	covered := make([]bool, len(triangles))
	pending := []uint32{0}
	for len(pending) > 0 {
		index := pending[len(pending)-1]
		pending = pending[:len(pending)-1]

		if visited[index] {
			return fmt.Errorf("bvh: node %d is reachable more than once", index)
		}
		visited[index] = true
		node := &nodes[index]

		if node.Count < 0 {
			return fmt.Errorf("bvh: node %d has a negative primitive count %d", index, node.Count)
		}

		if node.IsLeaf() {
			first, count := int(node.LeftFirst), int(node.Count)
			if first < 0 || first+count > len(triangles) {
				return fmt.Errorf("bvh: leaf %d range [%d, %d) exceeds triangle count %d", index, first, first+count, len(triangles))
			}

			box := types.NegativeAABB()
			for i := first; i < first+count; i++ {
				if covered[i] {
					return fmt.Errorf("bvh: triangle %d is owned by more than one leaf", i)
				}
				covered[i] = true
				box = types.Union(box, triangleBounds(&triangles[i]))
			}

			if box != node.Bounds {
				return fmt.Errorf("bvh: leaf %d bounds %v do not match its triangle bounds %v", index, node.Bounds, box)
			}
			continue
		}

		left, right := node.GetChildNodes()
		if left <= index || int(right) >= len(nodes) {
			return fmt.Errorf("bvh: interior node %d has invalid child pair (%d, %d)", index, left, right)
		}

		if box := types.Union(nodes[left].Bounds, nodes[right].Bounds); box != node.Bounds {
			return fmt.Errorf("bvh: interior node %d bounds %v do not match its child bounds %v", index, node.Bounds, box)
		}

		pending = append(pending, right, left)
	}

	for index, seen := range visited {
		if !seen {
			return fmt.Errorf("bvh: node %d is not reachable from the root", index)
		}
	}

	for index, seen := range covered {
		if !seen {
			return fmt.Errorf("bvh: triangle %d is not owned by any leaf", index)
		}
	}

	return nil
}
