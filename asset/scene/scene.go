package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/achilleasa/polaris-accel/types"
	"github.com/olekukonko/tablewriter"
)

// Bvh nodes are comprised of an AABB and two int32 parameters whose meaning
// depends on the node type:
//
// - For interior nodes Count is 0 and LeftFirst points to the left child
//   node. The right child is always stored at LeftFirst + 1.
// - For leaf nodes Count is > 0 and LeftFirst is the index of the first
//   triangle owned by the leaf.
//
// The root node is always stored at index 0. The record occupies 32 bytes.
type BvhNode struct {
	Bounds    types.AABB
	LeftFirst int32
	Count     int32
}

// Returns true if this is a leaf node.
func (n *BvhNode) IsLeaf() bool {
	return n.Count > 0
}

// Setup node as an interior node whose children are stored at
// leftChild and leftChild + 1.
func (n *BvhNode) SetChildNodes(leftChild uint32) {
	n.LeftFirst = int32(leftChild)
	n.Count = 0
}

// Set primitive index and count.
func (n *BvhNode) SetPrimitives(firstPrimIndex, count uint32) {
	n.LeftFirst = int32(firstPrimIndex)
	n.Count = int32(count)
}

// Get primitive index and count.
func (n *BvhNode) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(n.LeftFirst), uint32(n.Count)
}

// Get left and right child indices.
func (n *BvhNode) GetChildNodes() (left, right uint32) {
	return uint32(n.LeftFirst), uint32(n.LeftFirst) + 1
}

// A triangle vertex. Positions and normals use Vec4 for proper alignment
// inside device kernels; the W component is unused.
type Vertex struct {
	Position types.Vec4
	Normal   types.Vec4
}

// A triangle primitive. The record occupies 112 bytes.
type Triangle struct {
	V        [3]Vertex
	Material int32

	padding [3]int32
}

// Create a triangle from three positions. The face normal is assigned to
// all vertices.
func NewTriangle(v0, v1, v2 types.Vec3, material int32) Triangle {
	n := v1.Sub(v0).Cross(v2.Sub(v0)).Normalize().Vec4(0)
	return Triangle{
		V: [3]Vertex{
			{Position: v0.Vec4(0), Normal: n},
			{Position: v1.Vec4(0), Normal: n},
			{Position: v2.Vec4(0), Normal: n},
		},
		Material: material,
	}
}

// Get the position of vertex i.
func (t *Triangle) Position(i int) types.Vec3 {
	return t.V[i].Position.Vec3()
}

// The type of a surface material.
type MaterialType uint32

const (
	Diffuse MaterialType = iota
	Emissive
	Mirror
	Dielectric
)

func (mt MaterialType) String() string {
	switch mt {
	case Diffuse:
		return "diffuse"
	case Emissive:
		return "emissive"
	case Mirror:
		return "mirror"
	case Dielectric:
		return "dielectric"
	}
	return fmt.Sprintf("MaterialType(%d)", uint32(mt))
}

// A surface material. The record occupies 32 bytes.
type Material struct {
	Color types.Vec4
	Type  MaterialType

	// Index of refraction for dielectrics.
	Index float32

	padding [2]uint32
}

// The compiled scene is the set of flat, index-consistent arrays handed to
// the device buffer layer.
type Scene struct {
	Nodes     []BvhNode
	Triangles []Triangle
	Materials []Material

	// The scene camera.
	Camera *Camera
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sc.Triangles, sc.Nodes)})
	table.Append([]string{"", "Triangles", fmt.Sprint(len(sc.Triangles)), fmtSize(sc.Triangles)})
	table.Append([]string{"", "BVH nodes", fmt.Sprint(len(sc.Nodes)), fmtSize(sc.Nodes)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"Materials", "---", fmt.Sprint(len(sc.Materials)), fmtSize(sc.Materials)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.Triangles, sc.Nodes, sc.Materials), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
