package bvh

import (
	"strings"
	"testing"

	"github.com/achilleasa/polaris-accel/asset/scene"
)

func TestValidateDetectsCorruption(t *testing.T) {
	b := NewDefaultBuilder()
	for cluster := 0; cluster < 2; cluster++ {
		for i := 0; i < 3; i++ {
			b.AddTriangle(unitTriangle(i, float32(cluster*10), 0, 0))
		}
	}
	b.Build()

	if err := Validate(b.Nodes(), b.Triangles()); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	type spec struct {
		mutate func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle)
		expErr string
	}
	specs := []spec{
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				return nil, tris
			},
			"empty node list",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				nodes[0].SetChildNodes(2)
				return nodes, tris
			},
			"invalid child pair",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				nodes[0].SetChildNodes(0)
				return nodes, tris
			},
			"invalid child pair",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				nodes[2].SetPrimitives(3, 4)
				return nodes, tris
			},
			"exceeds triangle count",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				nodes[2].SetPrimitives(2, 3)
				return nodes, tris
			},
			"owned by more than one leaf",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				return nodes, append(tris, tris[0])
			},
			"not owned by any leaf",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				return append(nodes, nodes[1]), tris
			},
			"not reachable from the root",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				nodes[1].Bounds = nodes[2].Bounds
				nodes[0].Bounds = nodes[2].Bounds
				return nodes, tris
			},
			"do not match its triangle bounds",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				nodes[0].Bounds = nodes[1].Bounds
				return nodes, tris
			},
			"do not match its child bounds",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				tris[0], tris[5] = tris[5], tris[0]
				return nodes, tris
			},
			"do not match its triangle bounds",
		},
		{
			func(nodes []scene.BvhNode, tris []scene.Triangle) ([]scene.BvhNode, []scene.Triangle) {
				return nodes[:1], nil
			},
			"single empty root leaf",
		},
	}

	for index, s := range specs {
		nodes := append([]scene.BvhNode(nil), b.Nodes()...)
		tris := append([]scene.Triangle(nil), b.Triangles()...)
		nodes, tris = s.mutate(nodes, tris)

		err := Validate(nodes, tris)
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}
