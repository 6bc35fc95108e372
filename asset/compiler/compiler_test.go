package compiler

import (
	"testing"

	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/asset/scene/reader"
	"github.com/achilleasa/polaris-accel/types"
	"github.com/google/go-cmp/cmp"
)

func meshAt(name string, x float32, materials int) *reader.Mesh {
	mesh := &reader.Mesh{Name: name}
	for i := 0; i < materials; i++ {
		mesh.Materials = append(mesh.Materials, scene.Material{Color: types.Vec4{x, 0, 0, 1}})
		mesh.MaterialNames = append(mesh.MaterialNames, name)
	}
	for i := 0; i < 4; i++ {
		offset := types.Vec3{x + float32(i), 0, 0}
		mesh.Triangles = append(mesh.Triangles, scene.NewTriangle(
			offset, offset.Add(types.Vec3{1, 0, 0}), offset.Add(types.Vec3{0, 1, 0}),
			int32(i%materials),
		))
	}
	return mesh
}

func TestCompileMergesMaterials(t *testing.T) {
	meshes := []*reader.Mesh{
		meshAt("a", 0, 2),
		meshAt("b", 100, 3),
	}

	sc, stats, err := Compile(meshes, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Materials) != 5 {
		t.Fatalf("expected merged scene to contain 5 materials; got %d", len(sc.Materials))
	}
	if len(sc.Triangles) != 8 || stats.Primitives != 8 {
		t.Fatalf("expected compiled scene to contain 8 triangles; got %d", len(sc.Triangles))
	}
	if err := bvh.Validate(sc.Nodes, sc.Triangles); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	// Triangles of mesh b must reference the re-based materials whose
	// color encodes the mesh offset.
	var gotMaterials []int32
	for _, tri := range sc.Triangles {
		mat := sc.Materials[tri.Material]
		isMeshB := tri.Position(0)[0] >= 100
		if isMeshB != (mat.Color[0] == 100) {
			t.Fatalf("triangle at %v references material %d from the wrong mesh", tri.Position(0), tri.Material)
		}
		if isMeshB {
			gotMaterials = append(gotMaterials, tri.Material)
		}
	}

	// Mesh b triangles use local indices 0, 1, 2, 0 which map to 2, 3, 4, 2
	counts := map[int32]int{}
	for _, index := range gotMaterials {
		counts[index]++
	}
	if diff := cmp.Diff(map[int32]int{2: 2, 3: 1, 4: 1}, counts); diff != "" {
		t.Fatalf("unexpected material usage (-want +got):\n%s", diff)
	}

	if meshes[1].Triangles[2].Material != 2 {
		t.Fatal("expected Compile not to modify the input meshes")
	}
}

func TestCompileCamera(t *testing.T) {
	mesh := meshAt("a", 0, 1)
	sc, _, err := Compile([]*reader.Mesh{mesh}, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if sc.Camera == nil {
		t.Fatal("expected a generated camera")
	}
	if exp := (types.Vec3{0, 0, 1}); sc.Camera.Forward.Sub(exp).Len() > 1e-6 {
		t.Fatalf("expected generated camera to look towards +Z; got %v", sc.Camera.Forward)
	}

	mesh.Camera = scene.NewCamera(types.Vec3{0, 10, 0}, types.Vec3{0, 0, 1})
	sc, _, err = Compile([]*reader.Mesh{meshAt("b", 5, 1), mesh}, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if sc.Camera != mesh.Camera {
		t.Fatal("expected compiled scene to use the mesh camera")
	}
}

func TestCompileEmpty(t *testing.T) {
	sc, stats, err := Compile(nil, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	if len(sc.Nodes) != 1 || sc.Nodes[0].Count != 0 || len(sc.Triangles) != 0 {
		t.Fatalf("expected a single empty root leaf; got %d nodes and %d triangles", len(sc.Nodes), len(sc.Triangles))
	}
	if stats.Leaves != 1 || sc.Camera == nil {
		t.Fatalf("unexpected empty scene output: %+v", stats)
	}
}

func TestCompileInvalidOptions(t *testing.T) {
	opts := bvh.DefaultOptions()
	opts.LeafSize = 0
	if _, _, err := Compile(nil, opts); err == nil {
		t.Fatal("expected an error for invalid builder options")
	}
}
