package cmd

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/log"
	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli"
)

const testMesh = `
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
f 1 2 3 4
f 5 6 7 8
f 1 2 6 5
f 4 3 7 8
`

func newTestContext(t *testing.T, flags []cli.Flag, args ...string) *cli.Context {
	t.Helper()

	set := flag.NewFlagSet("test", flag.ContinueOnError)
	for _, f := range flags {
		f.Apply(set)
	}
	if err := set.Parse(args); err != nil {
		t.Fatal(err)
	}
	return cli.NewContext(cli.NewApp(), set, nil)
}

func writeMesh(t *testing.T) string {
	t.Helper()

	file := filepath.Join(t.TempDir(), "mesh.obj")
	if err := os.WriteFile(file, []byte(testMesh), 0644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestVerbosity(t *testing.T) {
	defer log.SetLevel(log.Notice)

	globalFlags := []cli.Flag{
		cli.BoolFlag{Name: "v"},
		cli.BoolFlag{Name: "vv"},
	}

	type spec struct {
		args     []string
		expLevel log.Level
	}
	specs := []spec{
		{nil, log.Notice},
		{[]string{"-v"}, log.Info},
		{[]string{"-vv"}, log.Debug},
		{[]string{"-v", "-vv"}, log.Debug},
	}

	for index, s := range specs {
		parent := newTestContext(t, globalFlags, s.args...)
		set := flag.NewFlagSet("child", flag.ContinueOnError)
		ctx := cli.NewContext(cli.NewApp(), set, parent)

		setupLogging(ctx)
		if got := log.GetLevel(); got != s.expLevel {
			t.Fatalf("[spec %d] expected log level %d; got %d", index, s.expLevel, got)
		}
	}
}

func TestBuilderOptions(t *testing.T) {
	ctx := newTestContext(t, BuilderFlags, "--strategy", "exhaustive", "--leaf-size", "1")
	opts, err := builderOptions(ctx)
	if err != nil {
		t.Fatal(err)
	}

	exp := bvh.Options{Strategy: bvh.Exhaustive, BucketCount: bvh.BucketCount, LeafSize: 1}
	if diff := cmp.Diff(exp, opts); diff != "" {
		t.Fatalf("builder options mismatch (-want +got):\n%s", diff)
	}

	type spec struct {
		args   []string
		expErr string
	}
	specs := []spec{
		{[]string{"--strategy", "median"}, "unknown partition strategy"},
		{[]string{"--buckets", "1"}, "bucket count must be at least 2"},
		{[]string{"--leaf-size", "0"}, "leaf size must be at least 1"},
	}
	for index, s := range specs {
		_, err := builderOptions(newTestContext(t, BuilderFlags, s.args...))
		if err == nil || !strings.Contains(err.Error(), s.expErr) {
			t.Fatalf("[spec %d] expected error containing %q; got %v", index, s.expErr, err)
		}
	}
}

func TestCompileMeshes(t *testing.T) {
	file := writeMesh(t)

	sc, stats, err := compileFiles([]string{file, file}, bvh.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if len(sc.Triangles) != 16 {
		t.Fatalf("expected 16 triangles; got %d", len(sc.Triangles))
	}
	if stats.Primitives != 16 {
		t.Fatalf("expected stats to report 16 primitives; got %d", stats.Primitives)
	}

	ctx := newTestContext(t, BuilderFlags, "--verify", file)
	if err = CompileMeshes(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestCompileMeshesErrors(t *testing.T) {
	if err := CompileMeshes(newTestContext(t, BuilderFlags)); err == nil {
		t.Fatal("expected an error when no mesh files are specified")
	}

	missing := filepath.Join(t.TempDir(), "missing.obj")
	err := CompileMeshes(newTestContext(t, BuilderFlags, missing))
	if err == nil || !strings.Contains(err.Error(), "missing.obj") {
		t.Fatalf("expected error referencing the missing file; got %v", err)
	}
}

func TestGenerateScenes(t *testing.T) {
	flags := append([]cli.Flag{cli.IntFlag{Name: "regenerate"}}, BuilderFlags...)
	flags = append(flags, GeneratorFlags...)

	ctx := newTestContext(t, flags, "--regenerate", "2", "--boxes", "4", "--verify")
	if err := GenerateScenes(ctx); err != nil {
		t.Fatal(err)
	}

	ctx = newTestContext(t, flags, "--boxes", "-1")
	if err := GenerateScenes(ctx); err == nil {
		t.Fatal("expected an error for a negative box count")
	}
}

func TestRenderFrame(t *testing.T) {
	out := filepath.Join(t.TempDir(), "frame.png")
	flags := append([]cli.Flag{
		cli.IntFlag{Name: "width", Value: 16},
		cli.IntFlag{Name: "height", Value: 12},
		cli.IntFlag{Name: "workers", Value: 3},
		cli.IntFlag{Name: "frames", Value: 2},
		cli.StringFlag{Name: "out", Value: out},
	}, BuilderFlags...)
	flags = append(flags, GeneratorFlags...)

	ctx := newTestContext(t, flags, "--boxes", "5")
	if err := RenderFrame(ctx); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() == 0 {
		t.Fatal("expected a non-empty frame image")
	}

	// Render a compiled mesh instead of a generated scene
	ctx = newTestContext(t, flags, writeMesh(t))
	if err = RenderFrame(ctx); err != nil {
		t.Fatal(err)
	}
}
