package renderer

import (
	"context"
	"testing"

	"github.com/achilleasa/polaris-accel/asset/compiler"
	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/asset/scene/generator"
	"github.com/pkg/errors"
)

func generateScene(t *testing.T) *scene.Scene {
	b := bvh.NewDefaultBuilder()
	materials, err := generator.Populate(b, generator.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	return compiler.BuildScene(b, materials, generator.Camera())
}

func TestRenderFrame(t *testing.T) {
	sc := generateScene(t)
	opts := Options{FrameW: 64, FrameH: 48, Workers: 4}
	r, err := New(sc, NewPerfectScheduler(), opts)
	if err != nil {
		t.Fatal(err)
	}

	for frame := 0; frame < 2; frame++ {
		if err = r.Render(context.Background()); err != nil {
			t.Fatal(err)
		}

		stats := r.Stats()
		if len(stats.Workers) != 4 {
			t.Fatalf("expected stats for 4 workers; got %d", len(stats.Workers))
		}

		var rows uint32
		var rays, hits uint64
		for _, stat := range stats.Workers {
			if stat.BlockY != rows {
				t.Fatalf("expected worker %d block to start at row %d; got %d", stat.Id, rows, stat.BlockY)
			}
			rows += stat.BlockH
			rays += stat.Rays
			hits += stat.Hits
		}
		if rows != opts.FrameH {
			t.Fatalf("expected worker blocks to cover %d rows; got %d", opts.FrameH, rows)
		}
		if rays != uint64(opts.FrameW*opts.FrameH) {
			t.Fatalf("expected %d traced rays; got %d", opts.FrameW*opts.FrameH, rays)
		}
		if hits == 0 || hits == rays {
			t.Fatalf("expected some but not all rays to hit the scene; got %d/%d", hits, rays)
		}
	}

	img := r.Frame()
	if img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("expected a 64x48 frame; got %v", img.Bounds())
	}

	// The top row looks above the ceiling panel towards the sky
	if got := img.NRGBAAt(0, 0); got.R != toByte(skyColor[0]) || got.B != toByte(skyColor[2]) || got.A != 255 {
		t.Fatalf("expected top-left pixel to have the sky color; got %v", got)
	}
}

func TestRenderInterrupted(t *testing.T) {
	r, err := New(generateScene(t), NewPerfectScheduler(), Options{FrameW: 8, FrameH: 8, Workers: 2})
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = r.Render(ctx)
	if !errors.Is(err, ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted; got %v", err)
	}
}

func TestNewRendererErrors(t *testing.T) {
	sc := generateScene(t)
	noCamera := *sc
	noCamera.Camera = nil

	type spec struct {
		sc     *scene.Scene
		opts   Options
		expErr error
	}
	specs := []spec{
		{nil, Options{FrameW: 1, FrameH: 1}, ErrSceneNotDefined},
		{&noCamera, Options{FrameW: 1, FrameH: 1}, ErrCameraNotDefined},
		{sc, Options{FrameW: 0, FrameH: 1}, ErrInvalidFrameSize},
		{sc, Options{FrameW: 1, FrameH: 0}, ErrInvalidFrameSize},
	}

	for index, s := range specs {
		if _, err := New(s.sc, NewPerfectScheduler(), s.opts); err != s.expErr {
			t.Fatalf("[spec %d] expected error %v; got %v", index, s.expErr, err)
		}
	}
}

func TestWorkerCount(t *testing.T) {
	if got := (Options{FrameH: 3, Workers: 8}).workerCount(); got != 3 {
		t.Fatalf("expected worker count to be clamped to the frame height; got %d", got)
	}
	if got := (Options{FrameH: 1000}).workerCount(); got < 1 {
		t.Fatalf("expected at least one worker; got %d", got)
	}
}
