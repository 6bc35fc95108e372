// Package renderer generates preview frames of a compiled scene by casting
// one primary ray per pixel through the reference BVH tracer.
package renderer

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/log"
	"github.com/achilleasa/polaris-accel/tracer"
	"github.com/achilleasa/polaris-accel/types"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// The color returned by rays that do not hit any geometry.
var skyColor = types.Vec3{142.0 / 255.0, 178.0 / 255.0, 237.0 / 255.0}

// Ambient term added to the normal-facing ratio of shaded surfaces.
const ambient = 0.2

// A Renderer traces preview frames for a scene. Frame rows are split into
// blocks that are traced concurrently; block heights are balanced across
// frames by a BlockScheduler.
type Renderer struct {
	logger    log.Logger
	opts      Options
	scene     *scene.Scene
	tracer    *tracer.Tracer
	scheduler BlockScheduler

	frame *image.NRGBA
	stats FrameStats
}

// Create a new renderer for a compiled scene.
func New(sc *scene.Scene, scheduler BlockScheduler, opts Options) (*Renderer, error) {
	if sc == nil {
		return nil, ErrSceneNotDefined
	}
	if sc.Camera == nil {
		return nil, ErrCameraNotDefined
	}
	if opts.FrameW == 0 || opts.FrameH == 0 {
		return nil, ErrInvalidFrameSize
	}

	return &Renderer{
		logger:    log.New("renderer"),
		opts:      opts,
		scene:     sc,
		tracer:    tracer.New(sc.Nodes, sc.Triangles),
		scheduler: scheduler,
		frame:     imaging.New(int(opts.FrameW), int(opts.FrameH), color.Black),
	}, nil
}

// Get the last rendered frame.
func (r *Renderer) Frame() *image.NRGBA {
	return r.frame
}

// Get render statistics for the last frame.
func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// Render a frame. Rendering stops early with ErrInterrupted if ctx is
// cancelled.
func (r *Renderer) Render(ctx context.Context) error {
	start := time.Now()
	workers := r.opts.workerCount()
	blocks := r.scheduler.Schedule(workers, r.stats.Workers, r.opts.FrameH)

	stats := make([]WorkerStat, workers)
	g, gctx := errgroup.WithContext(ctx)
	var blockY uint32
	for idx, blockH := range blocks {
		stat := &stats[idx]
		stat.Id = idx
		stat.BlockY = blockY
		stat.BlockH = blockH
		stat.FramePercent = 100.0 * float32(blockH) / float32(r.opts.FrameH)

		g.Go(func() error {
			return r.renderBlock(gctx, stat)
		})
		blockY += blockH
	}

	if err := g.Wait(); err != nil {
		return err
	}

	r.stats = FrameStats{
		Workers:    stats,
		RenderTime: time.Since(start),
	}
	r.logger.Debugf("rendered %dx%d frame with %d workers in %s", r.opts.FrameW, r.opts.FrameH, workers, r.stats.RenderTime)
	return nil
}

// Trace the rows of a block.
func (r *Renderer) renderBlock(ctx context.Context, stat *WorkerStat) error {
	start := time.Now()
	camera := r.scene.Camera
	frameW, frameH := float32(r.opts.FrameW), float32(r.opts.FrameH)
	aspect := frameW / frameH

	for y := stat.BlockY; y < stat.BlockY+stat.BlockH; y++ {
		select {
		case <-ctx.Done():
			return errors.Wrap(ErrInterrupted, ctx.Err().Error())
		default:
		}

		v := 1 - 2*(float32(y)+0.5)/frameH
		rowOffset := r.frame.PixOffset(0, int(y))
		for x := uint32(0); x < r.opts.FrameW; x++ {
			u := 2*(float32(x)+0.5)/frameW - 1
			origin, dir := camera.Ray(u, v, aspect)
			ray := tracer.NewRay(origin, dir)

			hit := r.tracer.Intersect(ray)
			stat.Rays++
			c := skyColor
			if hit.Valid() {
				stat.Hits++
				c = r.shade(&ray, hit)
			}

			pix := r.frame.Pix[rowOffset+4*int(x) : rowOffset+4*int(x)+4]
			pix[0], pix[1], pix[2], pix[3] = toByte(c[0]), toByte(c[1]), toByte(c[2]), 255
		}
	}

	stat.RenderTime = time.Since(start)
	return nil
}

// Shade a hit using its material color scaled by how directly the surface
// faces the ray. Emissive surfaces are normalized to their brightest
// component and are not attenuated.
func (r *Renderer) shade(ray *tracer.Ray, hit tracer.Hit) types.Vec3 {
	tri := r.tracer.Triangle(hit)
	if int(tri.Material) < 0 || int(tri.Material) >= len(r.scene.Materials) {
		return types.Vec3{1, 0, 1}
	}
	mat := &r.scene.Materials[tri.Material]
	albedo := mat.Color.Vec3()

	if mat.Type == scene.Emissive {
		if maxC := albedo.MaxComponent(); maxC > 1 {
			albedo = albedo.Mul(1 / maxC)
		}
		return albedo
	}

	facing := float32(math.Abs(float64(r.tracer.Normal(hit).Dot(ray.Dir.Normalize()))))
	return albedo.Mul(ambient + (1-ambient)*facing)
}

// Convert a [0, 1] color component to a byte.
func toByte(c float32) uint8 {
	switch {
	case c <= 0 || math.IsNaN(float64(c)):
		return 0
	case c >= 1:
		return 255
	}
	return uint8(c*255 + 0.5)
}
