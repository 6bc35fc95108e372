package cmd

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/achilleasa/polaris-accel/asset/compiler"
	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/asset/scene/generator"
	"github.com/achilleasa/polaris-accel/renderer"
	"github.com/disintegration/imaging"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
)

// Render one or more preview frames of a compiled mesh or of a generated
// scene and save the last frame to an image file.
func RenderFrame(ctx *cli.Context) error {
	setupLogging(ctx)

	opts := renderer.Options{
		FrameW:  uint32(ctx.Int("width")),
		FrameH:  uint32(ctx.Int("height")),
		Workers: ctx.Int("workers"),
	}

	builderOpts, err := builderOptions(ctx)
	if err != nil {
		return err
	}

	sc, err := loadScene(ctx, builderOpts)
	if err != nil {
		return err
	}

	r, err := renderer.New(sc, renderer.NewPerfectScheduler(), opts)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	frames := ctx.Int("frames")
	if frames < 1 {
		frames = 1
	}
	for frame := 0; frame < frames; frame++ {
		if err = r.Render(runCtx); err != nil {
			return err
		}

		// Display stats
		displayFrameStats(r.Stats())
	}

	out := ctx.String("out")
	if err = imaging.Save(r.Frame(), out); err != nil {
		return errors.Wrapf(err, "could not save frame to %q", out)
	}
	logger.Noticef("saved frame to %s", out)

	return nil
}

// Compile the mesh files passed as arguments or generate a random scene if
// no arguments are specified.
func loadScene(ctx *cli.Context, opts bvh.Options) (*scene.Scene, error) {
	if ctx.NArg() != 0 {
		sc, stats, err := compileFiles(ctx.Args(), opts)
		if err != nil {
			return nil, err
		}
		logger.Infof("bvh information:\n%s", stats.Table())
		return sc, nil
	}

	builder, err := bvh.NewBuilder(opts)
	if err != nil {
		return nil, err
	}

	materials, err := generator.Populate(builder, generatorOptions(ctx))
	if err != nil {
		return nil, err
	}

	sc := compiler.BuildScene(builder, materials, generator.Camera())
	logger.Infof("bvh information:\n%s", builder.Stats().Table())
	return sc, nil
}

func displayFrameStats(stats renderer.FrameStats) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Block start", "Block height", "% of frame", "Rays", "Hits", "Render time"})

	var rays, hits uint64
	for _, stat := range stats.Workers {
		table.Append([]string{
			fmt.Sprintf("%d", stat.Id),
			fmt.Sprintf("%d", stat.BlockY),
			fmt.Sprintf("%d", stat.BlockH),
			fmt.Sprintf("%02.1f %%", stat.FramePercent),
			fmt.Sprintf("%d", stat.Rays),
			fmt.Sprintf("%d", stat.Hits),
			stat.RenderTime.String(),
		})
		rays += stat.Rays
		hits += stat.Hits
	}
	table.SetFooter([]string{"", "", "", "TOTAL", fmt.Sprintf("%d", rays), fmt.Sprintf("%d", hits), stats.RenderTime.String()})

	table.Render()
	logger.Noticef("frame statistics\n%s", buf.String())
}
