package cmd

import (
	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene/generator"
	"github.com/urfave/cli"
)

// Build BVHs for one or more random scenes. When regenerating, the builder
// is cleared and repopulated using consecutive seeds.
func GenerateScenes(ctx *cli.Context) error {
	setupLogging(ctx)

	opts, err := builderOptions(ctx)
	if err != nil {
		return err
	}

	builder, err := bvh.NewBuilder(opts)
	if err != nil {
		return err
	}

	genOpts := generatorOptions(ctx)
	for run := 0; run <= ctx.Int("regenerate"); run++ {
		builder.Clear()
		if _, err = generator.Populate(builder, genOpts); err != nil {
			return err
		}

		builder.Build()
		logger.Noticef("bvh information (seed: %d):\n%s", genOpts.Seed, builder.Stats().Table())

		if err = verifyBuild(ctx, builder); err != nil {
			return err
		}
		genOpts.Seed++
	}

	return nil
}
