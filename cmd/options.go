package cmd

import (
	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene/generator"
	"github.com/urfave/cli"
)

// Flags shared by all commands that build a BVH.
var BuilderFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "strategy, s",
		Value: bvh.Binned.String(),
		Usage: "split selection strategy (binned or exhaustive)",
	},
	cli.IntFlag{
		Name:  "buckets",
		Value: bvh.BucketCount,
		Usage: "number of buckets for the binned strategy",
	},
	cli.IntFlag{
		Name:  "leaf-size",
		Value: bvh.LeafNodeSize,
		Usage: "nodes with fewer primitives than this value become leafs",
	},
	cli.BoolFlag{
		Name:  "verify",
		Usage: "check the generated tree against the node layout contract",
	},
}

// Flags controlling random scene generation.
var GeneratorFlags = []cli.Flag{
	cli.Int64Flag{
		Name:  "seed",
		Value: generator.DefaultOptions().Seed,
		Usage: "random seed for the generated scene",
	},
	cli.IntFlag{
		Name:  "boxes",
		Value: generator.DefaultOptions().Boxes,
		Usage: "number of boxes in the generated scene",
	},
	cli.IntFlag{
		Name:  "materials",
		Value: generator.DefaultOptions().Materials,
		Usage: "number of random materials in the generated scene",
	},
}

// Map command flags to builder options.
func builderOptions(ctx *cli.Context) (bvh.Options, error) {
	strategy, err := bvh.ParseStrategy(ctx.String("strategy"))
	if err != nil {
		return bvh.Options{}, err
	}

	opts := bvh.Options{
		Strategy:    strategy,
		BucketCount: ctx.Int("buckets"),
		LeafSize:    ctx.Int("leaf-size"),
	}
	return opts, opts.Validate()
}

// Map command flags to generator options.
func generatorOptions(ctx *cli.Context) generator.Options {
	opts := generator.DefaultOptions()
	opts.Seed = ctx.Int64("seed")
	opts.Boxes = ctx.Int("boxes")
	opts.Materials = ctx.Int("materials")
	return opts
}

// Validate the last build of builder if requested by the verify flag.
func verifyBuild(ctx *cli.Context, builder *bvh.Builder) error {
	if !ctx.Bool("verify") {
		return nil
	}

	if err := bvh.Validate(builder.Nodes(), builder.Triangles()); err != nil {
		return err
	}
	logger.Notice("bvh layout verified")
	return nil
}
