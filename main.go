package main

import (
	"fmt"
	"os"

	"github.com/achilleasa/polaris-accel/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "polaris-accel"
	app.Usage = "build bounding volume hierarchies for triangle scenes"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile wavefront obj meshes into a flat BVH scene",
			Description: `
Parse one or more meshes from wavefront obj files, merge them into a single
scene and build a BVH tree to accelerate ray intersection tests.

Statistics about the compiled scene and the generated tree are printed once
the build completes.`,
			ArgsUsage: "mesh_file1.obj mesh_file2.obj ...",
			Flags:     cmd.BuilderFlags,
			Action:    cmd.CompileMeshes,
		},
		{
			Name:  "generate",
			Usage: "build BVH trees for randomly generated box scenes",
			Description: `
Populate a builder with a random scene of boxes between a floor and a ceiling
and build its BVH tree. With --regenerate the builder is cleared and reused for
additional scenes using consecutive seeds.`,
			Flags: append(append([]cli.Flag{
				cli.IntFlag{
					Name:  "regenerate",
					Value: 0,
					Usage: "number of additional scenes to build with the same builder",
				},
			}, cmd.BuilderFlags...), cmd.GeneratorFlags...),
			Action: cmd.GenerateScenes,
		},
		{
			Name:  "render",
			Usage: "render a preview frame",
			Description: `
Render a preview frame of the meshes passed as arguments by tracing one ray per
pixel through the BVH tree. If no mesh files are specified, a random scene is
generated instead.`,
			ArgsUsage: "[mesh_file1.obj mesh_file2.obj ...]",
			Flags: append(append([]cli.Flag{
				cli.IntFlag{
					Name:  "width",
					Value: 512,
					Usage: "frame width",
				},
				cli.IntFlag{
					Name:  "height",
					Value: 512,
					Usage: "frame height",
				},
				cli.IntFlag{
					Name:  "workers",
					Value: 0,
					Usage: "number of render workers; defaults to the number of CPUs",
				},
				cli.IntFlag{
					Name:  "frames",
					Value: 1,
					Usage: "number of frames to render; block sizes are rebalanced after each frame",
				},
				cli.StringFlag{
					Name:  "out, o",
					Value: "frame.png",
					Usage: "image filename for the rendered frame",
				},
			}, cmd.BuilderFlags...), cmd.GeneratorFlags...),
			Action: cmd.RenderFrame,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}
