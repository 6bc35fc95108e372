package cmd

import (
	"github.com/achilleasa/polaris-accel/asset/compiler"
	"github.com/achilleasa/polaris-accel/asset/compiler/bvh"
	"github.com/achilleasa/polaris-accel/asset/scene"
	"github.com/achilleasa/polaris-accel/asset/scene/reader"
	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/sync/errgroup"
)

// Parse meshes from wavefront obj files, merge them into a single scene and
// build its BVH.
func CompileMeshes(ctx *cli.Context) error {
	setupLogging(ctx)

	if ctx.NArg() == 0 {
		return errors.New("missing mesh file arguments")
	}

	opts, err := builderOptions(ctx)
	if err != nil {
		return err
	}

	sc, stats, err := compileFiles(ctx.Args(), opts)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())
	logger.Noticef("bvh information:\n%s", stats.Table())

	if ctx.Bool("verify") {
		if err = bvh.Validate(sc.Nodes, sc.Triangles); err != nil {
			return err
		}
		logger.Notice("bvh layout verified")
	}

	return nil
}

// Parse mesh files in parallel and compile them into a scene. Meshes are
// merged in argument order.
func compileFiles(files []string, opts bvh.Options) (*scene.Scene, bvh.Stats, error) {
	meshes := make([]*reader.Mesh, len(files))

	var g errgroup.Group
	for idx, file := range files {
		idx, file := idx, file
		g.Go(func() error {
			mesh, err := reader.ReadMesh(file)
			if err != nil {
				return errors.Wrapf(err, "could not load %q", file)
			}
			meshes[idx] = mesh
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, bvh.Stats{}, err
	}

	return compiler.Compile(meshes, opts)
}
