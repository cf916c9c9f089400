package cmd

import (
	"os"

	"github.com/gopbrt/pbrtscene/pbrt"
	"github.com/urfave/cli"
)

// ParseScene parses each PBRT scene file given on the command line and
// reports the result. It does not write anything to disk: spec.md §6
// carries no persisted-state format, so this command exists purely to
// exercise and validate the compiler.
func ParseScene(ctx *cli.Context) {
	setupLogging(ctx)
	if ctx.NArg() == 0 {
		logger.Error("usage: pbrtscene parse scene_file1.pbrt scene_file2.pbrt ...")
		os.Exit(1)
	}
	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		sc, err := pbrt.Parse(sceneFile)
		if err != nil {
			logger.Errorf("%s: %s", sceneFile, err.Error())
			os.Exit(1)
		}
		logger.Noticef(
			"%s: %d camera(s), %d shape group(s), %d instance(s), %d material(s), %d texture(s), %d environment(s)",
			sceneFile, len(sc.Cameras), len(sc.ShapeGroups), len(sc.Instances), len(sc.Materials), len(sc.Textures), len(sc.Environments),
		)
	}
}
