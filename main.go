package main

import (
	"os"

	"github.com/gopbrt/pbrtscene/cmd"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "pbrtscene"
	app.Usage = "compile PBRT v3 scene description files into an in-memory scene graph"
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
			Name:      "parse",
			Usage:     "parse one or more scene files and report the resulting scene graph size",
			ArgsUsage: "scene_file1.pbrt scene_file2.pbrt ...",
			Action:    cmd.ParseScene,
		},
		{
			Name:      "describe",
			Usage:     "parse a scene file and print a tabular summary of its cameras, materials, textures and instances",
			ArgsUsage: "scene_file.pbrt",
			Action:    cmd.DescribeScene,
		},
	}

	app.Run(os.Args)
}
