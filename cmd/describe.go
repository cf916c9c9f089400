package cmd

import (
	"fmt"
	"os"

	"github.com/gopbrt/pbrtscene/pbrt"
	"github.com/gopbrt/pbrtscene/scene"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"
)

// DescribeScene parses a single scene file and prints a tabular summary of
// its cameras, materials, textures and instances, modeled on the teacher's
// ListDevices buffered tabular report.
func DescribeScene(ctx *cli.Context) {
	setupLogging(ctx)
	if ctx.NArg() != 1 {
		logger.Error("usage: pbrtscene describe scene_file.pbrt")
		os.Exit(1)
	}

	sc, err := pbrt.Parse(ctx.Args().Get(0))
	if err != nil {
		logger.Errorf("%s", err.Error())
		os.Exit(1)
	}

	describeCameras(sc)
	describeMaterials(sc)
	describeTextures(sc)
	describeInstances(sc)
}

func describeCameras(sc *scene.Scene) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"#", "fov (deg)", "aspect", "aperture", "focal dist"})
	for i, cam := range sc.Cameras {
		table.Append([]string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.2f", cam.FOV*180/3.14159265),
			fmt.Sprintf("%.3f", cam.AspectRatio),
			fmt.Sprintf("%.4f", cam.LensRadius),
			fmt.Sprintf("%.2f", cam.FocalDist),
		})
	}
	fmt.Println("Cameras")
	table.Render()
}

func describeMaterials(sc *scene.Scene) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "name", "kind", "emitter"})
	for _, mat := range sc.Materials {
		table.Append([]string{mat.ID, mat.Name, materialKindName(mat.Kind), fmt.Sprintf("%t", mat.IsEmitter)})
	}
	fmt.Println("Materials")
	table.Render()
}

func describeTextures(sc *scene.Scene) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "name", "width", "height", "hdr"})
	for _, tex := range sc.Textures {
		table.Append([]string{
			tex.ID, tex.Name,
			fmt.Sprintf("%d", tex.Width),
			fmt.Sprintf("%d", tex.Height),
			fmt.Sprintf("%t", tex.HDR),
		})
	}
	fmt.Println("Textures")
	table.Render()
}

func describeInstances(sc *scene.Scene) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"id", "group", "shape count"})
	for _, inst := range sc.Instances {
		table.Append([]string{inst.ID, inst.Group.ID, fmt.Sprintf("%d", len(inst.Group.Shapes))})
	}
	fmt.Println("Instances")
	table.Render()
}

func materialKindName(k scene.MaterialKind) string {
	switch k {
	case scene.MatteMaterial:
		return "matte"
	case scene.PlasticMaterial:
		return "plastic"
	case scene.MetalMaterial:
		return "metal"
	case scene.MirrorMaterial:
		return "mirror"
	case scene.UberMaterial:
		return "uber"
	case scene.TranslucentMaterial:
		return "translucent"
	case scene.GlassMaterial:
		return "glass"
	case scene.MixMaterial:
		return "mix"
	default:
		return "unknown"
	}
}
