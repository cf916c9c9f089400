package pbrt

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseMinimalCameraLookAt(t *testing.T) {
	src := `
LookAt 0 0 5  0 0 0  0 1 0
Camera "perspective" "float fov" [30]
WorldBegin
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "cam.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sc.Cameras) != 1 {
		t.Fatalf("len(Cameras) = %d, want 1", len(sc.Cameras))
	}
	if sc.Cameras[0].FOV <= 0 {
		t.Fatalf("FOV = %v, want > 0", sc.Cameras[0].FOV)
	}
}

func TestParseTranslateCompositionProducesInstanceFrame(t *testing.T) {
	src := `
WorldBegin
AttributeBegin
  Translate 2 0 0
  Shape "trianglemesh"
    "point P" [ 0 0 0  1 0 0  0 1 0 ]
    "integer indices" [ 0 1 2 ]
AttributeEnd
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "tri.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sc.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1", len(sc.Instances))
	}
	got := sc.Instances[0].Frame.Translation()
	if got[0] != 2 || got[1] != 0 || got[2] != 0 {
		t.Fatalf("instance frame translation = %v, want {2 0 0}", got)
	}
	shape := sc.Instances[0].Group.Shapes[0]
	if len(shape.Vertices) != 3 {
		t.Fatalf("len(Vertices) = %d, want 3", len(shape.Vertices))
	}
}

func TestParseIncludeResolvesRelativePath(t *testing.T) {
	dir := t.TempDir()
	included := "Shape \"trianglemesh\" \"point P\" [0 0 0  1 0 0  0 1 0] \"integer indices\" [0 1 2]\n"
	if err := os.WriteFile(filepath.Join(dir, "part.pbrt"), []byte(included), 0o644); err != nil {
		t.Fatalf("could not write included file: %v", err)
	}
	main := "WorldBegin\nInclude \"part.pbrt\"\nWorldEnd\n"
	mainPath := filepath.Join(dir, "main.pbrt")
	if err := os.WriteFile(mainPath, []byte(main), 0o644); err != nil {
		t.Fatalf("could not write main scene file: %v", err)
	}
	sc, err := Parse(mainPath)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sc.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1 (the shape from the included file)", len(sc.Instances))
	}
}

func TestParseNamedMaterialReuseSharesOneMaterial(t *testing.T) {
	src := `
WorldBegin
MakeNamedMaterial "red" "string type" ["matte"] "rgb Kd" [1 0 0]
AttributeBegin
  NamedMaterial "red"
  Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
AttributeEnd
AttributeBegin
  NamedMaterial "red"
  Shape "trianglemesh" "point P" [2 0 0  3 0 0  2 1 0] "integer indices" [0 1 2]
AttributeEnd
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "mat.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sc.Materials) != 1 {
		t.Fatalf("len(Materials) = %d, want 1 (material should be committed once and shared)", len(sc.Materials))
	}
	if len(sc.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(sc.Instances))
	}
	if sc.Instances[0].Group.Shapes[0].Material != sc.Instances[1].Group.Shapes[0].Material {
		t.Fatal("both shapes should reference the same committed material")
	}
}

func TestParseObjectInstanceDedupAndDistinctFrames(t *testing.T) {
	src := `
WorldBegin
ObjectBegin "box"
  Shape "cube"
ObjectEnd
AttributeBegin
  Translate 1 0 0
  ObjectInstance "box"
AttributeEnd
AttributeBegin
  Translate -1 0 0
  ObjectInstance "box"
AttributeEnd
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "obj.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sc.ShapeGroups) != 1 {
		t.Fatalf("len(ShapeGroups) = %d, want 1 (object template committed once)", len(sc.ShapeGroups))
	}
	if len(sc.Instances) != 2 {
		t.Fatalf("len(Instances) = %d, want 2", len(sc.Instances))
	}
	f0 := sc.Instances[0].Frame.Translation()
	f1 := sc.Instances[1].Frame.Translation()
	if f0 == f1 {
		t.Fatalf("expected distinct instance frames, got %v and %v", f0, f1)
	}
}

func TestParseUnknownDirectiveWarnsAndContinues(t *testing.T) {
	src := `
WorldBegin
ThisIsNotADirective "string foo" ["bar"] [1 2 3]
Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "unknown.pbrt", src))
	if err != nil {
		t.Fatalf("Parse should recover from an unknown directive, got error: %v", err)
	}
	if len(sc.Instances) != 1 {
		t.Fatalf("len(Instances) = %d, want 1 (parsing should continue past the unknown directive)", len(sc.Instances))
	}
}
