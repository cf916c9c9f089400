package pbrt

import (
	"testing"

	"github.com/gopbrt/pbrtscene/scene"
)

func TestMixMaterialLerpsScalarFields(t *testing.T) {
	src := `
WorldBegin
MakeNamedMaterial "a" "string type" ["matte"] "rgb Kd" [1 0 0]
MakeNamedMaterial "b" "string type" ["matte"] "rgb Kd" [0 0 1]
Material "mix" "string namedmaterial1" ["a"] "string namedmaterial2" ["b"] "float amount" [0.25]
Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "mix.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(sc.Materials) != 1 {
		t.Fatalf("len(Materials) = %d, want 1", len(sc.Materials))
	}
	mat := sc.Materials[0]
	if mat.Kind != scene.MixMaterial {
		t.Fatalf("Kind = %v, want MixMaterial", mat.Kind)
	}
	want := [3]float32{0.25, 0, 0.75} // 1*0.25+0*0.75, 0, 0*0.25+1*0.75
	for i := range want {
		if absf(mat.Diffuse[i]-want[i]) > 1e-5 {
			t.Fatalf("Diffuse = %v, want %v", mat.Diffuse, want)
		}
	}
}

func TestMixMaterialDefaultAmountIsOneHalf(t *testing.T) {
	src := `
WorldBegin
MakeNamedMaterial "a" "string type" ["matte"] "rgb Kd" [1 0 0]
MakeNamedMaterial "b" "string type" ["matte"] "rgb Kd" [0 1 0]
Material "mix" "string namedmaterial1" ["a"] "string namedmaterial2" ["b"]
Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "mixdefault.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mat := sc.Materials[0]
	want := [3]float32{0.5, 0.5, 0}
	for i := range want {
		if absf(mat.Diffuse[i]-want[i]) > 1e-5 {
			t.Fatalf("Diffuse = %v, want %v (amount defaults to 0.5)", mat.Diffuse, want)
		}
	}
}

func TestMixMaterialUndeclaredReferenceIsAnError(t *testing.T) {
	src := `
WorldBegin
MakeNamedMaterial "a" "string type" ["matte"] "rgb Kd" [1 0 0]
Material "mix" "string namedmaterial1" ["a"] "string namedmaterial2" ["missing"]
Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
WorldEnd
`
	if _, err := Parse(writeTempFile(t, "mixbad.pbrt", src)); err == nil {
		t.Fatal("expected an error referencing an undeclared named material")
	}
}

func TestMixMaterialBlendsTextureOnlyOnOneSideByScaling(t *testing.T) {
	src := `
WorldBegin
Texture "solidred" "rgb" "constant" "rgb value" [1 0 0]
MakeNamedMaterial "a" "string type" ["matte"] "texture Kd" ["solidred"]
MakeNamedMaterial "b" "string type" ["matte"] "rgb Kd" [0 0 0]
Material "mix" "string namedmaterial1" ["a"] "string namedmaterial2" ["b"] "float amount" [0.5]
Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
WorldEnd
`
	sc, err := Parse(writeTempFile(t, "mixtex.pbrt", src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	mat := sc.Materials[0]
	if mat.DiffuseTex == nil {
		t.Fatal("expected a DiffuseTex to survive (material a declared Kd as a texture)")
	}
}

func TestNamedMaterialUnknownNameIsAnError(t *testing.T) {
	src := `
WorldBegin
AttributeBegin
  NamedMaterial "nope"
  Shape "trianglemesh" "point P" [0 0 0  1 0 0  0 1 0] "integer indices" [0 1 2]
AttributeEnd
WorldEnd
`
	if _, err := Parse(writeTempFile(t, "namedbad.pbrt", src)); err == nil {
		t.Fatal("expected an error referencing an undeclared NamedMaterial")
	}
}

func TestMakeNamedMaterialRejectsRedeclarationInSameScope(t *testing.T) {
	src := `
WorldBegin
MakeNamedMaterial "a" "string type" ["matte"] "rgb Kd" [1 0 0]
MakeNamedMaterial "a" "string type" ["matte"] "rgb Kd" [0 1 0]
WorldEnd
`
	if _, err := Parse(writeTempFile(t, "dupmat.pbrt", src)); err == nil {
		t.Fatal("expected an error redeclaring \"a\" in the same scope")
	}
}
