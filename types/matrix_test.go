package types

import (
	"math"
	"testing"
)

func approxEqual(a, b, eps float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}

func TestIdent4IsMultiplicativeIdentity(t *testing.T) {
	m := Translate4(1, 2, 3)
	got := m.Mul4(Ident4())
	for i := range got {
		if !approxEqual(got[i], m[i], 1e-6) {
			t.Fatalf("Ident4 is not a multiplicative identity at index %d: got %v want %v", i, got[i], m[i])
		}
	}
}

func TestTranslate4Translation(t *testing.T) {
	m := Translate4(1, 2, 3)
	v := m.Translation()
	want := Vec3{1, 2, 3}
	if v != want {
		t.Fatalf("Translation() = %v, want %v", v, want)
	}
}

func TestMul4x1AppliesTranslation(t *testing.T) {
	m := Translate4(1, 2, 3)
	out := m.Mul4x1(Vec4{0, 0, 0, 1})
	want := Vec4{1, 2, 3, 1}
	if out != want {
		t.Fatalf("Mul4x1 = %v, want %v", out, want)
	}
}

func TestInvRoundTrips(t *testing.T) {
	m := Translate4(1, 2, 3).Mul4(Scale4(2, 3, 4))
	inv := m.Inv()
	got := m.Mul4(inv)
	ident := Ident4()
	for i := range got {
		if !approxEqual(got[i], ident[i], 1e-3) {
			t.Fatalf("m * m.Inv() != identity at index %d: got %v", i, got[i])
		}
	}
}

func TestInvDegenerateFallsBackToIdentity(t *testing.T) {
	var singular Mat4 // all zero, determinant 0
	got := singular.Inv()
	if got != Ident4() {
		t.Fatalf("Inv() of a singular matrix = %v, want identity", got)
	}
}

func TestFromValues16TransposesColumnMajor(t *testing.T) {
	// Column-major input representing Translate(1,2,3): PBRT lays
	// translation in the last row of its column-major 16 floats.
	colMajor := []float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		1, 2, 3, 1,
	}
	m := FromValues16(colMajor)
	if m.Translation() != (Vec3{1, 2, 3}) {
		t.Fatalf("FromValues16 translation = %v, want {1 2 3}", m.Translation())
	}
}

func TestPerspective4FOVMatchesTangent(t *testing.T) {
	fov := float32(math.Pi / 2)
	m := Perspective4(fov, 1, 0.1, 1000)
	want := float32(1.0 / math.Tan(float64(fov/2)))
	if !approxEqual(m[0], want, 1e-4) {
		t.Fatalf("Perspective4[0] = %v, want %v", m[0], want)
	}
}
