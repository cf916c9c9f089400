package pbrt

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

const asciiPLY = `ply
format ascii 1.0
comment made for testing
element vertex 3
property float x
property float y
property float z
property float nx
property float ny
property float nz
element face 1
property list uchar int vertex_indices
end_header
0 0 0 0 0 1
1 0 0 0 0 1
0 1 0 0 0 1
3 0 1 2
`

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("could not write temp file: %v", err)
	}
	return path
}

func TestLoadPLYASCIITriangle(t *testing.T) {
	path := writeTempFile(t, "tri.ply", asciiPLY)
	mesh, err := loadPLY(path)
	if err != nil {
		t.Fatalf("loadPLY failed: %v", err)
	}
	if len(mesh.positions) != 3 {
		t.Fatalf("len(positions) = %d, want 3", len(mesh.positions))
	}
	if len(mesh.normals) != 3 {
		t.Fatalf("len(normals) = %d, want 3", len(mesh.normals))
	}
	if mesh.uvs != nil {
		t.Fatalf("uvs = %v, want nil (no u/v properties declared)", mesh.uvs)
	}
	wantIndices := []int32{0, 1, 2}
	if len(mesh.indices) != 3 {
		t.Fatalf("len(indices) = %d, want 3", len(mesh.indices))
	}
	for i, idx := range wantIndices {
		if mesh.indices[i] != idx {
			t.Fatalf("indices[%d] = %d, want %d", i, mesh.indices[i], idx)
		}
	}
}

func TestLoadPLYRejectsNonTriangularFace(t *testing.T) {
	bad := `ply
format ascii 1.0
element vertex 4
property float x
property float y
property float z
element face 1
property list uchar int vertex_indices
end_header
0 0 0
1 0 0
1 1 0
0 1 0
4 0 1 2 3
`
	path := writeTempFile(t, "quad.ply", bad)
	if _, err := loadPLY(path); err == nil {
		t.Fatal("expected an error loading a face with 4 vertices")
	}
}

func TestLoadPLYBinaryLittleEndianTriangle(t *testing.T) {
	// Build a minimal binary PLY by hand: header is ASCII text, body is
	// raw little-endian floats/ints.
	header := "ply\nformat binary_little_endian 1.0\nelement vertex 3\nproperty float x\nproperty float y\nproperty float z\nelement face 1\nproperty list uchar int vertex_indices\nend_header\n"

	buf := []byte(header)
	writeF32 := func(v float32) {
		bits := math.Float32bits(v)
		buf = append(buf, byte(bits), byte(bits>>8), byte(bits>>16), byte(bits>>24))
	}
	writeI32 := func(v int32) {
		u := uint32(v)
		buf = append(buf, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
	}

	verts := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	for _, v := range verts {
		writeF32(v[0])
		writeF32(v[1])
		writeF32(v[2])
	}
	buf = append(buf, 3) // vertex count for the single face
	writeI32(0)
	writeI32(1)
	writeI32(2)

	path := writeTempFile(t, "bin.ply", "")
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("could not write binary ply: %v", err)
	}

	mesh, err := loadPLY(path)
	if err != nil {
		t.Fatalf("loadPLY failed: %v", err)
	}
	if len(mesh.positions) != 3 {
		t.Fatalf("len(positions) = %d, want 3", len(mesh.positions))
	}
	if len(mesh.indices) != 3 || mesh.indices[2] != 2 {
		t.Fatalf("indices = %v, want [0 1 2]", mesh.indices)
	}
}
