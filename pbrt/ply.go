package pbrt

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gopbrt/pbrtscene/log"
	"github.com/gopbrt/pbrtscene/types"
)

var plyLogger = log.New("pbrt.ply")

// plyMesh is the decoded output of a PLY file: parallel vertex attribute
// arrays and a flattened triangle index list (spec.md §4.4's "fixed
// triangular-face assumption").
type plyMesh struct {
	positions []types.Vec3
	normals   []types.Vec3 // nil if the file declares no nx/ny/nz properties
	uvs       []types.Vec2 // nil if the file declares no u/v (or s/t) properties
	indices   []int32
}

type plyProperty struct {
	name string
}

type plyHeader struct {
	binary        bool
	vertexCount   int
	faceCount     int
	vertexProps   []plyProperty
	faceListFound bool
}

// loadPLY reads an ASCII or binary-little-endian PLY polygon file per
// spec.md §4.4.
func loadPLY(path string) (*plyMesh, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	header, bodyOffset, err := parsePLYHeader(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if !header.faceListFound {
		return nil, fmt.Errorf("%s: missing \"element face\" declaration", path)
	}

	body := data[bodyOffset:]
	if header.binary {
		return parsePLYBinaryBody(path, header, body)
	}
	return parsePLYASCIIBody(path, header, body)
}

func parsePLYHeader(data []byte) (*plyHeader, int, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	header := &plyHeader{}

	line, ok := nextHeaderLine(scanner)
	if !ok || line != "ply" {
		return nil, 0, fmt.Errorf("not a PLY file")
	}

	section := ""
	for {
		line, ok = nextHeaderLine(scanner)
		if !ok {
			return nil, 0, fmt.Errorf("unexpected end of header")
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "comment":
			continue
		case "format":
			if len(fields) < 2 {
				return nil, 0, fmt.Errorf("malformed format line")
			}
			switch fields[1] {
			case "ascii":
				header.binary = false
			case "binary_little_endian":
				header.binary = true
			default:
				return nil, 0, fmt.Errorf("unsupported PLY format %q", fields[1])
			}
		case "element":
			if len(fields) < 3 {
				return nil, 0, fmt.Errorf("malformed element line")
			}
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return nil, 0, fmt.Errorf("malformed element count: %s", err.Error())
			}
			switch fields[1] {
			case "vertex":
				header.vertexCount = n
				section = "vertex"
			case "face":
				header.faceCount = n
				header.faceListFound = true
				section = "face"
			default:
				section = ""
			}
		case "property":
			if section == "vertex" {
				name := fields[len(fields)-1]
				header.vertexProps = append(header.vertexProps, plyProperty{name: name})
			}
			// face list properties are assumed to be
			// "property list uchar int vertex_indices" per
			// spec.md §4.4 and are not otherwise inspected.
		case "end_header":
			offset := headerByteOffset(data, "end_header")
			return header, offset, nil
		}
	}
}

// nextHeaderLine returns the next non-empty header line.
func nextHeaderLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		return line, true
	}
	return "", false
}

// headerByteOffset finds the byte immediately after the "end_header" line's
// trailing newline, to seek into the raw body for binary parsing without
// losing bufio.Scanner's read-ahead buffer.
func headerByteOffset(data []byte, marker string) int {
	idx := bytes.Index(data, []byte(marker))
	if idx < 0 {
		return len(data)
	}
	nl := bytes.IndexByte(data[idx:], '\n')
	if nl < 0 {
		return len(data)
	}
	return idx + nl + 1
}

func parsePLYASCIIBody(path string, header *plyHeader, body []byte) (*plyMesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	mesh := &plyMesh{}
	hasNormal, hasUV := vertexAttributes(header.vertexProps)

	for i := 0; i < header.vertexCount; i++ {
		line, ok := nextHeaderLine(scanner)
		if !ok {
			return nil, fmt.Errorf("%s: truncated vertex data at vertex %d", path, i)
		}
		fields := strings.Fields(line)
		if len(fields) < len(header.vertexProps) {
			return nil, fmt.Errorf("%s: vertex %d has %d fields, expected %d", path, i, len(fields), len(header.vertexProps))
		}
		values := make([]float32, len(header.vertexProps))
		for j := range header.vertexProps {
			v, err := strconv.ParseFloat(fields[j], 32)
			if err != nil {
				return nil, fmt.Errorf("%s: vertex %d: %s", path, i, err.Error())
			}
			values[j] = float32(v)
		}
		applyVertexValues(mesh, header.vertexProps, values, hasNormal, hasUV)
	}

	for i := 0; i < header.faceCount; i++ {
		line, ok := nextHeaderLine(scanner)
		if !ok {
			return nil, fmt.Errorf("%s: truncated face data at face %d", path, i)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, fmt.Errorf("%s: empty face record at face %d", path, i)
		}
		count, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s: face %d: %s", path, i, err.Error())
		}
		if count != 3 {
			return nil, fmt.Errorf("%s: face %d has %d vertices; only triangular faces are supported", path, i, count)
		}
		if len(fields) < 4 {
			return nil, fmt.Errorf("%s: face %d is missing vertex indices", path, i)
		}
		for k := 1; k <= 3; k++ {
			idx, err := strconv.Atoi(fields[k])
			if err != nil {
				return nil, fmt.Errorf("%s: face %d: %s", path, i, err.Error())
			}
			mesh.indices = append(mesh.indices, int32(idx))
		}
	}
	return mesh, nil
}

func parsePLYBinaryBody(path string, header *plyHeader, body []byte) (*plyMesh, error) {
	r := bytes.NewReader(body)
	mesh := &plyMesh{}
	hasNormal, hasUV := vertexAttributes(header.vertexProps)

	for i := 0; i < header.vertexCount; i++ {
		values := make([]float32, len(header.vertexProps))
		for j := range header.vertexProps {
			if err := binary.Read(r, binary.LittleEndian, &values[j]); err != nil {
				return nil, fmt.Errorf("%s: vertex %d: %w", path, i, err)
			}
		}
		applyVertexValues(mesh, header.vertexProps, values, hasNormal, hasUV)
	}

	for i := 0; i < header.faceCount; i++ {
		var count uint8
		if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
			return nil, fmt.Errorf("%s: face %d: %w", path, i, err)
		}
		if count != 3 {
			return nil, fmt.Errorf("%s: face %d has %d vertices; only triangular faces are supported", path, i, count)
		}
		var idx [3]int32
		if err := binary.Read(r, binary.LittleEndian, &idx); err != nil {
			return nil, fmt.Errorf("%s: face %d: %w", path, i, err)
		}
		mesh.indices = append(mesh.indices, idx[0], idx[1], idx[2])
	}

	if _, err := r.Read(make([]byte, 1)); err != io.EOF {
		plyLogger.Debugf("%s: trailing bytes after expected body size", path)
	}
	return mesh, nil
}

func vertexAttributes(props []plyProperty) (hasNormal, hasUV bool) {
	for _, p := range props {
		switch p.name {
		case "nx", "ny", "nz":
			hasNormal = true
		case "u", "v", "s", "t":
			hasUV = true
		}
	}
	return
}

func applyVertexValues(mesh *plyMesh, props []plyProperty, values []float32, hasNormal, hasUV bool) {
	var pos types.Vec3
	var normal types.Vec3
	var uv types.Vec2
	for j, p := range props {
		switch p.name {
		case "x":
			pos[0] = values[j]
		case "y":
			pos[1] = values[j]
		case "z":
			pos[2] = values[j]
		case "nx":
			normal[0] = values[j]
		case "ny":
			normal[1] = values[j]
		case "nz":
			normal[2] = values[j]
		case "u", "s":
			uv[0] = values[j]
		case "v", "t":
			uv[1] = values[j]
		}
	}
	mesh.positions = append(mesh.positions, pos)
	if hasNormal {
		mesh.normals = append(mesh.normals, normal)
	}
	if hasUV {
		mesh.uvs = append(mesh.uvs, uv)
	}
}
