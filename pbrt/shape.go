package pbrt

import (
	"path/filepath"

	"github.com/gopbrt/pbrtscene/scene"
	"github.com/gopbrt/pbrtscene/types"
)

// parseShapeDirective implements the Shape directive for the trianglemesh,
// plymesh, cube and curve subtypes (spec.md §4.4/§4.5).
func (p *Parser) parseShapeDirective(tok Token) error {
	subtype, err := p.expectString()
	if err != nil {
		return err
	}
	params, err := p.parseParameters()
	if err != nil {
		return err
	}

	shape := &scene.Shape{}
	switch subtype {
	case "trianglemesh":
		if err := p.buildTriangleMesh(tok, params, shape); err != nil {
			return err
		}
	case "plymesh":
		if err := p.buildPLYMesh(tok, params, shape); err != nil {
			return err
		}
	case "cube":
		buildCube(shape)
	case "curve":
		if err := p.buildCurve(tok, params, shape); err != nil {
			return err
		}
	default:
		return p.syntaxErrorAt(tok, "unsupported shape subtype %q", subtype)
	}

	return p.finishShape(tok, shape)
}

func findParam(params []Parameter, name string) *Parameter {
	for i := range params {
		if params[i].Name == name {
			return &params[i]
		}
	}
	return nil
}

func (p *Parser) buildTriangleMesh(tok Token, params []Parameter, shape *scene.Shape) error {
	pParam := findParam(params, "P")
	if pParam == nil {
		return p.syntaxErrorAt(tok, "trianglemesh requires a \"P\" parameter")
	}
	indicesParam := findParam(params, "indices")
	if indicesParam == nil {
		return p.syntaxErrorAt(tok, "trianglemesh requires an \"indices\" parameter")
	}
	if len(indicesParam.Ints)%3 != 0 {
		return p.syntaxErrorAt(tok, "trianglemesh \"indices\" length %d is not a multiple of 3", len(indicesParam.Ints))
	}

	shape.Vertices = pParam.RGBs // RGBs holds any point3-typed triple, including P
	shape.Indices = indicesParam.Ints

	// spec.md §9 open question: normals are never synthesized when "N"
	// is absent; the shape is left with Normals == nil.
	if nParam := findParam(params, "N"); nParam != nil {
		shape.Normals = nParam.RGBs
	}

	uScale, vScale := p.gs().uv.u, p.gs().uv.v
	if uvParam := findParam(params, "uv"); uvParam != nil {
		shape.UVs = unpackUVs(uvParam.Floats, uScale, vScale)
	} else if stParam := findParam(params, "st"); stParam != nil {
		shape.UVs = unpackUVs(stParam.Floats, uScale, vScale)
	}
	return nil
}

func unpackUVs(flat []float32, uScale, vScale float32) []types.Vec2 {
	uvs := make([]types.Vec2, 0, len(flat)/2)
	for i := 0; i+1 < len(flat); i += 2 {
		uvs = append(uvs, types.Vec2{flat[i] * uScale, flat[i+1] * vScale})
	}
	return uvs
}

func (p *Parser) buildPLYMesh(tok Token, params []Parameter, shape *scene.Shape) error {
	fileParam := findParam(params, "filename")
	if fileParam == nil || len(fileParam.Strings) != 1 {
		return p.syntaxErrorAt(tok, "plymesh requires a \"filename\" parameter")
	}
	path := fileParam.Strings[0]
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(p.currentFilePath()), path)
	}

	mesh, err := loadPLY(path)
	if err != nil {
		return p.syntaxErrorAt(tok, "%s", err.Error())
	}
	shape.Vertices = mesh.positions
	shape.Normals = mesh.normals
	shape.Indices = mesh.indices
	if mesh.uvs != nil {
		uScale, vScale := p.gs().uv.u, p.gs().uv.v
		shape.UVs = make([]types.Vec2, len(mesh.uvs))
		for i, uv := range mesh.uvs {
			shape.UVs[i] = types.Vec2{uv[0] * uScale, uv[1] * vScale}
		}
	}
	return nil
}

// buildCube constructs a unit axis-aligned cube centered at the origin.
func buildCube(shape *scene.Shape) {
	shape.Vertices = []types.Vec3{
		{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5},
		{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5},
	}
	shape.Indices = []int32{
		0, 1, 2, 0, 2, 3, // back
		4, 6, 5, 4, 7, 6, // front
		0, 4, 5, 0, 5, 1, // bottom
		3, 2, 6, 3, 6, 7, // top
		1, 5, 6, 1, 6, 2, // right
		0, 3, 7, 0, 7, 4, // left
	}
}

// buildCurve approximates a PBRT cubic Bezier curve shape as a thin
// quadrilateral ribbon following its control polygon, since the module
// carries no ray-marching curve primitive of its own.
func (p *Parser) buildCurve(tok Token, params []Parameter, shape *scene.Shape) error {
	pParam := findParam(params, "P")
	if pParam == nil || len(pParam.RGBs) < 2 {
		return p.syntaxErrorAt(tok, "curve requires a \"P\" parameter with at least 2 control points")
	}
	width := float32(0.01)
	if widthParam := findParam(params, "width"); widthParam != nil && len(widthParam.Floats) == 1 {
		width = widthParam.Floats[0]
	}

	pts := pParam.RGBs
	var verts []types.Vec3
	var indices []int32
	for i := 0; i+1 < len(pts); i++ {
		a, b := pts[i], pts[i+1]
		dir := b.Sub(a)
		perp := types.Vec3{-dir[1], dir[0], 0}.Normalize().Mul(width / 2)
		base := int32(len(verts))
		verts = append(verts, a.Sub(perp), a.Add(perp), b.Sub(perp), b.Add(perp))
		indices = append(indices, base, base+1, base+2, base+1, base+3, base+2)
	}
	shape.Vertices = verts
	shape.Indices = indices
	return nil
}

// finishShape applies the common post-construction logic shared by every
// shape subtype: attaching a material (default, current, or area-light
// variant), and either appending to an in-flight object template or
// wrapping the shape in a fresh ShapeGroup+Instance (spec.md §4.5).
func (p *Parser) finishShape(tok Token, shape *scene.Shape) error {
	mat, err := p.resolveShapeMaterial(tok)
	if err != nil {
		return err
	}
	shape.Material = mat

	if obj := p.activeObject; obj != nil {
		group := &scene.ShapeGroup{Shapes: []*scene.Shape{shape}}
		obj.groups = append(obj.groups, group)
		return nil
	}

	group := &scene.ShapeGroup{Shapes: []*scene.Shape{shape}}
	if err := p.scene.AddShapeGroup(group); err != nil {
		return p.syntaxErrorAt(tok, "%s", err.Error())
	}
	inst := &scene.Instance{Group: group, Frame: p.gs().ctm}
	if err := p.scene.AddInstance(inst); err != nil {
		return p.syntaxErrorAt(tok, "%s", err.Error())
	}
	return nil
}

// resolveShapeMaterial commits (or synthesizes) the material a shape should
// reference, folding in any pending AreaLightSource emission.
func (p *Parser) resolveShapeMaterial(tok Token) (*scene.Material, error) {
	g := p.gs()

	var base *scene.Material
	if g.material != nil {
		if err := p.commitMaterial(g.material); err != nil {
			return nil, p.syntaxErrorAt(tok, "%s", err.Error())
		}
		base = g.material.handle
	} else {
		base = defaultMaterial()
		if err := p.scene.AddMaterial(base); err != nil {
			return nil, p.syntaxErrorAt(tok, "%s", err.Error())
		}
	}

	if !g.areaLight.active {
		return base, nil
	}

	// Area-light emission is shape-local: clone rather than mutate the
	// shared material, so other shapes referencing the same named
	// material do not also start emitting.
	emissive := *base
	emissive.Emitted = g.areaLight.emitted
	emissive.TwoSided = g.areaLight.twoSided
	emissive.IsEmitter = true
	if err := p.scene.AddMaterial(&emissive); err != nil {
		return nil, p.syntaxErrorAt(tok, "%s", err.Error())
	}
	return &emissive, nil
}

func defaultMaterial() *scene.Material {
	return &scene.Material{
		Kind:      scene.MatteMaterial,
		Diffuse:   types.Vec3{0.5, 0.5, 0.5},
		Roughness: 0,
	}
}
