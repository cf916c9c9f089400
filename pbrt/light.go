package pbrt

import (
	"github.com/gopbrt/pbrtscene/scene"
	"github.com/gopbrt/pbrtscene/types"
)

// paramAsVec3 reduces an already-normalized RGB/Float parameter to a single
// Vec3, returning deflt when the parameter is absent or holds no value.
func paramAsVec3(param *Parameter, deflt types.Vec3) types.Vec3 {
	if param == nil {
		return deflt
	}
	switch param.Kind {
	case KindRGB:
		if len(param.RGBs) > 0 {
			return param.RGBs[0]
		}
	case KindFloat:
		if len(param.Floats) > 0 {
			f := param.Floats[0]
			return types.Vec3{f, f, f}
		}
	}
	return deflt
}

func mulVec3(a, b types.Vec3) types.Vec3 {
	return types.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// parseLightSourceDirective implements LightSource for the "point",
// "infinite" and "distant" subtypes (spec.md §4.8).
func (p *Parser) parseLightSourceDirective(tok Token) error {
	subtype, err := p.expectString()
	if err != nil {
		return err
	}
	params, err := p.parseParameters()
	if err != nil {
		return err
	}
	scaleVal := paramAsVec3(findParam(params, "scale"), types.Vec3{1, 1, 1})

	switch subtype {
	case "point":
		intensity := mulVec3(paramAsVec3(findParam(params, "I"), types.Vec3{1, 1, 1}), scaleVal)
		return p.addPointLight(tok, intensity)
	case "infinite", "distant":
		radiance := mulVec3(paramAsVec3(findParam(params, "L"), types.Vec3{1, 1, 1}), scaleVal)
		return p.addEnvironmentLight(tok, radiance, findParam(params, "mapname"))
	default:
		return p.syntaxErrorAt(tok, "unsupported light subtype %q", subtype)
	}
}

func (p *Parser) addPointLight(tok Token, intensity types.Vec3) error {
	mat := &scene.Material{
		Kind:      scene.MatteMaterial,
		Emitted:   intensity,
		IsEmitter: true,
	}
	if err := p.scene.AddMaterial(mat); err != nil {
		return p.syntaxErrorAt(tok, "%s", err.Error())
	}
	shape := &scene.Shape{
		Vertices: []types.Vec3{{}, {}, {}},
		Indices:  []int32{0, 1, 2},
		Material: mat,
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

func (p *Parser) addEnvironmentLight(tok Token, radiance types.Vec3, mapname *Parameter) error {
	env := &scene.Environment{Radiance: radiance}
	if mapname != nil && len(mapname.Strings) == 1 {
		tex, err := p.loadImageTextureFile(tok, mapname.Strings[0])
		if err != nil {
			return err
		}
		if err := p.scene.AddTexture(tex); err != nil {
			return p.syntaxErrorAt(tok, "%s", err.Error())
		}
		env.Map = tex
	}
	p.scene.AddEnvironment(env)
	return nil
}

// parseAreaLightSourceDirective implements AreaLightSource: the subtype
// string is accepted without validation (PBRT defines only "area" but does
// not require rejecting others), and L/scale/twosided set the pending
// area-light state consumed by the next Shape directives in this attribute
// block (spec.md §4.9; cleared on AttributeEnd per the open-question
// decision in the design notes).
func (p *Parser) parseAreaLightSourceDirective(tok Token) error {
	if _, err := p.expectString(); err != nil {
		return err
	}
	params, err := p.parseParameters()
	if err != nil {
		return err
	}
	scaleVal := paramAsVec3(findParam(params, "scale"), types.Vec3{1, 1, 1})
	emitted := mulVec3(paramAsVec3(findParam(params, "L"), types.Vec3{1, 1, 1}), scaleVal)

	twoSided := false
	if tsParam := findParam(params, "twosided"); tsParam != nil && len(tsParam.Ints) == 1 {
		twoSided = tsParam.Ints[0] != 0
	}

	g := p.gs()
	g.areaLight = areaLightState{active: true, emitted: emitted, twoSided: twoSided}
	return nil
}
