package pbrt

import (
	"errors"

	"github.com/gopbrt/pbrtscene/types"
)

// errUnmatchedAttributeEnd signals AttributeEnd/TransformEnd with no
// matching Begin; the parser wraps it with the active source position.
var errUnmatchedAttributeEnd = errors.New("unmatched AttributeEnd/TransformEnd: no matching AttributeBegin/TransformBegin")

// areaLightState carries the pending AreaLightSource parameters that get
// applied to a material the next time a Shape directive runs in the same
// attribute block. It lives inside GraphicsState so that AttributeEnd clears
// it along with everything else (spec.md §9 open question: area-light state
// resets on attribute-pop).
type areaLightState struct {
	active   bool
	emitted  types.Vec3
	twoSided bool
}

// uvScale holds the per-shape texture-coordinate multipliers inherited from
// the most recently referenced declared texture (spec.md §4.11).
type uvScale struct {
	u, v float32
}

// GraphicsState is the mutable state threaded through world-block parsing:
// the current transform, the current named material, pending area-light
// parameters and the uv-scale of the last-bound texture. Modeled on the
// teacher's attribute/transform push-pop pattern in scene/parser.go (now
// removed from the tree, its control flow kept here).
type GraphicsState struct {
	ctm types.Mat4

	// material is the currently installed material declaration, either
	// the anonymous material from the last "Material" directive or a
	// name-table lookup from "NamedMaterial". It commits to the scene
	// the first time a Shape actually references it.
	material *DeclaredMaterial

	areaLight areaLightState
	uv        uvScale

	// textures and materials are name tables local to this attribute
	// block; AttributeBegin/End clone and restore them, matching the
	// teacher's scoped-symbol-table behavior for nested blocks.
	textures  map[string]*DeclaredTexture
	materials map[string]*DeclaredMaterial
}

func newGraphicsState() *GraphicsState {
	return &GraphicsState{
		ctm:       types.Ident4(),
		uv:        uvScale{u: 1, v: 1},
		textures:  make(map[string]*DeclaredTexture),
		materials: make(map[string]*DeclaredMaterial),
	}
}

// clone returns a deep-enough copy for attribute push: the name tables are
// copied so that a nested declaration cannot leak out, but the declared
// *scene.Texture/*scene.Material/*DeclaredObject values they point to are
// shared (they are committed to the scene exactly once regardless of how
// many attribute scopes reference them).
func (g *GraphicsState) clone() *GraphicsState {
	cp := &GraphicsState{
		ctm:       g.ctm,
		material:  g.material,
		areaLight: g.areaLight,
		uv:        g.uv,
		textures:  make(map[string]*DeclaredTexture, len(g.textures)),
		materials: make(map[string]*DeclaredMaterial, len(g.materials)),
	}
	for k, v := range g.textures {
		cp.textures[k] = v
	}
	for k, v := range g.materials {
		cp.materials[k] = v
	}
	return cp
}

// graphicsStateStack implements AttributeBegin/AttributeEnd nesting.
type graphicsStateStack struct {
	states []*GraphicsState
}

func newGraphicsStateStack() *graphicsStateStack {
	return &graphicsStateStack{states: []*GraphicsState{newGraphicsState()}}
}

func (s *graphicsStateStack) current() *GraphicsState {
	return s.states[len(s.states)-1]
}

func (s *graphicsStateStack) push() {
	s.states = append(s.states, s.current().clone())
}

// pop removes the innermost graphics state. It reports an error if called
// with no matching push, mirroring spec.md §4.9's "AttributeEnd with no
// matching AttributeBegin" invariant.
func (s *graphicsStateStack) pop() error {
	if len(s.states) <= 1 {
		return errUnmatchedAttributeEnd
	}
	s.states = s.states[:len(s.states)-1]
	return nil
}

func (s *graphicsStateStack) depth() int {
	return len(s.states)
}

// Transform operations mutate only the current transform, per spec.md §4.6.

func (g *GraphicsState) translate(x, y, z float32) {
	g.ctm = g.ctm.Mul4(types.Translate4(x, y, z))
}

func (g *GraphicsState) scale(x, y, z float32) {
	g.ctm = g.ctm.Mul4(types.Scale4(x, y, z))
}

func (g *GraphicsState) rotate(angleDeg, x, y, z float32) {
	const degToRad = 3.14159265358979323846 / 180.0
	g.ctm = g.ctm.Mul4(types.Rotate4(angleDeg*degToRad, x, y, z))
}

func (g *GraphicsState) lookAt(eye, look, up types.Vec3) {
	g.ctm = g.ctm.Mul4(types.LookAtV(eye, look, up))
}

func (g *GraphicsState) concatTransform(m types.Mat4) {
	g.ctm = g.ctm.Mul4(m)
}

func (g *GraphicsState) setTransform(m types.Mat4) {
	g.ctm = m
}
