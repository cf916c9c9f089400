package pbrt

import (
	"github.com/gopbrt/pbrtscene/scene"
	"github.com/gopbrt/pbrtscene/types"
)

// DeclaredTexture is a texture known to the parser by name but not yet
// committed to the scene graph; commitment happens the first time a
// material or light references it (spec.md §4.12's "declare, commit on
// first reference" pattern).
type DeclaredTexture struct {
	handle    *scene.Texture
	uscale    float32
	vscale    float32
	committed bool
}

// DeclaredMaterial mirrors DeclaredTexture for MakeNamedMaterial.
type DeclaredMaterial struct {
	handle    *scene.Material
	committed bool
}

// DeclaredObject tracks an ObjectBegin/ObjectEnd template: the shape groups
// captured between Begin and End, and the transform active at ObjectBegin
// time (captured so ObjectInstance can compose it with the current
// transform, per spec.md §4.10).
type DeclaredObject struct {
	groups        []*scene.ShapeGroup
	captureMatrix types.Mat4
	committed     bool
}

// commitTexture adds t's handle to the scene exactly once.
func (p *Parser) commitTexture(dt *DeclaredTexture) error {
	if dt.committed {
		return nil
	}
	if err := p.scene.AddTexture(dt.handle); err != nil {
		return err
	}
	dt.committed = true
	return nil
}

// commitMaterial adds dm's handle to the scene exactly once.
func (p *Parser) commitMaterial(dm *DeclaredMaterial) error {
	if dm.committed {
		return nil
	}
	if err := p.scene.AddMaterial(dm.handle); err != nil {
		return err
	}
	dm.committed = true
	return nil
}

// commitObjectGroups adds every shape group captured by an object template
// to the scene exactly once, the first time the object is instantiated.
func (p *Parser) commitObjectGroups(obj *DeclaredObject) error {
	if obj.committed {
		return nil
	}
	for _, g := range obj.groups {
		if err := p.scene.AddShapeGroup(g); err != nil {
			return err
		}
	}
	obj.committed = true
	return nil
}
