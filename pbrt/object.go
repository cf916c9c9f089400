package pbrt

import "github.com/gopbrt/pbrtscene/scene"

// parseObjectBegin implements ObjectBegin: nesting is rejected, the current
// graphics state is pushed (so the object's internal transform/material
// changes cannot leak into the surrounding scope), and a new, uncommitted
// DeclaredObject starts collecting shapes (spec.md §4.10).
func (p *Parser) parseObjectBegin(tok Token) error {
	if p.activeObject != nil {
		return p.syntaxErrorAt(tok, "nested ObjectBegin is not supported")
	}
	name, err := p.expectString()
	if err != nil {
		return err
	}

	p.states.push()
	p.activeObject = &DeclaredObject{captureMatrix: p.gs().ctm}
	p.activeObjectName = name
	return nil
}

// parseObjectEnd implements ObjectEnd: the template is registered in the
// parser-wide object table (replacing any existing uncommitted template of
// the same name) and the pushed graphics state is popped.
func (p *Parser) parseObjectEnd(tok Token) error {
	if p.activeObject == nil {
		return p.syntaxErrorAt(tok, "ObjectEnd with no matching ObjectBegin")
	}
	if existing, ok := p.objects[p.activeObjectName]; ok && existing.committed {
		return p.syntaxErrorAt(tok, "object %q was already instantiated; cannot redefine it", p.activeObjectName)
	}
	p.objects[p.activeObjectName] = p.activeObject
	p.activeObject = nil
	p.activeObjectName = ""
	return p.states.pop()
}

// parseObjectInstance implements ObjectInstance: the named template commits
// its shape groups to the scene on first use, and a new Instance is created
// per group with Frame = current CTM composed with the transform captured
// at the template's ObjectBegin (spec.md §4.10).
func (p *Parser) parseObjectInstance(tok Token) error {
	name, err := p.expectString()
	if err != nil {
		return err
	}
	obj, ok := p.objects[name]
	if !ok {
		return p.syntaxErrorAt(tok, "ObjectInstance references undeclared object %q", name)
	}
	if err := p.commitObjectGroups(obj); err != nil {
		return p.syntaxErrorAt(tok, "%s", err.Error())
	}

	frame := p.gs().ctm.Mul4(obj.captureMatrix)
	for _, group := range obj.groups {
		inst := &scene.Instance{Group: group, Frame: frame}
		if err := p.scene.AddInstance(inst); err != nil {
			return p.syntaxErrorAt(tok, "%s", err.Error())
		}
	}
	return nil
}
