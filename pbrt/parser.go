// Package pbrt implements a PBRT v3 scene-description compiler: a lexer, a
// recursive-descent directive parser driving a graphics-state stack
// machine, a typed parameter system, and resource tables for materials,
// textures and object instances that commit into a scene.Scene on first
// reference.
package pbrt

import (
	"os"
	"strconv"

	"github.com/gopbrt/pbrtscene/log"
	"github.com/gopbrt/pbrtscene/scene"
	"github.com/gopbrt/pbrtscene/types"
)

var parserLogger = log.New("pbrt.parser")

// Parser drives one scene-file compilation: a lexer stack (for Include), a
// graphics-state stack (for AttributeBegin/End), a resource table, and the
// scene graph under assembly. A Parser is not safe for concurrent use.
type Parser struct {
	lexers *lexerStack
	states *graphicsStateStack

	scene   *scene.Scene
	objects map[string]*DeclaredObject

	// activeObject is non-nil while inside an ObjectBegin/ObjectEnd
	// block; shapes append to it instead of becoming standalone
	// instances (spec.md §4.10).
	activeObject     *DeclaredObject
	activeObjectName string

	// filmAspect, if set by a Film directive, overrides the aspect ratio
	// of every camera seen so far and every camera seen subsequently
	// (spec.md §4.13: Film is order-independent with respect to Camera).
	filmAspect *float32

	cur   Token
	atEOF bool
}

func newParser(source []byte, path string) *Parser {
	return &Parser{
		lexers:  newLexerStack(NewLexer(source, path, path)),
		states:  newGraphicsStateStack(),
		scene:   scene.New(),
		objects: make(map[string]*DeclaredObject),
	}
}

// Parse compiles the PBRT scene file at path into a scene.Scene.
func Parse(path string) (*scene.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p := newParser(data, path)
	if err := p.advance(); err != nil && err != errEndOfInput {
		return nil, err
	}
	if err := p.parsePreWorld(); err != nil {
		return nil, err
	}
	if err := p.parseWorld(); err != nil {
		return nil, err
	}
	return p.scene, nil
}

func (p *Parser) gs() *GraphicsState { return p.states.current() }

// advance pulls the next token from the logical (Include-aware) token
// stream into p.cur. errEndOfInput is a normal, reported condition: callers
// test for it explicitly rather than treating every non-nil error as fatal.
func (p *Parser) advance() error {
	tok, err := p.lexers.Next()
	if err == errEndOfInput {
		p.cur = Token{}
		p.atEOF = true
		return errEndOfInput
	}
	if err != nil {
		return err
	}
	p.cur = tok
	p.atEOF = false
	return nil
}

func (p *Parser) currentFilePath() string {
	if top := p.lexers.top(); top != nil {
		return top.Path()
	}
	return ""
}

func (p *Parser) syntaxErrorAt(tok Token, format string, args ...interface{}) error {
	return newSyntaxError(p.currentFilePath(), tok.Line, tok.Column, format, args...)
}

func (p *Parser) syntaxErrorHere(format string, args ...interface{}) error {
	return p.syntaxErrorAt(p.cur, format, args...)
}

// expectIdentifier returns the current token's text if it is an Identifier
// and advances past it, else raises a syntax error.
func (p *Parser) expectIdentifier() (string, error) {
	if p.cur.Kind != Identifier {
		return "", p.syntaxErrorHere("expected a directive, got %s %q", p.cur.Kind, p.cur.Text)
	}
	text := p.cur.Text
	if err := p.advance(); err != nil && err != errEndOfInput {
		return "", err
	}
	return text, nil
}

// expectString returns the current token's text if it is a String and
// advances past it.
func (p *Parser) expectString() (string, error) {
	if p.cur.Kind != String {
		return "", p.syntaxErrorHere("expected a quoted string, got %s %q", p.cur.Kind, p.cur.Text)
	}
	text := p.cur.Text
	if err := p.advance(); err != nil && err != errEndOfInput {
		return "", err
	}
	return text, nil
}

// expectFloat reads one unbracketed numeric token.
func (p *Parser) expectFloat() (float32, error) {
	fs, err := p.expectFloats(1)
	if err != nil {
		return 0, err
	}
	return fs[0], nil
}

// expectFloats reads exactly n consecutive numeric tokens, bracketed or
// not (PBRT accepts both forms for fixed-arity transform directives).
func (p *Parser) expectFloats(n int) ([]float32, error) {
	bracketed := false
	if p.cur.Kind == Punctuation && p.cur.Text == "[" {
		bracketed = true
		if err := p.advance(); err != nil && err != errEndOfInput {
			return nil, err
		}
	}
	out := make([]float32, 0, n)
	for i := 0; i < n; i++ {
		if p.cur.Kind != Number {
			return nil, p.syntaxErrorHere("expected %d numeric value(s), got %s %q", n, p.cur.Kind, p.cur.Text)
		}
		v, err := parseFloatToken(p.cur.Text)
		if err != nil {
			return nil, p.syntaxErrorHere("%s", err.Error())
		}
		out = append(out, v)
		if err := p.advance(); err != nil && err != errEndOfInput {
			return nil, err
		}
	}
	if bracketed {
		if p.cur.Kind != Punctuation || p.cur.Text != "]" {
			return nil, p.syntaxErrorHere("expected closing ']'")
		}
		if err := p.advance(); err != nil && err != errEndOfInput {
			return nil, err
		}
	}
	return out, nil
}

func parseFloatToken(text string) (float32, error) {
	v, err := strconv.ParseFloat(text, 32)
	return float32(v), err
}

// skipToNextDirective discards tokens (a directive's parameters) until the
// next Identifier token, used to recover from an unrecognized directive
// (spec.md §4.14: "unknown directive -> warn, skip its arguments, resume").
func (p *Parser) skipToNextDirective() error {
	for !p.atEOF && p.cur.Kind != Identifier {
		if err := p.advance(); err != nil && err != errEndOfInput {
			return err
		}
	}
	return nil
}

func (p *Parser) warnUnknownDirective(name string, tok Token) error {
	parserLogger.Warningf("%s:%d:%d: ignoring unrecognized directive %q", p.currentFilePath(), tok.Line, tok.Column, name)
	return p.skipToNextDirective()
}

// applyTransformDirective handles the transform-composition directives
// shared by both the pre-world and world phases (spec.md §4.6).
func (p *Parser) applyTransformDirective(name string, tok Token) (bool, error) {
	g := p.gs()
	switch name {
	case "Identity":
		g.setTransform(types.Ident4())
	case "Translate":
		vals, err := p.expectFloats(3)
		if err != nil {
			return true, err
		}
		g.translate(vals[0], vals[1], vals[2])
	case "Scale":
		vals, err := p.expectFloats(3)
		if err != nil {
			return true, err
		}
		g.scale(vals[0], vals[1], vals[2])
	case "Rotate":
		vals, err := p.expectFloats(4)
		if err != nil {
			return true, err
		}
		g.rotate(vals[0], vals[1], vals[2], vals[3])
	case "LookAt":
		vals, err := p.expectFloats(9)
		if err != nil {
			return true, err
		}
		g.lookAt(types.Vec3{vals[0], vals[1], vals[2]}, types.Vec3{vals[3], vals[4], vals[5]}, types.Vec3{vals[6], vals[7], vals[8]})
	case "Transform":
		vals, err := p.expectFloats(16)
		if err != nil {
			return true, err
		}
		g.setTransform(types.FromValues16(vals))
	case "ConcatTransform":
		vals, err := p.expectFloats(16)
		if err != nil {
			return true, err
		}
		g.concatTransform(types.FromValues16(vals))
	case "Include":
		// The path is read from the current token without advancing, so the
		// including lexer is still on top of the stack when the path is
		// resolved, and none of its following tokens is consumed before the
		// included file's tokens.
		if p.cur.Kind != String {
			return true, p.syntaxErrorHere("expected a quoted string, got %s %q", p.cur.Kind, p.cur.Text)
		}
		if err := p.lexers.pushInclude(p.cur.Text); err != nil {
			return true, err
		}
		if err := p.advance(); err != nil && err != errEndOfInput {
			return true, err
		}
	default:
		return false, nil
	}
	_ = tok
	return true, nil
}

// parsePreWorld consumes directives until WorldBegin, per spec.md §4: only
// Camera, Film, Include and transform directives are meaningful before the
// world block; anything else is a warned-and-skipped unknown directive.
func (p *Parser) parsePreWorld() error {
	for {
		if p.atEOF {
			return p.syntaxErrorHere("unexpected end of input: missing WorldBegin")
		}
		tok := p.cur
		name, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if name == "WorldBegin" {
			return nil
		}
		handled, err := p.applyTransformDirective(name, tok)
		if err != nil {
			return err
		}
		if handled {
			continue
		}
		switch name {
		case "Camera":
			if err := p.parseCameraDirective(tok); err != nil {
				return err
			}
		case "Film":
			if err := p.parseFilmDirective(tok); err != nil {
				return err
			}
		default:
			if err := p.warnUnknownDirective(name, tok); err != nil {
				return err
			}
		}
	}
}

// parseWorld consumes directives from just after WorldBegin to WorldEnd (or
// end of input, which is treated the same as an explicit WorldEnd).
func (p *Parser) parseWorld() error {
	for {
		if p.atEOF {
			return nil
		}
		tok := p.cur
		name, err := p.expectIdentifier()
		if err != nil {
			return err
		}
		if name == "WorldEnd" {
			return nil
		}

		handled, err := p.applyTransformDirective(name, tok)
		if err != nil {
			return err
		}
		if handled {
			continue
		}

		switch name {
		case "AttributeBegin", "TransformBegin":
			p.states.push()
		case "AttributeEnd", "TransformEnd":
			if err := p.states.pop(); err != nil {
				return p.syntaxErrorAt(tok, "%s", err.Error())
			}
		case "Shape":
			if err := p.parseShapeDirective(tok); err != nil {
				return err
			}
		case "ObjectBegin":
			if err := p.parseObjectBegin(tok); err != nil {
				return err
			}
		case "ObjectEnd":
			if err := p.parseObjectEnd(tok); err != nil {
				return err
			}
		case "ObjectInstance":
			if err := p.parseObjectInstance(tok); err != nil {
				return err
			}
		case "LightSource":
			if err := p.parseLightSourceDirective(tok); err != nil {
				return err
			}
		case "AreaLightSource":
			if err := p.parseAreaLightSourceDirective(tok); err != nil {
				return err
			}
		case "Material":
			if err := p.parseMaterialDirective(tok); err != nil {
				return err
			}
		case "MakeNamedMaterial":
			if err := p.parseMakeNamedMaterialDirective(tok); err != nil {
				return err
			}
		case "NamedMaterial":
			if err := p.parseNamedMaterialDirective(tok); err != nil {
				return err
			}
		case "Texture":
			if err := p.parseTextureDirective(tok); err != nil {
				return err
			}
		default:
			if err := p.warnUnknownDirective(name, tok); err != nil {
				return err
			}
		}
	}
}
