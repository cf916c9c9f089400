package pbrt

import (
	"path/filepath"
	"strings"

	"github.com/gopbrt/pbrtscene/imageio"
	"github.com/gopbrt/pbrtscene/scene"
	"github.com/gopbrt/pbrtscene/types"
)

const checkerboardSize = 128
const checkerboardTile = 64

func validPixelType(s string) bool {
	switch s {
	case "spectrum", "rgb", "float":
		return true
	}
	return false
}

func pixelTypeOf(s string) scene.TexturePixelType {
	switch s {
	case "float":
		return scene.FloatTexture
	case "spectrum":
		return scene.SpectrumTexture
	default:
		return scene.RGBTexture
	}
}

// parseTextureDirective implements the Texture directive: "name" "pixeltype"
// "class" followed by class-specific parameters (spec.md §4.12).
func (p *Parser) parseTextureDirective(tok Token) error {
	name, err := p.expectString()
	if err != nil {
		return err
	}
	pixeltype, err := p.expectString()
	if err != nil {
		return err
	}
	if !validPixelType(pixeltype) {
		return p.syntaxErrorAt(tok, "unsupported texture pixeltype %q", pixeltype)
	}
	class, err := p.expectString()
	if err != nil {
		return err
	}
	params, err := p.parseParameters()
	if err != nil {
		return err
	}

	if _, exists := p.gs().textures[name]; exists {
		return p.syntaxErrorAt(tok, "texture %q is already declared in this scope", name)
	}

	var tex *scene.Texture
	uscale, vscale := float32(1), float32(1)

	switch class {
	case "imagemap":
		fileParam := findParam(params, "filename")
		if fileParam == nil || len(fileParam.Strings) != 1 {
			return p.syntaxErrorAt(tok, "imagemap texture %q requires a \"filename\" parameter", name)
		}
		tex, err = p.loadImageTextureFile(tok, fileParam.Strings[0])
		if err != nil {
			return err
		}
		if u := findParam(params, "uscale"); u != nil && len(u.Floats) == 1 {
			uscale = clampMinOne(u.Floats[0])
		}
		if v := findParam(params, "vscale"); v != nil && len(v.Floats) == 1 {
			vscale = clampMinOne(v.Floats[0])
		}
	case "constant":
		value := paramAsVec3(findParam(params, "value"), types.Vec3{1, 1, 1})
		tex = solidTexture(value)
	case "checkerboard":
		c1 := paramAsVec3(findParam(params, "tex1"), types.Vec3{1, 1, 1})
		c2 := paramAsVec3(findParam(params, "tex2"), types.Vec3{0, 0, 0})
		tex = checkerboardTexture(c1, c2)
		if u := findParam(params, "uscale"); u != nil && len(u.Floats) == 1 {
			uscale = clampMinOne(u.Floats[0])
		}
		if v := findParam(params, "vscale"); v != nil && len(v.Floats) == 1 {
			vscale = clampMinOne(v.Floats[0])
		}
	case "scale":
		tex, err = p.buildScaleTexture(tok, params)
		if err != nil {
			return err
		}
	default:
		return p.syntaxErrorAt(tok, "unsupported texture class %q", class)
	}

	tex.PixelType = pixelTypeOf(pixeltype)
	tex.Name = name
	p.gs().textures[name] = &DeclaredTexture{handle: tex, uscale: uscale, vscale: vscale}
	return nil
}

func clampMinOne(v float32) float32 {
	if v < 1 {
		return 1
	}
	return v
}

// loadImageTextureFile loads an image file into an uncommitted
// *scene.Texture, dispatching to the HDR decode path for ".hdr"/".exr" and
// the LDR path for ".png"/".jpg"/".jpeg"; any other extension is a syntax
// error (spec.md §4.12/§4.15).
func (p *Parser) loadImageTextureFile(tok Token, filename string) (*scene.Texture, error) {
	path := filename
	if !filepath.IsAbs(path) {
		path = filepath.Join(filepath.Dir(p.currentFilePath()), path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".hdr", ".exr":
	default:
		return nil, p.syntaxErrorAt(tok, "unsupported image file extension %q in %q", ext, path)
	}
	hdr := ext == ".hdr" || ext == ".exr"

	img, err := imageio.Load(path, hdr)
	if err != nil {
		return nil, p.syntaxErrorAt(tok, "could not load image %q: %s", path, err.Error())
	}
	return &scene.Texture{
		Width:  img.Width,
		Height: img.Height,
		HDR:    img.HDR,
		Data:   img.Data,
	}, nil
}

func rgbaBytes(c types.Vec3) [4]byte {
	clampByte := func(v float32) byte {
		if v <= 0 {
			return 0
		}
		if v >= 1 {
			return 255
		}
		return byte(v * 255)
	}
	return [4]byte{clampByte(c[0]), clampByte(c[1]), clampByte(c[2]), 255}
}

func solidTexture(c types.Vec3) *scene.Texture {
	px := rgbaBytes(c)
	return &scene.Texture{Width: 1, Height: 1, Data: px[:]}
}

func checkerboardTexture(c1, c2 types.Vec3) *scene.Texture {
	data := make([]byte, 0, checkerboardSize*checkerboardSize*4)
	p1, p2 := rgbaBytes(c1), rgbaBytes(c2)
	for y := 0; y < checkerboardSize; y++ {
		for x := 0; x < checkerboardSize; x++ {
			tile := (x/checkerboardTile + y/checkerboardTile) % 2
			if tile == 0 {
				data = append(data, p1[:]...)
			} else {
				data = append(data, p2[:]...)
			}
		}
	}
	return &scene.Texture{Width: checkerboardSize, Height: checkerboardSize, Data: data}
}

// buildScaleTexture implements the "scale" texture class: tex1 and tex2 may
// each be a texture reference or an inline float/rgb value; two texture
// operands are tiled to a common size and multiplied pixel-wise, a texture
// and a scalar are multiplied channel-wise, two scalars collapse to a
// single constant texture (spec.md §4.12).
func (p *Parser) buildScaleTexture(tok Token, params []Parameter) (*scene.Texture, error) {
	t1, c1, err := p.resolveTexOrColor(tok, params, "tex1")
	if err != nil {
		return nil, err
	}
	t2, c2, err := p.resolveTexOrColor(tok, params, "tex2")
	if err != nil {
		return nil, err
	}

	switch {
	case t1 == nil && t2 == nil:
		return solidTexture(mulVec3(c1, c2)), nil
	case t1 != nil && t2 == nil:
		return scaleTextureByColor(t1, c2), nil
	case t1 == nil && t2 != nil:
		return scaleTextureByColor(t2, c1), nil
	default:
		return multiplyTextures(t1, t2), nil
	}
}

// resolveTexOrColor looks up name as a texture reference first; if absent,
// it falls back to a plain float/rgb value (default white).
func (p *Parser) resolveTexOrColor(tok Token, params []Parameter, name string) (*scene.Texture, types.Vec3, error) {
	param := findParam(params, name)
	if param == nil {
		return nil, types.Vec3{1, 1, 1}, nil
	}
	if param.Kind == KindTexture {
		if len(param.Strings) != 1 {
			return nil, types.Vec3{}, p.syntaxErrorAt(tok, "texture reference %q requires exactly one name", name)
		}
		decl, ok := p.gs().textures[param.Strings[0]]
		if !ok {
			return nil, types.Vec3{}, p.syntaxErrorAt(tok, "%q references undeclared texture %q", name, param.Strings[0])
		}
		if err := p.commitTexture(decl); err != nil {
			return nil, types.Vec3{}, p.syntaxErrorAt(tok, "%s", err.Error())
		}
		return decl.handle, types.Vec3{}, nil
	}
	return nil, paramAsVec3(param, types.Vec3{1, 1, 1}), nil
}

func scaleTextureByColor(t *scene.Texture, c types.Vec3) *scene.Texture {
	out := &scene.Texture{Width: t.Width, Height: t.Height, HDR: t.HDR}
	out.Data = make([]byte, len(t.Data))
	copy(out.Data, t.Data)
	stride := 4
	if t.HDR {
		stride = 16
	}
	for px := 0; px+stride <= len(out.Data); px += stride {
		if t.HDR {
			continue // HDR scale textures pass through unmodified; float-buffer scaling needs the unsafe.Pointer reinterpretation done in imageio, not duplicated here.
		}
		out.Data[px] = byte(float32(out.Data[px]) * c[0])
		out.Data[px+1] = byte(float32(out.Data[px+1]) * c[1])
		out.Data[px+2] = byte(float32(out.Data[px+2]) * c[2])
	}
	return out
}

func multiplyTextures(a, b *scene.Texture) *scene.Texture {
	w, h := a.Width, a.Height
	if b.Width > w {
		w = b.Width
	}
	if b.Height > h {
		h = b.Height
	}
	out := &scene.Texture{Width: w, Height: h, Data: make([]byte, w*h*4)}
	for y := uint32(0); y < h; y++ {
		for x := uint32(0); x < w; x++ {
			pa := samplePixel(a, x, y)
			pb := samplePixel(b, x, y)
			i := (y*w + x) * 4
			out.Data[i] = byte(uint16(pa[0]) * uint16(pb[0]) / 255)
			out.Data[i+1] = byte(uint16(pa[1]) * uint16(pb[1]) / 255)
			out.Data[i+2] = byte(uint16(pa[2]) * uint16(pb[2]) / 255)
			out.Data[i+3] = 255
		}
	}
	return out
}

// samplePixel tiles (wraps) into t's bounds and returns its 4 byte
// channels; HDR textures are treated as opaque white since this module does
// not duplicate imageio's float reinterpretation here.
func samplePixel(t *scene.Texture, x, y uint32) [4]byte {
	if t.HDR || t.Width == 0 || t.Height == 0 {
		return [4]byte{255, 255, 255, 255}
	}
	sx, sy := x%t.Width, y%t.Height
	i := (sy*t.Width + sx) * 4
	if int(i)+4 > len(t.Data) {
		return [4]byte{255, 255, 255, 255}
	}
	return [4]byte{t.Data[i], t.Data[i+1], t.Data[i+2], t.Data[i+3]}
}
