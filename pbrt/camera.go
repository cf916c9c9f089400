package pbrt

import (
	"math"

	"github.com/gopbrt/pbrtscene/scene"
)

const defaultFOVDegrees = 90.0
const defaultAspectRatio = 1.0
const defaultFocalDistance = 1e6

// parseCameraDirective implements the Camera directive: only the
// "perspective" subtype is supported (spec.md §4.7); anything else is a
// syntax error rather than a silently-ignored directive, since Camera's
// subtype is a required positional argument, not an optional parameter.
func (p *Parser) parseCameraDirective(tok Token) error {
	subtype, err := p.expectString()
	if err != nil {
		return err
	}
	if subtype != "perspective" {
		return p.syntaxErrorAt(tok, "unsupported camera subtype %q; only \"perspective\" is implemented", subtype)
	}

	params, err := p.parseParameters()
	if err != nil {
		return err
	}

	fovDeg := float32(defaultFOVDegrees)
	aspect := float32(defaultAspectRatio)
	lensRadius := float32(0)
	focalDist := float32(defaultFocalDistance)

	for _, param := range params {
		switch param.Name {
		case "fov":
			if len(param.Floats) != 1 {
				return p.syntaxErrorAt(tok, "camera parameter \"fov\" requires exactly one float")
			}
			fovDeg = param.Floats[0]
		case "frameaspectratio":
			if len(param.Floats) != 1 {
				return p.syntaxErrorAt(tok, "camera parameter \"frameaspectratio\" requires exactly one float")
			}
			aspect = param.Floats[0]
		case "aperture":
			if len(param.Floats) != 1 {
				return p.syntaxErrorAt(tok, "camera parameter \"aperture\" requires exactly one float")
			}
			lensRadius = param.Floats[0]
		case "focaldistance":
			if len(param.Floats) != 1 {
				return p.syntaxErrorAt(tok, "camera parameter \"focaldistance\" requires exactly one float")
			}
			focalDist = param.Floats[0]
		default:
			parserLogger.Debugf("ignoring unrecognized camera parameter %q", param.Name)
		}
	}

	if p.filmAspect != nil {
		aspect = *p.filmAspect
	}

	worldToCamera := p.gs().ctm.Inv()

	cam := &scene.Camera{
		WorldToCamera: worldToCamera,
		FOV:           float32(float64(fovDeg) * math.Pi / 180.0),
		AspectRatio:   aspect,
		LensRadius:    lensRadius,
		FocalDist:     focalDist,
	}
	p.scene.AddCamera(cam)
	return nil
}

// parseFilmDirective implements the Film directive: only the "image"
// subtype is supported. The resolved aspect ratio retroactively overrides
// every camera created so far and every camera created afterward (spec.md
// §4.13: Film and Camera directives may appear in either order).
func (p *Parser) parseFilmDirective(tok Token) error {
	subtype, err := p.expectString()
	if err != nil {
		return err
	}
	if subtype != "image" {
		return p.syntaxErrorAt(tok, "unsupported film subtype %q; only \"image\" is implemented", subtype)
	}

	params, err := p.parseParameters()
	if err != nil {
		return err
	}

	var xres, yres int32
	for _, param := range params {
		switch param.Name {
		case "xresolution":
			if len(param.Ints) != 1 {
				return p.syntaxErrorAt(tok, "film parameter \"xresolution\" requires exactly one integer")
			}
			xres = param.Ints[0]
		case "yresolution":
			if len(param.Ints) != 1 {
				return p.syntaxErrorAt(tok, "film parameter \"yresolution\" requires exactly one integer")
			}
			yres = param.Ints[0]
		}
	}
	if xres <= 0 || yres <= 0 {
		return nil
	}

	aspect := float32(xres) / float32(yres)
	p.filmAspect = &aspect
	for _, cam := range p.scene.Cameras {
		cam.AspectRatio = aspect
	}
	return nil
}
