// Package imageio loads image files into flat RGBA pixel buffers. It is the
// external collaborator spec.md §1 calls out ("image-file decoding
// libraries, consumed as load image → pixel buffer calls") — decoding
// itself is delegated entirely to openimageigo; this package only adapts
// its channel layout to the uniform 4-channel buffer the rest of the
// module expects.
package imageio

import (
	"fmt"
	"reflect"
	"unsafe"

	oiio "github.com/achilleasa/openimageigo"
)

// Image is a decoded image normalized to 4 channels (RGBA/Luminance-as-RGBA).
type Image struct {
	Width, Height uint32

	// HDR is true if Data holds packed float32 RGBA, false if it holds
	// packed uint8 RGBA.
	HDR bool

	Data []byte
}

// Load decodes the image file at path. HDR requests float32 output
// (for ".hdr"/".exr" sources); otherwise 8-bit output is requested. The
// caller (pbrt/texture.go, pbrt/light.go) decides HDR-ness from the file
// extension per spec.md §4.12/§4.10 before calling Load.
func Load(path string, hdr bool) (*Image, error) {
	input, err := oiio.OpenImageInput(path)
	if err != nil {
		return nil, fmt.Errorf("imageio: could not open %s: %s", path, err.Error())
	}
	defer input.Close()

	spec := input.Spec()
	if spec.NumChannels() != 1 && spec.NumChannels() != 3 && spec.NumChannels() != 4 {
		return nil, fmt.Errorf("imageio: unsupported channel count %d while loading %s", spec.NumChannels(), path)
	}
	if spec.Depth() != 1 {
		return nil, fmt.Errorf("imageio: unsupported depth %d while loading %s", spec.Depth(), path)
	}

	convertTo := oiio.TypeUint8
	if hdr {
		convertTo = oiio.TypeFloat
	}

	imgData, err := input.ReadImageFormat(convertTo, nil)
	if err != nil {
		return nil, fmt.Errorf("imageio: could not read data from %s: %s", path, err.Error())
	}

	img := &Image{
		Width:  uint32(spec.Width()),
		Height: uint32(spec.Height()),
		HDR:    hdr,
	}

	switch t := imgData.(type) {
	case []uint8:
		img.Data = expandTo4Uint8(t, spec.NumChannels(), img.Width*img.Height)
	case []float32:
		floats := expandTo4Float32(t, spec.NumChannels(), img.Width*img.Height)
		img.Data = float32SliceToBytes(floats)
	default:
		return nil, fmt.Errorf("imageio: unexpected pixel storage type while loading %s", path)
	}

	return img, nil
}

func expandTo4Uint8(src []uint8, channels int, pixels uint32) []byte {
	if channels == 4 {
		return src
	}
	out := make([]byte, pixels*4)
	switch channels {
	case 1:
		for p := uint32(0); p < pixels; p++ {
			v := src[p]
			out[p*4+0], out[p*4+1], out[p*4+2], out[p*4+3] = v, v, v, 255
		}
	case 3:
		for p := uint32(0); p < pixels; p++ {
			out[p*4+0] = src[p*3+0]
			out[p*4+1] = src[p*3+1]
			out[p*4+2] = src[p*3+2]
			out[p*4+3] = 255
		}
	}
	return out
}

func expandTo4Float32(src []float32, channels int, pixels uint32) []float32 {
	if channels == 4 {
		return src
	}
	out := make([]float32, pixels*4)
	switch channels {
	case 1:
		for p := uint32(0); p < pixels; p++ {
			v := src[p]
			out[p*4+0], out[p*4+1], out[p*4+2], out[p*4+3] = v, v, v, 1.0
		}
	case 3:
		for p := uint32(0); p < pixels; p++ {
			out[p*4+0] = src[p*3+0]
			out[p*4+1] = src[p*3+1]
			out[p*4+2] = src[p*3+2]
			out[p*4+3] = 1.0
		}
	}
	return out
}

func float32SliceToBytes(f []float32) []byte {
	header := *(*reflect.SliceHeader)(unsafe.Pointer(&f))
	header.Len <<= 2
	header.Cap <<= 2
	return *(*[]byte)(unsafe.Pointer(&header))
}
