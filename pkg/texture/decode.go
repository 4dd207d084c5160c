package texture

import (
	"fmt"

	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/swizzle"
)

// decodeFunc fills dst from a payload that may be shorter than DataSize.
type decodeFunc func(dst *Image, src []byte)

var decoders = map[Format]decodeFunc{
	SZ_A8R8G8B8: unswizzled32(nil),
	SZ_X8R8G8B8: unswizzled32(setOpaque),
	SZ_A8B8G8R8: unswizzled32(swapRB),
	SZ_R8G8B8A8: unswizzled32(rotateRGBA),

	LU_IMAGE_A8R8G8B8: linear32(nil),
	LU_IMAGE_X8R8G8B8: linear32(setOpaque),
	LU_IMAGE_A8B8G8R8: linear32(swapRB),

	SZ_R5G6B5:       packed16(true, rgb565),
	SZ_A1R5G5B5:     packed16(true, argb1555),
	SZ_X1R5G5B5:     packed16(true, xrgb1555),
	SZ_A4R4G4B4:     packed16(true, argb4444),
	LU_IMAGE_R5G6B5: packed16(false, rgb565),

	SZ_A8: luminance,
	SZ_Y8: luminance,

	L_DXT1_A1R5G5B5:  decodeDXT1,
	L_DXT23_A8R8G8B8: decodeDXT3,
	L_DXT45_A8R8G8B8: decodeDXT5,
}

// Decode converts the top mip level of a texture payload to ARGB8888.
//
// A payload shorter than DataSize is not an error: the available prefix is
// decoded and a warning is returned. Formats whose size is known but whose
// pixels cannot be decoded yield a blank image and a warning.
func Decode(format Format, width, height int, raw []byte) (*Image, []diag.Diagnostic, error) {
	size, err := DataSize(format, width, height)
	if err != nil {
		return nil, nil, fmt.Errorf("decode %s: %w", FormatName(format), err)
	}

	var diags diag.List
	if len(raw) < size {
		diags.Warnf("", -1, "texture data truncated: expected %d bytes, got %d", size, len(raw))
	} else {
		raw = raw[:size]
	}

	img := NewImage(width, height)
	img.Opaque = format.Opaque()

	fn, ok := decoders[format]
	if !ok {
		diags.Warnf("", -1, "pixel decode not supported for %s, image left blank", FormatName(format))
		return img, diags, nil
	}
	fn(img, raw)
	return img, diags, nil
}

// Decodable reports whether Decode produces pixels for format.
func Decodable(format Format) bool {
	_, ok := decoders[format]
	return ok
}

func unswizzled32(post func([]byte)) decodeFunc {
	return func(dst *Image, src []byte) {
		w, h := uint32(dst.Width), uint32(dst.Height)
		swizzle.UnswizzleRect(src, dst.Pix, w, h, w*4, 4)
		if post != nil {
			post(dst.Pix)
		}
	}
}

func linear32(post func([]byte)) decodeFunc {
	return func(dst *Image, src []byte) {
		copy(dst.Pix, src)
		if post != nil {
			post(dst.Pix)
		}
	}
}

func setOpaque(pix []byte) {
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xFF
	}
}

func swapRB(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}

// rotateRGBA turns texels stored as R8G8B8A8 words into A8R8G8B8 words.
func rotateRGBA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = pix[i+3], pix[i], pix[i+1], pix[i+2]
	}
}
