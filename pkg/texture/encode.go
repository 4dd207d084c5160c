package texture

import (
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/swizzle"
)

// Encode converts an ARGB8888 image back into a texture payload.
//
// Only the uncompressed 32-bit families are supported; every other format
// fails with diag.UnsupportedFormat.
func Encode(format Format, img *Image) ([]byte, error) {
	if err := img.validate("encode texture"); err != nil {
		return nil, err
	}

	var pre func([]byte)
	switch format {
	case LU_IMAGE_A8R8G8B8, SZ_A8R8G8B8:
	case LU_IMAGE_X8R8G8B8, SZ_X8R8G8B8:
		pre = setOpaque
	case LU_IMAGE_A8B8G8R8, SZ_A8B8G8R8:
		pre = swapRB
	case SZ_R8G8B8A8:
		pre = unrotateRGBA
	default:
		return nil, diag.Errorf(diag.UnsupportedFormat, "encode texture", "cannot encode %s", FormatName(format))
	}

	linear := append([]byte(nil), img.Pix...)
	if pre != nil {
		pre(linear)
	}
	if !format.Swizzled() {
		return linear, nil
	}

	w, h := uint32(img.Width), uint32(img.Height)
	out := make([]byte, len(linear))
	swizzle.SwizzleRect(linear, out, w, h, w*4, 4)
	return out, nil
}

// Encodable reports whether Encode supports format.
func Encodable(format Format) bool {
	switch format {
	case LU_IMAGE_A8R8G8B8, SZ_A8R8G8B8, LU_IMAGE_X8R8G8B8, SZ_X8R8G8B8,
		LU_IMAGE_A8B8G8R8, SZ_A8B8G8R8, SZ_R8G8B8A8:
		return true
	}
	return false
}

func unrotateRGBA(pix []byte) {
	for i := 0; i+3 < len(pix); i += 4 {
		pix[i], pix[i+1], pix[i+2], pix[i+3] = pix[i+1], pix[i+2], pix[i+3], pix[i]
	}
}
