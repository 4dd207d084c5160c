package texture

import (
	"encoding/binary"

	"github.com/goopsie/uixtool/pkg/swizzle"
)

// Expand scales an n-bit channel value to 8 bits as (v*255 + max/2) / max,
// where max = 2^bits - 1. One-bit channels map to 0x00 or 0xFF.
func Expand(v uint32, bits uint) uint8 {
	max := uint32(1)<<bits - 1
	return uint8((v*255 + max/2) / max)
}

// argb assembles an ARGB word from 8-bit channels.
func argb(a, r, g, b uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func rgb565(p uint16) uint32 {
	v := uint32(p)
	return argb(0xFF, Expand(v>>11&0x1F, 5), Expand(v>>5&0x3F, 6), Expand(v&0x1F, 5))
}

func argb1555(p uint16) uint32 {
	v := uint32(p)
	return argb(Expand(v>>15, 1), Expand(v>>10&0x1F, 5), Expand(v>>5&0x1F, 5), Expand(v&0x1F, 5))
}

func xrgb1555(p uint16) uint32 {
	return argb1555(p) | 0xFF000000
}

func argb4444(p uint16) uint32 {
	v := uint32(p)
	return argb(Expand(v>>12&0xF, 4), Expand(v>>8&0xF, 4), Expand(v>>4&0xF, 4), Expand(v&0xF, 4))
}

// packed16 expands 16-bit texels through conv, de-swizzling first when needed.
func packed16(swizzled bool, conv func(uint16) uint32) decodeFunc {
	return func(dst *Image, src []byte) {
		w, h := dst.Width, dst.Height
		n := w * h
		if swizzled {
			tmp := make([]byte, n*2)
			swizzle.UnswizzleRect(src, tmp, uint32(w), uint32(h), uint32(w*2), 2)
			src = tmp
		}
		for i := 0; i < n && i*2+1 < len(src); i++ {
			binary.LittleEndian.PutUint32(dst.Pix[i*4:], conv(binary.LittleEndian.Uint16(src[i*2:])))
		}
	}
}

// luminance replicates a swizzled 8-bit channel into an opaque gray image.
func luminance(dst *Image, src []byte) {
	w, h := dst.Width, dst.Height
	tmp := make([]byte, w*h)
	swizzle.UnswizzleRect(src, tmp, uint32(w), uint32(h), uint32(w), 1)
	for i, v := range tmp {
		o := i * 4
		dst.Pix[o+0] = v
		dst.Pix[o+1] = v
		dst.Pix[o+2] = v
		dst.Pix[o+3] = 0xFF
	}
}
