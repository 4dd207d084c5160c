// Package swizzle converts texel data between linear (row-major) and swizzled layouts.
//
// Swizzled textures store texels in Morton order: the bits of the x, y and z
// coordinates are interleaved to form the texel index, so that texels close in
// 2D or 3D space are close in memory. When one axis runs out of bits the
// remaining axes are packed tightly into the following bits:
//
//	8x8x1  -> ..yxyxyx
//	16x4x1 -> xxyxyx (x keeps going after y is exhausted)
//
// All offsets are in bytes; bpp is the size of a single texel.
package swizzle

// Masks holds the result bits owned by each axis.
type Masks struct {
	X, Y, Z uint32
}

// GenerateMasks allocates result bits round-robin to the axes that still have
// unconsumed address bits. The masks are pairwise disjoint and together cover
// every bit needed to index width*height*depth texels.
func GenerateMasks(width, height, depth uint32) Masks {
	var m Masks
	bit := uint32(1)
	maskBit := uint32(1)

	for {
		done := true
		if bit < width {
			m.X |= maskBit
			maskBit <<= 1
			done = false
		}
		if bit < height {
			m.Y |= maskBit
			maskBit <<= 1
			done = false
		}
		if bit < depth {
			m.Z |= maskBit
			maskBit <<= 1
			done = false
		}
		if done || bit == 1<<31 {
			break
		}
		bit <<= 1
	}
	return m
}

// Bits returns the union of all three masks.
func (m Masks) Bits() uint32 {
	return m.X | m.Y | m.Z
}

// ScatterBits distributes the low bits of value, in order, into the set bits
// of mask, lowest first. Value bits abcd with mask 0b1010100100 give a0b0c00d00.
func ScatterBits(mask, value uint32) uint32 {
	var result uint32
	for bit := uint32(1); value != 0 && bit != 0; bit <<= 1 {
		if mask&bit != 0 {
			if value&1 != 0 {
				result |= bit
			}
			value >>= 1
		}
	}
	return result
}

// Offset returns the byte offset of texel (x,y,z) in a swizzled buffer.
func Offset(x, y, z uint32, m Masks, bpp uint32) uint32 {
	return bpp * (ScatterBits(m.X, x) | ScatterBits(m.Y, y) | ScatterBits(m.Z, z))
}

// UnswizzleBox copies a swizzled box from src into the linear buffer dst.
// rowPitch and slicePitch describe the linear layout. Texels whose source or
// destination lies outside its buffer are skipped.
func UnswizzleBox(src, dst []byte, width, height, depth, rowPitch, slicePitch, bpp uint32) {
	m := GenerateMasks(width, height, depth)
	var base uint32
	for z := uint32(0); z < depth; z++ {
		for y := uint32(0); y < height; y++ {
			for x := uint32(0); x < width; x++ {
				linear := base + y*rowPitch + x*bpp
				copyTexel(dst, linear, src, Offset(x, y, z, m, bpp), bpp)
			}
		}
		base += slicePitch
	}
}

// SwizzleBox copies the linear box in src into the swizzled buffer dst.
func SwizzleBox(src, dst []byte, width, height, depth, rowPitch, slicePitch, bpp uint32) {
	m := GenerateMasks(width, height, depth)
	var base uint32
	for z := uint32(0); z < depth; z++ {
		for y := uint32(0); y < height; y++ {
			for x := uint32(0); x < width; x++ {
				linear := base + y*rowPitch + x*bpp
				copyTexel(dst, Offset(x, y, z, m, bpp), src, linear, bpp)
			}
		}
		base += slicePitch
	}
}

// UnswizzleRect is UnswizzleBox for a single 2D slice.
func UnswizzleRect(src, dst []byte, width, height, pitch, bpp uint32) {
	UnswizzleBox(src, dst, width, height, 1, pitch, 0, bpp)
}

// SwizzleRect is SwizzleBox for a single 2D slice.
func SwizzleRect(src, dst []byte, width, height, pitch, bpp uint32) {
	SwizzleBox(src, dst, width, height, 1, pitch, 0, bpp)
}

func copyTexel(dst []byte, dstOff uint32, src []byte, srcOff uint32, bpp uint32) {
	if uint64(dstOff)+uint64(bpp) > uint64(len(dst)) || uint64(srcOff)+uint64(bpp) > uint64(len(src)) {
		return
	}
	copy(dst[dstOff:dstOff+bpp], src[srcOff:srcOff+bpp])
}
