package texture

import "encoding/binary"

// blockFunc decodes one 4x4 block into 16 ARGB texels in row-major order.
type blockFunc func(block []byte, out *[16]uint32)

func decodeDXT1(dst *Image, src []byte) { decodeBlocks(dst, src, 8, dxt1Block) }
func decodeDXT3(dst *Image, src []byte) { decodeBlocks(dst, src, 16, dxt3Block) }
func decodeDXT5(dst *Image, src []byte) { decodeBlocks(dst, src, 16, dxt5Block) }

// decodeBlocks walks blocks left to right, top to bottom, and stops at the
// first block that is not fully present. Texels past the image edge are dropped.
func decodeBlocks(dst *Image, src []byte, blockSize int, fn blockFunc) {
	bw := (dst.Width + 3) / 4
	bh := (dst.Height + 3) / 4

	var texels [16]uint32
	off := 0
	for by := 0; by < bh; by++ {
		for bx := 0; bx < bw; bx++ {
			if off+blockSize > len(src) {
				return
			}
			fn(src[off:off+blockSize], &texels)
			off += blockSize

			for i, v := range texels {
				dst.SetARGB(bx*4+i%4, by*4+i/4, v)
			}
		}
	}
}

// colorRamp builds the four RGB entries of a colour block (alpha bits zero).
//
// c0 > c1 selects the four-colour ramp. c0 < c1 selects three colours and
// reports slot 3 as transparent black. Equal endpoints describe a single
// colour, so every slot holds c0.
func colorRamp(block []byte) (ramp [4]uint32, transparent bool) {
	c0 := binary.LittleEndian.Uint16(block[0:2])
	c1 := binary.LittleEndian.Uint16(block[2:4])

	p0 := rgb565(c0) & 0x00FFFFFF
	p1 := rgb565(c1) & 0x00FFFFFF
	ramp[0], ramp[1] = p0, p1

	switch {
	case c0 > c1:
		ramp[2] = mix(p0, p1, 2, 1, 3)
		ramp[3] = mix(p0, p1, 1, 2, 3)
	case c0 == c1:
		ramp[2], ramp[3] = p0, p0
	default:
		ramp[2] = mix(p0, p1, 1, 1, 2)
		ramp[3] = 0
		transparent = true
	}
	return ramp, transparent
}

// mix interpolates each RGB channel as (w0*a + w1*b) / div.
func mix(a, b uint32, w0, w1, div uint32) uint32 {
	var out uint32
	for shift := uint(0); shift <= 16; shift += 8 {
		ca := a >> shift & 0xFF
		cb := b >> shift & 0xFF
		out |= (w0*ca + w1*cb) / div << shift
	}
	return out
}

func dxt1Block(block []byte, out *[16]uint32) {
	ramp, transparent := colorRamp(block)
	idx := binary.LittleEndian.Uint32(block[4:8])
	for i := range out {
		sel := idx & 3
		if transparent && sel == 3 {
			out[i] = 0
		} else {
			out[i] = ramp[sel] | 0xFF000000
		}
		idx >>= 2
	}
}

func dxt3Block(block []byte, out *[16]uint32) {
	ramp, _ := colorRamp(block[8:])
	idx := binary.LittleEndian.Uint32(block[12:16])
	for i := range out {
		nibble := uint32(block[i/2]) >> (uint(i%2) * 4) & 0xF
		out[i] = ramp[idx&3] | (nibble*0x11)<<24
		idx >>= 2
	}
}

func dxt5Block(block []byte, out *[16]uint32) {
	alphas := alphaRamp(block[0], block[1])
	ramp, _ := colorRamp(block[8:])

	aidx := binary.LittleEndian.Uint64(block[0:8]) >> 16
	cidx := binary.LittleEndian.Uint32(block[12:16])
	for i := range out {
		out[i] = ramp[cidx&3] | uint32(alphas[aidx&7])<<24
		aidx >>= 3
		cidx >>= 2
	}
}

// alphaRamp builds the eight DXT5 alpha levels. a0 > a1 interpolates six
// levels in sevenths; otherwise four levels in fifths plus literal 0 and 255.
func alphaRamp(a0, a1 uint8) [8]uint8 {
	x, y := uint32(a0), uint32(a1)
	r := [8]uint8{a0, a1}
	if a0 > a1 {
		for i := uint32(1); i <= 6; i++ {
			r[i+1] = uint8(((7-i)*x + i*y) / 7)
		}
		return r
	}
	for i := uint32(1); i <= 4; i++ {
		r[i+1] = uint8(((5-i)*x + i*y) / 5)
	}
	r[6] = 0
	r[7] = 255
	return r
}
