package texture

import (
	"encoding/binary"
	"image"
	"image/color"

	"github.com/goopsie/uixtool/pkg/diag"
)

// Image is a decoded ARGB8888 texture.
//
// Pix holds Width*Height little-endian ARGB words, so each pixel is stored as
// the bytes B,G,R,A. Rows are tightly packed top to bottom.
type Image struct {
	Width  int
	Height int
	Pix    []byte

	// Opaque is set when the source format has no meaningful alpha channel.
	Opaque bool
}

// NewImage allocates a zeroed image.
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height*4),
	}
}

// Stride returns the byte length of one row.
func (m *Image) Stride() int {
	return m.Width * 4
}

// ARGB returns the pixel at (x,y) as 0xAARRGGBB.
func (m *Image) ARGB(x, y int) uint32 {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return 0
	}
	return binary.LittleEndian.Uint32(m.Pix[y*m.Stride()+x*4:])
}

// SetARGB stores 0xAARRGGBB at (x,y).
func (m *Image) SetARGB(x, y int, v uint32) {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return
	}
	binary.LittleEndian.PutUint32(m.Pix[y*m.Stride()+x*4:], v)
}

// ColorModel implements image.Image.
func (m *Image) ColorModel() color.Model {
	return color.NRGBAModel
}

// Bounds implements image.Image.
func (m *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, m.Width, m.Height)
}

// At implements image.Image.
func (m *Image) At(x, y int) color.Color {
	v := m.ARGB(x, y)
	c := color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: uint8(v >> 24)}
	if m.Opaque {
		c.A = 0xFF
	}
	return c
}

// ToNRGBA converts the image to the standard library's RGBA byte order.
func (m *Image) ToNRGBA() *image.NRGBA {
	out := image.NewNRGBA(m.Bounds())
	for i := 0; i+3 < len(m.Pix) && i+3 < len(out.Pix); i += 4 {
		out.Pix[i+0] = m.Pix[i+2]
		out.Pix[i+1] = m.Pix[i+1]
		out.Pix[i+2] = m.Pix[i+0]
		out.Pix[i+3] = m.Pix[i+3]
		if m.Opaque {
			out.Pix[i+3] = 0xFF
		}
	}
	return out
}

// FromImage converts any image into an ARGB8888 Image.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	m := NewImage(b.Dx(), b.Dy())
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			o := y*m.Stride() + x*4
			m.Pix[o+0] = c.B
			m.Pix[o+1] = c.G
			m.Pix[o+2] = c.R
			m.Pix[o+3] = c.A
		}
	}
	return m
}

// Clone returns a deep copy.
func (m *Image) Clone() *Image {
	if m == nil {
		return nil
	}
	c := *m
	c.Pix = append([]byte(nil), m.Pix...)
	return &c
}

func (m *Image) validate(op string) error {
	if m == nil {
		return diag.Errorf(diag.InvalidArgument, op, "nil image")
	}
	if m.Width <= 0 || m.Height <= 0 || len(m.Pix) != m.Width*m.Height*4 {
		return diag.Errorf(diag.InvalidArgument, op, "malformed %dx%d image with %d bytes", m.Width, m.Height, len(m.Pix))
	}
	return nil
}
