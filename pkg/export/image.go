package export

import (
	"image/png"
	"io"

	"golang.org/x/image/bmp"

	"github.com/goopsie/uixtool/pkg/texture"
)

// BMP writes Windows bitmaps. Images with alpha are stored as 32-bit.
type BMP struct{}

func (BMP) Name() string      { return "bmp" }
func (BMP) Extension() string { return ".bmp" }

func (BMP) Write(w io.Writer, img *texture.Image) error {
	if err := checkImage(img); err != nil {
		return err
	}
	return bmp.Encode(w, img.ToNRGBA())
}

// PNG writes PNG images. A zero Level uses the default compression.
type PNG struct {
	Level png.CompressionLevel
}

func (PNG) Name() string      { return "png" }
func (PNG) Extension() string { return ".png" }

func (p PNG) Write(w io.Writer, img *texture.Image) error {
	if err := checkImage(img); err != nil {
		return err
	}
	enc := &png.Encoder{CompressionLevel: p.Level}
	return enc.Encode(w, img.ToNRGBA())
}
