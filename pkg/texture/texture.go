// Package texture decodes XPR texture payloads into canonical ARGB8888 images.
//
// XPR textures come in three families:
// 1. Swizzled uncompressed formats (SZ_*), stored in Morton order
// 2. Linear uncompressed formats (LU_IMAGE_*), stored row-major
// 3. Linear block-compressed formats (L_DXT*), stored as 4x4 texel blocks
//
// Decode normalizes every family to a little-endian ARGB8888 buffer
// (bytes B,G,R,A per pixel). Writing the result to a displayable container
// is left to package export.
package texture

import (
	"fmt"

	"github.com/goopsie/uixtool/pkg/diag"
)

// Format is the pixel format field of an XPR GPU format word.
type Format uint8

// Hardware texture format table.
const (
	SZ_Y8                    Format = 0x00
	SZ_A1R5G5B5              Format = 0x02
	SZ_X1R5G5B5              Format = 0x03
	SZ_A4R4G4B4              Format = 0x04
	SZ_R5G6B5                Format = 0x05
	SZ_A8R8G8B8              Format = 0x06
	SZ_X8R8G8B8              Format = 0x07
	SZ_I8_A8R8G8B8           Format = 0x0B
	L_DXT1_A1R5G5B5          Format = 0x0C
	L_DXT23_A8R8G8B8         Format = 0x0E
	L_DXT45_A8R8G8B8         Format = 0x0F
	LU_IMAGE_R5G6B5          Format = 0x11
	LU_IMAGE_A8R8G8B8        Format = 0x12
	SZ_A8                    Format = 0x19
	LU_IMAGE_X8R8G8B8        Format = 0x1E
	LU_IMAGE_DEPTH_Y16_FIXED Format = 0x30
	SZ_A8B8G8R8              Format = 0x3A
	SZ_R8G8B8A8              Format = 0x3C
	LU_IMAGE_A8B8G8R8        Format = 0x3F
)

// Formats lists every known format in table order.
var Formats = []Format{
	SZ_Y8, SZ_A1R5G5B5, SZ_X1R5G5B5, SZ_A4R4G4B4, SZ_R5G6B5, SZ_A8R8G8B8, SZ_X8R8G8B8,
	SZ_I8_A8R8G8B8, L_DXT1_A1R5G5B5, L_DXT23_A8R8G8B8, L_DXT45_A8R8G8B8, LU_IMAGE_R5G6B5,
	LU_IMAGE_A8R8G8B8, SZ_A8, LU_IMAGE_X8R8G8B8, LU_IMAGE_DEPTH_Y16_FIXED, SZ_A8B8G8R8,
	SZ_R8G8B8A8, LU_IMAGE_A8B8G8R8,
}

func (f Format) String() string {
	return FormatName(f)
}

// FormatName returns a human-readable name for a texture format value.
func FormatName(format Format) string {
	switch format {
	case SZ_Y8:
		return "SZ_Y8"
	case SZ_A1R5G5B5:
		return "SZ_A1R5G5B5"
	case SZ_X1R5G5B5:
		return "SZ_X1R5G5B5"
	case SZ_A4R4G4B4:
		return "SZ_A4R4G4B4"
	case SZ_R5G6B5:
		return "SZ_R5G6B5"
	case SZ_A8R8G8B8:
		return "SZ_A8R8G8B8"
	case SZ_X8R8G8B8:
		return "SZ_X8R8G8B8"
	case SZ_I8_A8R8G8B8:
		return "SZ_I8_A8R8G8B8"
	case L_DXT1_A1R5G5B5:
		return "L_DXT1_A1R5G5B5"
	case L_DXT23_A8R8G8B8:
		return "L_DXT23_A8R8G8B8"
	case L_DXT45_A8R8G8B8:
		return "L_DXT45_A8R8G8B8"
	case LU_IMAGE_R5G6B5:
		return "LU_IMAGE_R5G6B5"
	case LU_IMAGE_A8R8G8B8:
		return "LU_IMAGE_A8R8G8B8"
	case SZ_A8:
		return "SZ_A8"
	case LU_IMAGE_X8R8G8B8:
		return "LU_IMAGE_X8R8G8B8"
	case LU_IMAGE_DEPTH_Y16_FIXED:
		return "LU_IMAGE_DEPTH_Y16_FIXED"
	case SZ_A8B8G8R8:
		return "SZ_A8B8G8R8"
	case SZ_R8G8B8A8:
		return "SZ_R8G8B8A8"
	case LU_IMAGE_A8B8G8R8:
		return "LU_IMAGE_A8B8G8R8"
	default:
		return fmt.Sprintf("UNKNOWN(0x%x)", uint8(format))
	}
}

// Known reports whether f appears in the hardware format table.
func (f Format) Known() bool {
	_, err := BytesPerPixel(f)
	return err == nil || f.Compressed()
}

// Swizzled reports whether texels are stored in Morton order.
func (f Format) Swizzled() bool {
	switch f {
	case SZ_Y8, SZ_A1R5G5B5, SZ_X1R5G5B5, SZ_A4R4G4B4, SZ_R5G6B5, SZ_A8R8G8B8, SZ_X8R8G8B8,
		SZ_I8_A8R8G8B8, SZ_A8, SZ_A8B8G8R8, SZ_R8G8B8A8:
		return true
	}
	return false
}

// Compressed reports whether f is a DXT block format.
func (f Format) Compressed() bool {
	return f == L_DXT1_A1R5G5B5 || f == L_DXT23_A8R8G8B8 || f == L_DXT45_A8R8G8B8
}

// Opaque reports whether the format's alpha channel carries no information.
func (f Format) Opaque() bool {
	switch f {
	case SZ_Y8, SZ_A8, SZ_X1R5G5B5, SZ_R5G6B5, SZ_X8R8G8B8, LU_IMAGE_R5G6B5, LU_IMAGE_X8R8G8B8:
		return true
	}
	return false
}

// BytesPerPixel returns the texel size of an uncompressed format.
func BytesPerPixel(format Format) (int, error) {
	switch format {
	case SZ_Y8, SZ_A8, SZ_I8_A8R8G8B8:
		return 1, nil
	case SZ_A1R5G5B5, SZ_X1R5G5B5, SZ_A4R4G4B4, SZ_R5G6B5, LU_IMAGE_R5G6B5, LU_IMAGE_DEPTH_Y16_FIXED:
		return 2, nil
	case SZ_A8R8G8B8, SZ_X8R8G8B8, LU_IMAGE_A8R8G8B8, LU_IMAGE_X8R8G8B8,
		SZ_A8B8G8R8, SZ_R8G8B8A8, LU_IMAGE_A8B8G8R8:
		return 4, nil
	}
	return 0, diag.Errorf(diag.UnsupportedFormat, "texel size", "%s", FormatName(format))
}

// DataSize returns the payload size in bytes of the top mip level.
func DataSize(format Format, width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, diag.Errorf(diag.InvalidArgument, "texture size", "dimensions %dx%d", width, height)
	}

	switch format {
	case L_DXT1_A1R5G5B5:
		return blocks(width, height) * 8, nil
	case L_DXT23_A8R8G8B8, L_DXT45_A8R8G8B8:
		return blocks(width, height) * 16, nil
	}

	bpp, err := BytesPerPixel(format)
	if err != nil {
		return 0, err
	}
	return width * height * bpp, nil
}

// blocks returns the number of 4x4 blocks covering a width x height image.
func blocks(width, height int) int {
	return ((width + 3) / 4) * ((height + 3) / 4)
}
