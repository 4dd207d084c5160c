package export

import (
	"encoding/binary"
	"io"

	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/texture"
)

// DDS header constants
const (
	DDS_MAGIC       = 0x20534444 // "DDS "
	DDS_HEADER_SIZE = 124

	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PITCH       = 0x8
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000

	DDS_SURFACE_FLAGS_TEXTURE = 0x1000

	DDS_PIXELFORMAT_SIZE = 32
	DDS_ALPHAPIXELS      = 0x1
	DDS_FOURCC           = 0x4
	DDS_RGB              = 0x40

	FOURCC_DXT1 = 0x31545844 // "DXT1"
	FOURCC_DXT3 = 0x33545844 // "DXT3"
	FOURCC_DXT5 = 0x35545844 // "DXT5"
)

// DDSFileHeaderSize is the magic plus the header.
const DDSFileHeaderSize = 4 + DDS_HEADER_SIZE

// DDS writes uncompressed 32-bit BGRA surfaces. Use WriteRawDDS to keep
// block-compressed payloads as they are.
type DDS struct{}

func (DDS) Name() string      { return "dds" }
func (DDS) Extension() string { return ".dds" }

func (DDS) Write(w io.Writer, img *texture.Image) error {
	if err := checkImage(img); err != nil {
		return err
	}
	pf := ddsPixelFormat{
		flags:    DDS_RGB | DDS_ALPHAPIXELS,
		bitCount: 32,
		rMask:    0x00FF0000,
		gMask:    0x0000FF00,
		bMask:    0x000000FF,
		aMask:    0xFF000000,
	}
	header := createDDSHeader(uint32(img.Width), uint32(img.Height), uint32(img.Stride()), false, pf)
	if _, err := w.Write(header); err != nil {
		return err
	}

	// the pixel layout already matches the masks above
	if !img.Opaque {
		_, err := w.Write(img.Pix)
		return err
	}
	pix := append([]byte(nil), img.Pix...)
	for i := 3; i < len(pix); i += 4 {
		pix[i] = 0xFF
	}
	_, err := w.Write(pix)
	return err
}

// WriteRawDDS wraps a headerless DXT payload in a DDS header without decoding it.
func WriteRawDDS(w io.Writer, format texture.Format, width, height int, data []byte) error {
	var fourCC uint32
	switch format {
	case texture.L_DXT1_A1R5G5B5:
		fourCC = FOURCC_DXT1
	case texture.L_DXT23_A8R8G8B8:
		fourCC = FOURCC_DXT3
	case texture.L_DXT45_A8R8G8B8:
		fourCC = FOURCC_DXT5
	default:
		return diag.Errorf(diag.UnsupportedFormat, "write raw dds", "%s is not block compressed", format)
	}

	size, err := texture.DataSize(format, width, height)
	if err != nil {
		return err
	}
	if len(data) != size {
		return diag.Errorf(diag.InvalidArgument, "write raw dds", "payload is %d bytes, %dx%d %s needs %d", len(data), width, height, format, size)
	}

	header := createDDSHeader(uint32(width), uint32(height), uint32(size), true, ddsPixelFormat{flags: DDS_FOURCC, fourCC: fourCC})
	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

type ddsPixelFormat struct {
	flags    uint32
	fourCC   uint32
	bitCount uint32
	rMask    uint32
	gMask    uint32
	bMask    uint32
	aMask    uint32
}

// createDDSHeader builds the magic and the legacy 124-byte header for a single
// 2D surface without mip levels. pitchOrSize is the linear size when
// compressed is set and the row pitch otherwise.
func createDDSHeader(width, height, pitchOrSize uint32, compressed bool, pf ddsPixelFormat) []byte {
	header := make([]byte, DDSFileHeaderSize)
	le := binary.LittleEndian

	le.PutUint32(header[0:], DDS_MAGIC)
	le.PutUint32(header[4:], DDS_HEADER_SIZE)

	flags := uint32(DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH | DDS_HEADER_FLAGS_PIXELFORMAT)
	if compressed {
		flags |= DDS_HEADER_FLAGS_LINEARSIZE
	} else {
		flags |= DDS_HEADER_FLAGS_PITCH
	}
	le.PutUint32(header[8:], flags)
	le.PutUint32(header[12:], height)
	le.PutUint32(header[16:], width)
	le.PutUint32(header[20:], pitchOrSize)
	// depth, mip count and reserved words stay zero

	// DDS_PIXELFORMAT at +76
	le.PutUint32(header[76:], DDS_PIXELFORMAT_SIZE)
	le.PutUint32(header[80:], pf.flags)
	le.PutUint32(header[84:], pf.fourCC)
	le.PutUint32(header[88:], pf.bitCount)
	le.PutUint32(header[92:], pf.rMask)
	le.PutUint32(header[96:], pf.gMask)
	le.PutUint32(header[100:], pf.bMask)
	le.PutUint32(header[104:], pf.aMask)

	le.PutUint32(header[108:], DDS_SURFACE_FLAGS_TEXTURE)
	return header
}
