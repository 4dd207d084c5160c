// Package archive frames UIX and XPR dumps in a small zstd-compressed container.
//
// A framed file is a 24-byte header followed by a single zstd frame:
//
//	+0x00 magic "ZSTD"
//	+0x04 header length (always 16, the size of the two length fields)
//	+0x08 uncompressed length (u64)
//	+0x10 compressed length (u64)
//
// Decoders never see the framing; callers unwrap with ReadAll or Decode first.
package archive

import (
	"bytes"
	"fmt"

	"github.com/goopsie/uixtool/pkg/diag"
)

// Magic bytes identifying a framed dump.
var Magic = [4]byte{0x5a, 0x53, 0x54, 0x44} // "ZSTD"

// HeaderSize is the fixed binary size of the frame header.
const HeaderSize = 24

// headerLength is the value stored in Header.HeaderLength.
const headerLength = 16

// Header describes a framed payload.
type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Length           uint64 // uncompressed payload size
	CompressedLength uint64 // size of the zstd frame after the header
}

// NewHeader creates a header for the given sizes.
func NewHeader(uncompressedSize, compressedSize uint64) *Header {
	return &Header{
		Magic:            Magic,
		HeaderLength:     headerLength,
		Length:           uncompressedSize,
		CompressedLength: compressedSize,
	}
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return diag.Errorf(diag.InvalidMagic, "validate archive header", "expected %q, got %q", Magic[:], h.Magic[:])
	}
	if h.HeaderLength != headerLength {
		return diag.Errorf(diag.InvalidFormat, "validate archive header", "header length %d, expected %d", h.HeaderLength, headerLength)
	}
	if h.Length == 0 {
		return diag.Errorf(diag.InvalidFormat, "validate archive header", "uncompressed size is zero")
	}
	if h.CompressedLength == 0 {
		return diag.Errorf(diag.InvalidFormat, "validate archive header", "compressed size is zero")
	}
	return nil
}

// IsArchive reports whether data starts with a frame header.
func IsArchive(data []byte) bool {
	return len(data) >= HeaderSize && bytes.Equal(data[:4], Magic[:])
}

func (h *Header) String() string {
	return fmt.Sprintf("archive: %d bytes compressed to %d", h.Length, h.CompressedLength)
}
