package archive

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/DataDog/zstd"

	"github.com/goopsie/uixtool/pkg/diag"
)

// DefaultCompressionLevel is used when no level option is given.
const DefaultCompressionLevel = zstd.BestSpeed

type encodeConfig struct {
	level int
}

// EncodeOption configures Encode.
type EncodeOption func(*encodeConfig)

// WithCompressionLevel sets the zstd compression level.
func WithCompressionLevel(level int) EncodeOption {
	return func(c *encodeConfig) {
		c.level = level
	}
}

// Compress frames data and returns the complete archive bytes.
func Compress(data []byte, opts ...EncodeOption) ([]byte, error) {
	cfg := &encodeConfig{level: DefaultCompressionLevel}
	for _, opt := range opts {
		opt(cfg)
	}

	compressed, err := zstd.CompressLevel(nil, data, cfg.level)
	if err != nil {
		return nil, fmt.Errorf("compress: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(compressed))
	// fixed-size fields only, so Write into a buffer cannot fail
	_ = binary.Write(&buf, binary.LittleEndian, NewHeader(uint64(len(data)), uint64(len(compressed))))
	buf.Write(compressed)
	return buf.Bytes(), nil
}

// Encode frames data and writes it to dst.
func Encode(dst io.Writer, data []byte, opts ...EncodeOption) error {
	framed, err := Compress(data, opts...)
	if err != nil {
		return err
	}
	if _, err := dst.Write(framed); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

// Decode unwraps a framed buffer and returns the uncompressed payload.
func Decode(data []byte) ([]byte, error) {
	h, err := ReadHeader(data)
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	end := uint64(HeaderSize) + h.CompressedLength
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("compressed payload truncated: need %d bytes, got %d", end, len(data))
	}

	out := make([]byte, h.Length)
	ctx := zstd.NewCtx()
	decoded, err := ctx.Decompress(out, data[HeaderSize:end])
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if uint64(len(decoded)) != h.Length {
		return nil, fmt.Errorf("incomplete payload: expected %d, got %d", h.Length, len(decoded))
	}
	return decoded, nil
}

// ReadHeader decodes and validates the frame header at the start of data.
func ReadHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, diag.Errorf(diag.UnexpectedEOF, "read archive header", "need %d bytes, got %d", HeaderSize, len(data))
	}
	h := &Header{}
	if err := binary.Read(bytes.NewReader(data[:HeaderSize]), binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// ReadAll reads a framed archive from r and returns the uncompressed payload.
func ReadAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	return Decode(data)
}
