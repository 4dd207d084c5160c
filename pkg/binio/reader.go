// Package binio provides a random-access, endian-aware reader over an immutable byte slice.
//
// Every decoder in this module reads through a Reader. The slice is never modified; peek
// operations restore the read position so nested structures can be followed without
// disturbing the caller.
package binio

import (
	"bytes"
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/goopsie/uixtool/pkg/diag"
)

// Source is the narrow view decoders need from a byte source.
type Source interface {
	Tell() int64
	Seek(pos int64) error
	ReadExact(n int) ([]byte, error)
	Len() int64
}

// Reader reads fixed-width values from an in-memory buffer.
type Reader struct {
	data  []byte
	pos   int64
	order binary.ByteOrder
}

// Option configures a Reader.
type Option func(*Reader)

// WithByteOrder sets the byte order used for multi-byte reads. The default is little-endian.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(r *Reader) {
		r.order = order
	}
}

// NewReader creates a reader positioned at the start of data.
func NewReader(data []byte, opts ...Option) *Reader {
	r := &Reader{
		data:  data,
		order: binary.LittleEndian,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Bytes returns the whole underlying buffer. Callers must not modify it.
func (r *Reader) Bytes() []byte {
	return r.data
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}

// Tell returns the current read position.
func (r *Reader) Tell() int64 {
	return r.pos
}

// Len returns the total buffer length.
func (r *Reader) Len() int64 {
	return int64(len(r.data))
}

// Remaining returns the number of bytes after the read position.
func (r *Reader) Remaining() int64 {
	return int64(len(r.data)) - r.pos
}

// Seek moves the read position. Seeking to Len() is allowed; beyond it is not.
func (r *Reader) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(r.data)) {
		return diag.Errorf(diag.InvalidArgument, "seek", "position %d outside [0,%d]", pos, len(r.data))
	}
	r.pos = pos
	return nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int64) error {
	if n < 0 || n > r.Remaining() {
		return eof("skip", n, r.Remaining())
	}
	r.pos += n
	return nil
}

// ReadExact returns the next n bytes and advances past them.
// The returned slice aliases the buffer.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n < 0 || int64(n) > r.Remaining() {
		return nil, eof("read bytes", int64(n), r.Remaining())
	}
	b := r.data[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return b, nil
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	b, err := r.ReadExact(n)
	if err != nil {
		return nil, err
	}
	return bytes.Clone(b), nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.ReadExact(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a 16-bit unsigned value.
func (r *Reader) U16() (uint16, error) {
	b, err := r.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(b), nil
}

// U32 reads a 32-bit unsigned value.
func (r *Reader) U32() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// I32 reads a 32-bit signed value.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// PeekU32 reads a 32-bit value without advancing.
func (r *Reader) PeekU32() (uint32, error) {
	b, err := r.PeekBytes(r.pos, 4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// PeekBytes returns n bytes at pos without moving the read position.
// The returned slice aliases the buffer.
func (r *Reader) PeekBytes(pos int64, n int) ([]byte, error) {
	if pos < 0 || pos > int64(len(r.data)) {
		return nil, diag.Errorf(diag.InvalidArgument, "peek bytes", "position %d outside [0,%d]", pos, len(r.data))
	}
	avail := int64(len(r.data)) - pos
	if n < 0 || int64(n) > avail {
		return nil, eof("peek bytes", int64(n), avail)
	}
	return r.data[pos : pos+int64(n)], nil
}

// ReadFixedASCII reads an n-byte ASCII field. Trailing NULs are kept; see TrimNUL.
func (r *Reader) ReadFixedASCII(n int) (string, error) {
	b, err := r.ReadExact(n)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// TrimNUL strips trailing NUL characters from a fixed-width field.
func TrimNUL(s string) string {
	return strings.TrimRight(s, "\x00")
}

// ReadNullTerminatedUTF16 reads UTF-16 code units in the reader's byte order until a zero
// unit and returns the decoded string. The terminator is consumed.
func (r *Reader) ReadNullTerminatedUTF16() (string, error) {
	start := r.pos
	end := start
	for {
		if int64(len(r.data))-end < 2 {
			return "", eof("read utf-16 string", 2, int64(len(r.data))-end)
		}
		if r.data[end] == 0 && r.data[end+1] == 0 {
			break
		}
		end += 2
	}

	s, err := r.decodeUTF16(r.data[start:end])
	if err != nil {
		return "", &diag.Error{Kind: diag.InvalidFormat, Op: "decode utf-16 string", Err: err}
	}
	r.pos = end + 2
	return s, nil
}

// PeekNullTerminatedUTF16 reads a UTF-16 string at pos and restores the read position.
func (r *Reader) PeekNullTerminatedUTF16(pos int64) (string, error) {
	saved := r.pos
	defer func() { r.pos = saved }()

	if err := r.Seek(pos); err != nil {
		return "", err
	}
	return r.ReadNullTerminatedUTF16()
}

func (r *Reader) decodeUTF16(raw []byte) (string, error) {
	endianness := unicode.LittleEndian
	if r.order == binary.BigEndian {
		endianness = unicode.BigEndian
	}
	decoded, err := unicode.UTF16(endianness, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func eof(op string, need, have int64) error {
	return diag.Errorf(diag.UnexpectedEOF, op, "need %d bytes, %d remaining", need, have)
}
