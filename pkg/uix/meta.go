package uix

import (
	"fmt"

	"github.com/goopsie/uixtool/pkg/binio"
)

const (
	// MetaStructSize is the size of one meta descriptor.
	MetaStructSize = 8

	// LayoutStructSize is the size of one layout record.
	LayoutStructSize = 44

	noOffset = -1
)

// Meta is one descriptor from an item's meta table.
type Meta struct {
	Position int64 // absolute stream position of the descriptor
	ID       uint8
	Flags    uint8
	Reserved [2]uint8
	Offset   int32 // relative to the end of the meta table

	// Value is resolved once while the item is decoded.
	Value MetaValue
}

// MetaValue is one of StringEntry, IconRef, LayoutRect or Unresolved.
type MetaValue interface {
	isMetaValue()
}

// StringEntry is a string table entry.
type StringEntry struct {
	Text string
}

// IconRef names a resource in the item's package by index.
type IconRef struct {
	ResourceIndex int
}

// LayoutRect is a 44-byte layout record.
type LayoutRect struct {
	Position int64
	X        uint16
	Y        uint16
	Width    uint16
	Height   uint16
	Reserved [9]uint32
}

// Unresolved marks a descriptor that could not be, or was not, resolved.
type Unresolved struct {
	Reason string
}

func (StringEntry) isMetaValue() {}
func (IconRef) isMetaValue()     {}
func (LayoutRect) isMetaValue()  {}
func (Unresolved) isMetaValue()  {}

func (v StringEntry) String() string { return fmt.Sprintf("%q", v.Text) }
func (v IconRef) String() string     { return fmt.Sprintf("resource[%d]", v.ResourceIndex) }
func (v Unresolved) String() string  { return "unresolved: " + v.Reason }

func (v LayoutRect) String() string {
	return fmt.Sprintf("rect(%d,%d %dx%d)", v.X, v.Y, v.Width, v.Height)
}

func readMeta(r *binio.Reader) (Meta, error) {
	m := Meta{Position: r.Tell(), Value: Unresolved{Reason: "not resolved"}}
	b, err := r.ReadExact(4)
	if err != nil {
		return m, err
	}
	m.ID, m.Flags = b[0], b[1]
	m.Reserved = [2]uint8{b[2], b[3]}
	if m.Offset, err = r.I32(); err != nil {
		return m, err
	}
	return m, nil
}

// readLayout parses a layout record at pos without moving the reader.
func readLayout(r *binio.Reader, pos int64) (LayoutRect, error) {
	b, err := r.PeekBytes(pos, LayoutStructSize)
	if err != nil {
		return LayoutRect{}, err
	}

	order := r.ByteOrder()
	rect := LayoutRect{
		Position: pos,
		X:        order.Uint16(b[0:]),
		Y:        order.Uint16(b[2:]),
		Width:    order.Uint16(b[4:]),
		Height:   order.Uint16(b[6:]),
	}
	for i := range rect.Reserved {
		rect.Reserved[i] = order.Uint32(b[8+i*4:])
	}
	return rect, nil
}
