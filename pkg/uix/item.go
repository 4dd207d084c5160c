package uix

import (
	"fmt"

	"github.com/goopsie/uixtool/pkg/binio"
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/xpr"
)

// ItemStructSize is the size of one item header.
const ItemStructSize = 20

// Item types with a known meta layout.
const (
	TypeStrings    = 0x01
	TypeIcons      = 0x02
	TypeStringsAlt = 0x03
)

// layoutTypes hold 44-byte layout records. 0x13 has never been observed.
var layoutTypes = map[uint16]bool{
	0x10: true, 0x11: true, 0x12: true, 0x14: true, 0x15: true,
	0x16: true, 0x17: true, 0x18: true, 0x19: true, 0x1A: true,
}

// Item is one decoded entry of the container's item table.
type Item struct {
	Position int64 // absolute stream position of the header

	Type          uint16
	Language      Language
	Reserved      uint16
	MetaCount     uint16
	DataOffset    uint32 // relative to the container start
	EntryMetaSize int32  // -1 when the item has no package
	DataSize      int32

	// Data is the item payload clamped to the buffer. It aliases the input.
	Data []byte

	Metas   []Meta
	Package *xpr.Package

	// Err is a hard failure confined to this item.
	Err         error
	Diagnostics diag.List

	scope string
}

// IsLayout reports whether the item holds layout records.
func (it *Item) IsLayout() bool {
	return layoutTypes[it.Type]
}

// Name returns a short label such as "Strings (English)".
func (it *Item) Name() string {
	var typeName string
	switch {
	case it.Type == TypeStrings || it.Type == TypeStringsAlt:
		typeName = "Strings"
	case it.Type == TypeIcons:
		typeName = "Icons"
	default:
		typeName = fmt.Sprintf("Type %02X", it.Type)
	}
	return fmt.Sprintf("%s (%s)", typeName, it.Language)
}

// Strings returns the string table keyed by descriptor id.
func (it *Item) Strings() map[uint8]string {
	out := make(map[uint8]string)
	for _, m := range it.Metas {
		if s, ok := m.Value.(StringEntry); ok {
			out[m.ID] = s.Text
		}
	}
	return out
}

// Icons returns the resolved icon references keyed by descriptor id.
func (it *Item) Icons() map[uint8]*xpr.Resource {
	out := make(map[uint8]*xpr.Resource)
	if it.Package == nil {
		return out
	}
	for _, m := range it.Metas {
		ref, ok := m.Value.(IconRef)
		if !ok {
			continue
		}
		if res, ok := it.Package.ResourceByIndex(ref.ResourceIndex); ok {
			out[m.ID] = res
		}
	}
	return out
}

// Layouts returns the resolved layout records in table order.
func (it *Item) Layouts() []LayoutRect {
	var out []LayoutRect
	for _, m := range it.Metas {
		if rect, ok := m.Value.(LayoutRect); ok {
			out = append(out, rect)
		}
	}
	return out
}

func (it *Item) String() string {
	return fmt.Sprintf("%s: %d metas, data 0x%X+0x%X", it.Name(), it.MetaCount, it.DataOffset, it.DataSize)
}

// decodeItem reads the item header at pos and resolves its meta table.
// It never fails; hard errors are stored in Item.Err.
func decodeItem(r *binio.Reader, c *Container, index int, pos int64, cfg *config) *Item {
	it := &Item{Position: pos, scope: fmt.Sprintf("item[%d]", index)}

	if err := it.readHeader(r); err != nil {
		it.fail(fmt.Errorf("read item header: %w", err))
		return it
	}

	start := c.Position + int64(it.DataOffset)
	it.Data = clamp(r.Bytes(), start, int64(it.DataSize))
	if it.DataSize < 0 || start+int64(it.DataSize) > r.Len() {
		it.Diagnostics.Warnf(it.scope, pos, "payload 0x%X+0x%X exceeds the %d-byte buffer", start, it.DataSize, r.Len())
	}

	if err := r.Seek(start); err != nil {
		it.fail(fmt.Errorf("seek item payload: %w", err))
		return it
	}
	it.Metas = make([]Meta, 0, it.MetaCount)
	for i := 0; i < int(it.MetaCount); i++ {
		m, err := readMeta(r)
		if err != nil {
			it.fail(fmt.Errorf("read meta %d: %w", i, err))
			return it
		}
		it.Metas = append(it.Metas, m)
	}
	metaEnd := start + int64(it.MetaCount)*MetaStructSize

	if it.EntryMetaSize != noOffset {
		pkgPos := metaEnd + int64(it.EntryMetaSize)
		pkg, err := xpr.DecodeAt(r, pkgPos, cfg.xprOptions()...)
		if err != nil {
			it.Diagnostics.Fail(it.scope, pkgPos, fmt.Errorf("decode package: %w", err))
		} else {
			it.Package = pkg
		}
	}

	switch {
	case it.Type == TypeStrings || it.Type == TypeStringsAlt:
		it.resolveStrings(r, metaEnd)
	case it.Type == TypeIcons:
		it.resolveIcons()
	case it.IsLayout():
		it.resolveLayouts(r, metaEnd)
	default:
		for i := range it.Metas {
			it.Metas[i].Value = Unresolved{Reason: fmt.Sprintf("unsupported item type 0x%02X", it.Type)}
		}
	}
	return it
}

func (it *Item) readHeader(r *binio.Reader) error {
	if err := r.Seek(it.Position); err != nil {
		return err
	}

	var err error
	if it.Type, err = r.U16(); err != nil {
		return err
	}
	lang, err := r.U16()
	if err != nil {
		return err
	}
	it.Language = Language(lang)
	if it.Reserved, err = r.U16(); err != nil {
		return err
	}
	if it.MetaCount, err = r.U16(); err != nil {
		return err
	}
	if it.DataOffset, err = r.U32(); err != nil {
		return err
	}
	if it.EntryMetaSize, err = r.I32(); err != nil {
		return err
	}
	if it.DataSize, err = r.I32(); err != nil {
		return err
	}

	if !it.Language.Known() {
		it.Diagnostics.Debugf(it.scope, it.Position+2, "unknown language code %d", lang)
	}
	return nil
}

func (it *Item) resolveStrings(r *binio.Reader, metaEnd int64) {
	for i := range it.Metas {
		m := &it.Metas[i]
		pos := metaEnd + int64(m.Offset)
		s, err := r.PeekNullTerminatedUTF16(pos)
		if err != nil {
			m.Value = Unresolved{Reason: err.Error()}
			it.Diagnostics.Warnf(it.scope, pos, "string %d unreadable: %v", m.ID, err)
			continue
		}
		m.Value = StringEntry{Text: s}
	}
}

func (it *Item) resolveIcons() {
	if it.Package == nil {
		for i := range it.Metas {
			it.Metas[i].Value = Unresolved{Reason: "item has no package"}
		}
		if len(it.Metas) > 0 {
			it.Diagnostics.Warnf(it.scope, it.Position, "icon table without a package")
		}
		return
	}

	if n := len(it.Package.Resources); n != int(it.MetaCount) {
		it.Diagnostics.Warnf(it.scope, it.Position, "package has %d resources but item has %d metas", n, it.MetaCount)
	}

	for i := range it.Metas {
		m := &it.Metas[i]
		res, ok := it.Package.ResourceAtEntryOffset(int64(m.Offset))
		if !ok {
			m.Value = Unresolved{Reason: fmt.Sprintf("no resource at entry offset 0x%X", m.Offset)}
			it.Diagnostics.Warnf(it.scope, m.Position, "icon %d references no resource (offset 0x%X)", m.ID, m.Offset)
			continue
		}
		m.Value = IconRef{ResourceIndex: res.Index}
	}
}

func (it *Item) resolveLayouts(r *binio.Reader, metaEnd int64) {
	if it.EntryMetaSize <= 0 {
		it.Diagnostics.Debugf(it.scope, it.Position, "no meta data available")
	}

	resolved := 0
	for i := range it.Metas {
		m := &it.Metas[i]
		if m.Offset == noOffset {
			m.Value = Unresolved{Reason: "no associated layout"}
			continue
		}

		pos := metaEnd + int64(m.Offset)
		rect, err := readLayout(r, pos)
		if err != nil {
			m.Value = Unresolved{Reason: err.Error()}
			it.Diagnostics.Warnf(it.scope, pos, "layout %d unreadable: %v", m.ID, err)
			continue
		}
		m.Value = rect
		resolved++
	}

	if it.EntryMetaSize > 0 && int64(resolved)*LayoutStructSize != int64(it.EntryMetaSize) {
		it.Diagnostics.Warnf(it.scope, it.Position, "%d layout records do not fill meta data size 0x%X", resolved, it.EntryMetaSize)
	}
}

func (it *Item) fail(err error) {
	it.Err = err
	it.Diagnostics.Fail(it.scope, it.Position, err)
}

// clamp returns data[start:start+n] limited to the buffer.
func clamp(data []byte, start, n int64) []byte {
	if start < 0 || start > int64(len(data)) || n <= 0 {
		return nil
	}
	end := start + n
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[start:end]
}
