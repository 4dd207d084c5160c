// Package xpr decodes XPR0 packed-resource archives.
//
// An XPR package starts with a 12-byte header followed by a table of 20-byte
// resource descriptors. Resource data lives after the header, addressed
// relative to package start + HeaderSize:
//
//	+0x00 magic "XPR0"
//	+0x04 total size (i32)
//	+0x08 header size (i32), including the descriptor table
//	+0x0C descriptors, terminated by 0xFFFFFFFF or the end of the header
//
// Packages appear standalone (.xpr files) or embedded in UIX items.
package xpr

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/goopsie/uixtool/pkg/binio"
	"github.com/goopsie/uixtool/pkg/diag"
)

// Magic identifies an XPR0 package.
const Magic = "XPR0"

const (
	// HeaderStructSize is the size of the fixed package header.
	HeaderStructSize = 12

	// ResourceStructSize is the size of one resource descriptor.
	ResourceStructSize = 20

	alignment = 1024
	sentinel  = 0xFFFFFFFF
)

// Package is a decoded XPR archive.
type Package struct {
	Position   int64 // absolute stream position of the header
	Magic      string
	TotalSize  int32
	HeaderSize int32

	Resources   []*Resource
	Diagnostics diag.List
}

type config struct {
	logger         hclog.Logger
	decodeTextures bool
}

// Option configures Decode and DecodeAt.
type Option func(*config)

// WithLogger sets the logger diagnostics are written to. The default discards them.
func WithLogger(logger hclog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTextureDecoding enables or disables pixel decoding. Descriptors are
// always parsed. Enabled by default.
func WithTextureDecoding(enabled bool) Option {
	return func(c *config) {
		c.decodeTextures = enabled
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		logger:         hclog.NewNullLogger(),
		decodeTextures: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = hclog.NewNullLogger()
	}
	return cfg
}

// Decode decodes a standalone package starting at offset 0 of data.
func Decode(data []byte, opts ...Option) (*Package, error) {
	return DecodeAt(binio.NewReader(data), 0, opts...)
}

// DecodeAt decodes a package at pos. Only a header that cannot be read is a
// hard failure; everything after it degrades to diagnostics or per-resource
// errors. The reader is left after the last descriptor read.
func DecodeAt(r *binio.Reader, pos int64, opts ...Option) (*Package, error) {
	cfg := newConfig(opts)
	logger := cfg.logger.Named("xpr")

	if err := r.Seek(pos); err != nil {
		return nil, fmt.Errorf("seek package: %w", err)
	}

	p := &Package{Position: pos}
	if err := p.readHeader(r); err != nil {
		return nil, fmt.Errorf("read package header: %w", err)
	}

	end := pos + int64(p.HeaderSize)
	for r.Tell() < end {
		word, err := r.PeekU32()
		if err != nil {
			p.Diagnostics.Warnf("xpr", r.Tell(), "resource table ends before header end 0x%X", end)
			break
		}
		if word == sentinel {
			break
		}

		res, err := decodeResource(r, p, cfg)
		if err != nil {
			p.Diagnostics.Warnf("xpr", r.Tell(), "resource table truncated: %v", err)
			break
		}
		p.Resources = append(p.Resources, res)
	}

	logger.Debug("decoded package", "position", fmt.Sprintf("0x%X", pos), "resources", len(p.Resources))
	p.Diagnostics.Log(logger)
	for _, res := range p.Resources {
		res.Diagnostics.Log(logger)
	}
	return p, nil
}

func (p *Package) readHeader(r *binio.Reader) error {
	magic, err := r.ReadFixedASCII(4)
	if err != nil {
		return err
	}
	p.Magic = magic
	if p.TotalSize, err = r.I32(); err != nil {
		return err
	}
	if p.HeaderSize, err = r.I32(); err != nil {
		return err
	}

	if magic != Magic {
		p.Diagnostics.Warnf("xpr", p.Position, "unsupported package magic %q, continuing as %s", magic, Magic)
	}
	if p.HeaderSize >= p.TotalSize {
		p.Diagnostics.Warnf("xpr", p.Position+8, "header size 0x%X not less than total size 0x%X", p.HeaderSize, p.TotalSize)
	}
	if p.HeaderSize%alignment != 0 {
		p.Diagnostics.Warnf("xpr", p.Position+8, "header size 0x%X not %d-byte aligned", p.HeaderSize, alignment)
	}
	if p.TotalSize%alignment != 0 {
		p.Diagnostics.Warnf("xpr", p.Position+4, "total size 0x%X not %d-byte aligned", p.TotalSize, alignment)
	}
	return nil
}

// DataStart returns the absolute position resource data offsets are relative to.
func (p *Package) DataStart() int64 {
	return p.Position + int64(p.HeaderSize)
}

// Textures returns the texture resources in table order.
func (p *Package) Textures() []*Resource {
	var out []*Resource
	for _, res := range p.Resources {
		if res.Type() == Texture {
			out = append(out, res)
		}
	}
	return out
}

// ResourceAtEntryOffset returns the resource whose descriptor sits at the
// given offset from the start of the descriptor table.
func (p *Package) ResourceAtEntryOffset(offset int64) (*Resource, bool) {
	for _, res := range p.Resources {
		if res.EntryInfoOffset() == offset {
			return res, true
		}
	}
	return nil, false
}

// ResourceByIndex returns the resource with the given descriptor index.
// Indices are derived from descriptor positions, so they skip values after
// a variable-size vertex buffer and do not match slice positions.
func (p *Package) ResourceByIndex(index int) (*Resource, bool) {
	for _, res := range p.Resources {
		if res.Index == index {
			return res, true
		}
	}
	return nil, false
}

// Warnings counts warnings on the package and all of its resources.
func (p *Package) Warnings() int {
	n := p.Diagnostics.Warnings()
	for _, res := range p.Resources {
		n += res.Diagnostics.Warnings()
	}
	return n
}

// Patch returns a copy of data with payload written at res's data position.
// data must be the buffer the package was decoded from.
func (p *Package) Patch(data []byte, res *Resource, payload []byte) ([]byte, error) {
	if res == nil || res.pkg != p {
		return nil, diag.Errorf(diag.InvalidArgument, "patch resource", "resource does not belong to this package")
	}
	start := res.DataPosition()
	end := start + int64(len(payload))
	if start < 0 || end > int64(len(data)) {
		return nil, diag.Errorf(diag.InvalidArgument, "patch resource", "payload [0x%X,0x%X) outside %d-byte buffer", start, end, len(data))
	}

	out := make([]byte, len(data))
	copy(out, data)
	copy(out[start:end], payload)
	return out, nil
}

func (p *Package) String() string {
	return fmt.Sprintf("%s: %d resources, header 0x%X, total 0x%X", p.Magic, len(p.Resources), p.HeaderSize, p.TotalSize)
}
