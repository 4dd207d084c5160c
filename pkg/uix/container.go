// Package uix decodes UIX localized-resource containers.
//
// A container is a 20-byte header followed by a table of 20-byte item headers:
//
//	+0x00 magic "XSK0"
//	+0x04 header size (u16, 20)
//	+0x06 item count (u16)
//	+0x08 magic "UIX\0"
//	+0x0C reserved (u32, 0)
//	+0x10 reserved (u32, 13)
//
// Each item's payload starts with a meta table of 8-byte descriptors whose
// offsets are relative to the end of that table. Depending on the item type
// the descriptors resolve to strings, icon references into an embedded XPR
// package, or layout records.
package uix

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/goopsie/uixtool/pkg/binio"
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/xpr"
)

const (
	// Magic identifies a UIX container.
	Magic = "XSK0"

	// Magic2 is the secondary signature after trailing NULs are trimmed.
	Magic2 = "UIX"

	// HeaderStructSize is the size of the container header.
	HeaderStructSize = 20

	expectedReserved0 = 0
	expectedReserved1 = 13
)

// Container is a decoded UIX file.
type Container struct {
	Position   int64
	Magic      string
	HeaderSize uint16
	ItemCount  uint16
	Magic2     string
	Reserved0  uint32
	Reserved1  uint32

	Items       []*Item
	Diagnostics diag.List
}

type config struct {
	logger         hclog.Logger
	decodeTextures bool
}

// Option configures Decode.
type Option func(*config)

// WithLogger sets the logger diagnostics are written to. The default discards them.
func WithLogger(logger hclog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithTextureDecoding enables or disables pixel decoding of embedded packages.
func WithTextureDecoding(enabled bool) Option {
	return func(c *config) {
		c.decodeTextures = enabled
	}
}

func (c *config) xprOptions() []xpr.Option {
	return []xpr.Option{
		xpr.WithLogger(c.logger),
		xpr.WithTextureDecoding(c.decodeTextures),
	}
}

// Decode decodes a container from data.
//
// Bad signatures and a truncated header fail the whole decode. Problems inside
// one item are confined to that item's Err and Diagnostics.
func Decode(data []byte, opts ...Option) (*Container, error) {
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
	cfg.logger = cfg.logger.Named("uix")

	r := binio.NewReader(data)
	c := &Container{}
	if err := c.readHeader(r); err != nil {
		return nil, fmt.Errorf("read container header: %w", err)
	}

	c.Items = make([]*Item, 0, c.ItemCount)
	for i := 0; i < int(c.ItemCount); i++ {
		pos := c.Position + HeaderStructSize + int64(i)*ItemStructSize
		c.Items = append(c.Items, decodeItem(r, c, i, pos, cfg))
	}

	cfg.logger.Debug("decoded container", "items", len(c.Items))
	c.Diagnostics.Log(cfg.logger)
	for _, it := range c.Items {
		it.Diagnostics.Log(cfg.logger)
	}
	return c, nil
}

func (c *Container) readHeader(r *binio.Reader) error {
	c.Position = r.Tell()

	var err error
	if c.Magic, err = r.ReadFixedASCII(4); err != nil {
		return err
	}
	if c.Magic != Magic {
		return diag.Errorf(diag.InvalidMagic, "check container magic", "expected %q, got %q", Magic, c.Magic)
	}
	if c.HeaderSize, err = r.U16(); err != nil {
		return err
	}
	if c.ItemCount, err = r.U16(); err != nil {
		return err
	}
	magic2, err := r.ReadFixedASCII(4)
	if err != nil {
		return err
	}
	c.Magic2 = binio.TrimNUL(magic2)
	if c.Magic2 != Magic2 {
		return diag.Errorf(diag.InvalidMagic, "check container magic", "expected %q, got %q", Magic2, c.Magic2)
	}
	if c.Reserved0, err = r.U32(); err != nil {
		return err
	}
	if c.Reserved1, err = r.U32(); err != nil {
		return err
	}

	if c.HeaderSize != HeaderStructSize {
		c.Diagnostics.Warnf("uix", c.Position+4, "unexpected header size %d", c.HeaderSize)
	}
	if c.Reserved0 != expectedReserved0 {
		c.Diagnostics.Warnf("uix", c.Position+12, "unexpected reserved word 0x%X", c.Reserved0)
	}
	if c.Reserved1 != expectedReserved1 {
		c.Diagnostics.Warnf("uix", c.Position+16, "unexpected reserved word 0x%X", c.Reserved1)
	}
	return nil
}

// Packages returns the embedded packages in item order.
func (c *Container) Packages() []*xpr.Package {
	var out []*xpr.Package
	for _, it := range c.Items {
		if it.Package != nil {
			out = append(out, it.Package)
		}
	}
	return out
}

// Warnings counts warnings and contained failures across the whole tree.
func (c *Container) Warnings() int {
	n := c.Diagnostics.Warnings()
	for _, it := range c.Items {
		n += it.Diagnostics.Warnings()
		if it.Package != nil {
			n += it.Package.Warnings()
		}
	}
	return n
}

func (c *Container) String() string {
	return fmt.Sprintf("%s/%s: %d items", c.Magic, c.Magic2, len(c.Items))
}
