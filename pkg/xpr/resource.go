package xpr

import (
	"fmt"
	"sync/atomic"

	"github.com/goopsie/uixtool/pkg/binio"
	"github.com/goopsie/uixtool/pkg/bitfield"
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/texture"
)

// ResourceType is the resource kind stored in bits [16,18] of the common word.
type ResourceType uint8

const (
	VertexBuffer ResourceType = iota
	IndexBuffer
	Unknown2
	Unknown3
	Texture
	Unknown5
	Unknown6
	Unknown7
)

func (t ResourceType) String() string {
	switch t {
	case VertexBuffer:
		return "VertexBuffer"
	case IndexBuffer:
		return "IndexBuffer"
	case Texture:
		return "Texture"
	default:
		return fmt.Sprintf("Unknown%d", uint8(t))
	}
}

// Resource is one decoded descriptor.
//
// The raw machine words are kept verbatim; the accessor methods unpack their
// bitfields. Width, Height and Depth are resolved once while decoding.
type Resource struct {
	Index    int
	Position int64 // absolute stream position of the descriptor

	Common        uint32
	DataOffset    uint32 // relative to the end of the package header
	Lock          uint32 // opaque
	GPUFormat     uint32
	AlternateSize uint32

	// Inline header of vertex buffers; zero for other types.
	VertexBufferSize uint32
	VertexBufferType uint32

	Width  uint32
	Height uint32
	Depth  uint32 // 1 unless the texture is 3D

	// Data is the top-level payload of a 2D texture, clamped to the buffer.
	// It aliases the decoded buffer.
	Data []byte

	// Err is a hard failure confined to this resource.
	Err         error
	Diagnostics diag.List

	pkg   *Package
	image atomic.Pointer[texture.Image]
}

// RefCount returns bits [0,15] of the common word.
func (r *Resource) RefCount() uint32 { return bitfield.MustExtract32(r.Common, 0, 15) }

// Type returns bits [16,18] of the common word.
func (r *Resource) Type() ResourceType { return ResourceType(bitfield.MustExtract32(r.Common, 16, 18)) }

// CommonReserved returns bits [19,31] of the common word.
func (r *Resource) CommonReserved() uint32 { return bitfield.MustExtract32(r.Common, 19, 31) }

// DMA returns bits [0,3] of the GPU format word.
func (r *Resource) DMA() uint32 { return bitfield.MustExtract32(r.GPUFormat, 0, 3) }

// Dimensions returns the texture dimensionality (1, 2 or 3).
func (r *Resource) Dimensions() uint32 { return bitfield.MustExtract32(r.GPUFormat, 4, 7) }

// Format returns the texture pixel format.
func (r *Resource) Format() texture.Format {
	return texture.Format(bitfield.MustExtract32(r.GPUFormat, 8, 15))
}

// MipLevels returns bits [16,19] of the GPU format word.
func (r *Resource) MipLevels() uint32 { return bitfield.MustExtract32(r.GPUFormat, 16, 19) }

// EntryInfoOffset is the descriptor's offset from the start of the table.
func (r *Resource) EntryInfoOffset() int64 {
	return int64(r.Index) * ResourceStructSize
}

// DataPosition returns the absolute position of the resource data.
func (r *Resource) DataPosition() int64 {
	return r.pkg.DataStart() + int64(r.DataOffset)
}

// Package returns the package the resource belongs to.
func (r *Resource) Package() *Package {
	return r.pkg
}

// Image returns the decoded top mip level, or nil when none was decoded.
func (r *Resource) Image() *texture.Image {
	return r.image.Load()
}

// Name returns a short label such as "[2] - Texture".
func (r *Resource) Name() string {
	return fmt.Sprintf("[%d] - %s", r.Index, r.Type())
}

func (r *Resource) String() string {
	if r.Type() != Texture {
		return r.Name()
	}
	return fmt.Sprintf("%s %s %dx%dx%d mips=%d data=0x%X", r.Name(), r.Format(), r.Width, r.Height, r.Depth, r.MipLevels(), r.DataPosition())
}

// ResolveDimension picks one axis size from its two encodings: a power-of-two
// exponent and an explicit (size-1) field. Exactly one must be set.
func ResolveDimension(exponent, alternate uint32) (uint32, error) {
	var a, b uint32
	if exponent != 0 {
		if exponent > 31 || !bitfield.IsPowerOfTwo(1<<exponent) {
			return 0, diag.Errorf(diag.InvalidFormat, "resolve dimension", "exponent %d is not a valid power of two", exponent)
		}
		a = 1 << exponent
	}
	if alternate != 0 {
		b = alternate + 1
	}

	switch {
	case a != 0 && b != 0:
		return 0, diag.Errorf(diag.InvalidFormat, "resolve dimension", "set in both encodings (2^%d and %d)", exponent, b)
	case a == 0 && b == 0:
		return 0, diag.Errorf(diag.InvalidFormat, "resolve dimension", "set in neither encoding")
	case a != 0:
		return a, nil
	default:
		return b, nil
	}
}

// Dimensions resolves width, height and depth from the GPU format and
// alternate size words. Only the axes the texture's dimensionality uses are
// resolved; the others are 1.
func Dimensions(gpuFormat, alternateSize uint32) (width, height, depth uint32, err error) {
	dims := bitfield.MustExtract32(gpuFormat, 4, 7)

	width, err = ResolveDimension(bitfield.MustExtract32(gpuFormat, 20, 23), bitfield.MustExtract32(alternateSize, 0, 11))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("width: %w", err)
	}

	height, depth = 1, 1
	if dims >= 2 {
		height, err = ResolveDimension(bitfield.MustExtract32(gpuFormat, 24, 27), bitfield.MustExtract32(alternateSize, 12, 23))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("height: %w", err)
		}
	}
	if dims == 3 {
		depth, err = ResolveDimension(bitfield.MustExtract32(gpuFormat, 28, 31), bitfield.MustExtract32(alternateSize, 24, 31))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("depth: %w", err)
		}
	}
	return width, height, depth, nil
}

// decodeResource reads one descriptor at the reader's position. An error
// means the fixed fields could not be read; resolution and pixel failures are
// stored on the resource instead.
func decodeResource(r *binio.Reader, p *Package, cfg *config) (*Resource, error) {
	pos := r.Tell()
	res := &Resource{
		Index:    int((pos - p.Position - HeaderStructSize) / ResourceStructSize),
		Position: pos,
		pkg:      p,
	}
	scope := fmt.Sprintf("resource[%d]", res.Index)

	var err error
	if res.Common, err = r.U32(); err != nil {
		return nil, err
	}

	if res.Type() == VertexBuffer {
		if res.VertexBufferSize, err = r.U32(); err != nil {
			return nil, err
		}
		if res.VertexBufferType, err = r.U32(); err != nil {
			return nil, err
		}
		if res.VertexBufferSize < 4 {
			res.Diagnostics.Warnf(scope, pos, "vertex buffer inline size %d smaller than its type field", res.VertexBufferSize)
			return res, nil
		}
		if err := r.Skip(int64(res.VertexBufferSize) - 4); err != nil {
			return nil, fmt.Errorf("skip vertex buffer data: %w", err)
		}
		return res, nil
	}

	if res.DataOffset, err = r.U32(); err != nil {
		return nil, err
	}
	if res.Lock, err = r.U32(); err != nil {
		return nil, err
	}
	if res.GPUFormat, err = r.U32(); err != nil {
		return nil, err
	}
	if res.AlternateSize, err = r.U32(); err != nil {
		return nil, err
	}

	if res.Type() != Texture {
		return res, nil
	}

	res.Width, res.Height, res.Depth, err = Dimensions(res.GPUFormat, res.AlternateSize)
	if err != nil {
		res.fail(scope, fmt.Errorf("resolve dimensions: %w", err))
		return res, nil
	}

	if res.Dimensions() != 2 {
		res.Diagnostics.Debugf(scope, pos, "%dD texture left undecoded", res.Dimensions())
		return res, nil
	}
	res.loadTexture(r.Bytes(), scope, cfg.decodeTextures)
	return res, nil
}

// maxTexels bounds the decoded image to the largest texture the hardware samples.
const maxTexels = 4096 * 4096

func (r *Resource) loadTexture(data []byte, scope string, decode bool) {
	format := r.Format()
	if uint64(r.Width)*uint64(r.Height) > maxTexels {
		r.fail(scope, diag.Errorf(diag.InvalidFormat, "texture size", "%dx%d exceeds %d texels", r.Width, r.Height, maxTexels))
		return
	}
	size, err := texture.DataSize(format, int(r.Width), int(r.Height))
	if err != nil {
		r.fail(scope, fmt.Errorf("texture size: %w", err))
		return
	}

	start := r.DataPosition()
	if start > int64(len(data)) {
		r.Diagnostics.Warnf(scope, r.Position, "texture data at 0x%X is past the end of the buffer", start)
		start = int64(len(data))
	}
	end := start + int64(size)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	r.Data = data[start:end]

	if !decode {
		return
	}
	if len(r.Data) == 0 {
		r.Diagnostics.Warnf(scope, r.Position, "no texture data available, pixel decode skipped")
		return
	}
	img, diags, err := texture.Decode(format, int(r.Width), int(r.Height), r.Data)
	if err != nil {
		r.fail(scope, fmt.Errorf("decode texture: %w", err))
		return
	}
	r.Diagnostics.Append(scope, diags)
	r.image.Store(img)
}

func (r *Resource) fail(scope string, err error) {
	r.Err = err
	r.Diagnostics.Fail(scope, r.Position, err)
}

// UpdateTexture re-encodes img in the resource's pixel format and atomically
// replaces the decoded image. It returns the encoded payload; the source
// buffer is not modified (see Package.Patch).
func (r *Resource) UpdateTexture(img *texture.Image) ([]byte, error) {
	if r.Type() != Texture || r.Dimensions() != 2 {
		return nil, diag.Errorf(diag.InvalidArgument, "update texture", "%s is not a 2D texture", r.Name())
	}
	if r.Err != nil {
		return nil, fmt.Errorf("update texture: %w", r.Err)
	}
	if img == nil || img.Width != int(r.Width) || img.Height != int(r.Height) {
		return nil, diag.Errorf(diag.InvalidArgument, "update texture", "image size does not match %dx%d", r.Width, r.Height)
	}

	payload, err := texture.Encode(r.Format(), img)
	if err != nil {
		return nil, fmt.Errorf("update texture: %w", err)
	}

	// store what a fresh decode of the payload yields so readers see the same
	// pixels as after a reload
	replacement, _, err := texture.Decode(r.Format(), img.Width, img.Height, payload)
	if err != nil {
		return nil, fmt.Errorf("update texture: %w", err)
	}
	r.image.Store(replacement)
	return payload, nil
}
