package xpr

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"testing"

	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/texture"
)

func gpuFormat(dims uint32, format texture.Format, wexp, hexp, dexp uint32) uint32 {
	return dims<<4 | uint32(format)<<8 | 1<<16 | wexp<<20 | hexp<<24 | dexp<<28
}

func texDescriptor(dataOffset, gpu, alt uint32) []byte {
	b := make([]byte, ResourceStructSize)
	binary.LittleEndian.PutUint32(b[0:], uint32(Texture)<<16)
	binary.LittleEndian.PutUint32(b[4:], dataOffset)
	binary.LittleEndian.PutUint32(b[8:], 0xDEADBEEF)
	binary.LittleEndian.PutUint32(b[12:], gpu)
	binary.LittleEndian.PutUint32(b[16:], alt)
	return b
}

// buildPackage lays out a package with the given descriptors, an optional
// terminator, and data placed directly after the header.
func buildPackage(headerSize, totalSize int32, descriptors [][]byte, terminate bool, data []byte) []byte {
	buf := make([]byte, int(headerSize)+len(data))
	copy(buf, Magic)
	binary.LittleEndian.PutUint32(buf[4:], uint32(totalSize))
	binary.LittleEndian.PutUint32(buf[8:], uint32(headerSize))

	off := HeaderStructSize
	for _, d := range descriptors {
		off += copy(buf[off:], d)
	}
	if terminate {
		binary.LittleEndian.PutUint32(buf[off:], sentinel)
	}
	copy(buf[headerSize:], data)
	return buf
}

func TestResolveDimension(t *testing.T) {
	tests := []struct {
		name      string
		exponent  uint32
		alternate uint32
		expected  uint32
		wantErr   bool
	}{
		{"Exponent", 5, 0, 32, false},
		{"Alternate", 0, 99, 100, false},
		{"Both", 5, 7, 0, true},
		{"Neither", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveDimension(tt.exponent, tt.alternate)
			if tt.wantErr {
				if !errors.Is(err, diag.InvalidFormat) {
					t.Errorf("expected InvalidFormat, got %d, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestDimensions(t *testing.T) {
	t.Run("Width32", func(t *testing.T) {
		w, h, d, err := Dimensions(gpuFormat(2, texture.SZ_A8R8G8B8, 5, 4, 0), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != 32 || h != 16 || d != 1 {
			t.Errorf("got %dx%dx%d, want 32x16x1", w, h, d)
		}
	})

	t.Run("WidthBothSet", func(t *testing.T) {
		_, _, _, err := Dimensions(gpuFormat(2, texture.SZ_A8R8G8B8, 5, 4, 0), 31)
		if !errors.Is(err, diag.InvalidFormat) {
			t.Errorf("expected InvalidFormat, got %v", err)
		}
	})

	t.Run("WidthNeitherSet", func(t *testing.T) {
		_, _, _, err := Dimensions(gpuFormat(2, texture.SZ_A8R8G8B8, 0, 4, 0), 0)
		if !errors.Is(err, diag.InvalidFormat) {
			t.Errorf("expected InvalidFormat, got %v", err)
		}
	})

	t.Run("Alternate", func(t *testing.T) {
		alt := uint32(639) | uint32(479)<<12
		w, h, _, err := Dimensions(gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 0, 0, 0), alt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != 640 || h != 480 {
			t.Errorf("got %dx%d, want 640x480", w, h)
		}
	})

	t.Run("Depth", func(t *testing.T) {
		_, _, d, err := Dimensions(gpuFormat(3, texture.SZ_A8R8G8B8, 2, 2, 3), 0)
		if err != nil || d != 8 {
			t.Errorf("got depth %d, %v; want 8", d, err)
		}

		// depth encodings are ignored unless the texture is 3D
		_, _, d, err = Dimensions(gpuFormat(2, texture.SZ_A8R8G8B8, 2, 2, 3), 0x05000000)
		if err != nil || d != 1 {
			t.Errorf("2D: got depth %d, %v; want 1", d, err)
		}
	})

	t.Run("OneDimensional", func(t *testing.T) {
		w, h, d, err := Dimensions(gpuFormat(1, texture.LU_IMAGE_A8R8G8B8, 5, 0, 0), 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if w != 32 || h != 1 || d != 1 {
			t.Errorf("got %dx%dx%d, want 32x1x1", w, h, d)
		}

		data := buildPackage(1024, 2048, [][]byte{
			texDescriptor(0, gpuFormat(1, texture.LU_IMAGE_A8R8G8B8, 5, 0, 0), 0),
		}, true, nil)
		p, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if res := p.Resources[0]; res.Err != nil || res.Width != 32 || res.Height != 1 {
			t.Errorf("1D resource: %s, err %v", res, res.Err)
		}
	})
}

func TestDecode(t *testing.T) {
	pixels := []byte{
		0x01, 0x02, 0x03, 0xFF, 0x11, 0x12, 0x13, 0xFF,
		0x21, 0x22, 0x23, 0xFF, 0x31, 0x32, 0x33, 0x80,
	}
	data := buildPackage(1024, 2048, [][]byte{
		texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 1, 1, 0), 0),
	}, true, pixels)

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", p.Diagnostics)
	}
	if len(p.Resources) != 1 {
		t.Fatalf("expected 1 resource, got %d", len(p.Resources))
	}

	res := p.Resources[0]
	if res.Index != 0 || res.EntryInfoOffset() != 0 {
		t.Errorf("index %d, entry offset %d", res.Index, res.EntryInfoOffset())
	}
	if res.Type() != Texture || res.Format() != texture.LU_IMAGE_A8R8G8B8 || res.MipLevels() != 1 {
		t.Errorf("got %s", res)
	}
	if res.Lock != 0xDEADBEEF {
		t.Errorf("lock not preserved: 0x%X", res.Lock)
	}
	if res.DataPosition() != 1024 {
		t.Errorf("data position: got 0x%X, want 0x400", res.DataPosition())
	}
	if res.Err != nil {
		t.Fatalf("resource error: %v", res.Err)
	}

	img := res.Image()
	if img == nil {
		t.Fatal("no image decoded")
	}
	if got := img.ARGB(1, 1); got != 0x80333231 {
		t.Errorf("pixel (1,1): got 0x%08X", got)
	}
}

func TestResourceTableEnd(t *testing.T) {
	tex := texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 1, 1, 0), 0)

	t.Run("Sentinel", func(t *testing.T) {
		data := buildPackage(1024, 2048, [][]byte{tex, tex}, true, make([]byte, 16))
		// junk after the terminator must not be read
		binary.LittleEndian.PutUint32(data[HeaderStructSize+2*ResourceStructSize+4:], uint32(Texture)<<16)

		p, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(p.Resources) != 2 {
			t.Errorf("expected 2 resources, got %d", len(p.Resources))
		}
		if p.Resources[1].Index != 1 || p.Resources[1].EntryInfoOffset() != 20 {
			t.Errorf("second resource: index %d", p.Resources[1].Index)
		}
	})

	t.Run("HeaderEnd", func(t *testing.T) {
		data := buildPackage(HeaderStructSize+ResourceStructSize, 2048, [][]byte{tex}, false, make([]byte, 16))

		p, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(p.Resources) != 1 {
			t.Errorf("expected 1 resource, got %d", len(p.Resources))
		}
		// header size is not 1024-aligned
		if p.Diagnostics.Warnings() != 1 {
			t.Errorf("expected 1 warning, got %v", p.Diagnostics)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		data := buildPackage(1024, 2048, [][]byte{tex}, false, nil)
		data = data[:HeaderStructSize+ResourceStructSize+8]

		p, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(p.Resources) != 1 || p.Diagnostics.Warnings() == 0 {
			t.Errorf("got %d resources, diagnostics %v", len(p.Resources), p.Diagnostics)
		}
	})
}

func TestHeaderWarnings(t *testing.T) {
	data := buildPackage(2048, 1000, nil, true, nil)
	copy(data, "XPR1")

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("bad magic must not be fatal: %v", err)
	}
	// magic, header >= total, total unaligned
	if got := p.Diagnostics.Warnings(); got != 3 {
		t.Errorf("expected 3 warnings, got %d: %v", got, p.Diagnostics)
	}
	if p.Magic != "XPR1" {
		t.Errorf("magic: got %q", p.Magic)
	}
}

func TestShortHeader(t *testing.T) {
	_, err := Decode([]byte("XPR0\x00\x08"))
	if !errors.Is(err, diag.UnexpectedEOF) {
		t.Errorf("expected UnexpectedEOF, got %v", err)
	}
}

func TestVertexBufferSkip(t *testing.T) {
	vb := make([]byte, 20)
	binary.LittleEndian.PutUint32(vb[0:], uint32(VertexBuffer)<<16)
	binary.LittleEndian.PutUint32(vb[4:], 12) // inline size
	binary.LittleEndian.PutUint32(vb[8:], 1)  // inline type
	copy(vb[12:], "inlinedt")

	tex := texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 1, 1, 0), 0)
	data := buildPackage(1024, 2048, [][]byte{vb, tex}, true, make([]byte, 16))

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(p.Resources))
	}

	v := p.Resources[0]
	if v.Type() != VertexBuffer || v.VertexBufferSize != 12 || v.VertexBufferType != 1 {
		t.Errorf("vertex buffer: got %+v", v)
	}
	if v.Image() != nil {
		t.Error("vertex buffer should have no image")
	}

	tr := p.Resources[1]
	if tr.Position != 32 || tr.Index != 1 || tr.Type() != Texture {
		t.Errorf("texture after vertex buffer: position %d index %d type %s", tr.Position, tr.Index, tr.Type())
	}
	if tr.Image() == nil {
		t.Error("texture after vertex buffer not decoded")
	}
}

func TestResourceFailureContained(t *testing.T) {
	bad := texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 1, 1, 0), 1)
	good := texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 1, 1, 0), 0)
	data := buildPackage(1024, 2048, [][]byte{bad, good}, true, make([]byte, 16))

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(p.Resources))
	}
	if !errors.Is(p.Resources[0].Err, diag.InvalidFormat) {
		t.Errorf("first resource: expected InvalidFormat, got %v", p.Resources[0].Err)
	}
	if p.Resources[1].Err != nil || p.Resources[1].Image() == nil {
		t.Errorf("second resource affected: %v", p.Resources[1].Err)
	}
}

func TestTextureOptions(t *testing.T) {
	tex := texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 1, 1, 0), 0)

	t.Run("Truncated", func(t *testing.T) {
		data := buildPackage(1024, 2048, [][]byte{tex}, true, make([]byte, 10))
		p, err := Decode(data)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		res := p.Resources[0]
		if res.Image() == nil || res.Diagnostics.Warnings() != 1 || len(res.Data) != 10 {
			t.Errorf("image %v, data %d bytes, diagnostics %v", res.Image() != nil, len(res.Data), res.Diagnostics)
		}
	})

	t.Run("DecodingDisabled", func(t *testing.T) {
		data := buildPackage(1024, 2048, [][]byte{tex}, true, make([]byte, 16))
		p, err := Decode(data, WithTextureDecoding(false))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		res := p.Resources[0]
		if res.Image() != nil || len(res.Data) != 16 {
			t.Errorf("expected raw data only, got image=%v data=%d", res.Image() != nil, len(res.Data))
		}
	})
}

func TestUpdateTexture(t *testing.T) {
	data := buildPackage(1024, 2048, [][]byte{
		texDescriptor(0, gpuFormat(2, texture.SZ_A8R8G8B8, 2, 2, 0), 0),
		texDescriptor(64, gpuFormat(2, texture.L_DXT1_A1R5G5B5, 2, 2, 0), 0),
	}, true, make([]byte, 72))

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res := p.Resources[0]
	old := res.Image()

	replacement := texture.NewImage(4, 4)
	for i := range replacement.Pix {
		replacement.Pix[i] = byte(i)
	}

	payload, err := res.UpdateTexture(replacement)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Image() == old || !bytes.Equal(res.Image().Pix, replacement.Pix) {
		t.Error("image not replaced")
	}

	patched, err := p.Patch(data, res, payload)
	if err != nil {
		t.Fatalf("patch: %v", err)
	}
	if bytes.Equal(patched, data) {
		t.Error("patch did not change the buffer")
	}
	reloaded, err := Decode(patched)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !bytes.Equal(reloaded.Resources[0].Image().Pix, replacement.Pix) {
		t.Error("reloaded image differs from replacement")
	}

	t.Run("Unsupported", func(t *testing.T) {
		_, err := p.Resources[1].UpdateTexture(texture.NewImage(4, 4))
		if !errors.Is(err, diag.UnsupportedFormat) {
			t.Errorf("expected UnsupportedFormat, got %v", err)
		}
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		_, err := res.UpdateTexture(texture.NewImage(8, 4))
		if !errors.Is(err, diag.InvalidArgument) {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
	})

	t.Run("PatchOutOfRange", func(t *testing.T) {
		_, err := p.Patch(data[:1030], res, payload)
		if !errors.Is(err, diag.InvalidArgument) {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
	})
}

func TestUpdateConcurrentReaders(t *testing.T) {
	data := buildPackage(1024, 2048, [][]byte{
		texDescriptor(0, gpuFormat(2, texture.LU_IMAGE_A8R8G8B8, 2, 2, 0), 0),
	}, true, make([]byte, 64))

	p, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res := p.Resources[0]

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				img := res.Image()
				first := img.Pix[0]
				for _, b := range img.Pix {
					if b != first {
						t.Error("observed partially updated image")
						return
					}
				}
			}
		}()
	}

	for v := byte(1); v <= 50; v++ {
		img := texture.NewImage(4, 4)
		for i := range img.Pix {
			img.Pix[i] = v
		}
		if _, err := res.UpdateTexture(img); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	wg.Wait()
}
