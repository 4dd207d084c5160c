package texture

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/swizzle"
)

func TestExpand(t *testing.T) {
	tests := []struct {
		v        uint32
		bits     uint
		expected uint8
	}{
		{0, 5, 0},
		{1, 5, 8},
		{16, 5, 132},
		{31, 5, 255},
		{0, 6, 0},
		{1, 6, 4},
		{32, 6, 130},
		{63, 6, 255},
		{1, 4, 17},
		{8, 4, 136},
		{15, 4, 255},
		{0, 1, 0},
		{1, 1, 255},
	}

	for _, tt := range tests {
		if got := Expand(tt.v, tt.bits); got != tt.expected {
			t.Errorf("Expand(%d, %d): expected %d, got %d", tt.v, tt.bits, tt.expected, got)
		}
	}
}

func TestPackedPixels(t *testing.T) {
	tests := []struct {
		name     string
		format   Format
		pixel    uint16
		expected uint32
	}{
		{"565Red", LU_IMAGE_R5G6B5, 0xF800, 0xFFFF0000},
		{"565Green", LU_IMAGE_R5G6B5, 0x07E0, 0xFF00FF00},
		{"565Blue", SZ_R5G6B5, 0x001F, 0xFF0000FF},
		{"1555Clear", SZ_A1R5G5B5, 0x7C00, 0x00FF0000},
		{"1555Set", SZ_A1R5G5B5, 0x801F, 0xFF0000FF},
		{"X1555", SZ_X1R5G5B5, 0x7C00, 0xFFFF0000},
		{"4444", SZ_A4R4G4B4, 0x8F41, 0x88FF4411},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := make([]byte, 2)
			binary.LittleEndian.PutUint16(raw, tt.pixel)

			img, diags, err := Decode(tt.format, 1, 1, raw)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", diags)
			}
			if got := img.ARGB(0, 0); got != tt.expected {
				t.Errorf("got 0x%08X, want 0x%08X", got, tt.expected)
			}
		})
	}
}

func TestLuminance(t *testing.T) {
	img, _, err := Decode(SZ_Y8, 2, 1, []byte{0x10, 0x80})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.ARGB(0, 0); got != 0xFF101010 {
		t.Errorf("pixel 0: got 0x%08X", got)
	}
	if got := img.ARGB(1, 0); got != 0xFF808080 {
		t.Errorf("pixel 1: got 0x%08X", got)
	}
}

func TestSwizzled32(t *testing.T) {
	const w, h = 8, 4
	linear := make([]byte, w*h*4)
	for i := 0; i < w*h; i++ {
		binary.LittleEndian.PutUint32(linear[i*4:], 0x80000000|uint32(i))
	}
	raw := make([]byte, len(linear))
	swizzle.SwizzleRect(linear, raw, w, h, w*4, 4)

	img, _, err := Decode(SZ_A8R8G8B8, w, h, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(img.Pix, linear) {
		t.Error("SZ_A8R8G8B8 did not de-swizzle to linear order")
	}

	img, _, err = Decode(SZ_X8R8G8B8, w, h, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.ARGB(3, 2); got != 0xFF000000|uint32(2*w+3) {
		t.Errorf("SZ_X8R8G8B8 (3,2): got 0x%08X", got)
	}
	if !img.Opaque {
		t.Error("SZ_X8R8G8B8 image should be marked opaque")
	}
}

func TestChannelOrder(t *testing.T) {
	raw := []byte{1, 2, 3, 4}

	tests := []struct {
		format   Format
		expected []byte
	}{
		{LU_IMAGE_A8R8G8B8, []byte{1, 2, 3, 4}},
		{LU_IMAGE_X8R8G8B8, []byte{1, 2, 3, 0xFF}},
		{LU_IMAGE_A8B8G8R8, []byte{3, 2, 1, 4}},
		{SZ_A8B8G8R8, []byte{3, 2, 1, 4}},
		{SZ_R8G8B8A8, []byte{4, 1, 2, 3}},
	}

	for _, tt := range tests {
		img, _, err := Decode(tt.format, 1, 1, raw)
		if err != nil {
			t.Fatalf("%s: %v", tt.format, err)
		}
		if !bytes.Equal(img.Pix, tt.expected) {
			t.Errorf("%s: got %v, want %v", tt.format, img.Pix, tt.expected)
		}
	}
}

// dxt1 builds an 8-byte DXT1 block.
func dxt1(c0, c1 uint16, indices uint32) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint16(b[0:], c0)
	binary.LittleEndian.PutUint16(b[2:], c1)
	binary.LittleEndian.PutUint32(b[4:], indices)
	return b
}

// every row selects slots 0,1,2,3
const rampIndices = 0xE4E4E4E4

func TestDXT1(t *testing.T) {
	tests := []struct {
		name     string
		block    []byte
		expected [4]uint32
	}{
		{
			name:     "EqualEndpoints",
			block:    dxt1(0xF800, 0xF800, rampIndices),
			expected: [4]uint32{0xFFFF0000, 0xFFFF0000, 0xFFFF0000, 0xFFFF0000},
		},
		{
			name:     "FourColor",
			block:    dxt1(0xF800, 0x001F, rampIndices),
			expected: [4]uint32{0xFFFF0000, 0xFF0000FF, 0xFFAA0055, 0xFF5500AA},
		},
		{
			name:     "ThreeColor",
			block:    dxt1(0x001F, 0xF800, rampIndices),
			expected: [4]uint32{0xFF0000FF, 0xFFFF0000, 0xFF7F007F, 0x00000000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, diags, err := Decode(L_DXT1_A1R5G5B5, 4, 4, tt.block)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(diags) != 0 {
				t.Errorf("unexpected diagnostics: %v", diags)
			}
			for y := 0; y < 4; y++ {
				for x := 0; x < 4; x++ {
					if got := img.ARGB(x, y); got != tt.expected[x] {
						t.Errorf("(%d,%d): got 0x%08X, want 0x%08X", x, y, got, tt.expected[x])
					}
				}
			}
		})
	}
}

func TestDXT1BlockPlacement(t *testing.T) {
	raw := append(dxt1(0xF800, 0xF800, 0), dxt1(0x001F, 0x001F, 0)...)

	img, _, err := Decode(L_DXT1_A1R5G5B5, 8, 4, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.ARGB(3, 3); got != 0xFFFF0000 {
		t.Errorf("first block: got 0x%08X", got)
	}
	if got := img.ARGB(4, 0); got != 0xFF0000FF {
		t.Errorf("second block: got 0x%08X", got)
	}
}

func TestDXT3(t *testing.T) {
	block := make([]byte, 16)
	block[0] = 0x0F // texel 0 = 0xF, texel 1 = 0x0
	block[1] = 0x84 // texel 2 = 0x4, texel 3 = 0x8
	copy(block[8:], dxt1(0xFFFF, 0xFFFF, 0))

	img, _, err := Decode(L_DXT23_A8R8G8B8, 4, 4, block)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	expected := []uint32{0xFFFFFFFF, 0x00FFFFFF, 0x44FFFFFF, 0x88FFFFFF}
	for x, want := range expected {
		if got := img.ARGB(x, 0); got != want {
			t.Errorf("texel %d: got 0x%08X, want 0x%08X", x, got, want)
		}
	}
}

func TestAlphaRamp(t *testing.T) {
	tests := []struct {
		name     string
		a0, a1   uint8
		expected [8]uint8
	}{
		{"EightLevel", 200, 100, [8]uint8{200, 100, 185, 171, 157, 142, 128, 114}},
		{"SixLevel", 100, 200, [8]uint8{100, 200, 120, 140, 160, 180, 0, 255}},
		{"Equal", 50, 50, [8]uint8{50, 50, 50, 50, 50, 50, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := alphaRamp(tt.a0, tt.a1); got != tt.expected {
				t.Errorf("got %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDXT5(t *testing.T) {
	block := make([]byte, 16)
	block[0], block[1] = 100, 200
	// texels 0..3 select alpha slots 0, 1, 6, 7
	block[2], block[3] = 0x88, 0x0F
	copy(block[8:], dxt1(0, 0, 0))

	img, _, err := Decode(L_DXT45_A8R8G8B8, 4, 4, block)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	expected := []uint32{0x64000000, 0xC8000000, 0x00000000, 0xFF000000}
	for x, want := range expected {
		if got := img.ARGB(x, 0); got != want {
			t.Errorf("texel %d: got 0x%08X, want 0x%08X", x, got, want)
		}
	}
	if got := img.ARGB(0, 3); got != 0x64000000 {
		t.Errorf("texel (0,3): got 0x%08X", got)
	}
}

func TestDecodeTruncated(t *testing.T) {
	raw := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	img, diags, err := Decode(LU_IMAGE_A8R8G8B8, 2, 2, raw)
	if err != nil {
		t.Fatalf("truncated payload should not fail: %v", err)
	}
	if diag.List(diags).Warnings() != 1 {
		t.Fatalf("expected one warning, got %v", diags)
	}
	if !bytes.Equal(img.Pix[:8], raw) {
		t.Errorf("prefix not decoded: %v", img.Pix[:8])
	}
	if img.ARGB(1, 1) != 0 {
		t.Errorf("missing pixel should be zero, got 0x%08X", img.ARGB(1, 1))
	}

	// a partial DXT payload decodes whole blocks only
	img, diags, err = Decode(L_DXT1_A1R5G5B5, 8, 4, dxt1(0xF800, 0xF800, 0)[:8])
	if err != nil || len(diags) != 1 {
		t.Fatalf("dxt truncation: err=%v diags=%v", err, diags)
	}
	if img.ARGB(0, 0) != 0xFFFF0000 || img.ARGB(4, 0) != 0 {
		t.Errorf("dxt truncation: got 0x%08X 0x%08X", img.ARGB(0, 0), img.ARGB(4, 0))
	}
}

func TestDecodeUnsupported(t *testing.T) {
	t.Run("BlankFormat", func(t *testing.T) {
		img, diags, err := Decode(SZ_I8_A8R8G8B8, 4, 4, make([]byte, 16))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(diags) != 1 || img == nil {
			t.Fatalf("expected blank image and one warning, got %v", diags)
		}
		if Decodable(SZ_I8_A8R8G8B8) || Decodable(LU_IMAGE_DEPTH_Y16_FIXED) {
			t.Error("blank formats reported decodable")
		}
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, _, err := Decode(0x55, 4, 4, make([]byte, 64))
		if !errors.Is(err, diag.UnsupportedFormat) {
			t.Errorf("expected UnsupportedFormat, got %v", err)
		}
	})

	t.Run("ZeroSize", func(t *testing.T) {
		_, _, err := Decode(SZ_A8R8G8B8, 0, 4, nil)
		if !errors.Is(err, diag.InvalidArgument) {
			t.Errorf("expected InvalidArgument, got %v", err)
		}
	})
}

func BenchmarkDecode(b *testing.B) {
	const size = 256
	formats := []Format{SZ_A8R8G8B8, LU_IMAGE_A8R8G8B8, SZ_R5G6B5, L_DXT1_A1R5G5B5, L_DXT45_A8R8G8B8}

	for _, f := range formats {
		n, _ := DataSize(f, size, size)
		raw := make([]byte, n)
		for i := range raw {
			raw[i] = byte(i * 7)
		}
		b.Run(FormatName(f), func(b *testing.B) {
			b.SetBytes(int64(n))
			for i := 0; i < b.N; i++ {
				if _, _, err := Decode(f, size, size, raw); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
