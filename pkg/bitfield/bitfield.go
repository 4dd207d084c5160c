// Package bitfield extracts inclusive bit ranges from fixed-width words.
package bitfield

import "github.com/goopsie/uixtool/pkg/diag"

// Extract32 returns bits [low, high] of value shifted down to bit 0.
func Extract32(value uint32, low, high int) (uint32, error) {
	if err := check(low, high, 32); err != nil {
		return 0, err
	}
	mask := (^uint32(0) >> (31 - high)) & (^uint32(0) << low)
	return (value & mask) >> low, nil
}

// Extract16 returns bits [low, high] of a 16-bit value.
func Extract16(value uint16, low, high int) (uint16, error) {
	if err := check(low, high, 16); err != nil {
		return 0, err
	}
	mask := (^uint16(0) >> (15 - high)) & (^uint16(0) << low)
	return (value & mask) >> low, nil
}

// Extract8 returns bits [low, high] of an 8-bit value.
func Extract8(value uint8, low, high int) (uint8, error) {
	if err := check(low, high, 8); err != nil {
		return 0, err
	}
	mask := (^uint8(0) >> (7 - high)) & (^uint8(0) << low)
	return (value & mask) >> low, nil
}

// MustExtract32 is Extract32 for constant bounds; it panics on a contract violation.
func MustExtract32(value uint32, low, high int) uint32 {
	v, err := Extract32(value, low, high)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPowerOfTwo reports whether v is a non-zero power of two.
func IsPowerOfTwo(v uint32) bool {
	return v > 0 && v&(v-1) == 0
}

func check(low, high, width int) error {
	if low < 0 || low >= width {
		return diag.Errorf(diag.InvalidArgument, "extract bits", "low bit %d out of range [0,%d)", low, width)
	}
	if high < 0 || high >= width {
		return diag.Errorf(diag.InvalidArgument, "extract bits", "high bit %d out of range [0,%d)", high, width)
	}
	if high <= low {
		return diag.Errorf(diag.InvalidArgument, "extract bits", "high bit %d must be greater than low bit %d", high, low)
	}
	return nil
}
