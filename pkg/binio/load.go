package binio

import (
	"fmt"
	"os"

	"github.com/goopsie/uixtool/pkg/archive"
)

// Load reads a whole file into memory, unwrapping zstd framing when present.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	if archive.IsArchive(data) {
		data, err = archive.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("unwrap %s: %w", path, err)
		}
	}
	return data, nil
}
