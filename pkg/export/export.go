// Package export writes decoded textures into displayable image containers.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/texture"
)

// Writer encodes a decoded texture into one container format.
type Writer interface {
	// Name is the registry key, e.g. "png".
	Name() string
	// Extension is the file extension including the dot.
	Extension() string
	Write(w io.Writer, img *texture.Image) error
}

var registry = map[string]Writer{}

// Register adds a writer under its name, replacing any previous one.
func Register(w Writer) {
	registry[strings.ToLower(w.Name())] = w
}

func init() {
	Register(BMP{})
	Register(PNG{})
	Register(DDS{})
}

// Lookup returns the writer registered under name.
func Lookup(name string) (Writer, error) {
	w, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, diag.Errorf(diag.UnsupportedFormat, "lookup writer", "unknown output format %q (have %s)", name, strings.Join(Names(), ", "))
	}
	return w, nil
}

// Names lists the registered writers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WriteFile writes img to path, creating parent directories.
func WriteFile(path string, w Writer, img *texture.Image) error {
	if err := checkImage(img); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	if err := w.Write(f, img); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", w.Name(), err)
	}
	return f.Close()
}

func checkImage(img *texture.Image) error {
	if img == nil {
		return diag.Errorf(diag.InvalidArgument, "export image", "nil image")
	}
	if img.Width <= 0 || img.Height <= 0 || len(img.Pix) != img.Width*img.Height*4 {
		return diag.Errorf(diag.InvalidArgument, "export image", "malformed %dx%d image with %d bytes", img.Width, img.Height, len(img.Pix))
	}
	return nil
}
