package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions lists the file suffixes ScanFiles picks up inside directories.
var Extensions = []string{".uix", ".xpr", ".xbx"}

// ScanFiles expands inputs into a sorted list of files. Plain file arguments
// are kept as given; directories are walked for files with a known extension.
func ScanFiles(inputs []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("stat input: %w", err)
		}
		if !info.IsDir() {
			add(input)
			continue
		}

		var found []string
		err = filepath.Walk(input, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() || !hasKnownExtension(path) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", input, err)
		}
		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}
	return files, nil
}

func hasKnownExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".zst" {
		ext = strings.ToLower(filepath.Ext(strings.TrimSuffix(path, filepath.Ext(path))))
	}
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
