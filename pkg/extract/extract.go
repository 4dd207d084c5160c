// Package extract writes the strings and textures of UIX containers and XPR
// packages to a directory tree.
package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/goopsie/uixtool/pkg/binio"
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/export"
	"github.com/goopsie/uixtool/pkg/uix"
	"github.com/goopsie/uixtool/pkg/xpr"
)

// ExtractOption configures extraction.
type ExtractOption func(*extractConfig)

type extractConfig struct {
	writer  export.Writer
	rawDDS  bool
	strings bool
	workers int
	logger  hclog.Logger
}

// WithWriter sets the image writer. The default writes PNG.
func WithWriter(w export.Writer) ExtractOption {
	return func(c *extractConfig) {
		c.writer = w
	}
}

// WithRawDDS keeps complete DXT payloads as DDS files instead of decoding them.
func WithRawDDS(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.rawDDS = enabled
	}
}

// WithStrings enables writing string tables as text files.
func WithStrings(enabled bool) ExtractOption {
	return func(c *extractConfig) {
		c.strings = enabled
	}
}

// WithWorkers sets how many inputs are processed at once. Values below one
// use the number of CPUs.
func WithWorkers(n int) ExtractOption {
	return func(c *extractConfig) {
		c.workers = n
	}
}

// WithLogger sets the logger. The default discards output.
func WithLogger(logger hclog.Logger) ExtractOption {
	return func(c *extractConfig) {
		c.logger = logger
	}
}

// Result reports what happened to one input file.
type Result struct {
	Input    string
	Written  []string
	Warnings int
	Err      error
}

// Extract processes every input with a bounded worker pool. Results are
// returned in input order; a failed input does not stop the others.
func Extract(inputs []string, outputDir string, opts ...ExtractOption) []Result {
	cfg := &extractConfig{
		writer:  export.PNG{},
		strings: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = hclog.NewNullLogger()
	}
	if cfg.workers < 1 {
		cfg.workers = runtime.NumCPU()
	}
	if cfg.workers > len(inputs) {
		cfg.workers = len(inputs)
	}

	dirs := outputDirs(inputs, outputDir)
	results := make([]Result, len(inputs))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < cfg.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = extractFile(inputs[i], dirs[i], cfg)
			}
		}()
	}
	for i := range inputs {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func extractFile(input, dir string, cfg *extractConfig) Result {
	res := Result{Input: input}
	logger := cfg.logger.With("file", input)

	data, err := binio.Load(input)
	if err != nil {
		res.Err = fmt.Errorf("load: %w", err)
		return res
	}

	w := &fileWriter{dir: dir, cfg: cfg, logger: logger}

	switch {
	case bytes.HasPrefix(data, []byte(uix.Magic)):
		c, err := uix.Decode(data, uix.WithLogger(logger))
		if err != nil {
			res.Err = fmt.Errorf("decode container: %w", err)
			return res
		}
		res.Warnings = c.Warnings()
		w.container(c)
	case bytes.HasPrefix(data, []byte(xpr.Magic)):
		p, err := xpr.Decode(data, xpr.WithLogger(logger))
		if err != nil {
			res.Err = fmt.Errorf("decode package: %w", err)
			return res
		}
		res.Warnings = p.Warnings()
		w.pkg(dir, p)
	default:
		res.Err = diag.Errorf(diag.InvalidMagic, "detect input", "%s is neither a UIX container nor an XPR package", input)
		return res
	}

	res.Written = w.written
	res.Err = w.err
	logger.Debug("extracted", "files", len(res.Written), "warnings", res.Warnings)
	return res
}

// fileWriter remembers the first write error but keeps going.
type fileWriter struct {
	dir     string
	cfg     *extractConfig
	logger  hclog.Logger
	written []string
	err     error
}

func (w *fileWriter) container(c *uix.Container) {
	for i, it := range c.Items {
		if it.Err != nil {
			w.logger.Warn("skipping item", "item", i, "error", it.Err)
			continue
		}
		itemDir := filepath.Join(w.dir, fmt.Sprintf("item%02d_%s", i, sanitize(it.Name())))

		if w.cfg.strings && (it.Type == uix.TypeStrings || it.Type == uix.TypeStringsAlt) {
			w.stringTable(itemDir+".txt", it.Strings())
		}
		if it.Package != nil {
			w.pkg(itemDir, it.Package)
		}
	}
}

func (w *fileWriter) pkg(dir string, p *xpr.Package) {
	for _, r := range p.Textures() {
		if r.Err != nil {
			w.logger.Warn("skipping resource", "resource", r.Index, "error", r.Err)
			continue
		}
		base := filepath.Join(dir, fmt.Sprintf("%03d_%s", r.Index, r.Format()))

		if w.cfg.rawDDS && r.Format().Compressed() {
			err := w.rawDDS(base+".dds", r)
			if err == nil {
				continue
			}
			w.logger.Debug("raw dds unavailable, writing decoded image", "resource", r.Index, "error", err)
		}

		img := r.Image()
		if img == nil {
			continue
		}
		path := base + w.cfg.writer.Extension()
		w.record(path, export.WriteFile(path, w.cfg.writer, img))
	}
}

func (w *fileWriter) rawDDS(path string, r *xpr.Resource) error {
	var buf bytes.Buffer
	if err := export.WriteRawDDS(&buf, r.Format(), int(r.Width), int(r.Height), r.Data); err != nil {
		return err
	}
	w.record(path, writeBytes(path, buf.Bytes()))
	return nil
}

func (w *fileWriter) stringTable(path string, table map[uint8]string) {
	ids := make([]int, 0, len(table))
	for id := range table {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)

	var sb strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&sb, "%d\t%s\n", id, strconv.Quote(table[uint8(id)]))
	}
	w.record(path, writeBytes(path, []byte(sb.String())))
}

func (w *fileWriter) record(path string, err error) {
	if err != nil {
		w.logger.Error("write failed", "path", path, "error", err)
		if w.err == nil {
			w.err = fmt.Errorf("write %s: %w", path, err)
		}
		return
	}
	w.written = append(w.written, path)
}

func writeBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// outputDirs assigns every input its own directory under outputDir, named
// after the file. Repeated names get a numeric suffix in input order.
func outputDirs(inputs []string, outputDir string) []string {
	dirs := make([]string, len(inputs))
	used := make(map[string]int)
	for i, input := range inputs {
		name := stem(input)
		key := strings.ToLower(name)
		used[key]++
		for n := used[key]; n > 1; n++ {
			candidate := fmt.Sprintf("%s_%d", name, n)
			if used[strings.ToLower(candidate)] == 0 {
				name = candidate
				used[strings.ToLower(candidate)]++
				break
			}
		}
		dirs[i] = filepath.Join(outputDir, name)
	}
	return dirs
}

// stem strips the directory, a ".zst" suffix and one known extension from path.
func stem(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); strings.EqualFold(ext, ".zst") {
		base = strings.TrimSuffix(base, ext)
	}
	ext := filepath.Ext(base)
	for _, known := range Extensions {
		if strings.EqualFold(ext, known) && len(base) > len(ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return base
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
