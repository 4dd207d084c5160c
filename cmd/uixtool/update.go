package main

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/goopsie/uixtool/pkg/archive"
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/texture"
	"github.com/goopsie/uixtool/pkg/uix"
	"github.com/goopsie/uixtool/pkg/xpr"
)

func newUpdateCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "update <file> <[item/]resource> <png>",
		Short: "Replace a texture with the pixels of a PNG image",
		Long: `Replace a texture with the pixels of a PNG image.

The target is "item/resource" for UIX containers and "resource" for XPR
packages, using the indices printed by "info". Only uncompressed 32-bit
formats can be re-encoded.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args[0], args[1], args[2], outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (required)")
	if err := cmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
	return cmd
}

func runUpdate(inputPath, target, imagePath, outputPath string) error {
	raw, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	framed := archive.IsArchive(raw)
	data := raw
	if framed {
		if data, err = archive.Decode(raw); err != nil {
			return fmt.Errorf("decode archive: %w", err)
		}
	}

	res, err := findResource(data, target)
	if err != nil {
		return err
	}

	img, err := readPNG(imagePath)
	if err != nil {
		return err
	}
	payload, err := res.UpdateTexture(img)
	if err != nil {
		return err
	}
	patched, err := res.Package().Patch(data, res, payload)
	if err != nil {
		return err
	}

	if framed {
		if patched, err = archive.Compress(patched); err != nil {
			return err
		}
	}
	if err := os.WriteFile(outputPath, patched, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("updated texture", "resource", res.Name(), "format", res.Format(), "bytes", len(payload), "output", outputPath)
	return nil
}

// findResource decodes data and resolves an "item/resource" or "resource" target.
func findResource(data []byte, target string) (*xpr.Resource, error) {
	itemPart, resPart, nested := strings.Cut(target, "/")
	if !nested {
		resPart = itemPart
	}
	resIndex, err := strconv.Atoi(resPart)
	if err != nil {
		return nil, diag.Errorf(diag.InvalidArgument, "parse target", "bad resource index %q", resPart)
	}

	var pkg *xpr.Package
	switch {
	case bytes.HasPrefix(data, []byte(uix.Magic)):
		if !nested {
			return nil, diag.Errorf(diag.InvalidArgument, "parse target", "UIX containers need an item/resource target")
		}
		itemIndex, err := strconv.Atoi(itemPart)
		if err != nil {
			return nil, diag.Errorf(diag.InvalidArgument, "parse target", "bad item index %q", itemPart)
		}
		c, err := uix.Decode(data, uix.WithLogger(logger), uix.WithTextureDecoding(false))
		if err != nil {
			return nil, fmt.Errorf("decode container: %w", err)
		}
		if itemIndex < 0 || itemIndex >= len(c.Items) || c.Items[itemIndex].Package == nil {
			return nil, diag.Errorf(diag.InvalidArgument, "find resource", "item %d has no package", itemIndex)
		}
		pkg = c.Items[itemIndex].Package
	case bytes.HasPrefix(data, []byte(xpr.Magic)):
		if nested {
			return nil, diag.Errorf(diag.InvalidArgument, "parse target", "XPR packages take a plain resource index")
		}
		p, err := xpr.Decode(data, xpr.WithLogger(logger), xpr.WithTextureDecoding(false))
		if err != nil {
			return nil, fmt.Errorf("decode package: %w", err)
		}
		pkg = p
	default:
		return nil, diag.Errorf(diag.InvalidMagic, "detect input", "neither a UIX container nor an XPR package")
	}

	res, ok := pkg.ResourceByIndex(resIndex)
	if !ok {
		return nil, diag.Errorf(diag.InvalidArgument, "find resource", "no resource with index %d", resIndex)
	}
	return res, nil
}

func readPNG(path string) (*texture.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return texture.FromImage(src), nil
}
