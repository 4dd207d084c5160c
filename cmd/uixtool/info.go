package main

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/goopsie/uixtool/pkg/binio"
	"github.com/goopsie/uixtool/pkg/diag"
	"github.com/goopsie/uixtool/pkg/uix"
	"github.com/goopsie/uixtool/pkg/xpr"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Show the structure of a UIX container or XPR package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showInfo(cmd.OutOrStdout(), args[0])
		},
	}
}

func newStringsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strings <file>",
		Short: "Print the string tables of a UIX container",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showStrings(cmd.OutOrStdout(), args[0])
		},
	}
}

// loadDecoded returns either a container or a package, whichever the file holds.
func loadDecoded(path string) (*uix.Container, *xpr.Package, error) {
	data, err := binio.Load(path)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case bytes.HasPrefix(data, []byte(uix.Magic)):
		c, err := uix.Decode(data, uix.WithLogger(logger), uix.WithTextureDecoding(false))
		if err != nil {
			return nil, nil, fmt.Errorf("decode container: %w", err)
		}
		return c, nil, nil
	case bytes.HasPrefix(data, []byte(xpr.Magic)):
		p, err := xpr.Decode(data, xpr.WithLogger(logger), xpr.WithTextureDecoding(false))
		if err != nil {
			return nil, nil, fmt.Errorf("decode package: %w", err)
		}
		return nil, p, nil
	default:
		return nil, nil, diag.Errorf(diag.InvalidMagic, "detect input", "%s is neither a UIX container nor an XPR package", path)
	}
}

func showInfo(w io.Writer, path string) error {
	c, p, err := loadDecoded(path)
	if err != nil {
		return err
	}

	if p != nil {
		printPackage(w, "", p)
		fmt.Fprintf(w, "\n%d warnings\n", p.Warnings())
		return nil
	}

	fmt.Fprintf(w, "%s\n", c)
	for i, it := range c.Items {
		fmt.Fprintf(w, "  [%d] %s\n", i, it)
		if it.Err != nil {
			fmt.Fprintf(w, "      error: %v\n", it.Err)
			continue
		}
		for _, m := range it.Metas {
			fmt.Fprintf(w, "      meta %3d: %v\n", m.ID, m.Value)
		}
		if it.Package != nil {
			printPackage(w, "      ", it.Package)
		}
	}
	fmt.Fprintf(w, "\n%d warnings\n", c.Warnings())
	return nil
}

func printPackage(w io.Writer, indent string, p *xpr.Package) {
	fmt.Fprintf(w, "%s%s\n", indent, p)
	for _, r := range p.Resources {
		fmt.Fprintf(w, "%s  %s\n", indent, r)
		if r.Err != nil {
			fmt.Fprintf(w, "%s    error: %v\n", indent, r.Err)
		}
	}
}

func showStrings(w io.Writer, path string) error {
	c, _, err := loadDecoded(path)
	if err != nil {
		return err
	}
	if c == nil {
		return diag.Errorf(diag.InvalidArgument, "show strings", "%s is an XPR package without strings", path)
	}

	for i, it := range c.Items {
		table := it.Strings()
		if len(table) == 0 {
			continue
		}
		fmt.Fprintf(w, "[%d] %s\n", i, it.Name())

		ids := make([]int, 0, len(table))
		for id := range table {
			ids = append(ids, int(id))
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(w, "  %3d  %q\n", id, table[uint8(id)])
		}
	}
	return nil
}
