package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goopsie/uixtool/pkg/export"
	"github.com/goopsie/uixtool/pkg/extract"
)

func newExtractCmd() *cobra.Command {
	var (
		outputDir string
		format    string
		rawDDS    bool
		noStrings bool
		workers   int
	)

	cmd := &cobra.Command{
		Use:   "extract <file|dir>...",
		Short: "Write the textures and string tables of one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			writer, err := export.Lookup(format)
			if err != nil {
				return err
			}
			inputs, err := extract.ScanFiles(args)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}

			results := extract.Extract(inputs, outputDir,
				extract.WithWriter(writer),
				extract.WithRawDDS(rawDDS),
				extract.WithStrings(!noStrings),
				extract.WithWorkers(workers),
				extract.WithLogger(logger),
			)

			out := cmd.OutOrStdout()
			files, warnings, failed := 0, 0, 0
			for _, res := range results {
				files += len(res.Written)
				warnings += res.Warnings
				if res.Err != nil {
					failed++
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", res.Input, res.Err)
				}
			}
			fmt.Fprintf(out, "Extraction complete: %d inputs, %d files written to %s, %d warnings\n", len(results), files, outputDir, warnings)
			if failed > 0 {
				return fmt.Errorf("%d of %d inputs failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory")
	cmd.Flags().StringVarP(&format, "format", "f", "png", fmt.Sprintf("Image format %v", export.Names()))
	cmd.Flags().BoolVar(&rawDDS, "raw-dds", false, "Keep DXT textures compressed in DDS files")
	cmd.Flags().BoolVar(&noStrings, "no-strings", false, "Skip string tables")
	cmd.Flags().IntVarP(&workers, "jobs", "j", 0, "Parallel inputs (0 uses every CPU)")
	return cmd
}
