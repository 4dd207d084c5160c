package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goopsie/uixtool/pkg/archive"
	"github.com/goopsie/uixtool/pkg/diag"
)

func newPackCmd() *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "pack <input> <output>",
		Short: "Wrap a file in a zstd archive frame",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			if archive.IsArchive(data) {
				return diag.Errorf(diag.InvalidArgument, "pack", "%s is already an archive", args[0])
			}

			framed, err := archive.Compress(data, archive.WithCompressionLevel(level))
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], framed, 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			logger.Info("packed", "input", args[0], "size", len(data), "compressed", len(framed))
			return nil
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", archive.DefaultCompressionLevel, "zstd compression level")
	return cmd
}

func newUnpackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unpack <input> <output>",
		Short: "Remove the zstd archive frame from a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			payload, err := archive.Decode(data)
			if err != nil {
				return fmt.Errorf("decode archive: %w", err)
			}
			if err := os.WriteFile(args[1], payload, 0644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			logger.Info("unpacked", "input", args[0], "size", len(payload))
			return nil
		},
	}
}
