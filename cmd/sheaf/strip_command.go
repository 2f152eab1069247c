package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"sheaf/internal/strip"
)

func newStripCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "strip <directory>",
		Short: "Remove placeholder columns from CSV files in place",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			dir, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve directory: %w", err)
			}

			info, err := os.Stat(dir)
			if err != nil {
				return fmt.Errorf("target directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("target path %s is not a directory", dir)
			}

			result, err := strip.Run(cmd.Context(), strip.Options{
				Dir:         dir,
				Prefix:      cfg.Strip.PlaceholderPrefix,
				SampleBytes: cfg.Dialect.SampleBytes,
			}, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(result.Files) == 0 {
				fmt.Fprintf(out, "No CSV files found in %s\n", dir)
				return nil
			}

			rows := make([][]string, 0, len(result.Files))
			for _, fr := range result.Files {
				rows = append(rows, []string{filepath.Base(fr.Path), strconv.Itoa(fr.Removed)})
			}
			for _, line := range renderHeading("Placeholder column strip", shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderTable([]string{"File", "Columns removed"}, rows, 1))
			fmt.Fprintf(out, "Removed %d column(s) across %d file(s)\n", result.Removed, len(result.Files))
			return nil
		},
	}
}
