package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"sheaf/internal/config"
	"sheaf/internal/history"
	"sheaf/internal/logging"
	"sheaf/internal/merge"
)

func newMergeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <input_dir> <output_csv>",
		Short: "Merge a directory of CSV files into one deduplicated file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			inputDir, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve input directory: %w", err)
			}
			outputPath, err := filepath.Abs(args[1])
			if err != nil {
				return fmt.Errorf("resolve output path: %w", err)
			}

			info, err := os.Stat(inputDir)
			if err != nil {
				return fmt.Errorf("input directory: %w", err)
			}
			if !info.IsDir() {
				return fmt.Errorf("input path %s is not a directory", inputDir)
			}

			started := time.Now().UTC()
			stats, err := merge.Run(cmd.Context(), merge.Options{
				InputDir:    inputDir,
				OutputPath:  outputPath,
				KeyColumns:  cfg.Merge.KeyColumns,
				SampleBytes: cfg.Dialect.SampleBytes,
			}, logger)
			if err != nil {
				return err
			}

			if cfg.History.Enabled {
				recordMergeRun(cmd.Context(), cfg, logger, started, inputDir, outputPath, stats)
			}

			out := cmd.OutOrStdout()
			for _, line := range renderHeading("Merge complete", shouldColorize(out)) {
				fmt.Fprintln(out, line)
			}
			summary := [][]string{{
				strconv.Itoa(stats.Files),
				strconv.Itoa(stats.RowsIn),
				strconv.Itoa(stats.DuplicatesSkipped),
				strconv.Itoa(stats.RowsOut),
				stats.Mode.String(),
			}}
			fmt.Fprintln(out, renderTable(
				[]string{"Files", "Rows in", "Duplicates", "Rows out", "Mode"},
				summary,
				0, 1, 2, 3,
			))
			fmt.Fprintf(out, "Output written to %s\n", outputPath)
			return nil
		},
	}
}

// recordMergeRun appends the run to the history database. History is
// advisory, so failures degrade to log warnings instead of failing a merge
// that already wrote its output.
func recordMergeRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, started time.Time, inputDir, outputPath string, stats merge.Stats) {
	log := logging.NewComponentLogger(logger, "history")

	store, err := history.Open(cfg)
	if err != nil {
		log.Warn("history unavailable, run not recorded", logging.Error(err))
		return
	}
	defer func() { _ = store.Close() }()

	rec := history.Record{
		StartedAt:         started,
		FinishedAt:        time.Now().UTC(),
		InputDir:          inputDir,
		OutputPath:        outputPath,
		Mode:              stats.Mode.String(),
		Files:             int64(stats.Files),
		RowsIn:            int64(stats.RowsIn),
		DuplicatesSkipped: int64(stats.DuplicatesSkipped),
		RowsOut:           int64(stats.RowsOut),
	}
	if err := store.RecordMerge(ctx, &rec); err != nil {
		log.Warn("failed to record merge run", logging.Error(err))
	}
}
