package merge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"

	"sheaf/internal/csvio"
	"sheaf/internal/dedup"
	"sheaf/internal/dialect"
	"sheaf/internal/header"
	"sheaf/internal/logging"
)

var (
	// ErrNoInputFiles reports an input directory containing no CSV files.
	ErrNoInputFiles = errors.New("no csv files found")

	// ErrEmptyInput reports that every discovered CSV file lacked a header row.
	ErrEmptyInput = errors.New("all csv files are empty")
)

// Options configures a merge run.
type Options struct {
	InputDir    string
	OutputPath  string
	KeyColumns  []string
	SampleBytes int
}

// Stats accumulates counters across one merge run. Every run satisfies
// RowsIn == RowsOut + DuplicatesSkipped.
type Stats struct {
	Files             int
	RowsIn            int
	DuplicatesSkipped int
	RowsOut           int
	Mode              dedup.Mode
}

// Run merges every CSV file directly under opts.InputDir into a single
// comma-delimited file at opts.OutputPath, dropping duplicate rows. Fatal
// input conditions are detected before the output file is created, so a
// failed run never leaves a truncated output behind.
func Run(ctx context.Context, opts Options, logger *slog.Logger) (Stats, error) {
	log := logging.NewComponentLogger(logger, "merge")

	files, err := csvio.ListFiles(opts.InputDir)
	if err != nil {
		return Stats{}, fmt.Errorf("list input files: %w", err)
	}
	if len(files) == 0 {
		return Stats{}, fmt.Errorf("%w in %s", ErrNoInputFiles, opts.InputDir)
	}

	canonical, err := canonicalHeader(files, opts.SampleBytes)
	if err != nil {
		return Stats{}, err
	}
	if canonical == nil {
		return Stats{}, fmt.Errorf("%w in %s", ErrEmptyInput, opts.InputDir)
	}

	engine := dedup.NewEngine(canonical, opts.KeyColumns)
	log.Info("canonical header adopted",
		logging.Int("columns", len(canonical)),
		logging.String("dedup_mode", engine.Mode().String()),
	)
	if engine.Mode() == dedup.ModeContentHash && len(opts.KeyColumns) > 0 {
		log.Warn("key columns missing from canonical header, comparing whole rows",
			logging.String("key_columns", strings.Join(opts.KeyColumns, ",")),
		)
	}

	if dir := filepath.Dir(opts.OutputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Stats{}, fmt.Errorf("create output directory: %w", err)
		}
	}

	lock := flock.New(opts.OutputPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return Stats{}, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return Stats{}, fmt.Errorf("another merge is already writing %s", opts.OutputPath)
	}
	defer func() { _ = lock.Unlock() }()

	out, err := os.Create(opts.OutputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	// Output is always comma-delimited regardless of input dialects.
	writer := csvio.NewWriter(out, dialect.Default())
	if err := writer.Write(canonical); err != nil {
		return Stats{}, fmt.Errorf("write header: %w", err)
	}

	stats := Stats{Mode: engine.Mode()}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if err := mergeFile(path, canonical, engine, writer, &stats, opts.SampleBytes, log); err != nil {
			return stats, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}
	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("close output: %w", err)
	}

	log.Info("merge complete",
		logging.Int("files", stats.Files),
		logging.Int("rows_in", stats.RowsIn),
		logging.Int("duplicates_skipped", stats.DuplicatesSkipped),
		logging.Int("rows_out", stats.RowsOut),
		logging.String("output", opts.OutputPath),
	)
	return stats, nil
}

// canonicalHeader returns the header of the first file that has one, in
// discovery order. A nil header with a nil error means every file was empty.
func canonicalHeader(files []string, sampleBytes int) ([]string, error) {
	for _, path := range files {
		src, err := csvio.Open(path, sampleBytes)
		if err != nil {
			return nil, err
		}
		row, err := src.Read()
		_ = src.Close()
		if errors.Is(err, io.EOF) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read header of %s: %w", filepath.Base(path), err)
		}
		return row, nil
	}
	return nil, nil
}

func mergeFile(path string, canonical []string, engine *dedup.Engine, writer *csv.Writer, stats *Stats, sampleBytes int, log *slog.Logger) error {
	src, err := csvio.Open(path, sampleBytes)
	if err != nil {
		return err
	}
	defer func() { _ = src.Close() }()

	name := filepath.Base(path)
	sourceHeader, err := src.Read()
	if errors.Is(err, io.EOF) {
		log.Debug("skipping file without header row", logging.String("file", name))
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header of %s: %w", name, err)
	}
	if !src.Sniffed {
		log.Debug("dialect detection fell back to comma", logging.String("file", name))
	}

	mapping := header.BuildMapping(sourceHeader, canonical)

	fileRows := 0
	fileDuplicates := 0
	for {
		row, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		fileRows++
		stats.RowsIn++

		mapped := header.MapRow(row, mapping)
		if engine.Seen(mapped) {
			fileDuplicates++
			stats.DuplicatesSkipped++
			continue
		}
		if err := writer.Write(mapped); err != nil {
			return fmt.Errorf("write row from %s: %w", name, err)
		}
		stats.RowsOut++
	}

	stats.Files++
	log.Info("merged file",
		logging.String("file", name),
		logging.String("delimiter", string(src.Dialect.Comma)),
		logging.Int("rows", fileRows),
		logging.Int("duplicates", fileDuplicates),
	)
	return nil
}
