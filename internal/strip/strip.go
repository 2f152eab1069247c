package strip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"sheaf/internal/csvio"
	"sheaf/internal/logging"
)

// Options configures a strip run.
type Options struct {
	Dir         string
	Prefix      string
	SampleBytes int
}

// FileResult reports how many columns were removed from one file.
type FileResult struct {
	Path    string
	Removed int
}

// Result summarizes a strip run across a directory.
type Result struct {
	Files   []FileResult
	Removed int
}

// Run removes every column whose header starts with opts.Prefix from each CSV
// file directly under opts.Dir. Files are rewritten through a temporary file
// in the same directory and renamed over the original, so readers never see a
// half-written file. Files without matching columns are left untouched.
func Run(ctx context.Context, opts Options, logger *slog.Logger) (Result, error) {
	log := logging.NewComponentLogger(logger, "strip")

	if opts.Prefix == "" {
		return Result{}, errors.New("placeholder prefix is empty")
	}

	files, err := csvio.ListFiles(opts.Dir)
	if err != nil {
		return Result{}, fmt.Errorf("list csv files: %w", err)
	}

	result := Result{Files: make([]FileResult, 0, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		removed, err := stripFile(path, opts.Prefix, opts.SampleBytes)
		if err != nil {
			return result, err
		}

		result.Files = append(result.Files, FileResult{Path: path, Removed: removed})
		result.Removed += removed
		if removed > 0 {
			log.Info("removed placeholder columns",
				logging.String("file", filepath.Base(path)),
				logging.Int("columns", removed),
			)
		} else {
			log.Debug("no placeholder columns", logging.String("file", filepath.Base(path)))
		}
	}

	log.Info("strip complete",
		logging.Int("files", len(result.Files)),
		logging.Int("columns_removed", result.Removed),
	)
	return result, nil
}

func stripFile(path, prefix string, sampleBytes int) (int, error) {
	src, err := csvio.Open(path, sampleBytes)
	if err != nil {
		return 0, err
	}
	defer func() { _ = src.Close() }()

	sourceHeader, err := src.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header of %s: %w", filepath.Base(path), err)
	}

	keep := make([]int, 0, len(sourceHeader))
	for i, name := range sourceHeader {
		if strings.HasPrefix(strings.TrimSpace(name), prefix) {
			continue
		}
		keep = append(keep, i)
	}
	removed := len(sourceHeader) - len(keep)
	if removed == 0 {
		return 0, nil
	}

	if err := rewrite(src, path, sourceHeader, keep); err != nil {
		return 0, err
	}
	return removed, nil
}

func rewrite(src *csvio.Source, path string, sourceHeader []string, keep []int) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	writer := csvio.NewWriter(tmp, src.Dialect)
	if err := writer.Write(project(sourceHeader, keep)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for {
		row, err := src.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", filepath.Base(path), err)
		}
		if err := writer.Write(project(row, keep)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	committed = true
	return nil
}

// project selects the cells at the kept positions, padding short rows with
// empty strings.
func project(row []string, keep []int) []string {
	out := make([]string, len(keep))
	for i, idx := range keep {
		if idx < len(row) {
			out[i] = row[idx]
		}
	}
	return out
}
