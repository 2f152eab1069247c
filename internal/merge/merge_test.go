package merge_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"sheaf/internal/dedup"
	"sheaf/internal/logging"
	"sheaf/internal/merge"
	"sheaf/internal/testsupport"
)

func runMerge(t *testing.T, opts merge.Options) merge.Stats {
	t.Helper()

	stats, err := merge.Run(context.Background(), opts, logging.NewNop())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.RowsIn != stats.RowsOut+stats.DuplicatesSkipped {
		t.Fatalf("stats invariant violated: %+v", stats)
	}
	return stats
}

func TestRunMergesAndDeduplicates(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "plays")
	outputPath := filepath.Join(base, "out", "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"), "id,val", "1,x", "2,y")
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"), "val,id", "y,2", "z,3")

	stats := runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"id"},
	})

	if stats.Mode != dedup.ModeSemanticKey {
		t.Fatalf("expected semantic-key mode, got %s", stats.Mode)
	}
	if stats.Files != 2 || stats.RowsIn != 4 || stats.DuplicatesSkipped != 1 || stats.RowsOut != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	got := testsupport.ReadFileString(t, outputPath)
	want := "id,val\n1,x\n2,y\n3,z\n"
	if got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunIsIdempotentOnOwnOutput(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "plays")
	firstOutput := filepath.Join(base, "merged", "all.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"), "id,val", "1,x", "2,y")
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"), "id,val", "3,z")

	runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: firstOutput,
		KeyColumns: []string{"id"},
	})

	secondOutput := filepath.Join(base, "again", "all.csv")
	stats := runMerge(t, merge.Options{
		InputDir:   filepath.Dir(firstOutput),
		OutputPath: secondOutput,
		KeyColumns: []string{"id"},
	})

	if stats.DuplicatesSkipped != 0 {
		t.Fatalf("expected no duplicates on re-merge, got %+v", stats)
	}
	first := testsupport.ReadFileString(t, firstOutput)
	second := testsupport.ReadFileString(t, secondOutput)
	if first != second {
		t.Fatalf("re-merge changed output:\n%q\nvs:\n%q", first, second)
	}
}

func TestRunPreservesRowOrder(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"), "id,val", "3,c", "4,d")
	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"), "id,val", "1,a", "2,b")

	runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"id"},
	})

	got := testsupport.ReadFileString(t, outputPath)
	want := "id,val\n1,a\n2,b\n3,c\n4,d\n"
	if got != want {
		t.Fatalf("rows out of order:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunFailsWithoutInputFiles(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "empty")
	if err := os.MkdirAll(inputDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	outputPath := filepath.Join(base, "merged.csv")

	_, err := merge.Run(context.Background(), merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
	}, logging.NewNop())
	if !errors.Is(err, merge.ErrNoInputFiles) {
		t.Fatalf("expected ErrNoInputFiles, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Fatalf("output file should not exist, stat err: %v", statErr)
	}
}

func TestRunFailsWhenEveryFileIsEmpty(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"))
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"))

	_, err := merge.Run(context.Background(), merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
	}, logging.NewNop())
	if !errors.Is(err, merge.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Fatalf("output file should not exist, stat err: %v", statErr)
	}
}

func TestRunMissingInputDir(t *testing.T) {
	base := t.TempDir()

	_, err := merge.Run(context.Background(), merge.Options{
		InputDir:   filepath.Join(base, "absent"),
		OutputPath: filepath.Join(base, "merged.csv"),
	}, logging.NewNop())
	if err == nil {
		t.Fatal("expected error for missing input directory")
	}
}

func TestRunSkipsHeaderlessFiles(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"))
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"), "id,val")
	testsupport.WriteCSV(t, filepath.Join(inputDir, "c.csv"), "id,val", "1,x")

	stats := runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"id"},
	})

	// The zero-byte file is skipped entirely; the header-only file counts as
	// processed but contributes no rows.
	if stats.Files != 2 || stats.RowsIn != 1 || stats.RowsOut != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	got := testsupport.ReadFileString(t, outputPath)
	if got != "id,val\n1,x\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRunFallsBackToContentHash(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"), "name,val", "alpha,1", "beta,2")
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"), "name,val", "alpha,1", "Beta,2")

	stats := runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"game_id", "play_id"},
	})

	if stats.Mode != dedup.ModeContentHash {
		t.Fatalf("expected content-hash mode, got %s", stats.Mode)
	}
	// Whole-row hashing is exact: only the byte-identical row is a duplicate.
	if stats.DuplicatesSkipped != 1 || stats.RowsOut != 3 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestRunReconcilesMixedDialects(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"), "\ufeffid,val", "1,x", "2,y")
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"), "val;id", "x;1", "z;3")

	stats := runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"id"},
	})

	if stats.DuplicatesSkipped != 1 {
		t.Fatalf("expected cross-dialect duplicate to be dropped: %+v", stats)
	}

	got := testsupport.ReadFileString(t, outputPath)
	want := "id,val\n1,x\n2,y\n3,z\n"
	if got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunNormalizesKeyValues(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"),
		"game_id,play_id,desc",
		"7,1,first",
	)
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"),
		"game_id,play_id,desc",
		"7.0,1.0,spreadsheet twin",
		" 7.00 ,1.00,padded twin",
		"8,1,fresh",
	)

	stats := runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"game_id", "play_id"},
	})

	if stats.DuplicatesSkipped != 2 || stats.RowsOut != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	got := testsupport.ReadFileString(t, outputPath)
	want := "game_id,play_id,desc\n7,1,first\n8,1,fresh\n"
	if got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunUsesConfiguredKeyColumns(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithKeyColumns("event_id"))
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"),
		"event_id,desc",
		"100,first wording",
	)
	testsupport.WriteCSV(t, filepath.Join(inputDir, "b.csv"),
		"event_id,desc",
		"100,second wording",
		"200,other",
	)

	stats := runMerge(t, merge.Options{
		InputDir:    inputDir,
		OutputPath:  outputPath,
		KeyColumns:  cfg.Merge.KeyColumns,
		SampleBytes: cfg.Dialect.SampleBytes,
	})

	if stats.Mode != dedup.ModeSemanticKey {
		t.Fatalf("expected semantic-key mode, got %s", stats.Mode)
	}
	// The rows disagree on desc; only the configured key column decides.
	if stats.DuplicatesSkipped != 1 || stats.RowsOut != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	got := testsupport.ReadFileString(t, outputPath)
	want := "event_id,desc\n100,first wording\n200,other\n"
	if got != want {
		t.Fatalf("unexpected output:\n%q\nwant:\n%q", got, want)
	}
}

func TestRunPadsShortRows(t *testing.T) {
	base := t.TempDir()
	inputDir := filepath.Join(base, "in")
	outputPath := filepath.Join(base, "merged.csv")

	testsupport.WriteCSV(t, filepath.Join(inputDir, "a.csv"), "id,val,extra", "1,x")

	stats := runMerge(t, merge.Options{
		InputDir:   inputDir,
		OutputPath: outputPath,
		KeyColumns: []string{"id"},
	})
	if stats.RowsOut != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	got := testsupport.ReadFileString(t, outputPath)
	if got != "id,val,extra\n1,x,\n" {
		t.Fatalf("short row not padded: %q", got)
	}
}
