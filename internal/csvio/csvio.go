package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"sheaf/internal/dialect"
)

// ListFiles returns the CSV files directly inside dir, sorted by name. The
// extension match is case-insensitive and subdirectories are not descended
// into.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Source is an open CSV file with its detected dialect. Rows are decoded
// through a UTF-8 reader that drops a leading byte order mark, matching how
// spreadsheet exports on Windows arrive.
type Source struct {
	Path    string
	Dialect dialect.Dialect
	Sniffed bool

	file   *os.File
	reader *csv.Reader
}

// Open opens path, detects its dialect from a bounded sample, and positions a
// tolerant CSV reader at the start of the file. sampleBytes values of zero or
// less use the package default.
func Open(path string, sampleBytes int) (*Source, error) {
	if sampleBytes <= 0 {
		sampleBytes = dialect.DefaultSampleBytes
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	sample := make([]byte, sampleBytes)
	n, err := io.ReadFull(file, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		_ = file.Close()
		return nil, fmt.Errorf("sample %s: %w", path, err)
	}
	d, sniffed := dialect.Sniff(sample[:n])

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("rewind %s: %w", path, err)
	}

	decoded := transform.NewReader(file, unicode.UTF8BOM.NewDecoder())
	return &Source{
		Path:    path,
		Dialect: d,
		Sniffed: sniffed,
		file:    file,
		reader:  NewReader(decoded, d),
	}, nil
}

// Read returns the next record. io.EOF signals the end of the file.
func (s *Source) Read() ([]string, error) {
	return s.reader.Read()
}

// Close releases the underlying file handle.
func (s *Source) Close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// NewReader wraps r in a CSV reader configured for tolerant parsing: ragged
// record lengths are allowed and stray quotes do not abort the read.
func NewReader(r io.Reader, d dialect.Dialect) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = d.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// NewWriter returns a CSV writer that emits the dialect's delimiter.
func NewWriter(w io.Writer, d dialect.Dialect) *csv.Writer {
	writer := csv.NewWriter(w)
	writer.Comma = d.Comma
	return writer
}
