package dedup

import (
	"crypto/sha256"
	"strings"
)

// Mode selects how rows are compared for duplication. The mode is fixed when
// the engine is built and never changes mid-run.
type Mode int

const (
	// ModeSemanticKey compares rows by their normalized key column values.
	ModeSemanticKey Mode = iota
	// ModeContentHash compares rows by a digest of every cell.
	ModeContentHash
)

func (m Mode) String() string {
	switch m {
	case ModeSemanticKey:
		return "semantic-key"
	case ModeContentHash:
		return "content-hash"
	default:
		return "unknown"
	}
}

// keySeparator joins key cells and hashed rows. Cells containing a NUL byte
// can collide; callers accept that as a known limitation.
const keySeparator = "\x00"

// Engine tracks which rows have been seen within a single merge run. It is
// not safe for concurrent use; the merge loop is single-goroutine by design.
type Engine struct {
	mode       Mode
	keyIndexes []int
	seenKeys   map[string]struct{}
	seenHashes map[[sha256.Size]byte]struct{}
}

// NewEngine builds an engine for rows shaped by canonicalHeader. When every
// key column occurs in the header the engine compares semantic keys; otherwise
// it falls back to hashing whole rows. An empty key column list always hashes,
// since an empty key would collapse every row into one.
func NewEngine(canonicalHeader, keyColumns []string) *Engine {
	indexes := make([]int, 0, len(keyColumns))
	for _, column := range keyColumns {
		idx := indexOf(canonicalHeader, column)
		if idx < 0 {
			indexes = nil
			break
		}
		indexes = append(indexes, idx)
	}

	if len(indexes) == 0 {
		return &Engine{
			mode:       ModeContentHash,
			seenHashes: make(map[[sha256.Size]byte]struct{}),
		}
	}
	return &Engine{
		mode:       ModeSemanticKey,
		keyIndexes: indexes,
		seenKeys:   make(map[string]struct{}),
	}
}

// Mode reports how the engine compares rows.
func (e *Engine) Mode() Mode {
	return e.mode
}

// Seen reports whether the row's identity was already registered during this
// run, registering it when new. The first occurrence of an identity reports
// false; every later occurrence reports true.
func (e *Engine) Seen(row []string) bool {
	if e.mode == ModeSemanticKey {
		key := e.semanticKey(row)
		if _, dup := e.seenKeys[key]; dup {
			return true
		}
		e.seenKeys[key] = struct{}{}
		return false
	}

	sum := sha256.Sum256([]byte(strings.Join(row, keySeparator)))
	if _, dup := e.seenHashes[sum]; dup {
		return true
	}
	e.seenHashes[sum] = struct{}{}
	return false
}

func (e *Engine) semanticKey(row []string) string {
	parts := make([]string, len(e.keyIndexes))
	for i, idx := range e.keyIndexes {
		var value string
		if idx < len(row) {
			value = row[idx]
		}
		parts[i] = NormalizeKey(value)
	}
	return strings.Join(parts, keySeparator)
}

func indexOf(names []string, name string) int {
	for i, candidate := range names {
		if candidate == name {
			return i
		}
	}
	return -1
}
