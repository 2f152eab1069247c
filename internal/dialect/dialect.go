package dialect

import "bytes"

// DefaultSampleBytes bounds how much of a file is examined during detection.
const DefaultSampleBytes = 8192

// Dialect describes how a CSV file is delimited.
type Dialect struct {
	Comma rune
}

// Default returns the comma dialect assumed when detection fails.
func Default() Dialect {
	return Dialect{Comma: ','}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// candidates lists the delimiters Sniff considers, in preference order.
// Preference order doubles as the tie-breaker.
var candidates = []rune{',', '\t', ';', '|'}

// Sniff inspects a byte sample and reports the delimiter it detects. The
// boolean is false when no candidate scores confidently; callers fall back to
// Default in that case. Sniff never fails on malformed input.
func Sniff(sample []byte) (Dialect, bool) {
	sample = bytes.TrimPrefix(sample, utf8BOM)

	// Cut at the last newline so a truncated trailing line cannot skew counts.
	if i := bytes.LastIndexByte(sample, '\n'); i > 0 {
		sample = sample[:i+1]
	}

	lines := sampleLines(sample)
	if len(lines) == 0 {
		return Default(), false
	}

	best := Default()
	bestAgreement := 0
	for _, cand := range candidates {
		agreement := delimiterAgreement(lines, byte(cand))
		if agreement > bestAgreement {
			best = Dialect{Comma: cand}
			bestAgreement = agreement
		}
	}
	if bestAgreement == 0 {
		return Default(), false
	}
	return best, true
}

// sampleLines splits the sample into non-empty lines, dropping the carriage
// return of CRLF endings.
func sampleLines(sample []byte) [][]byte {
	raw := bytes.Split(sample, []byte{'\n'})
	lines := make([][]byte, 0, len(raw))
	for _, line := range raw {
		line = bytes.TrimSuffix(line, []byte{'\r'})
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// delimiterAgreement scores a candidate delimiter by how many lines share the
// modal occurrence count. A candidate only qualifies when the modal count is
// non-zero and a strict majority of lines agree on it.
func delimiterAgreement(lines [][]byte, delim byte) int {
	counts := make(map[int]int, len(lines))
	for _, line := range lines {
		counts[countOutsideQuotes(line, delim)]++
	}

	modalCount := 0
	modalLines := 0
	for count, n := range counts {
		if n > modalLines || (n == modalLines && count > modalCount) {
			modalCount = count
			modalLines = n
		}
	}
	if modalCount == 0 {
		return 0
	}
	if modalLines*2 <= len(lines) {
		return 0
	}
	return modalLines
}

// countOutsideQuotes counts delimiter occurrences that are not inside a
// double-quoted region. Doubled quotes inside a quoted field toggle the state
// twice and therefore do not leak delimiters.
func countOutsideQuotes(line []byte, delim byte) int {
	count := 0
	inQuotes := false
	for _, b := range line {
		switch {
		case b == '"':
			inQuotes = !inQuotes
		case b == delim && !inQuotes:
			count++
		}
	}
	return count
}
