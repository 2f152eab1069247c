package dedup

import (
	"math"
	"strconv"
	"strings"
)

// NormalizeKey canonicalizes a cell value for key comparison. Surrounding
// whitespace is dropped, numeric-looking values with no fractional part
// collapse to their integer form ("7", "7.0", and " 7.00 " all become "7"),
// and everything else is lowercased. Output rows are never rewritten with
// normalized values; the result exists only to compare keys.
func NormalizeKey(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if numericLike(trimmed) {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && f == math.Trunc(f) {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return strings.ToLower(trimmed)
}

// numericLike reports whether s consists of ASCII digits with at most one
// decimal point. Signs and exponents do not qualify; those values compare as
// plain lowercased text.
func numericLike(s string) bool {
	dots := 0
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}
