package header

// NoColumn marks a canonical column with no counterpart in a source header.
const NoColumn = -1

// BuildMapping returns, for each canonical column, the index of the matching
// column in source. Matching is exact and case-sensitive. When a name appears
// more than once in source, the first occurrence wins; canonical columns
// absent from source map to NoColumn.
func BuildMapping(source, canonical []string) []int {
	positions := make(map[string]int, len(source))
	for i, name := range source {
		if _, ok := positions[name]; ok {
			continue
		}
		positions[name] = i
	}

	mapping := make([]int, len(canonical))
	for i, name := range canonical {
		if idx, ok := positions[name]; ok {
			mapping[i] = idx
		} else {
			mapping[i] = NoColumn
		}
	}
	return mapping
}

// MapRow projects a source row onto the canonical column order described by
// mapping. Unmapped columns and indexes beyond the end of a short row both
// yield the empty string, so ragged input rows never panic.
func MapRow(row []string, mapping []int) []string {
	out := make([]string, len(mapping))
	for i, idx := range mapping {
		if idx == NoColumn || idx < 0 || idx >= len(row) {
			continue
		}
		out[i] = row[idx]
	}
	return out
}
