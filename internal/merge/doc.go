// Package merge drives the merge-and-deduplicate run across a directory of
// CSV files.
//
// Files are processed strictly sequentially in sorted filename order. The
// first file with a header row donates the canonical column layout; every
// other file is reconciled against it by column name, with missing columns
// emitted as empty strings. Duplicate rows are dropped on sight, first
// occurrence winning, and the run reports counters that always satisfy
// rows_in == rows_out + duplicates_skipped.
package merge
