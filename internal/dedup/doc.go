// Package dedup decides which merged rows are duplicates of rows already
// written.
//
// Two comparison modes exist. When the canonical header carries the configured
// key columns, rows compare by a normalized tuple of those columns, so "7" and
// "7.0" in a key cell identify the same record even across files exported by
// different tools. When any key column is missing, the engine degrades to
// hashing entire rows, which still removes exact duplicates. The mode is
// chosen once per run; a run never mixes both behaviors.
package dedup
