// Package header reconciles heterogeneous CSV headers against a canonical
// column order so rows from differently shaped files can be merged into one
// output.
package header
