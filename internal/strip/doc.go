// Package strip removes placeholder columns left behind by spreadsheet
// exports, the kind named "Unnamed: 0" and friends.
//
// Each file is rewritten in place through an atomically renamed temporary
// file, preserving the file's detected delimiter. Rows are projected onto the
// surviving columns with the same tolerance for short rows the merge applies.
package strip
