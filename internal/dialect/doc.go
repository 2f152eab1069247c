// Package dialect detects how a CSV file is delimited.
//
// Detection reads a bounded sample from the start of a file, counts candidate
// delimiters outside quoted regions, and picks the candidate whose per-line
// count is most consistent. Detection failure is a soft condition: callers
// receive the comma default and continue, mirroring how exported spreadsheets
// are overwhelmingly comma separated.
package dialect
