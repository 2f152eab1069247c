// Package csvio provides the CSV file plumbing shared by the merge and strip
// operations: directory discovery, dialect-aware readers that survive the
// messy exports this tool exists for, and dialect-preserving writers.
package csvio
