// Package history records completed merge runs in SQLite.
//
// The Store manages database connections, schema initialization, and the
// queries behind the history command. Each run captures where input came
// from, where output went, which dedup mode applied, and the row counters
// reported by the merge.
//
// The database is advisory: callers log recording failures as warnings and
// never fail a merge over them. Schema changes bump the version in
// schema.go; users clear the database to adopt the new schema.
package history
