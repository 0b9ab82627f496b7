// Package history keeps a SQLite ledger of compile runs and their jobs.
//
// Each compile run records one row in runs plus one row per track-format job
// so `albumus history` can show what failed without digging through logs.
// Schema changes bump schemaVersion; users delete history.db to adopt them.
package history
