// Package journal keeps an optional SQLite history of processed entries.
//
// Each clean run appends one row per top-level entry tagged with the run ID.
// The database is created on first open; schema changes bump schemaVersion
// and users delete the file to adopt them. Nothing else in jellyclean reads
// the journal, so a missing or disabled journal never changes how a
// directory is reconciled.
package journal
