// Package history persists a summary of every parse run in SQLite.
//
// Each run is keyed by a UUID and captures the input and output locations,
// the series policy, the line counters, the number of records written, and
// start/finish timestamps. The database is a convenience log for operators;
// schema changes bump schemaVersion and users delete the file to adopt them.
package history
