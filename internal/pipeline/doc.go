// Package pipeline runs one parse invocation end to end.
//
// Run opens the input, streams every line through a series.Aggregator,
// finalizes it, writes the result file, and reports the ignored-line count.
// When configured it also records the run in the history database and
// refreshes the Prometheus textfile. Failures to open, read, or write are
// fatal; history and metrics failures are logged and tolerated.
package pipeline
