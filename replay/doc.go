// Package replay feeds a text file, one line per memory, through the
// ingestion pipeline.
//
// Lines are read up front, processed in batches and retried with exponential
// backoff when extraction fails. Progress is reported to an io.Writer and a
// Summary of what was learned is returned at the end.
package replay
