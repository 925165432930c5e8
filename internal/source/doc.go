// Package source opens log inputs for the parse pipeline.
//
// A location is "-" for standard input, an s3://bucket/key URI fetched with
// the AWS SDK, or a local path. Inputs whose name ends in .gz, .zst, or .zstd
// are decompressed transparently so rotated access logs can be parsed as-is.
package source
