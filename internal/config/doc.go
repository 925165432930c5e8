// Package config loads, normalizes, and validates tilestats configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TILESTATS_POLICY and AWS_REGION. The Config type centralizes the knobs the
// CLI needs: the run-closing policy, default input/output locations, output
// write mode, S3 access, the history database, and logging.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
