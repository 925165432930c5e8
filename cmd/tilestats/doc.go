// Package main hosts the tilestats CLI entrypoint and command graph.
//
// The Cobra-based command tree parses map-tile access logs into series
// reports, inspects the run history, and scaffolds configuration. It
// centralizes configuration resolution and logger setup so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
