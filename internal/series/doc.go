// Package series detects consecutive runs of identical display modes in a
// stream of decoded tile requests.
//
// An Aggregator is fed lines (Observe) or decoded requests (Add) in input
// order and tracks the run that is currently open. Runs are closed when the
// display mode changes and, for the last run, by Finalize. How closed runs
// become records is governed by a Policy chosen once per aggregator:
// PolicyMaxMerge keeps one record per display mode with its longest run and
// the union of its zooms, PolicyAppend keeps one record per run.
//
// Lines that are not map tile requests are transparent: they neither extend
// nor break the open run.
package series
