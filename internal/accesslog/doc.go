// Package accesslog decodes map-tile access-log lines.
//
// A well-formed line carries exactly three whitespace-separated fields: the
// request date, the request time, and the requested URL path. Only paths
// under the "map" page carry tile information; their fifth segment names the
// display mode and the optional seventh segment names the zoom level.
//
// Decode reports two distinct failure classes so callers can keep separate
// counters: ErrMalformedLine for lines with the wrong field count and
// ErrNotMapRequest for well-formed lines that do not address a map tile.
package accesslog
