package accesslog

import (
	"errors"
	"strings"
)

// Positional offsets of the whitespace-separated line fields.
const (
	fieldDate = iota
	fieldTime
	fieldURL

	fieldCount
)

// Positional offsets of the URL path segments once split on '/'.
const (
	segmentPage        = 1
	segmentDisplayMode = 4
	segmentZoom        = 6
)

const mapPage = "map"

var (
	// ErrMalformedLine marks a line that does not split into exactly three fields.
	ErrMalformedLine = errors.New("malformed log line")
	// ErrNotMapRequest marks a well-formed line whose URL is not a map tile request.
	ErrNotMapRequest = errors.New("not a map tile request")
)

// Request is the tile information extracted from one log line.
type Request struct {
	Date        string
	Time        string
	DisplayMode string
	Zoom        string
	HasZoom     bool
}

// Decode extracts the display mode and zoom level from a raw log line.
func Decode(line string) (Request, error) {
	fields := strings.Fields(line)
	if len(fields) != fieldCount {
		return Request{}, ErrMalformedLine
	}

	segments := strings.Split(fields[fieldURL], "/")
	if len(segments) <= segmentDisplayMode {
		return Request{}, ErrNotMapRequest
	}
	if segments[segmentPage] != mapPage {
		return Request{}, ErrNotMapRequest
	}

	req := Request{
		Date:        fields[fieldDate],
		Time:        fields[fieldTime],
		DisplayMode: segments[segmentDisplayMode],
	}
	if len(segments) > segmentZoom {
		req.Zoom = segments[segmentZoom]
		req.HasZoom = true
	}
	return req, nil
}
