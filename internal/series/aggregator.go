package series

import (
	"errors"
	"iter"
	"maps"
	"slices"

	"tilestats/internal/accesslog"
)

// Record summarizes one display mode run (or, under PolicyMaxMerge, all runs
// of one display mode).
type Record struct {
	DisplayMode string   `json:"display_mode"`
	RunLength   int      `json:"run_length"`
	Zooms       []string `json:"zooms"`
}

// Stats counts how input lines were classified.
type Stats struct {
	Lines       int `json:"lines"`
	MapRequests int `json:"map_requests"`
	Skipped     int `json:"skipped"`
	Ignored     int `json:"ignored"`
}

// Summary is the finalized output of an aggregation pass.
type Summary struct {
	Policy  Policy   `json:"policy"`
	Records []Record `json:"records"`
	Stats   Stats    `json:"stats"`
}

// LongestRun returns the largest run length among the records.
func (s Summary) LongestRun() int {
	longest := 0
	for _, rec := range s.Records {
		longest = max(longest, rec.RunLength)
	}
	return longest
}

type entry struct {
	mode   string
	length int
	zooms  map[string]struct{}
}

// Aggregator accumulates display mode runs. It is not safe for concurrent use.
type Aggregator struct {
	policy Policy

	open      bool
	last      string
	runLength int
	runZooms  map[string]struct{}

	entries []*entry
	byMode  map[string]*entry

	stats Stats
}

// New returns an empty aggregator. An unknown policy falls back to DefaultPolicy.
func New(policy Policy) *Aggregator {
	if policy != PolicyAppend && policy != PolicyMaxMerge {
		policy = DefaultPolicy
	}
	return &Aggregator{
		policy:   policy,
		runZooms: make(map[string]struct{}),
		byMode:   make(map[string]*entry),
	}
}

// Policy reports the closing policy in effect.
func (a *Aggregator) Policy() Policy {
	return a.policy
}

// Observe decodes one raw log line and feeds it into the aggregator.
func (a *Aggregator) Observe(line string) {
	a.stats.Lines++
	req, err := accesslog.Decode(line)
	switch {
	case errors.Is(err, accesslog.ErrMalformedLine):
		a.stats.Ignored++
		return
	case err != nil:
		a.stats.Skipped++
		return
	}
	a.stats.MapRequests++
	a.Add(req.DisplayMode, req.Zoom, req.HasZoom)
}

// Add records one decoded tile request.
func (a *Aggregator) Add(mode, zoom string, hasZoom bool) {
	if a.open && mode == a.last {
		a.runLength++
		if hasZoom {
			a.runZooms[zoom] = struct{}{}
		}
		return
	}

	a.closeRun()

	a.open = true
	a.last = mode
	a.runLength = 1
	a.runZooms = make(map[string]struct{})
	if hasZoom {
		a.runZooms[zoom] = struct{}{}
	}
}

func (a *Aggregator) closeRun() {
	if !a.open {
		return
	}
	a.open = false

	if a.policy == PolicyAppend {
		a.entries = append(a.entries, &entry{mode: a.last, length: a.runLength, zooms: a.runZooms})
		return
	}

	existing, ok := a.byMode[a.last]
	if !ok {
		existing = &entry{mode: a.last, zooms: make(map[string]struct{})}
		a.byMode[a.last] = existing
		a.entries = append(a.entries, existing)
	}
	existing.length = max(existing.length, a.runLength)
	maps.Copy(existing.zooms, a.runZooms)
}

// Finalize closes the open run, if any, and returns the records in output
// order. An empty stream yields no records.
func (a *Aggregator) Finalize() Summary {
	a.closeRun()

	records := make([]Record, 0, len(a.entries))
	for _, e := range a.entries {
		zooms := slices.Sorted(maps.Keys(e.zooms))
		if zooms == nil {
			zooms = []string{}
		}
		records = append(records, Record{
			DisplayMode: e.mode,
			RunLength:   e.length,
			Zooms:       zooms,
		})
	}
	return Summary{
		Policy:  a.policy,
		Records: records,
		Stats:   a.stats,
	}
}

// Stats returns the line counters accumulated so far.
func (a *Aggregator) Stats() Stats {
	return a.stats
}

// Fold runs a fresh aggregator over lines and finalizes it.
func Fold(policy Policy, lines iter.Seq[string]) Summary {
	agg := New(policy)
	for line := range lines {
		agg.Observe(line)
	}
	return agg.Finalize()
}
