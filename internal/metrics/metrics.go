// Package metrics exports run statistics as a Prometheus node-exporter
// textfile so batch runs can be scraped after they exit.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"tilestats/internal/series"
)

const namespace = "tilestats"

// Snapshot is the data exported for one run.
type Snapshot struct {
	Summary  series.Summary
	Finished time.Time
	Duration time.Duration
}

// NewRegistry builds a registry populated with the gauges for snapshot.
func NewRegistry(snapshot Snapshot) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()

	stats := snapshot.Summary.Stats
	gauges := []struct {
		name  string
		help  string
		value float64
	}{
		{"lines_read", "Log lines read during the last run.", float64(stats.Lines)},
		{"map_requests", "Map tile requests decoded during the last run.", float64(stats.MapRequests)},
		{"skipped_lines", "Well-formed lines that were not map tile requests.", float64(stats.Skipped)},
		{"ignored_lines", "Malformed lines ignored during the last run.", float64(stats.Ignored)},
		{"records", "Series records written by the last run.", float64(len(snapshot.Summary.Records))},
		{"last_run_duration_seconds", "Wall time of the last run.", snapshot.Duration.Seconds()},
		{"last_run_timestamp_seconds", "Unix time the last run finished.", float64(snapshot.Finished.Unix())},
	}
	for _, g := range gauges {
		gauge := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        g.name,
			Help:        g.help,
			ConstLabels: prometheus.Labels{"policy": snapshot.Summary.Policy.String()},
		})
		gauge.Set(g.value)
		if err := reg.Register(gauge); err != nil {
			return nil, fmt.Errorf("register %s: %w", g.name, err)
		}
	}

	longest := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "series_longest_run",
		Help:      "Longest consecutive run per display mode in the last run.",
	}, []string{"display_mode"})
	// Under the append policy a display mode can appear in several records.
	best := make(map[string]int, len(snapshot.Summary.Records))
	for _, rec := range snapshot.Summary.Records {
		best[rec.DisplayMode] = max(best[rec.DisplayMode], rec.RunLength)
	}
	for mode, length := range best {
		gauge, err := longest.GetMetricWithLabelValues(mode)
		if err != nil {
			// invalid UTF-8 in the display mode
			continue
		}
		gauge.Set(float64(length))
	}
	if err := reg.Register(longest); err != nil {
		return nil, fmt.Errorf("register series_longest_run: %w", err)
	}
	return reg, nil
}

// WriteTextfile writes snapshot to path in the Prometheus text format.
func WriteTextfile(path string, snapshot Snapshot) error {
	reg, err := NewRegistry(snapshot)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
