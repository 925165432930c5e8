package report_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"tilestats/internal/report"
	"tilestats/internal/series"
)

func sampleRecords() []series.Record {
	return []series.Record{
		{DisplayMode: "A", RunLength: 2, Zooms: []string{"z1"}},
		{DisplayMode: "B", RunLength: 1, Zooms: []string{"z2"}},
		{DisplayMode: "A", RunLength: 1, Zooms: []string{"z1", "z3"}},
		{DisplayMode: "C", RunLength: 12, Zooms: []string{}},
	}
}

const sampleOutput = "A\t2\tz1\r\nB\t1\tz2\r\nA\t1\tz1,z3\r\nC\t12\t\r\n"

func TestFormat(t *testing.T) {
	if got := report.Format(sampleRecords()); got != sampleOutput {
		t.Fatalf("Format = %q, want %q", got, sampleOutput)
	}
}

func TestFormatEmpty(t *testing.T) {
	if got := report.Format(nil); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestWriteFileModes(t *testing.T) {
	cases := []struct {
		name string
		opts report.FileOptions
	}{
		{"atomic locked", report.FileOptions{Atomic: true, Lock: true}},
		{"direct locked", report.FileOptions{Lock: true}},
		{"direct", report.FileOptions{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "result.output")
			if err := report.WriteFile(path, sampleRecords(), tc.opts); err != nil {
				t.Fatalf("WriteFile returned error: %v", err)
			}
			got, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("read output: %v", err)
			}
			if string(got) != sampleOutput {
				t.Fatalf("output = %q, want %q", got, sampleOutput)
			}
			_, statErr := os.Stat(path + ".lock")
			if !tc.opts.Lock {
				if !errors.Is(statErr, os.ErrNotExist) {
					t.Fatalf("expected no lock file, stat err = %v", statErr)
				}
				return
			}
			if statErr != nil {
				t.Fatalf("expected lock file to stay in place: %v", statErr)
			}
			next := flock.New(path + ".lock")
			ok, err := next.TryLock()
			if err != nil || !ok {
				t.Fatalf("expected lock to be released: ok=%v err=%v", ok, err)
			}
			_ = next.Unlock()
			if err := report.WriteFile(path, sampleRecords(), tc.opts); err != nil {
				t.Fatalf("second WriteFile with existing lock file: %v", err)
			}
		})
	}
}

func TestWriteFileRefusesLockedOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.output")
	holder := flock.New(path + ".lock")
	ok, err := holder.TryLock()
	if err != nil || !ok {
		t.Fatalf("TryLock: ok=%v err=%v", ok, err)
	}
	defer holder.Unlock() //nolint:errcheck

	err = report.WriteFile(path, sampleRecords(), report.FileOptions{Atomic: true, Lock: true})
	if !errors.Is(err, report.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected no output file, stat err = %v", err)
	}
}
