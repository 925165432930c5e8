// Package report renders series records into the tab-separated result file.
//
// Each record becomes one CRLF-terminated line holding the display mode, the
// run length, and the comma-joined zoom levels. Values are written verbatim:
// a display mode or zoom containing a tab or comma produces an ambiguous line.
package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"

	"tilestats/internal/fileutil"
	"tilestats/internal/series"
)

const (
	fieldSeparator = "\t"
	zoomSeparator  = ","
	lineTerminator = "\r\n"
)

// ErrOutputLocked is returned when another process holds the output lock.
var ErrOutputLocked = errors.New("output file is locked by another run")

// Write renders records to w in order.
func Write(w io.Writer, records []series.Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		bw.WriteString(rec.DisplayMode)
		bw.WriteString(fieldSeparator)
		bw.WriteString(strconv.Itoa(rec.RunLength))
		bw.WriteString(fieldSeparator)
		bw.WriteString(strings.Join(rec.Zooms, zoomSeparator))
		if _, err := bw.WriteString(lineTerminator); err != nil {
			return fmt.Errorf("write record %q: %w", rec.DisplayMode, err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flush records: %w", err)
	}
	return nil
}

// Format renders records into a string.
func Format(records []series.Record) string {
	var sb strings.Builder
	_ = Write(&sb, records)
	return sb.String()
}

// FileOptions controls how WriteFile produces the result file.
type FileOptions struct {
	// Atomic writes through a temporary file renamed into place.
	Atomic bool
	// Lock holds an exclusive lock on "<path>.lock" while writing.
	Lock bool
	Mode os.FileMode
}

// WriteFile renders records into path.
func WriteFile(path string, records []series.Record, opts FileOptions) error {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if opts.Lock {
		lockPath := path + ".lock"
		lock := flock.New(lockPath)
		ok, err := lock.TryLock()
		if err != nil {
			return fmt.Errorf("acquire output lock: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %s", ErrOutputLocked, lockPath)
		}
		// The lock file stays on disk. Removing it would let a waiter lock the
		// unlinked inode while another process locks a fresh file.
		defer lock.Unlock() //nolint:errcheck
	}

	fill := func(w io.Writer) error {
		return Write(w, records)
	}
	if opts.Atomic {
		return fileutil.WriteAtomic(path, mode, fill)
	}
	if err := fileutil.WriteDirect(path, mode, fill); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
