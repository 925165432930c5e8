package source_test

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"tilestats/internal/config"
	"tilestats/internal/source"
)

const payload = "2017-10-06\t10:00:00\t/map/1/2/plan/0/12/3.png\n"

func readAll(t *testing.T, location string, stdin io.Reader) string {
	t.Helper()
	cfg := config.Default()
	rc, err := source.Open(t.Context(), &cfg, location, stdin)
	if err != nil {
		t.Fatalf("Open(%q) returned error: %v", location, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read %q: %v", location, err)
	}
	if err := rc.Close(); err != nil {
		t.Fatalf("close %q: %v", location, err)
	}
	return string(data)
}

func TestOpenPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.tsv")
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, path, nil); got != payload {
		t.Fatalf("got %q", got)
	}
}

func TestOpenGzipFile(t *testing.T) {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tiles.tsv.gz")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, path, nil); got != payload {
		t.Fatalf("got %q", got)
	}
}

func TestOpenZstdFile(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := enc.Write([]byte(payload)); err != nil {
		t.Fatal(err)
	}
	if err := enc.Close(); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "tiles.tsv.zst")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, path, nil); got != payload {
		t.Fatalf("got %q", got)
	}
}

func TestOpenStdin(t *testing.T) {
	if got := readAll(t, source.Stdin, strings.NewReader(payload)); got != payload {
		t.Fatalf("got %q", got)
	}
}

func TestOpenMissingFile(t *testing.T) {
	cfg := config.Default()
	_, err := source.Open(t.Context(), &cfg, filepath.Join(t.TempDir(), "missing.tsv"), nil)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestOpenCorruptGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.tsv.gz")
	if err := os.WriteFile(path, []byte("not gzip"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	if _, err := source.Open(t.Context(), &cfg, path, nil); err == nil {
		t.Fatal("expected gzip header error")
	}
}

func TestParseS3URI(t *testing.T) {
	bucket, key, err := source.ParseS3URI("s3://tile-logs/2017/10/06/map.tsv.gz")
	if err != nil {
		t.Fatalf("ParseS3URI returned error: %v", err)
	}
	if bucket != "tile-logs" || key != "2017/10/06/map.tsv.gz" {
		t.Fatalf("unexpected split: %q %q", bucket, key)
	}

	for _, bad := range []string{"s3://", "s3://bucket", "s3://bucket/", "s3:///key", "/local/path"} {
		if _, _, err := source.ParseS3URI(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}
