package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteLines writes lines to path, each terminated by "\n".
func WriteLines(t testing.TB, path string, lines ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	var sb strings.Builder
	for _, line := range lines {
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// TileLine builds a tab-separated map tile log line. An empty zoom omits the
// zoom segment entirely.
func TileLine(mode, zoom string) string {
	if zoom == "" {
		return fmt.Sprintf("2017-10-06\t10:00:00\t/map/fr/paris/%s", mode)
	}
	return fmt.Sprintf("2017-10-06\t10:00:00\t/map/fr/paris/%s/tiles/%s/42.png", mode, zoom)
}

// ReadFile returns the content of path or fails the test.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
