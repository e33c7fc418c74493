package testsupport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path string, content []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteCSV writes delimited text under dir and returns its path.
func WriteCSV(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	WriteFile(t, path, []byte(content))
	return path
}

// WriteGzip writes gzip-compressed content under dir and returns its path.
func WriteGzip(t testing.TB, dir, name, content string) string {
	t.Helper()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(content)); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	path := filepath.Join(dir, name)
	WriteFile(t, path, buf.Bytes())
	return path
}

// WriteZstd writes zstd-compressed content under dir and returns its path.
func WriteZstd(t testing.TB, dir, name, content string) string {
	t.Helper()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	defer enc.Close()
	path := filepath.Join(dir, name)
	WriteFile(t, path, enc.EncodeAll([]byte(content), nil))
	return path
}
