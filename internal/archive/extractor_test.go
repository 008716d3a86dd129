// internal/archive/extractor_test.go
//
// Unit-tests for the sandboxed extractor.
//
// Each test builds a real zip in a temp dir with archive/zip, so the
// assertions cover the actual filesystem behaviour, not a mock.
//
// Run: go test ./internal/archive -v

package archive

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// buildZip writes a zip containing the given name→content entries and
// returns its path.
func buildZip(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip entry %q: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
	return path
}

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := New(filepath.Join(t.TempDir(), "sites"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestExtract_Success(t *testing.T) {
	e := newExtractor(t)
	zipPath := buildZip(t, map[string]string{
		"index.html":    "<h1>hi</h1>",
		"css/style.css": "body{}",
	})

	rel, err := e.Extract(zipPath, "mysite")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if rel != filepath.Join("sites", "mysite") {
		t.Fatalf("rel = %q", rel)
	}

	got, err := os.ReadFile(filepath.Join(e.Root(), "mysite", "index.html"))
	if err != nil || string(got) != "<h1>hi</h1>" {
		t.Fatalf("index.html = %q, err %v", got, err)
	}
	if _, err := os.Stat(filepath.Join(e.Root(), "mysite", "css", "style.css")); err != nil {
		t.Fatalf("nested entry missing: %v", err)
	}
	if _, err := os.Stat(zipPath); !os.IsNotExist(err) {
		t.Fatal("source archive not removed after success")
	}
}

func TestExtract_OverwriteIsIdempotent(t *testing.T) {
	e := newExtractor(t)

	first := buildZip(t, map[string]string{"old.html": "old"})
	if _, err := e.Extract(first, "site"); err != nil {
		t.Fatalf("first extract: %v", err)
	}

	second := buildZip(t, map[string]string{"index.html": "new"})
	if _, err := e.Extract(second, "site"); err != nil {
		t.Fatalf("second extract: %v", err)
	}

	// Old content must be gone, not accumulated.
	if _, err := os.Stat(filepath.Join(e.Root(), "site", "old.html")); !os.IsNotExist(err) {
		t.Fatal("stale entry survived overwrite")
	}
	if _, err := os.Stat(filepath.Join(e.Root(), "site", "index.html")); err != nil {
		t.Fatalf("new entry missing: %v", err)
	}
}

func TestExtract_RejectsTraversal(t *testing.T) {
	e := newExtractor(t)
	zipPath := buildZip(t, map[string]string{
		"../escape.html": "nope",
	})

	_, err := e.Extract(zipPath, "victim")
	if !errors.Is(err, ErrTraversal) {
		t.Fatalf("err = %v, want ErrTraversal", err)
	}
	if _, statErr := os.Stat(filepath.Join(filepath.Dir(e.Root()), "escape.html")); !os.IsNotExist(statErr) {
		t.Fatal("traversal entry written outside sandbox")
	}
}

func TestExtract_RejectsAbsoluteEntry(t *testing.T) {
	e := newExtractor(t)
	zipPath := buildZip(t, map[string]string{
		"/etc/escape": "nope",
	})

	if _, err := e.Extract(zipPath, "victim"); !errors.Is(err, ErrTraversal) {
		t.Fatalf("err = %v, want ErrTraversal", err)
	}
}

func TestExtract_BadArchive(t *testing.T) {
	e := newExtractor(t)
	bogus := filepath.Join(t.TempDir(), "not-a-zip")
	if err := os.WriteFile(bogus, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := e.Extract(bogus, "site")
	if !errors.Is(err, ErrBadArchive) {
		t.Fatalf("err = %v, want ErrBadArchive", err)
	}
	if errors.Is(err, ErrTraversal) {
		t.Fatal("corrupt archive must not look like a traversal violation")
	}
}

func TestDelete(t *testing.T) {
	e := newExtractor(t)
	zipPath := buildZip(t, map[string]string{"index.html": "x"})
	if _, err := e.Extract(zipPath, "site"); err != nil {
		t.Fatalf("extract: %v", err)
	}

	if !e.Delete("site") {
		t.Fatal("Delete returned false for existing folder")
	}
	if e.Delete("site") {
		t.Fatal("Delete returned true for absent folder")
	}
}

func TestRename(t *testing.T) {
	e := newExtractor(t)
	zipPath := buildZip(t, map[string]string{"index.html": "x"})
	if _, err := e.Extract(zipPath, "foo"); err != nil {
		t.Fatalf("extract: %v", err)
	}

	if err := e.Rename("foo", "bar"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.Root(), "bar", "index.html")); err != nil {
		t.Fatalf("moved content missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(e.Root(), "foo")); !os.IsNotExist(err) {
		t.Fatal("old folder still present after rename")
	}

	// Renaming an absent source is a no-op, not an error.
	if err := e.Rename("ghost", "elsewhere"); err != nil {
		t.Fatalf("Rename absent: %v", err)
	}
}
