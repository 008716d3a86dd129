// internal/archive/extractor.go
//
// Sandboxed zip extraction for uploaded site bundles.
//
// Context
// -------
// A website upload arrives as a zip archive and must end up under exactly
// one directory keyed by its subdomain: <root>/<subdomain>.  The extractor
// guarantees three things:
//
//   - Idempotent overwrite.  If the destination exists its contents are
//     wiped before extraction, so retrying a create after a later step
//     failed reuses the same folder without accumulation.
//   - Traversal defense.  Every entry's resolved destination must fall
//     inside the destination directory; "../" tricks and absolute entry
//     names abort the whole extraction with ErrTraversal.
//   - Distinct failure classes.  A corrupt archive surfaces as
//     ErrBadArchive, never as a traversal violation, so callers can map
//     the two to different client responses.
//
// On success the source archive file is removed.  On failure callers must
// treat the destination as "empty or stale" and compensate.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrBadArchive marks a structurally invalid zip file.
	ErrBadArchive = errors.New("archive: invalid zip file")

	// ErrTraversal marks an entry whose destination escapes the sandbox.
	ErrTraversal = errors.New("archive: path traversal attempt")
)

// Extractor unpacks archives under a fixed storage root.  The zero value
// is invalid; use New.
type Extractor struct {
	root    string // absolute directory holding one folder per site
	relBase string // last path element of root, used in returned paths
}

// New returns an Extractor rooted at dir.  The directory is created if
// absent.
func New(dir string) (*Extractor, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Extractor{root: abs, relBase: filepath.Base(abs)}, nil
}

// Root returns the absolute storage root.
func (e *Extractor) Root() string { return e.root }

// Extract unpacks the zip at archivePath into <root>/<target>, wiping any
// previous contents first, and returns the storage-relative path of the
// destination.  The source archive is deleted on success and kept on
// failure so the caller may inspect or retry it.
func (e *Extractor) Extract(archivePath, target string) (string, error) {
	dest := filepath.Join(e.root, target)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}
	if err := wipeDir(dest); err != nil {
		return "", err
	}

	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer zr.Close()

	// Reject escaping entries before writing anything.
	for _, f := range zr.File {
		if _, err := resolveInside(dest, f.Name); err != nil {
			return "", err
		}
	}

	for _, f := range zr.File {
		path, _ := resolveInside(dest, f.Name)
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(path, 0o755); err != nil {
				return "", err
			}
			continue
		}
		if err := writeEntry(path, f); err != nil {
			return "", err
		}
	}

	_ = os.Remove(archivePath)
	return filepath.Join(e.relBase, target), nil
}

// Delete removes <root>/<target> recursively.  Returns false, not an
// error, when the directory does not exist.
func (e *Extractor) Delete(target string) bool {
	dir := filepath.Join(e.root, target)
	if _, err := os.Stat(dir); err != nil {
		return false
	}
	return os.RemoveAll(dir) == nil
}

// Rename moves <root>/<oldTarget> to <root>/<newTarget>.  Used when a
// website changes subdomain; the inverse call undoes it.
func (e *Extractor) Rename(oldTarget, newTarget string) error {
	oldDir := filepath.Join(e.root, oldTarget)
	newDir := filepath.Join(e.root, newTarget)
	if _, err := os.Stat(oldDir); err != nil {
		if os.IsNotExist(err) {
			// Nothing to move; treat as done so a retried rename stays
			// idempotent.
			return nil
		}
		return err
	}
	return os.Rename(oldDir, newDir)
}

// RelPath returns the storage-relative path Extract would report for
// target, without touching the filesystem.
func (e *Extractor) RelPath(target string) string {
	return filepath.Join(e.relBase, target)
}

/*──────────────────────────────── helpers ─────────────────────────────────*/

// resolveInside joins name under dest and verifies the result stays inside
// dest.  Absolute names and ".." components fail with ErrTraversal.
func resolveInside(dest, name string) (string, error) {
	if filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrTraversal, name)
	}
	path := filepath.Join(dest, name)
	if path != dest && !strings.HasPrefix(path, dest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %q", ErrTraversal, name)
	}
	return path, nil
}

func writeEntry(path string, f *zip.File) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("%w: %v", ErrBadArchive, err)
	}
	return out.Close()
}

// wipeDir deletes everything inside dir but keeps dir itself.
func wipeDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, ent := range entries {
		if err := os.RemoveAll(filepath.Join(dir, ent.Name())); err != nil {
			return err
		}
	}
	return nil
}
