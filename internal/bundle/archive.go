package bundle

import (
	"os"
	"path/filepath"

	"github.com/mholt/archiver"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
)

// IsArchive reports whether path names an archive format archiver knows,
// judging by its extension (.tar.gz, .zip, ...).
func IsArchive(path string) bool {
	_, err := archiver.ByExtension(path)
	return err == nil
}

// WriteArchive stores b's files at the top level of a new archive at dest.
// The format follows dest's extension; an existing dest is an error.
func WriteArchive(b *Bundle, dest string) error {
	names, err := b.Files()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return renewerrors.FS(b.Dir, "bundle is empty", nil)
	}
	if !IsArchive(dest) {
		return renewerrors.Configf("unsupported archive format: %s", dest)
	}
	if _, err := os.Stat(dest); err == nil {
		return renewerrors.FS(dest, "archive already exists", nil)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0700); err != nil {
		return renewerrors.FS(filepath.Dir(dest), "failed to create archive directory", err)
	}

	sources := make([]string, len(names))
	for i, name := range names {
		sources[i] = b.Path(name)
	}
	if err := archiver.Archive(sources, dest); err != nil {
		return renewerrors.FS(dest, "failed to write archive", err)
	}
	// archives hold private keys
	if err := os.Chmod(dest, 0600); err != nil {
		return renewerrors.FS(dest, "failed to set permissions", err)
	}
	return nil
}

// ExtractArchive unpacks src into a freshly cleared dest and returns the
// bundle inside. Archives holding a single top-level directory are
// accepted too.
func ExtractArchive(src, dest, glob string) (*Bundle, error) {
	if _, err := os.Stat(src); err != nil {
		return nil, renewerrors.FS(src, "archive not found", err)
	}
	if err := ResetDir(dest); err != nil {
		return nil, err
	}
	if err := archiver.Unarchive(src, dest); err != nil {
		return nil, renewerrors.FS(src, "failed to extract archive", err)
	}

	b := &Bundle{Dir: dest, Glob: glob}
	names, err := b.Files()
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		return b, nil
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		return nil, renewerrors.FS(dest, "failed to list archive contents", err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return Open(filepath.Join(dest, entries[0].Name()), glob)
	}
	return nil, renewerrors.FS(src, "archive holds no certificate bundle", nil)
}
