// Package bundle copies certificate bundles between directories.
//
// A bundle is the set of files matching a glob (normally *.pem) inside one
// directory; it has no identity beyond that directory. The operations here
// are the file-level half of the renewal workflow: taking a backup,
// replacing a target directory's bundle, writing the renamed VPNCenter
// copy, and removing temporary directories afterwards.
package bundle

import (
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/logger"
)

// Bundle is a certificate bundle located in Dir.
type Bundle struct {
	Dir  string
	Glob string
}

// Open returns the bundle in dir, failing if dir is not a directory.
func Open(dir, glob string) (*Bundle, error) {
	if err := requireDir(dir); err != nil {
		return nil, err
	}
	return &Bundle{Dir: dir, Glob: glob}, nil
}

// Files returns the sorted base names of the bundle's files.
func (b *Bundle) Files() ([]string, error) {
	return matchFiles(b.Dir, b.Glob)
}

// Path returns the full path of a bundle file.
func (b *Bundle) Path(name string) string {
	return filepath.Join(b.Dir, name)
}

// ResetDir empties dir, creating it if needed.
func ResetDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return renewerrors.FS(dir, "failed to clear directory", err)
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return renewerrors.FS(dir, "failed to create directory", err)
	}
	return nil
}

// Backup copies the bundle in src into a freshly cleared dst.
func Backup(src, dst, glob string) (*Bundle, error) {
	source, err := Open(src, glob)
	if err != nil {
		return nil, err
	}
	names, err := source.Files()
	if err != nil {
		return nil, err
	}
	if err := ResetDir(dst); err != nil {
		return nil, err
	}
	for _, name := range names {
		logger.Debug("backup copy %s", source.Path(name))
		if err := CopyFile(source.Path(name), filepath.Join(dst, name)); err != nil {
			return nil, err
		}
	}
	return &Bundle{Dir: dst, Glob: glob}, nil
}

// Replace deletes every bundle file in target and copies b's files in
// under the same names. target must already exist.
func Replace(b *Bundle, target string) error {
	if err := requireDir(target); err != nil {
		return err
	}
	names, err := b.Files()
	if err != nil {
		return err
	}
	old, err := matchFiles(target, b.Glob)
	if err != nil {
		return err
	}

	for _, name := range old {
		path := filepath.Join(target, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return renewerrors.FS(path, "failed to remove old certificate", err)
		}
	}
	for _, name := range names {
		if err := CopyFile(b.Path(name), filepath.Join(target, name)); err != nil {
			return err
		}
	}
	logger.DebugFields("replaced bundle", map[string]interface{}{"target": target, "files": len(names)})
	return nil
}

// ReplaceVPN writes b into the VPNCenter keys directory using mapping
// (bundle name -> key file name). It reports false without touching
// anything when dir does not exist. Every existing file in dir is removed
// first; removal failures are logged and skipped.
func ReplaceVPN(b *Bundle, dir string, mapping map[string]string) (bool, error) {
	if ok, err := dirPresent(dir); !ok {
		return false, err
	}

	clearFiles(dir)

	srcs := make([]string, 0, len(mapping))
	for src := range mapping {
		srcs = append(srcs, src)
	}
	sort.Strings(srcs)
	for _, src := range srcs {
		if err := CopyFile(b.Path(src), filepath.Join(dir, mapping[src])); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Snapshot copies every regular file of src into a freshly cleared dst.
// It reports false when src does not exist.
func Snapshot(src, dst string) (bool, error) {
	if ok, err := dirPresent(src); !ok {
		return false, err
	}
	names, err := matchFiles(src, "*")
	if err != nil {
		return false, err
	}
	if err := ResetDir(dst); err != nil {
		return false, err
	}
	for _, name := range names {
		if err := CopyFile(filepath.Join(src, name), filepath.Join(dst, name)); err != nil {
			return false, err
		}
	}
	return true, nil
}

// dirPresent reports whether dir exists. Only a missing path is "absent";
// any other stat failure, or a file in its place, is an error.
func dirPresent(dir string) (bool, error) {
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, renewerrors.FS(dir, "cannot access directory", err)
	}
	if !info.IsDir() {
		return false, renewerrors.FS(dir, "not a directory", nil)
	}
	return true, nil
}

// RestoreSnapshot makes dst hold exactly the files of snapshot.
func RestoreSnapshot(snapshot, dst string) error {
	if err := requireDir(dst); err != nil {
		return err
	}
	names, err := matchFiles(snapshot, "*")
	if err != nil {
		return err
	}
	clearFiles(dst)
	for _, name := range names {
		if err := CopyFile(filepath.Join(snapshot, name), filepath.Join(dst, name)); err != nil {
			return err
		}
	}
	return nil
}

// CopyFile copies src to dst, keeping src's permission bits.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return renewerrors.FS(src, "failed to open certificate", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return renewerrors.FS(src, "failed to stat certificate", err)
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return renewerrors.FS(dst, "failed to create certificate", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return renewerrors.FS(dst, "failed to copy certificate", err)
	}
	if err := out.Close(); err != nil {
		return renewerrors.FS(dst, "failed to write certificate", err)
	}
	// O_CREATE does not apply the mode to an existing file
	if err := os.Chmod(dst, info.Mode().Perm()); err != nil {
		return renewerrors.FS(dst, "failed to set permissions", err)
	}
	return nil
}

// Cleanup removes every path. Paths that do not exist are not errors;
// the remaining failures are returned together.
func Cleanup(paths ...string) error {
	var merr *multierror.Error
	for _, path := range paths {
		if path == "" {
			continue
		}
		logger.Debug("cleanup %s", path)
		if err := os.RemoveAll(path); err != nil && !os.IsNotExist(err) {
			merr = multierror.Append(merr, renewerrors.FS(path, "failed to remove", err))
		}
	}
	return merr.ErrorOrNil()
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return renewerrors.FS(dir, "directory not found", err)
		}
		return renewerrors.FS(dir, "failed to stat directory", err)
	}
	if !info.IsDir() {
		return renewerrors.FS(dir, "not a directory", nil)
	}
	return nil
}

// matchFiles lists regular files in dir whose names match glob. Matching
// is done on names so that glob metacharacters in dir are harmless.
func matchFiles(dir, glob string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, renewerrors.FS(dir, "directory not found", err)
		}
		return nil, renewerrors.FS(dir, "failed to list directory", err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ok, err := filepath.Match(glob, e.Name())
		if err != nil {
			return nil, renewerrors.Configf("invalid bundle glob %q: %v", glob, err)
		}
		if ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// clearFiles removes every regular file in dir, logging failures.
func clearFiles(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Warn("could not list %s: %v", dir, err)
		return
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("could not remove %s: %v", path, err)
		}
	}
}
