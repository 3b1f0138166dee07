package config

import (
	"path/filepath"
	"time"
)

// Names inside the certificate archive.
const (
	ArchiveDirName  = "_archive"
	DefaultFileName = "DEFAULT"
	InfoFileName    = "INFO"
)

// StampLayout formats the run timestamp used in temporary directory names.
const StampLayout = "2006-01-02_150405"

// ArchiveDir returns <certs_root>/_archive.
func (c *Config) ArchiveDir() string {
	return filepath.Join(c.CertsRoot, ArchiveDirName)
}

// DefaultMarkerPath returns the file holding the default certificate id.
func (c *Config) DefaultMarkerPath() string {
	return filepath.Join(c.ArchiveDir(), DefaultFileName)
}

// ManifestPath returns the INFO services manifest.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.ArchiveDir(), InfoFileName)
}

// ArchiveCertDir returns the archive subtree of certificate id.
func (c *Config) ArchiveCertDir(id string) string {
	return filepath.Join(c.ArchiveDir(), id)
}

// ServiceDir returns <certs_root>/<subscriber>/<service>.
func (c *Config) ServiceDir(subscriber, service string) string {
	return filepath.Join(c.CertsRoot, subscriber, service)
}

// BackupDir returns the temporary backup directory for a run started at now.
func (c *Config) BackupDir(now time.Time) string {
	return filepath.Join(c.TempRoot, "certs-"+now.Format(StampLayout)+"-backup")
}

// NewBundleDir returns the temporary issuance directory for a run started at now.
func (c *Config) NewBundleDir(now time.Time) string {
	return filepath.Join(c.TempRoot, "certs-"+now.Format(StampLayout)+"-new")
}
