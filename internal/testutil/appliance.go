// Package testutil builds a throwaway DSM certificate tree for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ksyq12/synorenew/internal/config"
)

// DefaultID is the certificate id written to DEFAULT.
const DefaultID = "TestXX"

// InfoFixture lists six services for DefaultID: three standard entries
// (FTPS, DSM desktop and one reverse proxy), the VPN package and two other
// packages. Other1 has no services.
const InfoFixture = `{
  "TestXX" : {
    "desc" : "Test Certificate",
    "services" : [
      {"display_name" : "FTPS", "isPkg" : false, "owner" : "root", "service" : "ftpd", "subscriber" : "smbftpd"},
      {"display_name" : "DSM Desktop Service", "display_name_i18n" : "common:web_desktop", "isPkg" : false, "owner" : "root", "service" : "default", "subscriber" : "system"},
      {"display_name" : "Log Receiving", "display_name_i18n" : "helptoc:logcenter_server", "isPkg" : true, "owner" : "root", "service" : "pkg-LogCenter", "subscriber" : "LogCenter"},
      {"display_name" : "VPNServer", "display_name_i18n" : "SYNO.SDS.VPN.Instance:app:app_name", "isPkg" : true, "owner" : "root", "service" : "OpenVPN", "subscriber" : "VPNCenter"},
      {"display_name" : "Synology Drive Server", "isPkg" : true, "owner" : "SynologyDrive", "service" : "SynologyDrive", "subscriber" : "SynologyDrive"},
      {"display_name" : "1.example.test", "isPkg" : false, "owner" : "root", "service" : "fc0d377f-d266-4635-9f1d-a7ee46dda720", "subscriber" : "ReverseProxy"}
    ]
  },
  "Other1" : {
    "desc" : "",
    "services" : []
  }
}`

// BundleNames are the files of a DSM certificate bundle.
var BundleNames = []string{"cert.pem", "privkey.pem", "fullchain.pem", "chain.pem"}

// VPNNames are the VPNCenter key files, in BundleNames order.
var VPNNames = []string{"server.crt", "server.key", "ca_bundle.crt", "ca.crt"}

// Appliance is a fake certificate root with its matching configuration.
type Appliance struct {
	Base   string
	Config *config.Config
	// StandardDirs are the non-package service directories from InfoFixture.
	StandardDirs []string
	// PackageDirs are package directories that must never be touched.
	PackageDirs []string
}

// NewAppliance lays out the tree under t.TempDir. Every bundle file holds
// "OLD", package directories hold "PKG", and the VPN keys hold "VPNOLD".
func NewAppliance(t testing.TB) *Appliance {
	t.Helper()

	base := t.TempDir()
	cfg := config.New()
	cfg.CertsRoot = filepath.Join(base, "certificate")
	cfg.TempRoot = filepath.Join(base, "tmp", "acme-renew")
	cfg.VPN.KeysDir = filepath.Join(base, "packages", "VPNCenter", "openvpn", "keys")

	a := &Appliance{Base: base, Config: cfg}

	WriteBundle(t, cfg.ArchiveCertDir(DefaultID), "OLD")
	WriteBundle(t, cfg.ArchiveCertDir("Other1"), "OTHER")
	WriteFile(t, cfg.DefaultMarkerPath(), DefaultID+"\n")
	WriteFile(t, cfg.ManifestPath(), InfoFixture)

	for _, d := range [][2]string{
		{"smbftpd", "ftpd"},
		{"system", "default"},
		{"ReverseProxy", "fc0d377f-d266-4635-9f1d-a7ee46dda720"},
	} {
		dir := cfg.ServiceDir(d[0], d[1])
		WriteBundle(t, dir, "OLD")
		a.StandardDirs = append(a.StandardDirs, dir)
	}
	for _, d := range [][2]string{
		{"LogCenter", "pkg-LogCenter"},
		{"SynologyDrive", "SynologyDrive"},
	} {
		dir := cfg.ServiceDir(d[0], d[1])
		WriteBundle(t, dir, "PKG")
		a.PackageDirs = append(a.PackageDirs, dir)
	}

	WriteFiles(t, cfg.VPN.KeysDir, "VPNOLD", append(VPNNames, "dh.pem", "ta.key")...)

	return a
}

// DefaultDir is the archive subtree of DefaultID.
func (a *Appliance) DefaultDir() string {
	return a.Config.ArchiveCertDir(DefaultID)
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// WriteFiles writes the same content to every name in dir.
func WriteFiles(t testing.TB, dir, content string, names ...string) {
	t.Helper()
	for _, name := range names {
		WriteFile(t, filepath.Join(dir, name), content)
	}
}

// WriteBundle writes the four bundle files into dir.
func WriteBundle(t testing.TB, dir, content string) {
	t.Helper()
	WriteFiles(t, dir, content, BundleNames...)
}

// ReadFiles returns the content of every regular file in dir by name.
func ReadFiles(t testing.TB, dir string) map[string]string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	files := make(map[string]string, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		files[e.Name()] = string(data)
	}
	return files
}

// RequireFiles asserts every name in dir holds content.
func RequireFiles(t testing.TB, dir, content string, names ...string) {
	t.Helper()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, "reading %s", name)
		require.Equal(t, content, string(data), "content of %s", filepath.Join(dir, name))
	}
}

// RequireBundle asserts dir holds exactly the four bundle files with content.
func RequireBundle(t testing.TB, dir, content string) {
	t.Helper()
	want := make(map[string]string, len(BundleNames))
	for _, name := range BundleNames {
		want[name] = content
	}
	require.Equal(t, want, ReadFiles(t, dir), "bundle in %s", dir)
}
