// Package manifest reads the DSM certificate manifest and turns it into a
// typed list of distribution targets.
//
// DSM keeps two files under <certs_root>/_archive: DEFAULT, holding the id
// of the default certificate, and INFO, a JSON object keyed by certificate
// id that lists every service using that certificate:
//
//	{
//	  "Ab12cD": {
//	    "desc": "",
//	    "services": [
//	      {"display_name": "FTPS", "isPkg": false, "owner": "root",
//	       "service": "ftpd", "subscriber": "smbftpd"},
//	      ...
//	    ]
//	  }
//	}
//
// Plan classifies each entry so callers switch on Kind instead of poking
// at isPkg and subscriber names themselves.
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
)

// VPN package identity in INFO.
const (
	VPNSubscriber = "VPNCenter"
	VPNService    = "OpenVPN"
)

// Service is one entry of a certificate's services list.
type Service struct {
	DisplayName     string `json:"display_name"`
	DisplayNameI18n string `json:"display_name_i18n,omitempty"`
	IsPkg           bool   `json:"isPkg"`
	Owner           string `json:"owner,omitempty"`
	Service         string `json:"service"`
	Subscriber      string `json:"subscriber"`
}

// IsVPN reports whether the entry is the VPNCenter OpenVPN package.
func (s Service) IsVPN() bool {
	return s.IsPkg && s.Subscriber == VPNSubscriber && s.Service == VPNService
}

// Certificate describes one certificate id in INFO.
type Certificate struct {
	Desc     string    `json:"desc"`
	Services []Service `json:"services"`
}

// Manifest is the parsed INFO file.
type Manifest map[string]Certificate

// ReadDefaultID returns the id stored in the DEFAULT marker file.
func ReadDefaultID(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", renewerrors.FS(path, "default certificate marker not found", err)
		}
		return "", renewerrors.FS(path, "failed to read default certificate marker", err)
	}
	id := strings.Trim(string(data), " \r\n\t")
	if id == "" {
		return "", renewerrors.Manifest(path, "default certificate marker is empty", nil)
	}
	if err := checkSegment(id); err != nil {
		return "", renewerrors.Manifest(path, "invalid default certificate id", err)
	}
	return id, nil
}

// Load parses the INFO manifest at path.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, renewerrors.FS(path, "certificate manifest not found", err)
		}
		return nil, renewerrors.FS(path, "failed to read certificate manifest", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, renewerrors.Manifest(path, "failed to parse certificate manifest", err)
	}
	return m, nil
}

// Lookup returns the description of certificate id.
func (m Manifest) Lookup(id string) (Certificate, error) {
	cert, ok := m[id]
	if !ok {
		return Certificate{}, renewerrors.Manifest("", "certificate "+id+" not listed in manifest", nil)
	}
	return cert, nil
}

// checkSegment rejects values that would escape the certificate root when
// used as a path segment.
func checkSegment(s string) error {
	if s == "" || s == "." || s == ".." || strings.ContainsRune(s, filepath.Separator) || strings.ContainsRune(s, '/') {
		return renewerrors.Configf("%q is not a valid path segment", s)
	}
	return nil
}
