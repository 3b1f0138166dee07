// Package platform detects the DSM release the tool is running on.
package platform

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strings"
)

// VersionFile is where DSM records its release.
const VersionFile = "/etc.defaults/VERSION"

// DSMInfo is the subset of /etc.defaults/VERSION the tool reports.
type DSMInfo struct {
	Major          string `json:"major"`
	Minor          string `json:"minor"`
	ProductVersion string `json:"product_version"`
	Build          string `json:"build"`
	SmallFix       string `json:"small_fix,omitempty"`
}

// String renders the release as DSM shows it, e.g. "DSM 6.2.2-24922 Update 3".
func (d *DSMInfo) String() string {
	version := d.ProductVersion
	if version == "" {
		version = d.Major + "." + d.Minor
	}
	s := "DSM " + version
	if d.Build != "" {
		s += "-" + d.Build
	}
	if d.SmallFix != "" && d.SmallFix != "0" {
		s += " Update " + d.SmallFix
	}
	return s
}

// Detect reads the DSM release from VersionFile.
func Detect() (*DSMInfo, error) {
	return DetectFrom(VersionFile)
}

// DetectFrom reads a DSM VERSION file at path. Lines are key="value".
func DetectFrom(path string) (*DSMInfo, error) {
	if !pathExists(path) {
		return nil, fmt.Errorf("not a Synology DSM system (%s not found)", path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(strings.TrimSpace(scanner.Text()), "=")
		if !ok {
			continue
		}
		values[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	info := &DSMInfo{
		Major:          values["majorversion"],
		Minor:          values["minorversion"],
		ProductVersion: values["productversion"],
		Build:          values["buildnumber"],
		SmallFix:       values["smallfixnumber"],
	}
	if info.Major == "" && info.ProductVersion == "" {
		return nil, fmt.Errorf("%s does not look like a DSM version file", path)
	}
	return info, nil
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Platform returns a string describing the current platform.
func Platform() string {
	return fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
}
