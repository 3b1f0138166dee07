package cli

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ksyq12/synorenew/internal/manifest"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the installed default certificate",
	Long: `Show the default certificate id, its description and the subject,
issuer and validity of its cert.pem.

Examples:
  synorenew status
  synorenew status --json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// certStatus represents the installed certificate for output
type certStatus struct {
	ID        string    `json:"id"`
	Desc      string    `json:"desc"`
	Path      string    `json:"path"`
	Subject   string    `json:"subject"`
	Issuer    string    `json:"issuer"`
	DNSNames  []string  `json:"dns_names"`
	NotBefore time.Time `json:"not_before"`
	NotAfter  time.Time `json:"not_after"`
	DaysLeft  int       `json:"days_left"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	id, err := manifest.ReadDefaultID(cfg.DefaultMarkerPath())
	if err != nil {
		return err
	}

	status := certStatus{
		ID:   id,
		Path: filepath.Join(cfg.ArchiveCertDir(id), cfg.Files.Cert),
	}

	// a broken INFO should not hide the certificate itself
	if m, err := manifest.Load(cfg.ManifestPath()); err != nil {
		output.Warn("Could not read services manifest: %v", err)
	} else if c, err := m.Lookup(id); err == nil {
		status.Desc = c.Desc
	}

	cert, err := readCertificate(status.Path)
	if err != nil {
		return err
	}
	status.Subject = cert.Subject.String()
	status.Issuer = cert.Issuer.String()
	status.DNSNames = cert.DNSNames
	status.NotBefore = cert.NotBefore
	status.NotAfter = cert.NotAfter
	status.DaysLeft = int(time.Until(cert.NotAfter).Hours() / 24)

	if jsonOutput {
		return output.JSON(status)
	}

	output.Print("Certificate:  %s %s", status.ID, status.Desc)
	output.Print("File:         %s", status.Path)
	output.Print("Subject:      %s", status.Subject)
	output.Print("Issuer:       %s", status.Issuer)
	if len(status.DNSNames) > 0 {
		output.Print("DNS names:    %v", status.DNSNames)
	}
	output.Print("Valid from:   %s", status.NotBefore.Format(time.RFC3339))
	output.Print("Valid until:  %s", status.NotAfter.Format(time.RFC3339))

	switch {
	case status.DaysLeft < 0:
		output.Error("Certificate expired %d days ago", -status.DaysLeft)
	case status.DaysLeft < 30:
		output.Warn("Certificate expires in %d days", status.DaysLeft)
	default:
		output.Success("Certificate valid for %d more days", status.DaysLeft)
	}
	return nil
}

// readCertificate parses the first certificate of a PEM file.
func readCertificate(path string) (*x509.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate: %w", err)
	}
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("%s: no certificate found", path)
		}
		if block.Type == "CERTIFICATE" {
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			return cert, nil
		}
	}
}
