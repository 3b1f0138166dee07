package cli

import (
	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/ksyq12/synorenew/internal/renew"
	"github.com/spf13/cobra"
)

var (
	renewDomain        string
	renewDNS           string
	renewAcmeSh        string
	renewArchiveBackup string
)

var renewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Issue a new certificate and install it everywhere",
	Long: `Renew the default DSM certificate with acme.sh.

The current certificate is backed up first. If issuing, copying or
restarting services fails, the backup is put back.

Environment:
  DOMAIN        domain to issue for (required unless --domain is given)
  DNS_PROVIDER  acme.sh DNS API, e.g. dns_cf (optional)
  ACMESH_PATH   acme.sh executable (optional)
  Provider credentials (CF_Token, GD_Key, ...) are passed to acme.sh.

Examples:
  DOMAIN=nas.example.com DNS_PROVIDER=dns_cf synorenew renew
  synorenew renew --domain nas.example.com --dns dns_cf
  synorenew renew --domain nas.example.com --archive-backup /volume1/backup/certs`,
	Args: cobra.NoArgs,
	RunE: runRenew,
}

func init() {
	renewCmd.Flags().StringVarP(&renewDomain, "domain", "d", "", "Domain to issue for (overrides DOMAIN)")
	renewCmd.Flags().StringVar(&renewDNS, "dns", "", "acme.sh DNS API name (overrides DNS_PROVIDER)")
	renewCmd.Flags().StringVar(&renewAcmeSh, "acmesh", "", "Path to acme.sh (overrides ACMESH_PATH)")
	renewCmd.Flags().StringVar(&renewArchiveBackup, "archive-backup", "", "Also keep the backup as an archive (file, or directory for a timestamped .tar.gz)")

	rootCmd.AddCommand(renewCmd)
}

func runRenew(cmd *cobra.Command, args []string) error {
	domain := flagOrEnv(renewDomain, "DOMAIN")
	if domain == "" {
		return renewerrors.DomainRequired(renew.DNSAPIHint)
	}
	if err := validateDomain(domain); err != nil {
		return renewerrors.Config(err.Error())
	}

	// Require root for system operations
	if err := deps.RootChecker.RequireRoot(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if renewAcmeSh != "" {
		cfg.AcmeSh.Path = renewAcmeSh
	}

	res, err := newRenewer(cfg).Run(renew.Options{
		Domain:        domain,
		DNSProvider:   flagOrEnv(renewDNS, "DNS_PROVIDER"),
		ArchiveBackup: renewArchiveBackup,
	})
	if err != nil {
		if jsonOutput && res != nil {
			_ = output.JSON(res)
		}
		return err
	}

	if res.Archive != "" && !jsonOutput {
		output.Info("Backup archived to %s", res.Archive)
	}
	vpn := "skipped"
	if res.VPN {
		vpn = "updated"
	}
	return outputResult(res, "Renewed %s for %s: %d locations, VPN Server %s", res.CertID, domain, len(res.Targets), vpn)
}
