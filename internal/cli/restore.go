package cli

import (
	"os"

	"github.com/ksyq12/synorenew/internal/input"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/spf13/cobra"
)

var forceRestore bool

var restoreCmd = &cobra.Command{
	Use:   "restore <directory|archive>",
	Short: "Install an existing certificate bundle everywhere",
	Long: `Install a certificate bundle from a directory or a backup archive.

The bundle is copied to the same places a renewal writes to, then nginx is
reloaded and VPN Server restarted. The current certificate is backed up
first and put back if anything fails.

Examples:
  synorenew restore /volume1/backup/certs-2024-01-02_030405-backup.tar.gz
  synorenew restore /tmp/acme-renew/certs-2024-01-02_030405-backup --force`,
	Args: cobra.ExactArgs(1),
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVarP(&forceRestore, "force", "f", false, "Restore without confirmation")

	rootCmd.AddCommand(restoreCmd)
}

func runRestore(cmd *cobra.Command, args []string) error {
	src := args[0]
	if _, err := os.Stat(src); err != nil {
		return err
	}

	// Require root for system operations
	if err := deps.RootChecker.RequireRoot(); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Confirm restore if not forced
	if !forceRestore {
		if !input.Confirm(deps.StdinReader, output.Writer(), "Replace the installed certificates with "+src+"?") {
			output.Info("Restore cancelled")
			return nil
		}
	}

	res, err := newRenewer(cfg).Restore(src)
	if err != nil {
		if jsonOutput && res != nil {
			_ = output.JSON(res)
		}
		return err
	}
	return outputResult(res, "Restored %s from %s", res.CertID, src)
}
