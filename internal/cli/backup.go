package cli

import (
	"github.com/spf13/cobra"
)

var backupArchive string

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Save the current default certificate to an archive",
	Long: `Copy the default certificate bundle into a .tar.gz or .zip archive.

Nothing on the appliance is changed. Restore it later with
"synorenew restore <archive>".

Examples:
  synorenew backup --archive /volume1/backup/nas-certs.tar.gz
  synorenew backup --archive /volume1/backup`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVarP(&backupArchive, "archive", "o", ".", "Archive file, or directory for a timestamped .tar.gz")

	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := newRenewer(cfg).SaveBackup(backupArchive)
	if err != nil {
		return err
	}
	return outputResult(res, "Certificate %s saved to %s", res.CertID, res.Archive)
}
