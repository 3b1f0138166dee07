package cli

import (
	"os"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/logger"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/spf13/cobra"
)

var (
	jsonOutput bool
	verbose    bool
	configPath string
	logFile    string
	version    = "dev"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "synorenew",
	Short: "Renew and distribute Synology DSM certificates with acme.sh",
	Long: `synorenew renews the default certificate of a Synology DSM appliance.

It backs up the current certificate, has acme.sh issue a new one, copies it
to every service that uses the default certificate (including VPN Server),
reloads nginx and restarts VPN Server, and restores the backup if any step
fails.

Run it from a DSM scheduled task as root:
  DOMAIN=nas.example.com DNS_PROVIDER=dns_cf CF_Token=... synorenew renew`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	// Initialize logger based on flags (parsed by cobra)
	cobra.OnInitialize(initLogging)

	err := rootCmd.Execute()
	if err != nil {
		logFailure(err)
	}
	_ = logger.CloseFile()
	if err != nil {
		os.Exit(1)
	}
}

// logFailure records the failed command with its error code, so a log
// file from a scheduled task says what kind of failure ended the run.
func logFailure(err error) {
	logger.ErrorFields("command failed", map[string]interface{}{
		"code":  renewerrors.CodeOf(err),
		"error": err.Error(),
	})
}

func initLogging() {
	logger.Init(verbose)
	output.SetQuiet(jsonOutput)
	if logFile != "" {
		if err := logger.SetFile(logFile, logger.DefaultFileOptions); err != nil {
			output.Warn("Could not open log file: %v", err)
		}
	}
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging for debugging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.config/synorenew/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file, rotated by size")
}
