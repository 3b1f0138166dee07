package cli

import (
	"fmt"
	"os"

	"github.com/ksyq12/synorenew/internal/config"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var forceInit bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Long: `Print the configuration after defaults, the config file and
ACMESH_PATH are applied. Values under acmesh.env are not shown.

Examples:
  synorenew config show
  synorenew config show --json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file holding the defaults",
	Long: `Write the default configuration to the config file so it can be edited.

Examples:
  synorenew config init
  synorenew config init --config /volume1/scripts/synorenew.yaml --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite an existing config file")

	configCmd.AddCommand(configShowCmd, configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv(deps.Env.LookupEnv)

	if jsonOutput {
		return output.JSON(cfg)
	}

	// acmesh.env may hold provider credentials
	shown := *cfg
	shown.AcmeSh.Env = nil
	data, err := yaml.Marshal(&shown)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	output.Print("%s", string(data))
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
	}

	if err := deps.ConfigLoader.Save(config.New(), path); err != nil {
		return err
	}
	return outputResult(map[string]interface{}{
		"success": true,
		"path":    path,
	}, "Config written to %s", path)
}
