package cli

import (
	"os"

	"github.com/ksyq12/synorenew/internal/manifest"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/spf13/cobra"
)

var servicesCmd = &cobra.Command{
	Use:     "services",
	Aliases: []string{"ls"},
	Short:   "List where the default certificate is installed",
	Long: `List the services that use the default certificate, as recorded in
_archive/INFO, with the directory each one reads it from.

Kinds:
  default   the certificate's own archive copy
  standard  DSM services; renew replaces their files
  package   packages that manage their own copy; renew leaves them alone
  vpn       VPN Server; renew writes renamed files

Examples:
  synorenew services
  synorenew ls --json`,
	Args: cobra.NoArgs,
	RunE: runServices,
}

func init() {
	rootCmd.AddCommand(servicesCmd)
}

type serviceListItem struct {
	Name   string        `json:"name"`
	Kind   manifest.Kind `json:"kind"`
	Dir    string        `json:"dir"`
	Exists bool          `json:"exists"`
}

type serviceList struct {
	CertID   string            `json:"cert_id"`
	Desc     string            `json:"desc"`
	Services []serviceListItem `json:"services"`
}

func runServices(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	resolved, err := manifest.Resolve(cfg, cfg.VPN.KeysDir)
	if err != nil {
		return err
	}

	list := serviceList{
		CertID:   resolved.ID,
		Desc:     resolved.Cert.Desc,
		Services: make([]serviceListItem, 0, len(resolved.Targets)),
	}
	for _, t := range resolved.Targets {
		_, statErr := os.Stat(t.Dir)
		list.Services = append(list.Services, serviceListItem{
			Name:   t.Name,
			Kind:   t.Kind,
			Dir:    t.Dir,
			Exists: statErr == nil,
		})
	}

	if jsonOutput {
		return output.JSON(list)
	}

	output.Info("Default certificate %s %s", list.CertID, list.Desc)

	// Build table
	headers := []string{"NAME", "KIND", "DIRECTORY", "EXISTS"}
	rows := make([][]string, 0, len(list.Services))
	for _, item := range list.Services {
		rows = append(rows, []string{
			item.Name,
			item.Kind.String(),
			item.Dir,
			yesNo(item.Exists),
		})
	}

	output.Table(headers, rows)
	return nil
}
