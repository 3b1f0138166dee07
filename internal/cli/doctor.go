package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ksyq12/synorenew/internal/acme"
	"github.com/ksyq12/synorenew/internal/config"
	"github.com/ksyq12/synorenew/internal/manifest"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/ksyq12/synorenew/internal/platform"
	"github.com/ksyq12/synorenew/internal/service"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system status and diagnose issues",
	Long: `Run diagnostic checks before scheduling renewals.

Checks:
  - Synology DSM release
  - acme.sh installation and version
  - synoservicectl presence
  - Configuration file validity
  - _archive/DEFAULT and _archive/INFO
  - Every certificate directory renew writes to
  - VPN Server keys directory

Examples:
  synorenew doctor
  synorenew doctor --json`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// Check statuses
const (
	statusSuccess = "success"
	statusWarning = "warning"
	statusError   = "error"
)

// CheckResult represents a single diagnostic check result
type CheckResult struct {
	Status  string `json:"status"` // "success", "warning", "error"
	Message string `json:"message"`
}

// DoctorReport contains all diagnostic results
type DoctorReport struct {
	SystemRequirements []CheckResult `json:"system_requirements"`
	Configuration      []CheckResult `json:"configuration"`
	Certificates       []CheckResult `json:"certificates"`
}

// Failed reports whether any check is an error
func (r *DoctorReport) Failed() bool {
	for _, group := range [][]CheckResult{r.SystemRequirements, r.Configuration, r.Certificates} {
		for _, c := range group {
			if c.Status == statusError {
				return true
			}
		}
	}
	return false
}

func runDoctor(cmd *cobra.Command, args []string) error {
	// An invalid config is reported as a check, not returned
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv(deps.Env.LookupEnv)

	// Run all checks
	report := &DoctorReport{}
	report.SystemRequirements = checkSystemRequirements(cfg)
	report.Configuration = checkConfiguration(cfg)
	report.Certificates = checkCertificates(cfg)

	// Output results
	if jsonOutput {
		if err := output.JSON(report); err != nil {
			return err
		}
	} else {
		displayDoctorResults(report)
	}

	if report.Failed() {
		return fmt.Errorf("doctor found problems")
	}
	return nil
}

func checkSystemRequirements(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	// DSM release
	if info, err := deps.PlatformDetector.Detect(); err == nil {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: info.String(),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusWarning,
			Message: fmt.Sprintf("%v, running on %s", err, platform.Platform()),
		})
	}

	// acme.sh
	client := acme.NewClient(cfg, deps.Executor)
	if client.IsInstalled() {
		version := "unknown"
		if v, err := client.Version(); err == nil {
			version = v
		}
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("acme.sh installed (%s)", version),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusError,
			Message: fmt.Sprintf("acme.sh not found at %s (set ACMESH_PATH)", client.Path()),
		})
	}

	// synoservicectl
	ctl := service.NewController(cfg.ServiceCtlPath, deps.Executor)
	if ctl.IsInstalled() {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("synoservicectl found (%s)", ctl.Path()),
		})
		for _, name := range cfg.ReloadServices {
			if running, _ := ctl.Status(name); running {
				results = append(results, CheckResult{
					Status:  statusSuccess,
					Message: fmt.Sprintf("%s is running", name),
				})
			} else {
				results = append(results, CheckResult{
					Status:  statusWarning,
					Message: fmt.Sprintf("%s is not running, renew will still try to reload it", name),
				})
			}
		}
	} else {
		results = append(results, CheckResult{
			Status:  statusError,
			Message: fmt.Sprintf("synoservicectl not found at %s", ctl.Path()),
		})
	}

	return results
}

func checkConfiguration(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	// Check config file exists
	path := configPath
	if path == "" {
		var err error
		if path, err = config.ConfigPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			// Use ~ notation for display
			displayPath := path
			if home, ok := deps.Env.LookupEnv("HOME"); ok && home != "" {
				displayPath = strings.Replace(path, home, "~", 1)
			}
			results = append(results, CheckResult{
				Status:  statusSuccess,
				Message: fmt.Sprintf("Config file exists (%s)", displayPath),
			})
		} else {
			results = append(results, CheckResult{
				Status:  statusWarning,
				Message: "Config file not found, using defaults",
			})
		}
	}

	if err := cfg.Validate(); err != nil {
		results = append(results, CheckResult{
			Status:  statusError,
			Message: err.Error(),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: "Configuration valid",
		})
	}

	return results
}

func checkCertificates(cfg *config.Config) []CheckResult {
	results := []CheckResult{}

	resolved, err := manifest.Resolve(cfg, cfg.VPN.KeysDir)
	if err != nil {
		return append(results, CheckResult{
			Status:  statusError,
			Message: err.Error(),
		})
	}
	results = append(results, CheckResult{
		Status:  statusSuccess,
		Message: fmt.Sprintf("Default certificate %s listed in INFO (%d services)", resolved.ID, len(resolved.Cert.Services)),
	})

	for _, t := range resolved.Targets {
		if !t.Kind.Distributed() {
			continue
		}
		if _, err := os.Stat(t.Dir); err != nil {
			results = append(results, CheckResult{
				Status:  statusError,
				Message: fmt.Sprintf("%s: %s missing", t.Name, t.Dir),
			})
			continue
		}
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("%s: %s", t.Name, t.Dir),
		})
	}

	// VPN Server is optional
	if _, err := os.Stat(cfg.VPN.KeysDir); err == nil {
		results = append(results, CheckResult{
			Status:  statusSuccess,
			Message: fmt.Sprintf("VPN Server keys: %s", cfg.VPN.KeysDir),
		})
	} else {
		results = append(results, CheckResult{
			Status:  statusWarning,
			Message: fmt.Sprintf("VPN Server not installed (%s not found)", cfg.VPN.KeysDir),
		})
	}

	return results
}

func displayDoctorResults(report *DoctorReport) {
	// System requirements
	output.Print("Checking system requirements...")
	for _, check := range report.SystemRequirements {
		displayCheck(check)
	}
	output.Print("")

	// Configuration
	output.Print("Checking configuration...")
	for _, check := range report.Configuration {
		displayCheck(check)
	}
	output.Print("")

	output.Print("Checking certificates...")
	for _, check := range report.Certificates {
		displayCheck(check)
	}
}

func displayCheck(check CheckResult) {
	switch check.Status {
	case statusSuccess:
		output.Success("%s", check.Message)
	case statusWarning:
		output.Warn("%s", check.Message)
	case statusError:
		output.Error("%s", check.Message)
	}
}
