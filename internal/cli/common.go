package cli

import (
	"fmt"
	"strings"

	"github.com/ksyq12/synorenew/internal/acme"
	"github.com/ksyq12/synorenew/internal/config"
	"github.com/ksyq12/synorenew/internal/output"
	"github.com/ksyq12/synorenew/internal/renew"
	"github.com/ksyq12/synorenew/internal/service"
)

// loadConfig loads the config file, applies environment overrides and
// validates the result
func loadConfig() (*config.Config, error) {
	cfg, err := deps.ConfigLoader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.ApplyEnv(deps.Env.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newRenewer wires the renewal workflow to the real acme.sh and
// synoservicectl through the injected executor
func newRenewer(cfg *config.Config) *renew.Renewer {
	return renew.New(
		cfg,
		acme.NewClient(cfg, deps.Executor),
		service.NewController(cfg.ServiceCtlPath, deps.Executor),
	)
}

// flagOrEnv returns the flag value when set, otherwise the environment variable
func flagOrEnv(flag, key string) string {
	if flag != "" {
		return flag
	}
	v, _ := deps.Env.LookupEnv(key)
	return strings.TrimSpace(v)
}

// outputResult handles JSON or human-readable output
func outputResult(data interface{}, successMsg string, args ...interface{}) error {
	if jsonOutput {
		return output.JSON(data)
	}
	output.Success(successMsg, args...)
	return nil
}

// validateDomain checks if domain is valid
func validateDomain(domain string) error {
	if domain == "" {
		return fmt.Errorf("domain cannot be empty")
	}
	if strings.ContainsAny(domain, " \t/") {
		return fmt.Errorf("domain cannot contain spaces or slashes")
	}
	if strings.HasPrefix(domain, "-") || strings.HasSuffix(domain, "-") {
		return fmt.Errorf("domain cannot start or end with hyphen")
	}
	return nil
}

// yesNo renders a bool for table output
func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
