package cli

import (
	"os"

	"github.com/ksyq12/synorenew/internal/config"
	"github.com/ksyq12/synorenew/internal/executor"
	"github.com/ksyq12/synorenew/internal/input"
	"github.com/ksyq12/synorenew/internal/platform"
)

// Dependencies aggregates all CLI external dependencies for testability
type Dependencies struct {
	ConfigLoader     ConfigLoader
	PlatformDetector PlatformDetector
	Executor         executor.CommandExecutor
	RootChecker      RootChecker
	StdinReader      StdinReader
	Env              Env
}

// ConfigLoader handles configuration loading and saving. An empty path
// means the default location.
type ConfigLoader interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config, path string) error
}

// PlatformDetector reports the DSM release
type PlatformDetector interface {
	Detect() (*platform.DSMInfo, error)
}

// RootChecker checks root privileges
type RootChecker interface {
	RequireRoot() error
}

// StdinReader reads from stdin
type StdinReader interface {
	ReadString(delim byte) (string, error)
}

// Env reads environment variables
type Env interface {
	LookupEnv(key string) (string, bool)
}

// Package-level dependencies (can be overridden for testing)
var deps = &Dependencies{
	ConfigLoader:     &realConfigLoader{},
	PlatformDetector: &realPlatformDetector{},
	Executor:         executor.NewSystemExecutor(),
	RootChecker:      &realRootChecker{},
	StdinReader:      input.NewStdinReader(),
	Env:              realEnv{},
}

// SetDeps replaces the package dependencies (for testing)
func SetDeps(d *Dependencies) {
	deps = d
}

// GetDeps returns the current dependencies (for testing)
func GetDeps() *Dependencies {
	return deps
}

// Real implementations that delegate to existing functions

type realConfigLoader struct{}

func (r *realConfigLoader) Load(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func (r *realConfigLoader) Save(cfg *config.Config, path string) error {
	if path == "" {
		return cfg.Save()
	}
	return cfg.SaveTo(path)
}

type realPlatformDetector struct{}

func (r *realPlatformDetector) Detect() (*platform.DSMInfo, error) {
	return platform.Detect()
}

type realRootChecker struct{}

func (r *realRootChecker) RequireRoot() error {
	if os.Geteuid() != 0 {
		return errRootRequired
	}
	return nil
}

type realEnv struct{}

func (realEnv) LookupEnv(key string) (string, bool) {
	return os.LookupEnv(key)
}
