package cli

import (
	"errors"
	"strings"

	"github.com/ksyq12/synorenew/internal/config"
	"github.com/ksyq12/synorenew/internal/executor"
	"github.com/ksyq12/synorenew/internal/platform"
)

// MockConfigLoader is a test double for ConfigLoader
type MockConfigLoader struct {
	Cfg       *config.Config
	LoadErr   error
	SaveErr   error
	LoadPaths []string
	SaveCalls int
	SavePath  string
}

func (m *MockConfigLoader) Load(path string) (*config.Config, error) {
	m.LoadPaths = append(m.LoadPaths, path)
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	if m.Cfg == nil {
		m.Cfg = config.New()
	}
	return m.Cfg, nil
}

func (m *MockConfigLoader) Save(cfg *config.Config, path string) error {
	m.SaveCalls++
	m.SavePath = path
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Cfg = cfg
	return nil
}

// MockPlatformDetector is a test double for PlatformDetector
type MockPlatformDetector struct {
	Info *platform.DSMInfo
	Err  error
}

func (m *MockPlatformDetector) Detect() (*platform.DSMInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Info != nil {
		return m.Info, nil
	}
	return &platform.DSMInfo{
		Major:          "6",
		Minor:          "2",
		ProductVersion: "6.2.2",
		Build:          "24922",
		SmallFix:       "3",
	}, nil
}

// MockRootChecker is a test double for RootChecker
type MockRootChecker struct {
	IsRoot bool
	Calls  int
}

func (m *MockRootChecker) RequireRoot() error {
	m.Calls++
	if !m.IsRoot {
		return errRootRequired
	}
	return nil
}

// MockStdinReader is a test double for StdinReader
type MockStdinReader struct {
	Input string
	pos   int
}

func (m *MockStdinReader) ReadString(delim byte) (string, error) {
	if m.pos >= len(m.Input) {
		return "", errors.New("EOF")
	}
	idx := strings.IndexByte(m.Input[m.pos:], delim)
	if idx == -1 {
		result := m.Input[m.pos:]
		m.pos = len(m.Input)
		return result, nil
	}
	result := m.Input[m.pos : m.pos+idx+1]
	m.pos += idx + 1
	return result, nil
}

// MockEnv is a test double for Env
type MockEnv map[string]string

func (m MockEnv) LookupEnv(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// MockDependenciesBuilder helps create mock dependencies for tests
type MockDependenciesBuilder struct {
	deps *Dependencies
}

// NewMockDeps creates a new MockDependenciesBuilder with sensible defaults
func NewMockDeps() *MockDependenciesBuilder {
	return &MockDependenciesBuilder{
		deps: &Dependencies{
			ConfigLoader:     &MockConfigLoader{Cfg: config.New()},
			PlatformDetector: &MockPlatformDetector{},
			Executor:         &executor.MockExecutor{},
			RootChecker:      &MockRootChecker{IsRoot: true},
			StdinReader:      &MockStdinReader{Input: "y\n"},
			Env:              MockEnv{},
		},
	}
}

// WithConfig sets the config for the mock
func (b *MockDependenciesBuilder) WithConfig(cfg *config.Config) *MockDependenciesBuilder {
	b.deps.ConfigLoader = &MockConfigLoader{Cfg: cfg}
	return b
}

// WithConfigLoader sets a custom config loader
func (b *MockDependenciesBuilder) WithConfigLoader(loader ConfigLoader) *MockDependenciesBuilder {
	b.deps.ConfigLoader = loader
	return b
}

// WithExecutor sets the command executor
func (b *MockDependenciesBuilder) WithExecutor(exec executor.CommandExecutor) *MockDependenciesBuilder {
	b.deps.Executor = exec
	return b
}

// WithRootAccess sets whether root access is available
func (b *MockDependenciesBuilder) WithRootAccess(isRoot bool) *MockDependenciesBuilder {
	b.deps.RootChecker = &MockRootChecker{IsRoot: isRoot}
	return b
}

// WithStdinInput sets the stdin input for the mock
func (b *MockDependenciesBuilder) WithStdinInput(input string) *MockDependenciesBuilder {
	b.deps.StdinReader = &MockStdinReader{Input: input}
	return b
}

// WithEnv sets the environment variables the commands see
func (b *MockDependenciesBuilder) WithEnv(env map[string]string) *MockDependenciesBuilder {
	b.deps.Env = MockEnv(env)
	return b
}

// WithPlatformInfo sets the detected DSM release
func (b *MockDependenciesBuilder) WithPlatformInfo(info *platform.DSMInfo) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Info: info}
	return b
}

// WithPlatformError sets an error for platform detection
func (b *MockDependenciesBuilder) WithPlatformError(err error) *MockDependenciesBuilder {
	b.deps.PlatformDetector = &MockPlatformDetector{Err: err}
	return b
}

// Build returns the configured Dependencies
func (b *MockDependenciesBuilder) Build() *Dependencies {
	return b.deps
}

// errRootRequired is the sentinel error for root privilege check
var errRootRequired = errors.New("this operation requires root privileges. Please run with sudo")
