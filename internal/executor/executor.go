package executor

import (
	"errors"
	"os"
	"os/exec"
)

// CommandExecutor is an interface for executing system commands
type CommandExecutor interface {
	// Execute runs a command with the given name and arguments and returns
	// its combined stdout/stderr
	Execute(name string, args ...string) ([]byte, error)

	// ExecuteEnv is Execute with extra KEY=VALUE entries appended to the
	// inherited environment
	ExecuteEnv(env []string, name string, args ...string) ([]byte, error)

	// LookPath searches for an executable in the directories named by the PATH.
	// Absolute paths are checked directly.
	LookPath(file string) (string, error)
}

// SystemExecutor implements CommandExecutor using os/exec
type SystemExecutor struct{}

// NewSystemExecutor creates a new SystemExecutor
func NewSystemExecutor() *SystemExecutor {
	return &SystemExecutor{}
}

// Execute runs a command and returns combined output
func (e *SystemExecutor) Execute(name string, args ...string) ([]byte, error) {
	return e.ExecuteEnv(nil, name, args...)
}

// ExecuteEnv runs a command with additional environment variables
func (e *SystemExecutor) ExecuteEnv(env []string, name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	return cmd.CombinedOutput()
}

// LookPath searches for an executable
func (e *SystemExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// ExitCode extracts the process exit status from an Execute error.
// It returns 0 for a nil error and -1 when the process never ran.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// MockExecutor is a mock implementation for testing
type MockExecutor struct {
	ExecuteFunc  func(name string, args ...string) ([]byte, error)
	LookPathFunc func(file string) (string, error)
	Calls        []CommandCall
}

// CommandCall records a command execution for verification
type CommandCall struct {
	Name string
	Args []string
	Env  []string
}

// Execute calls the mock function
func (m *MockExecutor) Execute(name string, args ...string) ([]byte, error) {
	return m.ExecuteEnv(nil, name, args...)
}

// ExecuteEnv records the environment and calls the mock function
func (m *MockExecutor) ExecuteEnv(env []string, name string, args ...string) ([]byte, error) {
	m.Calls = append(m.Calls, CommandCall{Name: name, Args: args, Env: env})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(name, args...)
	}
	return []byte(""), nil
}

// LookPath calls the mock function
func (m *MockExecutor) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return file, nil
}

// CallsTo returns the recorded calls for the named command
func (m *MockExecutor) CallsTo(name string) []CommandCall {
	var calls []CommandCall
	for _, c := range m.Calls {
		if c.Name == name {
			calls = append(calls, c)
		}
	}
	return calls
}
