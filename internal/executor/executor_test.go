package executor

import (
	"errors"
	"strings"
	"testing"
)

func TestSystemExecutor_Execute(t *testing.T) {
	exec := NewSystemExecutor()

	t.Run("echo command", func(t *testing.T) {
		output, err := exec.Execute("echo", "hello")
		if err != nil {
			t.Fatalf("Execute failed: %v", err)
		}
		if string(output) != "hello\n" {
			t.Errorf("expected 'hello\\n', got '%s'", string(output))
		}
	})

	t.Run("stderr is captured", func(t *testing.T) {
		output, err := exec.Execute("sh", "-c", "echo oops >&2; exit 3")
		if err == nil {
			t.Fatal("expected error for non-zero exit")
		}
		if !strings.Contains(string(output), "oops") {
			t.Errorf("expected stderr in output, got '%s'", string(output))
		}
		if code := ExitCode(err); code != 3 {
			t.Errorf("expected exit code 3, got %d", code)
		}
	})

	t.Run("nonexistent command", func(t *testing.T) {
		_, err := exec.Execute("nonexistent-command-xyz-12345")
		if err == nil {
			t.Error("expected error for nonexistent command")
		}
		if code := ExitCode(err); code != -1 {
			t.Errorf("expected exit code -1, got %d", code)
		}
	})
}

func TestSystemExecutor_ExecuteEnv(t *testing.T) {
	exec := NewSystemExecutor()

	t.Setenv("SYNORENEW_INHERITED", "from-parent")
	output, err := exec.ExecuteEnv([]string{"CF_Token=secret"}, "sh", "-c", "echo $CF_Token $SYNORENEW_INHERITED")
	if err != nil {
		t.Fatalf("ExecuteEnv failed: %v", err)
	}
	if string(output) != "secret from-parent\n" {
		t.Errorf("unexpected output '%s'", string(output))
	}
}

func TestSystemExecutor_LookPath(t *testing.T) {
	exec := NewSystemExecutor()

	t.Run("find sh", func(t *testing.T) {
		path, err := exec.LookPath("sh")
		if err != nil {
			t.Fatalf("LookPath failed: %v", err)
		}
		if path == "" {
			t.Error("expected non-empty path")
		}
	})

	t.Run("nonexistent command", func(t *testing.T) {
		_, err := exec.LookPath("nonexistent-command-xyz-12345")
		if err == nil {
			t.Error("expected error for nonexistent command")
		}
	})

	t.Run("nonexistent absolute path", func(t *testing.T) {
		_, err := exec.LookPath("/nonexistent/acme.sh")
		if err == nil {
			t.Error("expected error for missing absolute path")
		}
	})
}

func TestExitCode(t *testing.T) {
	if code := ExitCode(nil); code != 0 {
		t.Errorf("expected 0 for nil error, got %d", code)
	}
	if code := ExitCode(errors.New("plain")); code != -1 {
		t.Errorf("expected -1 for plain error, got %d", code)
	}
}

func TestMockExecutor_Execute(t *testing.T) {
	t.Run("default behavior", func(t *testing.T) {
		mock := &MockExecutor{}
		output, err := mock.Execute("test", "arg1", "arg2")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if string(output) != "" {
			t.Errorf("expected empty output, got '%s'", string(output))
		}
		if len(mock.Calls) != 1 {
			t.Errorf("expected 1 call, got %d", len(mock.Calls))
		}
		if mock.Calls[0].Name != "test" {
			t.Errorf("expected command 'test', got '%s'", mock.Calls[0].Name)
		}
	})

	t.Run("env is recorded", func(t *testing.T) {
		mock := &MockExecutor{}
		_, _ = mock.ExecuteEnv([]string{"A=1"}, "acme.sh", "--issue")
		if len(mock.Calls) != 1 || len(mock.Calls[0].Env) != 1 || mock.Calls[0].Env[0] != "A=1" {
			t.Errorf("env not recorded: %+v", mock.Calls)
		}
	})

	t.Run("error case", func(t *testing.T) {
		mock := &MockExecutor{
			ExecuteFunc: func(name string, args ...string) ([]byte, error) {
				return []byte("error output"), errors.New("mock error")
			},
		}
		output, err := mock.Execute("test")
		if err == nil {
			t.Error("expected error")
		}
		if string(output) != "error output" {
			t.Errorf("expected 'error output', got '%s'", string(output))
		}
	})

	t.Run("CallsTo filters by name", func(t *testing.T) {
		mock := &MockExecutor{}
		_, _ = mock.Execute("synoservicectl", "--reload", "nginx")
		_, _ = mock.Execute("acme.sh", "--issue")
		_, _ = mock.Execute("synoservicectl", "--restart", "pkgctl-VPNCenter")
		if got := len(mock.CallsTo("synoservicectl")); got != 2 {
			t.Errorf("expected 2 calls, got %d", got)
		}
	})
}

func TestMockExecutor_LookPath(t *testing.T) {
	t.Run("default behavior", func(t *testing.T) {
		mock := &MockExecutor{}
		path, err := mock.LookPath("/usr/local/share/acme.sh/acme.sh")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if path != "/usr/local/share/acme.sh/acme.sh" {
			t.Errorf("unexpected path '%s'", path)
		}
	})

	t.Run("custom function", func(t *testing.T) {
		mock := &MockExecutor{
			LookPathFunc: func(file string) (string, error) {
				return "", errors.New("not found")
			},
		}
		if _, err := mock.LookPath("acme.sh"); err == nil {
			t.Error("expected error for unknown command")
		}
	})
}
