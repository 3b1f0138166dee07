package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/logger"
)

func TestLogFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"exec error", renewerrors.Exec("acme.sh --issue", nil, errors.New("exit status 1")), "code=EXEC"},
		{"wrapped rollback", fmt.Errorf("run: %w", renewerrors.Wrap(renewerrors.ErrCodeRollback, "rollback failed", nil)), "code=ROLLBACK"},
		{"plain error", errors.New("boom"), "code=INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger.SetOutput(&buf)
			defer logger.SetOutput(io.Discard)

			logFailure(tt.err)

			line := buf.String()
			if !strings.Contains(line, "[ERROR]") || !strings.Contains(line, "command failed") {
				t.Errorf("unexpected log line: %q", line)
			}
			if !strings.Contains(line, tt.want) {
				t.Errorf("log line %q does not contain %q", line, tt.want)
			}
		})
	}
}
