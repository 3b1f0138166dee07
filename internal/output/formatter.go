package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	stepColor    = color.New(color.Faint)
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
	quiet  bool
)

// SetWriter redirects all output. nil restores os.Stdout.
func SetWriter(w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetErrWriter redirects warnings and errors printed in quiet mode.
// nil restores os.Stderr.
func SetErrWriter(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	errOut = w
}

// Writer returns the current output destination, for prompts.
func Writer() io.Writer {
	return out
}

// SetQuiet suppresses progress lines (Info, Step) and moves Warn and Error
// to stderr, so that JSON mode prints exactly one document on stdout.
func SetQuiet(q bool) {
	quiet = q
}

// JSON outputs data as JSON
func JSON(data interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table outputs data as a formatted table
func Table(headers []string, rows [][]string) {
	if len(headers) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	line := func(cells []string) {
		padded := make([]string, len(headers))
		for i := range headers {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			padded[i] = fmt.Sprintf("%-*s", widths[i], cell)
		}
		fmt.Fprintln(out, strings.TrimRight(strings.Join(padded, "  "), " "))
	}

	line(headers)
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	line(sep)
	for _, row := range rows {
		line(row)
	}
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	_, _ = successColor.Fprintf(out, "✓ "+format+"\n", args...)
}

// Error prints an error message
func Error(format string, args ...interface{}) {
	_, _ = errorColor.Fprintf(diag(), "✗ "+format+"\n", args...)
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	_, _ = warnColor.Fprintf(diag(), "! "+format+"\n", args...)
}

func diag() io.Writer {
	if quiet {
		return errOut
	}
	return out
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	if quiet {
		return
	}
	_, _ = infoColor.Fprintf(out, "→ "+format+"\n", args...)
}

// Step prints a workflow progress line indented by depth:
//
//	> BACKUP: /usr/syno/etc/certificate/_archive/Ab12cD -> /tmp/acme-renew/...
//	  > copy: cert.pem
func Step(depth int, format string, args ...interface{}) {
	if quiet {
		return
	}
	prefix := strings.Repeat("  ", depth) + "> "
	if depth == 0 {
		_, _ = infoColor.Fprintf(out, prefix+format+"\n", args...)
		return
	}
	_, _ = stepColor.Fprintf(out, prefix+format+"\n", args...)
}

// Print prints a plain message
func Print(format string, args ...interface{}) {
	fmt.Fprintf(out, format+"\n", args...)
}
