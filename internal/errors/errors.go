// Package errors provides standardized error types for the synorenew CLI tool.
//
// The errors package defines domain-specific error types that let the
// renewal workflow tell configuration mistakes, external command failures
// and filesystem problems apart, and lets the CLI report them consistently.
//
// # Error Types
//
// RenewError is the primary error type, containing:
//   - Code: Categorizes the error (CONFIG, EXEC, FILESYSTEM, etc.)
//   - Message: Human-readable error description
//   - Path: The file or directory involved (if applicable)
//   - Output: Captured stdout/stderr of a failed external command
//   - Err: The underlying wrapped error (if any)
//
// # Sentinel Errors
//
// Common error scenarios have pre-defined sentinel errors:
//
//	errors.ErrDomainRequired  // DOMAIN was not provided
//	errors.ErrExecFailed      // acme.sh or synoservicectl exited non-zero
//	errors.ErrTargetMissing   // a distribution directory does not exist
//	errors.ErrManifestInvalid // _archive/INFO could not be used
//
// # Usage
//
//	// External command failure, keeps the combined output
//	return errors.Exec("acme.sh --issue", output, err)
//
//	// Filesystem failure on a specific path
//	return errors.FS(path, "failed to copy certificate", err)
//
//	// Wrapping an underlying error
//	return errors.Wrap(errors.ErrCodeConfig, "failed to load config", err)
//
// # Error Checking
//
// Sentinels match by code, so errors.Is works across wrapping:
//
//	if errors.Is(err, errors.ErrExecFailed) {
//	    // show the command output to the user
//	}
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode categorizes errors for programmatic handling.
type ErrorCode string

// Error codes for different error categories.
const (
	ErrCodeConfig     ErrorCode = "CONFIG"     // Missing or invalid input
	ErrCodeExec       ErrorCode = "EXEC"       // External command exited non-zero
	ErrCodeFilesystem ErrorCode = "FILESYSTEM" // Expected file or directory problem
	ErrCodeManifest   ErrorCode = "MANIFEST"   // DEFAULT/INFO unreadable or inconsistent
	ErrCodeRollback   ErrorCode = "ROLLBACK"   // Restoring the backup bundle failed
	ErrCodeInternal   ErrorCode = "INTERNAL"   // Internal/unexpected error
)

// RenewError represents a structured error with context about the operation.
type RenewError struct {
	Code    ErrorCode // Error category
	Message string    // Human-readable message
	Path    string    // File or directory (if applicable)
	Output  string    // Captured command output (if any)
	Err     error     // Underlying error (if any)
}

// Error implements the error interface.
func (e *RenewError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		if e.Message != "" {
			b.WriteString(": ")
		}
		b.WriteString(e.Err.Error())
	}
	if out := strings.TrimSpace(e.Output); out != "" {
		b.WriteString("\n")
		b.WriteString(out)
	}
	return b.String()
}

// Unwrap returns the underlying error for error chain traversal.
func (e *RenewError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches this error.
// Comparison is based on error code.
func (e *RenewError) Is(target error) bool {
	t, ok := target.(*RenewError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Sentinel errors for common error scenarios.
var (
	// ErrDomainRequired indicates no domain was given to renew.
	ErrDomainRequired = &RenewError{Code: ErrCodeConfig, Message: "domain required"}

	// ErrConfigInvalid indicates the configuration failed validation.
	ErrConfigInvalid = &RenewError{Code: ErrCodeConfig, Message: "invalid configuration"}

	// ErrExecFailed indicates an external command exited non-zero.
	ErrExecFailed = &RenewError{Code: ErrCodeExec, Message: "command failed"}

	// ErrTargetMissing indicates a file or directory the workflow depends on is absent.
	ErrTargetMissing = &RenewError{Code: ErrCodeFilesystem, Message: "path not found"}

	// ErrManifestInvalid indicates DEFAULT or INFO could not be used.
	ErrManifestInvalid = &RenewError{Code: ErrCodeManifest, Message: "invalid certificate manifest"}

	// ErrRollbackFailed indicates the backup bundle could not be restored.
	ErrRollbackFailed = &RenewError{Code: ErrCodeRollback, Message: "rollback failed"}
)

// DomainRequired creates the error shown when renew runs without a domain.
func DomainRequired(hint string) error {
	return &RenewError{
		Code:    ErrCodeConfig,
		Message: "DOMAIN required",
		Output:  hint,
	}
}

// Config creates a configuration error with a custom message.
func Config(msg string) error {
	return &RenewError{
		Code:    ErrCodeConfig,
		Message: msg,
	}
}

// Exec creates an error for a failed external command, keeping its output.
func Exec(command string, output []byte, err error) error {
	return &RenewError{
		Code:    ErrCodeExec,
		Message: command + " failed",
		Output:  string(output),
		Err:     err,
	}
}

// FS creates a filesystem error for path.
func FS(path, msg string, err error) error {
	return &RenewError{
		Code:    ErrCodeFilesystem,
		Message: msg,
		Path:    path,
		Err:     err,
	}
}

// Manifest creates a manifest error.
func Manifest(path, msg string, err error) error {
	return &RenewError{
		Code:    ErrCodeManifest,
		Message: msg,
		Path:    path,
		Err:     err,
	}
}

// Wrap creates an error with the specified code, message, and underlying error.
func Wrap(code ErrorCode, msg string, err error) error {
	return &RenewError{
		Code:    code,
		Message: msg,
		Err:     err,
	}
}

// CodeOf returns the code of the first RenewError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) ErrorCode {
	var re *RenewError
	if errors.As(err, &re) {
		return re.Code
	}
	return ErrCodeInternal
}

// Is reports whether any error in err's chain matches target.
// This is a re-export of errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's chain that matches target.
// This is a re-export of errors.As for convenience.
var As = errors.As

// Configf is Config with fmt-style formatting.
func Configf(format string, args ...interface{}) error {
	return Config(fmt.Sprintf(format, args...))
}
