// Package service reloads and restarts DSM services through synoservicectl.
package service

import (
	"github.com/ksyq12/synorenew/internal/config"
	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/executor"
	"github.com/ksyq12/synorenew/internal/logger"
)

// Actions understood by synoservicectl.
const (
	ActionReload  = "--reload"
	ActionRestart = "--restart"
	ActionStatus  = "--status"
)

// Controller runs synoservicectl.
type Controller struct {
	path string
	exec executor.CommandExecutor
}

// NewController creates a controller for the synoservicectl binary at path.
func NewController(path string, exec executor.CommandExecutor) *Controller {
	if path == "" {
		path = config.DefaultServiceCtlPath
	}
	if exec == nil {
		exec = executor.NewSystemExecutor()
	}
	return &Controller{path: path, exec: exec}
}

// Path returns the synoservicectl binary.
func (c *Controller) Path() string {
	return c.path
}

// IsInstalled checks if synoservicectl is present
func (c *Controller) IsInstalled() bool {
	_, err := c.exec.LookPath(c.path)
	return err == nil
}

// Control runs synoservicectl <action> <name>.
func (c *Controller) Control(action, name string) error {
	logger.Debug("synoservicectl %s %s", action, name)
	output, err := c.exec.Execute(c.path, action, name)
	if err != nil {
		logger.ErrorFields("synoservicectl failed", map[string]interface{}{
			"action":    action,
			"service":   name,
			"exit_code": executor.ExitCode(err),
		})
		return renewerrors.Exec("synoservicectl "+action+" "+name, output, err)
	}
	return nil
}

// Reload reloads a service in place, e.g. nginx.
func (c *Controller) Reload(name string) error {
	return c.Control(ActionReload, name)
}

// Restart stops and starts a service, e.g. pkgctl-VPNCenter.
func (c *Controller) Restart(name string) error {
	return c.Control(ActionRestart, name)
}

// Status reports whether synoservicectl considers name running.
// A non-zero exit is treated as "not running", not as an error.
func (c *Controller) Status(name string) (bool, string) {
	output, err := c.exec.Execute(c.path, ActionStatus, name)
	return err == nil, string(output)
}
