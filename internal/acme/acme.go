package acme

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ksyq12/synorenew/internal/bundle"
	"github.com/ksyq12/synorenew/internal/config"
	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/executor"
	"github.com/ksyq12/synorenew/internal/logger"
)

// Request describes one certificate to issue.
type Request struct {
	Domain string
	// DNSProvider is an acme.sh dnsapi name such as dns_cf. Empty means
	// acme.sh picks the validation mode itself.
	DNSProvider string
	// OutputDir receives the bundle. It is cleared first.
	OutputDir string
}

// Client runs acme.sh.
type Client struct {
	path     string
	dnsSleep int
	env      map[string]string
	files    config.BundleFiles
	exec     executor.CommandExecutor
}

// NewClient creates a client from the acmesh and files sections of cfg.
func NewClient(cfg *config.Config, exec executor.CommandExecutor) *Client {
	if exec == nil {
		exec = executor.NewSystemExecutor()
	}
	return &Client{
		path:     cfg.AcmeSh.Path,
		dnsSleep: cfg.AcmeSh.DNSSleep,
		env:      cfg.AcmeSh.Env,
		files:    cfg.Files,
		exec:     exec,
	}
}

// Path returns the acme.sh executable the client runs.
func (c *Client) Path() string {
	return c.path
}

// IsInstalled checks if acme.sh is present and executable
func (c *Client) IsInstalled() bool {
	_, err := c.exec.LookPath(c.path)
	return err == nil
}

// Args builds the acme.sh argument list for req.
func (c *Client) Args(req Request) []string {
	args := []string{"--issue"}
	if req.DNSProvider != "" {
		args = append(args, "--dns", req.DNSProvider)
	}
	args = append(args,
		"-d", req.Domain,
		"--cert-file", filepath.Join(req.OutputDir, c.files.Cert),
		"--key-file", filepath.Join(req.OutputDir, c.files.Key),
		"--fullchain-file", filepath.Join(req.OutputDir, c.files.FullChain),
		"--ca-file", filepath.Join(req.OutputDir, c.files.CAChain),
		"--dnssleep", strconv.Itoa(c.dnsSleep),
		// renewals run on a schedule; never skip because the cert is still valid
		"--force",
	)
	return args
}

// Issue obtains a new bundle into req.OutputDir.
func (c *Client) Issue(req Request) error {
	if req.Domain == "" {
		return renewerrors.ErrDomainRequired
	}
	if !c.IsInstalled() {
		return renewerrors.FS(c.path, "acme.sh is not installed. Set ACMESH_PATH or acmesh.path", nil)
	}
	if err := bundle.ResetDir(req.OutputDir); err != nil {
		return err
	}

	args := c.Args(req)
	logger.DebugFields("running acme.sh", map[string]interface{}{
		"domain": req.Domain,
		"dns":    req.DNSProvider,
		"out":    req.OutputDir,
	})
	output, err := c.exec.ExecuteEnv(c.environ(), c.path, args...)
	if err != nil {
		logger.ErrorFields("acme.sh failed", map[string]interface{}{
			"domain":    req.Domain,
			"exit_code": executor.ExitCode(err),
		})
		return renewerrors.Exec("acme.sh --issue", output, err)
	}
	logger.Debug("acme.sh output:\n%s", strings.TrimSpace(string(output)))
	return nil
}

// Version returns the version line printed by acme.sh --version.
func (c *Client) Version() (string, error) {
	if !c.IsInstalled() {
		return "", renewerrors.FS(c.path, "acme.sh is not installed", nil)
	}
	output, err := c.exec.Execute(c.path, "--version")
	if err != nil {
		return "", renewerrors.Exec("acme.sh --version", output, err)
	}

	// the project URL comes first, the version last
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	version := strings.TrimSpace(lines[len(lines)-1])
	if version == "" {
		return "", fmt.Errorf("unexpected acme.sh --version output: %q", output)
	}
	return version, nil
}

func (c *Client) environ() []string {
	if len(c.env) == 0 {
		return nil
	}
	env := make([]string, 0, len(c.env))
	for k, v := range c.env {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env
}
