//go:build integration

package integration

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ksyq12/synorenew/internal/acme"
	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/executor"
	"github.com/ksyq12/synorenew/internal/renew"
	"github.com/ksyq12/synorenew/internal/service"
	"github.com/ksyq12/synorenew/internal/testutil"
)

// fakeAcmeSh writes $CERT_CONTENT to every output file it is asked for.
const fakeAcmeSh = `#!/bin/sh
if [ "$1" = "--version" ]; then
  echo "https://github.com/acmesh-official/acme.sh"
  echo "v3.0.7"
  exit 0
fi
if [ -n "$ACME_FAIL" ]; then
  echo "Verify error: $ACME_FAIL"
  exit 1
fi
while [ $# -gt 0 ]; do
  case "$1" in
    --cert-file|--key-file|--fullchain-file|--ca-file)
      printf '%s' "$CERT_CONTENT" > "$2"
      shift ;;
  esac
  shift
done
`

// fakeServiceCtl appends its arguments to $LOG and fails for $FAIL_SERVICE.
const fakeServiceCtl = `#!/bin/sh
echo "$*" >> "%s"
if [ "$2" = "%s" ]; then
  echo "failed to $1 $2"
  exit 1
fi
`

type rig struct {
	a       *testutil.Appliance
	ctlLog  string
	renewer *renew.Renewer
}

// setupRig writes the fake tools under the appliance and wires the real
// executor to them. failService makes synoservicectl fail for that name.
func setupRig(t *testing.T, content, acmeFail, failService string) *rig {
	t.Helper()

	a := testutil.NewAppliance(t)
	bin := filepath.Join(a.Base, "bin")
	if err := os.MkdirAll(bin, 0755); err != nil {
		t.Fatalf("Failed to create bin directory: %v", err)
	}

	acmePath := filepath.Join(bin, "acme.sh")
	if err := os.WriteFile(acmePath, []byte(fakeAcmeSh), 0755); err != nil {
		t.Fatalf("Failed to write acme.sh: %v", err)
	}
	ctlLog := filepath.Join(a.Base, "servicectl.log")
	ctlPath := filepath.Join(bin, "synoservicectl")
	script := strings.Replace(strings.Replace(fakeServiceCtl, "%s", ctlLog, 1), "%s", failService, 1)
	if err := os.WriteFile(ctlPath, []byte(script), 0755); err != nil {
		t.Fatalf("Failed to write synoservicectl: %v", err)
	}

	cfg := a.Config
	cfg.AcmeSh.Path = acmePath
	cfg.AcmeSh.DNSSleep = 0
	cfg.AcmeSh.Env = map[string]string{"CERT_CONTENT": content}
	if acmeFail != "" {
		cfg.AcmeSh.Env["ACME_FAIL"] = acmeFail
	}
	cfg.ServiceCtlPath = ctlPath

	exec := executor.NewSystemExecutor()
	return &rig{
		a:       a,
		ctlLog:  ctlLog,
		renewer: renew.New(cfg, acme.NewClient(cfg, exec), service.NewController(ctlPath, exec)),
	}
}

func (r *rig) serviceCalls(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(r.ctlLog)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatalf("Failed to read servicectl log: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestRenewIntegration(t *testing.T) {
	r := setupRig(t, "NEW", "", "")

	res, err := r.renewer.Run(renew.Options{Domain: "nas.example.com", DNSProvider: "dns_cf"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.State != renew.StateDone {
		t.Errorf("State = %s, want DONE", res.State)
	}

	testutil.RequireBundle(t, r.a.DefaultDir(), "NEW")
	for _, dir := range r.a.StandardDirs {
		testutil.RequireBundle(t, dir, "NEW")
	}
	for _, dir := range r.a.PackageDirs {
		testutil.RequireBundle(t, dir, "PKG")
	}
	testutil.RequireFiles(t, r.a.Config.VPN.KeysDir, "NEW", testutil.VPNNames...)
	testutil.RequireFiles(t, r.a.Config.VPN.KeysDir, "VPNOLD", "dh.pem", "ta.key")

	calls := r.serviceCalls(t)
	want := []string{"--reload nginx", "--restart pkgctl-VPNCenter"}
	if strings.Join(calls, "|") != strings.Join(want, "|") {
		t.Errorf("synoservicectl calls = %v, want %v", calls, want)
	}

	if _, err := os.Stat(r.a.Config.TempRoot); err == nil {
		entries, _ := os.ReadDir(r.a.Config.TempRoot)
		if len(entries) != 0 {
			t.Errorf("temporary files left behind: %v", entries)
		}
	}
}

func TestRenewIssueFailureIntegration(t *testing.T) {
	r := setupRig(t, "NEW", "DNS problem", "")

	_, err := r.renewer.Run(renew.Options{Domain: "nas.example.com"})
	if !errors.Is(err, renewerrors.ErrExecFailed) {
		t.Fatalf("Run() error = %v, want ErrExecFailed", err)
	}
	if !strings.Contains(err.Error(), "DNS problem") {
		t.Errorf("error does not carry acme.sh output: %v", err)
	}

	testutil.RequireBundle(t, r.a.DefaultDir(), "OLD")
	for _, dir := range r.a.StandardDirs {
		testutil.RequireBundle(t, dir, "OLD")
	}
	testutil.RequireFiles(t, r.a.Config.VPN.KeysDir, "VPNOLD", testutil.VPNNames...)
}

func TestRenewActivationFailureIntegration(t *testing.T) {
	r := setupRig(t, "NEW", "", "pkgctl-VPNCenter")

	res, err := r.renewer.Run(renew.Options{Domain: "nas.example.com"})
	if !errors.Is(err, renewerrors.ErrExecFailed) {
		t.Fatalf("Run() error = %v, want ErrExecFailed", err)
	}
	if !res.RolledBack {
		t.Error("RolledBack = false, want true")
	}
	// the restart is repeated during rollback and fails again
	if !errors.Is(err, renewerrors.ErrRollbackFailed) {
		t.Errorf("Run() error = %v, want ErrRollbackFailed too", err)
	}

	testutil.RequireBundle(t, r.a.DefaultDir(), "OLD")
	for _, dir := range r.a.StandardDirs {
		testutil.RequireBundle(t, dir, "OLD")
	}
	testutil.RequireFiles(t, r.a.Config.VPN.KeysDir, "VPNOLD", testutil.VPNNames...)
}
