// Package renew runs the certificate renewal workflow.
//
// A run backs up the default certificate bundle, has acme.sh issue a new
// one, copies it into every non-package service directory and the VPNCenter
// keys directory, then reloads nginx and restarts VPNCenter. Any failure
// after the backup restores the backup to the directories that were written
// and re-runs the activations that had been attempted. Temporary
// directories are removed whatever the outcome.
package renew

import (
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/ksyq12/synorenew/internal/acme"
	"github.com/ksyq12/synorenew/internal/bundle"
	"github.com/ksyq12/synorenew/internal/config"
	renewerrors "github.com/ksyq12/synorenew/internal/errors"
	"github.com/ksyq12/synorenew/internal/logger"
	"github.com/ksyq12/synorenew/internal/manifest"
	"github.com/ksyq12/synorenew/internal/output"
)

// DNSAPIHint is shown when renew is started without a domain.
const DNSAPIHint = `Set DOMAIN (or --domain) to the certificate's domain name.
Set DNS_PROVIDER (or --dns) to an acme.sh DNS API name such as dns_cf, and
export the provider's credentials; see https://github.com/Neilpang/acme.sh/wiki/dnsapi`

// vpnSnapshotDir is where the VPNCenter keys are kept inside the backup.
const vpnSnapshotDir = "vpn"

// Issuer obtains a certificate bundle. *acme.Client satisfies it.
type Issuer interface {
	Issue(req acme.Request) error
}

// ServiceController reloads and restarts DSM services.
// *service.Controller satisfies it.
type ServiceController interface {
	Reload(name string) error
	Restart(name string) error
}

// Options are the inputs of one renewal.
type Options struct {
	Domain      string
	DNSProvider string
	// ArchiveBackup also stores the backup bundle durably. A path with an
	// archive extension is written as is; any other path is a directory
	// that receives certs-<stamp>-backup.tar.gz.
	ArchiveBackup string
}

// Result describes a finished run, successful or not.
type Result struct {
	RunID      string            `json:"run_id"`
	Domain     string            `json:"domain,omitempty"`
	Source     string            `json:"source,omitempty"`
	CertID     string            `json:"cert_id,omitempty"`
	State      State             `json:"state"`
	States     []State           `json:"states"`
	Targets    []manifest.Target `json:"targets"`
	VPN        bool              `json:"vpn_updated"`
	Activated  []string          `json:"activated"`
	Archive    string            `json:"archive,omitempty"`
	RolledBack bool              `json:"rolled_back"`
	Started    time.Time         `json:"started"`
	Duration   string            `json:"duration"`
}

// Renewer runs renewals against one appliance configuration.
type Renewer struct {
	cfg      *config.Config
	issuer   Issuer
	services ServiceController

	now   func() time.Time
	newID func() string
}

// New creates a Renewer.
func New(cfg *config.Config, issuer Issuer, services ServiceController) *Renewer {
	return &Renewer{
		cfg:      cfg,
		issuer:   issuer,
		services: services,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// activation is one service command issued during a run.
type activation struct {
	restart bool
	name    string
}

func (a activation) String() string {
	if a.restart {
		return "restart " + a.name
	}
	return "reload " + a.name
}

// run is the mutable state of one execution.
type run struct {
	res       *Result
	resolved  *manifest.Resolved
	backupDir string
	newDir    string
	backup    *bundle.Bundle

	// vpnSaved is set when the VPN keys were snapshotted with the backup.
	vpnSaved   bool
	vpnTouched bool
	touched    []manifest.Target
	attempted  []activation
}

// obtainFunc fills dir with the bundle to distribute.
type obtainFunc func(dir string) (*bundle.Bundle, error)

// Run renews the default certificate for opts.Domain. The returned Result
// is non-nil whenever the run got as far as starting.
func (r *Renewer) Run(opts Options) (*Result, error) {
	if opts.Domain == "" {
		return nil, renewerrors.DomainRequired(DNSAPIHint)
	}
	res := r.newResult()
	res.Domain = opts.Domain

	err := r.execute(res, opts.ArchiveBackup, func(dir string) (*bundle.Bundle, error) {
		output.Step(0, "ISSUE: %s", opts.Domain)
		req := acme.Request{Domain: opts.Domain, DNSProvider: opts.DNSProvider, OutputDir: dir}
		if err := r.issuer.Issue(req); err != nil {
			return nil, err
		}
		return bundle.Open(dir, r.cfg.BundleGlob)
	})
	return res, err
}

// Restore distributes an existing bundle, a directory or a backup archive,
// exactly as Run distributes a newly issued one, including the backup and
// rollback of the current certificates.
func (r *Renewer) Restore(src string) (*Result, error) {
	res := r.newResult()
	res.Source = src

	err := r.execute(res, "", func(dir string) (*bundle.Bundle, error) {
		output.Step(0, "LOAD: %s", src)
		if bundle.IsArchive(src) {
			return bundle.ExtractArchive(src, dir, r.cfg.BundleGlob)
		}
		return bundle.Backup(src, dir, r.cfg.BundleGlob)
	})
	return res, err
}

// SaveBackup writes the current default bundle to an archive without
// changing anything on the appliance.
func (r *Renewer) SaveBackup(dest string) (*Result, error) {
	res := r.newResult()
	defer logger.Clear()

	backupDir := r.cfg.BackupDir(res.Started)
	defer r.cleanup(backupDir)

	resolved, err := manifest.Resolve(r.cfg, r.cfg.VPN.KeysDir)
	if err != nil {
		return res, err
	}
	res.CertID = resolved.ID

	b, err := r.backupBundle(resolved, backupDir)
	if err != nil {
		return res, err
	}
	res.advance(StateBackedUp)

	if res.Archive, err = r.writeArchive(b, dest, res.Started); err != nil {
		return res, err
	}
	res.advance(StateDone)
	res.Duration = r.since(res.Started)
	return res, nil
}

func (r *Renewer) newResult() *Result {
	id := r.newID()
	logger.With("run", id)
	return &Result{
		RunID:     id,
		State:     StateStart,
		States:    []State{StateStart},
		Targets:   []manifest.Target{},
		Activated: []string{},
		Started:   r.now(),
	}
}

func (r *Renewer) since(t time.Time) string {
	return r.now().Sub(t).Round(time.Millisecond).String()
}

// execute is the workflow shared by Run and Restore.
func (r *Renewer) execute(res *Result, archive string, obtain obtainFunc) (err error) {
	defer logger.Clear()

	backupDir := r.cfg.BackupDir(res.Started)
	newDir := r.cfg.NewBundleDir(res.Started)
	// registered before anything is created
	defer r.cleanup(backupDir, newDir)

	logger.InfoFields("run started", map[string]interface{}{
		"domain": res.Domain,
		"source": res.Source,
		"backup": backupDir,
		"new":    newDir,
	})

	resolved, err := manifest.Resolve(r.cfg, r.cfg.VPN.KeysDir)
	if err != nil {
		return err
	}
	res.CertID = resolved.ID

	ru := &run{res: res, resolved: resolved, backupDir: backupDir, newDir: newDir}
	defer func() {
		if err != nil && res.State.rollbackNeeded() {
			err = r.rollback(ru, err)
			res.advance(StateDone)
		}
		res.Duration = r.since(res.Started)
	}()

	if err := r.takeBackup(ru); err != nil {
		return err
	}
	if archive != "" {
		if res.Archive, err = r.writeArchive(ru.backup, archive, res.Started); err != nil {
			return err
		}
	}

	fresh, err := obtain(newDir)
	if err != nil {
		return err
	}
	if err := r.checkComplete(fresh); err != nil {
		return err
	}
	res.advance(StateIssued)

	if err := r.distribute(ru, fresh); err != nil {
		return err
	}
	res.advance(StateDistributed)

	if err := r.activate(ru); err != nil {
		return err
	}
	res.advance(StateActivated)

	res.advance(StateDone)
	logger.Info("run finished")
	return nil
}

func (r *Renewer) takeBackup(ru *run) error {
	b, err := r.backupBundle(ru.resolved, ru.backupDir)
	if err != nil {
		return err
	}
	ru.backup = b

	saved, err := bundle.Snapshot(r.cfg.VPN.KeysDir, filepath.Join(ru.backupDir, vpnSnapshotDir))
	if err != nil {
		return err
	}
	ru.vpnSaved = saved
	ru.res.advance(StateBackedUp)
	return nil
}

func (r *Renewer) backupBundle(resolved *manifest.Resolved, dst string) (*bundle.Bundle, error) {
	src := r.cfg.ArchiveCertDir(resolved.ID)
	output.Step(0, "BACKUP: %s -> %s", src, dst)
	b, err := bundle.Backup(src, dst, r.cfg.BundleGlob)
	if err != nil {
		return nil, err
	}
	names, err := b.Files()
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		output.Step(1, "copy: %s", name)
	}
	return b, nil
}

func (r *Renewer) writeArchive(b *bundle.Bundle, dest string, started time.Time) (string, error) {
	if !bundle.IsArchive(dest) {
		dest = filepath.Join(dest, "certs-"+started.Format(config.StampLayout)+"-backup.tar.gz")
	}
	output.Step(0, "ARCHIVE: %s", dest)
	if err := bundle.WriteArchive(b, dest); err != nil {
		return "", err
	}
	return dest, nil
}

// checkComplete fails when a bundle file named in the config is missing,
// before anything live is touched.
func (r *Renewer) checkComplete(b *bundle.Bundle) error {
	names, err := b.Files()
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(names))
	for _, n := range names {
		have[n] = true
	}
	for _, want := range r.cfg.Files.Names() {
		if !have[want] {
			return renewerrors.FS(b.Path(want), "bundle is incomplete", nil)
		}
	}
	return nil
}

func (r *Renewer) distribute(ru *run, b *bundle.Bundle) error {
	output.Step(0, "DISTRIBUTE")
	for _, t := range ru.resolved.Targets {
		if !t.Kind.Distributed() {
			logger.Debug("skipping %s target %s", t.Kind, t.Name)
			continue
		}
		output.Step(1, "%s: %s", t.Name, t.Dir)
		// a missing directory fails Replace before anything is written
		if _, err := os.Stat(t.Dir); err == nil {
			ru.touched = append(ru.touched, t)
		}
		if err := bundle.Replace(b, t.Dir); err != nil {
			return err
		}
		ru.res.Targets = append(ru.res.Targets, t)
	}

	output.Step(1, "VPN: %s", r.cfg.VPN.KeysDir)
	applied, err := bundle.ReplaceVPN(b, r.cfg.VPN.KeysDir, r.cfg.VPN.FileMap)
	ru.vpnTouched = applied
	if err != nil {
		return err
	}
	if !applied {
		output.Step(2, "not installed, skipped")
	}
	ru.res.VPN = applied
	return nil
}

func (r *Renewer) activate(ru *run) error {
	output.Step(0, "ACTIVATE")
	var steps []activation
	for _, name := range r.cfg.ReloadServices {
		steps = append(steps, activation{name: name})
	}
	if ru.vpnTouched {
		steps = append(steps, activation{restart: true, name: r.cfg.VPN.Service})
	}

	for _, a := range steps {
		output.Step(1, "%s", a)
		ru.attempted = append(ru.attempted, a)
		if err := r.control(a); err != nil {
			return err
		}
		ru.res.Activated = append(ru.res.Activated, a.String())
	}
	return nil
}

func (r *Renewer) control(a activation) error {
	if a.restart {
		return r.services.Restart(a.name)
	}
	return r.services.Reload(a.name)
}

// rollback puts the backup back into every directory the run wrote to and
// repeats the activations already attempted. cause is returned unchanged
// when the rollback succeeds.
func (r *Renewer) rollback(ru *run, cause error) error {
	output.Warn("Renewal failed, restoring backup: %v", cause)
	logger.LogError(cause, "rolling back")

	var merr *multierror.Error
	for _, t := range ru.touched {
		output.Step(1, "restore %s: %s", t.Name, t.Dir)
		if err := bundle.Replace(ru.backup, t.Dir); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	if ru.vpnTouched {
		if ru.vpnSaved {
			output.Step(1, "restore VPN: %s", r.cfg.VPN.KeysDir)
			if err := bundle.RestoreSnapshot(filepath.Join(ru.backupDir, vpnSnapshotDir), r.cfg.VPN.KeysDir); err != nil {
				merr = multierror.Append(merr, err)
			}
		} else {
			merr = multierror.Append(merr, renewerrors.FS(r.cfg.VPN.KeysDir, "no VPN snapshot to restore", nil))
		}
	}
	for _, a := range ru.attempted {
		output.Step(1, "%s", a)
		if err := r.control(a); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	ru.res.advance(StateRolledBack)
	ru.res.RolledBack = true
	if merr.ErrorOrNil() == nil {
		logger.Info("rollback complete")
		return cause
	}
	logger.ErrorFields("rollback incomplete", map[string]interface{}{"errors": len(merr.Errors)})
	return multierror.Append(cause, renewerrors.Wrap(renewerrors.ErrCodeRollback, "rollback failed", merr))
}

// cleanup removes temporary directories. Failures are only reported.
func (r *Renewer) cleanup(dirs ...string) {
	output.Step(0, "CLEANUP")
	if err := bundle.Cleanup(dirs...); err != nil {
		logger.Warn("cleanup: %v", err)
		output.Warn("Could not remove temporary files: %v", err)
	}
}
