package manifest

import (
	"path/filepath"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
)

// Kind classifies a distribution target.
type Kind int

const (
	// KindDefault is the default certificate's own archive subtree.
	KindDefault Kind = iota
	// KindStandard is a non-package service; it receives the bundle as is.
	KindStandard
	// KindPackage is a package service that manages its own certificates.
	KindPackage
	// KindVPN is the VPNCenter package, handled with renamed files.
	KindVPN
)

// String returns the name used in CLI output.
func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindStandard:
		return "standard"
	case KindPackage:
		return "package"
	case KindVPN:
		return "vpn"
	default:
		return "unknown"
	}
}

// MarshalText lets targets render their kind by name in JSON.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Distributed reports whether the plain bundle copy applies to this kind.
func (k Kind) Distributed() bool {
	return k == KindDefault || k == KindStandard
}

// Target is one place the certificate bundle may be copied to.
type Target struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
	Kind Kind   `json:"kind"`
}

// Layout resolves target directories. *config.Config satisfies it.
type Layout interface {
	ArchiveCertDir(id string) string
	ServiceDir(subscriber, service string) string
}

// Plan lists the targets of certificate id: its archive subtree first,
// then every service entry in manifest order. vpnDir is where the VPN
// exception keeps its keys.
func Plan(layout Layout, id string, cert Certificate, vpnDir string) ([]Target, error) {
	targets := make([]Target, 0, len(cert.Services)+1)
	targets = append(targets, Target{
		Name: "DEFAULT",
		Dir:  layout.ArchiveCertDir(id),
		Kind: KindDefault,
	})

	for _, svc := range cert.Services {
		name := svc.DisplayName
		if name == "" {
			name = filepath.Join(svc.Subscriber, svc.Service)
		}

		switch {
		case svc.IsVPN():
			targets = append(targets, Target{Name: name, Dir: vpnDir, Kind: KindVPN})
		case svc.IsPkg:
			targets = append(targets, Target{Name: name, Dir: layout.ServiceDir(svc.Subscriber, svc.Service), Kind: KindPackage})
		default:
			if err := checkSegment(svc.Subscriber); err != nil {
				return nil, renewerrors.Wrap(renewerrors.ErrCodeManifest, "invalid subscriber in "+name, err)
			}
			if err := checkSegment(svc.Service); err != nil {
				return nil, renewerrors.Wrap(renewerrors.ErrCodeManifest, "invalid service in "+name, err)
			}
			targets = append(targets, Target{Name: name, Dir: layout.ServiceDir(svc.Subscriber, svc.Service), Kind: KindStandard})
		}
	}

	return targets, nil
}

// Resolved is the default certificate together with its targets.
type Resolved struct {
	ID      string      `json:"id"`
	Cert    Certificate `json:"-"`
	Targets []Target    `json:"targets"`
}

// Paths locates the manifest files. *config.Config satisfies it.
type Paths interface {
	Layout
	DefaultMarkerPath() string
	ManifestPath() string
}

// Resolve reads DEFAULT and INFO and plans the default certificate's targets.
func Resolve(paths Paths, vpnDir string) (*Resolved, error) {
	id, err := ReadDefaultID(paths.DefaultMarkerPath())
	if err != nil {
		return nil, err
	}
	m, err := Load(paths.ManifestPath())
	if err != nil {
		return nil, err
	}
	cert, err := m.Lookup(id)
	if err != nil {
		return nil, err
	}
	targets, err := Plan(paths, id, cert, vpnDir)
	if err != nil {
		return nil, err
	}
	return &Resolved{ID: id, Cert: cert, Targets: targets}, nil
}
