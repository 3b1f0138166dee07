package cli

import (
	"errors"
	"strings"
	"testing"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
)

func TestValidateDomain(t *testing.T) {
	tests := []struct {
		name    string
		domain  string
		wantErr bool
	}{
		{"valid domain", "nas.example.com", false},
		{"valid subdomain", "sub.nas.example.com", false},
		{"wildcard", "*.example.com", false},
		{"empty domain", "", true},
		{"domain with space", "nas example.com", true},
		{"domain with slash", "nas.example.com/path", true},
		{"starts with hyphen", "-nas.example.com", true},
		{"ends with hyphen", "nas.example.com-", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateDomain(tt.domain)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateDomain(%q) error = %v, wantErr %v", tt.domain, err, tt.wantErr)
			}
		})
	}
}

func TestFlagOrEnv(t *testing.T) {
	oldDeps := deps
	defer func() { deps = oldDeps }()
	deps = NewMockDeps().WithEnv(map[string]string{
		"DOMAIN":       " env.example.com ",
		"DNS_PROVIDER": "",
	}).Build()

	tests := []struct {
		name string
		flag string
		key  string
		want string
	}{
		{"flag wins", "flag.example.com", "DOMAIN", "flag.example.com"},
		{"env trimmed", "", "DOMAIN", "env.example.com"},
		{"empty env", "", "DNS_PROVIDER", ""},
		{"unset env", "", "MISSING", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := flagOrEnv(tt.flag, tt.key); got != tt.want {
				t.Errorf("flagOrEnv(%q, %q) = %q, want %q", tt.flag, tt.key, got, tt.want)
			}
		})
	}
}

func TestYesNo(t *testing.T) {
	if yesNo(true) != "yes" {
		t.Errorf("yesNo(true) = %q", yesNo(true))
	}
	if yesNo(false) != "no" {
		t.Errorf("yesNo(false) = %q", yesNo(false))
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies ACMESH_PATH", func(t *testing.T) {
		f := newCLIFixture(t)
		deps.Env = MockEnv{"ACMESH_PATH": "/opt/acme/acme.sh"}
		configPath = "/etc/synorenew.yaml"

		cfg, err := loadConfig()
		if err != nil {
			t.Fatalf("loadConfig() error = %v", err)
		}
		if cfg.AcmeSh.Path != "/opt/acme/acme.sh" {
			t.Errorf("AcmeSh.Path = %q, want /opt/acme/acme.sh", cfg.AcmeSh.Path)
		}
		if len(f.loader.LoadPaths) != 1 || f.loader.LoadPaths[0] != "/etc/synorenew.yaml" {
			t.Errorf("LoadPaths = %v", f.loader.LoadPaths)
		}
	})

	t.Run("load error", func(t *testing.T) {
		f := newCLIFixture(t)
		f.loader.LoadErr = errors.New("disk on fire")

		_, err := loadConfig()
		if err == nil || !strings.Contains(err.Error(), "disk on fire") {
			t.Errorf("loadConfig() error = %v, want load error", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		f := newCLIFixture(t)
		f.a.Config.CertsRoot = "relative/certificate"

		_, err := loadConfig()
		if !errors.Is(err, renewerrors.ErrConfigInvalid) {
			t.Errorf("loadConfig() error = %v, want ErrConfigInvalid", err)
		}
	})
}
