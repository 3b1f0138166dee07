package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default locations on a DSM appliance.
const (
	DefaultCertsRoot      = "/usr/syno/etc/certificate"
	DefaultAcmeShPath     = "/usr/local/share/acme.sh/acme.sh"
	DefaultServiceCtlPath = "/usr/syno/sbin/synoservicectl"
	DefaultVPNKeysDir     = "/usr/syno/etc/packages/VPNCenter/openvpn/keys"
	DefaultVPNService     = "pkgctl-VPNCenter"
	DefaultDNSSleep       = 180
	DefaultBundleGlob     = "*.pem"
)

// Config is everything the renewal workflow needs to know about the
// appliance. It is passed explicitly to every operation.
type Config struct {
	CertsRoot      string      `yaml:"certs_root" json:"certs_root" validate:"required,abspath"`
	TempRoot       string      `yaml:"temp_root" json:"temp_root" validate:"required,abspath"`
	BundleGlob     string      `yaml:"bundle_glob" json:"bundle_glob" validate:"required"`
	Files          BundleFiles `yaml:"files" json:"files"`
	AcmeSh         AcmeSh      `yaml:"acmesh" json:"acmesh"`
	ServiceCtlPath string      `yaml:"servicectl_path" json:"servicectl_path" validate:"required"`
	ReloadServices []string    `yaml:"reload_services" json:"reload_services" validate:"dive,required"`
	VPN            VPN         `yaml:"vpn" json:"vpn"`
}

// BundleFiles names the four files of a certificate bundle.
type BundleFiles struct {
	Cert      string `yaml:"cert" json:"cert" validate:"required,excludesall=/"`
	Key       string `yaml:"key" json:"key" validate:"required,excludesall=/"`
	FullChain string `yaml:"fullchain" json:"fullchain" validate:"required,excludesall=/"`
	CAChain   string `yaml:"ca_chain" json:"ca_chain" validate:"required,excludesall=/"`
}

// Names returns the bundle file names in cert, key, fullchain, chain order.
func (f BundleFiles) Names() []string {
	return []string{f.Cert, f.Key, f.FullChain, f.CAChain}
}

// AcmeSh configures the external ACME client.
type AcmeSh struct {
	Path     string `yaml:"path" json:"path" validate:"required"`
	DNSSleep int    `yaml:"dns_sleep" json:"dns_sleep" validate:"gte=0"`
	// Env is appended to the inherited environment, e.g. CF_Token.
	Env map[string]string `yaml:"env,omitempty" json:"-"`
}

// VPN configures the VPNCenter package exception.
type VPN struct {
	KeysDir string `yaml:"keys_dir" json:"keys_dir" validate:"required,abspath"`
	Service string `yaml:"service" json:"service" validate:"required"`
	// FileMap translates bundle file names to OpenVPN key file names.
	// The fullchain -> ca_bundle.crt entry has never been verified against
	// what VPNCenter actually expects.
	FileMap map[string]string `yaml:"file_map" json:"file_map" validate:"required,min=1,dive,keys,required,excludesall=/,endkeys,required,excludesall=/"`
}

// configDir is the default config directory
const configDir = ".config/synorenew"
const configFile = "config.yaml"

// New creates a new Config with default values
func New() *Config {
	return &Config{
		CertsRoot:  DefaultCertsRoot,
		TempRoot:   filepath.Join(os.TempDir(), "acme-renew"),
		BundleGlob: DefaultBundleGlob,
		Files:      DefaultBundleFiles(),
		AcmeSh: AcmeSh{
			Path:     DefaultAcmeShPath,
			DNSSleep: DefaultDNSSleep,
		},
		ServiceCtlPath: DefaultServiceCtlPath,
		ReloadServices: []string{"nginx"},
		VPN: VPN{
			KeysDir: DefaultVPNKeysDir,
			Service: DefaultVPNService,
			FileMap: DefaultVPNFileMap(),
		},
	}
}

// DefaultBundleFiles returns the file names acme.sh is asked to write and
// DSM keeps in each certificate directory.
func DefaultBundleFiles() BundleFiles {
	return BundleFiles{
		Cert:      "cert.pem",
		Key:       "privkey.pem",
		FullChain: "fullchain.pem",
		CAChain:   "chain.pem",
	}
}

// DefaultVPNFileMap returns the bundle -> OpenVPN file name mapping.
func DefaultVPNFileMap() map[string]string {
	return map[string]string{
		"cert.pem":      "server.crt",
		"privkey.pem":   "server.key",
		"fullchain.pem": "ca_bundle.crt",
		"chain.pem":     "ca.crt",
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDir), nil
}

// ConfigPath returns the config file path
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Load reads the config from the default path
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the config at path. A missing file yields the defaults.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := New()
	// yaml.v3 merges into existing maps; a configured mapping must replace
	// the default one, not extend it.
	cfg.VPN.FileMap = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.VPN.FileMap == nil {
		cfg.VPN.FileMap = DefaultVPNFileMap()
	}

	return cfg, nil
}

// ApplyEnv overrides settings from environment variables. Only ACMESH_PATH
// is recognized; DOMAIN and DNS_PROVIDER are run inputs, not settings.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("ACMESH_PATH"); ok && v != "" {
		c.AcmeSh.Path = v
	}
}

// Save writes the config to the default path
func (c *Config) Save() error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the config to path, creating its directory.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// acmesh.env may hold DNS provider credentials
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
