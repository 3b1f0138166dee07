package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	renewerrors "github.com/ksyq12/synorenew/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		p := fl.Field().String()
		return p == "" || filepath.IsAbs(p)
	})
	return v
}

// Validate checks the configuration before any file is touched.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if renewerrors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return renewerrors.Wrap(renewerrors.ErrCodeConfig, "invalid configuration", fmt.Errorf("%s", strings.Join(msgs, "; ")))
		}
		return renewerrors.Wrap(renewerrors.ErrCodeConfig, "invalid configuration", err)
	}

	// every bundle file must be picked up by backup and distribution
	for _, name := range c.Files.Names() {
		ok, err := filepath.Match(c.BundleGlob, name)
		if err != nil {
			return renewerrors.Configf("invalid bundle_glob %q: %v", c.BundleGlob, err)
		}
		if !ok {
			return renewerrors.Configf("bundle_glob %q does not match %s", c.BundleGlob, name)
		}
	}

	known := make(map[string]bool)
	for _, name := range c.Files.Names() {
		known[name] = true
	}
	var unknown []string
	for src := range c.VPN.FileMap {
		if !known[src] {
			unknown = append(unknown, src)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return renewerrors.Configf("vpn.file_map refers to files outside the bundle: %s", strings.Join(unknown, ", "))
	}

	return nil
}
