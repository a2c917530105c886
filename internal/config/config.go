// Package config loads plandeck settings.
//
// Settings are resolved in order, later sources winning: built-in
// defaults, a YAML file, PLANDECK_* environment variables, and finally
// command-line flags (applied by the cli package).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/plandeck/internal/invoice"
	"github.com/roach88/plandeck/internal/share"
	"github.com/roach88/plandeck/internal/templates"
)

// DefaultBaseURL is the address share links are built on when none is
// configured.
const DefaultBaseURL = "http://localhost:5173/"

// DefaultDatabase is the SQLite file holding the templates slot.
const DefaultDatabase = "plandeck.db"

// Email configures the EmailJS delivery of signed offers.
type Email struct {
	Endpoint   string        `yaml:"endpoint"`
	ServiceID  string        `yaml:"service_id"`
	TemplateID string        `yaml:"template_id"`
	PublicKey  string        `yaml:"public_key"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Configured reports whether every key needed to send is present.
func (e Email) Configured() bool {
	return e.ServiceID != "" && e.TemplateID != "" && e.PublicKey != ""
}

// Config holds all plandeck settings.
type Config struct {
	Database   string `yaml:"database"`
	StorageKey string `yaml:"storage_key"`
	BaseURL    string `yaml:"base_url"`
	ShareParam string `yaml:"share_param"`
	Strict     bool   `yaml:"strict"`
	Email      Email  `yaml:"email"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Database:   DefaultDatabase,
		StorageKey: templates.DefaultStorageKey,
		BaseURL:    DefaultBaseURL,
		ShareParam: share.DefaultParam,
		Email: Email{
			Endpoint: invoice.DefaultEndpoint,
			Timeout:  invoice.DefaultTimeout,
		},
	}
}

// Load reads path over the defaults and applies the process environment.
// An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := cfg.decode(data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decode overlays YAML onto cfg. Unknown keys are rejected.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Environment variable names.
const (
	EnvDatabase        = "PLANDECK_DATABASE"
	EnvStorageKey      = "PLANDECK_STORAGE_KEY"
	EnvBaseURL         = "PLANDECK_BASE_URL"
	EnvShareParam      = "PLANDECK_SHARE_PARAM"
	EnvStrict          = "PLANDECK_STRICT"
	EnvEmailEndpoint   = "PLANDECK_EMAILJS_ENDPOINT"
	EnvEmailServiceID  = "PLANDECK_EMAILJS_SERVICE_ID"
	EnvEmailTemplateID = "PLANDECK_EMAILJS_TEMPLATE_ID"
	EnvEmailPublicKey  = "PLANDECK_EMAILJS_PUBLIC_KEY"
	EnvEmailTimeout    = "PLANDECK_EMAILJS_TIMEOUT"
)

// ApplyEnv overlays environment variables found by lookup. Empty values
// are ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(name); ok && v != "" {
			*dst = v
		}
	}
	str(EnvDatabase, &c.Database)
	str(EnvStorageKey, &c.StorageKey)
	str(EnvBaseURL, &c.BaseURL)
	str(EnvShareParam, &c.ShareParam)
	str(EnvEmailEndpoint, &c.Email.Endpoint)
	str(EnvEmailServiceID, &c.Email.ServiceID)
	str(EnvEmailTemplateID, &c.Email.TemplateID)
	str(EnvEmailPublicKey, &c.Email.PublicKey)

	if v, ok := lookup(EnvStrict); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStrict, err)
		}
		c.Strict = b
	}
	if v, ok := lookup(EnvEmailTimeout); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvEmailTimeout, err)
		}
		c.Email.Timeout = d
	}
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c Config) Validate() error {
	var errs []error
	if c.StorageKey == "" {
		errs = append(errs, errors.New("storage_key must not be empty"))
	}
	if c.ShareParam == "" {
		errs = append(errs, errors.New("share_param must not be empty"))
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" {
		errs = append(errs, fmt.Errorf("base_url %q is not an absolute URL", c.BaseURL))
	}
	if c.Email.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("email.timeout must be positive, got %s", c.Email.Timeout))
	}
	return errors.Join(errs...)
}
