package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/plandeck/internal/invoice"
)

func env(vars map[string]string) func(string) (string, bool) {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plandeck.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "shiberplans_custom_templates", cfg.StorageKey)
	assert.Equal(t, "data", cfg.ShareParam)
	assert.Equal(t, invoice.DefaultTimeout, cfg.Email.Timeout)
	assert.False(t, cfg.Email.Configured())
	assert.NoError(t, cfg.Validate())
}

func TestDecode_OverlaysDefaults(t *testing.T) {
	cfg := Default()
	err := cfg.decode([]byte(`
database: /var/lib/plandeck.db
strict: true
email:
  service_id: svc
  template_id: tpl
  public_key: pk
  timeout: 3s
`))
	require.NoError(t, err)

	want := Default()
	want.Database = "/var/lib/plandeck.db"
	want.Strict = true
	want.Email.ServiceID = "svc"
	want.Email.TemplateID = "tpl"
	want.Email.PublicKey = "pk"
	want.Email.Timeout = 3 * time.Second
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	assert.True(t, cfg.Email.Configured())
}

func TestDecode_EmptyFile(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.decode(nil))
	assert.Equal(t, Default(), cfg)
}

func TestDecode_UnknownKey(t *testing.T) {
	cfg := Default()
	err := cfg.decode([]byte("databse: typo.db\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "databse")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(env(map[string]string{
		EnvBaseURL:        "https://offers.example/plans",
		EnvStrict:         "true",
		EnvEmailPublicKey: "pk",
		EnvEmailTimeout:   "500ms",
		EnvDatabase:       "", // empty values do not override
	}))
	require.NoError(t, err)

	assert.Equal(t, "https://offers.example/plans", cfg.BaseURL)
	assert.True(t, cfg.Strict)
	assert.Equal(t, "pk", cfg.Email.PublicKey)
	assert.Equal(t, 500*time.Millisecond, cfg.Email.Timeout)
	assert.Equal(t, DefaultDatabase, cfg.Database)
}

func TestApplyEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"strict", map[string]string{EnvStrict: "sometimes"}},
		{"timeout", map[string]string{EnvEmailTimeout: "soon"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			assert.Error(t, cfg.ApplyEnv(env(tt.vars)))
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.ShareParam = ""
	cfg.BaseURL = "not a url"
	cfg.Email.Timeout = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share_param")
	assert.Contains(t, err.Error(), "base_url")
	assert.Contains(t, err.Error(), "email.timeout")
}

func TestLoad_File(t *testing.T) {
	t.Setenv(EnvShareParam, "")
	path := writeConfig(t, "share_param: offer\nbase_url: https://offers.example/\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "offer", cfg.ShareParam)
	assert.Equal(t, "https://offers.example/", cfg.BaseURL)
}

func TestLoad_EnvBeatsFile(t *testing.T) {
	path := writeConfig(t, "storage_key: from_file\n")
	t.Setenv(EnvStorageKey, "from_env")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from_env", cfg.StorageKey)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}
