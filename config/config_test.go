package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, "lowkey", cfg.System.Appid)
	assert.Equal(t, 2979, cfg.Web.Port)
	assert.Equal(t, "https://api.stripe.com", cfg.Payments.BaseURL)
	assert.Equal(t, "gpt-4o-mini", cfg.Oracle.Model)
}

func TestLoadConfigFile(t *testing.T) {
	cfile := filepath.Join(t.TempDir(), "lowkey.yml")
	require.NoError(t, os.WriteFile(cfile, []byte(`
web:
  host: 127.0.0.1
  port: 9000
  master_access_key: vault-master
database:
  name: lowkey_test
`), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, "127.0.0.1", cfg.Web.Host)
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, "vault-master", cfg.Web.MasterAccessKey)
	assert.Equal(t, "lowkey_test", cfg.Database.Name)
	// untouched sections keep their defaults
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("LOWKEY_WEB_PORT", "8088")
	t.Setenv("LOWKEY_WEB_JWT_SECRET", "env-secret")
	t.Setenv("LOWKEY_MASTER_ACCESS_KEY", "env-master")
	t.Setenv("LOWKEY_DB_DEBUG", "on")
	t.Setenv("LOWKEY_PAYMENTS_API_KEY", "sk_test_env")

	cfg := LoadConfig("")
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "env-secret", cfg.Web.JwtSecret)
	assert.Equal(t, "env-master", cfg.Web.MasterAccessKey)
	assert.True(t, cfg.Database.Debug)
	assert.Equal(t, "sk_test_env", cfg.Payments.ApiKey)
}

func TestLoadConfigBadEnvIntIgnored(t *testing.T) {
	t.Setenv("LOWKEY_WEB_PORT", "not-a-number")
	cfg := LoadConfig("")
	assert.Equal(t, 2979, cfg.Web.Port)
}
