package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndEnvSecret(t *testing.T) {
	t.Setenv("AUTHSVC_JWT_SECRET", "from-env")
	path := writeConfig(t, `
port: "9090"
db:
  path: "test.db"
jwt:
  token_ttl: 0s
auth:
  require_bearer_scheme: true
  argon2:
    memory_kib: 1024
    threads: 2
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "test.db", cfg.DBPath)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, time.Duration(0), cfg.JWT.TokenTTL)
	assert.True(t, cfg.Auth.RequireBearerScheme)
	assert.Equal(t, uint32(1024), cfg.Auth.Argon2.MemoryKiB)
	assert.Equal(t, uint8(2), cfg.Auth.Argon2.Threads)
	// defaults survive when the file omits them
	assert.Equal(t, uint32(1), cfg.Auth.Argon2.Time)
	assert.Equal(t, uint32(32), cfg.Auth.Argon2.KeyLen)
	assert.Equal(t, 10*time.Second, cfg.Server.WriteTimeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("AUTHSVC_JWT_SECRET", "s")
	t.Setenv("AUTHSVC_PORT", "7000")
	t.Setenv("AUTHSVC_JWT_TOKEN_TTL", "15m")
	path := writeConfig(t, "port: \"9090\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.JWT.TokenTTL)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("AUTHSVC_JWT_SECRET", "")
	path := writeConfig(t, "port: \"9090\"\n")

	_, err := Load(path)
	require.ErrorIs(t, err, ErrMissingSecret)
}

func TestLoad_ThreadsOutOfRange(t *testing.T) {
	t.Setenv("AUTHSVC_JWT_SECRET", "s")
	path := writeConfig(t, "auth:\n  argon2:\n    threads: 257\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth.argon2.threads")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	t.Setenv("AUTHSVC_JWT_SECRET", "s")
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			JWT:  JWTConfig{Secret: "s", TokenTTL: time.Hour},
			Auth: AuthConfig{Argon2: Argon2Config{Time: 1, MemoryKiB: 64, Threads: 1, KeyLen: 32}},
		}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.JWT.TokenTTL = -time.Second
	assert.Error(t, c.Validate())

	c = base()
	c.Auth.Argon2.Threads = 0
	assert.Error(t, c.Validate())

	c = base()
	c.Auth.Argon2.MemoryKiB = 4
	assert.Error(t, c.Validate())
}
