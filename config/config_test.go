package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("APP_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("APP_SERVER_PORT", "9090")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, "anonymous@example.com", cfg.Partner.AnonymousUser)
	assert.True(t, cfg.Auth.EnforceOwnership)
	assert.False(t, cfg.Auth.InsecureBodyIdentity)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  mode: debug
database:
  driver: postgres
  dsn: "host=localhost user=postgres dbname=study sslmode=disable"
auth:
  insecure_body_identity: true
cache:
  backend: redis
  ttl: 1m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "redis", cfg.Cache.Backend)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.True(t, cfg.Auth.InsecureBodyIdentity)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Mode: "release"},
			Database: DatabaseConfig{Driver: "sqlite", DSN: ":memory:"},
			Cache:    CacheConfig{Backend: "memory"},
			Auth:     AuthConfig{JWTSecret: "x"},
		}
	}

	cfg := base()
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth.JWTSecret = ""
	assert.Error(t, cfg.Validate(), "no verifier and no fallback")

	cfg = base()
	cfg.Auth.InsecureBodyIdentity = true
	assert.Error(t, cfg.Validate(), "insecure identity refused in release mode")

	cfg.Server.Mode = "debug"
	assert.NoError(t, cfg.Validate())

	cfg = base()
	cfg.Server.Mode = "production"
	assert.Error(t, cfg.Validate())
}
