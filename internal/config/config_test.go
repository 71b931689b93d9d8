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
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileWithEnvOverride(t *testing.T) {
	path := writeConfig(t, `
server:
  host: 127.0.0.1
  port: 8080
database:
  host: db
  port: 5432
  user: playdate
  dbname: playdate
jwt:
  secret: from-file
places:
  api_key: key
  timeout: 3s
cors:
  allowed_origins: ["https://app.example.com"]
log:
  level: debug
`)
	t.Setenv("PLAYDATE_JWT_SECRET", "from-env")
	t.Setenv("PLAYDATE_SERVER_PORT", "9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 3*time.Second, cfg.Places.Timeout)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "host=db port=5432 user=playdate password= dbname=playdate sslmode=disable", cfg.Database.DSN())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PLAYDATE_DB_URL", "postgres://localhost/playdate")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, defaultPort, cfg.Server.Port)
	assert.Equal(t, defaultJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, defaultBcryptCost, cfg.Password.BcryptCost)
	assert.Equal(t, defaultPlacesBaseURL, cfg.Places.BaseURL)
	assert.Equal(t, defaultPlaceCacheTTL, cfg.Redis.TTL)
	assert.Equal(t, defaultAvatarURLTTL, cfg.AWS.PresignedTTL)
	assert.Equal(t, defaultLogLevel, cfg.Log.Level)
	assert.Equal(t, "postgres://localhost/playdate", cfg.Database.DSN())
}

func TestLoad_InvalidFile(t *testing.T) {
	path := writeConfig(t, "server: [")

	_, err := Load(path)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestLoad_ProductionNeedsSecret(t *testing.T) {
	t.Setenv("PLAYDATE_ENV", "production")
	t.Setenv("PLAYDATE_DB_URL", "postgres://localhost/playdate")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "jwt secret is required")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			JWT:      JWTConfig{Secret: "s"},
			Password: PasswordConfig{BcryptCost: 10},
			Database: DatabaseConfig{Host: "db"},
		}
	}

	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"no secret", func(c *Config) { c.JWT.Secret = "" }, "jwt secret is required"},
		{"cost too low", func(c *Config) { c.Password.BcryptCost = 2 }, "bcrypt cost must be between"},
		{"cost too high", func(c *Config) { c.Password.BcryptCost = 40 }, "bcrypt cost must be between"},
		{"no database", func(c *Config) { c.Database = DatabaseConfig{} }, "database url or host is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}
