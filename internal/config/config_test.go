package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
server:
  port: 8080
database:
  host: localhost
  port: 5432
  user: desk
  database: rental_desk
storage:
  upload_dir: /tmp/uploads
auth:
  jwt_secret: "0123456789abcdef0123456789abcdef"
  desk_passcode_hash: "$2a$10$abcdefghijklmnopqrstuv"
`

func TestParse_FillsDefaults(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "mock", cfg.Storage.Type)
	assert.Equal(t, int64(10), cfg.Storage.MaxFileSize)
	assert.Equal(t, []string{"image/jpeg", "image/png", "image/gif"}, cfg.Storage.AllowedTypes)
	assert.Equal(t, 320, cfg.Storage.ThumbnailMaxDimension)
	assert.Equal(t, 12*time.Hour, cfg.DeviceTokenTTL())
	assert.Equal(t, 15*time.Minute, cfg.URLExpiry())
	assert.Equal(t, "America/New_York", cfg.Business.Timezone)
	assert.Equal(t, "Rental Desk", cfg.Email.FromName)
	assert.Equal(t, "0 0 9 * * *", cfg.Scheduler.SendOverdueReminders)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "http://localhost:8080", cfg.Server.BaseURL)
	assert.Equal(t, "", cfg.GetGRPCAddress())
}

func TestParse_EnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("JWT_SECRET", "fedcba9876543210fedcba9876543210")
	t.Setenv("BUSINESS_TIMEZONE", "Europe/Berlin")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("SERVER_GRPC_PORT", "9090")

	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6543, cfg.Database.Port)
	assert.Equal(t, "fedcba9876543210fedcba9876543210", cfg.Auth.JWTSecret)
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9090", cfg.GetGRPCAddress())
	assert.Equal(t, "postgres://desk:@db.internal:6543/rental_desk?sslmode=disable", cfg.GetDatabaseConnectionString())
}

func TestValidate_Errors(t *testing.T) {
	valid := func() *Config {
		cfg, err := Parse([]byte(baseYAML))
		require.NoError(t, err)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"Bad port", func(c *Config) { c.Server.Port = 0 }, "invalid server port"},
		{"Missing db host", func(c *Config) { c.Database.Host = "" }, "database host is required"},
		{"Unknown driver", func(c *Config) { c.Database.Driver = "sqlite" }, "unsupported database driver"},
		{"Mongo without URI", func(c *Config) { c.Database.Driver = "mongo"; c.Database.MongoURI = "" }, "mongo URI is required"},
		{"S3 without bucket", func(c *Config) { c.Storage.Type = "s3" }, "S3 bucket is required"},
		{"Short JWT secret", func(c *Config) { c.Auth.JWTSecret = "short" }, "at least 32 characters"},
		{"Missing passcode", func(c *Config) { c.Auth.DeskPasscodeHash = "" }, "desk passcode hash is required"},
		{"Bad timezone", func(c *Config) { c.Business.Timezone = "Mars/Olympus" }, "invalid business timezone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MongoDefaults(t *testing.T) {
	cfg, err := Parse([]byte(baseYAML))
	require.NoError(t, err)

	cfg.Database.Driver = "mongo"
	cfg.Database.MongoURI = "mongodb://localhost:27017"
	cfg.Database.MongoDatabase = ""
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "rental_desk", cfg.Database.MongoDatabase)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config", "config.dev.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.GRPCPort)
	assert.Equal(t, "mock", cfg.Storage.Type)
}
