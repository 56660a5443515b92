package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Email     EmailConfig     `yaml:"email"`
	Auth      AuthConfig      `yaml:"auth"`
	Log       LogConfig       `yaml:"log"`
	Business  BusinessConfig  `yaml:"business"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

// ServerConfig contains HTTP and gRPC listener settings
type ServerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
	// BaseURL is the externally reachable address used in mock storage URLs.
	BaseURL string `yaml:"base_url"`
}

// DatabaseConfig selects and configures the session store
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // "postgres" or "mongo"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"ssl_mode"`

	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
}

// StorageConfig contains photo storage settings
type StorageConfig struct {
	Type                  string   `yaml:"type"`       // "mock" or "s3"
	UploadDir             string   `yaml:"upload_dir"` // For mock storage
	MaxFileSize           int64    `yaml:"max_file_size_mb"`
	AllowedTypes          []string `yaml:"allowed_types"`
	ThumbnailMaxDimension int      `yaml:"thumbnail_max_dimension"`
	URLExpiryMinutes      int      `yaml:"url_expiry_minutes"`

	S3 S3Config `yaml:"s3"`
}

// S3Config contains AWS S3 settings
type S3Config struct {
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	// Endpoint overrides the AWS endpoint, e.g. for MinIO.
	Endpoint string `yaml:"endpoint"`
}

// EmailConfig contains customer email settings
type EmailConfig struct {
	SendGridAPIKey string `yaml:"sendgrid_api_key"`
	FromAddress    string `yaml:"from_address"`
	FromName       string `yaml:"from_name"`
}

// AuthConfig contains desk device authentication settings
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	DeviceTokenExpiry int    `yaml:"device_token_expiry_hours"`
	DeskPasscodeHash  string `yaml:"desk_passcode_hash"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "text"
}

// BusinessConfig contains rental desk settings
type BusinessConfig struct {
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// SchedulerConfig contains cron schedule settings
type SchedulerConfig struct {
	SendOverdueReminders string `yaml:"send_overdue_reminders"`
}

// Load reads configuration from a YAML file. A .env file in the working
// directory, if present, is loaded into the environment first.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse builds a Config from YAML bytes, applies environment overrides and
// validates the result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.overrideWithEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// overrideWithEnv overrides config values with environment variables
func (c *Config) overrideWithEnv() {
	// Database
	if val := os.Getenv("DB_DRIVER"); val != "" {
		c.Database.Driver = val
	}
	if val := os.Getenv("DB_HOST"); val != "" {
		c.Database.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Database.Port)
	}
	if val := os.Getenv("DB_USER"); val != "" {
		c.Database.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		c.Database.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		c.Database.Database = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		c.Database.SSLMode = val
	}
	if val := os.Getenv("MONGO_URI"); val != "" {
		c.Database.MongoURI = val
	}

	// Server
	if val := os.Getenv("SERVER_HOST"); val != "" {
		c.Server.Host = val
	}
	if val := os.Getenv("SERVER_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.Port)
	}
	if val := os.Getenv("SERVER_GRPC_PORT"); val != "" {
		fmt.Sscanf(val, "%d", &c.Server.GRPCPort)
	}
	if val := os.Getenv("SERVER_BASE_URL"); val != "" {
		c.Server.BaseURL = val
	}

	// Storage
	if val := os.Getenv("STORAGE_TYPE"); val != "" {
		c.Storage.Type = val
	}
	if val := os.Getenv("STORAGE_UPLOAD_DIR"); val != "" {
		c.Storage.UploadDir = val
	}
	if val := os.Getenv("AWS_REGION"); val != "" {
		c.Storage.S3.Region = val
	}
	if val := os.Getenv("AWS_S3_BUCKET"); val != "" {
		c.Storage.S3.Bucket = val
	}
	if val := os.Getenv("AWS_ACCESS_KEY_ID"); val != "" {
		c.Storage.S3.AccessKeyID = val
	}
	if val := os.Getenv("AWS_SECRET_ACCESS_KEY"); val != "" {
		c.Storage.S3.SecretAccessKey = val
	}

	// Email
	if val := os.Getenv("SENDGRID_API_KEY"); val != "" {
		c.Email.SendGridAPIKey = val
	}

	// Auth
	if val := os.Getenv("JWT_SECRET"); val != "" {
		c.Auth.JWTSecret = val
	}
	if val := os.Getenv("DESK_PASSCODE_HASH"); val != "" {
		c.Auth.DeskPasscodeHash = val
	}

	// Log
	if val := os.Getenv("LOG_LEVEL"); val != "" {
		c.Log.Level = val
	}
	if val := os.Getenv("LOG_FORMAT"); val != "" {
		c.Log.Format = val
	}

	// Business
	if val := os.Getenv("BUSINESS_TIMEZONE"); val != "" {
		c.Business.Timezone = val
	}

	// Set defaults for log if not configured
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks if the configuration is valid and fills defaults
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.GRPCPort < 0 || c.Server.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.Server.GRPCPort)
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}

	// Database validation
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
		if c.Database.SSLMode == "" {
			c.Database.SSLMode = "disable"
		}
	case "mongo":
		if c.Database.MongoURI == "" {
			return fmt.Errorf("mongo URI is required")
		}
		if c.Database.MongoDatabase == "" {
			c.Database.MongoDatabase = "rental_desk"
		}
	default:
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}

	// Storage validation
	if c.Storage.Type == "" {
		c.Storage.Type = "mock"
	}
	switch c.Storage.Type {
	case "mock":
		if c.Storage.UploadDir == "" {
			return fmt.Errorf("upload directory is required")
		}
	case "s3":
		if c.Storage.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required")
		}
		if c.Storage.S3.Region == "" {
			return fmt.Errorf("S3 region is required")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Storage.Type)
	}
	if c.Storage.MaxFileSize == 0 {
		c.Storage.MaxFileSize = 10
	}
	if len(c.Storage.AllowedTypes) == 0 {
		c.Storage.AllowedTypes = []string{"image/jpeg", "image/png", "image/gif"}
	}
	if c.Storage.ThumbnailMaxDimension == 0 {
		c.Storage.ThumbnailMaxDimension = 320
	}
	if c.Storage.URLExpiryMinutes == 0 {
		c.Storage.URLExpiryMinutes = 15
	}

	// Auth validation
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("JWT secret must be at least 32 characters")
	}
	if c.Auth.DeskPasscodeHash == "" {
		return fmt.Errorf("desk passcode hash is required")
	}
	if c.Auth.DeviceTokenExpiry == 0 {
		c.Auth.DeviceTokenExpiry = 12
	}

	// Email defaults
	if c.Email.FromAddress == "" {
		c.Email.FromAddress = "noreply@rentaldesk.local"
	}

	// Business defaults
	if c.Business.Name == "" {
		c.Business.Name = "Rental Desk"
	}
	if c.Business.Timezone == "" {
		c.Business.Timezone = "America/New_York"
	}
	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("invalid business timezone %q: %w", c.Business.Timezone, err)
	}
	if c.Email.FromName == "" {
		c.Email.FromName = c.Business.Name
	}

	// Scheduler defaults
	if c.Scheduler.SendOverdueReminders == "" {
		c.Scheduler.SendOverdueReminders = "0 0 9 * * *" // Daily at 9 AM
	}

	return nil
}

// Location returns the business timezone. Validate has already checked it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// GetDatabaseConnectionString returns a PostgreSQL connection string
func (c *Config) GetDatabaseConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}

// GetServerAddress returns the HTTP server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// GetGRPCAddress returns the gRPC health server address, or "" when disabled
func (c *Config) GetGRPCAddress() string {
	if c.Server.GRPCPort == 0 {
		return ""
	}
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// DeviceTokenTTL returns the device token lifetime
func (c *Config) DeviceTokenTTL() time.Duration {
	return time.Duration(c.Auth.DeviceTokenExpiry) * time.Hour
}

// URLExpiry returns how long a presigned photo URL stays valid
func (c *Config) URLExpiry() time.Duration {
	return time.Duration(c.Storage.URLExpiryMinutes) * time.Minute
}
