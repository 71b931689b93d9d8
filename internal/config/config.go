package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides, e.g. PLAYDATE_JWT_SECRET.
const EnvPrefix = "PLAYDATE"

const (
	defaultPort          = 3001
	defaultJWTSecret     = "secret-dev"
	defaultBcryptCost    = 12
	defaultPlacesBaseURL = "https://maps.googleapis.com/maps/api/place"
	defaultAPNsTopic     = "com.playdatebuddy.app"
	defaultHTTPTimeout   = 10 * time.Second
	defaultAvatarURLTTL  = 5 * time.Minute
	defaultPlaceCacheTTL = 24 * time.Hour
	defaultLogLevel      = "info"
	defaultDatabaseSSL   = "disable"
)

// Config holds all configuration for the application
type Config struct {
	Env      string         `yaml:"env" split_words:"true"`
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Database DatabaseConfig `yaml:"database" envconfig:"DB"`
	JWT      JWTConfig      `yaml:"jwt" envconfig:"JWT"`
	Password PasswordConfig `yaml:"password" envconfig:"PASSWORD"`
	Places   PlacesConfig   `yaml:"places" envconfig:"PLACES"`
	Chat     ChatConfig     `yaml:"chat" envconfig:"CHAT"`
	Redis    RedisConfig    `yaml:"redis" envconfig:"REDIS"`
	AWS      AWSConfig      `yaml:"aws" envconfig:"AWS"`
	APNs     APNsConfig     `yaml:"apns" envconfig:"APNS"`
	CORS     CORSConfig     `yaml:"cors" envconfig:"CORS"`
	Log      LogConfig      `yaml:"log" envconfig:"LOG"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port int    `yaml:"port" split_words:"true"`
	Host string `yaml:"host" split_words:"true"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL         string `yaml:"url" split_words:"true"`
	Host        string `yaml:"host" split_words:"true"`
	Port        int    `yaml:"port" split_words:"true"`
	User        string `yaml:"user" split_words:"true"`
	Password    string `yaml:"password" split_words:"true"`
	DBName      string `yaml:"dbname" split_words:"true"`
	SSLMode     string `yaml:"sslmode" split_words:"true"`
	AutoMigrate bool   `yaml:"auto_migrate" split_words:"true"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret string `yaml:"secret" split_words:"true"`
}

// PasswordConfig holds the bcrypt work factor
type PasswordConfig struct {
	BcryptCost int `yaml:"bcrypt_cost" split_words:"true"`
}

// PlacesConfig holds the external place lookup configuration
type PlacesConfig struct {
	APIKey  string        `yaml:"api_key" split_words:"true"`
	BaseURL string        `yaml:"base_url" split_words:"true"`
	Timeout time.Duration `yaml:"timeout" split_words:"true"`
}

// ChatConfig holds the chat token service configuration
type ChatConfig struct {
	Server  string        `yaml:"server" split_words:"true"`
	APIKey  string        `yaml:"api_key" split_words:"true"`
	Timeout time.Duration `yaml:"timeout" split_words:"true"`
}

// RedisConfig holds the optional place query cache configuration
type RedisConfig struct {
	Addr     string        `yaml:"addr" split_words:"true"`
	Password string        `yaml:"password" split_words:"true"`
	DB       int           `yaml:"db" split_words:"true"`
	TTL      time.Duration `yaml:"ttl" split_words:"true"`
}

// AWSConfig holds S3 configuration for avatar uploads
type AWSConfig struct {
	Region       string        `yaml:"region" split_words:"true"`
	S3Bucket     string        `yaml:"s3_bucket" split_words:"true"`
	AccessKey    string        `yaml:"access_key" split_words:"true"`
	SecretKey    string        `yaml:"secret_key" split_words:"true"`
	Endpoint     string        `yaml:"endpoint" split_words:"true"`
	PublicURL    string        `yaml:"public_url" split_words:"true"`
	PresignedTTL time.Duration `yaml:"presigned_ttl" split_words:"true"`
}

// APNsConfig holds push notification configuration
type APNsConfig struct {
	KeyPath    string `yaml:"key_path" split_words:"true"`
	KeyID      string `yaml:"key_id" split_words:"true"`
	TeamID     string `yaml:"team_id" split_words:"true"`
	Topic      string `yaml:"topic" split_words:"true"`
	Production bool   `yaml:"production" split_words:"true"`
}

// CORSConfig holds the allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" split_words:"true"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level" split_words:"true"`
}

// Load reads configuration from an optional YAML file, a .env file and the
// environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// .env is optional outside development
	_ = godotenv.Load()

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.JWT.Secret == "" && !c.IsProduction() {
		c.JWT.Secret = defaultJWTSecret
	}
	if c.Password.BcryptCost == 0 {
		c.Password.BcryptCost = defaultBcryptCost
	}
	if c.Places.BaseURL == "" {
		c.Places.BaseURL = defaultPlacesBaseURL
	}
	if c.Places.Timeout == 0 {
		c.Places.Timeout = defaultHTTPTimeout
	}
	if c.Chat.Timeout == 0 {
		c.Chat.Timeout = defaultHTTPTimeout
	}
	if c.Redis.TTL == 0 {
		c.Redis.TTL = defaultPlaceCacheTTL
	}
	if c.AWS.PresignedTTL == 0 {
		c.AWS.PresignedTTL = defaultAvatarURLTTL
	}
	if c.APNs.Topic == "" {
		c.APNs.Topic = defaultAPNsTopic
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = defaultDatabaseSSL
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// Validate checks the settings the service cannot start without
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("jwt secret is required")
	}
	if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.Database.URL == "" && c.Database.Host == "" {
		return errors.New("database url or host is required")
	}
	return nil
}

// IsProduction reports whether the service runs with production settings
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

