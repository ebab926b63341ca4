package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	DefaultAIBaseURL = "https://api.groq.com/openai/v1"
	DefaultAIModel   = "llama3-8b-8192"
	DefaultAITimeout = 60 * time.Second

	DefaultAITemperature float32 = 0.1
)

// ownerIDPattern is the accepted shape of an owner id in auth.apiKeys.
var ownerIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)

type Config struct {
	Server    Server    `yaml:"server"`
	Database  Database  `yaml:"database"`
	Minio     Minio     `yaml:"minio"`
	AI        AI        `yaml:"ai"`
	Auth      Auth      `yaml:"auth"`
	RateLimit RateLimit `yaml:"rateLimit"`
	Log       Log       `yaml:"log"`
	Privacy   Privacy   `yaml:"privacy"`
}

type Server struct {
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	MaxBodyBytes   int64    `yaml:"maxBodyBytes"`
	// WriteTimeout harus lebih lama dari ai.timeout
	WriteTimeout time.Duration `yaml:"writeTimeout"`
}

type Database struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslMode"`
	Path     string `yaml:"path"` // sqlite file
}

type Minio struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"accessKey"`
	SecretKey  string `yaml:"secretKey"`
	BucketName string `yaml:"bucketName"`
	Region     string `yaml:"region"`
	UseSSL     bool   `yaml:"useSSL"`
}

// AI configures the OpenAI-compatible completion endpoint.
type AI struct {
	BaseURL     string        `yaml:"baseURL"`
	APIKey      string        `yaml:"apiKey"`
	Model       string        `yaml:"model"`
	// Temperature nil means DefaultAITemperature; an explicit 0 is kept.
	Temperature *float32      `yaml:"temperature"`
	MaxTokens   int           `yaml:"maxTokens"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Auth maps an owner id to its API key.
type Auth struct {
	APIKeys map[string]string `yaml:"apiKeys"`
}

type RateLimit struct {
	Capacity        int `yaml:"capacity"`
	RefillPerSecond int `yaml:"refillPerSecond"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

type Privacy struct {
	RedactSecrets bool `yaml:"redactSecrets"`
}

// Load baca file config.yaml, lalu isi default dan override dari env
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML bytes into a ready-to-use Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnvOverrides lets secrets come from the environment instead of the file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.AI.APIKey = v
	} else if v := os.Getenv("VITE_GROQ_API_KEY"); v != "" && c.AI.APIKey == "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = DriverSQLite
	}
	if c.Database.Driver == DriverSQLite && c.Database.Path == "" {
		c.Database.Path = "codereview.db"
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = DefaultAIBaseURL
	}
	if c.AI.Model == "" {
		c.AI.Model = DefaultAIModel
	}
	if c.AI.Temperature == nil {
		t := DefaultAITemperature
		c.AI.Temperature = &t
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 2000
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = DefaultAITimeout
	}
	if c.Server.WriteTimeout <= c.AI.Timeout {
		c.Server.WriteTimeout = c.AI.Timeout + 15*time.Second
	}
	if c.RateLimit.Capacity <= 0 {
		c.RateLimit.Capacity = 10
	}
	if c.RateLimit.RefillPerSecond <= 0 {
		c.RateLimit.RefillPerSecond = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks values that have no sensible default.
func (c *Config) Validate() error {
	var errs []error
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			errs = append(errs, fmt.Errorf("database.host and database.name are required for %s", c.Database.Driver))
		}
	case DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}
	if t := c.AI.Temperature; t != nil && (*t < 0 || *t > 2) {
		errs = append(errs, fmt.Errorf("ai.temperature %v is outside [0, 2]", *t))
	}
	if c.Minio.Enabled && (c.Minio.Endpoint == "" || c.Minio.BucketName == "") {
		errs = append(errs, errors.New("minio.endpoint and minio.bucketName are required when minio is enabled"))
	}
	for owner, key := range c.Auth.APIKeys {
		if !ownerIDPattern.MatchString(owner) {
			errs = append(errs, fmt.Errorf("auth.apiKeys: invalid owner id %q (alphanumeric, dash, underscore only, max 64 chars)", owner))
		}
		if strings.TrimSpace(key) == "" {
			errs = append(errs, fmt.Errorf("auth.apiKeys[%s] is empty", owner))
		}
	}
	return errors.Join(errs...)
}

// Helper untuk build DSN MySQL
func (c *Config) MySQLDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
