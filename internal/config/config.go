package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" envconfig:"SERVER"`
	Security    SecurityConfig    `yaml:"security" envconfig:"SECURITY"`
	Logging     LoggingConfig     `yaml:"logging" envconfig:"LOGGING"`
	License     LicenseConfig     `yaml:"license" envconfig:"LICENSE"`
	Firebase    FirebaseConfig    `yaml:"firebase" envconfig:"FIREBASE"`
	Translation TranslationConfig `yaml:"translation" envconfig:"TRANSLATION"`
	Payments    PaymentsConfig    `yaml:"payments" envconfig:"PAYMENTS"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains CORS and rate limiting configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// LicenseConfig governs the trial/credit/subscription gate.
// Enforcement is an explicit switch: when disabled every request is
// allowed and the store is never consulted (dev mode). When enabled,
// store failures deny.
type LicenseConfig struct {
	Enforcement     bool   `yaml:"enforcement" envconfig:"ENFORCEMENT" default:"true"`
	TrialDays       int    `yaml:"trial_days" envconfig:"TRIAL_DAYS" default:"5"`
	StartingCredits int64  `yaml:"starting_credits" envconfig:"STARTING_CREDITS" default:"10"`
	LabThreshold    int64  `yaml:"lab_threshold" envconfig:"LAB_THRESHOLD" default:"700000"`
	LabPlan         string `yaml:"lab_plan" envconfig:"LAB_PLAN" default:"lab"`
	PersonalPlan    string `yaml:"personal_plan" envconfig:"PERSONAL_PLAN" default:"personal"`
}

// FirebaseConfig locates the Firebase project backing auth and Firestore
type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id" envconfig:"PROJECT_ID"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
	DatabaseID      string `yaml:"database_id" envconfig:"DATABASE_ID" default:"user"`
}

// TranslationConfig locates the Cloud Translation project
type TranslationConfig struct {
	ProjectID string        `yaml:"project_id" envconfig:"PROJECT_ID"`
	Location  string        `yaml:"location" envconfig:"LOCATION" default:"global"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"15s"`
}

// PaymentsConfig holds the payment gateway credentials
type PaymentsConfig struct {
	BaseURL   string        `yaml:"base_url" envconfig:"BASE_URL" default:"https://api.tosspayments.com"`
	SecretKey string        `yaml:"secret_key" envconfig:"SECRET_KEY"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"TIMEOUT" default:"10s"`
}

// Load loads configuration from environment variables and an optional
// config file. Environment variables take precedence.
func Load() (*Config, error) {
	cfg := *Default()

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = *fileConfig
	}

	if err := envconfig.Process("LINGO", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	cfg := *Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.License.TrialDays < 0 {
		return fmt.Errorf("trial days must not be negative")
	}

	if c.License.StartingCredits < 0 {
		return fmt.Errorf("starting credits must not be negative")
	}

	if c.License.LabThreshold <= 0 {
		return fmt.Errorf("lab plan threshold must be positive")
	}

	if c.License.Enforcement && c.Firebase.ProjectID == "" {
		return fmt.Errorf("license enforcement requires a firebase project id")
	}

	if c.Payments.BaseURL == "" {
		return fmt.Errorf("payment gateway base url must be set")
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	return nil
}

// getConfigFilePath returns the path to the config file, if any
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		License: LicenseConfig{
			Enforcement:     true,
			TrialDays:       5,
			StartingCredits: 10,
			LabThreshold:    700000,
			LabPlan:         "lab",
			PersonalPlan:    "personal",
		},
		Firebase: FirebaseConfig{
			DatabaseID: "user",
		},
		Translation: TranslationConfig{
			Location: "global",
			Timeout:  15 * time.Second,
		},
		Payments: PaymentsConfig{
			BaseURL: "https://api.tosspayments.com",
			Timeout: 10 * time.Second,
		},
	}
}
