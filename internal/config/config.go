package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	BotToken string `envconfig:"BOT_TOKEN" required:"true"`

	Database DatabaseConfig `envconfig:"DB"`
	Airtable AirtableConfig `envconfig:"AIRTABLE"`
	Sweep    SweepConfig    `envconfig:"SWEEP"`
	LinksConfig

	SendTimeout   time.Duration `envconfig:"SEND_TIMEOUT" default:"30s"`
	DefaultLocale string        `envconfig:"DEFAULT_LOCALE" default:"ru"`
}

// DatabaseConfig holds database connection settings, read from DB_* keys
type DatabaseConfig struct {
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     string `envconfig:"PORT" default:"5432"`
	Name     string `envconfig:"NAME" default:"renthunt"`
	User     string `envconfig:"USER" default:"renthunt"`
	Password string `envconfig:"PASSWORD" required:"true"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
}

// AirtableConfig points at the customer and property tables
type AirtableConfig struct {
	Token           string `envconfig:"TOKEN" required:"true"`
	Base            string `envconfig:"BASE" required:"true"`
	UsersTable      string `envconfig:"USERS_TABLE" default:"Users"`
	PropertiesTable string `envconfig:"PROPERTIES_TABLE" default:"Properties"`
}

// SweepConfig controls the periodic subscription sweep
type SweepConfig struct {
	Interval    time.Duration `envconfig:"INTERVAL" default:"1h"`
	Concurrency int           `envconfig:"CONCURRENCY" default:"4"`
}

// LinksConfig holds the URLs shown on buttons. It is embedded so its keys carry no prefix.
type LinksConfig struct {
	Tariffs string `envconfig:"TARIFFS_URL"`
	Support string `envconfig:"SUPPORT_URL"`
	Catalog string `envconfig:"CATALOG_URL"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if not exists)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.Sweep.Interval <= 0 {
		return nil, fmt.Errorf("SWEEP_INTERVAL must be positive, got %s", cfg.Sweep.Interval)
	}
	if cfg.Sweep.Concurrency < 1 {
		return nil, fmt.Errorf("SWEEP_CONCURRENCY must be at least 1, got %d", cfg.Sweep.Concurrency)
	}

	return &cfg, nil
}

// DSN returns PostgreSQL connection string
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
