package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Study   StudyConfig   `mapstructure:"study"`
	Streak  StreakConfig  `mapstructure:"streak"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	GRPCPort       int      `mapstructure:"grpc_port"`
	HTTPPort       int      `mapstructure:"http_port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StorageConfig selects the key-value backend records live in.
type StorageConfig struct {
	Driver          string `mapstructure:"driver"`
	DSN             string `mapstructure:"dsn"`
	LogSQL          bool   `mapstructure:"log_sql"`
	Namespace       string `mapstructure:"namespace"`
	MongoDatabase   string `mapstructure:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GeminiConfig configures the summary and quiz generator.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// StudyConfig holds the free-tier limits of the study flow.
type StudyConfig struct {
	MaxFreeUploads int `mapstructure:"max_free_uploads"`
	MinTextLength  int `mapstructure:"min_text_length"`
}

// StreakConfig holds the time zone calendar days are counted in.
type StreakConfig struct {
	Timezone string `mapstructure:"timezone"`
}

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
	DriverMongo    = "mongo"
)

// Load reads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = viper.BindEnv("gemini.api_key", "GEMINI_API_KEY", "API_KEY")

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.grpc_port", 9090)
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// Storage defaults
	viper.SetDefault("storage.driver", DriverSQLite)
	viper.SetDefault("storage.dsn", "file:neurostudy.db?_fk=1")
	viper.SetDefault("storage.log_sql", false)
	viper.SetDefault("storage.namespace", "neurostudy:")
	viper.SetDefault("storage.mongo_database", "neurostudy")
	viper.SetDefault("storage.mongo_collection", "records")

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")

	viper.SetDefault("gemini.model", "gemini-2.5-flash")

	viper.SetDefault("study.max_free_uploads", 3)
	viper.SetDefault("study.min_text_length", 50)

	viper.SetDefault("streak.timezone", "Local")
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverRedis, DriverMongo:
	default:
		return fmt.Errorf("unsupported storage driver %q", c.Storage.Driver)
	}
	if c.Study.MaxFreeUploads < 0 {
		return fmt.Errorf("study.max_free_uploads must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves streak.timezone. An empty value means the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Streak.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Streak.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load streak timezone: %w", err)
	}
	return loc, nil
}
