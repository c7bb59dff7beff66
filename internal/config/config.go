package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	DefaultPort      = "8000"
	DefaultDataFile  = "todo.json"
	DefaultIndexFile = "templates/index.html"
	DefaultLogLevel  = "info"
)

type Config struct {
	Port      string
	DataFile  string
	IndexFile string
	LogLevel  string
	// ProgressInterval of zero disables the progress reporter.
	ProgressInterval time.Duration
}

// fileConfig mirrors Config in the TOML file. Empty values keep the default.
type fileConfig struct {
	Port             string `toml:"port"`
	DataFile         string `toml:"data_file"`
	IndexFile        string `toml:"index_file"`
	LogLevel         string `toml:"log_level"`
	ProgressInterval string `toml:"progress_interval"`
}

func Default() Config {
	return Config{
		Port:      DefaultPort,
		DataFile:  DefaultDataFile,
		IndexFile: DefaultIndexFile,
		LogLevel:  DefaultLogLevel,
	}
}

// Load applies, in order: defaults, the TOML file at path (skipped when path
// is empty), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(&cfg, path); err != nil {
			return cfg, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := loadEnv(&cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotenv sets variables from a .env file without overriding ones already
// in the environment. A missing file is not an error.
func LoadDotenv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func loadFile(cfg *Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return err
	}

	setString(&cfg.Port, fc.Port)
	setString(&cfg.DataFile, fc.DataFile)
	setString(&cfg.IndexFile, fc.IndexFile)
	setString(&cfg.LogLevel, fc.LogLevel)
	if fc.ProgressInterval != "" {
		d, err := time.ParseDuration(fc.ProgressInterval)
		if err != nil {
			return fmt.Errorf("progress_interval: %w", err)
		}
		cfg.ProgressInterval = d
	}
	return nil
}

func loadEnv(cfg *Config) error {
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.DataFile = getEnv("DATA_FILE", cfg.DataFile)
	cfg.IndexFile = getEnv("INDEX_FILE", cfg.IndexFile)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	if v := os.Getenv("PROGRESS_LOG_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PROGRESS_LOG_INTERVAL: %w", err)
		}
		cfg.ProgressInterval = d
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
