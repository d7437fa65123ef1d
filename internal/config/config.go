package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration values.
type Config struct {
	Port        string        `yaml:"port"`
	DatabaseURL string        `yaml:"database_url"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	Archive     ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig describes where original values are archived before repair.
type ArchiveConfig struct {
	Bucket         string `yaml:"bucket"`
	Region         string `yaml:"region"`
	Endpoint       string `yaml:"endpoint"`
	AccessKey      string `yaml:"access_key"`
	SecretKey      string `yaml:"secret_key"`
	KeyPrefix      string `yaml:"key_prefix"`
	ForcePathStyle bool   `yaml:"force_path_style"`
	LocalDir       string `yaml:"local_dir"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Port:      "8080",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load layers configuration: defaults, then the YAML file at path (a missing
// file is fine), then a .env file in the working directory, then the
// environment. Values from .env never override variables already set.
func Load(path string) (Config, error) {
	return load(path, ".env")
}

func load(path, envFile string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	applyEnv(&cfg)
	cfg.Archive.KeyPrefix = strings.Trim(cfg.Archive.KeyPrefix, "/")

	if cfg.Port == "" {
		return Config{}, errors.New("APP_PORT cannot be empty")
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getenv("APP_PORT", cfg.Port)
	cfg.DatabaseURL = getenv("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = getenv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenv("LOG_FORMAT", cfg.LogFormat)

	a := &cfg.Archive
	a.Bucket = getenv("ARCHIVE_BUCKET", a.Bucket)
	a.Region = getenv("ARCHIVE_REGION", a.Region)
	a.Endpoint = getenv("ARCHIVE_ENDPOINT", a.Endpoint)
	a.AccessKey = getenv("ARCHIVE_ACCESS_KEY", a.AccessKey)
	a.SecretKey = getenv("ARCHIVE_SECRET_KEY", a.SecretKey)
	a.KeyPrefix = getenv("ARCHIVE_KEY_PREFIX", a.KeyPrefix)
	a.ForcePathStyle = getenvBool("ARCHIVE_FORCE_PATH_STYLE", a.ForcePathStyle)
	a.LocalDir = getenv("ARCHIVE_LOCAL_DIR", a.LocalDir)
}

func getenv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func getenvBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}

	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}

	return parsed
}
