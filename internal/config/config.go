package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// Token store backends.
const (
	TokenStoreFile   = "file"
	TokenStoreMemory = "memory"
	TokenStoreRedis  = "redis"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	APIBaseURL         string `yaml:"apiBaseURL"`
	LogLevel           string `yaml:"logLevel"`
	HTTPTimeoutSeconds int    `yaml:"httpTimeoutSeconds"`
	PageSize           int    `yaml:"pageSize"`
	TokenStore         string `yaml:"tokenStore"`
	TokenPath          string `yaml:"tokenPath"`
	RedisAddr          string `yaml:"redisAddr"`
	RedisPassword      string `yaml:"redisPassword"`
}

// Load reads config from path (defaults to config.yaml). A missing default
// file is tolerated so the client can run on environment variables alone.
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	explicit := path != ""
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case os.IsNotExist(err) && !explicit:
		// env-only run
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if v := os.Getenv("LIBRAIRIE_API_URL"); v != "" {
		cfg.APIBaseURL = strings.TrimSpace(v)
	}
	if v := os.Getenv("LIBRAIRIE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.TrimSpace(v)
	}
	if v := os.Getenv("LIBRAIRIE_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.HTTPTimeoutSeconds = n
		}
	}
	if v := os.Getenv("LIBRAIRIE_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.PageSize = n
		}
	}
	if v := os.Getenv("LIBRAIRIE_TOKEN_STORE"); v != "" {
		cfg.TokenStore = strings.TrimSpace(v)
	}
	if v := os.Getenv("LIBRAIRIE_TOKEN_PATH"); v != "" {
		cfg.TokenPath = strings.TrimSpace(v)
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}

	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.HTTPTimeoutSeconds <= 0 {
		cfg.HTTPTimeoutSeconds = 10
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 4
	}
	if cfg.TokenStore == "" {
		cfg.TokenStore = TokenStoreFile
	}
}

func validateConfig(cfg FileConfig) error {
	if strings.TrimSpace(cfg.APIBaseURL) == "" {
		return errors.New("config: apiBaseURL is required (set in config.yaml or LIBRAIRIE_API_URL)")
	}
	switch cfg.TokenStore {
	case TokenStoreFile, TokenStoreMemory, TokenStoreRedis:
	default:
		return fmt.Errorf("config: unknown tokenStore %q (want file, memory, or redis)", cfg.TokenStore)
	}
	if cfg.TokenStore == TokenStoreRedis && strings.TrimSpace(cfg.RedisAddr) == "" {
		return errors.New("config: redisAddr is required when tokenStore is redis")
	}
	return nil
}

// HTTPTimeout returns the request timeout as a duration.
func (c FileConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
