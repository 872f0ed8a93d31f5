package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
	Fetcher FetcherConfig `yaml:"fetcher"`
	Convert ConvertConfig `yaml:"convert"`
	Limiter LimiterConfig `yaml:"limiter"`
}

type ServerConfig struct {
	Addr                string `yaml:"addr"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type FetcherConfig struct {
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	MaxRetries     int    `yaml:"max_retries"`
	MaxImageBytes  int64  `yaml:"max_image_bytes"`
	UserAgent      string `yaml:"user_agent"`
}

type ConvertConfig struct {
	MaxImages    int `yaml:"max_images"`
	FetchWorkers int `yaml:"fetch_workers"`
	JPEGQuality  int `yaml:"jpeg_quality"`
}

type LimiterConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
	RatePerSecond int `yaml:"rate_per_second"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides(cfg), nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return applyEnvOverrides(cfg), nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 120,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Fetcher: FetcherConfig{
			TimeoutSeconds: 30,
			MaxRetries:     1,
			MaxImageBytes:  32 << 20,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		},
		Convert: ConvertConfig{
			MaxImages:    100,
			FetchWorkers: 8,
			JPEGQuality:  90,
		},
		Limiter: LimiterConfig{
			MaxConcurrent: 10,
			RatePerSecond: 5,
		},
	}
}

func applyEnvOverrides(cfg *Config) *Config {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = fmt.Sprintf(":%s", v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v, err := strconv.Atoi(os.Getenv("FETCH_TIMEOUT_SECONDS")); err == nil && v > 0 {
		cfg.Fetcher.TimeoutSeconds = v
	}
	if v, err := strconv.Atoi(os.Getenv("MAX_IMAGES")); err == nil && v > 0 {
		cfg.Convert.MaxImages = v
	}
	if v, err := strconv.Atoi(os.Getenv("FETCH_WORKERS")); err == nil && v > 0 {
		cfg.Convert.FetchWorkers = v
	}
	return cfg
}
