package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort  string `yaml:"app_port"`
	DataDir  string `yaml:"data_dir"`
	Limit    int    `yaml:"limit"`
	LogLevel string `yaml:"log_level"`

	CronSpec string `yaml:"cron_spec"`

	RedditBaseURL  string        `yaml:"reddit_base_url"`
	HNBaseURL      string        `yaml:"hn_base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// 以下为可选镜像存储，留空即不启用
	PostgresDSN string `yaml:"postgres_dsn"`
	RedisAddr   string `yaml:"redis_addr"`
	MongoURI    string `yaml:"mongo_uri"`
	MongoDB     string `yaml:"mongo_db"`
}

func Defaults() Config {
	return Config{
		AppPort:        "9000",
		DataDir:        "data",
		Limit:          100,
		LogLevel:       "info",
		CronSpec:       "0 9 * * *",
		RedditBaseURL:  "https://www.reddit.com",
		HNBaseURL:      "https://hacker-news.firebaseio.com",
		RequestTimeout: 30 * time.Second,
		MongoDB:        "feedbackhub",
	}
}

// Load 依次应用默认值、YAML 文件（path 为空时跳过）和环境变量
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.AppPort = getEnv("APP_PORT", cfg.AppPort)
	cfg.DataDir = getEnv("FEEDBACK_DATA_DIR", cfg.DataDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CronSpec = getEnv("CRON_SPEC", cfg.CronSpec)
	cfg.RedditBaseURL = getEnv("REDDIT_BASE_URL", cfg.RedditBaseURL)
	cfg.HNBaseURL = getEnv("HN_BASE_URL", cfg.HNBaseURL)
	cfg.PostgresDSN = getEnv("POSTGRES_DSN", cfg.PostgresDSN)
	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.MongoURI = getEnv("MONGO_URI", cfg.MongoURI)
	cfg.MongoDB = getEnv("MONGO_DB", cfg.MongoDB)

	var err error
	if cfg.Limit, err = getEnvInt("FEEDBACK_LIMIT", cfg.Limit); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("config: limit must be positive, got %d", c.Limit)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.DataDir == "" {
		return errors.New("config: data_dir is empty")
	}
	if _, err := cron.ParseStandard(c.CronSpec); err != nil {
		return fmt.Errorf("config: cron_spec %q: %w", c.CronSpec, err)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}
