package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Log struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		Component string `yaml:"component"`
		Source    bool   `yaml:"source"`
	} `yaml:"log"`

	DB struct {
		DSN      string `yaml:"dsn"`
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
	} `yaml:"db"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	HTTP struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"http"`

	JWT struct {
		Secret string `yaml:"secret"`
	} `yaml:"jwt"`

	APNs struct {
		KeyPath string `yaml:"key_path"`
		KeyID   string `yaml:"key_id"`
		TeamID  string `yaml:"team_id"`
		Topic   string `yaml:"topic"`
		Prod    bool   `yaml:"prod"`
	} `yaml:"apns"`

	AWS struct {
		Region   string `yaml:"region"`
		S3Bucket string `yaml:"s3_bucket"`
	} `yaml:"aws"`

	App struct {
		ENV         string        `yaml:"env"`
		ChatWindow  time.Duration `yaml:"chat_window"`
		BlockWindow time.Duration `yaml:"block_window"`
	} `yaml:"app"`
}

// New builds config from environment variables. If CONFIG_FILE points at a
// YAML file, its values are loaded first and env vars override them.
func New() *Config {
	cfg := &Config{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", orDefault(cfg.Log.Level, "info"))
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", orDefault(cfg.Log.Format, "text"))
	// Empty means "let the logger pick its default component".
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", cfg.Log.Component)
	if v := os.Getenv("LOG_SOURCE"); v != "" {
		cfg.Log.Source = isTruthy(v)
	}

	// Database
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		cfg.DB.DSN = dsn
	}
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", orDefault(cfg.DB.Host, "localhost"))
		cfg.DB.Port = getEnvDefault("DB_PORT", orDefault(cfg.DB.Port, "3306"))
		cfg.DB.User = getEnvDefault("DB_USER", orDefault(cfg.DB.User, "root"))
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", orDefault(cfg.DB.Password, "root"))
		cfg.DB.Name = getEnvDefault("DB_NAME", orDefault(cfg.DB.Name, "sevenpm"))

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", orDefault(cfg.Redis.Addr, "localhost:6379"))
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", cfg.Redis.Password)
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", orDefault(cfg.HTTP.Host, "127.0.0.1"))
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", orDefault(cfg.HTTP.Port, "8080"))

	// Auth
	cfg.JWT.Secret = getEnvDefault("JWT_SECRET", orDefault(cfg.JWT.Secret, "dev-secret-change-me"))

	// APNs (push disabled when KeyPath is empty)
	cfg.APNs.KeyPath = getEnvDefault("APNS_KEY_PATH", cfg.APNs.KeyPath)
	cfg.APNs.KeyID = getEnvDefault("APNS_KEY_ID", cfg.APNs.KeyID)
	cfg.APNs.TeamID = getEnvDefault("APNS_TEAM_ID", cfg.APNs.TeamID)
	cfg.APNs.Topic = getEnvDefault("APNS_TOPIC", cfg.APNs.Topic)
	if v := os.Getenv("APNS_PROD"); v != "" {
		cfg.APNs.Prod = isTruthy(v)
	}

	// AWS (photo uploads disabled when bucket is empty)
	cfg.AWS.Region = getEnvDefault("AWS_REGION", orDefault(cfg.AWS.Region, "us-east-1"))
	cfg.AWS.S3Bucket = getEnvDefault("S3_BUCKET", cfg.AWS.S3Bucket)

	// App
	cfg.App.ENV = getEnvDefault("APP_ENV", orDefault(cfg.App.ENV, "development"))
	cfg.App.ChatWindow = getDurationDefault("CHAT_WINDOW", cfg.App.ChatWindow, 7*time.Minute)
	cfg.App.BlockWindow = getDurationDefault("BLOCK_WINDOW", cfg.App.BlockWindow, 30*24*time.Hour)

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDurationDefault(k string, current, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	if current > 0 {
		return current
	}
	return def
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
