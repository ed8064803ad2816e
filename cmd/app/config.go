package main

import (
	"errors"
	"io/fs"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port             string   `mapstructure:"PORT"`
	Environment      string   `mapstructure:"ENVIRONMENT"`
	Version          string   `mapstructure:"VERSION"`
	TrustedOrigins   []string `mapstructure:"TRUSTED_ORIGINS"`
	LogFile          string   `mapstructure:"LOG_FILE"`
	TLSCertFile      string   `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile       string   `mapstructure:"TLS_KEY_FILE"`
	MigrationsSource string   `mapstructure:"MIGRATIONS_SOURCE"`

	DBConfig        `mapstructure:",squash"`
	AuthConfig      `mapstructure:",squash"`
	MediaConfig     `mapstructure:",squash"`
	MailConfig      `mapstructure:",squash"`
	MQConfig        `mapstructure:",squash"`
	RateLimitConfig `mapstructure:",squash"`
}

type DBConfig struct {
	DBHost     string `mapstructure:"POSTGRES_HOST"`
	DBPort     string `mapstructure:"POSTGRES_PORT"`
	DBUser     string `mapstructure:"POSTGRES_USER"`
	DBPassword string `mapstructure:"POSTGRES_PASSWORD"`
	DBName     string `mapstructure:"POSTGRES_DB"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"JWT_SECRET"`
	JWTTTL    time.Duration `mapstructure:"JWT_TTL"`
}

type MediaConfig struct {
	MediaRoot    string `mapstructure:"MEDIA_ROOT"`
	MediaBaseURL string `mapstructure:"MEDIA_BASE_URL"`
}

type MailConfig struct {
	MailHost     string `mapstructure:"MAIL_HOST"`
	MailPort     int    `mapstructure:"MAIL_PORT"`
	MailUser     string `mapstructure:"MAIL_USER"`
	MailPassword string `mapstructure:"MAIL_PASSWORD"`
	MailSender   string `mapstructure:"MAIL_SENDER"`
}

type MQConfig struct {
	MQHost     string `mapstructure:"RABBITMQ_HOST"`
	MQPort     string `mapstructure:"RABBITMQ_PORT"`
	MQUser     string `mapstructure:"RABBITMQ_USER"`
	MQPassword string `mapstructure:"RABBITMQ_PASSWORD"`
}

type RateLimitConfig struct {
	RateLimitEnabled bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RateLimitRPS     float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst   int     `mapstructure:"RATE_LIMIT_BURST"`
}

// configKeys are bound to the environment so they are unmarshalled even when no env file sets them.
var configKeys = []string{
	"PORT", "ENVIRONMENT", "VERSION", "TRUSTED_ORIGINS", "LOG_FILE", "TLS_CERT_FILE", "TLS_KEY_FILE", "MIGRATIONS_SOURCE",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB",
	"JWT_SECRET", "JWT_TTL",
	"MEDIA_ROOT", "MEDIA_BASE_URL",
	"MAIL_HOST", "MAIL_PORT", "MAIL_USER", "MAIL_PASSWORD", "MAIL_SENDER",
	"RABBITMQ_HOST", "RABBITMQ_PORT", "RABBITMQ_USER", "RABBITMQ_PASSWORD",
	"RATE_LIMIT_ENABLED", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
}

// loadConfig reads the env file at path. Environment variables override the file, and a missing
// file is not an error.
func loadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("PORT", "4000")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("VERSION", "1.0.0")
	v.SetDefault("MIGRATIONS_SOURCE", "file://migrations")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("JWT_TTL", "720h")
	v.SetDefault("MEDIA_ROOT", "uploads")
	v.SetDefault("MEDIA_BASE_URL", "http://localhost:4000")
	v.SetDefault("MAIL_PORT", 587)
	v.SetDefault("RABBITMQ_PORT", "5672")
	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_RPS", 2)
	v.SetDefault("RATE_LIMIT_BURST", 4)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
