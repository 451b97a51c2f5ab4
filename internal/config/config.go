// Package config loads application settings from the environment, an optional
// .env file and an optional config file named by CONFIG_FILE.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AdminConfig struct {
	Username string
	Email    string
	Password string
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type FacebookConfig struct {
	AccessToken string
	PageID      string
}

type Config struct {
	Env                 string
	HTTPAddr            string
	DatabaseURL         string
	SQLitePath          string
	Admin               AdminConfig
	SessionSecret       string
	SMTP                SMTPConfig
	NotificationEmail   string
	NotificationTimeout time.Duration
	AMQPURL             string
	Facebook            FacebookConfig
	CORSAllowedOrigins  []string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "data/cable-com.db")
	v.SetDefault("ADMIN_DEFAULT_USERNAME", "ryan")
	v.SetDefault("ADMIN_DEFAULT_EMAIL", "ryan@cable-comservices.com")
	v.SetDefault("ADMIN_DEFAULT_PASSWORD", "SecurePassword22!")
	v.SetDefault("ADMIN_SESSION_SECRET", "")
	v.SetDefault("SMTP_HOST", "smtp.zoho.com")
	v.SetDefault("SMTP_PORT", "587")
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("NOTIFICATION_EMAIL", "contact@cable-comservices.com")
	v.SetDefault("NOTIFICATION_TIMEOUT", "15s")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("FACEBOOK_ACCESS_TOKEN", "")
	v.SetDefault("FACEBOOK_PAGE_ID", "61575613031791")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
}

// Load reads the configuration. A missing .env or config file is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config read error: %w", err)
		}
	}

	port := v.GetInt("SMTP_PORT")
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SMTP_PORT must be between 1 and 65535, got %q", v.GetString("SMTP_PORT"))
	}

	timeout, err := time.ParseDuration(v.GetString("NOTIFICATION_TIMEOUT"))
	if err != nil || timeout <= 0 {
		return nil, fmt.Errorf("NOTIFICATION_TIMEOUT must be a positive duration, got %q", v.GetString("NOTIFICATION_TIMEOUT"))
	}

	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		DatabaseURL: v.GetString("DATABASE_URL"),
		SQLitePath:  v.GetString("SQLITE_PATH"),
		Admin: AdminConfig{
			Username: v.GetString("ADMIN_DEFAULT_USERNAME"),
			Email:    v.GetString("ADMIN_DEFAULT_EMAIL"),
			Password: v.GetString("ADMIN_DEFAULT_PASSWORD"),
		},
		SessionSecret: v.GetString("ADMIN_SESSION_SECRET"),
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     port,
			User:     v.GetString("SMTP_USER"),
			Password: v.GetString("SMTP_PASS"),
		},
		NotificationEmail:   v.GetString("NOTIFICATION_EMAIL"),
		NotificationTimeout: timeout,
		AMQPURL:             v.GetString("AMQP_URL"),
		Facebook: FacebookConfig{
			AccessToken: v.GetString("FACEBOOK_ACCESS_TOKEN"),
			PageID:      v.GetString("FACEBOOK_PAGE_ID"),
		},
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validate(c *Config) error {
	if strings.TrimSpace(c.HTTPAddr) == "" {
		return errors.New("HTTP_ADDR must not be empty")
	}
	if strings.TrimSpace(c.Admin.Username) == "" || strings.TrimSpace(c.Admin.Password) == "" {
		return errors.New("ADMIN_DEFAULT_USERNAME and ADMIN_DEFAULT_PASSWORD must not be empty")
	}
	if c.DatabaseURL == "" && strings.TrimSpace(c.SQLitePath) == "" {
		return errors.New("either DATABASE_URL or SQLITE_PATH must be set")
	}
	if c.IsProduction() && slices.Contains(c.CORSAllowedOrigins, "*") {
		return errors.New("CORS_ALLOWED_ORIGINS must list explicit origins in production")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
