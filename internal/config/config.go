package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config keeps runtime settings for the bot.
type Config struct {
	TelegramToken   string
	AdminTelegramID int64
	DatabaseURL     string
	HTTPAddr        string
	WebhookURL      string
	WebhookSecret   string
	PanelUser       string
	PanelPassword   string
	ReportInterval  time.Duration
	ReportAt        string
	ReportLocation  *time.Location
	LogLevel        string
	LogFormat       string
}

// Postgres reports whether DatabaseURL points at a PostgreSQL server.
func (c Config) Postgres() bool {
	return strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://")
}

// Load reads .env, the optional config file and the environment, in increasing priority.
func Load(configFile string) (Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "leadbot.db")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("admin_panel_user", "admin")
	v.SetDefault("admin_report_interval_hours", "0")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

func fromViper(v *viper.Viper) (Config, error) {
	str := func(key string) string { return strings.TrimSpace(v.GetString(key)) }

	cfg := Config{
		TelegramToken: str("telegram_bot_token"),
		DatabaseURL:   str("database_url"),
		HTTPAddr:      str("http_addr"),
		WebhookURL:    str("webhook_url"),
		WebhookSecret: str("webhook_secret"),
		PanelUser:     str("admin_panel_user"),
		PanelPassword: str("admin_panel_password"),
		ReportAt:      str("admin_report_at"),
		LogLevel:      str("log_level"),
		LogFormat:     strings.ToLower(str("log_format")),
	}

	var errs []error

	if raw := str("admin_telegram_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("ADMIN_TELEGRAM_ID: %w", err))
		}
		cfg.AdminTelegramID = id
	}

	interval, err := parseInterval(str("admin_report_interval_hours"))
	if err != nil {
		errs = append(errs, fmt.Errorf("ADMIN_REPORT_INTERVAL_HOURS: %w", err))
	}
	cfg.ReportInterval = interval

	cfg.ReportLocation = time.Local
	if tz := str("report_timezone"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			errs = append(errs, fmt.Errorf("REPORT_TIMEZONE: %w", err))
		} else {
			cfg.ReportLocation = loc
		}
	}

	if err := errors.Join(errs...); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Validate checks values that cannot be caught while parsing.
func (c Config) Validate() error {
	if c.ReportInterval < 0 {
		return fmt.Errorf("report interval must not be negative")
	}
	if c.ReportAt != "" {
		if _, err := time.Parse("15:04", c.ReportAt); err != nil {
			return fmt.Errorf("ADMIN_REPORT_AT must be HH:MM, got %q", c.ReportAt)
		}
	}
	switch c.LogFormat {
	case "", "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is empty")
	}
	if c.PanelPassword != "" && c.PanelUser == "" {
		return fmt.Errorf("ADMIN_PANEL_USER is required when ADMIN_PANEL_PASSWORD is set")
	}
	return nil
}

// parseInterval reads a whole or fractional number of hours.
func parseInterval(raw string) (time.Duration, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil {
		return 0, err
	}
	return hours, nil
}
