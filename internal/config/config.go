package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Reminder
	ReminderHour         int
	ReminderMinute       int
	ReminderTimezone     string
	ReminderTickInterval time.Duration

	// Ledger
	LedgerRetentionDays   int
	LedgerCleanupInterval time.Duration

	// Notify
	TelegramBotToken string
	NotifyTimeout    time.Duration

	// Rate Limit
	RateLimitGeneral int

	// Query
	QueryMaxEntries int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合、または値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.ReminderHour = getEnvInt("REMINDER_HOUR", 20)
	cfg.ReminderMinute = getEnvInt("REMINDER_MINUTE", 0)
	cfg.ReminderTimezone = getEnvString("REMINDER_TZ", "UTC")
	cfg.ReminderTickInterval = getEnvDuration("REMINDER_TICK_INTERVAL", time.Minute)
	cfg.LedgerRetentionDays = getEnvInt("LEDGER_RETENTION_DAYS", 90)
	cfg.LedgerCleanupInterval = getEnvDuration("LEDGER_CLEANUP_INTERVAL", 24*time.Hour)
	cfg.TelegramBotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.NotifyTimeout = getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.QueryMaxEntries = getEnvInt("QUERY_MAX_ENTRIES", 100)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	// Validation
	if cfg.ReminderHour < 0 || cfg.ReminderHour > 23 {
		return nil, fmt.Errorf("REMINDER_HOUR must be between 0 and 23: got %d", cfg.ReminderHour)
	}
	if cfg.ReminderMinute < 0 || cfg.ReminderMinute > 59 {
		return nil, fmt.Errorf("REMINDER_MINUTE must be between 0 and 59: got %d", cfg.ReminderMinute)
	}
	if _, err := time.LoadLocation(cfg.ReminderTimezone); err != nil {
		return nil, fmt.Errorf("REMINDER_TZ is not a valid IANA timezone: %w", err)
	}
	if cfg.LedgerRetentionDays < 1 {
		return nil, fmt.Errorf("LEDGER_RETENTION_DAYS must be positive: got %d", cfg.LedgerRetentionDays)
	}

	return cfg, nil
}

// ReminderLocation は設定されたタイムゾーンのLocationを返す。
// Loadで検証済みのためエラーは起きない想定だが、万一の場合はUTCを返す。
func (c *Config) ReminderLocation() *time.Location {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
