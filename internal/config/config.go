package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds everything the service reads from the environment.
// Business-rule tunables (late cutoff, holiday threshold, similarity
// threshold, weekly quota) are configurable on purpose: the values in use
// were never confirmed with the business owner, so they must stay visible.
type Config struct {
	AppEnv string
	Port   string

	// Base.vn access tokens, one per upstream product.
	CheckinToken  string
	TimeoffToken  string
	AccountToken  string
	GoalToken     string
	WeworkToken   string
	WorkflowToken string
	InsideToken   string

	// Directory group fetched from the account API.
	AccountGroupPath string

	Timezone string

	RedisAddr   string
	KafkaBroker string

	// SMTP delivery.
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	MailFrom     string

	// Optional LLM commentary (OpenAI-compatible endpoint).
	InsightAPIURL string
	InsightAPIKey string
	InsightModel  string

	// Shared secret guarding the report API.
	APIAccessToken string

	UpstreamTimeout time.Duration

	// Attendance business rules.
	LateCutoffHour      int
	LateCutoffMinute    int
	EarlyStartHour      int
	EndOfDayHour        int
	EndOfDayMinute      int
	LunchBreakHours     float64
	HolidayThreshold    float64
	WeeklyQuotaHours    float64
	SimilarityThreshold float64
}

func Load() (*Config, error) {
	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "development"),
		Port:   getEnv("PORT", "3000"),

		CheckinToken:  os.Getenv("CHECKIN_TOKEN"),
		TimeoffToken:  os.Getenv("TIMEOFF_TOKEN"),
		AccountToken:  os.Getenv("ACCOUNT_TOKEN"),
		GoalToken:     os.Getenv("GOAL_ACCESS_TOKEN"),
		WeworkToken:   os.Getenv("WEWORK_ACCESS_TOKEN"),
		WorkflowToken: os.Getenv("WORKFLOW_TOKEN"),
		InsideToken:   os.Getenv("INSIDE_TOKEN"),

		AccountGroupPath: getEnv("ACCOUNT_GROUP_PATH", "nvvanphong"),

		Timezone: getEnv("REPORT_TIMEZONE", "Asia/Ho_Chi_Minh"),

		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBroker: os.Getenv("KAFKA_BROKER"),

		SMTPHost:     getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getEnvInt("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     os.Getenv("MAIL_FROM"),

		InsightAPIURL: os.Getenv("INSIGHT_API_URL"),
		InsightAPIKey: os.Getenv("INSIGHT_API_KEY"),
		InsightModel:  getEnv("INSIGHT_MODEL", "gpt-4o-mini"),

		APIAccessToken: os.Getenv("API_ACCESS_TOKEN"),

		UpstreamTimeout: time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 30)) * time.Second,

		LateCutoffHour:      getEnvInt("LATE_CUTOFF_HOUR", 8),
		LateCutoffMinute:    getEnvInt("LATE_CUTOFF_MINUTE", 30),
		EarlyStartHour:      getEnvInt("EARLY_START_HOUR", 8),
		EndOfDayHour:        getEnvInt("END_OF_DAY_HOUR", 17),
		EndOfDayMinute:      getEnvInt("END_OF_DAY_MINUTE", 30),
		LunchBreakHours:     getEnvFloat("LUNCH_BREAK_HOURS", 1.0),
		HolidayThreshold:    getEnvFloat("HOLIDAY_THRESHOLD", 0.1),
		WeeklyQuotaHours:    getEnvFloat("WEEKLY_QUOTA_HOURS", 42),
		SimilarityThreshold: getEnvFloat("SIMILARITY_THRESHOLD", 0.15),
	}

	if cfg.MailFrom == "" {
		cfg.MailFrom = cfg.SMTPUser
	}
	if cfg.HolidayThreshold < 0 || cfg.HolidayThreshold >= 1 {
		return nil, fmt.Errorf("HOLIDAY_THRESHOLD must be in [0, 1), got %v", cfg.HolidayThreshold)
	}
	if cfg.SimilarityThreshold < 0 || cfg.SimilarityThreshold > 1 {
		return nil, fmt.Errorf("SIMILARITY_THRESHOLD must be in [0, 1], got %v", cfg.SimilarityThreshold)
	}

	return cfg, nil
}

// Location resolves the configured report timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
