package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Business timezone for all civil date/time math (DST-aware).
	Timezone string

	// Meta WhatsApp Cloud API
	WhatsAppAccessToken   string
	WhatsAppPhoneNumberID string
	WhatsAppVerifyToken   string
	WhatsAppBaseURL       string

	// Google Calendar
	GoogleCredentialsJSON string
	GoogleCalendarID      string
	CalendarTimeout       time.Duration

	// Default working hours applied when a team member row has no overrides.
	WorkStartHour    int
	WorkEndHour      int
	WorkEndSaturday  int
	PendingSelectTTL time.Duration

	// Hours 1..cutoff without an explicit am/pm are assumed PM ("4" means 4 PM,
	// nobody books a property visit at 4 AM). 0 disables the heuristic.
	AmbiguousHourPMCutoff int

	AdminJWTSecret string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		Timezone: getEnv("BUSINESS_TIMEZONE", "America/Mexico_City"),

		WhatsAppAccessToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneNumberID: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		WhatsAppVerifyToken:   getEnv("WHATSAPP_VERIFY_TOKEN", ""),
		WhatsAppBaseURL:       getEnv("WHATSAPP_BASE_URL", ""),

		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),
		CalendarTimeout:       getEnvAsDuration("CALENDAR_TIMEOUT", 5*time.Second),

		WorkStartHour:    getEnvAsInt("WORK_START_HOUR", 9),
		WorkEndHour:      getEnvAsInt("WORK_END_HOUR", 18),
		WorkEndSaturday:  getEnvAsInt("WORK_END_SATURDAY", 14),
		PendingSelectTTL: getEnvAsDuration("PENDING_SELECTION_TTL", 10*time.Minute),

		AmbiguousHourPMCutoff: getEnvAsInt("AMBIGUOUS_HOUR_PM_CUTOFF", 7),

		AdminJWTSecret: getEnv("ADMIN_JWT_SECRET", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
