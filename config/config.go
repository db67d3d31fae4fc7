package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	DatabaseURL string
	DBLogLevel  string
	JWTSecret   string
	AppURL      string

	// Calendar weeks and day buckets are computed in this zone.
	CalendarTimezone string

	// Email Configuration
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string

	// Notification dispatcher
	NotificationWorkers   int
	NotificationQueueSize int

	// Reminders go out this long before an event starts; zero disables them.
	ReminderLead     time.Duration
	ReminderInterval time.Duration

	RateLimitPerMinute int
	RateLimitBurst     int
	CORSAllowedOrigins []string
	MetricsEnabled     bool
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env file: %v", err)
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		DatabaseURL: getEnv("DATABASE_URL", "user:password@tcp(localhost:3306)/mycalendar?charset=utf8mb4&parseTime=True&loc=UTC"),
		DBLogLevel:  getEnv("DB_LOG_LEVEL", "warn"),
		JWTSecret:   getEnv("JWT_SECRET", "your-secret-key"),
		AppURL:      getEnv("APP_URL", "http://localhost:8080"),

		CalendarTimezone: getEnv("CALENDAR_TIMEZONE", "UTC"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnvInt("SMTP_PORT", 2525),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		FromEmail:    getEnv("FROM_EMAIL", "noreply@mycalendar.local"),
		FromName:     getEnv("FROM_NAME", "MyCalendar"),

		NotificationWorkers:   getEnvInt("NOTIFICATION_WORKERS", 5),
		NotificationQueueSize: getEnvInt("NOTIFICATION_QUEUE_SIZE", 100),

		ReminderLead:     time.Duration(getEnvInt("REMINDER_LEAD_MINUTES", 30)) * time.Minute,
		ReminderInterval: time.Duration(getEnvInt("REMINDER_INTERVAL_MINUTES", 10)) * time.Minute,

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 20),
		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled:     getEnvBool("METRICS_ENABLED", true),
	}
}

// Location resolves CalendarTimezone, falling back to UTC for unknown names.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.CalendarTimezone)
	if err != nil {
		log.Printf("Warning: unknown CALENDAR_TIMEZONE %q, using UTC", c.CalendarTimezone)
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			values = append(values, part)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}
	return values
}
