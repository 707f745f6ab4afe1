package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env  string
	Port int

	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	CORS      CORSConfig
	Log       LogConfig
	Dashboard DashboardConfig
	Scheduler SchedulerConfig
	Notify    NotifyConfig
	Bootstrap BootstrapConfig
	Templates TemplatesConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig controls the signed session cookie.
type SessionConfig struct {
	Secret      string
	CookieName  string
	TTL         time.Duration
	RememberTTL time.Duration
	Secure      bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// DashboardConfig governs dashboard cache tuning.
type DashboardConfig struct {
	CacheTTL time.Duration
}

// SchedulerConfig fixes the wall-clock times of the maintenance jobs.
type SchedulerConfig struct {
	Enabled         bool
	TickInterval    time.Duration
	AttendanceSweep ClockTime
	ReminderSweep   ClockTime
	ReminderWindow  time.Duration
	QueueWorkers    int
	QueueMaxRetries int
	QueueRetryDelay time.Duration
}

// NotifyConfig selects the reminder delivery channel.
type NotifyConfig struct {
	Driver      string // "console" or "sendgrid"
	SendgridKey string
	FromEmail   string
	FromName    string
}

// BootstrapConfig seeds the default administrator account.
type BootstrapConfig struct {
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// TemplatesConfig locates the server-rendered templates.
type TemplatesConfig struct {
	Glob string
}

// ClockTime is a fixed time of day in the server's local clock.
type ClockTime struct {
	Hour   int
	Minute int
}

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:      v.GetString("SESSION_SECRET"),
		CookieName:  v.GetString("SESSION_COOKIE_NAME"),
		TTL:         parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		RememberTTL: parseDuration(v.GetString("SESSION_REMEMBER_TTL"), 720*time.Hour),
		Secure:      cfg.Env == EnvProduction,
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	attendanceAt, err := parseClockTime(v.GetString("SCHEDULER_ATTENDANCE_SWEEP_AT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_ATTENDANCE_SWEEP_AT: %w", err)
	}
	reminderAt, err := parseClockTime(v.GetString("SCHEDULER_REMINDER_SWEEP_AT"))
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_REMINDER_SWEEP_AT: %w", err)
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:         v.GetBool("SCHEDULER_ENABLED"),
		TickInterval:    parseDuration(v.GetString("SCHEDULER_TICK_INTERVAL"), time.Minute),
		AttendanceSweep: attendanceAt,
		ReminderSweep:   reminderAt,
		ReminderWindow:  parseDuration(v.GetString("SCHEDULER_REMINDER_WINDOW"), 24*time.Hour),
		QueueWorkers:    v.GetInt("NOTIFY_QUEUE_WORKERS"),
		QueueMaxRetries: v.GetInt("NOTIFY_QUEUE_MAX_RETRIES"),
		QueueRetryDelay: parseDuration(v.GetString("NOTIFY_QUEUE_RETRY_DELAY"), 30*time.Second),
	}

	cfg.Notify = NotifyConfig{
		Driver:      v.GetString("NOTIFY_DRIVER"),
		SendgridKey: v.GetString("SENDGRID_API_KEY"),
		FromEmail:   v.GetString("NOTIFY_FROM_EMAIL"),
		FromName:    v.GetString("NOTIFY_FROM_NAME"),
	}

	cfg.Bootstrap = BootstrapConfig{
		AdminUsername: v.GetString("BOOTSTRAP_ADMIN_USERNAME"),
		AdminEmail:    v.GetString("BOOTSTRAP_ADMIN_EMAIL"),
		AdminPassword: v.GetString("BOOTSTRAP_ADMIN_PASSWORD"),
	}

	cfg.Templates = TemplatesConfig{
		Glob: v.GetString("TEMPLATES_GLOB"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", "dev_secret")
	v.SetDefault("SESSION_COOKIE_NAME", "portal_session")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_REMEMBER_TTL", "720h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("SCHEDULER_TICK_INTERVAL", "1m")
	v.SetDefault("SCHEDULER_ATTENDANCE_SWEEP_AT", "08:00")
	v.SetDefault("SCHEDULER_REMINDER_SWEEP_AT", "17:00")
	v.SetDefault("SCHEDULER_REMINDER_WINDOW", "24h")
	v.SetDefault("NOTIFY_QUEUE_WORKERS", 2)
	v.SetDefault("NOTIFY_QUEUE_MAX_RETRIES", 3)
	v.SetDefault("NOTIFY_QUEUE_RETRY_DELAY", "30s")

	v.SetDefault("NOTIFY_DRIVER", "console")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("NOTIFY_FROM_EMAIL", "noreply@school.local")
	v.SetDefault("NOTIFY_FROM_NAME", "School Portal")

	v.SetDefault("BOOTSTRAP_ADMIN_USERNAME", "admin")
	v.SetDefault("BOOTSTRAP_ADMIN_EMAIL", "admin@school.local")
	v.SetDefault("BOOTSTRAP_ADMIN_PASSWORD", "admin123")

	v.SetDefault("TEMPLATES_GLOB", "web/templates/*.html")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func parseClockTime(raw string) (ClockTime, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return ClockTime{}, err
	}
	return ClockTime{Hour: parsed.Hour(), Minute: parsed.Minute()}, nil
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
