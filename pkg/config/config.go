package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Env           string
	Server        ServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Typesense     TypesenseConfig
	Auth          AuthConfig
	Notifications NotificationConfig
	Holidays      HolidaysConfig
	Media         MediaConfig
	Site          SiteConfig
	OTEL          OTELConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// TypesenseConfig holds Typesense configuration
type TypesenseConfig struct {
	URL    string
	APIKey string
}

// AuthConfig holds admin authentication settings
type AuthConfig struct {
	JWTSecret         string
	TokenTTL          time.Duration
	ResetTokenTTL     time.Duration
	BootstrapEmail    string
	BootstrapPassword string
}

// NotificationConfig holds the outbound email/WhatsApp settings
type NotificationConfig struct {
	EmailAPIURL         string
	EmailAPIKey         string
	EmailFrom           string
	ClinicEmail         string
	WhatsAppToken       string
	WhatsAppPhoneNumber string
}

// HolidaysConfig configures the public holiday provider and its sync job
type HolidaysConfig struct {
	APIURL      string
	CountryCode string
	SyncEnabled bool
	SyncAt      string
}

// MediaConfig configures uploaded image storage
type MediaConfig struct {
	Dir      string
	BaseURL  string
	MaxBytes int64
}

// SiteConfig holds public site settings
type SiteConfig struct {
	BaseURL        string
	TimeZone       string
	AllowedOrigins []string
}

// Location returns the clinic's time zone, falling back to UTC when unknown.
func (s SiteConfig) Location() *time.Location {
	if s.TimeZone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// OTELConfig holds OpenTelemetry configuration
type OTELConfig struct {
	ServiceName    string
	ServiceVersion string
	Endpoint       string
	Enabled        bool
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "clinic_site"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			URL:    getEnv("TYPESENSE_URL", "http://localhost:8108"),
			APIKey: getEnv("TYPESENSE_API_KEY", "xyz"),
		},
		Auth: AuthConfig{
			JWTSecret:         getEnv("AUTH_JWT_SECRET", ""),
			TokenTTL:          getEnvAsDuration("AUTH_TOKEN_TTL", 24*time.Hour),
			ResetTokenTTL:     getEnvAsDuration("AUTH_RESET_TOKEN_TTL", time.Hour),
			BootstrapEmail:    getEnv("ADMIN_BOOTSTRAP_EMAIL", ""),
			BootstrapPassword: getEnv("ADMIN_BOOTSTRAP_PASSWORD", ""),
		},
		Notifications: NotificationConfig{
			EmailAPIURL:         getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
			EmailAPIKey:         getEnv("EMAIL_API_KEY", ""),
			EmailFrom:           getEnv("EMAIL_FROM", "appointments@example.com"),
			ClinicEmail:         getEnv("CLINIC_NOTIFICATION_EMAIL", ""),
			WhatsAppToken:       getEnv("WHATSAPP_ACCESS_TOKEN", ""),
			WhatsAppPhoneNumber: getEnv("WHATSAPP_PHONE_NUMBER_ID", ""),
		},
		Holidays: HolidaysConfig{
			APIURL:      getEnv("HOLIDAYS_API_URL", "https://date.nager.at/api/v3"),
			CountryCode: getEnv("HOLIDAYS_COUNTRY", "IN"),
			SyncEnabled: getEnvAsBool("HOLIDAYS_SYNC_ENABLED", false),
			SyncAt:      getEnv("HOLIDAYS_SYNC_AT", "03:00"),
		},
		Media: MediaConfig{
			Dir:      getEnv("MEDIA_DIR", "./media"),
			BaseURL:  getEnv("MEDIA_BASE_URL", "/media"),
			MaxBytes: int64(getEnvAsInt("MEDIA_MAX_BYTES", 5<<20)),
		},
		Site: SiteConfig{
			BaseURL:        getEnv("SITE_BASE_URL", "http://localhost:5173"),
			TimeZone:       getEnv("SITE_TIMEZONE", "Asia/Kolkata"),
			AllowedOrigins: getEnvAsList("ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
		},
		OTEL: OTELConfig{
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "clinic-site"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "1.0.0"),
			Endpoint:       getEnv("OTEL_ENDPOINT", ""),
			Enabled:        getEnvAsBool("OTEL_ENABLED", false),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations that cannot run safely.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("AUTH_JWT_SECRET must be set when APP_ENV=%s", c.Env)
		}
		c.Auth.JWTSecret = "development-only-secret"
	}
	if c.Media.MaxBytes <= 0 {
		return fmt.Errorf("MEDIA_MAX_BYTES must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Env, "development")
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
