package config

import (
	"errors"
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
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Booking  BookingConfig
	Cache    CacheConfig
	Export   ExportConfig
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

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BookingConfig tunes the scheduling engine.
type BookingConfig struct {
	SlotSizeMinutes       int
	DefaultMinNoticeHours int
	ProjectionWeeks       int
	HistoryWeeks          int
	CoalesceWindow        time.Duration
}

// CacheConfig governs short-lived caching of generated availability.
type CacheConfig struct {
	Enabled bool
	SlotTTL time.Duration
}

// ExportConfig toggles provider agenda exports.
type ExportConfig struct {
	Enabled bool
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
	cfg.APIPrefix = v.GetString("API_PREFIX")

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

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Booking = BookingConfig{
		SlotSizeMinutes:       v.GetInt("BOOKING_SLOT_SIZE_MINUTES"),
		DefaultMinNoticeHours: v.GetInt("BOOKING_MIN_NOTICE_HOURS"),
		ProjectionWeeks:       v.GetInt("BOOKING_PROJECTION_WEEKS"),
		HistoryWeeks:          v.GetInt("BOOKING_HISTORY_WEEKS"),
		CoalesceWindow:        parseDuration(v.GetString("BOOKING_COALESCE_WINDOW"), 200*time.Millisecond),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		SlotTTL: parseDuration(v.GetString("SLOT_CACHE_TTL"), 30*time.Second),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_AGENDA_EXPORT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "gato_app")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BOOKING_SLOT_SIZE_MINUTES", 60)
	v.SetDefault("BOOKING_MIN_NOTICE_HOURS", 24)
	v.SetDefault("BOOKING_PROJECTION_WEEKS", 8)
	v.SetDefault("BOOKING_HISTORY_WEEKS", 4)
	v.SetDefault("BOOKING_COALESCE_WINDOW", "200ms")

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("SLOT_CACHE_TTL", "30s")

	v.SetDefault("ENABLE_AGENDA_EXPORT", false)
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
