package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	LogLevel               string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	NATSSubject            string
	JWTSecret              string
	JWTTTL                 time.Duration
	AdminEmail             string
	AdminPasswordHash      string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	MediaMaxUploadMB       int
	ContentCacheTTL        time.Duration
	StatsCacheTTL          time.Duration
	ActivityListLimit      int
	ActivityListMax        int
	SentryDSN              string
	GalleryPageSize        int
	LazyMediaRootMargin    float64
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("WAKAF")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "Wakaf CMS API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("nats.subject", "wakaf.activity")
	v.SetDefault("jwt.ttl", "12h")
	v.SetDefault("cloudinary.folder", "wakaf")
	v.SetDefault("media.max_upload_mb", 10)
	v.SetDefault("cache.content_ttl", "5m")
	v.SetDefault("cache.stats_ttl", "1m")
	v.SetDefault("activity.list_limit", 100)
	v.SetDefault("activity.list_max", 500)
	v.SetDefault("gallery.page_size", 24)
	v.SetDefault("lazymedia.root_margin", 200)
}

func fromViper(v *viper.Viper) (Config, error) {
	jwtTTL, err := parseDuration(v, "jwt.ttl", 12*time.Hour)
	if err != nil {
		return Config{}, err
	}
	contentTTL, err := parseDuration(v, "cache.content_ttl", 5*time.Minute)
	if err != nil {
		return Config{}, err
	}
	statsTTL, err := parseDuration(v, "cache.stats_ttl", time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		LogLevel:               strings.ToLower(v.GetString("log.level")),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		NATSSubject:            v.GetString("nats.subject"),
		JWTSecret:              v.GetString("jwt.secret"),
		JWTTTL:                 jwtTTL,
		AdminEmail:             strings.ToLower(strings.TrimSpace(v.GetString("admin.email"))),
		AdminPasswordHash:      v.GetString("admin.password_hash"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		MediaMaxUploadMB:       v.GetInt("media.max_upload_mb"),
		ContentCacheTTL:        contentTTL,
		StatsCacheTTL:          statsTTL,
		ActivityListLimit:      v.GetInt("activity.list_limit"),
		ActivityListMax:        v.GetInt("activity.list_max"),
		SentryDSN:              v.GetString("sentry.dsn"),
		GalleryPageSize:        v.GetInt("gallery.page_size"),
		LazyMediaRootMargin:    v.GetFloat64("lazymedia.root_margin"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}
	if cfg.AdminEmail == "" || cfg.AdminPasswordHash == "" {
		return Config{}, fmt.Errorf("admin email and password hash must be provided")
	}

	if cfg.MediaMaxUploadMB <= 0 {
		cfg.MediaMaxUploadMB = 10
	}
	if cfg.ActivityListLimit <= 0 {
		cfg.ActivityListLimit = 100
	}
	if cfg.ActivityListMax < cfg.ActivityListLimit {
		cfg.ActivityListMax = cfg.ActivityListLimit
	}
	if cfg.GalleryPageSize <= 0 {
		cfg.GalleryPageSize = 24
	}
	if cfg.LazyMediaRootMargin < 0 {
		cfg.LazyMediaRootMargin = 0
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
