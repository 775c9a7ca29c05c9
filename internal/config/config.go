package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AuthConfig struct {
	AccessSecret string
}

type ModerationConfig struct {
	GraceDays              int
	DisputeReviewThreshold int
}

type GeocoderConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

type Config struct {
	Environment    string
	UTCOffsetHours int
	HTTP           HTTPConfig
	DB             DBConfig
	Auth           AuthConfig
	Moderation     ModerationConfig
	Geocoder       GeocoderConfig
}

// Location returns the civil time zone all instants are captured in. The
// deployment region sits at a fixed offset ahead of UTC; mixing UTC-stored
// and offset-displayed instants is how grace-period comparisons go wrong,
// so timestamps are normalized here, at capture, not at display time.
func (c *Config) Location() *time.Location {
	return time.FixedZone("WIB", c.UTCOffsetHours*3600)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AddConfigPath("./internal/config")

	v.AutomaticEnv()

	_ = v.ReadInConfig()

	cfg := &Config{
		Environment:    v.GetString("APP_ENV"),
		UTCOffsetHours: v.GetInt("UTC_OFFSET_HOURS"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Moderation: ModerationConfig{
			GraceDays:              v.GetInt("MODERATION_GRACE_DAYS"),
			DisputeReviewThreshold: v.GetInt("DISPUTE_REVIEW_THRESHOLD"),
		},
		Geocoder: GeocoderConfig{
			BaseURL:   v.GetString("GEOCODER_BASE_URL"),
			Timeout:   v.GetDuration("GEOCODER_TIMEOUT"),
			UserAgent: v.GetString("GEOCODER_USER_AGENT"),
		},
	}

	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7090
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.UTCOffsetHours == 0 {
		cfg.UTCOffsetHours = 7
	}
	if cfg.Moderation.GraceDays <= 0 {
		cfg.Moderation.GraceDays = 3
	}
	if cfg.Moderation.DisputeReviewThreshold <= 0 {
		cfg.Moderation.DisputeReviewThreshold = 3
	}
	if cfg.Geocoder.Timeout <= 0 {
		cfg.Geocoder.Timeout = 5 * time.Second
	}
	if cfg.Geocoder.UserAgent == "" {
		cfg.Geocoder.UserAgent = "disaster-report-service"
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	return nil
}
