package config

import (
	"errors"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env         string
	Port        string
	BaseURL     string
	DatabaseURL string
	JWTSecret   string
	RedisURL    string
	CORSOrigin  string

	UploadDir     string
	UploadMaxMB   int
	ImageMaxWidth int

	WhatsAppCountryCode string
	TwilioAccountSID    string
	TwilioAuthToken     string
	TwilioWhatsAppFrom  string

	RateLimitAuthMax  int
	RateLimitWriteMax int
	CookieSecure      bool
}

var (
	ErrMissingDatabaseURL = errors.New("DATABASE_URL is not set")
	ErrMissingJWTSecret   = errors.New("JWT_SECRET is not set")
)

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("CORS_ORIGIN", "*")
	v.SetDefault("UPLOAD_DIR", "./uploads")
	v.SetDefault("UPLOAD_MAX_MB", 5)
	v.SetDefault("IMAGE_MAX_WIDTH", 1024)
	v.SetDefault("WHATSAPP_COUNTRY_CODE", "62")
	v.SetDefault("RATE_LIMIT_AUTH_MAX", 10)
	v.SetDefault("RATE_LIMIT_WRITE_MAX", 60)
	v.SetDefault("COOKIE_SECURE", false)

	cfg := &Config{
		Env:                 strings.ToLower(strings.TrimSpace(v.GetString("ENV"))),
		Port:                strings.TrimSpace(v.GetString("PORT")),
		BaseURL:             strings.TrimSuffix(strings.TrimSpace(v.GetString("BASE_URL")), "/"),
		DatabaseURL:         strings.TrimSpace(v.GetString("DATABASE_URL")),
		JWTSecret:           strings.TrimSpace(v.GetString("JWT_SECRET")),
		RedisURL:            strings.TrimSpace(v.GetString("REDIS_URL")),
		CORSOrigin:          strings.TrimSpace(v.GetString("CORS_ORIGIN")),
		UploadDir:           strings.TrimSpace(v.GetString("UPLOAD_DIR")),
		UploadMaxMB:         v.GetInt("UPLOAD_MAX_MB"),
		ImageMaxWidth:       v.GetInt("IMAGE_MAX_WIDTH"),
		WhatsAppCountryCode: strings.TrimPrefix(strings.TrimSpace(v.GetString("WHATSAPP_COUNTRY_CODE")), "+"),
		TwilioAccountSID:    v.GetString("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:     v.GetString("TWILIO_AUTH_TOKEN"),
		TwilioWhatsAppFrom:  v.GetString("TWILIO_WHATSAPP_FROM"),
		RateLimitAuthMax:    v.GetInt("RATE_LIMIT_AUTH_MAX"),
		RateLimitWriteMax:   v.GetInt("RATE_LIMIT_WRITE_MAX"),
		CookieSecure:        v.GetBool("COOKIE_SECURE"),
	}

	if cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.JWTSecret == "" {
		return nil, ErrMissingJWTSecret
	}
	if cfg.UploadMaxMB <= 0 {
		cfg.UploadMaxMB = 5
	}
	if cfg.ImageMaxWidth <= 0 {
		cfg.ImageMaxWidth = 1024
	}
	if cfg.RateLimitAuthMax <= 0 {
		cfg.RateLimitAuthMax = 10
	}
	if cfg.RateLimitWriteMax <= 0 {
		cfg.RateLimitWriteMax = 60
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// UploadMaxBytes is the request body limit for multipart uploads.
func (c *Config) UploadMaxBytes() int {
	return c.UploadMaxMB * 1024 * 1024
}
