// Package config loads service configuration from the environment and an optional .env file.
package config

import (
	"crypto/rsa"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

type Config struct {
	Port        string `mapstructure:"PORT"`
	DatabaseURL string `mapstructure:"DB_CONNECTION_STRING"`

	RedisAddress   string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword  string        `mapstructure:"REDIS_PASSWORD"`
	MemberCacheTTL time.Duration `mapstructure:"MEMBER_CACHE_TTL"`

	PublicKeyPath string `mapstructure:"PUBLIC_KEY_PATH"`
	// JWTPublicKey is parsed from PublicKeyPath by Load.
	JWTPublicKey *rsa.PublicKey `mapstructure:"-"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// MaxRegistrationYear caps member registration years; 0 means the current year.
	MaxRegistrationYear int    `mapstructure:"MAX_REGISTRATION_YEAR"`
	CORSAllowedOrigins  string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()
	return v
}

// Load builds the API configuration. It fails when a required value is missing or the
// JWT public key cannot be read.
func Load() (*Config, error) {
	v := newViper()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_CONNECTION_STRING", "")
	v.SetDefault("REDIS_ADDRESS", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("MEMBER_CACHE_TTL", "1h")
	v.SetDefault("PUBLIC_KEY_PATH", "/etc/certs/public.pem")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("MAX_REGISTRATION_YEAR", 0)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("config: DB_CONNECTION_STRING must be set")
	}
	if cfg.MaxRegistrationYear < 0 {
		return nil, errors.New("config: MAX_REGISTRATION_YEAR must not be negative")
	}
	if cfg.MemberCacheTTL <= 0 {
		return nil, errors.New("config: MEMBER_CACHE_TTL must be a positive duration")
	}

	publicKey, err := loadPublicKey(cfg.PublicKeyPath)
	if err != nil {
		return nil, errors.New("config: cannot load public key: " + err.Error())
	}
	cfg.JWTPublicKey = publicKey

	return &cfg, nil
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (c *Config) AllowedOrigins() []string {
	if c == nil || c.CORSAllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(c.CORSAllowedOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func loadPublicKey(path string) (*rsa.PublicKey, error) {
	keyData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return jwt.ParseRSAPublicKeyFromPEM(keyData)
}

// DatabaseURL reads only the connection string, for tools that need nothing else.
func DatabaseURL() string {
	return newViper().GetString("DB_CONNECTION_STRING")
}
