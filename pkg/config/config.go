package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Invite    InviteConfig
	Storage   StorageConfig
	Stats     StatsConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type InviteConfig struct {
	Key         string // base64 age identity for sealing invite tokens
	ExpiryHours int
}

type StorageConfig struct {
	Bucket        string
	Region        string
	AccessKey     string
	SecretKey     string
	URLExpiryMins int
}

type StatsConfig struct {
	CacheTTLSecs int
	RollupCron   string
}

type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func (j *JWTConfig) Expiry() time.Duration {
	return time.Duration(j.ExpiryHours) * time.Hour
}

func (i *InviteConfig) Expiry() time.Duration {
	return time.Duration(i.ExpiryHours) * time.Hour
}

func (s *StorageConfig) URLExpiry() time.Duration {
	return time.Duration(s.URLExpiryMins) * time.Minute
}

func (s *StatsConfig) CacheTTL() time.Duration {
	return time.Duration(s.CacheTTLSecs) * time.Second
}

func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func (s *ServerConfig) IsDevelopment() bool {
	return s.Env == "development"
}

func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", 5432)
	v.SetDefault("DATABASE_USER", "mediahub")
	v.SetDefault("DATABASE_PASSWORD", "mediahub_secret")
	v.SetDefault("DATABASE_NAME", "mediahub")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRY_HOURS", 24)
	v.SetDefault("INVITE_EXPIRY_HOURS", 168)
	v.SetDefault("STORAGE_BUCKET", "mediahub-content")
	v.SetDefault("STORAGE_REGION", "eu-west-1")
	v.SetDefault("STORAGE_URL_EXPIRY_MINS", 15)
	v.SetDefault("STATS_CACHE_TTL_SECS", 300)
	v.SetDefault("STATS_ROLLUP_CRON", "0 3 * * *")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)

	// Load from .env file if present
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	// Override with environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Env:  v.GetString("SERVER_ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DATABASE_HOST"),
			Port:     v.GetInt("DATABASE_PORT"),
			User:     v.GetString("DATABASE_USER"),
			Password: v.GetString("DATABASE_PASSWORD"),
			Name:     v.GetString("DATABASE_NAME"),
			SSLMode:  v.GetString("DATABASE_SSLMODE"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		JWT: JWTConfig{
			Secret:      v.GetString("JWT_SECRET"),
			ExpiryHours: v.GetInt("JWT_EXPIRY_HOURS"),
		},
		Invite: InviteConfig{
			Key:         v.GetString("INVITE_KEY"),
			ExpiryHours: v.GetInt("INVITE_EXPIRY_HOURS"),
		},
		Storage: StorageConfig{
			Bucket:        v.GetString("STORAGE_BUCKET"),
			Region:        v.GetString("STORAGE_REGION"),
			AccessKey:     v.GetString("STORAGE_ACCESS_KEY"),
			SecretKey:     v.GetString("STORAGE_SECRET_KEY"),
			URLExpiryMins: v.GetInt("STORAGE_URL_EXPIRY_MINS"),
		},
		Stats: StatsConfig{
			CacheTTLSecs: v.GetInt("STATS_CACHE_TTL_SECS"),
			RollupCron:   v.GetString("STATS_ROLLUP_CRON"),
		},
		RateLimit: RateLimitConfig{
			Requests:      v.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}

	return cfg, nil
}
