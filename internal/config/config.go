// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port                   string  `mapstructure:"PORT"`
	Env                    string  `mapstructure:"APP_ENV"`
	FixturesDir            string  `mapstructure:"FIXTURES_DIR"`
	CurrentUserID          uint    `mapstructure:"CURRENT_USER_ID"`
	UsersLatencyMS         int     `mapstructure:"USERS_LATENCY_MS"`
	PostsLatencyMS         int     `mapstructure:"POSTS_LATENCY_MS"`
	CommentsLatencyMS      int     `mapstructure:"COMMENTS_LATENCY_MS"`
	MessagesLatencyMS      int     `mapstructure:"MESSAGES_LATENCY_MS"`
	NotificationsLatencyMS int     `mapstructure:"NOTIFICATIONS_LATENCY_MS"`
	RedisURL               string  `mapstructure:"REDIS_URL"`
	AllowedOrigins         string  `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags           string  `mapstructure:"FEATURE_FLAGS"`
	JWTSecret              string  `mapstructure:"JWT_SECRET"`
	LogLevel               string  `mapstructure:"LOG_LEVEL"`
	TracingEnabled         bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter        string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint           string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio    float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// Latencies groups the simulated per-service delays.
type Latencies struct {
	Users         time.Duration
	Posts         time.Duration
	Comments      time.Duration
	Messages      time.Duration
	Notifications time.Duration
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	viper.SetDefault("PORT", "8375")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("FIXTURES_DIR", "")
	viper.SetDefault("CURRENT_USER_ID", 1)
	viper.SetDefault("USERS_LATENCY_MS", 300)
	viper.SetDefault("POSTS_LATENCY_MS", 400)
	viper.SetDefault("COMMENTS_LATENCY_MS", 300)
	viper.SetDefault("MESSAGES_LATENCY_MS", 300)
	viper.SetDefault("NOTIFICATIONS_LATENCY_MS", 300)
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "share_modal=on,privacy_modal=on,inline_comments=off")
	viper.SetDefault("JWT_SECRET", "your-secret-key-change-in-production")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.CurrentUserID == 0 {
		return errors.New("CURRENT_USER_ID must be a positive user id")
	}
	for name, ms := range map[string]int{
		"USERS_LATENCY_MS":         c.UsersLatencyMS,
		"POSTS_LATENCY_MS":         c.PostsLatencyMS,
		"COMMENTS_LATENCY_MS":      c.CommentsLatencyMS,
		"MESSAGES_LATENCY_MS":      c.MessagesLatencyMS,
		"NOTIFICATIONS_LATENCY_MS": c.NotificationsLatencyMS,
	} {
		if ms < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.TracingSamplerRatio < 0 || c.TracingSamplerRatio > 1 {
		return errors.New("TRACING_SAMPLER_RATIO must be between 0 and 1")
	}

	if c.IsProduction() {
		if c.JWTSecret == "" || c.JWTSecret == "your-secret-key-change-in-production" {
			return errors.New("JWT_SECRET must be changed from the default value in production")
		}
		if len(c.JWTSecret) < 32 {
			return errors.New("JWT_SECRET must be at least 32 characters in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	}

	return nil
}

// IsProduction reports whether the config targets a production profile.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Latencies converts the configured millisecond delays to durations.
func (c *Config) Latencies() Latencies {
	return Latencies{
		Users:         time.Duration(c.UsersLatencyMS) * time.Millisecond,
		Posts:         time.Duration(c.PostsLatencyMS) * time.Millisecond,
		Comments:      time.Duration(c.CommentsLatencyMS) * time.Millisecond,
		Messages:      time.Duration(c.MessagesLatencyMS) * time.Millisecond,
		Notifications: time.Duration(c.NotificationsLatencyMS) * time.Millisecond,
	}
}
