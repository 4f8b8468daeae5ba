package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Port:                   "8375",
		Env:                    "development",
		CurrentUserID:          1,
		UsersLatencyMS:         300,
		PostsLatencyMS:         400,
		CommentsLatencyMS:      300,
		MessagesLatencyMS:      300,
		NotificationsLatencyMS: 300,
		JWTSecret:              "secure-secret-at-least-32-chars-long",
		TracingSamplerRatio:    1,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
	}{
		{"Valid development config", func(*Config) {}, false},
		{"Missing port", func(c *Config) { c.Port = "" }, true},
		{"Zero current user", func(c *Config) { c.CurrentUserID = 0 }, true},
		{"Negative latency", func(c *Config) { c.PostsLatencyMS = -1 }, true},
		{"Zero latency allowed", func(c *Config) { c.UsersLatencyMS = 0 }, false},
		{"Sampler ratio above one", func(c *Config) { c.TracingSamplerRatio = 1.5 }, true},
		{"Production default secret", func(c *Config) {
			c.Env = "production"
			c.JWTSecret = "your-secret-key-change-in-production"
		}, true},
		{"Production short secret", func(c *Config) {
			c.Env = "prod"
			c.JWTSecret = "short"
		}, true},
		{"Production strong secret", func(c *Config) { c.Env = "production" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Latencies(t *testing.T) {
	c := validConfig()
	l := c.Latencies()

	assert.Equal(t, 300*time.Millisecond, l.Users)
	assert.Equal(t, 400*time.Millisecond, l.Posts)
	assert.Equal(t, 300*time.Millisecond, l.Comments)
	assert.Equal(t, 300*time.Millisecond, l.Messages)
	assert.Equal(t, 300*time.Millisecond, l.Notifications)
}

func TestLoadConfig_DefaultsAndEnvOverrides(t *testing.T) {
	defer viper.Reset()

	t.Setenv("APP_ENV", "development")
	t.Setenv("POSTS_LATENCY_MS", "25")
	t.Setenv("CURRENT_USER_ID", "3")

	c, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8375", c.Port)
	assert.Equal(t, 25, c.PostsLatencyMS)
	assert.Equal(t, 300, c.UsersLatencyMS)
	assert.Equal(t, uint(3), c.CurrentUserID)
	assert.Contains(t, c.FeatureFlags, "share_modal=on")
}
