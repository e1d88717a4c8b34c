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
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	JWTExpiry         time.Duration
	DashboardCacheTTL time.Duration
	EventChannelBase  string
	MentorProvider    string
	MentorModel       string
	MentorMaxTokens   int
	OpenAIAPIKey      string
	AnthropicAPIKey   string
	ResyncDelay       time.Duration
	ResyncSweepSpec   string
	SeedEnabled       bool
	SeedToken         string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODEQUEST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CodeQuest API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("jwt.expiry", "24h")
	v.SetDefault("dashboard.cache_ttl", "5m")
	v.SetDefault("events.channel_base", "codequest")
	v.SetDefault("mentor.provider", "openai")
	v.SetDefault("mentor.max_tokens", 512)
	v.SetDefault("resync.delay", "5s")
	v.SetDefault("resync.sweep_spec", "0 * * * *")
	v.SetDefault("seed.enabled", false)

	ttl, err := parseDuration(v.GetString("dashboard.cache_ttl"), "dashboard cache ttl")
	if err != nil {
		return Config{}, err
	}

	expiry, err := parseDuration(v.GetString("jwt.expiry"), "jwt expiry")
	if err != nil {
		return Config{}, err
	}

	resyncDelay, err := parseDuration(v.GetString("resync.delay"), "resync delay")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		JWTExpiry:         expiry,
		DashboardCacheTTL: ttl,
		EventChannelBase:  v.GetString("events.channel_base"),
		MentorProvider:    strings.ToLower(v.GetString("mentor.provider")),
		MentorModel:       v.GetString("mentor.model"),
		MentorMaxTokens:   v.GetInt("mentor.max_tokens"),
		OpenAIAPIKey:      v.GetString("openai_api_key"),
		AnthropicAPIKey:   v.GetString("anthropic_api_key"),
		ResyncDelay:       resyncDelay,
		ResyncSweepSpec:   v.GetString("resync.sweep_spec"),
		SeedEnabled:       v.GetBool("seed.enabled"),
		SeedToken:         v.GetString("seed.token"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.MentorMaxTokens <= 0 {
		cfg.MentorMaxTokens = 512
	}

	return cfg, nil
}

func parseDuration(raw, label string) (time.Duration, error) {
	if raw == "" {
		return 0, fmt.Errorf("missing %s", label)
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", label, err)
	}

	return parsed, nil
}
