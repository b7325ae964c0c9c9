package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Credential file (INI) holding the OpenWeatherMap API key.
	CredentialFile    string
	CredentialSection string
	CredentialKey     string

	// OpenWeatherMap client configuration.
	WeatherBaseURL   string
	WeatherTimeout   time.Duration
	WeatherRateLimit float64 // requests per second, 0 disables throttling
	WeatherRateBurst int
	Timezone         *time.Location
	LegacyErrors     bool

	CommandPrefix string

	// Chat relay transport.
	KafkaBrokers      []string
	KafkaCommandTopic string
	KafkaReplyTopic   string
	KafkaGroupID      string
}

// Load reads configuration from environment variables, applying defaults where unset.
// A .env file in the working directory is loaded first when present; variables
// already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	weatherTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("WEATHER_TIMEOUT", "10s"))
	if err != nil || weatherTimeout <= 0 {
		return nil, errors.New("invalid WEATHER_TIMEOUT")
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("WEATHER_RATE_LIMIT", "1"), 64)
	if err != nil || rateLimit < 0 {
		return nil, errors.New("invalid WEATHER_RATE_LIMIT")
	}

	rateBurst, err := strconv.Atoi(sharedcfg.EnvOrDefault("WEATHER_RATE_BURST", "5"))
	if err != nil || rateBurst <= 0 {
		return nil, errors.New("invalid WEATHER_RATE_BURST")
	}

	tz, err := time.LoadLocation(sharedcfg.EnvOrDefault("WEATHER_TIMEZONE", "UTC"))
	if err != nil {
		return nil, errors.New("invalid WEATHER_TIMEZONE")
	}

	legacyErrors, err := parseBool("WEATHER_LEGACY_ERRORS")
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CredentialFile:    sharedcfg.EnvOrDefault("WEATHER_CONFIG_FILE", "config.cfg"),
		CredentialSection: sharedcfg.EnvOrDefault("WEATHER_CONFIG_SECTION", "openweathermap"),
		CredentialKey:     sharedcfg.EnvOrDefault("WEATHER_CONFIG_KEY", "api"),

		WeatherBaseURL:   sharedcfg.EnvOrDefault("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
		WeatherTimeout:   weatherTimeout,
		WeatherRateLimit: rateLimit,
		WeatherRateBurst: rateBurst,
		Timezone:         tz,
		LegacyErrors:     legacyErrors,

		CommandPrefix: os.Getenv("COMMAND_PREFIX"),

		KafkaBrokers:      sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaCommandTopic: sharedcfg.EnvOrDefault("KAFKA_COMMAND_TOPIC", "chat-commands"),
		KafkaReplyTopic:   sharedcfg.EnvOrDefault("KAFKA_REPLY_TOPIC", "chat-replies"),
		KafkaGroupID:      sharedcfg.EnvOrDefault("KAFKA_GROUP_ID", "weather-bot"),
	}
	if _, set := os.LookupEnv("COMMAND_PREFIX"); !set {
		cfg.CommandPrefix = "."
	}

	if cfg.CredentialFile == "" {
		return nil, errors.New("WEATHER_CONFIG_FILE is required")
	}
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaCommandTopic == "" {
		return nil, errors.New("KAFKA_COMMAND_TOPIC is required")
	}
	if cfg.KafkaReplyTopic == "" {
		return nil, errors.New("KAFKA_REPLY_TOPIC is required")
	}

	return cfg, nil
}

func parseBool(key string) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, errors.New("invalid " + key)
	}
	return v, nil
}
