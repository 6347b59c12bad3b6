package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/dharmasatrya/flightoffers/pkg/currency"
)

// Config holds all configuration for the flight offers service
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Amadeus   AmadeusConfig   `mapstructure:"amadeus"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Search    SearchConfig    `mapstructure:"search"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Airlines  AirlinesConfig  `mapstructure:"airlines"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// AmadeusConfig holds upstream credentials. With no credentials the service
// falls back to the embedded sample offers.
type AmadeusConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

func (c AmadeusConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type CurrencyConfig struct {
	Source  string `mapstructure:"source"`
	Display string `mapstructure:"display"`
	Rate    string `mapstructure:"rate"` // decimal string, display units per source unit
}

// RateSource builds the static conversion rate.
func (c CurrencyConfig) RateSource() (currency.StaticRate, error) {
	value, err := decimal.NewFromString(c.Rate)
	if err != nil {
		return currency.StaticRate{}, fmt.Errorf("invalid currency rate %q: %w", c.Rate, err)
	}
	if !value.IsPositive() {
		return currency.StaticRate{}, fmt.Errorf("invalid currency rate %q: %w", c.Rate, currency.ErrInvalidRate)
	}
	return currency.NewStaticRate(c.Source, c.Display, value), nil
}

type SearchConfig struct {
	Timeout     time.Duration   `mapstructure:"timeout"`
	MaxRetries  int             `mapstructure:"max_retries"`
	RetryDelays []time.Duration `mapstructure:"retry_delays"`
	Workers     int             `mapstructure:"workers"` // 0 = GOMAXPROCS
}

type RateLimitConfig struct {
	UpstreamRPS   float64 `mapstructure:"upstream_rps"`
	UpstreamBurst int     `mapstructure:"upstream_burst"`
	ClientRPS     float64 `mapstructure:"client_rps"`
	ClientBurst   int     `mapstructure:"client_burst"`
	// Client buckets unused for ClientIdleTTL are dropped every SweepInterval.
	ClientIdleTTL time.Duration `mapstructure:"client_idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type AirlinesConfig struct {
	// Overrides adds or replaces carrier display names, keyed by IATA code.
	Overrides map[string]string `mapstructure:"overrides"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

// LoadConfig loads configuration from an optional file and environment
// variables prefixed with FLIGHTOFFERS_.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("amadeus.base_url", "https://test.api.amadeus.com")
	v.SetDefault("amadeus.client_id", "")
	v.SetDefault("amadeus.client_secret", "")

	v.SetDefault("currency.source", currency.DefaultSource)
	v.SetDefault("currency.display", currency.DefaultDisplay)
	v.SetDefault("currency.rate", currency.DefaultRate.String())

	v.SetDefault("search.timeout", 10*time.Second)
	v.SetDefault("search.max_retries", 2)
	v.SetDefault("search.retry_delays", []time.Duration{200 * time.Millisecond, 500 * time.Millisecond})
	v.SetDefault("search.workers", 0)

	v.SetDefault("rate_limit.upstream_rps", 10.0)
	v.SetDefault("rate_limit.upstream_burst", 20)
	v.SetDefault("rate_limit.client_rps", 5.0)
	v.SetDefault("rate_limit.client_burst", 10)
	v.SetDefault("rate_limit.client_idle_ttl", 10*time.Minute)
	v.SetDefault("rate_limit.sweep_interval", time.Minute)

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "flight_searches")

	v.SetDefault("airlines.overrides", map[string]string{})

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix("FLIGHTOFFERS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Credentials are also accepted under their unprefixed names.
	if err := v.BindEnv("amadeus.client_id", "FLIGHTOFFERS_AMADEUS_CLIENT_ID", "AMADEUS_CLIENT_ID"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}
	if err := v.BindEnv("amadeus.client_secret", "FLIGHTOFFERS_AMADEUS_CLIENT_SECRET", "AMADEUS_CLIENT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind env: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}
