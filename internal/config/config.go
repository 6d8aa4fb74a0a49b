package config // package config loads application configuration from the environment

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable (or the same key in an optional config file named
// by CONFIG_FILE).
type Config struct {
	Env  string // application environment (dev, test, prod)
	Port string // HTTP port to listen on

	DBUser    string
	DBPass    string
	DBHost    string
	DBPort    string
	DBName    string
	DBMigrate bool // apply the embedded schema on startup

	JWTSecret  string        // secret used to sign session tokens
	SessionTTL time.Duration // lifetime of the session cookie and token
	BcryptCost int

	FootballAPIKey     string        // key for the external standings API
	FootballAPIBaseURL string        // base URL of the external standings API
	StandingsTimeout   time.Duration // upper bound for one upstream call

	OrderHoldWindow    time.Duration // how long a pending order may hold seats
	OrderSweepInterval time.Duration // how often the expiry sweep runs

	RabbitMQURL string // empty disables order event publishing
	LogLevel    string
}

// Load reads a local .env file when present, then resolves every key through
// viper so that real environment variables always win over file values.
func Load() (Config, error) {
	_ = godotenv.Load() // a missing .env is normal outside development

	v := newViper()
	if f := os.Getenv("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	cfg := Config{
		Env:                strings.ToLower(v.GetString("APP_ENV")),
		Port:               v.GetString("APP_PORT"),
		DBUser:             v.GetString("DB_USER"),
		DBPass:             v.GetString("DB_PASSWORD"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBName:             v.GetString("DB_NAME"),
		DBMigrate:          v.GetBool("DB_MIGRATE"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		SessionTTL:         v.GetDuration("SESSION_TTL"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		FootballAPIKey:     v.GetString("API_FOOTBALL_KEY"),
		FootballAPIBaseURL: strings.TrimRight(v.GetString("API_FOOTBALL_BASE_URL"), "/"),
		StandingsTimeout:   v.GetDuration("STANDINGS_TIMEOUT"),
		OrderHoldWindow:    v.GetDuration("ORDER_HOLD_WINDOW"),
		OrderSweepInterval: v.GetDuration("ORDER_SWEEP_INTERVAL"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		LogLevel:           v.GetString("LOG_LEVEL"),
	}
	if cfg.RabbitMQURL == "" {
		cfg.RabbitMQURL = v.GetString("AMQP_URL")
	}
	return cfg, nil
}

// SessionsEnabled reports whether JWT_SECRET is set.  Without it the server
// still starts, but logins fail and every session is anonymous.
func (c Config) SessionsEnabled() bool { return c.JWTSecret != "" }

// IsProd reports whether the service runs in production mode, which makes
// the session cookie Secure.
func (c Config) IsProd() bool { return c.Env == "prod" || c.Env == "production" }

// newViper returns a viper instance bound to the environment with the
// defaults for every key this package reads.
func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "dev")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_NAME", "football_tickets")
	v.SetDefault("DB_MIGRATE", true)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", 7*24*time.Hour)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("API_FOOTBALL_KEY", "")
	v.SetDefault("API_FOOTBALL_BASE_URL", "https://v3.football.api-sports.io")
	v.SetDefault("STANDINGS_TIMEOUT", 10*time.Second)
	v.SetDefault("ORDER_HOLD_WINDOW", 300*time.Second)
	v.SetDefault("ORDER_SWEEP_INTERVAL", 30*time.Second)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("AMQP_URL", "")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_HOST", "")
	v.SetDefault("REDIS_PORT", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_TLS", false)

	v.SetDefault("CACHE_ENABLED", true)
	v.SetDefault("CACHE_METHODS", "GET")
	v.SetDefault("CACHE_TTL", 30*time.Second)
	v.SetDefault("CACHE_KEY_STRATEGY", "route_query")
	v.SetDefault("CACHE_PREFIX", "cache")
	v.SetDefault("CACHE_MAX_BODY_BYTES", 1<<20)

	v.SetDefault("RATE_LIMIT_ENABLED", true)
	v.SetDefault("RATE_LIMIT_CAPACITY", 60)
	v.SetDefault("RATE_LIMIT_REFILL_TOKENS", 1)
	v.SetDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second)
	v.SetDefault("RATE_LIMIT_TTL", 10*time.Minute)
	v.SetDefault("RATE_LIMIT_KEY_STRATEGY", "ip_user_route")
	v.SetDefault("RATE_LIMIT_PREFIX", "rl")
	v.SetDefault("RATE_LIMIT_DEBUG", false)
	return v
}
