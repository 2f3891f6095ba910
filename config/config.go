package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the typed runtime configuration. Values come from the process
// environment, optionally seeded from a local .env file by LoadEnv.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL"`
	JWTSecret   string `env:"JWT_SECRET"`

	// DBDriver is "postgres" or "sqlite". With sqlite, DATABASE_URL is a file
	// path or ":memory:".
	DBDriver string `env:"DB_DRIVER" envDefault:"postgres"`

	// Timezone used to turn a calendar date into a local day window.
	Timezone string `env:"APP_TIMEZONE" envDefault:"Europe/Berlin"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	SentryDSN         string `env:"SENTRY_DSN"`
	SentryEnvironment string `env:"SENTRY_ENVIRONMENT" envDefault:"development"`

	StorageBucket string `env:"FIREBASE_STORAGE_BUCKET"`
	// Inline service-account JSON or a path to the credentials file.
	FirebaseCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`

	// Login attempts allowed per client IP and minute.
	LoginRateLimit int `env:"LOGIN_RATE_LIMIT" envDefault:"10"`

	// When true, marking an already done item as done again re-stamps
	// done_at and done_by_id ("last confirmed at").
	CompletionRefreshOnRepeat bool `env:"COMPLETION_REFRESH_ON_REPEAT" envDefault:"false"`

	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	OwnerEmail     string `env:"OWNER_EMAIL" envDefault:"owner@kitchen.local"`
	OwnerPassword  string `env:"OWNER_PASSWORD" envDefault:"kitchen123"`
	RestaurantName string `env:"RESTAURANT_NAME" envDefault:"Main Kitchen"`
}

func LoadEnv() error {
	// A missing .env is fine; production sets variables directly.
	_ = godotenv.Load()
	return nil
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		var aggErr env.AggregateError
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// ValidateEnv checks that critical environment variables are set.
// Returns an error if any critical variable is missing.
func ValidateEnv() error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if os.Getenv("DATABASE_URL") == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FIREBASE_STORAGE_BUCKET") == "" {
		log.Println("WARNING: FIREBASE_STORAGE_BUCKET not set - completion photos will fail to upload")
	}
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		log.Println("WARNING: GOOGLE_APPLICATION_CREDENTIALS not set - Firebase features may not work")
	}

	return nil
}
