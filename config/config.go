package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration read from the environment
type Config struct {
	Env         string
	Port        string
	StoreDriver string // "postgres" or "memory"
	AutoMigrate bool
	Database    Database

	// TxRoundTrip is the expected latency of one store round trip. Transaction
	// timeouts are sized from it (see db.TxBudget).
	TxRoundTrip time.Duration
	TxHeadroom  float64
}

// Database holds PostgreSQL connection settings
type Database struct {
	URL      string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// Load reads configuration from the environment.
// Outside production a .env file in the working directory overrides system variables.
func Load() (*Config, error) {
	env := getEnv("ENV", "development")
	if env != "production" {
		envPath := ".env"
		if _, err := os.Stat(envPath); err == nil {
			if err := godotenv.Overload(envPath); err != nil {
				log.Printf("⚠️ Warning: could not load %s: %v", envPath, err)
			} else {
				log.Printf("✅ Loaded environment variables from %s (overriding system variables)", envPath)
			}
		} else {
			log.Printf("🌐 No %s file found, using system environment variables", envPath)
		}
	}

	port := strings.TrimPrefix(getEnv("PORT", "8080"), ":")

	maxConns, err := getEnvInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	roundTrip, err := getEnvDuration("TX_ROUND_TRIP_BUDGET", time.Second)
	if err != nil {
		return nil, err
	}
	headroom, err := getEnvFloat("TX_TIMEOUT_HEADROOM", 2.0)
	if err != nil {
		return nil, err
	}
	if headroom < 1 {
		return nil, fmt.Errorf("TX_TIMEOUT_HEADROOM must be at least 1, got %v", headroom)
	}
	autoMigrate, err := getEnvBool("AUTO_MIGRATE", true)
	if err != nil {
		return nil, err
	}

	driver := strings.ToLower(getEnv("STORE_DRIVER", "postgres"))
	if driver != "postgres" && driver != "memory" {
		return nil, fmt.Errorf("STORE_DRIVER must be postgres or memory, got %q", driver)
	}

	return &Config{
		Env:         env,
		Port:        port,
		StoreDriver: driver,
		AutoMigrate: autoMigrate,
		Database: Database{
			URL:      os.Getenv("DATABASE_URL"),
			Host:     os.Getenv("DB_HOST"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     os.Getenv("DB_NAME"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: int32(maxConns),
		},
		TxRoundTrip: roundTrip,
		TxHeadroom:  headroom,
	}, nil
}

// DSN returns DATABASE_URL when set, otherwise builds a keyword/value connection string
func (d Database) DSN() (string, error) {
	if d.URL != "" {
		return d.URL, nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return "", fmt.Errorf("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode), nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return v, nil
}
