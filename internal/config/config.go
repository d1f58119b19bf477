package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	defaultDBPath         = "./dev.db"
	defaultPort           = "8080"
	defaultEnv            = "development"
	defaultLogLevel       = "info"
	defaultRateLimitRPS   = 10.0
	defaultRateLimitBurst = 30
)

var defaultMinViableDivisor = decimal.RequireFromString("0.05")

// Config holds application configuration sourced from environment variables.
type Config struct {
	DBPath           string
	Port             string
	Env              string
	LogLevel         string
	RateLimitRPS     float64
	RateLimitBurst   int
	MinViableDivisor decimal.Decimal

	// Warnings collects problems found while loading, to be logged once a logger exists.
	Warnings []string
}

// Load reads .env from the working directory, then the environment.
func Load() Config {
	return LoadFile(".env")
}

// LoadFile reads the given dotenv file, if present, then the environment.
// Variables already set in the environment win over the file.
func LoadFile(path string) Config {
	var warnings []string
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		warnings = append(warnings, fmt.Sprintf("could not load %s: %v", path, err))
	}

	cfg := Config{
		DBPath:           envOr("DB_PATH", defaultDBPath),
		Port:             envOr("PORT", defaultPort),
		Env:              envOr("APP_ENV", defaultEnv),
		LogLevel:         envOr("LOG_LEVEL", defaultLogLevel),
		RateLimitRPS:     defaultRateLimitRPS,
		RateLimitBurst:   defaultRateLimitBurst,
		MinViableDivisor: defaultMinViableDivisor,
		Warnings:         warnings,
	}

	if raw := os.Getenv("RATE_LIMIT_RPS"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v <= 0 {
			cfg.warn("RATE_LIMIT_RPS=%q is not a positive number, using %v", raw, defaultRateLimitRPS)
		} else {
			cfg.RateLimitRPS = v
		}
	}
	if raw := os.Getenv("RATE_LIMIT_BURST"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			cfg.warn("RATE_LIMIT_BURST=%q is not a positive integer, using %d", raw, defaultRateLimitBurst)
		} else {
			cfg.RateLimitBurst = v
		}
	}
	if raw := os.Getenv("MIN_VIABLE_DIVISOR"); raw != "" {
		v, err := decimal.NewFromString(raw)
		if err != nil || !v.IsPositive() || v.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			cfg.warn("MIN_VIABLE_DIVISOR=%q must be a decimal in (0, 1), using %s", raw, defaultMinViableDivisor)
		} else {
			cfg.MinViableDivisor = v
		}
	}

	return cfg
}

// IsDev reports whether the app runs in development mode.
func (c Config) IsDev() bool {
	return c.Env == defaultEnv
}

func (c *Config) warn(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
