package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort int

	// CheckoutDelay is the artificial settle time of the stub payment
	// provider.
	CheckoutDelay time.Duration

	// DevIdentityToken, when set, seeds the dev identity provider with the
	// profile claims of this ID token instead of the built-in default.
	DevIdentityToken string
}

func Load() Config {
	// Missing .env is fine, real env vars still apply.
	_ = godotenv.Load()

	return Config{
		AppEnv:           getEnv("APP_ENV", "dev"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		CheckoutDelay:    time.Duration(getEnvInt("CHECKOUT_DELAY_MS", 1800)) * time.Millisecond,
		DevIdentityToken: getEnv("DEV_IDENTITY_TOKEN", ""),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}
