package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var DefaultEnvConfig *envConfig

// defaultSessionSecret signs cookies when SESSION_SECRET is unset. It is
// public, so it is refused when SESSION_SECURE is on.
const defaultSessionSecret = "epms-secret-key"

var errDefaultSessionSecret = errors.New("SESSION_SECRET must be set when SESSION_SECURE is true")

type envConfig struct {
	// server config
	APP_PORT         string
	CORS_ORIGIN      string
	SHUTDOWN_TIMEOUT time.Duration
	// database config
	DB_HOST              string
	DB_PORT              int
	DB_USER              string
	DB_PASSWORD          string
	DB_NAME              string
	DB_SSL_MODE          string
	DB_CONN_MAX_LIFETIME time.Duration
	DB_MAX_IDLE_CONNS    int
	DB_MAX_OPEN_CONNS    int
	// session / auth config
	SESSION_SECRET   string
	SESSION_MAX_AGE  time.Duration
	SESSION_SECURE   bool
	LOGIN_RATE_LIMIT string
	ADMIN_USERNAME   string
	ADMIN_PASSWORD   string
	// optional backends; empty disables the feature
	REDIS_ADDR           string
	REDIS_PASSWORD       string
	ELASTIC_URL          string
	DATASTORE_PROJECT_ID string
	// logger config
	LOG_FILE_PATH string
	LOG_LEVEL     string
}

// LoadEnvConfig reads .env (if present) and the process environment into DefaultEnvConfig.
func LoadEnvConfig(files ...string) error {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	DefaultEnvConfig = &envConfig{
		APP_PORT:             getEnvString("APP_PORT", "5000"),
		CORS_ORIGIN:          getEnvString("CORS_ORIGIN", "http://localhost:3000"),
		SHUTDOWN_TIMEOUT:     getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		DB_HOST:              getEnvString("DB_HOST", "localhost"),
		DB_PORT:              getEnvInt("DB_PORT", 5432),
		DB_USER:              getEnvString("DB_USER", "postgres"),
		DB_PASSWORD:          getEnvString("DB_PASSWORD", "postgres"),
		DB_NAME:              getEnvString("DB_NAME", "epms"),
		DB_SSL_MODE:          getEnvString("DB_SSL_MODE", "disable"),
		DB_CONN_MAX_LIFETIME: getEnvDuration("DB_CONN_MAX_LIFETIME", 20*time.Minute),
		DB_MAX_IDLE_CONNS:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
		DB_MAX_OPEN_CONNS:    getEnvInt("DB_MAX_OPEN_CONNS", 10),
		SESSION_SECRET:       getEnvString("SESSION_SECRET", defaultSessionSecret),
		SESSION_MAX_AGE:      getEnvDuration("SESSION_MAX_AGE", 24*time.Hour),
		SESSION_SECURE:       getEnvBool("SESSION_SECURE", false),
		LOGIN_RATE_LIMIT:     getEnvString("LOGIN_RATE_LIMIT", "10-M"),
		ADMIN_USERNAME:       getEnvString("ADMIN_USERNAME", "admin"),
		ADMIN_PASSWORD:       getEnvString("ADMIN_PASSWORD", "admin123"),
		REDIS_ADDR:           getEnvString("REDIS_ADDR", ""),
		REDIS_PASSWORD:       getEnvString("REDIS_PASSWORD", ""),
		ELASTIC_URL:          getEnvString("ELASTIC_URL", ""),
		DATASTORE_PROJECT_ID: getEnvString("DATASTORE_PROJECT_ID", ""),
		LOG_FILE_PATH:        getEnvString("LOG_FILE_PATH", ""),
		LOG_LEVEL:            getEnvString("LOG_LEVEL", "info"),
	}
	if DefaultEnvConfig.SESSION_SECURE && DefaultEnvConfig.UsesDefaultSessionSecret() {
		return errDefaultSessionSecret
	}
	return nil
}

// UsesDefaultSessionSecret reports whether session cookies are signed with the built-in secret.
func (c *envConfig) UsesDefaultSessionSecret() bool {
	return c.SESSION_SECRET == defaultSessionSecret
}

func getEnvString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		if i, err := strconv.Atoi(val); err == nil {
			return time.Duration(i) * time.Second
		}
	}
	return fallback
}
