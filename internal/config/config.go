package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"sehatku-paylater/internal/pkg/jwt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all configuration for the application
type Config struct {
	AppMode            string
	Port               string
	Database           DatabaseConfig
	JWT                JWTConfig
	Cookie             CookieConfig
	RedisURL           string
	BPJSReclassifyCron string
	AllowedOrigins     string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// TokenIssuer builds the JWT issuer for the configured secrets and lifetimes
func (j JWTConfig) TokenIssuer() *jwt.Issuer {
	return jwt.NewIssuer(
		j.Secret,
		j.RefreshSecret,
		time.Duration(j.AccessTokenMins)*time.Minute,
		time.Duration(j.RefreshTokenDays)*24*time.Hour,
	)
}

// CookieConfig holds auth cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	// DefaultReclassifyCron runs nightly at 01:30:00
	DefaultReclassifyCron = "0 30 1 * * *"
)

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional in production
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg(".env file not found, using environment variables")
	}

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	database := loadDatabaseConfig(appMode)
	if database.Driver != DriverMySQL && database.Driver != DriverPostgres {
		return nil, fmt.Errorf("invalid DB_DRIVER: '%s' (must be 'mysql' or 'postgres')", database.Driver)
	}

	cfg := &Config{
		AppMode:            appMode,
		Port:               getEnv("PORT", "3000"),
		Database:           database,
		JWT:                loadJWTConfig(appMode),
		Cookie:             loadCookieConfig(appMode),
		RedisURL:           strings.TrimSpace(os.Getenv("REDIS_URL")),
		BPJSReclassifyCron: getEnv("BPJS_RECLASSIFY_CRON", DefaultReclassifyCron),
		AllowedOrigins:     strings.TrimSpace(os.Getenv("ALLOWED_ORIGINS")),
	}

	if cfg.IsProd() && (cfg.JWT.Secret == defaultJWTSecret || cfg.JWT.RefreshSecret == defaultRefreshSecret) {
		return nil, fmt.Errorf("JWT secrets must be set in prod mode")
	}

	log.Info().Str("mode", appMode).Str("driver", database.Driver).Msg("✅ Configuration loaded successfully")
	return cfg, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := modePrefix(mode)
	driver := strings.ToLower(strings.TrimSpace(getEnv("DB_DRIVER", DriverMySQL)))

	defaultPort := "3306"
	defaultUser := "root"
	if driver == DriverPostgres {
		defaultPort = "5432"
		defaultUser = "postgres"
	}

	return DatabaseConfig{
		Driver:   driver,
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", defaultPort),
		User:     getEnv(prefix+"DB_USER", defaultUser),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "sehatku_paylater"),
		SSLMode:  getEnv(prefix+"DB_SSLMODE", "disable"),
	}
}

const (
	defaultJWTSecret     = "default_secret"
	defaultRefreshSecret = "default_refresh_secret"
)

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := modePrefix(mode)

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))
	if accessMins <= 0 {
		accessMins = 15
	}
	if refreshDays <= 0 {
		refreshDays = 7
	}

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultRefreshSecret),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := modePrefix(mode)

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func modePrefix(mode string) string {
	if mode == "prod" {
		return "PROD_"
	}
	return "DEV_"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	if c.AllowedOrigins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://sehatku.id"
	}
	return c.AllowedOrigins
}
