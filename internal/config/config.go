package config

import (
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT access tokens
	JWTSecret       string
	JWTAccessExpiry time.Duration

	// Password policy
	PasswordMinLength int
	PasswordHashCost  int

	// Token lifetimes
	ConfirmationTokenTTL time.Duration
	RecoveryTokenTTL     time.Duration
	RememberTokenTTL     time.Duration

	// Sign-in policy
	AllowUnconfirmedSignIn bool

	// Admin
	AdminEmails string

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "accounts_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTAccessExpiry: parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m"), 15*time.Minute),

		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),
		PasswordHashCost:  getEnvInt("PASSWORD_HASH_COST", bcrypt.DefaultCost),

		ConfirmationTokenTTL: parseDuration(getEnv("CONFIRMATION_TOKEN_TTL", "72h"), 72*time.Hour),
		RecoveryTokenTTL:     parseDuration(getEnv("RECOVERY_TOKEN_TTL", "6h"), 6*time.Hour),
		RememberTokenTTL:     parseDuration(getEnv("REMEMBER_TOKEN_TTL", "336h"), 336*time.Hour),

		AllowUnconfirmedSignIn: getEnvBool("ALLOW_UNCONFIRMED_SIGNIN", false),

		AdminEmails: getEnv("ADMIN_EMAILS", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
