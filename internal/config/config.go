package config // package config loads application configuration from environment variables

import (
	"errors"
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. It is loaded once at process start and
// never mutated afterwards; a missing required variable is a startup
// fatal, never a per-request surprise.
type Config struct {
	Env               string // application environment (e.g. "dev", "prod")
	Port              string // HTTP port to listen on
	DBUser            string // database username
	DBPass            string // database password (optional)
	DBHost            string // database host address
	DBPort            string // database port number
	DBName            string // database name
	DBMaxOpenConns    int    // connection pool: max open connections
	DBMaxIdleConns    int    // connection pool: max idle connections
	DBConnLifetimeMin int    // connection pool: max connection lifetime in minutes
	JWTSecret         string // secret used to sign JWTs
	JWTIssuer         string // iss claim stamped into and required of access tokens
	JWTAudience       string // aud claim stamped into and required of access tokens
	AccessTTLMin      int    // access token time-to-live in minutes
	RefreshTTLDays    int    // refresh token time-to-live in days
	RetentionDays     int    // how long inactive refresh tokens are kept before the cleanup sweep deletes them
	BcryptCost        int    // bcrypt cost for password hashing
}

// Load reads configuration values from environment variables and
// returns a Config. Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	return Config{
		Env:               must("APP_ENV"),
		Port:              must("APP_PORT"),
		DBUser:            must("DB_USER"),
		DBPass:            os.Getenv("DB_PASS"), // empty allowed
		DBHost:            must("DB_HOST"),
		DBPort:            must("DB_PORT"),
		DBName:            must("DB_NAME"),
		DBMaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetimeMin: envInt("DB_CONN_LIFETIME_MIN", 30),
		JWTSecret:         must("JWT_SECRET"),
		JWTIssuer:         must("JWT_ISSUER"),
		JWTAudience:       must("JWT_AUDIENCE"),
		AccessTTLMin:      mustInt("ACCESS_TOKEN_TTL_MIN"),
		RefreshTTLDays:    mustInt("REFRESH_TOKEN_TTL_DAYS"),
		RetentionDays:     envInt("TOKEN_RETENTION_DAYS", 30),
		BcryptCost:        mustInt("BCRYPT_COST"),
	}
}

// Validate re-checks the signing configuration. Load already refuses
// to start without these, but callers constructing a Config by hand
// (tests, embedding) get the same guarantee.
func (c Config) Validate() error {
	if c.JWTSecret == "" || c.JWTIssuer == "" || c.JWTAudience == "" {
		return errors.New("config: JWT secret, issuer and audience are required")
	}
	if c.AccessTTLMin <= 0 || c.RefreshTTLDays <= 0 {
		return errors.New("config: token lifetimes must be positive")
	}
	return nil
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

// envInt reads an optional integer variable, falling back to a default.
func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, v)
	}
	return n
}
