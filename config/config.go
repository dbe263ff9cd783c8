// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/padraicbc/dgapp/domain"
)

// DefaultAPIURL is the deployed API the companion client talks to.
const DefaultAPIURL = "https://dgapp-api.onrender.com/"

// Config holds the API server configuration.
type Config struct {
	// postgres (default), mysql or sqlite.
	DBDriver string

	// PostgreSQL – either set DatabaseURL directly, or the individual fields.
	DatabaseURL string
	DBUser      string
	DBPass      string
	DBHost      string
	DBPort      string
	DBName      string
	DBSSLMode   string

	// MySQL – the store when DB_DRIVER=mysql, and the source for cmd/migrate.
	MySQLDSN string

	// SQLite file used when DB_DRIVER=sqlite.
	SQLitePath string

	// Optional. When set, write routes require a bearer token.
	JWTSecret string

	// Server
	Debug      bool
	Port       string
	TLSDomains []string

	CourseDeletePolicy domain.DeletePolicy
}

// ClientConfig holds configuration used by the dgclient companion app.
type ClientConfig struct {
	APIURL    string
	CachePath string
	Token     string
	Player    string
	Debug     bool

	CourseDeletePolicy domain.DeletePolicy
}

// Load reads configuration from a .env file (if present) and then from
// environment variables. Environment variables always win.
func Load() *Config {
	cfg, err := fromViper(newViper())
	if err != nil {
		log.Fatal("config: ", err)
	}
	return cfg
}

// LoadClient reads the companion client's config from .env and environment variables.
func LoadClient() *ClientConfig {
	cfg, err := clientFromViper(newViper())
	if err != nil {
		log.Fatal("config: ", err)
	}
	return cfg
}

func fromViper(v *viper.Viper) (*Config, error) {
	// Defaults
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_USER", "dgapp")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "dgapp")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "dgapp.db")
	v.SetDefault("PORT", ":3000")
	v.SetDefault("DEBUG", false)

	policy, err := domain.ParseDeletePolicy(v.GetString("COURSE_DELETE_POLICY"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBDriver:           strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:        v.GetString("DATABASE_URL"),
		DBUser:             v.GetString("DB_USER"),
		DBPass:             v.GetString("DB_PASS"),
		DBHost:             v.GetString("DB_HOST"),
		DBPort:             v.GetString("DB_PORT"),
		DBName:             v.GetString("DB_NAME"),
		DBSSLMode:          v.GetString("DB_SSLMODE"),
		MySQLDSN:           v.GetString("MYSQL_DSN"),
		SQLitePath:         v.GetString("SQLITE_PATH"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		Debug:              v.GetBool("DEBUG"),
		Port:               v.GetString("PORT"),
		TLSDomains:         splitTrimmed(v.GetString("TLS_DOMAINS")),
		CourseDeletePolicy: policy,
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func clientFromViper(v *viper.Viper) (*ClientConfig, error) {
	v.SetDefault("DGAPP_API_URL", DefaultAPIURL)
	v.SetDefault("DGAPP_CACHE_PATH", "dgapp-cache.db")
	v.SetDefault("DEBUG", false)

	policy, err := domain.ParseDeletePolicy(v.GetString("COURSE_DELETE_POLICY"))
	if err != nil {
		return nil, err
	}

	cfg := &ClientConfig{
		APIURL:             v.GetString("DGAPP_API_URL"),
		CachePath:          v.GetString("DGAPP_CACHE_PATH"),
		Token:              v.GetString("DGAPP_TOKEN"),
		Player:             strings.TrimSpace(v.GetString("DGAPP_PLAYER")),
		Debug:              v.GetBool("DEBUG"),
		CourseDeletePolicy: policy,
	}
	if cfg.APIURL == "" {
		return nil, fmt.Errorf("DGAPP_API_URL must not be empty")
	}
	return cfg, nil
}

// PostgresDSN returns the full PostgreSQL connection string.
// DATABASE_URL takes precedence over individual fields.
func (c *Config) PostgresDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser,
		c.DBPass,
		c.DBHost,
		c.DBPort,
		c.DBName,
		c.DBSSLMode,
	)
}

// SQLiteDSN builds a modernc DSN with foreign keys enforced.
func SQLiteDSN(path string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case "mysql":
		return c.MySQLDSN
	case "sqlite":
		return SQLiteDSN(c.SQLitePath)
	default:
		return c.PostgresDSN()
	}
}

// JWTKey returns the JWT signing key as a byte slice, nil when auth is off.
func (c *Config) JWTKey() []byte {
	if c.JWTSecret == "" {
		return nil
	}
	return []byte(c.JWTSecret)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" && c.DBPass == "" {
			return fmt.Errorf("DATABASE_URL or DB_PASS must be set")
		}
	case "mysql":
		if c.MySQLDSN == "" {
			return fmt.Errorf("MYSQL_DSN must be set when DB_DRIVER=mysql")
		}
	case "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be postgres, mysql or sqlite, got %q", c.DBDriver)
	}
	return nil
}

func newViper() *viper.Viper {
	// Silently load .env – OK if the file doesn't exist (production uses real env vars).
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}

	v := viper.New()
	v.AutomaticEnv()
	return v
}

func splitTrimmed(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
