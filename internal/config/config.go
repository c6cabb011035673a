package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Token types supported by AUTH_TOKEN_TYPE
const (
	TokenTypePaseto = "paseto"
	TokenTypeJWT    = "jwt"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Todo     TodoConfig
	Events   EventsConfig
}

type ServerConfig struct {
	Port            string
	Env             string // dev or prod
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	TrustedOrigins  []string // CORS allowed origins
	RateLimit       int      // requests per RateLimitWindow per IP, 0 disables
	RateLimitWindow time.Duration
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	DBName         string
	SSLMode        string
	ChannelBinding string // "require" for Neon DB
	MaxOpenConns   int
	MaxIdleConns   int
	Debug          bool // log every query through bundebug
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type AuthConfig struct {
	TokenType            string
	PasetoKey            []byte // v4.local, exactly 32 bytes
	JWTSecret            []byte // HS256, at least 32 bytes
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
}

// TodoConfig holds the id allocation bounds. Both are workload-dependent.
type TodoConfig struct {
	CreateMaxAttempts int
	IDProbeLimit      int
}

type EventsConfig struct {
	AMQPURL  string // empty disables publishing
	Exchange string
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            envString("SERVER_PORT", "8080"),
			Env:             envString("APP_ENV", "dev"),
			ReadTimeout:     envDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    envDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: envDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			TrustedOrigins:  envList("TRUSTED_ORIGINS", []string{"http://localhost:3000"}),
			RateLimit:       envInt("RATE_LIMIT_REQUESTS", 100),
			RateLimitWindow: envDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Database: DatabaseConfig{
			Host:           envString("DB_HOST", "localhost"),
			Port:           envString("DB_PORT", "5432"),
			User:           envString("DB_USER", "postgres"),
			Password:       envString("DB_PASSWORD", "postgres"),
			DBName:         envString("DB_NAME", "todo"),
			SSLMode:        envString("DB_SSLMODE", "disable"),
			ChannelBinding: envString("DB_CHANNEL_BINDING", ""),
			MaxOpenConns:   envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   envInt("DB_MAX_IDLE_CONNS", 5),
			Debug:          envBool("DB_DEBUG", false),
		},
		Redis: RedisConfig{
			Host:     envString("REDIS_HOST", "localhost"),
			Port:     envString("REDIS_PORT", "6379"),
			Password: envString("REDIS_PASSWORD", ""),
			DB:       envInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			TokenType:            strings.ToLower(envString("AUTH_TOKEN_TYPE", TokenTypePaseto)),
			PasetoKey:            []byte(envString("PASETO_KEY", "")),
			JWTSecret:            []byte(envString("JWT_SECRET", "")),
			AccessTokenDuration:  envDuration("ACCESS_TOKEN_DURATION", 15*time.Minute),
			RefreshTokenDuration: envDuration("REFRESH_TOKEN_DURATION", 7*24*time.Hour),
		},
		Todo: TodoConfig{
			CreateMaxAttempts: envInt("TODO_CREATE_MAX_ATTEMPTS", 5),
			IDProbeLimit:      envInt("TODO_ID_PROBE_LIMIT", 1000),
		},
		Events: EventsConfig{
			AMQPURL:  envString("AMQP_URL", ""),
			Exchange: envString("AMQP_EXCHANGE", "todo.items"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail at first use.
// Every problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	switch c.Auth.TokenType {
	case TokenTypePaseto:
		if n := len(c.Auth.PasetoKey); n != 32 {
			errs = append(errs, fmt.Errorf("PASETO_KEY must be exactly 32 bytes, got %d", n))
		}
	case TokenTypeJWT:
		if n := len(c.Auth.JWTSecret); n < 32 {
			errs = append(errs, fmt.Errorf("JWT_SECRET must be at least 32 bytes, got %d", n))
		}
	default:
		errs = append(errs, fmt.Errorf("AUTH_TOKEN_TYPE must be %q or %q, got %q", TokenTypePaseto, TokenTypeJWT, c.Auth.TokenType))
	}

	if c.Todo.CreateMaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("TODO_CREATE_MAX_ATTEMPTS must be >= 1, got %d", c.Todo.CreateMaxAttempts))
	}
	if c.Todo.IDProbeLimit < 1 {
		errs = append(errs, fmt.Errorf("TODO_ID_PROBE_LIMIT must be >= 1, got %d", c.Todo.IDProbeLimit))
	}

	return errors.Join(errs...)
}

// ConnectionString renders the lib/pq keyword/value DSN
func (c *DatabaseConfig) ConnectionString() string {
	pairs := []string{
		"host=" + c.Host,
		"port=" + c.Port,
		"user=" + c.User,
		"password=" + c.Password,
		"dbname=" + c.DBName,
		"sslmode=" + c.SSLMode,
	}
	if c.ChannelBinding != "" {
		pairs = append(pairs, "channel_binding="+c.ChannelBinding)
	}
	return strings.Join(pairs, " ")
}

func (c *RedisConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// IsDevelopment enables swagger and verbose logging
func (c *ServerConfig) IsDevelopment() bool {
	return c.Env == "dev"
}
