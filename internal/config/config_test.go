package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPasetoKey = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, TokenTypePaseto, cfg.Auth.TokenType)
	assert.Equal(t, 5, cfg.Todo.CreateMaxAttempts)
	assert.Equal(t, 1000, cfg.Todo.IDProbeLimit)
	assert.Equal(t, 15*time.Minute, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, "todo.items", cfg.Events.Exchange)
	assert.Empty(t, cfg.Events.AMQPURL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PASETO_KEY", testPasetoKey)
	t.Setenv("TODO_CREATE_MAX_ATTEMPTS", "9")
	t.Setenv("TODO_ID_PROBE_LIMIT", "50")
	t.Setenv("SERVER_READ_TIMEOUT", "3")
	t.Setenv("TRUSTED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DB_DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9, cfg.Todo.CreateMaxAttempts)
	assert.Equal(t, 50, cfg.Todo.IDProbeLimit)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.TrustedOrigins)
	assert.True(t, cfg.Database.Debug)
}

func TestLoad_Validation(t *testing.T) {
	t.Run("short_paseto_key", func(t *testing.T) {
		t.Setenv("PASETO_KEY", "short")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "PASETO_KEY")
	})

	t.Run("jwt_requires_secret", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_TYPE", "JWT")
		t.Setenv("JWT_SECRET", "tiny")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	})

	t.Run("jwt_ok", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_TYPE", "jwt")
		t.Setenv("JWT_SECRET", strings.Repeat("s", 32))
		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, TokenTypeJWT, cfg.Auth.TokenType)
	})

	t.Run("unknown_token_type", func(t *testing.T) {
		t.Setenv("AUTH_TOKEN_TYPE", "opaque")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("zero_attempts", func(t *testing.T) {
		t.Setenv("PASETO_KEY", testPasetoKey)
		t.Setenv("TODO_CREATE_MAX_ATTEMPTS", "0")
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TODO_CREATE_MAX_ATTEMPTS")
	})
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "todo", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=todo sslmode=disable", c.ConnectionString())

	c.ChannelBinding = "require"
	assert.True(t, strings.HasSuffix(c.ConnectionString(), " channel_binding=require"))
}

func TestEnvDuration(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{name: "seconds", value: "30", want: 30 * time.Second},
		{name: "go_duration", value: "1m30s", want: 90 * time.Second},
		{name: "garbage_falls_back", value: "soon", want: time.Minute},
		{name: "unset_falls_back", value: "", want: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TEST_DURATION", tt.value)
			assert.Equal(t, tt.want, envDuration("TEST_DURATION", time.Minute))
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Auth: AuthConfig{TokenType: TokenTypePaseto},
		Todo: TodoConfig{CreateMaxAttempts: 0, IDProbeLimit: 0},
	}

	err := cfg.Validate()
	require.Error(t, err)
	for _, name := range []string{"PASETO_KEY", "TODO_CREATE_MAX_ATTEMPTS", "TODO_ID_PROBE_LIMIT"} {
		assert.Contains(t, err.Error(), name)
	}
}
