package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-person-auth/config"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 10, cfg.DBMaxOpenConns)
	assert.Equal(t, 5*time.Second, cfg.GetStoreTimeout())
	assert.Equal(t, "person-auth", cfg.GetIssuer())
	assert.Equal(t, "Bearer", cfg.GetAuthScheme())
	assert.Equal(t, "user", cfg.GetContextKey())
	assert.Equal(t, secret, cfg.GetSigningKey())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", secret)
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_DSN", "postgres://localhost/personen")
	t.Setenv("STORE_TIMEOUT", "250ms")
	t.Setenv("HTTP_ADDR", ":8080")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "postgres://localhost/personen", cfg.DBDSN)
	assert.Equal(t, 250*time.Millisecond, cfg.StoreTimeout)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "missing secret", env: map[string]string{"JWT_SECRET": ""}, want: "JWT_SECRET"},
		{name: "short secret", env: map[string]string{"JWT_SECRET": "short"}, want: "at least"},
		{name: "bad driver", env: map[string]string{"JWT_SECRET": secret, "DB_DRIVER": "mysql"}, want: "DB_DRIVER"},
		{name: "bad duration", env: map[string]string{"JWT_SECRET": secret, "STORE_TIMEOUT": "soon"}, want: "parse env"},
		{name: "zero pool", env: map[string]string{"JWT_SECRET": secret, "DB_MAX_OPEN_CONNS": "0"}, want: "DB_MAX_OPEN_CONNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
		})
	}
}
