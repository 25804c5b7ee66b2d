package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDevDefaults(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 90*24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 6, cfg.PasswordMinLen)
	assert.True(t, cfg.IncludeErrorStacks)
}

func TestLoadProdRequiresRealSecret(t *testing.T) {
	t.Setenv("ENV", "prod")

	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)

	// The dev fallback value is just as unacceptable.
	t.Setenv("JWT_SECRET", devJWTSecret)
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("JWT_SECRET", "a-real-production-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.IncludeErrorStacks)
}

func TestLoadRejectsUnknownUploadsBackend(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("UPLOADS_BACKEND", "ftp")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMinioBackendNeedsEndpoint(t *testing.T) {
	t.Setenv("ENV", "dev")
	t.Setenv("UPLOADS_BACKEND", "minio")
	t.Setenv("MINIO_ENDPOINT", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("MINIO_ENDPOINT", "localhost:9000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "minio", cfg.UploadsBackend)
}

func TestRateLimitDisabledInTestEnv(t *testing.T) {
	t.Setenv("ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.RateLimitEnabled)
}
