package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnvConfig(t *testing.T) {
	t.Run("defaults without .env", func(t *testing.T) {
		require.NoError(t, LoadEnvConfig("does-not-exist.env"))

		assert.Equal(t, "5000", DefaultEnvConfig.APP_PORT)
		assert.Equal(t, 10, DefaultEnvConfig.DB_MAX_OPEN_CONNS)
		assert.Equal(t, 24*time.Hour, DefaultEnvConfig.SESSION_MAX_AGE)
		assert.Equal(t, "admin", DefaultEnvConfig.ADMIN_USERNAME)
		assert.Empty(t, DefaultEnvConfig.ELASTIC_URL)
		assert.True(t, DefaultEnvConfig.UsesDefaultSessionSecret())
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("APP_PORT", "8080")
		t.Setenv("DB_MAX_OPEN_CONNS", "4")
		t.Setenv("SESSION_MAX_AGE", "90")
		t.Setenv("SESSION_SECURE", "true")
		t.Setenv("SESSION_SECRET", "s3cr3t-from-vault")
		t.Setenv("DB_PORT", "not-a-number")

		require.NoError(t, LoadEnvConfig("does-not-exist.env"))

		assert.Equal(t, "8080", DefaultEnvConfig.APP_PORT)
		assert.Equal(t, 4, DefaultEnvConfig.DB_MAX_OPEN_CONNS)
		assert.Equal(t, 90*time.Second, DefaultEnvConfig.SESSION_MAX_AGE)
		assert.True(t, DefaultEnvConfig.SESSION_SECURE)
		assert.Equal(t, 5432, DefaultEnvConfig.DB_PORT)
		assert.False(t, DefaultEnvConfig.UsesDefaultSessionSecret())
	})

	t.Run("secure cookies need a real secret", func(t *testing.T) {
		t.Setenv("SESSION_SECURE", "true")
		t.Setenv("SESSION_SECRET", "")

		err := LoadEnvConfig("does-not-exist.env")
		assert.ErrorIs(t, err, errDefaultSessionSecret)
	})
}
