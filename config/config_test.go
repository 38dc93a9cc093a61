package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockmaster/config"
)

func TestProcess_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "memory")

	cfg, err := config.Process()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 3, cfg.DBMaxRetries)
	assert.Equal(t, 10*time.Minute, cfg.OTPTTL)
	assert.Equal(t, 100, cfg.RateLimitMaxRequests)
	assert.False(t, cfg.IsProduction())
}

func TestProcess_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "")
	t.Setenv("STORE_DRIVER", "memory")

	_, err := config.Process()
	assert.Error(t, err)
}

func TestProcess_PostgresRequiresDSN(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := config.Process()
	assert.ErrorContains(t, err, "DATABASE_URL")
}

func TestProcess_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("STORE_DRIVER", "mongo")

	_, err := config.Process()
	assert.ErrorContains(t, err, "STORE_DRIVER")
}
