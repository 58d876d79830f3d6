package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
)

func TestNewPostgresWithoutDSN(t *testing.T) {
	pg, err := NewPostgres(context.Background(), config.PostgresConfig{}, zap.NewNop())
	require.NoError(t, err)

	assert.Nil(t, pg.PoolHandle())
	assert.ErrorIs(t, pg.Ping(context.Background()), ErrNotConfigured)
	assert.NotPanics(t, func() { pg.Close(zap.NewNop()) })
}

func TestNewPostgresRejectsMalformedDSN(t *testing.T) {
	_, err := NewPostgres(context.Background(), config.PostgresConfig{DSN: "postgres://%zz"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse postgres dsn")
}

func TestPoolConfigAppliesOverrides(t *testing.T) {
	poolCfg, err := poolConfig(config.PostgresConfig{
		DSN:             "postgres://helpdesk:secret@db:5432/helpdesk?application_name=psql",
		MaxConns:        4,
		MinConns:        8,
		ConnMaxIdleSec:  30,
		ConnMaxLifeSec:  300,
		ApplicationName: "helpdesk-service",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(4), poolCfg.MaxConns)
	assert.Equal(t, int32(4), poolCfg.MinConns)
	assert.Equal(t, 30*time.Second, poolCfg.MaxConnIdleTime)
	assert.Equal(t, 5*time.Minute, poolCfg.MaxConnLifetime)
	assert.Equal(t, "helpdesk-service", poolCfg.ConnConfig.RuntimeParams["application_name"])
	assert.Equal(t, "db", poolCfg.ConnConfig.Host)
}

func TestPoolConfigKeepsDSNDefaults(t *testing.T) {
	poolCfg, err := poolConfig(config.PostgresConfig{
		DSN: "postgres://helpdesk@db/helpdesk?pool_max_conns=7&application_name=ops",
	})
	require.NoError(t, err)

	assert.Equal(t, int32(7), poolCfg.MaxConns)
	assert.Equal(t, "ops", poolCfg.ConnConfig.RuntimeParams["application_name"])
}
