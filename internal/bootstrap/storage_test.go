package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reservation-system/pkg/config"
)

func TestOpenStorage_Memory(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Driver: config.StorageDriverMemory}}

	s, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()

	assert.Nil(t, s.Pool)
	assert.NotNil(t, s.Repos.Tx)
	assert.NotNil(t, s.Repos.Reservations)
	assert.Nil(t, s.Repos.Cache)
}

func TestOpenStorage_MemoryWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Redis:   config.RedisConfig{Address: mr.Addr()},
	}

	s, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.NotNil(t, s.Repos.Cache)
}

func TestOpenStorage_UnreachableRedisDisablesCache(t *testing.T) {
	cfg := &config.Config{
		Storage: config.StorageConfig{Driver: config.StorageDriverMemory},
		Redis:   config.RedisConfig{Address: "127.0.0.1:1"},
	}

	s, err := OpenStorage(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close()
	assert.Nil(t, s.Repos.Cache)
}

func TestOpenStorage_UnknownDriver(t *testing.T) {
	_, err := OpenStorage(context.Background(), &config.Config{Storage: config.StorageConfig{Driver: "mongo"}}, zap.NewNop())
	assert.Error(t, err)
}
