package driver

import (
	"context"
	"testing"

	"cfq/wod-board/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_Memory(t *testing.T) {
	store, closeFn, err := Open(context.Background(), config.DatabaseConfig{Driver: "memory"})
	require.NoError(t, err)
	require.NotNil(t, store.Workouts)
	require.NotNil(t, store.Scores)
	require.NotNil(t, store.Users)
	require.NotNil(t, store.PersonalRecords)
	assert.NoError(t, closeFn())
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.DatabaseConfig{Driver: "sqlite"})
	assert.EqualError(t, err, `unknown database driver "sqlite"`)
}
