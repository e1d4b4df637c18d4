package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

func TestLogRejectsBlankQuery(t *testing.T) {
	repo := NewQueryLogRepository(newTestDB(t))

	err := repo.Log("   ", "response", true, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}

func TestLogAndRecent(t *testing.T) {
	repo := NewQueryLogRepository(newTestDB(t))

	require.NoError(t, repo.Log("first", "ok", true, 120))
	require.NoError(t, repo.Log("second", "boom", false, 30))

	logs, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, logs, 2)

	assert.Equal(t, "second", logs[0].QueryText)
	assert.False(t, logs[0].Success)
	assert.Equal(t, "boom", logs[0].ErrorMessage, "failed responses double as error detail")

	assert.Equal(t, "first", logs[1].QueryText)
	assert.True(t, logs[1].Success)
	assert.Empty(t, logs[1].ErrorMessage)
	assert.Equal(t, 120, logs[1].ResponseTimeMs)
}

func TestRecentHonorsLimit(t *testing.T) {
	repo := NewQueryLogRepository(newTestDB(t))

	for _, q := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Log(q, "ok", true, 1))
	}

	logs, err := repo.Recent(2)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}
