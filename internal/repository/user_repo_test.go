package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookworm-ai/bookworm/internal/domain"
)

func TestFindOrCreateNormalizesAndReuses(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	first, err := repo.FindOrCreate("  Alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", first.Identifier)
	assert.False(t, first.Anonymous)

	second, err := repo.FindOrCreate("ALICE")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestFindOrCreateRejectsInvalidIdentifier(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	for _, identifier := range []string{"bad user!", "", "a_b", "name@host"} {
		_, err := repo.FindOrCreate(identifier)
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier, identifier)
	}
}

func TestFindOrCreateRejectsReservedAnonymousHandle(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	anon, err := repo.AnonymousUser()
	require.NoError(t, err)

	for _, identifier := range []string{"anonymous", "ANONYMOUS", " Anonymous "} {
		_, err := repo.FindOrCreate(identifier)
		assert.ErrorIs(t, err, domain.ErrInvalidIdentifier, identifier)
	}

	again, err := repo.AnonymousUser()
	require.NoError(t, err)
	assert.Equal(t, anon.ID, again.ID)
}

func TestAnonymousUserIsSingleton(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	first, err := repo.AnonymousUser()
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousIdentifier, first.Identifier)
	assert.True(t, first.Anonymous)

	second, err := repo.AnonymousUser()
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestFindByIdentifierReturnsNilWhenAbsent(t *testing.T) {
	repo := NewUserRepository(newTestDB(t))

	user, err := repo.FindByIdentifier("ghost")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestDeleteCascadesToSessions(t *testing.T) {
	db := newTestDB(t)
	users := NewUserRepository(db)
	sessions := NewSessionRepository(db)

	user, err := users.FindOrCreate("alice")
	require.NoError(t, err)
	session, err := sessions.CreateSession(user.ID, "")
	require.NoError(t, err)
	_, err = sessions.AppendMessage(session.ID, domain.RoleUser, "hi")
	require.NoError(t, err)

	require.NoError(t, users.Delete(user.ID))

	_, err = sessions.GetSession(user.ID, session.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	messages, err := sessions.GetMessages(session.ID)
	require.NoError(t, err)
	assert.Empty(t, messages)
}
