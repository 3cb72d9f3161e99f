package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_SignInAndCurrentUser(t *testing.T) {
	store := NewSessionStore()

	token := store.SignIn(Identity{UserUID: "user1", Email: "ayu@example.com"})
	require.NotEmpty(t, token)

	id := store.CurrentUser(token)
	assert.Equal(t, "user1", id.UserUID)
	assert.False(t, id.IsAnonymous())
}

func TestSessionStore_UnknownTokenIsAnonymous(t *testing.T) {
	store := NewSessionStore()

	id := store.CurrentUser("no-such-token")
	assert.True(t, id.IsAnonymous())
}

func TestSessionStore_SignOut(t *testing.T) {
	store := NewSessionStore()
	token := store.SignIn(Identity{UserUID: "user1"})

	require.NoError(t, store.SignOut(token))
	assert.True(t, store.CurrentUser(token).IsAnonymous())
	assert.ErrorIs(t, store.SignOut(token), ErrSessionNotFound)
}
