package services

import (
	"context"
	"testing"

	"aura_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserValidatesID(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	profiles := &UserProfileService{Store: store, Retry: fastRetry(3)}

	for _, id := range []string{"", "   ", "a_b", "_alice"} {
		_, err := profiles.CreateUser(ctx, models.UserProfileInput{UserID: id})
		assert.ErrorIs(t, err, ErrInvalidPayload, "id %q", id)
	}

	user, err := profiles.CreateUser(ctx, models.UserProfileInput{UserID: "  alice "})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.UserID)

	store.mu.Lock()
	_, blank := store.users[""]
	store.mu.Unlock()
	assert.False(t, blank)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUsers(t, store, "alice")
	profiles := &UserProfileService{Store: store, Retry: fastRetry(3)}

	user, err := profiles.SetStatus(ctx, "alice", models.StatusAwaiting)
	require.NoError(t, err)
	assert.Equal(t, models.StatusAwaiting, user.Status)
	assert.Equal(t, int64(1), mustUser(t, store, "alice").Version)

	_, err = profiles.SetStatus(ctx, "alice", models.StatusMatched)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}
