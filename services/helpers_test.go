package services

import (
	"context"
	"testing"
	"time"

	"aura_server/models"

	"github.com/stretchr/testify/require"
)

var testTime = time.Unix(1700000000, 0)

func seedUser(t *testing.T, store Store, in models.UserProfileInput) *models.User {
	t.Helper()
	u := models.NewUser(in, testTime)
	require.NoError(t, store.CreateUser(context.Background(), u))
	return u
}

func seedUsers(t *testing.T, store Store, ids ...string) {
	t.Helper()
	for _, id := range ids {
		seedUser(t, store, models.UserProfileInput{UserID: id, Name: id})
	}
}

func mustUser(t *testing.T, store Store, id string) *models.User {
	t.Helper()
	u, err := store.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func fastRetry(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func newSwipeFixture(t *testing.T, ids ...string) (*MemoryStore, *SwipeService, *ChatService) {
	t.Helper()
	store := NewMemoryStore()
	seedUsers(t, store, ids...)
	hub := NewHub()
	return store, NewSwipeService(store, hub, fastRetry(5)), NewChatService(store, hub)
}
