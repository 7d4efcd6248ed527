package services

import (
	"context"
	"testing"
	"time"

	"aura_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateUserRejectsDuplicate(t *testing.T) {
	store := NewMemoryStore()
	seedUsers(t, store, "alice")

	err := store.CreateUser(context.Background(), models.NewUser(models.UserProfileInput{UserID: "alice"}, time.Now()))
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestMemoryStoreGetUserNotFound(t *testing.T) {
	_, err := NewMemoryStore().GetUser(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	seedUsers(t, store, "alice")

	u := mustUser(t, store, "alice")
	u.Liked.Add("bob")

	assert.False(t, mustUser(t, store, "alice").Liked.Has("bob"))
}

func TestMemoryStoreTransactVersionConflict(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUsers(t, store, "alice", "bob")

	stale := mustUser(t, store, "alice")
	require.NoError(t, store.Transact(ctx, &models.Txn{Users: []*models.UserWrite{
		models.NewUserWrite(stale).AddTo(models.SetLiked, "bob"),
	}}))

	err := store.Transact(ctx, &models.Txn{Users: []*models.UserWrite{
		models.NewUserWrite(stale).AddTo(models.SetPassed, "bob"),
	}})
	assert.ErrorIs(t, err, ErrTxnConflict)

	alice := mustUser(t, store, "alice")
	assert.True(t, alice.Liked.Has("bob"))
	assert.False(t, alice.Passed.Has("bob"))
	assert.Equal(t, int64(1), alice.Version)
}

func TestMemoryStoreTransactIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUsers(t, store, "alice", "bob")

	alice := mustUser(t, store, "alice")
	bob := mustUser(t, store, "bob")
	bob.Version = 7 // stale on purpose

	err := store.Transact(ctx, &models.Txn{
		Users: []*models.UserWrite{
			models.NewUserWrite(alice).AddTo(models.SetMatched, "bob"),
			models.NewUserWrite(bob).AddTo(models.SetMatched, "alice"),
		},
		Chat: &models.ChatWrite{Create: models.NewChat("alice", "bob", models.MatchSourceSwipe, 1)},
	})
	require.ErrorIs(t, err, ErrTxnConflict)

	assert.False(t, mustUser(t, store, "alice").Matched.Has("bob"))
	_, err = store.GetChat(ctx, models.PairKey("alice", "bob"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTransactChatCreateIfAbsent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUsers(t, store, "alice", "bob")

	create := func() error {
		return store.Transact(ctx, &models.Txn{Chat: &models.ChatWrite{
			Create: models.NewChat("bob", "alice", models.MatchSourceSwipe, 1),
		}})
	}
	require.NoError(t, create())
	assert.ErrorIs(t, create(), ErrTxnConflict)
}

func TestMemoryStoreTransactRequireStatus(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUsers(t, store, "alice")

	alice := mustUser(t, store, "alice")
	w := models.NewUserWrite(alice).SetStatus(models.StatusMatched)
	w.RequireStatus = models.StatusAwaiting

	assert.ErrorIs(t, store.Transact(ctx, &models.Txn{Users: []*models.UserWrite{w}}), ErrTxnConflict)
	assert.Equal(t, models.StatusBrowsing, mustUser(t, store, "alice").Status)
}

func TestMemoryStoreAppendMessageTimestampsStrictlyIncrease(t *testing.T) {
	ctx := context.Background()
	frozen := time.Unix(1700000000, 0)
	store := NewMemoryStore().WithClock(func() time.Time { return frozen })
	seedUsers(t, store, "alice", "bob")
	require.NoError(t, store.Transact(ctx, &models.Txn{Chat: &models.ChatWrite{
		Create: models.NewChat("alice", "bob", models.MatchSourceSwipe, 1),
	}}))
	chatID := models.PairKey("alice", "bob")

	var last int64
	for i := 0; i < 5; i++ {
		msg, err := store.AppendMessage(ctx, chatID, &models.Message{SenderID: "alice", Kind: models.MessageKindText, Text: "hi"})
		require.NoError(t, err)
		assert.Greater(t, msg.Timestamp, last)
		last = msg.Timestamp
	}

	chat, err := store.GetChat(ctx, chatID)
	require.NoError(t, err)
	assert.Equal(t, last, chat.LastMessageAt)
	assert.Equal(t, []string{"bob"}, chat.UnreadBy.Sorted())
}

func TestMemoryStoreQueryUsersFilters(t *testing.T) {
	store := NewMemoryStore()
	seedUser(t, store, models.UserProfileInput{UserID: "a", Gender: "F", Mode: models.ModeGeneral})
	seedUser(t, store, models.UserProfileInput{UserID: "b", Gender: "M", Mode: models.ModeGeneral})
	seedUser(t, store, models.UserProfileInput{UserID: "c", Gender: "F", Mode: models.ModeMoodIndigo})

	users, err := store.QueryUsers(context.Background(), UserQuery{Gender: "F", Mode: models.ModeGeneral})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a", users[0].UserID)
}

func TestMemoryStoreTransactChatDeleteNeedsCurrentVersion(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	seedUsers(t, store, "alice", "bob")
	require.NoError(t, store.Transact(ctx, &models.Txn{Chat: &models.ChatWrite{
		Create: models.NewChat("alice", "bob", models.MatchSourceSwipe, 1),
	}}))
	_, err := store.AppendMessage(ctx, "alice_bob", &models.Message{SenderID: "alice", Kind: models.MessageKindText, Text: "hi"})
	require.NoError(t, err)

	del := func(version int64) error {
		return store.Transact(ctx, &models.Txn{Chat: &models.ChatWrite{DeleteID: "alice_bob", DeleteVersion: version}})
	}
	assert.ErrorIs(t, del(0), ErrTxnConflict)
	_, err = store.GetChat(ctx, "alice_bob")
	require.NoError(t, err)

	require.NoError(t, del(1))
	_, err = store.GetChat(ctx, "alice_bob")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, del(1), ErrTxnConflict)
}
