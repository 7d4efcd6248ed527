package services

import (
	"context"
	"testing"

	"aura_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioFeedLikeMatchChatBlock(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	profiles := &UserProfileService{Store: store, Retry: fastRetry(3)}
	_, err := profiles.CreateUser(ctx, models.UserProfileInput{UserID: "a", Campus: "X", Mode: models.ModeGeneral, LookingFor: models.LookingForEveryone})
	require.NoError(t, err)
	_, err = profiles.CreateUser(ctx, models.UserProfileInput{UserID: "b", Campus: "X", Mode: models.ModeGeneral})
	require.NoError(t, err)

	hub := NewHub()
	swipes := NewSwipeService(store, hub, fastRetry(5))
	chats := NewChatService(store, hub)

	feed, err := (&FeedService{Store: store}).Build(ctx, "a", 1)
	require.NoError(t, err)
	next, ok := feed.Next()
	require.True(t, ok)
	assert.Equal(t, "b", next.UserID)

	res, err := swipes.Like(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomePending, res.Outcome)
	_, err = store.GetChat(ctx, models.PairKey("a", "b"))
	assert.ErrorIs(t, err, ErrNotFound)

	res, err = swipes.Like(ctx, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeMatched, res.Outcome)
	assert.Equal(t, "a_b", res.ChatID)

	assert.True(t, mustUser(t, store, "a").Matched.Has("b"))
	assert.True(t, mustUser(t, store, "b").Matched.Has("a"))
	chat, err := store.GetChat(ctx, "a_b")
	require.NoError(t, err)
	assert.Zero(t, chat.UnreadBy.Len())
	history, err := chats.History(ctx, "a_b", "a")
	require.NoError(t, err)
	assert.Empty(t, history)

	sub, err := chats.Subscribe(ctx, "a_b", "b")
	require.NoError(t, err)
	_, err = chats.Send(ctx, "a_b", "a", models.TextPayload("hi"))
	require.NoError(t, err)
	got := receive(t, sub, 1)
	assert.Equal(t, "hi", got[0].Text)

	_, err = swipes.Block(ctx, "b", "a")
	require.NoError(t, err)
	<-sub.Done()
	assert.ErrorIs(t, sub.Err(), ErrChatClosed)

	_, err = store.GetChat(ctx, "a_b")
	assert.ErrorIs(t, err, ErrNotFound)
	store.mu.Lock()
	assert.Empty(t, store.messages["a_b"])
	store.mu.Unlock()

	feed, err = (&FeedService{Store: store}).Build(ctx, "a", 1)
	require.NoError(t, err)
	assert.Zero(t, feed.Remaining())
}
