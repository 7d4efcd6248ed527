package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"aura_server/models"
	"aura_server/observability"
)

// SwipeService applies like, pass, block and recycle to the relationship sets
type SwipeService struct {
	Store Store
	Hub   *Hub
	Retry RetryPolicy
	now   func() time.Time
}

func NewSwipeService(store Store, hub *Hub, retry RetryPolicy) *SwipeService {
	return &SwipeService{Store: store, Hub: hub, Retry: retry, now: time.Now}
}

func (s *SwipeService) clock() int64 {
	if s.now == nil {
		return time.Now().UnixNano()
	}
	return s.now().UnixNano()
}

// ProcessAction dispatches a swipe by action name
func (s *SwipeService) ProcessAction(ctx context.Context, userID, action, targetID string) (*models.SwipeResult, error) {
	switch action {
	case models.ActionLike:
		return s.Like(ctx, userID, targetID)
	case models.ActionPass:
		return s.Pass(ctx, userID, targetID)
	case models.ActionBlock:
		return s.Block(ctx, userID, targetID)
	case models.ActionRecycle:
		return s.Recycle(ctx, userID)
	default:
		return nil, fmt.Errorf("unknown action %q: %w", action, ErrInvalidPayload)
	}
}

// readPair loads both users of a swipe
func (s *SwipeService) readPair(ctx context.Context, userID, targetID string) (*models.User, *models.User, error) {
	if userID == targetID {
		return nil, nil, ErrSelfAction
	}
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.Store.GetUser(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	return user, target, nil
}

// existingChat returns the pair's chat or nil when there is none. A chat
// under the pair key that belongs to other users is an error, never a match.
func (s *SwipeService) existingChat(ctx context.Context, a, b string) (*models.Chat, error) {
	chat, err := s.Store.GetChat(ctx, models.PairKey(a, b))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read chat: %w", err)
	}
	if !chat.IsPair(a, b) {
		return nil, fmt.Errorf("chat %s belongs to %v, not %s and %s: %w", chat.ChatID, chat.Participants, a, b, ErrPairKeyCollision)
	}
	return chat, nil
}

// Like records interest in targetID. A reciprocal like turns into a match in
// the same transaction; otherwise the like stays pending. Both paths are
// guarded by the versions of both records, so two users liking each other at
// the same time cannot both end up pending.
func (s *SwipeService) Like(ctx context.Context, userID, targetID string) (*models.SwipeResult, error) {
	result := &models.SwipeResult{Action: models.ActionLike, TargetID: targetID}

	err := s.Retry.Run(ctx, models.ActionLike, func() error {
		user, target, err := s.readPair(ctx, userID, targetID)
		if err != nil {
			return err
		}
		if user.Blocked.Has(targetID) {
			return ErrBlocked
		}
		if target.Blocked.Has(userID) {
			// never reveal a block; the like just goes nowhere
			result.Outcome = models.OutcomePending
			return nil
		}
		if user.Matched.Has(targetID) {
			result.Outcome = models.OutcomeMatched
			result.ChatID = models.PairKey(userID, targetID)
			return ErrAlreadyMatched
		}

		if target.Liked.Has(userID) {
			chat, err := s.existingChat(ctx, userID, targetID)
			if err != nil {
				return err
			}
			txn := &models.Txn{Users: []*models.UserWrite{
				models.NewUserWrite(user).
					AddTo(models.SetMatched, targetID).
					RemoveFrom(models.SetLiked, targetID).
					RemoveFrom(models.SetPassed, targetID),
				models.NewUserWrite(target).
					AddTo(models.SetMatched, userID).
					RemoveFrom(models.SetLiked, userID).
					RemoveFrom(models.SetPassed, userID),
			}}
			if chat == nil {
				txn.Chat = &models.ChatWrite{Create: models.NewChat(userID, targetID, models.MatchSourceSwipe, s.clock())}
			}
			if err := s.Store.Transact(ctx, txn); err != nil {
				return err
			}
			result.Outcome = models.OutcomeMatched
			result.ChatID = models.PairKey(userID, targetID)
			return nil
		}

		result.Outcome = models.OutcomePending
		if user.Liked.Has(targetID) {
			return nil
		}
		txn := &models.Txn{
			Users: []*models.UserWrite{
				models.NewUserWrite(user).
					AddTo(models.SetLiked, targetID).
					RemoveFrom(models.SetPassed, targetID),
			},
			Checks: []models.VersionCheck{{UserID: target.UserID, ExpectedVersion: target.Version}},
		}
		return s.Store.Transact(ctx, txn)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyMatched) {
			return result, err
		}
		log.Printf("❌ Like %s -> %s failed: %v", userID, targetID, err)
		return nil, err
	}

	observability.IncSwipe(models.ActionLike, result.Outcome)
	if result.Outcome == models.OutcomeMatched {
		observability.IncMatch(models.MatchSourceSwipe)
		log.Printf("💘 Match %s", result.ChatID)
	}
	return result, nil
}

// Pass hides targetID from the feed until the next Recycle. It also drops
// a pending like, since only one relation holds per pair.
func (s *SwipeService) Pass(ctx context.Context, userID, targetID string) (*models.SwipeResult, error) {
	result := &models.SwipeResult{Action: models.ActionPass, TargetID: targetID, Outcome: models.OutcomePassed}

	err := s.Retry.Run(ctx, models.ActionPass, func() error {
		user, _, err := s.readPair(ctx, userID, targetID)
		if err != nil {
			return err
		}
		switch {
		case user.Blocked.Has(targetID):
			return ErrAlreadyBlocked
		case user.Matched.Has(targetID):
			return ErrAlreadyMatched
		case user.Passed.Has(targetID):
			return ErrAlreadyPassed
		}
		return s.Store.Transact(ctx, &models.Txn{Users: []*models.UserWrite{
			models.NewUserWrite(user).
				AddTo(models.SetPassed, targetID).
				RemoveFrom(models.SetLiked, targetID),
		}})
	})
	if err != nil {
		if IsNoop(err) {
			return result, err
		}
		log.Printf("❌ Pass %s -> %s failed: %v", userID, targetID, err)
		return nil, err
	}
	observability.IncSwipe(models.ActionPass, result.Outcome)
	return result, nil
}

// Recycle empties the passed set so those profiles return to the feed.
// Likes, matches and blocks are untouched.
func (s *SwipeService) Recycle(ctx context.Context, userID string) (*models.SwipeResult, error) {
	result := &models.SwipeResult{Action: models.ActionRecycle, Outcome: models.OutcomeRecycled}

	err := s.Retry.Run(ctx, models.ActionRecycle, func() error {
		user, err := s.Store.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		result.Recycled = user.Passed.Len()
		if result.Recycled == 0 {
			return nil
		}
		return s.Store.Transact(ctx, &models.Txn{Users: []*models.UserWrite{
			models.NewUserWrite(user).ClearSet(models.SetPassed),
		}})
	})
	if err != nil {
		log.Printf("❌ Recycle for %s failed: %v", userID, err)
		return nil, err
	}
	observability.IncSwipe(models.ActionRecycle, result.Outcome)
	log.Printf("♻️ Recycled %d passed profiles for %s", result.Recycled, userID)
	return result, nil
}

// Block severs every relation between the two users in one transaction and
// deletes their chat. Afterwards the message log is purged and live
// subscribers are closed.
func (s *SwipeService) Block(ctx context.Context, userID, targetID string) (*models.SwipeResult, error) {
	result := &models.SwipeResult{Action: models.ActionBlock, TargetID: targetID, Outcome: models.OutcomeBlocked}
	var deleted *models.Chat

	err := s.Retry.Run(ctx, models.ActionBlock, func() error {
		deleted = nil
		user, target, err := s.readPair(ctx, userID, targetID)
		if err != nil {
			return err
		}
		if user.Blocked.Has(targetID) {
			return ErrAlreadyBlocked
		}
		chat, err := s.existingChat(ctx, userID, targetID)
		if err != nil {
			return err
		}

		userWrite := models.NewUserWrite(user).
			AddTo(models.SetBlocked, targetID).
			RemoveFrom(models.SetLiked, targetID).
			RemoveFrom(models.SetPassed, targetID).
			RemoveFrom(models.SetMatched, targetID)
		targetWrite := models.NewUserWrite(target).
			RemoveFrom(models.SetLiked, userID).
			RemoveFrom(models.SetPassed, userID).
			RemoveFrom(models.SetMatched, userID)
		txn := &models.Txn{Users: []*models.UserWrite{userWrite, targetWrite}}
		if chat != nil {
			txn.Chat = &models.ChatWrite{DeleteID: chat.ChatID, DeleteVersion: chat.Version}
			if chat.Source == models.MatchSourceBatch {
				// a broken batch pairing sends both back to the pool
				userWrite.SetStatus(models.StatusAwaiting)
				targetWrite.SetStatus(models.StatusAwaiting)
			}
		}
		if err := s.Store.Transact(ctx, txn); err != nil {
			return err
		}
		deleted = chat
		return nil
	})
	if err != nil {
		if IsNoop(err) {
			return result, err
		}
		log.Printf("❌ Block %s -> %s failed: %v", userID, targetID, err)
		return nil, err
	}

	if deleted != nil {
		result.ChatID = deleted.ChatID
		if s.Hub != nil {
			// also drops the chat's append lock
			s.Hub.CloseChat(deleted.ChatID)
		}
		if err := s.Store.DeleteMessages(ctx, deleted.ChatID); err != nil {
			// the chat record is gone, so the orphaned log is unreachable
			log.Printf("⚠️ Failed to purge messages of %s: %v", deleted.ChatID, err)
		}
	}
	observability.IncSwipe(models.ActionBlock, result.Outcome)
	log.Printf("🚫 %s blocked %s", userID, targetID)
	return result, nil
}

// Matches lists the chats of every current match of the user
func (s *SwipeService) Matches(ctx context.Context, userID string) ([]models.Chat, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, user.Matched.Len())
	for _, other := range user.Matched.Sorted() {
		ids = append(ids, models.PairKey(userID, other))
	}
	chats, err := s.Store.ListChats(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return chats, nil
}
