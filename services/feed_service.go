package services

import (
	"context"
	"fmt"
	"log"

	"aura_server/models"
	"aura_server/utils"
)

// FeedService builds the candidate feed for a user
type FeedService struct {
	Store Store
}

// Feed is a finite candidate sequence. Refreshing means building a new one.
type Feed struct {
	UserID     string
	Seed       uint64
	candidates []models.Candidate
	pos        int
}

// Next returns the next candidate, or false once the feed is exhausted
func (f *Feed) Next() (models.Candidate, bool) {
	if f.pos >= len(f.candidates) {
		return models.Candidate{}, false
	}
	c := f.candidates[f.pos]
	f.pos++
	return c, true
}

// Remaining is the number of candidates not yet returned by Next
func (f *Feed) Remaining() int { return len(f.candidates) - f.pos }

// Candidates returns the full ordered sequence regardless of position
func (f *Feed) Candidates() []models.Candidate {
	out := make([]models.Candidate, len(f.candidates))
	copy(out, f.candidates)
	return out
}

// Build selects candidates on the same campus and mode, applies the gender
// preference unless it is "Everyone", and drops the requester, everyone in
// its history sets and everyone who has blocked it. The order is a shuffle
// keyed by (userID, seed).
func (s *FeedService) Build(ctx context.Context, userID string, seed uint64) (*Feed, error) {
	user, err := s.Store.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	query := UserQuery{Campus: user.Campus, Mode: user.Mode}
	if user.LookingFor != models.LookingForEveryone {
		query.Gender = user.LookingFor
	}
	pool, err := s.Store.QueryUsers(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}

	feed := &Feed{UserID: userID, Seed: seed}
	for i := range pool {
		candidate := &pool[i]
		if candidate.UserID == userID || user.Seen(candidate.UserID) {
			continue
		}
		if candidate.Blocked.Has(userID) {
			continue
		}
		feed.candidates = append(feed.candidates, candidate.Candidate())
	}

	utils.KeyedShuffle(len(feed.candidates), func(i, j int) {
		feed.candidates[i], feed.candidates[j] = feed.candidates[j], feed.candidates[i]
	}, seed, userID)

	log.Printf("🔍 Feed for %s (seed %d): %d of %d profiles eligible", userID, seed, len(feed.candidates), len(pool))
	return feed, nil
}
