package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"aura_server/models"
	"aura_server/observability"
	"aura_server/utils"

	"github.com/go-co-op/gocron/v2"
)

// Compatibility score weights
const (
	ScoreSameAvailability = 50
	ScoreSameInterest     = 30
)

// BatchPair is one pairing committed by a sweep
type BatchPair struct {
	ChatID string   `json:"chatId"`
	Users  []string `json:"users"`
	Score  int      `json:"score"`
}

// BatchFailure is a pairing that could not be committed
type BatchFailure struct {
	Users []string `json:"users"`
	Error string   `json:"error"`
}

// BatchReport summarises one sweep
type BatchReport struct {
	Seed     uint64         `json:"seed"`
	Awaiting int            `json:"awaiting"`
	Pairs    []BatchPair    `json:"pairs"`
	Failures []BatchFailure `json:"failures,omitempty"`
	Leftover int            `json:"leftover"` // still awaiting after the sweep
}

// BatchMatchService pairs users waiting for an event-night assignment
type BatchMatchService struct {
	Store Store
	now   func() time.Time
}

func NewBatchMatchService(store Store) *BatchMatchService {
	return &BatchMatchService{Store: store, now: time.Now}
}

func (s *BatchMatchService) clock() int64 {
	if s.now == nil {
		return time.Now().UnixNano()
	}
	return s.now().UnixNano()
}

// Score is the additive compatibility of two users
func Score(a, b *models.User) int {
	score := 0
	if a.EventAvailability == b.EventAvailability {
		score += ScoreSameAvailability
	}
	if a.PrimaryInterest == b.PrimaryInterest {
		score += ScoreSameInterest
	}
	return score
}

// pairable rules out pairs that already matched or blocked each other
func pairable(a, b *models.User) bool {
	return !a.Blocked.Has(b.UserID) && !b.Blocked.Has(a.UserID) &&
		!a.Matched.Has(b.UserID) && !b.Matched.Has(a.UserID)
}

// Run makes one greedy pass over the awaiting pool. The pool is shuffled
// with the seed; the last user is taken and paired with the highest scoring
// remaining user, the earliest one winning ties. Each pair commits on its own,
// so a failed pair does not undo the rest of the sweep.
func (s *BatchMatchService) Run(ctx context.Context, seed uint64) (*BatchReport, error) {
	pool, err := s.Store.QueryUsers(ctx, UserQuery{Status: models.StatusAwaiting})
	if err != nil {
		return nil, fmt.Errorf("failed to load awaiting users: %w", err)
	}
	report := &BatchReport{Seed: seed, Awaiting: len(pool), Pairs: []BatchPair{}}
	log.Printf("🎲 Batch match: %d users awaiting (seed %d)", len(pool), seed)

	users := make([]*models.User, len(pool))
	for i := range pool {
		users[i] = &pool[i]
	}
	utils.KeyedShuffle(len(users), func(i, j int) { users[i], users[j] = users[j], users[i] }, seed, "batch")

	for len(users) > 1 {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		current := users[len(users)-1]
		users = users[:len(users)-1]

		best, bestScore := -1, -1
		for i, candidate := range users {
			if !pairable(current, candidate) {
				continue
			}
			if score := Score(current, candidate); score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			report.Leftover++
			continue
		}
		partner := users[best]
		users = append(users[:best], users[best+1:]...)

		chatID, err := s.commitPair(ctx, current, partner)
		if err != nil {
			log.Printf("⚠️ Batch pair %s/%s not committed: %v", current.UserID, partner.UserID, err)
			report.Failures = append(report.Failures, BatchFailure{
				Users: []string{current.UserID, partner.UserID},
				Error: err.Error(),
			})
			report.Leftover += 2
			continue
		}
		observability.IncMatch(models.MatchSourceBatch)
		report.Pairs = append(report.Pairs, BatchPair{
			ChatID: chatID,
			Users:  []string{current.UserID, partner.UserID},
			Score:  bestScore,
		})
	}
	report.Leftover += len(users)

	log.Printf("✅ Batch match complete: %d pairs, %d failed, %d left waiting", len(report.Pairs), len(report.Failures), report.Leftover)
	return report, nil
}

// commitPair writes both status changes, both matched sets and the chat in
// one transaction. It only applies if both users are unchanged since the
// sweep read them and are still awaiting.
func (s *BatchMatchService) commitPair(ctx context.Context, a, b *models.User) (string, error) {
	chat := models.NewChat(a.UserID, b.UserID, models.MatchSourceBatch, s.clock())
	txn := &models.Txn{
		Users: []*models.UserWrite{
			batchWrite(a, b.UserID),
			batchWrite(b, a.UserID),
		},
		Chat: &models.ChatWrite{Create: chat},
	}
	if err := s.Store.Transact(ctx, txn); err != nil {
		if errors.Is(err, ErrTxnConflict) {
			return "", fmt.Errorf("a user changed during the sweep: %w", err)
		}
		return "", err
	}
	return chat.ChatID, nil
}

func batchWrite(u *models.User, partner string) *models.UserWrite {
	w := models.NewUserWrite(u).
		AddTo(models.SetMatched, partner).
		RemoveFrom(models.SetLiked, partner).
		RemoveFrom(models.SetPassed, partner).
		SetStatus(models.StatusMatched)
	w.RequireStatus = models.StatusAwaiting
	return w
}

// StartBatchScheduler runs a sweep every interval until the returned
// scheduler is shut down. Each run uses the current time as its seed.
func (s *BatchMatchService) StartBatchScheduler(interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := s.Run(ctx, uint64(time.Now().UnixNano())); err != nil {
				log.Printf("[Scheduler] Batch match failed: %v", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule batch match: %w", err)
	}
	sched.Start()
	log.Printf("⏰ Batch match scheduled every %s", interval)
	return sched, nil
}
