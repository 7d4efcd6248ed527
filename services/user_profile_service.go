package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"aura_server/models"
)

// UserProfileService creates and reads profile records
type UserProfileService struct {
	Store Store
	Retry RetryPolicy
}

// CreateUser default-constructs the record and stores it if the id is free
func (s *UserProfileService) CreateUser(ctx context.Context, in models.UserProfileInput) (*models.User, error) {
	in.UserID = strings.TrimSpace(in.UserID)
	if in.UserID == "" {
		return nil, fmt.Errorf("userId is required: %w", ErrInvalidPayload)
	}
	if !models.ValidUserID(in.UserID) {
		return nil, fmt.Errorf("userId may not contain %q: %w", models.PairKeySeparator, ErrInvalidPayload)
	}
	switch in.Status {
	case "", models.StatusBrowsing, models.StatusAwaiting:
	default:
		return nil, fmt.Errorf("invalid initial status %q: %w", in.Status, ErrInvalidPayload)
	}
	switch in.Mode {
	case "", models.ModeGeneral, models.ModeMoodIndigo:
	default:
		return nil, fmt.Errorf("invalid mode %q: %w", in.Mode, ErrInvalidPayload)
	}

	user := models.NewUser(in, time.Now())
	if err := s.Store.CreateUser(ctx, user); err != nil {
		log.Printf("❌ Failed to create user %s: %v", user.UserID, err)
		return nil, err
	}
	log.Printf("✅ Created user %s on %s (%s)", user.UserID, user.Campus, user.Mode)
	return user, nil
}

func (s *UserProfileService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return s.Store.GetUser(ctx, userID)
}

// SetStatus moves a user between browsing and awaiting. Matched is only
// ever set by the batch sweep.
func (s *UserProfileService) SetStatus(ctx context.Context, userID, status string) (*models.User, error) {
	if status != models.StatusBrowsing && status != models.StatusAwaiting {
		return nil, fmt.Errorf("status must be %s or %s: %w", models.StatusBrowsing, models.StatusAwaiting, ErrInvalidPayload)
	}
	var updated *models.User
	err := s.Retry.Run(ctx, "status", func() error {
		user, err := s.Store.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		if user.Status == status {
			updated = user
			return nil
		}
		w := models.NewUserWrite(user).SetStatus(status)
		if err := s.Store.Transact(ctx, &models.Txn{Users: []*models.UserWrite{w}}); err != nil {
			return err
		}
		w.Apply(user, time.Now().UnixNano())
		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
