package services

import (
	"context"

	"aura_server/models"
)

// UserQuery selects feed or batch candidates. Empty fields do not filter.
type UserQuery struct {
	Campus string
	Mode   string
	Gender string
	Status string
}

// Matches reports whether u satisfies every non-empty field of q
func (q UserQuery) Matches(u *models.User) bool {
	return (q.Campus == "" || u.Campus == q.Campus) &&
		(q.Mode == "" || u.Mode == q.Mode) &&
		(q.Gender == "" || u.Gender == q.Gender) &&
		(q.Status == "" || u.Status == q.Status)
}

// Store is the persistence contract of the matching core: profile records,
// chat records and message logs. Transact must be all-or-nothing and report
// lost races as ErrTxnConflict.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	QueryUsers(ctx context.Context, q UserQuery) ([]models.User, error)

	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	ListChats(ctx context.Context, chatIDs []string) ([]models.Chat, error)
	Transact(ctx context.Context, txn *models.Txn) error

	// AppendMessage assigns the message timestamp, strictly greater than any
	// earlier one in the chat, and adds the recipient to unreadBy.
	AppendMessage(ctx context.Context, chatID string, msg *models.Message) (*models.Message, error)
	ListMessages(ctx context.Context, chatID string) ([]models.Message, error)
	MarkRead(ctx context.Context, chatID, userID string) (*models.Chat, error)
	DeleteMessages(ctx context.Context, chatID string) error
}

// nextTimestamp keeps per-chat timestamps strictly increasing even when the
// wall clock stalls or steps back.
func nextTimestamp(now, last int64) int64 {
	if now <= last {
		return last + 1
	}
	return now
}
