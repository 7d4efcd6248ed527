package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"aura_server/models"
)

// MemoryStore is an in-process Store with the same conditional semantics as
// the DynamoDB backend. It backs the tests and STORE_BACKEND=memory runs.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[string]*models.User
	chats    map[string]*models.Chat
	messages map[string][]models.Message
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]*models.User{},
		chats:    map[string]*models.Chat{},
		messages: map[string][]models.Message{},
		now:      time.Now,
	}
}

// WithClock replaces the wall clock used for timestamps
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[user.UserID]; exists {
		return ErrUserExists
	}
	u := user.Clone()
	u.EnsureSets()
	m.users[u.UserID] = u
	return nil
}

func (m *MemoryStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return u.Clone(), nil
}

func (m *MemoryStore) QueryUsers(ctx context.Context, q UserQuery) ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.users {
		if q.Matches(u) {
			out = append(out, *u.Clone())
		}
	}
	// map iteration order is random; callers shuffle with their own key
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (m *MemoryStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	return c.Clone(), nil
}

func (m *MemoryStore) ListChats(ctx context.Context, chatIDs []string) ([]models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Chat
	for _, id := range chatIDs {
		if c, ok := m.chats[id]; ok {
			out = append(out, *c.Clone())
		}
	}
	return out, nil
}

func (m *MemoryStore) Transact(ctx context.Context, txn *models.Txn) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := map[string]bool{}
	for _, w := range txn.Users {
		if seen[w.UserID] {
			return fmt.Errorf("transaction touches user %s twice", w.UserID)
		}
		seen[w.UserID] = true
		u, ok := m.users[w.UserID]
		if !ok || u.Version != w.ExpectedVersion {
			return ErrTxnConflict
		}
		if w.RequireStatus != "" && u.Status != w.RequireStatus {
			return ErrTxnConflict
		}
	}
	for _, c := range txn.Checks {
		if seen[c.UserID] {
			return fmt.Errorf("transaction touches user %s twice", c.UserID)
		}
		seen[c.UserID] = true
		u, ok := m.users[c.UserID]
		if !ok || u.Version != c.ExpectedVersion {
			return ErrTxnConflict
		}
	}
	if txn.Chat != nil && txn.Chat.Create != nil {
		if _, exists := m.chats[txn.Chat.Create.ChatID]; exists {
			return ErrTxnConflict
		}
	}
	if txn.Chat != nil && txn.Chat.DeleteID != "" {
		c, exists := m.chats[txn.Chat.DeleteID]
		if !exists || c.Version != txn.Chat.DeleteVersion {
			return ErrTxnConflict
		}
	}

	now := m.now().UnixNano()
	for _, w := range txn.Users {
		w.Apply(m.users[w.UserID], now)
	}
	if txn.Chat != nil {
		if txn.Chat.Create != nil {
			c := txn.Chat.Create.Clone()
			if c.UnreadBy == nil {
				c.UnreadBy = models.IDSet{}
			}
			m.chats[c.ChatID] = c
		}
		if txn.Chat.DeleteID != "" {
			delete(m.chats, txn.Chat.DeleteID)
		}
	}
	return nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, chatID string, msg *models.Message) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	stored := *msg
	stored.ChatID = chatID
	stored.Timestamp = nextTimestamp(m.now().UnixNano(), c.LastMessageAt)
	m.messages[chatID] = append(m.messages[chatID], stored)

	c.LastMessageAt = stored.Timestamp
	c.UnreadBy.Add(c.Other(stored.SenderID))
	c.Version++
	return &stored, nil
}

func (m *MemoryStore) ListMessages(ctx context.Context, chatID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[chatID]; !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	out := make([]models.Message, len(m.messages[chatID]))
	copy(out, m.messages[chatID])
	return out, nil
}

func (m *MemoryStore) MarkRead(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, ErrNotFound)
	}
	if c.UnreadBy.Has(userID) {
		c.UnreadBy.Remove(userID)
		c.Version++
	}
	return c.Clone(), nil
}

func (m *MemoryStore) DeleteMessages(ctx context.Context, chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.messages, chatID)
	return nil
}
