package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"aura_server/models"
	"aura_server/observability"

	"github.com/google/uuid"
)

// ChatService owns the per-match message log and its live subscribers
type ChatService struct {
	Store   Store
	Hub     *Hub
	Prompts *PromptDeck
}

func NewChatService(store Store, hub *Hub) *ChatService {
	if hub == nil {
		hub = NewHub()
	}
	return &ChatService{Store: store, Hub: hub, Prompts: NewPromptDeck()}
}

// chatLock serialises append+publish against history+register for one chat,
// which is what keeps a subscriber's view free of gaps and duplicates.
func (s *ChatService) chatLock(chatID string) *sync.Mutex {
	return s.Hub.chatLock(chatID)
}

// participantChat loads the chat and checks userID belongs to it
func (s *ChatService) participantChat(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	chat, err := s.Store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(userID) {
		return nil, ErrUnauthorized
	}
	return chat, nil
}

// ValidatePayload checks a payload against its kind and returns the
// normalised form that gets stored.
func ValidatePayload(p models.Payload) (models.Payload, error) {
	switch p.Kind {
	case models.MessageKindText:
		text := strings.TrimSpace(p.Text)
		if text == "" {
			return p, fmt.Errorf("empty text: %w", ErrInvalidPayload)
		}
		return models.TextPayload(text), nil
	case models.MessageKindImage:
		ref := strings.TrimSpace(p.ImageRef)
		if ref == "" || len(ref) > models.MaxImageRefLength {
			return p, fmt.Errorf("image reference must be 1-%d bytes: %w", models.MaxImageRefLength, ErrInvalidPayload)
		}
		return models.ImagePayload(ref), nil
	case models.MessageKindGame:
		category := strings.TrimSpace(p.GameCategory)
		prompt := strings.TrimSpace(p.GamePrompt)
		if category == "" || prompt == "" {
			return p, fmt.Errorf("game prompt needs a category and text: %w", ErrInvalidPayload)
		}
		return models.GamePayload(category, prompt), nil
	default:
		return p, fmt.Errorf("unknown message kind %q: %w", p.Kind, ErrInvalidPayload)
	}
}

// Send appends a message from senderID and pushes it to live subscribers
func (s *ChatService) Send(ctx context.Context, chatID, senderID string, payload models.Payload) (*models.Message, error) {
	if _, err := s.participantChat(ctx, chatID, senderID); err != nil {
		return nil, err
	}
	payload, err := ValidatePayload(payload)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		MessageID:    uuid.NewString(),
		SenderID:     senderID,
		Kind:         payload.Kind,
		Text:         payload.Text,
		ImageRef:     payload.ImageRef,
		GameCategory: payload.GameCategory,
		GamePrompt:   payload.GamePrompt,
	}

	lock := s.chatLock(chatID)
	lock.Lock()
	stored, err := s.Store.AppendMessage(ctx, chatID, msg)
	if err == nil {
		s.Hub.Publish(*stored)
	}
	lock.Unlock()
	if err != nil {
		log.Printf("❌ Failed to append message to %s: %v", chatID, err)
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	observability.IncMessage(stored.Kind)
	log.Printf("📩 %s message in %s from %s", stored.Kind, chatID, senderID)
	return stored, nil
}

// MarkRead clears userID from the chat's unread set. Repeating it is harmless.
func (s *ChatService) MarkRead(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	chat, err := s.Store.MarkRead(ctx, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark chat read: %w", err)
	}
	return chat, nil
}

// History returns the full log, oldest first
func (s *ChatService) History(ctx context.Context, chatID, userID string) ([]models.Message, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}
	return s.Store.ListMessages(ctx, chatID)
}

// Subscribe replays the history and then streams every later message in
// append order. The subscription ends when ctx is done, on Cancel, or when
// the chat is deleted.
func (s *ChatService) Subscribe(ctx context.Context, chatID, userID string) (*Subscription, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return nil, err
	}

	lock := s.chatLock(chatID)
	lock.Lock()
	history, err := s.Store.ListMessages(ctx, chatID)
	if err != nil {
		lock.Unlock()
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	sub := s.Hub.attach(chatID, userID, history)
	lock.Unlock()

	log.Printf("👥 %s subscribed to %s (%d in history)", userID, chatID, len(history))
	go func() {
		select {
		case <-ctx.Done():
			sub.Cancel()
		case <-sub.Done():
		}
	}()
	return sub, nil
}

// Prompt draws a conversation-game prompt for the chat
func (s *ChatService) Prompt(ctx context.Context, chatID, userID, category string, seed uint64) (models.Payload, error) {
	if _, err := s.participantChat(ctx, chatID, userID); err != nil {
		return models.Payload{}, err
	}
	text, err := s.Prompts.Draw(category, chatID, seed)
	if err != nil {
		return models.Payload{}, err
	}
	return models.GamePayload(category, text), nil
}
