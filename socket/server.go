package socket

import (
	"context"
	"log"
	"strings"
	"sync"

	"aura_server/middleware"
	"aura_server/models"
	"aura_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// SendRequest is the body of a "send" event
type SendRequest struct {
	ChatID string `json:"chatId"`
	models.Payload
}

// Bridge exposes chat subscriptions over socket.io. A client emits "join"
// with a chat id and receives the history and live messages as "message"
// events; "closed" tells it the subscription ended.
type Bridge struct {
	Chats *services.ChatService

	mu   sync.Mutex
	subs map[string]map[string]context.CancelFunc // conn id -> chat id -> cancel
}

func NewBridge(chats *services.ChatService) *Bridge {
	return &Bridge{Chats: chats, subs: map[string]map[string]context.CancelFunc{}}
}

// connUser is empty when the header is missing or malformed.
func connUser(c socketio.Conn) string {
	id := strings.TrimSpace(c.RemoteHeader().Get(middleware.UserIDHeader))
	if !models.ValidUserID(id) {
		return ""
	}
	return id
}

// Join subscribes the connection to a chat. Joining twice is a no-op.
func (b *Bridge) Join(c socketio.Conn, chatID string) string {
	userID := connUser(c)
	if userID == "" || chatID == "" {
		log.Println("❌ Invalid join request")
		return "invalid join"
	}

	b.mu.Lock()
	if _, ok := b.subs[c.ID()][chatID]; ok {
		b.mu.Unlock()
		return "ok"
	}
	b.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := b.Chats.Subscribe(ctx, chatID, userID)
	if err != nil {
		cancel()
		log.Printf("❌ %s could not join %s: %v", userID, chatID, err)
		return err.Error()
	}

	b.mu.Lock()
	if b.subs[c.ID()] == nil {
		b.subs[c.ID()] = map[string]context.CancelFunc{}
	}
	b.subs[c.ID()][chatID] = cancel
	b.mu.Unlock()

	log.Printf("👥 User %s joined chat %s over socket %s", userID, chatID, c.ID())
	go func() {
		for msg := range sub.C {
			c.Emit("message", msg)
		}
		reason := ""
		if err := sub.Err(); err != nil {
			reason = err.Error()
		}
		c.Emit("closed", map[string]string{"chatId": chatID, "reason": reason})
		b.forget(c.ID(), chatID)
	}()
	return "ok"
}

// Leave cancels one chat subscription of the connection
func (b *Bridge) Leave(c socketio.Conn, chatID string) {
	if cancel := b.forget(c.ID(), chatID); cancel != nil {
		cancel()
	}
}

// Send appends a message; the sender sees it through its own subscription
func (b *Bridge) Send(c socketio.Conn, req SendRequest) string {
	userID := connUser(c)
	if _, err := b.Chats.Send(context.Background(), req.ChatID, userID, req.Payload); err != nil {
		return err.Error()
	}
	return "ok"
}

// Disconnect cancels everything the connection subscribed to
func (b *Bridge) Disconnect(c socketio.Conn) {
	b.mu.Lock()
	subs := b.subs[c.ID()]
	delete(b.subs, c.ID())
	b.mu.Unlock()
	for _, cancel := range subs {
		cancel()
	}
}

func (b *Bridge) forget(connID, chatID string) context.CancelFunc {
	b.mu.Lock()
	defer b.mu.Unlock()
	cancel := b.subs[connID][chatID]
	delete(b.subs[connID], chatID)
	if len(b.subs[connID]) == 0 {
		delete(b.subs, connID)
	}
	return cancel
}

// NewSocketServer initializes and returns a new Socket.IO server
func NewSocketServer(bridge *Bridge) *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	server.OnEvent("/", "join", func(c socketio.Conn, chatID string) string {
		return bridge.Join(c, chatID)
	})

	server.OnEvent("/", "leave", func(c socketio.Conn, chatID string) {
		bridge.Leave(c, chatID)
	})

	server.OnEvent("/", "send", func(c socketio.Conn, req SendRequest) string {
		return bridge.Send(c, req)
	})

	server.OnError("/", func(c socketio.Conn, err error) {
		log.Println("❌ Socket error:", err)
	})

	server.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
		bridge.Disconnect(c)
	})

	return server
}
