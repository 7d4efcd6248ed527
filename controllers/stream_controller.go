package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"aura_server/middleware"
	"aura_server/services"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamController pushes a chat's history and live messages over a websocket
type StreamController struct {
	ChatService *services.ChatService
}

func NewStreamController(service *services.ChatService) *StreamController {
	return &StreamController{ChatService: service}
}

// HandleStream subscribes before upgrading so authorisation errors still
// come back as plain HTTP responses.
func (sc *StreamController) HandleStream(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	userID := middleware.UserID(r.Context())

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := sc.ChatService.Subscribe(ctx, chatID, userID)
	if err != nil {
		cancel()
		writeError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		log.Printf("❌ Websocket upgrade failed for %s: %v", chatID, err)
		return
	}
	log.Printf("✅ Stream opened: %s on %s", userID, chatID)

	// reader: only watches for the client going away
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("⚠️ Stream read error on %s: %v", chatID, err)
				}
				return
			}
		}
	}()

	defer conn.Close()
	for msg := range sub.C {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			cancel()
			break
		}
	}
	// drain so the pump goroutine can exit
	for range sub.C {
	}

	reason := "client closed"
	code := websocket.CloseNormalClosure
	if err := sub.Err(); err != nil {
		reason = err.Error()
		code = websocket.ClosePolicyViolation
	}
	conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
	log.Printf("❌ Stream closed: %s on %s (%s)", userID, chatID, reason)
}
