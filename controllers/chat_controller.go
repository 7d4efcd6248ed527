package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"aura_server/middleware"
	"aura_server/models"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// ChatController struct
type ChatController struct {
	ChatService *services.ChatService
}

// NewChatController initializes the chat controller
func NewChatController(service *services.ChatService) *ChatController {
	return &ChatController{ChatService: service}
}

// HandleGetMessages returns the whole chat log, oldest first
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	messages, err := c.ChatService.History(r.Context(), chatID, middleware.UserID(r.Context()))
	if err != nil {
		log.Printf("❌ Error fetching messages for %s: %v", chatID, err)
		writeError(w, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

// HandleSendMessage appends a text, image or game message
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	var payload models.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	msg, err := c.ChatService.Send(r.Context(), chatID, middleware.UserID(r.Context()), payload)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// HandleMarkRead clears the caller from the chat's unread set
func (c *ChatController) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	chat, err := c.ChatService.MarkRead(r.Context(), chatID, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chat)
}

// HandlePrompt draws a game prompt the caller can then send
func (c *ChatController) HandlePrompt(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chatId"]
	category := r.URL.Query().Get("category")
	seed, ok := parseSeed(r, uint64(time.Now().UnixNano()))
	if !ok {
		http.Error(w, "seed must be an unsigned integer", http.StatusBadRequest)
		return
	}
	payload, err := c.ChatService.Prompt(r.Context(), chatID, middleware.UserID(r.Context()), category, seed)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}
