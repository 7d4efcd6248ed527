package routes

import (
	"aura_server/controllers"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat-related operations under /api/chat
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService) {
	controller := controllers.NewChatController(chatService)
	stream := controllers.NewStreamController(chatService)

	chatRouter := r.PathPrefix("/chat/{chatId}").Subrouter()
	chatRouter.HandleFunc("/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/messages", controller.HandleSendMessage).Methods("POST")
	chatRouter.HandleFunc("/read", controller.HandleMarkRead).Methods("POST")
	chatRouter.HandleFunc("/prompt", controller.HandlePrompt).Methods("GET")
	chatRouter.HandleFunc("/stream", stream.HandleStream).Methods("GET")
}
