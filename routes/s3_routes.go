package routes

import (
	"aura_server/controllers"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// RegisterS3Routes sets up routes for chat image uploads under /api/media
func RegisterS3Routes(r *mux.Router, mediaService *services.MediaService) {
	controller := controllers.NewMediaController(mediaService)

	r.HandleFunc("/media/upload-url", controller.GeneratePresignedURL).Methods("POST")
	r.HandleFunc("/media/read-url", controller.GetPresignedReadURL).Methods("POST")
}
