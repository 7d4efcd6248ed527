package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"aura_server/middleware"
	"aura_server/services"
)

// MediaController hands out presigned URLs for chat images
type MediaController struct {
	MediaService *services.MediaService
}

func NewMediaController(service *services.MediaService) *MediaController {
	return &MediaController{MediaService: service}
}

// GeneratePresignedURL generates a presigned URL for uploading a chat image.
// The returned key is what the client later sends as the image reference.
func (mc *MediaController) GeneratePresignedURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ChatID   string `json:"chatId"`
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		log.Printf("Error decoding request body: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if payload.ChatID == "" || payload.FileName == "" || payload.FileType == "" {
		http.Error(w, "Missing required fields", http.StatusBadRequest)
		return
	}

	url, key, err := mc.MediaService.UploadURL(r.Context(), payload.ChatID, middleware.UserID(r.Context()), payload.FileName, payload.FileType)
	if err != nil {
		log.Printf("Error generating pre-signed URL: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url, "imageRef": key})
}

// GetPresignedReadURL generates a presigned URL for reading a chat image
func (mc *MediaController) GetPresignedReadURL(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Key == "" {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	url, err := mc.MediaService.ReadURL(r.Context(), middleware.UserID(r.Context()), payload.Key)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"url": url})
}
