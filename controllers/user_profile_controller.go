package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"aura_server/middleware"
	"aura_server/models"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// UserProfileController handles requests related to user profiles
type UserProfileController struct {
	UserProfileService *services.UserProfileService
}

// NewUserProfileController creates a new instance of UserProfileController
func NewUserProfileController(userProfileService *services.UserProfileService) *UserProfileController {
	return &UserProfileController{UserProfileService: userProfileService}
}

// CreateUserProfile registers the caller. The id always comes from the
// caller identity, never from the body.
func (c *UserProfileController) CreateUserProfile(w http.ResponseWriter, r *http.Request) {
	var input models.UserProfileInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Printf("Failed to decode request body: %v", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	input.UserID = middleware.UserID(r.Context())

	user, err := c.UserProfileService.CreateUser(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Profile added successfully",
		"profile": user,
	})
}

// GetUserProfile returns the full record to its owner and the public
// candidate view to everyone else.
func (c *UserProfileController) GetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "me" {
		userID = middleware.UserID(r.Context())
	}
	user, err := c.UserProfileService.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	if userID != middleware.UserID(r.Context()) {
		writeJSON(w, http.StatusOK, user.Candidate())
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateStatus lets the caller join or leave the batch pool
func (c *UserProfileController) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	user, err := c.UserProfileService.SetStatus(r.Context(), middleware.UserID(r.Context()), request.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
