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

// ActionController handles swipe actions
type ActionController struct {
	SwipeService *services.SwipeService
}

// NewActionController creates a new ActionController instance
func NewActionController(swipeService *services.SwipeService) *ActionController {
	return &ActionController{SwipeService: swipeService}
}

// HandleAction processes like, pass and block. The action is the last path
// segment and the target comes in the body.
func (ac *ActionController) HandleAction(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	var request struct {
		TargetID string `json:"targetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		log.Println("Invalid request payload:", err)
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if request.TargetID == "" {
		http.Error(w, "targetId is required", http.StatusBadRequest)
		return
	}

	result, err := ac.SwipeService.ProcessAction(r.Context(), middleware.UserID(r.Context()), action, request.TargetID)
	ac.respond(w, result, err)
}

// HandleRecycle brings passed profiles back into the feed
func (ac *ActionController) HandleRecycle(w http.ResponseWriter, r *http.Request) {
	result, err := ac.SwipeService.ProcessAction(r.Context(), middleware.UserID(r.Context()), models.ActionRecycle, "")
	ac.respond(w, result, err)
}

func (ac *ActionController) respond(w http.ResponseWriter, result *models.SwipeResult, err error) {
	if err != nil && services.IsNoop(err) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"result":  result,
			"noop":    true,
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		log.Println("Error processing action:", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}
