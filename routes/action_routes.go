package routes

import (
	"aura_server/controllers"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// RegisterActionRoutes sets up swipe routes under /api/swipe
func RegisterActionRoutes(r *mux.Router, swipeService *services.SwipeService) {
	controller := controllers.NewActionController(swipeService)

	swipeRouter := r.PathPrefix("/swipe").Subrouter()
	swipeRouter.HandleFunc("/recycle", controller.HandleRecycle).Methods("POST")
	swipeRouter.HandleFunc("/{action:like|pass|block}", controller.HandleAction).Methods("POST")
}
