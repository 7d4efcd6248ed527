package routes

import (
	"aura_server/controllers"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// RegisterUserProfileRoutes sets up routes for user profile operations under /api/users
func RegisterUserProfileRoutes(r *mux.Router, userProfileService *services.UserProfileService) {
	controller := controllers.NewUserProfileController(userProfileService)

	userRouter := r.PathPrefix("/users").Subrouter()
	userRouter.HandleFunc("", controller.CreateUserProfile).Methods("POST")
	userRouter.HandleFunc("/me/status", controller.UpdateStatus).Methods("POST")
	userRouter.HandleFunc("/{userId}", controller.GetUserProfile).Methods("GET")
}
