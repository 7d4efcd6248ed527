package routes

import (
	"aura_server/controllers"
	"aura_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up the feed, match list and batch trigger
func RegisterMatchRoutes(r *mux.Router, feed *services.FeedService, swipe *services.SwipeService, batch *services.BatchMatchService) {
	controller := controllers.NewMatchController(feed, swipe, batch)

	r.HandleFunc("/feed", controller.GetFeed).Methods("GET")
	r.HandleFunc("/matches", controller.GetMatches).Methods("GET")
	r.HandleFunc("/match/run", controller.RunBatchMatch).Methods("POST")
}
