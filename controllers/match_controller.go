package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"aura_server/middleware"
	"aura_server/models"
	"aura_server/services"
)

// MatchController serves the feed, the match list and the batch trigger
type MatchController struct {
	FeedService  *services.FeedService
	SwipeService *services.SwipeService
	BatchService *services.BatchMatchService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(feed *services.FeedService, swipe *services.SwipeService, batch *services.BatchMatchService) *MatchController {
	return &MatchController{FeedService: feed, SwipeService: swipe, BatchService: batch}
}

// GetFeed builds the caller's feed. The client keeps the seed to page
// through the same order and picks a new one to refresh.
func (mc *MatchController) GetFeed(w http.ResponseWriter, r *http.Request) {
	seed, ok := parseSeed(r, uint64(time.Now().UnixNano()))
	if !ok {
		http.Error(w, "seed must be an unsigned integer", http.StatusBadRequest)
		return
	}
	offset := queryInt(r, "offset", 0)
	limit := queryInt(r, "limit", 20)
	if limit == 0 {
		limit = 20
	}

	feed, err := mc.FeedService.Build(r.Context(), middleware.UserID(r.Context()), seed)
	if err != nil {
		writeError(w, err)
		return
	}

	candidates := feed.Candidates()
	total := len(candidates)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"seed":       strconv.FormatUint(seed, 10),
		"total":      total,
		"offset":     offset,
		"candidates": append([]models.Candidate{}, candidates[offset:end]...),
	})
}

// GetMatches lists the caller's chats
func (mc *MatchController) GetMatches(w http.ResponseWriter, r *http.Request) {
	chats, err := mc.SwipeService.Matches(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	if chats == nil {
		chats = []models.Chat{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": chats})
}

// RunBatchMatch triggers one sweep over the awaiting pool
func (mc *MatchController) RunBatchMatch(w http.ResponseWriter, r *http.Request) {
	seed, ok := parseSeed(r, uint64(time.Now().UnixNano()))
	if !ok {
		http.Error(w, "seed must be an unsigned integer", http.StatusBadRequest)
		return
	}
	report, err := mc.BatchService.Run(r.Context(), seed)
	if err != nil {
		log.Printf("❌ Batch match failed: %v", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Matching Run Complete",
		"report":  report,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
