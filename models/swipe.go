package models

// Swipe actions accepted by the action endpoint
const (
	ActionLike    = "like"
	ActionPass    = "pass"
	ActionBlock   = "block"
	ActionRecycle = "recycle"
)

// Swipe outcomes
const (
	OutcomePending  = "pending" // one-sided like
	OutcomeMatched  = "matched"
	OutcomePassed   = "passed"
	OutcomeBlocked  = "blocked"
	OutcomeRecycled = "recycled"
)

// SwipeResult reports what a swipe changed
type SwipeResult struct {
	Action   string `json:"action"`
	Outcome  string `json:"outcome"`
	TargetID string `json:"targetId,omitempty"`
	ChatID   string `json:"chatId,omitempty"`
	Recycled int    `json:"recycled,omitempty"`
}
