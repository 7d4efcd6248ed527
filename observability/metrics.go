package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	swipesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_swipes_total",
			Help: "Swipe operations by action and outcome.",
		},
		[]string{"action", "outcome"},
	)
	matchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_matches_total",
			Help: "Matches created, by source (swipe or batch).",
		},
		[]string{"source"},
	)
	txnConflictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_txn_conflicts_total",
			Help: "Transactions that lost a race and were retried.",
		},
		[]string{"operation"},
	)
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aura_chat_messages_total",
			Help: "Chat messages appended, by payload kind.",
		},
		[]string{"kind"},
	)
	activeSubscriptions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "aura_chat_active_subscriptions",
			Help: "Live chat subscriptions currently attached.",
		},
	)
)

func init() {
	prometheus.MustRegister(swipesTotal, matchesTotal, txnConflictsTotal, messagesTotal, activeSubscriptions)
}

// IncSwipe counts a swipe action with its outcome
func IncSwipe(action, outcome string) {
	swipesTotal.WithLabelValues(action, outcome).Inc()
}

// IncMatch counts a committed match
func IncMatch(source string) {
	matchesTotal.WithLabelValues(source).Inc()
}

// IncConflict counts a retried transaction
func IncConflict(operation string) {
	txnConflictsTotal.WithLabelValues(operation).Inc()
}

// IncMessage counts an appended message
func IncMessage(kind string) {
	messagesTotal.WithLabelValues(kind).Inc()
}

// SubscriptionOpened and SubscriptionClosed track live listeners
func SubscriptionOpened() { activeSubscriptions.Inc() }

func SubscriptionClosed() { activeSubscriptions.Dec() }
