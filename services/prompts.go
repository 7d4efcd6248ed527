package services

import (
	"fmt"
	"sort"

	"aura_server/utils"
)

// Game prompt categories
const (
	PromptTruth          = "truth"
	PromptWouldYouRather = "would-you-rather"
	PromptIcebreaker     = "icebreaker"
)

// PromptDeck hands out conversation-game prompts by category
type PromptDeck struct {
	prompts map[string][]string
}

// NewPromptDeck returns the built-in deck
func NewPromptDeck() *PromptDeck {
	return &PromptDeck{prompts: map[string][]string{
		PromptTruth: {
			"What is the most spontaneous thing you have done on campus?",
			"Which class did you secretly enjoy that everyone else hated?",
			"What is a habit you picked up from your hostel wing?",
			"What was your first impression of this place?",
			"Who was your first crush and what gave it away?",
		},
		PromptWouldYouRather: {
			"Would you rather pull an all-nighter before an exam or wake up at 5am for it?",
			"Would you rather have canteen chai forever or never have coffee again?",
			"Would you rather perform at the cultural fest or organise it?",
			"Would you rather explore the whole campus on foot or by cycle?",
			"Would you rather only text or only voice note for a week?",
		},
		PromptIcebreaker: {
			"What is your go-to order at the late-night food stall?",
			"Which fest event are you not missing this year?",
			"If you could teach one elective, what would it be?",
			"What song is on repeat for you right now?",
			"What is the best spot on campus to watch the sunset?",
		},
	}}
}

// Categories lists the known categories in a stable order
func (d *PromptDeck) Categories() []string {
	out := make([]string, 0, len(d.prompts))
	for category := range d.prompts {
		out = append(out, category)
	}
	sort.Strings(out)
	return out
}

// Draw picks a prompt for the chat. The same (category, chatID, seed) always
// yields the same prompt.
func (d *PromptDeck) Draw(category, chatID string, seed uint64) (string, error) {
	prompts, ok := d.prompts[category]
	if !ok || len(prompts) == 0 {
		return "", fmt.Errorf("unknown game category %q: %w", category, ErrInvalidPayload)
	}
	rng := utils.KeyedRand(seed, category, chatID)
	return prompts[rng.Intn(len(prompts))], nil
}

// Has reports whether category names a deck
func (d *PromptDeck) Has(category string) bool {
	_, ok := d.prompts[category]
	return ok
}
