package models

import (
	"sort"
	"strings"
)

// PairKeySeparator joins the two user ids of a pair key. User ids may not
// contain it, which keeps the key unique per unordered pair.
const PairKeySeparator = "_"

// ValidUserID reports whether id can take part in a pair key
func ValidUserID(id string) bool {
	return id != "" && !strings.Contains(id, PairKeySeparator)
}

// Chat is the materialised match between two users. Its id is the canonical
// pair key, so there is at most one chat per unordered pair.
type Chat struct {
	ChatID        string   `dynamodbav:"chatId" json:"chatId"` // Partition Key: PairKey(a, b)
	Participants  []string `dynamodbav:"participants" json:"participants"`
	Source        string   `dynamodbav:"source" json:"source"` // "swipe" or "batch"
	UnreadBy      IDSet    `dynamodbav:"unreadBy" json:"unreadBy"`
	LastMessageAt int64    `dynamodbav:"lastMessageAt" json:"lastMessageAt"` // unix nanos, 0 when empty
	Version       int64    `dynamodbav:"version" json:"version"`
	CreatedAt     int64    `dynamodbav:"createdAt" json:"createdAt"`
}

// PairKey derives the chat id from two user ids, independent of order
func PairKey(a, b string) string {
	ids := []string{a, b}
	sort.Strings(ids)
	return ids[0] + PairKeySeparator + ids[1]
}

// NewChat builds an empty chat for the pair
func NewChat(a, b, source string, now int64) *Chat {
	ids := []string{a, b}
	sort.Strings(ids)
	return &Chat{
		ChatID:       ids[0] + PairKeySeparator + ids[1],
		Participants: []string{ids[0], ids[1]},
		Source:       source,
		UnreadBy:     IDSet{},
		CreatedAt:    now,
	}
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

// IsPair reports whether the chat belongs to exactly the users a and b
func (c *Chat) IsPair(a, b string) bool {
	return len(c.Participants) == 2 && a != b && c.HasParticipant(a) && c.HasParticipant(b)
}

// Other returns the participant that is not userID
func (c *Chat) Other(userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return ""
}

func (c *Chat) Clone() *Chat {
	cp := *c
	cp.Participants = append([]string(nil), c.Participants...)
	cp.UnreadBy = c.UnreadBy.Clone()
	return &cp
}

// ChatsTable is the DynamoDB table name for matches and their chats
const ChatsTable = "Chats"
