package models

// Message is one immutable entry in a chat log
type Message struct {
	ChatID       string `dynamodbav:"chatId" json:"chatId"`       // Partition Key
	Timestamp    int64  `dynamodbav:"timestamp" json:"timestamp"` // Sort Key: unix nanos, strictly increasing per chat
	MessageID    string `dynamodbav:"messageId" json:"messageId"`
	SenderID     string `dynamodbav:"senderId" json:"senderId"`
	Kind         string `dynamodbav:"kind" json:"kind"` // text, image, game
	Text         string `dynamodbav:"text,omitempty" json:"text,omitempty"`
	ImageRef     string `dynamodbav:"imageRef,omitempty" json:"imageRef,omitempty"`
	GameCategory string `dynamodbav:"gameCategory,omitempty" json:"gameCategory,omitempty"`
	GamePrompt   string `dynamodbav:"gamePrompt,omitempty" json:"gamePrompt,omitempty"`
}

// Payload is the caller supplied body of a message. Exactly one variant is
// meaningful, selected by Kind.
type Payload struct {
	Kind         string `json:"kind"`
	Text         string `json:"text,omitempty"`
	ImageRef     string `json:"imageRef,omitempty"`
	GameCategory string `json:"gameCategory,omitempty"`
	GamePrompt   string `json:"gamePrompt,omitempty"`
}

// TextPayload, ImagePayload and GamePayload build the three variants
func TextPayload(text string) Payload { return Payload{Kind: MessageKindText, Text: text} }

func ImagePayload(ref string) Payload { return Payload{Kind: MessageKindImage, ImageRef: ref} }

func GamePayload(category, prompt string) Payload {
	return Payload{Kind: MessageKindGame, GameCategory: category, GamePrompt: prompt}
}

// MessagesTable is the DynamoDB table name for chat messages
const MessagesTable = "Messages"
