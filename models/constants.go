package models

// Feed modes
const (
	ModeGeneral    = "General"
	ModeMoodIndigo = "MoodIndigo"
)

// LookingForEveryone disables the gender filter on the feed
const LookingForEveryone = "Everyone"

// DefaultCampus is assigned when a profile is created without one
const DefaultCampus = "IIT Bombay"

// User statuses
const (
	StatusBrowsing = "browsing"
	StatusAwaiting = "awaiting" // waiting for a batch assignment
	StatusMatched  = "matched"
)

// Match sources
const (
	MatchSourceSwipe = "swipe"
	MatchSourceBatch = "batch"
)

// Message kinds
const (
	MessageKindText  = "text"
	MessageKindImage = "image"
	MessageKindGame  = "game"
)

// MaxImageRefLength bounds the opaque media reference stored on a message
const MaxImageRefLength = 1024

// UserSchemaVersion is stamped on every user record at creation
const UserSchemaVersion = 2
