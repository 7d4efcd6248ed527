package models

import (
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// User is the profile record plus the four relationship sets used by the
// feed and the swipe state machine.
type User struct {
	UserID            string `dynamodbav:"userId" json:"userId"` // Partition Key
	Name              string `dynamodbav:"name,omitempty" json:"name,omitempty"`
	Campus            string `dynamodbav:"campus" json:"campus"` // slug, e.g. "iit-bombay"
	Gender            string `dynamodbav:"gender,omitempty" json:"gender,omitempty"`
	LookingFor        string `dynamodbav:"lookingFor" json:"lookingFor"`
	Mode              string `dynamodbav:"mode" json:"mode"`
	Status            string `dynamodbav:"status" json:"status"`
	EventAvailability string `dynamodbav:"eventAvailability,omitempty" json:"eventAvailability,omitempty"` // batch scoring
	PrimaryInterest   string `dynamodbav:"primaryInterest,omitempty" json:"primaryInterest,omitempty"`     // batch scoring

	Liked   IDSet `dynamodbav:"liked" json:"liked"`
	Passed  IDSet `dynamodbav:"passed" json:"passed"`
	Matched IDSet `dynamodbav:"matched" json:"matched"`
	Blocked IDSet `dynamodbav:"blocked" json:"blocked"`

	SchemaVersion int   `dynamodbav:"schemaVersion" json:"schemaVersion"`
	Version       int64 `dynamodbav:"version" json:"version"` // bumped by every transactional write
	CreatedAt     int64 `dynamodbav:"createdAt" json:"createdAt"`
	UpdatedAt     int64 `dynamodbav:"updatedAt" json:"updatedAt"`
}

// UserProfileInput is what signup hands over; everything else is defaulted
type UserProfileInput struct {
	UserID            string `json:"userId"`
	Name              string `json:"name"`
	Campus            string `json:"campus"`
	Gender            string `json:"gender"`
	LookingFor        string `json:"lookingFor"`
	Mode              string `json:"mode"`
	Status            string `json:"status"`
	EventAvailability string `json:"eventAvailability"`
	PrimaryInterest   string `json:"primaryInterest"`
}

// NewUser default-constructs a complete record so reads never have to patch
// in missing fields.
func NewUser(in UserProfileInput, now time.Time) *User {
	u := &User{
		UserID:            strings.TrimSpace(in.UserID),
		Name:              strings.TrimSpace(in.Name),
		Campus:            NormalizeCampus(in.Campus),
		Gender:            in.Gender,
		LookingFor:        in.LookingFor,
		Mode:              in.Mode,
		Status:            in.Status,
		EventAvailability: in.EventAvailability,
		PrimaryInterest:   in.PrimaryInterest,
		Liked:             IDSet{},
		Passed:            IDSet{},
		Matched:           IDSet{},
		Blocked:           IDSet{},
		SchemaVersion:     UserSchemaVersion,
		CreatedAt:         now.UnixNano(),
		UpdatedAt:         now.UnixNano(),
	}
	if u.LookingFor == "" {
		u.LookingFor = LookingForEveryone
	}
	if u.Mode == "" {
		u.Mode = ModeGeneral
	}
	if u.Status == "" {
		u.Status = StatusBrowsing
	}
	return u
}

// NormalizeCampus maps free-form campus names onto a stable key
func NormalizeCampus(campus string) string {
	if strings.TrimSpace(campus) == "" {
		campus = DefaultCampus
	}
	return slug.Make(campus)
}

// Set returns the relationship set with the given name
func (u *User) Set(name SetName) IDSet {
	switch name {
	case SetLiked:
		return u.Liked
	case SetPassed:
		return u.Passed
	case SetMatched:
		return u.Matched
	case SetBlocked:
		return u.Blocked
	}
	return nil
}

// EnsureSets replaces nil sets left by decoding a record without them
func (u *User) EnsureSets() {
	if u.Liked == nil {
		u.Liked = IDSet{}
	}
	if u.Passed == nil {
		u.Passed = IDSet{}
	}
	if u.Matched == nil {
		u.Matched = IDSet{}
	}
	if u.Blocked == nil {
		u.Blocked = IDSet{}
	}
}

// Seen reports whether id is in any of the history sets
func (u *User) Seen(id string) bool {
	return u.Liked.Has(id) || u.Passed.Has(id) || u.Matched.Has(id) || u.Blocked.Has(id)
}

// Clone deep-copies the record, including the sets
func (u *User) Clone() *User {
	c := *u
	c.Liked = u.Liked.Clone()
	c.Passed = u.Passed.Clone()
	c.Matched = u.Matched.Clone()
	c.Blocked = u.Blocked.Clone()
	return &c
}

// UsersTable is the DynamoDB table name for user profiles
const UsersTable = "Users"

// Candidate is the public slice of a profile shown on someone else's feed
type Candidate struct {
	UserID          string `json:"userId"`
	Name            string `json:"name,omitempty"`
	Campus          string `json:"campus"`
	Gender          string `json:"gender,omitempty"`
	Mode            string `json:"mode"`
	PrimaryInterest string `json:"primaryInterest,omitempty"`
}

func (u *User) Candidate() Candidate {
	return Candidate{
		UserID:          u.UserID,
		Name:            u.Name,
		Campus:          u.Campus,
		Gender:          u.Gender,
		Mode:            u.Mode,
		PrimaryInterest: u.PrimaryInterest,
	}
}
