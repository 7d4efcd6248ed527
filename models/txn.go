package models

// SetName names one of the relationship sets on a User
type SetName string

const (
	SetLiked   SetName = "liked"
	SetPassed  SetName = "passed"
	SetMatched SetName = "matched"
	SetBlocked SetName = "blocked"
)

// RelationSets lists every relationship set, in a fixed order
var RelationSets = []SetName{SetLiked, SetPassed, SetMatched, SetBlocked}

// UserWrite is one conditional user mutation inside a Txn. The write only
// applies if the stored version still equals ExpectedVersion; applying it
// bumps the version by one.
type UserWrite struct {
	UserID          string
	ExpectedVersion int64
	Add             map[SetName][]string
	Remove          map[SetName][]string
	Clear           []SetName
	Status          string // empty leaves the status untouched
	RequireStatus   string // empty skips the status guard
}

// NewUserWrite starts a write guarded by the version that was read
func NewUserWrite(u *User) *UserWrite {
	return &UserWrite{UserID: u.UserID, ExpectedVersion: u.Version}
}

func (w *UserWrite) AddTo(set SetName, ids ...string) *UserWrite {
	if w.Add == nil {
		w.Add = map[SetName][]string{}
	}
	w.Add[set] = append(w.Add[set], ids...)
	return w
}

func (w *UserWrite) RemoveFrom(set SetName, ids ...string) *UserWrite {
	if w.Remove == nil {
		w.Remove = map[SetName][]string{}
	}
	w.Remove[set] = append(w.Remove[set], ids...)
	return w
}

func (w *UserWrite) ClearSet(set SetName) *UserWrite {
	w.Clear = append(w.Clear, set)
	return w
}

func (w *UserWrite) SetStatus(status string) *UserWrite {
	w.Status = status
	return w
}

// Cleared reports whether the write empties the given set
func (w *UserWrite) Cleared(set SetName) bool {
	for _, s := range w.Clear {
		if s == set {
			return true
		}
	}
	return false
}

// Apply mutates u in place the same way a store applies the write
func (w *UserWrite) Apply(u *User, now int64) {
	u.EnsureSets()
	for _, set := range RelationSets {
		target := u.Set(set)
		if w.Cleared(set) {
			target.Remove(target.Sorted()...)
			continue
		}
		target.Remove(w.Remove[set]...)
		target.Add(w.Add[set]...)
	}
	if w.Status != "" {
		u.Status = w.Status
	}
	u.Version++
	u.UpdatedAt = now
}

// VersionCheck asserts a user record has not changed without writing it
type VersionCheck struct {
	UserID          string
	ExpectedVersion int64
}

// ChatWrite creates the chat if no chat with its key exists, or deletes
// the chat with DeleteID if it still has DeleteVersion.
type ChatWrite struct {
	Create        *Chat
	DeleteID      string
	DeleteVersion int64
}

// Txn is an all-or-nothing multi-record write
type Txn struct {
	Users  []*UserWrite
	Checks []VersionCheck
	Chat   *ChatWrite
}
