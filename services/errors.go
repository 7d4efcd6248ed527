package services

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrUserExists     = errors.New("user already exists")
	ErrSelfAction     = errors.New("cannot swipe on yourself")
	ErrBlocked        = errors.New("candidate is blocked")
	ErrUnauthorized   = errors.New("user is not a participant of this chat")
	ErrInvalidPayload = errors.New("invalid message payload")

	// ErrPairKeyCollision means the chat stored under a pair key belongs to
	// a different pair of users
	ErrPairKeyCollision = errors.New("pair key belongs to another pair")

	// Idempotent no-ops: the requested state already holds
	ErrAlreadyBlocked = errors.New("already blocked")
	ErrAlreadyPassed  = errors.New("already passed")
	ErrAlreadyMatched = errors.New("already matched")

	// ErrTxnConflict is returned by a Store when a transaction's conditions
	// no longer hold. Services retry it.
	ErrTxnConflict = errors.New("transaction conflict")
	// ErrConcurrentMatchConflict surfaces once retries are exhausted
	ErrConcurrentMatchConflict = errors.New("concurrent update conflict, retry later")

	ErrSubscriberOverflow = errors.New("subscriber fell too far behind")
	ErrChatClosed         = errors.New("chat was deleted")
)

// IsNoop reports whether err only signals that the requested state already holds
func IsNoop(err error) bool {
	return errors.Is(err, ErrAlreadyBlocked) || errors.Is(err, ErrAlreadyPassed) || errors.Is(err, ErrAlreadyMatched)
}
