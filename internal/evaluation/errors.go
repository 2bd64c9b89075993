package evaluation

import "errors"

var (
	// ErrInvalidResponse rejects a response outside the closed set.
	ErrInvalidResponse = errors.New("invalid response")
	// ErrGroupNotFound is returned when a group id is not in the evaluation.
	ErrGroupNotFound = errors.New("group not found")
	// ErrItemOutOfRange is returned for an item index outside its group.
	ErrItemOutOfRange = errors.New("item index out of range")
	// ErrNoActive is returned when the store has no evaluation loaded.
	ErrNoActive = errors.New("no active evaluation")
)
