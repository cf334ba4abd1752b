package ratsnest

import "errors"

var (
	// ErrNoNet is returned for items whose net code is not positive.
	ErrNoNet = errors.New("item has no net")
	// ErrItemExists is returned when adding an item twice.
	ErrItemExists = errors.New("item already added")
	// ErrItemNotFound is returned for items that were never added.
	ErrItemNotFound = errors.New("item not found")
	// ErrUnknownKind is returned for items of an unsupported kind.
	ErrUnknownKind = errors.New("unknown item kind")
)
