package models

import "errors"

// Validation and lookup errors surfaced to callers. The two item validation
// messages are rendered verbatim in the UI, so their text is load-bearing.
var (
	// ErrEmptyItem is returned when an item's text is empty after validation.
	ErrEmptyItem = errors.New("You can't have an empty list item")

	// ErrDuplicateItem is returned when a list already contains an item with
	// the same text.
	ErrDuplicateItem = errors.New("You've already got this in your list")

	// ErrListNotFound is returned when a list ID does not exist.
	ErrListNotFound = errors.New("list not found")

	// ErrUserNotFound is returned when an operation requires an existing user
	// (e.g. sharing) and the email is not registered.
	ErrUserNotFound = errors.New("user not found")

	// ErrNoItems is returned by List.Name when the list has no items. A list
	// reaching this state outside a rolled-back transaction indicates data
	// corruption, not bad user input.
	ErrNoItems = errors.New("list has no items")
)
