package models

// Item represents a single line of text on a list.
// Items are immutable once created and are removed only when their list is
// deleted (the storage layer cascades the delete).
type Item struct {
	// ID is the unique identifier for the item (UUID format).
	ID string

	// ListID references the owning list.
	ListID string

	// Text is the item's content. Never empty; unique within its list.
	Text string

	// Position is the 1-based creation sequence within the list. It is
	// assigned by the store and determines display order and which item
	// names the list.
	Position int

	// CreatedAt is the Unix timestamp when the item was created.
	CreatedAt int64
}
