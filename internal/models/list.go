package models

// AnonymousOwner is the display name used for lists without an owner.
const AnonymousOwner = "Anonymous User"

// List represents a to-do list. Lists are created together with their first
// item and never exist empty; the list's name is always the text of its
// oldest item.
type List struct {
	// ID is the unique identifier for the list (UUID format).
	ID string

	// Owner is the user who created the list, or nil for an anonymous list.
	// Anonymous lists are publicly viewable.
	Owner *User

	// SharedWith are the users granted view access by the owner.
	SharedWith []*User

	// Items are the list's items, ordered by Position ascending.
	Items []Item

	// CreatedAt is the Unix timestamp when the list was created.
	CreatedAt int64
}

// Name returns the text of the list's first item. The name is derived on
// every call rather than stored, so it cannot drift from the items.
// Returns ErrNoItems if the list has no items, which should never happen for
// a persisted list.
func (l *List) Name() (string, error) {
	if len(l.Items) == 0 {
		return "", ErrNoItems
	}
	return l.Items[0].Text, nil
}

// CanView reports whether u may view the list. Lists without an owner are
// public; otherwise the owner and every sharee may view. A nil u represents
// an unauthenticated viewer.
func (l *List) CanView(u *User) bool {
	if l.Owner == nil {
		return true
	}
	if u == nil {
		return false
	}
	if l.Owner.Email == u.Email {
		return true
	}
	return l.IsSharedWith(u.Email)
}

// IsSharedWith reports whether the list is shared with the given email.
func (l *List) IsSharedWith(email string) bool {
	for _, s := range l.SharedWith {
		if s.Email == email {
			return true
		}
	}
	return false
}

// HasItem reports whether the list already contains an item with the given
// text.
func (l *List) HasItem(text string) bool {
	for _, it := range l.Items {
		if it.Text == text {
			return true
		}
	}
	return false
}

// OwnerDisplay returns the owner's email, or AnonymousOwner for lists
// without an owner.
func (l *List) OwnerDisplay() string {
	if l.Owner == nil {
		return AnonymousOwner
	}
	return l.Owner.Email
}
