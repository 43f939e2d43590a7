package models

import (
	"errors"
	"testing"
)

func TestListName(t *testing.T) {
	list := &List{Items: []Item{
		{Text: "Buy milk", Position: 1},
		{Text: "Buy eggs", Position: 2},
	}}

	name, err := list.Name()
	if err != nil {
		t.Fatalf("Name failed: %v", err)
	}
	if name != "Buy milk" {
		t.Errorf("name = %q, want Buy milk", name)
	}

	_, err = (&List{}).Name()
	if !errors.Is(err, ErrNoItems) {
		t.Errorf("expected ErrNoItems for an empty list, got %v", err)
	}
}

func TestCanView(t *testing.T) {
	owner := &User{ID: "1", Email: "a@b.com"}
	sharee := &User{ID: "2", Email: "c@d.com"}
	stranger := &User{ID: "3", Email: "e@f.com"}

	owned := &List{Owner: owner, SharedWith: []*User{sharee}}
	anonymous := &List{}

	tests := []struct {
		name   string
		list   *List
		viewer *User
		want   bool
	}{
		{"owner views own list", owned, owner, true},
		{"sharee views shared list", owned, sharee, true},
		{"stranger denied", owned, stranger, false},
		{"anonymous viewer denied on owned list", owned, nil, false},
		{"anonymous list public to users", anonymous, stranger, true},
		{"anonymous list public to everyone", anonymous, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.list.CanView(tt.viewer); got != tt.want {
				t.Errorf("CanView = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOwnerDisplay(t *testing.T) {
	if got := (&List{}).OwnerDisplay(); got != AnonymousOwner {
		t.Errorf("OwnerDisplay = %q, want %q", got, AnonymousOwner)
	}
	owned := &List{Owner: &User{Email: "a@b.com"}}
	if got := owned.OwnerDisplay(); got != "a@b.com" {
		t.Errorf("OwnerDisplay = %q, want a@b.com", got)
	}
}

func TestHasItem(t *testing.T) {
	list := &List{Items: []Item{{Text: "textey"}}}
	if !list.HasItem("textey") {
		t.Error("expected HasItem to find existing text")
	}
	if list.HasItem("other") {
		t.Error("expected HasItem to miss absent text")
	}
}
