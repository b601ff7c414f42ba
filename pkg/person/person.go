// Package person holds the account record and the client that updates it.
package person

import (
	"fmt"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// Person is the account record returned by the API.
type Person struct {
	ID         string `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	Newsletter bool   `json:"newsletter"`
	PictureURL string `json:"picture,omitempty"`
}

// FullName joins the first and last name.
func (p Person) FullName() string {
	switch {
	case p.FirstName == "":
		return p.LastName
	case p.LastName == "":
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

// UpdatePerson is the writable subset of Person sent to the update call.
type UpdatePerson struct {
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Company    string `json:"company,omitempty"`
	Newsletter bool   `json:"newsletter"`
}

// Merge overlays changes onto current with JSON merge patch semantics and
// returns the writable subset. Keys in changes use the JSON field names; a
// nil value removes the key, which resets it to its zero value.
func Merge(current Person, changes map[string]any) (UpdatePerson, error) {
	base, err := sonic.Marshal(current)
	if err != nil {
		return UpdatePerson{}, fmt.Errorf("person: encode current: %w", err)
	}
	patch, err := sonic.Marshal(changes)
	if err != nil {
		return UpdatePerson{}, fmt.Errorf("person: encode changes: %w", err)
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		return UpdatePerson{}, fmt.Errorf("person: merge changes: %w", err)
	}
	var out UpdatePerson
	if err := sonic.Unmarshal(merged, &out); err != nil {
		return UpdatePerson{}, fmt.Errorf("person: decode merged: %w", err)
	}
	return out, nil
}
