package campaignapp

import "strings"

// Placeholder stands in for absent or blank detail values.
const Placeholder = "-"

// Value is a detail value that is either present or absent.
type Value struct {
	text  string
	valid bool
}

// Some returns a present value.
func Some(text string) Value {
	return Value{text: text, valid: true}
}

// None returns an absent value.
func None() Value {
	return Value{}
}

// Optional returns None for nil and Some otherwise.
func Optional(text *string) Value {
	if text == nil {
		return None()
	}
	return Some(*text)
}

// Get returns the raw text and whether the value is present.
func (v Value) Get() (string, bool) {
	return v.text, v.valid
}

// IsBlank reports whether the value is absent or whitespace only.
func (v Value) IsBlank() bool {
	return !v.valid || strings.TrimSpace(v.text) == ""
}

// Display returns the text, or Placeholder when the value is blank.
func (v Value) Display() string {
	if v.IsBlank() {
		return Placeholder
	}
	return v.text
}
