package form

import "maps"

// Values maps field names to their current value (string or bool).
type Values map[string]any

// String returns the string value stored under name.
func (v Values) String(name string) string {
	s, _ := v[name].(string)
	return s
}

// Bool returns the bool value stored under name.
func (v Values) Bool(name string) bool {
	b, _ := v[name].(bool)
	return b
}

// Clone returns a shallow copy. Values only hold scalars so this is a full
// copy in practice.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	return maps.Clone(v)
}
