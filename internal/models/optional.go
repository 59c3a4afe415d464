package models

import (
	"encoding/json"
	"fmt"
)

// OptionalString distinguishes a JSON field that is absent, explicitly null,
// or carries a string. Request payloads use it wherever those three cases
// validate differently.
type OptionalString struct {
	Present bool
	Null    bool
	Value   string
}

// Some returns a present, non-null value.
func Some(v string) OptionalString {
	return OptionalString{Present: true, Value: v}
}

// Null returns a present, explicitly null value.
func Null() OptionalString {
	return OptionalString{Present: true, Null: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the key
// appears in the document, which is what marks the value as present.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Present = true
	if string(b) == "null" {
		o.Null = true
		o.Value = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected a string or null: %w", err)
	}
	o.Null = false
	o.Value = s
	return nil
}

// MarshalJSON implements json.Marshaler.
func (o OptionalString) MarshalJSON() ([]byte, error) {
	if !o.Present || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns nil for absent or null values and a pointer to the value otherwise.
func (o OptionalString) Ptr() *string {
	if !o.Present || o.Null {
		return nil
	}
	v := o.Value
	return &v
}
