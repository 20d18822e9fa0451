package resource

import (
	"fmt"
	"strings"
)

// Field names an adjustable current-value resource. Its string form is the
// snake_case key used on the wire and in the database.
type Field string

// Adjustable fields.
const (
	CurrentAP  Field = "current_ap"
	CurrentMP  Field = "current_mp"
	CurrentHEX Field = "current_hex"
)

// Fields returns every adjustable field in display order.
func Fields() []Field {
	return []Field{CurrentAP, CurrentMP, CurrentHEX}
}

// MaxKey returns the snake_case key of the maximum bounding f.
func (f Field) MaxKey() string {
	switch f {
	case CurrentAP:
		return "max_ap"
	case CurrentMP:
		return "max_mp"
	case CurrentHEX:
		return "max_hex"
	}
	return ""
}

// Label returns the short display name: AP, MP or HEX.
func (f Field) Label() string {
	switch f {
	case CurrentAP:
		return "AP"
	case CurrentMP:
		return "MP"
	case CurrentHEX:
		return "HEX"
	}
	return string(f)
}

// ParseField resolves a snake_case key or a short label (case-insensitive "ap",
// "mp", "hex") to a Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current_ap", "ap":
		return CurrentAP, nil
	case "current_mp", "mp":
		return CurrentMP, nil
	case "current_hex", "hex":
		return CurrentHEX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}
