package pricing

import "fmt"

// ValidationError describes a price line that violates a shape rule.
// It is returned as a plain value; callers branch on Field/Rule and the
// HTTP layer renders it into the standard validation envelope.
type ValidationError struct {
	Field string // offending field, empty when the rule spans several
	Rule  string // machine-readable rule name, e.g. "unit_enum"
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid price line: %s", e.Msg)
	}
	return fmt.Sprintf("invalid price line: %s: %s", e.Field, e.Msg)
}
