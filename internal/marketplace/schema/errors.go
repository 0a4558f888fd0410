package schema

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Violation is one failed rule on one input field.
type Violation struct {
	Field   string
	Rule    string
	Message string
}

// ValidationError carries every violation found in a payload.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Rule)
	}
	return "schema: validation failed (" + strings.Join(parts, ", ") + ")"
}

// Has reports whether field failed, for tests and callers that branch on it.
func (e *ValidationError) Has(field string) bool {
	return slices.ContainsFunc(e.Violations, func(v Violation) bool { return v.Field == field })
}

// Rule names that are not validator tags.
const (
	RuleUnknownRole = "unknown_role"
	RuleImmutable   = "immutable"
	RuleType        = "type"
	RuleJSON        = "json"
)

// collector keeps at most one violation per field, ordered by field position.
type collector struct {
	items []positioned
	seen  map[string]bool
}

type positioned struct {
	pos int
	Violation
}

func newCollector() *collector {
	return &collector{seen: map[string]bool{}}
}

func (c *collector) add(pos int, field, rule, msg string) {
	if c.seen[field] {
		return
	}
	c.seen[field] = true
	c.items = append(c.items, positioned{pos: pos, Violation: Violation{Field: field, Rule: rule, Message: msg}})
}

func (c *collector) err() error {
	if len(c.items) == 0 {
		return nil
	}
	slices.SortStableFunc(c.items, func(a, b positioned) int { return cmp.Compare(a.pos, b.pos) })

	out := make([]Violation, len(c.items))
	for i, it := range c.items {
		out[i] = it.Violation
	}
	return &ValidationError{Violations: out}
}

func single(field, rule, msg string) error {
	return &ValidationError{Violations: []Violation{{Field: field, Rule: rule, Message: msg}}}
}

// message renders a validator tag as text. tags is the field's full rule
// string, used to tell digit-only fields apart from free text.
func message(tag, param, tags string) string {
	unit := "characters"
	if strings.Contains(tags, "number") {
		unit = "digits"
	}

	switch tag {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s %s", param, unit)
	case "max":
		return fmt.Sprintf("must be at most %s %s", param, unit)
	case "len":
		return fmt.Sprintf("must be exactly %s %s", param, unit)
	case "gte":
		return "must be at least " + param
	case "lte":
		return "must be at most " + param
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "number":
		return "must contain only digits"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(param, " ", ", ")
	case tagNotFutureYear:
		return "must not be in the future"
	default:
		return "is invalid"
	}
}
