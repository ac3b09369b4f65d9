// Package dbstrings provides string manipulation utilities for database
// identifier handling in code generation: case folding, alignment padding,
// and comma-list parsing.
package dbstrings

import "strings"

// PadRight pads s with spaces on the right to the given width.
// Strings already at or beyond width are returned unchanged.
// Examples:
//
//	PadRight("id", 4) -> "id  "
//	PadRight("employee_id", 4) -> "employee_id"
func PadRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// SplitList splits a comma-separated value into trimmed entries,
// dropping empties.
// Examples:
//
//	SplitList("created_by, created_on") -> ["created_by", "created_on"]
//	SplitList("") -> nil
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LowerList returns a copy of names with every entry lower-cased.
func LowerList(names []string) []string {
	if names == nil {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.ToLower(n)
	}
	return out
}

// ContainsFold reports whether names contains s under case-insensitive
// comparison.
func ContainsFold(names []string, s string) bool {
	for _, n := range names {
		if strings.EqualFold(n, s) {
			return true
		}
	}
	return false
}

// MaxLen returns the length of the longest string in names, or 0.
func MaxLen(names []string) int {
	max := 0
	for _, n := range names {
		if len(n) > max {
			max = len(n)
		}
	}
	return max
}
