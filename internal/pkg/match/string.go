package match

import (
	"fmt"
	"regexp"
	"strings"
)

// StringKind selects the String matcher variant.
type StringKind uint8

const (
	StringIs StringKind = iota
	StringContains
	StringStartsWith
	StringEndsWith
	StringRegex
)

// String is a structured predicate over text fields. Regex matching uses
// partial-find semantics: the pattern may match any substring unless it is
// anchored itself.
type String struct {
	Kind    StringKind
	Value   string
	Pattern *regexp.Regexp
}

// Is builds an exact matcher.
func Is(s string) String {
	return String{Kind: StringIs, Value: s}
}

// Contains builds a substring matcher.
func Contains(s string) String {
	return String{Kind: StringContains, Value: s}
}

// StartsWith builds a prefix matcher.
func StartsWith(s string) String {
	return String{Kind: StringStartsWith, Value: s}
}

// EndsWith builds a suffix matcher.
func EndsWith(s string) String {
	return String{Kind: StringEndsWith, Value: s}
}

// Regex compiles pattern into a matcher. A pattern that fails to compile
// is a configuration error.
func Regex(pattern string) (String, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return String{}, fmt.Errorf("compiling regex %q failed: %w", pattern, err)
	}
	return String{Kind: StringRegex, Value: pattern, Pattern: re}, nil
}

// Matches reports whether s satisfies the matcher.
func (m String) Matches(s string) bool {
	switch m.Kind {
	case StringIs:
		return m.Value == s
	case StringContains:
		return strings.Contains(s, m.Value)
	case StringStartsWith:
		return strings.HasPrefix(s, m.Value)
	case StringEndsWith:
		return strings.HasSuffix(s, m.Value)
	case StringRegex:
		return m.Pattern.MatchString(s)
	default:
		return false
	}
}
