package config

import "fmt"

// ErrorKind classifies config load failures.
type ErrorKind uint8

const (
	// FormatError: the text layer could not produce a document tree.
	FormatError ErrorKind = iota
	// UnsupportedVersion: the document's version selects no processor.
	UnsupportedVersion
	// InvalidConfig: the document violates the schema.
	InvalidConfig
)

func (k ErrorKind) String() string {
	switch k {
	case FormatError:
		return "format error"
	case UnsupportedVersion:
		return "unsupported version"
	default:
		return "invalid config"
	}
}

// Error is the only error type the loader produces. Line and Col are
// populated for FormatError when the parser reports a location.
type Error struct {
	Kind ErrorKind
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	if e.Kind == FormatError && e.Line > 0 {
		return fmt.Sprintf("%s at line %d, column %d: %s", e.Kind, e.Line, e.Col, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func invalidf(format string, args ...interface{}) *Error {
	return &Error{Kind: InvalidConfig, Msg: fmt.Sprintf(format, args...)}
}
