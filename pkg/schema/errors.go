package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why data was rejected. Kinds are matched with errors.Is.
type Kind string

func (k Kind) Error() string {
	return string(k)
}

const (
	// ErrInvalidType means the data is not of the expected primitive or
	// container type.
	ErrInvalidType = Kind("invalid type")
	// ErrInvalidValue means the data has the right type, but its content fails
	// a check, for example a malformed regular expression.
	ErrInvalidValue = Kind("invalid value")
	// ErrInvalidStructure means a member is missing or unexpected, or a list
	// is too short.
	ErrInvalidStructure = Kind("invalid structure")
	// ErrInvalidChoice means none of the alternatives accepted the data.
	ErrInvalidChoice = Kind("invalid choice")
	// ErrInvalidReference means a regular expression selects none of the
	// names it is supposed to select from.
	ErrInvalidReference = Kind("invalid reference")
)

// Error is a data validation or resolution failure. Each level of a nested
// schema adds an Error naming the failed child, so the rendered message reads
// as a hierarchical explanation from the outermost level in.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ":\n" + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the Kind of this error.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Errorf returns a new Error of the specified kind.
func Errorf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap adds context to err, keeping its kind.
func Wrap(err error, format string, args ...any) error {
	return &Error{Kind: KindOf(err), Message: fmt.Sprintf(format, args...), Cause: err}
}

// KindOf returns the kind of the outermost Error in err's chain, or
// ErrInvalidValue if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrInvalidValue
}

// alternatives is a collection of failures of every alternative tried.
type alternatives []error

func (a alternatives) Error() string {
	msgs := make([]string, len(a))
	for i, err := range a {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\nand\n")
}

func (a alternatives) Unwrap() []error {
	return a
}

func invalidType(data any, expected string) error {
	return Errorf(ErrInvalidType, "Invalid type: %s, expecting %s", typeName(data), expected)
}

func typeName(data any) string {
	switch data.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case int:
		return "int"
	case float64:
		return "float"
	case bool:
		return "bool"
	case []any:
		return "list"
	case map[string]any, map[any]any:
		return "dict"
	case *Regexp:
		return "regex"
	default:
		return fmt.Sprintf("%T", data)
	}
}
