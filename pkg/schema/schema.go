// Package schema validates raw configuration data and resolves it into the
// values the rest of the program works with.
//
// Raw data is what decoding YAML into an empty interface produces: nil,
// strings, ints, float64s, bools, []any, and maps. A Schema validates the
// shape of such data, resolves it (possibly changing its shape, e.g. a file
// path becomes the file's contents), and, through Recognize, describes the
// shape resolved data will have.
package schema

// Schema validates and resolves raw data.
type Schema interface {
	// Validate checks the shape of data without transforming it.
	Validate(data any) error
	// Resolve validates data and transforms it into its resolved form.
	Resolve(scope Scope, data any) (any, error)

	recognize(seen recognizing) Schema
}

// recognizing maps choices already being recognized to their results, which
// lets self-referencing schemas recognize into a finite graph.
type recognizing map[*Choice]*Choice

// Recognize returns the schema data resolved with s conforms to.
func Recognize(s Schema) Schema {
	return s.recognize(recognizing{})
}

// Null accepts nil only.
type Null struct{}

func (Null) Validate(data any) error {
	if data != nil {
		return invalidType(data, "null")
	}
	return nil
}

func (n Null) Resolve(_ Scope, data any) (any, error) {
	return nil, n.Validate(data)
}

func (n Null) recognize(recognizing) Schema {
	return n
}

// Any accepts anything.
type Any struct{}

func (Any) Validate(any) error {
	return nil
}

func (Any) Resolve(_ Scope, data any) (any, error) {
	return data, nil
}

func (a Any) recognize(recognizing) Schema {
	return a
}

// Type accepts values of the Go type T.
type Type[T any] struct{}

type (
	Int     = Type[int]
	Float   = Type[float64]
	Boolean = Type[bool]
)

func (Type[T]) Validate(data any) error {
	if _, ok := data.(T); !ok {
		var zero T
		return invalidType(data, typeName(zero))
	}
	return nil
}

func (t Type[T]) Resolve(_ Scope, data any) (any, error) {
	if err := t.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (t Type[T]) recognize(recognizing) Schema {
	return t
}

// String accepts strings, fully matching Pattern if it is set.
type String struct {
	Pattern *Regexp
}

func (s String) Validate(data any) error {
	str, ok := data.(string)
	if !ok {
		return invalidType(data, "string")
	}
	if s.Pattern != nil && !s.Pattern.MatchString(str) {
		return Errorf(ErrInvalidValue, "String %q does not match %q", str, s.Pattern)
	}
	return nil
}

func (s String) Resolve(_ Scope, data any) (any, error) {
	if err := s.Validate(data); err != nil {
		return nil, err
	}
	return data, nil
}

func (s String) recognize(recognizing) Schema {
	return s
}

// Regex accepts strings holding a valid regular expression and resolves them
// to a *Regexp matching whole strings.
type Regex struct{}

func (Regex) Validate(data any) error {
	if err := (String{}).Validate(data); err != nil {
		return err
	}
	if _, err := CompileRegexp(data.(string)); err != nil {
		return &Error{Kind: ErrInvalidValue, Message: "Invalid regular expression", Cause: err}
	}
	return nil
}

func (r Regex) Resolve(_ Scope, data any) (any, error) {
	if err := r.Validate(data); err != nil {
		return nil, err
	}
	return CompileRegexp(data.(string))
}

func (Regex) recognize(recognizing) Schema {
	return Type[*Regexp]{}
}
