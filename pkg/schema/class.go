package schema

import "github.com/pkg/errors"

// Class accepts any data and resolves it by passing it to a constructor,
// which is responsible for validating it further.
type Class[T any] struct {
	construct func(scope Scope, data any) (T, error)
}

// NewClass returns a Class schema constructing values with construct.
func NewClass[T any](construct func(scope Scope, data any) (T, error)) *Class[T] {
	if construct == nil {
		panic("class constructor is nil")
	}
	return &Class[T]{construct: construct}
}

func (*Class[T]) Validate(any) error {
	return nil
}

func (c *Class[T]) Resolve(scope Scope, data any) (any, error) {
	v, err := c.construct(scope, data)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			return nil, err
		}
		return nil, &Error{Kind: ErrInvalidValue, Message: "Cannot construct object", Cause: err}
	}
	return v, nil
}

// The type of constructed values is opaque to schemas.
func (*Class[T]) recognize(recognizing) Schema {
	return Any{}
}
