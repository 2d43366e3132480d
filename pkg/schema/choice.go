package schema

import "fmt"

// Choice accepts data accepted by any of its alternatives. The first
// alternative accepting the data, in declaration order, resolves it.
type Choice struct {
	alternatives []Schema
}

// NewChoice returns a Choice of alternatives. More alternatives can be added
// with Add, which allows building self-referencing schemas.
func NewChoice(alternatives ...Schema) *Choice {
	c := &Choice{}
	c.Add(alternatives...)
	return c
}

// Add appends alternatives to the choice. It must not be called once the
// choice is in use.
func (c *Choice) Add(alternatives ...Schema) {
	for _, a := range alternatives {
		if a == nil {
			panic("choice alternative is nil")
		}
	}
	c.alternatives = append(c.alternatives, alternatives...)
}

// Alternatives returns the schemas the choice is made from.
func (c *Choice) Alternatives() []Schema {
	return c.alternatives
}

func (c *Choice) Validate(data any) error {
	_, err := c.choose(data)
	return err
}

func (c *Choice) choose(data any) (Schema, error) {
	var errs alternatives
	for _, a := range c.alternatives {
		err := a.Validate(data)
		if err == nil {
			return a, nil
		}
		errs = append(errs, err)
	}
	return nil, &Error{Kind: ErrInvalidChoice, Message: "None of the alternatives matched", Cause: errs}
}

func (c *Choice) Resolve(scope Scope, data any) (any, error) {
	a, err := c.choose(data)
	if err != nil {
		return nil, err
	}
	return a.Resolve(scope, data)
}

func (c *Choice) recognize(seen recognizing) Schema {
	if r, ok := seen[c]; ok {
		return r
	}
	r := &Choice{}
	seen[c] = r
	for _, a := range c.alternatives {
		r.alternatives = append(r.alternatives, a.recognize(seen))
	}
	return r
}

// Converter converts data accepted by one schema into data accepted by
// another.
type Converter func(data any) any

// attraction is an ordered list of schemas intermixed with converters. Data
// validates against any of the schemas and is drawn to the last one.
type attraction struct {
	items []any
}

func newAttraction(items []any) attraction {
	if len(items) == 0 {
		panic("no schemas specified")
	}
	for i, item := range items {
		switch item.(type) {
		case Schema:
		case Converter, func(any) any:
			if i == 0 || i == len(items)-1 {
				panic("first and last items must be schemas")
			}
		default:
			panic(fmt.Sprintf("item %d is neither a schema nor a converter: %T", i, item))
		}
	}
	return attraction{items: items}
}

func (a attraction) last() Schema {
	return a.items[len(a.items)-1].(Schema)
}

func (a attraction) validate(data any, message string) error {
	var errs alternatives
	for _, item := range a.items {
		if s, ok := item.(Schema); ok {
			err := s.Validate(data)
			if err == nil {
				return nil
			}
			errs = append(errs, err)
		}
	}
	return &Error{Kind: ErrInvalidChoice, Message: message, Cause: errs}
}

func convert(item any, data any) any {
	switch c := item.(type) {
	case Converter:
		return c(data)
	case func(any) any:
		return c(data)
	default:
		panic(fmt.Sprintf("not a converter: %T", item))
	}
}

// Succession accepts data of any of a series of schema versions, and
// resolves it by converting it forward to the last, current version. The
// converters following each version must turn its data into data accepted by
// the next version.
type Succession struct {
	attraction
}

// NewSuccession returns a Succession of schema versions and the converters
// between them. Items must be Schema or Converter values, and the first and
// last items must be schemas.
func NewSuccession(items ...any) *Succession {
	return &Succession{attraction: newAttraction(items)}
}

func (s *Succession) Validate(data any) error {
	return s.validate(data, "None of the versions matched")
}

func (s *Succession) Resolve(scope Scope, data any) (any, error) {
	if err := s.Validate(data); err != nil {
		return nil, err
	}
	var matched Schema
	for _, item := range s.items {
		version, ok := item.(Schema)
		switch {
		case ok:
			if err := version.Validate(data); err != nil {
				if matched != nil {
					panic(fmt.Sprintf("converted data does not match the next version:\n%v", err))
				}
				continue
			}
			matched = version
		case matched != nil:
			data = convert(item, data)
		}
	}
	if matched != s.last() {
		panic("data was not converted to the last version")
	}
	return matched.Resolve(scope, data)
}

func (s *Succession) recognize(seen recognizing) Schema {
	return s.last().recognize(seen)
}

// Reduction accepts data of a general schema, or of any of the specific
// schemas preceding it, and resolves it with the general (last) schema. The
// converters following each specific schema must turn its data into data
// accepted by the general schema.
type Reduction struct {
	attraction
}

// NewReduction returns a Reduction of specific schemas, their converters,
// and the general schema. Items must be Schema or Converter values, and the
// first and last items must be schemas.
func NewReduction(items ...any) *Reduction {
	return &Reduction{attraction: newAttraction(items)}
}

func (r *Reduction) Validate(data any) error {
	return r.validate(data, "None of the forms matched")
}

func (r *Reduction) Resolve(scope Scope, data any) (any, error) {
	if err := r.Validate(data); err != nil {
		return nil, err
	}
	var matched Schema
	for _, item := range r.items {
		specific, ok := item.(Schema)
		if ok {
			if matched != nil {
				break
			}
			if specific.Validate(data) == nil {
				matched = specific
			}
			continue
		}
		if matched != nil {
			data = convert(item, data)
		}
	}
	if matched == nil {
		panic("no schema matched validated data")
	}
	return r.last().Resolve(scope, data)
}

func (r *Reduction) recognize(seen recognizing) Schema {
	return r.last().recognize(seen)
}
