package schema

import (
	"fmt"
	"maps"
	"slices"
)

// AsMap returns data as a map with string keys. It reports false if data is
// not a mapping or has a key which is not a string.
func AsMap(data any) (map[string]any, bool) {
	m, err := asMap(data)
	return m, err == nil
}

func asMap(data any) (map[string]any, error) {
	switch m := data.(type) {
	case map[string]any:
		return m, nil
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, v := range m {
			s, ok := k.(string)
			if !ok {
				return nil, Errorf(ErrInvalidType, "Key \"%v\" is %s, expecting a string", k, typeName(k))
			}
			out[s] = v
		}
		return out, nil
	default:
		return nil, invalidType(data, "dict")
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// List accepts lists of at least MinLen elements, each accepted by Element.
type List struct {
	Element Schema
	MinLen  int
}

// NewList returns a List schema with every element accepted by element.
func NewList(element Schema) *List {
	if element == nil {
		panic("list element schema is nil")
	}
	return &List{Element: element}
}

// NewNonEmptyList is like NewList, but rejects empty lists.
func NewNonEmptyList(element Schema) *List {
	l := NewList(element)
	l.MinLen = 1
	return l
}

func (l *List) Validate(data any) error {
	list, ok := data.([]any)
	if !ok {
		return invalidType(data, "list")
	}
	for i, v := range list {
		if err := l.Element.Validate(v); err != nil {
			return Wrap(err, "Invalid value at index %d", i)
		}
	}
	if len(list) < l.MinLen {
		if l.MinLen == 1 {
			return Errorf(ErrInvalidStructure, "This list must not be empty")
		}
		return Errorf(ErrInvalidStructure, "List has %d elements, expecting at least %d", len(list), l.MinLen)
	}
	return nil
}

func (l *List) Resolve(scope Scope, data any) (any, error) {
	if err := l.Validate(data); err != nil {
		return nil, err
	}
	list := data.([]any)
	resolved := make([]any, 0, len(list))
	for i, v := range list {
		r, err := l.Element.Resolve(scope, v)
		if err != nil {
			return nil, Wrap(err, "Invalid value at index %d", i)
		}
		resolved = append(resolved, r)
	}
	return resolved, nil
}

func (l *List) recognize(seen recognizing) Schema {
	return &List{Element: l.Element.recognize(seen), MinLen: l.MinLen}
}

// Dict accepts mappings with string keys and every value accepted by Value.
// If Key is set, it must accept every key as well.
type Dict struct {
	Value Schema
	Key   Schema
}

// NewDict returns a Dict schema with every value accepted by value.
func NewDict(value Schema) *Dict {
	if value == nil {
		panic("dict value schema is nil")
	}
	return &Dict{Value: value}
}

// NewDictWithKeys is like NewDict, but also requires key to accept every
// key.
func NewDictWithKeys(value, key Schema) *Dict {
	d := NewDict(value)
	d.Key = key
	return d
}

func (d *Dict) Validate(data any) error {
	m, err := asMap(data)
	if err != nil {
		return err
	}
	for _, k := range sortedKeys(m) {
		if d.Key != nil {
			if err := d.Key.Validate(k); err != nil {
				return Wrap(err, "Invalid key %q", k)
			}
		}
		if err := d.Value.Validate(m[k]); err != nil {
			return Wrap(err, "Invalid value with key %q", k)
		}
	}
	return nil
}

func (d *Dict) Resolve(scope Scope, data any) (any, error) {
	if err := d.Validate(data); err != nil {
		return nil, err
	}
	m, _ := asMap(data)
	resolved := make(map[string]any, len(m))
	for _, k := range sortedKeys(m) {
		r, err := d.Value.Resolve(scope, m[k])
		if err != nil {
			return nil, Wrap(err, "Invalid value with key %q", k)
		}
		resolved[k] = r
	}
	return resolved, nil
}

func (d *Dict) recognize(seen recognizing) Schema {
	r := &Dict{Value: d.Value.recognize(seen)}
	if d.Key != nil {
		r.Key = d.Key.recognize(seen)
	}
	return r
}

// Members maps struct member names to their schemas.
type Members map[string]Schema

// Struct accepts mappings with every Required member present, and every
// present member accepted by its schema. Members which are neither required
// nor optional are rejected.
//
// Resolved data has no entries for absent optional members.
type Struct struct {
	Required Members
	Optional Members
}

// NewStruct returns a Struct schema. A member cannot be both required and
// optional.
func NewStruct(required, optional Members) *Struct {
	if required == nil {
		required = Members{}
	}
	if optional == nil {
		optional = Members{}
	}
	for name, s := range required {
		if s == nil {
			panic(fmt.Sprintf("schema of required member %q is nil", name))
		}
		if _, ok := optional[name]; ok {
			panic(fmt.Sprintf("member %q is both required and optional", name))
		}
	}
	for name, s := range optional {
		if s == nil {
			panic(fmt.Sprintf("schema of optional member %q is nil", name))
		}
	}
	return &Struct{Required: required, Optional: optional}
}

// NewStrictStruct returns a Struct schema with required members only.
func NewStrictStruct(required Members) *Struct {
	return NewStruct(required, nil)
}

// Has reports whether name is a member of the struct.
func (s *Struct) Has(name string) bool {
	_, required := s.Required[name]
	_, optional := s.Optional[name]
	return required || optional
}

func (s *Struct) Validate(data any) error {
	m, err := asMap(data)
	if err != nil {
		return err
	}
	for _, name := range sortedKeys(s.Required) {
		v, ok := m[name]
		if !ok {
			return Errorf(ErrInvalidStructure, "Member %q is missing", name)
		}
		if err := s.Required[name].Validate(v); err != nil {
			return Wrap(err, "Member %q is invalid", name)
		}
	}
	for _, name := range sortedKeys(s.Optional) {
		if v, ok := m[name]; ok {
			if err := s.Optional[name].Validate(v); err != nil {
				return Wrap(err, "Member %q is invalid", name)
			}
		}
	}
	for _, name := range sortedKeys(m) {
		if !s.Has(name) {
			return Errorf(ErrInvalidStructure, "Unexpected member %q encountered", name)
		}
	}
	return nil
}

func (s *Struct) Resolve(scope Scope, data any) (any, error) {
	if err := s.Validate(data); err != nil {
		return nil, err
	}
	m, _ := asMap(data)
	resolved := make(map[string]any, len(m))
	for _, name := range sortedKeys(m) {
		member, ok := s.Required[name]
		if !ok {
			member = s.Optional[name]
		}
		r, err := member.Resolve(scope, m[name])
		if err != nil {
			return nil, Wrap(err, "Member %q is invalid", name)
		}
		resolved[name] = r
	}
	return resolved, nil
}

func (s *Struct) recognize(seen recognizing) Schema {
	r := &Struct{Required: Members{}, Optional: Members{}}
	for name, member := range s.Required {
		r.Required[name] = member.recognize(seen)
	}
	for name, member := range s.Optional {
		r.Optional[name] = member.recognize(seen)
	}
	return r
}
