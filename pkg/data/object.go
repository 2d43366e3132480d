package data

import (
	"fmt"

	"github.com/kpet-go/kpet/pkg/schema"
)

// members is the resolved data of an object, keyed by member name.
type members map[string]any

// resolveObject resolves data with the schema of an object kind, which must
// recognize as a struct.
func resolveObject(kind string, s schema.Schema, scope schema.Scope, data any) (members, error) {
	resolved, err := s.Resolve(scope, data)
	if err != nil {
		return nil, schema.Wrap(err, "Invalid %s data", kind)
	}

	st, ok := schema.Recognize(s).(*schema.Struct)
	if !ok {
		panic(fmt.Sprintf("%s schema does not recognize as a struct", kind))
	}
	if err := st.Validate(resolved); err != nil {
		panic(fmt.Sprintf("resolved %s data is invalid:\n%v", kind, err))
	}

	m, _ := schema.AsMap(resolved)
	return m, nil
}

// get returns the value of an optional member. Members are typed by their
// schema, so a type mismatch is a bug and panics.
func get[T any](m members, name string) (T, bool) {
	v, ok := m[name]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// getOr returns the value of an optional member, or def if it is absent.
func getOr[T any](m members, name string, def T) T {
	if v, ok := get[T](m, name); ok {
		return v
	}
	return def
}

// getList returns the elements of an optional list member.
func getList[T any](m members, name string) []T {
	list, ok := get[[]any](m, name)
	if !ok {
		return nil
	}
	out := make([]T, 0, len(list))
	for _, v := range list {
		out = append(out, v.(T))
	}
	return out
}

// getDict returns the values of an optional dict member.
func getDict[T any](m members, name string) map[string]T {
	dict, ok := get[map[string]any](m, name)
	if !ok {
		return nil
	}
	out := make(map[string]T, len(dict))
	for k, v := range dict {
		out[k] = v.(T)
	}
	return out
}

func toList(data any) any {
	return []any{data}
}
