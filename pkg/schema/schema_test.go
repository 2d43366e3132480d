package schema

import (
	"errors"
	"testing"

	"github.com/go-logr/logr"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tcs := []struct {
		name    string
		schema  Schema
		data    any
		wantErr error
		wantMsg string
	}{
		{
			name:   "null",
			schema: Null{},
			data:   nil,
		},
		{
			name:    "null rejects string",
			schema:  Null{},
			data:    "a",
			wantErr: ErrInvalidType,
			wantMsg: "Invalid type: string, expecting null",
		},
		{
			name:   "int",
			schema: Int{},
			data:   10,
		},
		{
			name:    "int rejects float",
			schema:  Int{},
			data:    1.5,
			wantErr: ErrInvalidType,
			wantMsg: "Invalid type: float, expecting int",
		},
		{
			name:    "float rejects int",
			schema:  Float{},
			data:    1,
			wantErr: ErrInvalidType,
			wantMsg: "Invalid type: int, expecting float",
		},
		{
			name:    "boolean rejects string",
			schema:  Boolean{},
			data:    "true",
			wantErr: ErrInvalidType,
			wantMsg: "Invalid type: string, expecting bool",
		},
		{
			name:   "string with pattern",
			schema: String{Pattern: MustCompileRegexp("[a-z]+")},
			data:   "abc",
		},
		{
			name:    "string not matching pattern",
			schema:  String{Pattern: MustCompileRegexp("[a-z]+")},
			data:    "abc1",
			wantErr: ErrInvalidValue,
			wantMsg: `String "abc1" does not match "[a-z]+"`,
		},
		{
			name:   "regex",
			schema: Regex{},
			data:   "^a.*",
		},
		{
			name:    "malformed regex",
			schema:  Regex{},
			data:    "a(",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "unbalanced regex",
			schema:  Regex{},
			data:    "a)(b",
			wantErr: ErrInvalidValue,
		},
		{
			name:    "regex rejects list",
			schema:  Regex{},
			data:    []any{"a"},
			wantErr: ErrInvalidType,
			wantMsg: "Invalid type: list, expecting string",
		},
		{
			name:    "list element",
			schema:  NewList(Int{}),
			data:    []any{1, "a"},
			wantErr: ErrInvalidType,
			wantMsg: "Invalid value at index 1:\nInvalid type: string, expecting int",
		},
		{
			name:    "empty non-empty list",
			schema:  NewNonEmptyList(Int{}),
			data:    []any{},
			wantErr: ErrInvalidStructure,
			wantMsg: "This list must not be empty",
		},
		{
			name:    "short list",
			schema:  &List{Element: Int{}, MinLen: 2},
			data:    []any{1},
			wantErr: ErrInvalidStructure,
		},
		{
			name:   "dict",
			schema: NewDict(String{}),
			data:   map[string]any{"a": "b"},
		},
		{
			name:   "dict with generic keys",
			schema: NewDict(String{}),
			data:   map[any]any{"a": "b"},
		},
		{
			name:    "dict with int key",
			schema:  NewDict(String{}),
			data:    map[any]any{1: "b"},
			wantErr: ErrInvalidType,
			wantMsg: `Key "1" is int, expecting a string`,
		},
		{
			name:    "dict value",
			schema:  NewDict(String{}),
			data:    map[string]any{"a": 1},
			wantErr: ErrInvalidType,
			wantMsg: "Invalid value with key \"a\":\nInvalid type: int, expecting string",
		},
		{
			name:    "dict key",
			schema:  NewDictWithKeys(String{}, String{Pattern: MustCompileRegexp("[a-z]+")}),
			data:    map[string]any{"A": "b"},
			wantErr: ErrInvalidValue,
		},
		{
			name:    "struct missing member",
			schema:  NewStrictStruct(Members{"name": String{}}),
			data:    map[string]any{},
			wantErr: ErrInvalidStructure,
			wantMsg: `Member "name" is missing`,
		},
		{
			name:    "struct unexpected member",
			schema:  NewStrictStruct(Members{"name": String{}}),
			data:    map[string]any{"name": "x", "extra": 1},
			wantErr: ErrInvalidStructure,
			wantMsg: `Unexpected member "extra" encountered`,
		},
		{
			name:    "struct invalid optional member",
			schema:  NewStruct(Members{"name": String{}}, Members{"size": Int{}}),
			data:    map[string]any{"name": "x", "size": "big"},
			wantErr: ErrInvalidType,
			wantMsg: "Member \"size\" is invalid:\nInvalid type: string, expecting int",
		},
		{
			name:   "struct without optional member",
			schema: NewStruct(Members{"name": String{}}, Members{"size": Int{}}),
			data:   map[string]any{"name": "x"},
		},
		{
			name:    "struct rejects list",
			schema:  NewStruct(nil, nil),
			data:    []any{},
			wantErr: ErrInvalidType,
			wantMsg: "Invalid type: list, expecting dict",
		},
		{
			name:    "choice",
			schema:  NewChoice(Int{}, Boolean{}),
			data:    "x",
			wantErr: ErrInvalidChoice,
			wantMsg: "None of the alternatives matched:\n" +
				"Invalid type: string, expecting int\nand\nInvalid type: string, expecting bool",
		},
		{
			name:   "class accepts anything",
			schema: NewClass(func(_ Scope, data any) (any, error) { return data, nil }),
			data:   []any{1, "a", nil},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.schema.Validate(tc.data)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got error %v, want %v", err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				require.EqualError(t, err, tc.wantMsg)
			}

			// Resolution validates first.
			_, err = tc.schema.Resolve(Scope{}, tc.data)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got resolve error %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegexResolvesToFullMatch(t *testing.T) {
	v, err := Regex{}.Resolve(Scope{}, "^a.*")
	require.NoError(t, err)

	re, ok := v.(*Regexp)
	require.True(t, ok, "resolved to %T", v)
	require.Equal(t, "^a.*", re.String())
	require.True(t, re.MatchString("abc"))
	require.False(t, re.MatchString("xabc"))

	re = MustCompileRegexp("b")
	require.False(t, re.MatchString("abc"))
	require.True(t, re.MatchString("b"))
}

func TestChoiceFirstMatchWins(t *testing.T) {
	t.Parallel()

	regexFirst := NewChoice(Regex{}, String{})
	stringFirst := NewChoice(String{}, Regex{})

	for i := 0; i < 10; i++ {
		v, err := regexFirst.Resolve(Scope{}, "a.*")
		require.NoError(t, err)
		require.IsType(t, &Regexp{}, v)

		v, err = stringFirst.Resolve(Scope{}, "a.*")
		require.NoError(t, err)
		require.Equal(t, "a.*", v)
	}
}

func regexStrings(t *testing.T, v any) []string {
	t.Helper()

	list, ok := v.([]any)
	require.True(t, ok, "resolved to %T", v)
	var out []string
	for _, e := range list {
		re, ok := e.(*Regexp)
		require.True(t, ok, "element resolved to %T", e)
		out = append(out, re.String())
	}
	return out
}

func TestReduction(t *testing.T) {
	t.Parallel()

	s := NewReduction(
		Regex{},
		Converter(func(data any) any { return []any{data} }),
		NewList(Regex{}),
	)

	single, err := s.Resolve(Scope{}, "^a.*")
	require.NoError(t, err)
	list, err := s.Resolve(Scope{}, []any{"^a.*"})
	require.NoError(t, err)

	if diff := cmp.Diff(regexStrings(t, list), regexStrings(t, single)); diff != "" {
		t.Error(diff)
	}
	require.True(t, single.([]any)[0].(*Regexp).MatchString("abc"))

	_, err = s.Resolve(Scope{}, 1)
	require.ErrorIs(t, err, ErrInvalidChoice)
	require.EqualError(t, err, "None of the forms matched:\n"+
		"Invalid type: int, expecting string\nand\nInvalid type: int, expecting list")

	if diff := cmp.Diff(&List{Element: Type[*Regexp]{}}, Recognize(s)); diff != "" {
		t.Error(diff)
	}
}

func renameDescription(data any) any {
	m, _ := AsMap(data)
	out := map[string]any{}
	for k, v := range m {
		if k == "description" {
			k = "name"
		}
		out[k] = v
	}
	return out
}

func TestSuccession(t *testing.T) {
	t.Parallel()

	s := NewSuccession(
		NewStrictStruct(Members{"description": String{}}),
		Converter(renameDescription),
		NewStrictStruct(Members{"name": String{}}),
	)

	want := map[string]any{"name": "x"}
	for _, data := range []any{
		map[string]any{"description": "x"},
		map[string]any{"name": "x"},
	} {
		got, err := s.Resolve(Scope{}, data)
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Error(diff)
		}
	}

	_, err := s.Resolve(Scope{}, map[string]any{"title": "x"})
	require.ErrorIs(t, err, ErrInvalidChoice)

	if diff := cmp.Diff(NewStrictStruct(Members{"name": String{}}), Recognize(s)); diff != "" {
		t.Error(diff)
	}
}

func TestSuccessionBrokenConverterPanics(t *testing.T) {
	s := NewSuccession(
		Int{},
		Converter(func(data any) any { return data }),
		String{},
	)
	require.Panics(t, func() {
		_, _ = s.Resolve(Scope{}, 1)
	})
}

func TestAttractionConstruction(t *testing.T) {
	noop := Converter(func(data any) any { return data })

	require.Panics(t, func() { NewSuccession() })
	require.Panics(t, func() { NewSuccession(noop, Int{}) })
	require.Panics(t, func() { NewReduction(Int{}, noop) })
	require.Panics(t, func() { NewReduction(Int{}, "x", Int{}) })
	require.NotPanics(t, func() {
		NewReduction(Int{}, func(data any) any { return data }, Int{})
	})
}

func TestStructConstruction(t *testing.T) {
	require.Panics(t, func() {
		NewStruct(Members{"a": Int{}}, Members{"a": String{}})
	})
	require.Panics(t, func() {
		NewStruct(Members{"a": nil}, nil)
	})
}

func TestStructResolveOmitsAbsentMembers(t *testing.T) {
	s := NewStruct(
		Members{"name": String{}},
		Members{"arches": NewList(Regex{}), "size": Int{}},
	)

	got, err := s.Resolve(Scope{}, map[string]any{"name": "x", "size": 1})
	require.NoError(t, err)
	if diff := cmp.Diff(map[string]any{"name": "x", "size": 1}, got); diff != "" {
		t.Error(diff)
	}
}

func TestRecognize(t *testing.T) {
	t.Parallel()

	s := NewScopedYAMLFile(NewStruct(
		Members{
			"template": RelativeFilePath{},
			"arches":   NewList(Regex{}),
		},
		Members{
			"suite": NewYAMLFile(NewDict(Float{})),
			"case":  NewClass(func(_ Scope, data any) (int, error) { return 0, nil }),
		},
	))

	want := &Struct{
		Required: Members{
			"template": String{},
			"arches":   &List{Element: Type[*Regexp]{}},
		},
		Optional: Members{
			"suite": &Dict{Value: Float{}},
			"case":  Any{},
		},
	}
	got := Recognize(s)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff(want, Recognize(got)); diff != "" {
		t.Errorf("recognition is not idempotent: %s", diff)
	}
}

func TestRecognizeSelfReference(t *testing.T) {
	t.Parallel()

	c := NewChoice(Null{}, Regex{})
	c.Add(NewList(c), NewStruct(nil, Members{"not": c}))

	got, ok := Recognize(c).(*Choice)
	require.True(t, ok)
	require.NotSame(t, c, got)

	alternatives := got.Alternatives()
	require.Len(t, alternatives, 4)
	require.Equal(t, Null{}, alternatives[0])
	require.Equal(t, Type[*Regexp]{}, alternatives[1])
	require.Same(t, got, alternatives[2].(*List).Element)
	require.Same(t, got, alternatives[3].(*Struct).Optional["not"])

	data := []any{nil, map[string]any{"not": []any{"a.*"}}}
	resolved, err := c.Resolve(Scope{}, data)
	require.NoError(t, err)
	require.NoError(t, got.Validate(resolved))
	require.Error(t, got.Validate(data))
}

func TestClass(t *testing.T) {
	t.Parallel()

	type named struct{ name string }
	s := NewList(NewClass(func(_ Scope, data any) (*named, error) {
		str, ok := data.(string)
		if !ok {
			return nil, errors.New("not a name")
		}
		if str == "" {
			return nil, Errorf(ErrInvalidValue, "Empty name")
		}
		return &named{name: str}, nil
	}))

	got, err := s.Resolve(Scope{Log: logr.Discard()}, []any{"a", "b"})
	require.NoError(t, err)
	require.Equal(t, []any{&named{name: "a"}, &named{name: "b"}}, got)

	_, err = s.Resolve(Scope{}, []any{"a", 1})
	require.ErrorIs(t, err, ErrInvalidValue)
	require.EqualError(t, err, "Invalid value at index 1:\nCannot construct object:\nnot a name")

	_, err = s.Resolve(Scope{}, []any{""})
	require.EqualError(t, err, "Invalid value at index 0:\nEmpty name")
}
