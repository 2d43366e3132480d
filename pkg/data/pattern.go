package data

import (
	"fmt"

	"github.com/kpet-go/kpet/pkg/schema"
)

// Boolean operator keys of pattern mappings.
const (
	opNot = "not"
	opAnd = "and"
	opOr  = "or"
)

// patternSchema accepts pattern rules.
//
// A rule is a mapping of operators and qualifiers to rules, or a list of
// rules. A qualifier maps to a value test: null, a regular expression, a
// list of value tests, or a mapping of operators to value tests. Qualifiers
// cannot be nested, and a bare value test is only valid under a qualifier.
var patternSchema = newPatternSchema()

func newPatternSchema() *schema.Choice {
	value := schema.NewChoice()
	value.Add(
		schema.Null{},
		schema.Regex{},
		schema.NewList(value),
		schema.NewStruct(nil, schema.Members{opNot: value, opAnd: value, opOr: value}),
	)

	rule := schema.NewChoice()
	members := schema.Members{opNot: rule, opAnd: rule, opOr: rule}
	for _, q := range Qualifiers {
		members[string(q)] = value
	}
	rule.Add(
		schema.NewStruct(nil, members),
		schema.NewList(rule),
	)
	return rule
}

// Pattern is a boolean expression over Target qualifiers.
type Pattern struct {
	data any
}

// NewPattern validates rule data and compiles it into a Pattern.
func NewPattern(data any) (*Pattern, error) {
	resolved, err := patternSchema.Resolve(schema.Scope{}, data)
	if err != nil {
		return nil, schema.Wrap(err, "Invalid pattern")
	}
	return &Pattern{data: resolved}, nil
}

func newPattern(_ schema.Scope, data any) (*Pattern, error) {
	return NewPattern(data)
}

// AlwaysMatches returns the empty pattern, which matches any target.
func AlwaysMatches() *Pattern {
	return &Pattern{data: map[string]any{}}
}

// Matches reports whether the target satisfies the pattern.
//
// A qualifier with unconstrained target values satisfies any value test,
// including a null test.
func (p *Pattern) Matches(target *Target) bool {
	return match(target, true, p.data, "")
}

// match evaluates node in the context of qualifier, combining the results
// of its entries or elements with AND if and is set, and with OR otherwise.
func match(target *Target, and bool, node any, qualifier Qualifier) bool {
	switch n := node.(type) {
	case map[string]any:
		result := and
		for key, child := range n {
			var r bool
			switch key {
			case opNot:
				r = !match(target, true, child, qualifier)
			case opAnd:
				r = match(target, true, child, qualifier)
			case opOr:
				r = match(target, false, child, qualifier)
			default:
				if qualifier != "" {
					panic(fmt.Sprintf("qualifier %q is specified under qualifier %q", key, qualifier))
				}
				r = match(target, true, child, Qualifier(key))
			}
			result = combine(and, result, r)
		}
		return result
	case []any:
		result := and
		for _, child := range n {
			result = combine(and, result, match(target, true, child, qualifier))
		}
		return result
	case *schema.Regexp:
		values := qualified(target, qualifier)
		if !values.Constrained() {
			return true
		}
		for v := range values.set {
			if n.MatchString(v) {
				return true
			}
		}
		return false
	case nil:
		return !qualified(target, qualifier).Constrained()
	default:
		panic(fmt.Sprintf("unexpected pattern node of type %T", node))
	}
}

func qualified(target *Target, qualifier Qualifier) Values {
	if qualifier == "" {
		panic("value test outside of a qualifier")
	}
	return target.Values(qualifier)
}

func combine(and, acc, r bool) bool {
	if and {
		return acc && r
	}
	return acc || r
}
