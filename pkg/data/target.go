package data

import (
	"fmt"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Qualifier names a dimension of a Target which patterns can test.
type Qualifier string

const (
	Trees      = Qualifier("trees")
	Arches     = Qualifier("arches")
	Components = Qualifier("components")
	Sets       = Qualifier("sets")
	Sources    = Qualifier("sources")
)

// Qualifiers lists every qualifier.
var Qualifiers = []Qualifier{Trees, Arches, Components, Sets, Sources}

// Values is the value of a Target qualifier: either unconstrained, matching
// anything, or a (possibly empty) set of strings. The zero Values is
// unconstrained.
type Values struct {
	set sets.Set[string]
}

// Any returns unconstrained Values.
func Any() Values {
	return Values{}
}

// Of returns Values holding exactly the specified strings.
func Of(values ...string) Values {
	return Values{set: sets.New(values...)}
}

// OfSet returns Values holding a copy of s. A nil s gives empty, not
// unconstrained, Values.
func OfSet(s sets.Set[string]) Values {
	return Values{set: sets.New[string]().Union(s)}
}

// Constrained reports whether the Values are a set rather than "anything".
func (v Values) Constrained() bool {
	return v.set != nil
}

// Has reports whether the Values include s. Unconstrained Values include
// anything.
func (v Values) Has(s string) bool {
	return !v.Constrained() || v.set.Has(s)
}

// List returns the sorted values, or nil if unconstrained.
func (v Values) List() []string {
	if !v.Constrained() {
		return nil
	}
	return sets.List(v.set)
}

func (v Values) String() string {
	if !v.Constrained() {
		return "<any>"
	}
	return "{" + strings.Join(v.List(), ", ") + "}"
}

// Target describes what a run is executed on. Patterns are matched against
// it.
type Target struct {
	Trees      Values
	Arches     Values
	Components Values
	Sets       Values
	Sources    Values
}

// Values returns the target's values for the qualifier.
func (t *Target) Values(q Qualifier) Values {
	switch q {
	case Trees:
		return t.Trees
	case Arches:
		return t.Arches
	case Components:
		return t.Components
	case Sets:
		return t.Sets
	case Sources:
		return t.Sources
	default:
		panic(fmt.Sprintf("unknown qualifier %q", q))
	}
}

func (t *Target) String() string {
	parts := make([]string, 0, len(Qualifiers))
	for _, q := range Qualifiers {
		parts = append(parts, fmt.Sprintf("%s=%s", q, t.Values(q)))
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}
