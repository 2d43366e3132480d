package run

import (
	"fmt"
	"slices"

	"github.com/kpet-go/kpet/pkg/data"
	"github.com/kpet-go/kpet/pkg/schema"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Selection is what the user asked a run to be generated for.
type Selection struct {
	// Tree is the name of the kernel tree, empty if any tree is fine.
	Tree string
	// Arch is the name of the architecture, empty if any is fine.
	Arch string
	// Components matches the names of extra components built into the
	// kernel. Nil means no extra components were built.
	Components *schema.Regexp
	// Sets matches the names of the test sets to restrict the run to. Nil
	// means no restriction.
	Sets *schema.Regexp
	// Sources are the files changed by the tested patches. Nil means the
	// whole kernel is tested.
	Sources sets.Set[string]
}

// NewTarget checks the selection against the database and returns the target
// patterns will be matched against.
func NewTarget(db *data.Base, sel Selection) (*data.Target, error) {
	target := &data.Target{
		Trees:      data.Any(),
		Arches:     data.Any(),
		Components: data.Of(),
		Sets:       data.Any(),
		Sources:    data.Any(),
	}

	if sel.Tree != "" {
		if _, ok := db.Trees[sel.Tree]; !ok {
			return nil, fmt.Errorf("%w: Tree %q not found", ErrInvalidSelection, sel.Tree)
		}
		target.Trees = data.Of(sel.Tree)
	}

	if sel.Arch != "" {
		if !slices.Contains(db.Arches, sel.Arch) {
			return nil, fmt.Errorf("%w: Architecture %q not found", ErrInvalidSelection, sel.Arch)
		}
		if sel.Tree != "" && !db.Trees[sel.Tree].Supports(sel.Arch) {
			return nil, fmt.Errorf("%w: Arch %q not supported by tree %q", ErrInvalidSelection, sel.Arch, sel.Tree)
		}
		target.Arches = data.Of(sel.Arch)
	}

	if sel.Components != nil {
		target.Components = data.OfSet(matchingKeys(db.Components, sel.Components))
	}

	if sel.Sets != nil {
		matched := matchingKeys(db.Sets, sel.Sets)
		if len(db.Sets) > 0 && matched.Len() == 0 {
			return nil, fmt.Errorf("%w: No test sets matched specified regular expression: %s",
				ErrInvalidSelection, sel.Sets)
		}
		target.Sets = data.OfSet(matched)
	}

	if sel.Sources != nil {
		target.Sources = data.OfSet(sel.Sources)
	}
	return target, nil
}

func matchingKeys(m map[string]string, re *schema.Regexp) sets.Set[string] {
	matched := sets.New[string]()
	for k := range m {
		if re.MatchString(k) {
			matched.Insert(k)
		}
	}
	return matched
}

// singleValue returns the only value of v, or an error naming what is
// missing if v is unconstrained or holds several values.
func singleValue(v data.Values, what string) (string, error) {
	values := v.List()
	if len(values) != 1 {
		return "", fmt.Errorf("%w: a single %s is required, got %s", ErrInvalidSelection, what, v)
	}
	return values[0], nil
}
