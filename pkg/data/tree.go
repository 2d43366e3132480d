package data

import (
	"slices"
	"strings"

	"github.com/kpet-go/kpet/pkg/schema"
)

// Tree is a kernel source tree runs can be generated for.
type Tree struct {
	// Name is the key of the tree in the database.
	Name        string
	Description string
	// Template is the path of the job template within the database.
	Template string
	// Arches are the names of the architectures supported by the tree.
	Arches []string

	archPatterns []*schema.Regexp
}

// archesSchema accepts a regex or a list of them, resolving to a list.
var archesSchema = schema.NewReduction(
	schema.Regex{},
	schema.Converter(toList),
	schema.NewList(schema.Regex{}),
)

// treeSchema accepts the legacy tree format, a bare template path, and the
// current one, a struct.
var treeSchema = schema.NewSuccession(
	schema.RelativeFilePath{},
	schema.Converter(func(data any) any {
		return map[string]any{"template": data}
	}),
	schema.NewStruct(
		schema.Members{
			"template": schema.RelativeFilePath{},
		},
		schema.Members{
			"description": schema.String{},
			"arches":      archesSchema,
		},
	),
)

func newTree(scope schema.Scope, data any) (*Tree, error) {
	m, err := resolveObject("Tree", treeSchema, scope, data)
	if err != nil {
		return nil, err
	}
	return &Tree{
		Description:  getOr(m, "description", ""),
		Template:     m["template"].(string),
		archPatterns: getList[*schema.Regexp](m, "arches"),
	}, nil
}

// resolveArches replaces the architecture patterns of the tree with the
// names of the available architectures they match. A tree without patterns
// supports every architecture.
func (t *Tree) resolveArches(available []string) error {
	if t.archPatterns == nil {
		t.Arches = slices.Clone(available)
		return nil
	}
	matched := map[string]bool{}
	for _, re := range t.archPatterns {
		found := false
		for _, arch := range available {
			if re.MatchString(arch) {
				matched[arch] = true
				found = true
			}
		}
		if !found {
			return schema.Errorf(schema.ErrInvalidReference,
				"Tree %q architecture regex %q does not match any of the available architectures: %s",
				t.Name, re, strings.Join(available, ", "))
		}
	}
	t.Arches = nil
	for _, arch := range available {
		if matched[arch] {
			t.Arches = append(t.Arches, arch)
		}
	}
	t.archPatterns = nil
	return nil
}

// Supports reports whether the tree supports the architecture.
func (t *Tree) Supports(arch string) bool {
	return slices.Contains(t.Arches, arch)
}
