// Package data loads the test database: the trees, architectures, host types
// and test suites runs are generated from, and the patterns selecting them.
package data

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/go-logr/logr"
	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/kpet-go/kpet/pkg/schema"
)

// IndexFile is the name of the database index file.
const IndexFile = "index.yaml"

// Variable is a template variable a run can assign.
type Variable struct {
	Name        string
	Description string
	// Default is nil if the variable must be assigned explicitly.
	Default *string
}

// Base is a loaded test database.
type Base struct {
	Description string
	// Arches lists the names of the known architectures.
	Arches     []string
	Trees      map[string]*Tree
	Components map[string]string
	Sets       map[string]string
	HostTypes  map[string]*HostType
	// HostTypeRegex selects host types for suites and cases not specifying
	// their own. Nil selects none.
	HostTypeRegex *schema.Regexp
	// Recipesets maps recipe set names to the names of host types which can
	// run together.
	Recipesets map[string][]string
	Suites     []*Suite
	Variables  map[string]*Variable
	Origins    map[string]string
}

var variableSchema = schema.NewStruct(
	schema.Members{"description": schema.String{}},
	schema.Members{"default": schema.String{}},
)

var baseSchema = schema.NewScopedYAMLFile(schema.NewStruct(
	schema.Members{
		"arches": schema.NewList(schema.String{}),
		"trees":  schema.NewDict(schema.NewClass(newTree)),
	},
	schema.Members{
		"description":     schema.String{},
		"components":      schema.NewDict(schema.String{}),
		"sets":            schema.NewDict(schema.String{}),
		"host_types":      schema.NewDict(schema.NewClass(newHostType)),
		"host_type_regex": schema.Regex{},
		"recipesets":      schema.NewDict(schema.NewNonEmptyList(schema.String{})),
		"suites":          schema.NewList(schema.NewScopedYAMLFile(schema.NewClass(newSuite))),
		"variables":       schema.NewDict(variableSchema),
		"origins":         schema.NewDict(schema.String{}),
	},
))

// IsDirValid reports whether dir in fsys holds a database.
func IsDirValid(fsys fs.FS, dir string) bool {
	info, err := fs.Stat(fsys, path.Join(dir, IndexFile))
	return err == nil && info.Mode().IsRegular()
}

// Load loads the database in dir of fsys and checks the references between
// its objects. Paths within the database are resolved to paths within fsys.
func Load(ctx context.Context, fsys fs.FS, dir string) (*Base, error) {
	log := logr.FromContextOrDiscard(ctx)

	m, err := resolveObject("Base", baseSchema, schema.NewScope(fsys, log), path.Join(dir, IndexFile))
	if err != nil {
		return nil, err
	}

	b := &Base{
		Description: getOr(m, "description", ""),
		Arches:      getList[string](m, "arches"),
		Trees:       getDict[*Tree](m, "trees"),
		Components:  getDict[string](m, "components"),
		Sets:        getDict[string](m, "sets"),
		HostTypes:   getDict[*HostType](m, "host_types"),
		Recipesets:  map[string][]string{},
		Suites:      getList[*Suite](m, "suites"),
		Variables:   map[string]*Variable{},
		Origins:     getDict[string](m, "origins"),
	}
	b.HostTypeRegex, _ = get[*schema.Regexp](m, "host_type_regex")
	for name, t := range b.Trees {
		t.Name = name
	}
	for name, h := range b.HostTypes {
		h.Name = name
	}
	for name, hostTypes := range getDict[[]any](m, "recipesets") {
		for _, h := range hostTypes {
			b.Recipesets[name] = append(b.Recipesets[name], h.(string))
		}
	}
	for name, v := range getDict[map[string]any](m, "variables") {
		variable := &Variable{Name: name, Description: v["description"].(string)}
		if def, ok := v["default"].(string); ok {
			variable.Default = &def
		}
		b.Variables[name] = variable
	}

	if err := b.check(log); err != nil {
		return nil, err
	}
	log.V(logging.DebugLevel).Info("loaded database",
		logging.Database, dir,
		logging.Count, len(b.Suites))
	return b, nil
}

// check verifies and resolves the references between objects of the
// database.
func (b *Base) check(log logr.Logger) error {
	for _, name := range b.TreeNames() {
		if err := b.Trees[name].resolveArches(b.Arches); err != nil {
			return err
		}
	}
	if err := b.checkHostTypeRegexes(); err != nil {
		return err
	}
	for name, hostTypes := range b.Recipesets {
		for _, h := range hostTypes {
			if _, ok := b.HostTypes[h]; !ok {
				log.Info("recipe set references an unknown host type",
					logging.Recipeset, name, logging.HostType, h)
			}
		}
	}
	if err := b.checkSuites(); err != nil {
		return err
	}
	return nil
}

func (b *Base) checkHostTypeRegexes() error {
	names := b.HostTypeNames()
	check := func(re *schema.Regexp, what string) error {
		if re == nil || slices.ContainsFunc(names, re.MatchString) {
			return nil
		}
		return schema.Errorf(schema.ErrInvalidReference,
			"%s host type regex %q does not match any of the available host types: %s",
			what, re, strings.Join(names, ", "))
	}

	if err := check(b.HostTypeRegex, "Database"); err != nil {
		return err
	}
	for _, s := range b.Suites {
		if err := check(s.HostTypeRegex, fmt.Sprintf("Suite %q", s.Name)); err != nil {
			return err
		}
		for _, c := range s.Cases {
			if err := check(c.HostTypeRegex, fmt.Sprintf("Suite %q case %q", s.Name, c.Name)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (b *Base) checkSuites() error {
	suiteIDs := map[string]int{}
	for _, s := range b.Suites {
		if err := b.checkOrigin(s); err != nil {
			return err
		}
		for _, set := range s.Sets {
			if _, ok := b.Sets[set]; !ok {
				return schema.Errorf(schema.ErrInvalidReference,
					"Suite %q set %q matches no sets", s.Name, set)
			}
		}

		caseIDs := map[string]int{}
		for _, c := range s.Cases {
			for _, set := range c.Sets {
				if _, ok := b.Sets[set]; !ok {
					return schema.Errorf(schema.ErrInvalidReference,
						"Suite %q case %q set %q matches no sets", s.Name, c.Name, set)
				}
			}
			if s.Sets != nil && c.Sets != nil {
				for _, set := range c.Sets {
					if !slices.Contains(s.Sets, set) {
						return schema.Errorf(schema.ErrInvalidReference,
							"Case sets are not a subset of suite sets in suite: %s case: %s", s.Name, c.Name)
					}
				}
			}
			if c.ID != "" {
				caseIDs[c.ID]++
			}
		}
		if repeated := repeatedKeys(caseIDs); len(repeated) > 0 {
			return schema.Errorf(schema.ErrInvalidStructure,
				"Suite %q has repeated case IDs: %s", s.Name, strings.Join(repeated, ", "))
		}
		if s.ID != "" {
			suiteIDs[s.ID]++
		}
	}
	if repeated := repeatedKeys(suiteIDs); len(repeated) > 0 {
		return schema.Errorf(schema.ErrInvalidStructure,
			"Database has repeated suite IDs: %s", strings.Join(repeated, ", "))
	}
	return nil
}

func (b *Base) checkOrigin(s *Suite) error {
	switch {
	case b.Origins == nil && s.Origin != "":
		return schema.Errorf(schema.ErrInvalidStructure,
			"Suite %q has origin specified, but available origins are not defined", s.Name)
	case b.Origins != nil && s.Origin == "":
		return schema.Errorf(schema.ErrInvalidStructure,
			"Suite %q has no origin specified", s.Name)
	case b.Origins != nil:
		if _, ok := b.Origins[s.Origin]; !ok {
			return schema.Errorf(schema.ErrInvalidReference,
				"Suite %q has unknown origin specified: %q", s.Name, s.Origin)
		}
	}
	return nil
}

func repeatedKeys(counts map[string]int) []string {
	var repeated []string
	for k, n := range counts {
		if n > 1 {
			repeated = append(repeated, k)
		}
	}
	slices.Sort(repeated)
	return repeated
}

// TreeNames returns the sorted names of the trees.
func (b *Base) TreeNames() []string {
	return sortedNames(b.Trees)
}

// HostTypeNames returns the sorted names of the host types.
func (b *Base) HostTypeNames() []string {
	return sortedNames(b.HostTypes)
}

// RecipesetNames returns the sorted names of the recipe sets.
func (b *Base) RecipesetNames() []string {
	return sortedNames(b.Recipesets)
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
