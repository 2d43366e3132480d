package data

import "github.com/kpet-go/kpet/pkg/schema"

// Suite is a collection of test cases sharing maintainers and, usually, a
// location.
type Suite struct {
	ID       string
	Name     string
	Location string
	Origin   string
	// Pattern must match for any of the cases to run.
	Pattern       *Pattern
	HostTypeRegex *schema.Regexp
	Sets          []string
	Maintainers   []string
	Environment   map[string]string
	// Paths of templates within the database.
	HostRequires string
	Partitions   string
	Kickstart    string
	Cases        []*Case
}

func suiteOptional() schema.Members {
	return schema.Members{
		"id":              schema.String{},
		"location":        schema.String{},
		"origin":          schema.String{},
		"maintainers":     maintainersSchema,
		"sets":            setsSchema,
		"pattern":         schema.NewClass(newPattern),
		"host_type_regex": schema.Regex{},
		"host_requires":   schema.RelativeFilePath{},
		"partitions":      schema.RelativeFilePath{},
		"kickstart":       schema.RelativeFilePath{},
		"environment":     environmentSchema,
	}
}

// suiteSchema accepts the legacy suite format, naming the suite with
// "description", and the current one, using "name".
var suiteSchema = schema.NewSuccession(
	schema.NewStruct(schema.Members{
		"description": schema.String{},
		"cases":       schema.NewList(schema.NewClass(newCase)),
	}, suiteOptional()),
	schema.Converter(renameMember("description", "name")),
	schema.NewStruct(schema.Members{
		"name":  schema.String{},
		"cases": schema.NewList(schema.NewClass(newCase)),
	}, suiteOptional()),
)

func renameMember(from, to string) schema.Converter {
	return func(data any) any {
		m, _ := schema.AsMap(data)
		out := make(map[string]any, len(m))
		for k, v := range m {
			if k == from {
				k = to
			}
			out[k] = v
		}
		return out
	}
}

func newSuite(scope schema.Scope, data any) (*Suite, error) {
	m, err := resolveObject("Suite", suiteSchema, scope, data)
	if err != nil {
		return nil, err
	}
	s := &Suite{
		ID:           getOr(m, "id", ""),
		Name:         m["name"].(string),
		Location:     getOr(m, "location", ""),
		Origin:       getOr(m, "origin", ""),
		Pattern:      getOr(m, "pattern", AlwaysMatches()),
		Sets:         getList[string](m, "sets"),
		Maintainers:  getList[string](m, "maintainers"),
		Environment:  environment(m),
		HostRequires: getOr(m, "host_requires", ""),
		Partitions:   getOr(m, "partitions", ""),
		Kickstart:    getOr(m, "kickstart", ""),
		Cases:        getList[*Case](m, "cases"),
	}
	s.HostTypeRegex, _ = get[*schema.Regexp](m, "host_type_regex")
	return s, nil
}

// Matches reports whether the suite's pattern matches the target. Cases
// still have to match on their own.
func (s *Suite) Matches(target *Target) bool {
	return s.Pattern.Matches(target)
}

// MatchingCases returns the cases of the suite which should run on the
// target, or nil if the suite itself doesn't match.
func (s *Suite) MatchingCases(target *Target) []*Case {
	if !s.Matches(target) {
		return nil
	}
	var cases []*Case
	for _, c := range s.Cases {
		if c.Matches(target, s) {
			cases = append(cases, c)
		}
	}
	return cases
}
