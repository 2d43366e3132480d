package data

import "github.com/kpet-go/kpet/pkg/schema"

// DefaultRole is the role of cases not specifying one.
const DefaultRole = "STANDALONE"

// Case is a single test of a Suite.
type Case struct {
	ID                 string
	Name               string
	MaxDurationSeconds int
	Pattern            *Pattern
	// HostTypeRegex selects the host types the case can run on. Nil means
	// the suite's selection applies.
	HostTypeRegex *schema.Regexp
	// Sets the case belongs to. Nil means the suite's sets apply.
	Sets        []string
	Role        string
	Environment map[string]string
	Maintainers []string
	Waived      bool
	URLSuffix   string
	// Paths of templates within the database.
	HostRequires string
	Partitions   string
	Kickstart    string
}

var caseSchema = schema.NewStruct(
	schema.Members{
		"name":                 schema.String{},
		"max_duration_seconds": schema.Int{},
	},
	schema.Members{
		"id":              schema.String{},
		"pattern":         schema.NewClass(newPattern),
		"host_type_regex": schema.Regex{},
		"sets":            setsSchema,
		"role":            schema.String{},
		"environment":     environmentSchema,
		"maintainers":     maintainersSchema,
		"waived":          schema.Boolean{},
		"url_suffix":      schema.String{},
		"host_requires":   schema.RelativeFilePath{},
		"partitions":      schema.RelativeFilePath{},
		"kickstart":       schema.RelativeFilePath{},
	},
)

func newCase(scope schema.Scope, data any) (*Case, error) {
	m, err := resolveObject("Case", caseSchema, scope, data)
	if err != nil {
		return nil, err
	}
	c := &Case{
		ID:                 getOr(m, "id", ""),
		Name:               m["name"].(string),
		MaxDurationSeconds: m["max_duration_seconds"].(int),
		Pattern:            getOr(m, "pattern", AlwaysMatches()),
		Sets:               getList[string](m, "sets"),
		Role:               getOr(m, "role", DefaultRole),
		Environment:        environment(m),
		Maintainers:        getList[string](m, "maintainers"),
		Waived:             getOr(m, "waived", false),
		URLSuffix:          getOr(m, "url_suffix", ""),
		HostRequires:       getOr(m, "host_requires", ""),
		Partitions:         getOr(m, "partitions", ""),
		Kickstart:          getOr(m, "kickstart", ""),
	}
	c.HostTypeRegex, _ = get[*schema.Regexp](m, "host_type_regex")
	return c, nil
}

// EffectiveSets returns the sets the case belongs to within suite.
func (c *Case) EffectiveSets(suite *Suite) []string {
	if c.Sets != nil {
		return c.Sets
	}
	return suite.Sets
}

// Matches reports whether the case of suite should run on the target.
// With sets specified in the target, the case must belong to one of them.
func (c *Case) Matches(target *Target, suite *Suite) bool {
	if !c.Pattern.Matches(target) {
		return false
	}
	if !target.Sets.Constrained() {
		return true
	}
	for _, s := range c.EffectiveSets(suite) {
		if target.Sets.Has(s) {
			return true
		}
	}
	return false
}
