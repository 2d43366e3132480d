package data

import "github.com/kpet-go/kpet/pkg/schema"

// Members shared by several object kinds.
var (
	setsSchema = schema.NewReduction(
		schema.String{},
		schema.Converter(toList),
		schema.NewList(schema.String{}),
	)
	environmentSchema = schema.NewDict(schema.String{})
	maintainersSchema = schema.NewList(schema.String{})
)

// HostType describes a kind of machine cases can run on.
type HostType struct {
	// Name is the key of the host type in the database.
	Name        string
	Description string
	// IgnorePanic disables aborting on kernel panics on the host.
	IgnorePanic bool
	// Paths of templates within the database.
	HostRequires string
	Partitions   string
	Kickstart    string
	Tasks        string
	Environment  map[string]string
}

var hostTypeSchema = schema.NewStruct(nil, schema.Members{
	"description":   schema.String{},
	"ignore_panic":  schema.Boolean{},
	"host_requires": schema.RelativeFilePath{},
	"partitions":    schema.RelativeFilePath{},
	"kickstart":     schema.RelativeFilePath{},
	"tasks":         schema.RelativeFilePath{},
	"environment":   environmentSchema,
})

func newHostType(scope schema.Scope, data any) (*HostType, error) {
	m, err := resolveObject("HostType", hostTypeSchema, scope, data)
	if err != nil {
		return nil, err
	}
	return &HostType{
		Description:  getOr(m, "description", ""),
		IgnorePanic:  getOr(m, "ignore_panic", false),
		HostRequires: getOr(m, "host_requires", ""),
		Partitions:   getOr(m, "partitions", ""),
		Kickstart:    getOr(m, "kickstart", ""),
		Tasks:        getOr(m, "tasks", ""),
		Environment:  environment(m),
	}, nil
}

func environment(m members) map[string]string {
	env := getDict[string](m, "environment")
	if env == nil {
		env = map[string]string{}
	}
	return env
}
