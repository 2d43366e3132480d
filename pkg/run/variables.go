package run

import (
	"fmt"
	"strings"

	"github.com/kpet-go/kpet/pkg/data"
	"k8s.io/apimachinery/pkg/util/sets"
)

// ResolveVariables applies NAME=VALUE assignments over the defaults of the
// variable definitions. Every assigned variable must be defined, and every
// variable without a default must be assigned.
func ResolveVariables(defs map[string]*data.Variable, assignments []string) (map[string]string, error) {
	values := map[string]string{}
	for name, def := range defs {
		if def.Default != nil {
			values[name] = *def.Default
		}
	}

	for _, assignment := range assignments {
		name, value, ok := strings.Cut(assignment, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: Invalid variable assignment: %q", ErrInvalidVariables, assignment)
		}
		values[name] = value
	}

	var unknown []string
	for name := range values {
		if _, ok := defs[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: Unknown variables specified: %s.\n"+
			"Run \"kpet variable list\" to see recognized variables.",
			ErrInvalidVariables, strings.Join(sets.List(sets.New(unknown...)), ", "))
	}

	var unset []string
	for name := range defs {
		if _, ok := values[name]; !ok {
			unset = append(unset, name)
		}
	}
	if len(unset) > 0 {
		return nil, fmt.Errorf("%w: Required variables not set: %s.\n"+
			"Run \"kpet variable list\" to see variable descriptions.\n"+
			"Use -V/--variable NAME=VALUE option to specify variable values.",
			ErrInvalidVariables, strings.Join(sets.List(sets.New(unset...)), ", "))
	}
	return values, nil
}
