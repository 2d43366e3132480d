// Package run selects the suites and cases to execute for a target, places
// them onto hosts, and renders the job description.
package run

import (
	"context"
	"sort"

	"github.com/go-logr/logr"
	"github.com/kpet-go/kpet/pkg/data"
	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/kpet-go/kpet/pkg/schema"
)

// Suite is a database suite with only the cases selected for a host.
type Suite struct {
	*data.Suite
	// Cases shadows the suite's full case list.
	Cases []*data.Case
}

// Host is a machine the selected cases are run on.
type Host struct {
	// Type is nil when the database defines no host types.
	Type   *data.HostType
	Suites []*Suite
}

// Duration returns the sum of the maximum durations of the host's cases.
func (h *Host) Duration() int {
	total := 0
	for _, s := range h.Suites {
		for _, c := range s.Cases {
			total += c.MaxDurationSeconds
		}
	}
	return total
}

// Recipeset is a group of hosts which are reserved together.
type Recipeset struct {
	Name  string
	Hosts []*Host
}

// Run is the result of selecting the database's suites for a target.
type Run struct {
	DB         *data.Base
	Target     *data.Target
	Recipesets []*Recipeset
}

// placement is a suite with the cases still waiting for a host.
type placement struct {
	suite *data.Suite
	cases []*data.Case
}

// New selects the suites and cases matching the target and distributes them
// over hosts. Without host types in the database everything runs on a single
// host. Otherwise each case goes to the first host, in recipeset order,
// whose type matches the case's host type regex, falling back to the
// suite's and then the database's. Cases no host accepts are dropped.
func New(ctx context.Context, db *data.Base, target *data.Target) *Run {
	log := logr.FromContextOrDiscard(ctx)
	r := &Run{DB: db, Target: target}

	var pool []*placement
	for _, s := range db.Suites {
		if cases := s.MatchingCases(target); len(cases) > 0 {
			pool = append(pool, &placement{suite: s, cases: cases})
		}
	}

	if len(db.HostTypes) == 0 {
		if len(pool) > 0 {
			host := &Host{}
			for _, p := range pool {
				host.Suites = append(host.Suites, &Suite{Suite: p.suite, Cases: p.cases})
			}
			r.Recipesets = []*Recipeset{{Hosts: []*Host{host}}}
		}
		return r
	}

	for _, l := range recipesetLayout(db) {
		rs := &Recipeset{Name: l.name}
		for _, name := range l.hostTypes {
			hostType, ok := db.HostTypes[name]
			if !ok {
				continue
			}
			if host := takeCases(db, pool, hostType); host != nil {
				rs.Hosts = append(rs.Hosts, host)
			}
		}
		if len(rs.Hosts) > 0 {
			r.Recipesets = append(r.Recipesets, rs)
		}
	}

	for _, p := range pool {
		for _, c := range p.cases {
			log.V(logging.DebugLevel).Info("no host type accepts case",
				logging.Suite, p.suite.Name,
				logging.Case, c.Name)
		}
	}
	return r
}

type layout struct {
	name      string
	hostTypes []string
}

// recipesetLayout returns the database's recipesets sorted by name. Without
// recipesets, every host type gets one of its own.
func recipesetLayout(db *data.Base) []layout {
	var layouts []layout
	if len(db.Recipesets) == 0 {
		for _, name := range db.HostTypeNames() {
			layouts = append(layouts, layout{name: name, hostTypes: []string{name}})
		}
		return layouts
	}
	for _, name := range db.RecipesetNames() {
		layouts = append(layouts, layout{name: name, hostTypes: db.Recipesets[name]})
	}
	return layouts
}

// takeCases moves the cases accepting hostType out of the pool onto a new
// host, returning nil if there are none.
func takeCases(db *data.Base, pool []*placement, hostType *data.HostType) *Host {
	host := &Host{Type: hostType}
	for _, p := range pool {
		var taken, left []*data.Case
		for _, c := range p.cases {
			if re := hostTypeRegex(db, p.suite, c); re != nil && re.MatchString(hostType.Name) {
				taken = append(taken, c)
			} else {
				left = append(left, c)
			}
		}
		p.cases = left
		if len(taken) > 0 {
			host.Suites = append(host.Suites, &Suite{Suite: p.suite, Cases: taken})
		}
	}
	if len(host.Suites) == 0 {
		return nil
	}
	return host
}

func hostTypeRegex(db *data.Base, s *data.Suite, c *data.Case) *schema.Regexp {
	switch {
	case c.HostTypeRegex != nil:
		return c.HostTypeRegex
	case s.HostTypeRegex != nil:
		return s.HostTypeRegex
	default:
		return db.HostTypeRegex
	}
}

// Hosts returns every host of the run, in recipeset order.
func (r *Run) Hosts() []*Host {
	var hosts []*Host
	for _, rs := range r.Recipesets {
		hosts = append(hosts, rs.Hosts...)
	}
	return hosts
}

// Counts returns the number of selected suites, cases and hosts. A suite
// split over several hosts is counted once per host.
func (r *Run) Counts() (suites, cases, hosts int) {
	for _, h := range r.Hosts() {
		hosts++
		suites += len(h.Suites)
		for _, s := range h.Suites {
			cases += len(s.Cases)
		}
	}
	return suites, cases, hosts
}

// CaseNames returns the sorted names of every case in the run.
func (r *Run) CaseNames() []string {
	var names []string
	for _, h := range r.Hosts() {
		for _, s := range h.Suites {
			for _, c := range s.Cases {
				names = append(names, c.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}
