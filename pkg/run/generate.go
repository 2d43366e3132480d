package run

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/kpet-go/kpet/pkg/data"
	"github.com/pkg/errors"
)

// maxTemplateLoads bounds the templates read while rendering a job, catching
// templates including themselves.
const maxTemplateLoads = 4096

func init() {
	if err := pongo2.RegisterFilter("xml", filterXML); err != nil {
		panic(err)
	}
}

// GenerateOptions are the run parameters which don't affect selection.
type GenerateOptions struct {
	Description string
	// Kernel is the location of the kernel build to test.
	Kernel    string
	Variables map[string]string
}

// Job is the data job templates are rendered with.
type Job struct {
	Description string
	Kernel      string
	KernelType  KernelType
	Tree        *data.Tree
	Arch        string
	// Components are the extra components built into the kernel.
	Components []string
	// Sources are the changed source files, nil if the whole kernel is
	// tested.
	Sources    []string
	Variables  map[string]string
	Recipesets []*Recipeset
}

// Job returns the template data for the run. The target must name a single
// tree and architecture.
func (r *Run) Job(opts GenerateOptions) (*Job, error) {
	treeName, err := singleValue(r.Target.Trees, "tree")
	if err != nil {
		return nil, err
	}
	arch, err := singleValue(r.Target.Arches, "architecture")
	if err != nil {
		return nil, err
	}
	tree, ok := r.DB.Trees[treeName]
	if !ok {
		return nil, fmt.Errorf("%w: Tree %q not found", ErrInvalidSelection, treeName)
	}
	variables := opts.Variables
	if variables == nil {
		variables = map[string]string{}
	}
	return &Job{
		Description: opts.Description,
		Kernel:      opts.Kernel,
		KernelType:  DetectKernelType(opts.Kernel),
		Tree:        tree,
		Arch:        arch,
		Components:  r.Target.Components.List(),
		Sources:     r.Target.Sources.List(),
		Variables:   variables,
		Recipesets:  r.Recipesets,
	}, nil
}

// Context returns the variables the job template is rendered with. Names of
// top-level variables are upper case, attributes of nested objects are
// snake case, the way database files name them.
func (j *Job) Context() pongo2.Context {
	recipesets := make([]map[string]any, 0, len(j.Recipesets))
	for _, rs := range j.Recipesets {
		hosts := make([]map[string]any, 0, len(rs.Hosts))
		for _, h := range rs.Hosts {
			hosts = append(hosts, hostContext(h))
		}
		recipesets = append(recipesets, map[string]any{"name": rs.Name, "hosts": hosts})
	}
	return pongo2.Context{
		"DESCRIPTION": j.Description,
		"KURL":        j.Kernel,
		"KURL_TYPE":   string(j.KernelType),
		"TREE":        j.Tree.Name,
		"ARCH":        j.Arch,
		"COMPONENTS":  j.Components,
		"SOURCES":     j.Sources,
		"VARIABLES":   j.Variables,
		"RECIPESETS":  recipesets,
	}
}

func hostContext(h *Host) map[string]any {
	host := map[string]any{
		"type_name":            "",
		"ignore_panic":         false,
		"host_requires":        "",
		"partitions":           "",
		"kickstart":            "",
		"tasks":                "",
		"environment":          map[string]string{},
		"max_duration_seconds": h.Duration(),
	}
	if t := h.Type; t != nil {
		host["type_name"] = t.Name
		host["ignore_panic"] = t.IgnorePanic
		host["host_requires"] = t.HostRequires
		host["partitions"] = t.Partitions
		host["kickstart"] = t.Kickstart
		host["tasks"] = t.Tasks
		host["environment"] = t.Environment
	}
	suites := make([]map[string]any, 0, len(h.Suites))
	for _, s := range h.Suites {
		cases := make([]map[string]any, 0, len(s.Cases))
		for _, c := range s.Cases {
			cases = append(cases, map[string]any{
				"id":                   c.ID,
				"name":                 c.Name,
				"max_duration_seconds": c.MaxDurationSeconds,
				"role":                 c.Role,
				"environment":          c.Environment,
				"maintainers":          c.Maintainers,
				"waived":               c.Waived,
				"url_suffix":           c.URLSuffix,
				"host_requires":        c.HostRequires,
				"partitions":           c.Partitions,
				"kickstart":            c.Kickstart,
			})
		}
		suites = append(suites, map[string]any{
			"id":            s.ID,
			"name":          s.Name,
			"location":      s.Location,
			"origin":        s.Origin,
			"maintainers":   s.Maintainers,
			"environment":   s.Environment,
			"host_requires": s.HostRequires,
			"partitions":    s.Partitions,
			"kickstart":     s.Kickstart,
			"cases":         cases,
		})
	}
	host["suites"] = suites
	return host
}

// Generate renders the tree's job template from fsys into w. Templates use
// Jinja syntax, with output autoescaped for XML. Other database files are
// rendered in place with the include tag, paths being relative to the root
// of fsys.
func (r *Run) Generate(w io.Writer, fsys fs.FS, opts GenerateOptions) error {
	job, err := r.Job(opts)
	if err != nil {
		return err
	}
	set := pongo2.NewSet("database", &fsLoader{fsys: fsys})
	set.Options.TrimBlocks = true
	set.Options.LStripBlocks = true

	tmpl, err := set.FromFile(job.Tree.Template)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	out, err := tmpl.Execute(job.Context())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrTemplate, err)
	}
	_, err = io.WriteString(w, out)
	return errors.Wrap(err, "writing job")
}

// fsLoader reads templates from a database file system.
type fsLoader struct {
	fsys  fs.FS
	loads int
}

// Abs resolves template names against the root of the file system,
// whichever template includes them.
func (l *fsLoader) Abs(_, name string) string {
	return path.Clean(strings.TrimPrefix(name, "/"))
}

func (l *fsLoader) Get(name string) (io.Reader, error) {
	if l.loads >= maxTemplateLoads {
		return nil, fmt.Errorf("loading %s: more than %d templates loaded, is an include recursive?",
			name, maxTemplateLoads)
	}
	l.loads++
	content, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, errors.Wrapf(err, "reading template %s", name)
	}
	return bytes.NewReader(content), nil
}

// filterXML escapes its input as XML character data, marking the result
// safe from further escaping.
func filterXML(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(in.String())); err != nil {
		return nil, &pongo2.Error{Sender: "filter:xml", OrigError: err}
	}
	return pongo2.AsSafeValue(buf.String()), nil
}
