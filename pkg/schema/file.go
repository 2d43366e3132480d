package schema

import (
	"io/fs"
	"path"

	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RelativeFilePath accepts a file path string and resolves it to the path
// within the scope's file system.
type RelativeFilePath struct{}

func (RelativeFilePath) Validate(data any) error {
	return String{}.Validate(data)
}

func (p RelativeFilePath) Resolve(scope Scope, data any) (any, error) {
	if err := p.Validate(data); err != nil {
		return nil, err
	}
	return scope.Path(data.(string))
}

func (RelativeFilePath) recognize(recognizing) Schema {
	return String{}
}

// YAMLFile accepts a YAML file path and resolves it to the file's contents,
// resolved with the Contents schema.
type YAMLFile struct {
	Contents Schema
	// Scoped makes paths within the contents resolve relative to the
	// file's directory, instead of the directory of the referencing data.
	Scoped bool
}

// NewYAMLFile returns a YAMLFile schema resolving the file's contents in the
// scope of the referencing data.
func NewYAMLFile(contents Schema) *YAMLFile {
	if contents == nil {
		panic("file contents schema is nil")
	}
	return &YAMLFile{Contents: contents}
}

// NewScopedYAMLFile returns a YAMLFile schema resolving the file's contents
// in the scope of the file's directory.
func NewScopedYAMLFile(contents Schema) *YAMLFile {
	f := NewYAMLFile(contents)
	f.Scoped = true
	return f
}

func (f *YAMLFile) Validate(data any) error {
	return String{}.Validate(data)
}

func (f *YAMLFile) Resolve(scope Scope, data any) (any, error) {
	if err := f.Validate(data); err != nil {
		return nil, err
	}
	name, err := scope.Path(data.(string))
	if err != nil {
		return nil, err
	}
	contents, err := loadYAML(scope.FS, name)
	if err != nil {
		return nil, &Error{Kind: ErrInvalidValue, Message: "Cannot load " + name, Cause: err}
	}
	if f.Scoped {
		scope = scope.Sub(path.Dir(name))
	}
	scope.Log.V(1).Info("resolving file", logging.File, name, logging.Dir, scope.Dir)
	resolved, err := f.Contents.Resolve(scope, contents)
	if err != nil {
		return nil, Wrap(err, "Invalid contents of %s", name)
	}
	return resolved, nil
}

func (f *YAMLFile) recognize(seen recognizing) Schema {
	return f.Contents.recognize(seen)
}

func loadYAML(fsys fs.FS, name string) (any, error) {
	if fsys == nil {
		return nil, errors.Errorf("no file system to read %s from", name)
	}
	raw, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrap(err, "reading file")
	}
	var contents any
	if err := yaml.Unmarshal(raw, &contents); err != nil {
		return nil, errors.Wrap(err, "parsing YAML")
	}
	return contents, nil
}
