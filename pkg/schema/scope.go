package schema

import (
	"io/fs"
	"path"
	"strings"

	"github.com/go-logr/logr"
)

// Scope is the context data is resolved in. Relative file paths met during
// resolution are looked up in FS, relative to Dir.
type Scope struct {
	// FS holds the files referenced by the data.
	FS fs.FS
	// Dir is the slash-separated directory within FS relative paths are
	// resolved against. Empty means the root of FS.
	Dir string
	Log logr.Logger
}

// NewScope returns a Scope resolving paths against the root of fsys.
func NewScope(fsys fs.FS, log logr.Logger) Scope {
	return Scope{FS: fsys, Dir: ".", Log: log}
}

// Sub returns a copy of the scope resolving relative paths against dir.
func (s Scope) Sub(dir string) Scope {
	s.Dir = dir
	return s
}

// Path resolves name to a clean path within the scope's FS. Paths starting
// with a slash are taken relative to the root of the FS.
func (s Scope) Path(name string) (string, error) {
	var p string
	if strings.HasPrefix(name, "/") {
		p = path.Clean(strings.TrimLeft(name, "/"))
	} else {
		dir := s.Dir
		if dir == "" {
			dir = "."
		}
		p = path.Join(dir, name)
	}
	if p == "" {
		p = "."
	}
	if !fs.ValidPath(p) {
		return "", Errorf(ErrInvalidValue, "Path %q is outside of the database", name)
	}
	return p, nil
}
