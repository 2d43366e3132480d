// Package patch extracts the set of source files changed by kernel patches.
package patch

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-logr/logr"
	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/apimachinery/pkg/util/sets"
)

var (
	// ErrUnrecognizedFormat means the patch contents couldn't be parsed.
	ErrUnrecognizedFormat = errors.New("unrecognized patch format")
	// ErrUnrecognizedPathFormat means a path in a ---/+++ diff header is not
	// a file path with a top directory.
	ErrUnrecognizedPathFormat = fmt.Errorf("%w: unrecognized diff header path", ErrUnrecognizedFormat)
	// ErrRemoteLocation means a patch location is a URL.
	ErrRemoteLocation = errors.New("downloading patches is not supported")
)

// maxParallelReads bounds the number of patch files read at once.
const maxParallelReads = 8

var headerRegexp = regexp.MustCompile(`(?m)` +
	`^---$|` +
	`^--- (\S+)(\s.*)?$\n^\+\+\+ (\S+)(\s.*)?$|` +
	`^rename from (\S+)$\n^rename to (\S+)$`)

// sourceFromHeaderPath returns the source file path for a ---/+++ diff
// header path, with the top directory stripped, or false if the file
// doesn't exist on that side of the change.
func sourceFromHeaderPath(path string) (string, bool, error) {
	if path == "/dev/null" {
		return "", false, nil
	}
	slash := strings.Index(path, "/")
	if slash <= 0 || strings.HasSuffix(path, "/") {
		return "", false, fmt.Errorf("%w: %q", ErrUnrecognizedPathFormat, path)
	}
	return path[slash+1:], true, nil
}

// SourceSet returns the set of source file paths changed by the patch
// content. A "---" line starts a new patch, discarding anything that looked
// like a diff header before it, such as quotes in a commit message.
func SourceSet(content string) (sets.Set[string], error) {
	srcs := sets.New[string]()
	for _, m := range headerRegexp.FindAllStringSubmatch(content, -1) {
		oldPath, newPath, renameFrom, renameTo := m[1], m[3], m[5], m[6]
		switch {
		case m[0] == "---":
			srcs = sets.New[string]()
		case oldPath != "" && newPath != "":
			oldFile, oldExists, err := sourceFromHeaderPath(oldPath)
			if err != nil {
				return nil, fmt.Errorf("invalid path in a diff header: %w", err)
			}
			newFile, newExists, err := sourceFromHeaderPath(newPath)
			if err != nil {
				return nil, fmt.Errorf("invalid path in a diff header: %w", err)
			}
			if !oldExists && !newExists {
				return nil, fmt.Errorf("%w: no valid paths in a diff header", ErrUnrecognizedFormat)
			}
			if oldExists {
				srcs.Insert(oldFile)
			}
			if newExists {
				srcs.Insert(newFile)
			}
		default:
			srcs.Insert(renameFrom, renameTo)
		}
	}
	if srcs.Len() == 0 {
		return nil, fmt.Errorf("%w: no changed files", ErrUnrecognizedFormat)
	}
	return srcs, nil
}

// IsRemote reports whether the patch location is a URL rather than a path.
func IsRemote(location string) bool {
	u, err := url.Parse(location)
	return err == nil && u.Scheme != ""
}

// LoadSourceSet reads the patches at the locations from fsys and returns the
// union of the source files they change. Locations are read concurrently.
func LoadSourceSet(ctx context.Context, fsys fs.FS, locations []string) (sets.Set[string], error) {
	log := logr.FromContextOrDiscard(ctx)
	results := make([]sets.Set[string], len(locations))

	for _, location := range locations {
		if IsRemote(location) {
			return nil, fmt.Errorf("%w: %s", ErrRemoteLocation, location)
		}
	}

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(maxParallelReads)
	for i, location := range locations {
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := fs.ReadFile(fsys, location)
			if err != nil {
				return errors.Wrapf(err, "reading patch %s", location)
			}
			srcs, err := SourceSet(string(content))
			if err != nil {
				return errors.Wrapf(err, "can't parse contents of %s", location)
			}
			log.V(logging.DebugLevel).Info("parsed patch", logging.Location, location, logging.Count, srcs.Len())
			results[i] = srcs
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	srcs := sets.New[string]()
	for _, r := range results {
		srcs = srcs.Union(r)
	}
	return srcs, nil
}
