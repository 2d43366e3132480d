package run

import (
	"strings"

	"github.com/kpet-go/kpet/pkg/patch"
)

// KernelType is the kind of a kernel location, combining the package format
// with whether it is a URL or a path, such as "tarball-url".
type KernelType string

const (
	TarballURL  = KernelType("tarball-url")
	RPMURL      = KernelType("rpm-url")
	RepoURL     = KernelType("repo-url")
	TarballPath = KernelType("tarball-path")
	RPMPath     = KernelType("rpm-path")
	RepoPath    = KernelType("repo-path")
)

// DetectKernelType guesses the type of a kernel location from its name.
func DetectKernelType(location string) KernelType {
	var format string
	switch {
	case strings.HasSuffix(location, ".tar.gz"):
		format = "tarball"
	case strings.HasSuffix(location, ".rpm"):
		format = "rpm"
	default:
		format = "repo"
	}
	if patch.IsRemote(location) {
		return KernelType(format + "-url")
	}
	return KernelType(format + "-path")
}
