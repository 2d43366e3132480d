// Package commons holds what kpet commands share: the settings, database
// loading, and error reporting.
package commons

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/kpet-go/kpet/pkg/config"
	"github.com/kpet-go/kpet/pkg/data"
	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/kpet-go/kpet/pkg/metrics"
	"github.com/kpet-go/kpet/pkg/output"
	"github.com/kpet-go/kpet/pkg/patch"
	"github.com/kpet-go/kpet/pkg/schema"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/sets"
)

// Settings are the resolved global options of a command invocation.
type Settings struct {
	Config *config.Config
	// Metrics is nil unless a metrics textfile was requested.
	Metrics  *metrics.Reporter
	Textfile *metrics.Textfile
}

type settingsKey struct{}

// WithSettings returns a context carrying the settings.
func WithSettings(ctx context.Context, s *Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

// SettingsFrom returns the settings carried by ctx, or defaults if there are
// none.
func SettingsFrom(ctx context.Context) *Settings {
	if s, ok := ctx.Value(settingsKey{}).(*Settings); ok {
		return s
	}
	return &Settings{Config: &config.Config{DB: "."}}
}

// LoadDatabase loads the database the settings point to. The returned file
// system holds the database files, for rendering templates.
func LoadDatabase(ctx context.Context) (*data.Base, fs.FS, error) {
	s := SettingsFrom(ctx)
	log := logr.FromContextOrDiscard(ctx)
	dir := s.Config.DB
	fsys := os.DirFS(dir)
	if !data.IsDirValid(fsys, ".") {
		return nil, nil, fmt.Errorf("%q is not a database directory.\n"+
			"Use the --db option to specify an alternative database directory", dir)
	}

	start := time.Now()
	db, err := data.Load(ctx, fsys, ".")
	if err != nil {
		return nil, nil, err
	}
	elapsed := time.Since(start)
	log.V(logging.DebugLevel).Info("database loaded", logging.Database, dir, logging.Duration, elapsed)
	if s.Metrics != nil {
		s.Metrics.ReportLoad(ctx, elapsed)
	}
	return db, fsys, nil
}

// LoadSourceSet returns the source files changed by the patches at the
// locations, paths relative to the working directory.
func LoadSourceSet(ctx context.Context, locations []string) ([]string, error) {
	fsys, names, err := hostFS(locations)
	if err != nil {
		return nil, err
	}
	srcs, err := patch.LoadSourceSet(ctx, fsys, names)
	if err != nil {
		return nil, err
	}
	return sets.List(srcs), nil
}

// hostFS returns the file system holding the local paths, with the paths
// converted to names within it. URLs are left alone.
func hostFS(paths []string) (fs.FS, []string, error) {
	root := "/"
	names := make([]string, len(paths))
	for i, p := range paths {
		if patch.IsRemote(p) {
			names[i] = p
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, nil, fmt.Errorf("getting absolute path: %w", err)
		}
		// fs.FS does not allow the drive prefix for absolute Windows paths.
		if vol := filepath.VolumeName(abs); vol != "" {
			root = vol + `\`
			abs = abs[len(vol):]
		}
		names[i] = strings.TrimLeft(filepath.ToSlash(abs), "/")
	}
	return os.DirFS(root), names, nil
}

// WriteOutput writes s to the file at path, or to w if path is empty.
func WriteOutput(w io.Writer, path, s string) error {
	if path == "" {
		_, err := io.WriteString(w, s)
		return err
	}
	return errors.Wrapf(os.WriteFile(path, []byte(s), 0o644), "error writing to file at path %s", path)
}

// PrintError reports a failed command. The message is red on terminals.
func PrintError(w io.Writer, err error) {
	color.New(color.FgRed).Fprintf(w, "Error: %v\n", err)
}

// ErrFatalf prints the formatted message like PrintError and exits with
// status 1.
func ErrFatalf(format string, a ...interface{}) {
	PrintError(os.Stderr, fmt.Errorf(format, a...))
	os.Exit(1)
}

// AddOutputFlag registers the -o/--output flag of listing commands.
func AddOutputFlag(cmd *cobra.Command, format *string) {
	cmd.Flags().StringVarP(format, "output", "o", string(output.FormatTable), "Output format: table, json, yaml")
}

// PrintEntries writes a listing to the command's output in the format.
func PrintEntries(cmd *cobra.Command, format string, kind output.Kind, entries []output.Entry) error {
	printer, err := output.NewPrinter(output.Format(format))
	if err != nil {
		return err
	}
	return printer.PrintEntries(cmd.OutOrStdout(), kind, entries)
}

// Described returns the entries of a name to description map, sorted by name,
// keeping only names fully matched by re. A nil re keeps every name.
func Described(m map[string]string, re *schema.Regexp) []output.Entry {
	var entries []output.Entry
	for _, name := range sets.List(sets.KeySet(m)) {
		if re == nil || re.MatchString(name) {
			entries = append(entries, output.Entry{Name: name, Description: m[name]})
		}
	}
	return entries
}

// OptionalRegexp compiles the regex argument of a listing command, nil if
// there is none.
func OptionalRegexp(args []string) (*schema.Regexp, error) {
	if len(args) == 0 {
		return nil, nil
	}
	re, err := schema.CompileRegexp(args[0])
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", args[0], err)
	}
	return re, nil
}
