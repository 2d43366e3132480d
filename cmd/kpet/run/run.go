package run

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-logr/logr"
	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/pkg/data"
	"github.com/kpet-go/kpet/pkg/logging"
	"github.com/kpet-go/kpet/pkg/output"
	kpetrun "github.com/kpet-go/kpet/pkg/run"
	"github.com/kpet-go/kpet/pkg/schema"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/sets"
)

const examples = `# Generate a job for an x86_64 build of the upstream tree, testing a patch
kpet run generate -t upstream -a x86_64 -k https://example.com/kernel.tar.gz fix.mbox

# Restrict the run to the "net" test set and set a template variable
kpet run generate -t upstream -a x86_64 -k kernel.tar.gz -s net -V owner=me

# Print the cases a patch series would run
kpet run print-test-cases -t upstream series/*.patch`

var layoutDumper = spew.ConfigState{
	Indent:                  "  ",
	MaxDepth:                5,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// NewCmd returns the kpet run command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Test suite run",
		Example: examples,
	}
	cmd.AddCommand(newGenerateCommand(), newPrintTestCasesCommand())
	return cmd
}

// selectionFlags are the options shared by the run subcommands.
type selectionFlags struct {
	tree       string
	arch       string
	components string
	sets       string
}

func (f *selectionFlags) register(cmd *cobra.Command, required bool) {
	cmd.Flags().StringVarP(&f.tree, "tree", "t", "",
		`name of the specified kernel's tree, see "kpet tree list" for recognized trees`)
	cmd.Flags().StringVarP(&f.arch, "arch", "a", "",
		`architecture of the specified kernel, see "kpet arch list" for supported architectures`)
	cmd.Flags().StringVarP(&f.components, "components", "c", "",
		`regular expression matching extra components included into the kernel build, see "kpet component list"`)
	cmd.Flags().StringVarP(&f.sets, "sets", "s", "",
		`regular expression matching the sets of tests to restrict the run to, see "kpet set list"`)
	if required {
		_ = cmd.MarkFlagRequired("tree")
		_ = cmd.MarkFlagRequired("arch")
	}
}

// newRun loads the database and assembles the run selected by the flags and
// the patch mailboxes. The returned file system holds the database.
func (f *selectionFlags) newRun(cmd *cobra.Command, mboxes []string) (*kpetrun.Run, fs.FS, error) {
	ctx := cmd.Context()
	db, fsys, err := commons.LoadDatabase(ctx)
	if err != nil {
		return nil, nil, err
	}
	target, err := f.target(ctx, cmd, db, mboxes)
	if err != nil {
		return nil, nil, err
	}
	logr.FromContextOrDiscard(ctx).V(logging.DebugLevel).Info("selected target", "target", target.String())

	r := kpetrun.New(ctx, db, target)
	if log := logr.FromContextOrDiscard(ctx).V(logging.TraceLevel); log.Enabled() {
		log.Info("run layout", "recipesets", layoutDumper.Sdump(r.Recipesets))
	}
	if m := commons.SettingsFrom(ctx).Metrics; m != nil {
		suites, cases, hosts := r.Counts()
		m.ReportRun(ctx, f.tree, f.arch, suites, cases, hosts)
	}
	return r, fsys, nil
}

func (f *selectionFlags) target(ctx context.Context, cmd *cobra.Command, db *data.Base, mboxes []string) (*data.Target, error) {
	sel := kpetrun.Selection{Tree: f.tree, Arch: f.arch}

	var err error
	if cmd.Flags().Changed("components") {
		if sel.Components, err = compile("components", f.components); err != nil {
			return nil, err
		}
	}
	if cmd.Flags().Changed("sets") {
		if sel.Sets, err = compile("sets", f.sets); err != nil {
			return nil, err
		}
	}
	if len(mboxes) > 0 {
		sources, err := commons.LoadSourceSet(ctx, mboxes)
		if err != nil {
			return nil, err
		}
		sel.Sources = sets.New(sources...)
	}
	return kpetrun.NewTarget(db, sel)
}

func compile(flag, expr string) (*schema.Regexp, error) {
	re, err := schema.CompileRegexp(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid --%s regular expression %q: %w", flag, expr, err)
	}
	return re, nil
}

func newGenerateCommand() *cobra.Command {
	var (
		flags       selectionFlags
		description string
		output      string
		kernel      string
		variables   []string
	)
	cmd := &cobra.Command{
		Use:   "generate [MBOX...]",
		Short: "Generate the information required for a test run",
		Long: "Generate a test job for a kernel build. Each MBOX is a path of a mailbox " +
			"containing tested patches, used to select the tests touching the changed sources.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			r, fsys, err := flags.newRun(cmd, args)
			if err != nil {
				return err
			}
			values, err := kpetrun.ResolveVariables(r.DB.Variables, variables)
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			err = r.Generate(&buf, fsys, kpetrun.GenerateOptions{
				Description: description,
				Kernel:      kernel,
				Variables:   values,
			})
			if err != nil {
				return err
			}
			return commons.WriteOutput(cmd.OutOrStdout(), output, buf.String())
		},
	}
	flags.register(cmd, true)
	cmd.Flags().StringVarP(&description, "description", "d", "", "an arbitrary text describing the run")
	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write the output to, default is stdout")
	cmd.Flags().StringVarP(&kernel, "kernel", "k", "", "kernel location, a tarball or RPM path or URL, or a repository URL")
	cmd.Flags().StringArrayVarP(&variables, "variable", "V", nil,
		`assign a value to a template variable, as NAME=VALUE, see "kpet variable list" for recognized variables`)
	_ = cmd.MarkFlagRequired("kernel")
	return cmd
}

func newPrintTestCasesCommand() *cobra.Command {
	var (
		flags  selectionFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "print-test-cases [MBOX...]",
		Short: "Print test cases applicable to the patches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			r, _, err := flags.newRun(cmd, args)
			if err != nil {
				return err
			}
			return commons.PrintEntries(cmd, format, output.KindCases, output.Names(r.CaseNames()))
		},
	}
	flags.register(cmd, false)
	commons.AddOutputFlag(cmd, &format)
	return cmd
}
