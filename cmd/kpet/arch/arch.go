package arch

import (
	"slices"

	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/pkg/output"
	"github.com/spf13/cobra"
)

// NewCmd returns the kpet arch command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "arch",
		Short: "Architecture to test on",
	}
	cmd.AddCommand(newListCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Output a list of known architecture names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			db, _, err := commons.LoadDatabase(cmd.Context())
			if err != nil {
				return err
			}
			arches := slices.Sorted(slices.Values(db.Arches))
			return commons.PrintEntries(cmd, format, output.KindArches, output.Names(arches))
		},
	}
	commons.AddOutputFlag(cmd, &format)
	return cmd
}
