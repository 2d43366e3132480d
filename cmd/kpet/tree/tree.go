package tree

import (
	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/pkg/output"
	"github.com/spf13/cobra"
)

// NewCmd returns the kpet tree command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Kernel tree",
	}
	cmd.AddCommand(newListCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available kernel trees",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			db, _, err := commons.LoadDatabase(cmd.Context())
			if err != nil {
				return err
			}
			var entries []output.Entry
			for _, name := range db.TreeNames() {
				entries = append(entries, output.Entry{Name: name, Description: db.Trees[name].Description})
			}
			return commons.PrintEntries(cmd, format, output.KindTrees, entries)
		},
	}
	commons.AddOutputFlag(cmd, &format)
	return cmd
}
