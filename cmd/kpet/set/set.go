package set

import (
	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/pkg/output"
	"github.com/spf13/cobra"
)

// NewCmd returns the kpet set command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Test set",
	}
	cmd.AddCommand(newListCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list [REGEX]",
		Short: "List available test sets",
		Long:  "List available test sets, optionally only those with names fully matching REGEX.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			re, err := commons.OptionalRegexp(args)
			if err != nil {
				return err
			}
			db, _, err := commons.LoadDatabase(cmd.Context())
			if err != nil {
				return err
			}
			return commons.PrintEntries(cmd, format, output.KindSets, commons.Described(db.Sets, re))
		},
	}
	commons.AddOutputFlag(cmd, &format)
	return cmd
}
