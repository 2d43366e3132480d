package variable

import (
	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/pkg/output"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/util/sets"
)

// NewCmd returns the kpet variable command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "variable",
		Short: "Template variable",
	}
	cmd.AddCommand(newListCommand())
	return cmd
}

func newListCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List template variables, their descriptions and default values",
		Long: "List template variables, their descriptions and default values. " +
			"Variables without a default must be assigned with \"kpet run generate -V NAME=VALUE\".",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmd.SilenceUsage = true
			db, _, err := commons.LoadDatabase(cmd.Context())
			if err != nil {
				return err
			}
			var entries []output.Entry
			for _, name := range sets.List(sets.KeySet(db.Variables)) {
				v := db.Variables[name]
				entries = append(entries, output.Entry{Name: name, Description: v.Description, Default: v.Default})
			}
			return commons.PrintEntries(cmd, format, output.KindVariables, entries)
		},
	}
	commons.AddOutputFlag(cmd, &format)
	return cmd
}
