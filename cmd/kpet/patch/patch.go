package patch

import (
	"github.com/kpet-go/kpet/cmd/kpet/commons"
	"github.com/kpet-go/kpet/pkg/output"
	"github.com/spf13/cobra"
)

// NewCmd returns the kpet patch command.
func NewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patch",
		Short: "Patch",
	}
	cmd.AddCommand(newListFilesCommand())
	return cmd
}

func newListFilesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list-files [MBOX...]",
		Short: "List files changed by supplied patches",
		Example: `# List the sources changed by a patch series
kpet patch list-files series/*.patch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			files, err := commons.LoadSourceSet(cmd.Context(), args)
			if err != nil {
				return err
			}
			return commons.PrintEntries(cmd, format, output.KindFiles, output.Names(files))
		},
	}
	commons.AddOutputFlag(cmd, &format)
	return cmd
}
