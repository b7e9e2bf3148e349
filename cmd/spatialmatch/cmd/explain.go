package cmd

import (
	"github.com/spf13/cobra"

	"github.com/carmenstack/spatialmatch/internal/dedup"
	"github.com/carmenstack/spatialmatch/internal/tui"
)

func newExplainCmd() *cobra.Command {
	var nativeLib string
	var plain bool

	cmd := &cobra.Command{
		Use:   "explain <fixture.json>",
		Short: "Run the spatialmatch pipeline and browse the ranked results interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := runQuery(cmd, args[0], nativeLib)
			if err != nil {
				return err
			}
			out, ok := raw.(dedup.Output)
			if !ok {
				return tui.RunExplain(dedup.Output{}, cmd.OutOrStdout(), true)
			}
			return tui.RunExplain(out, cmd.OutOrStdout(), plain)
		},
	}

	cmd.Flags().StringVar(&nativeLib, "native-lib", "", "Path to a native coalesce engine shared library")
	cmd.Flags().BoolVar(&plain, "plain", false, "Force plain text output instead of the interactive viewer")
	return cmd
}
