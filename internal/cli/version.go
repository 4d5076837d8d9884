package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/fetchkit/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			info := version.GetVersionInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "fetchkit %s\n", version.GetFullVersion())
			fmt.Fprintf(cmd.OutOrStdout(), "Go: %s\n", info.GoVersion)
			if info.BuildTime != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Built: %s\n", info.BuildTime)
			}
		},
	}
}
