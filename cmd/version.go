package cmd

import (
	"fmt"

	"github.com/malu-oliver/agent-financeiro/internal/advisor"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "agentfin", versionString())
	},
}

// versionString reports advisor.Version, which is set via -ldflags at
// build time.
func versionString() string {
	return advisor.Version
}
