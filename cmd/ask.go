package cmd

import (
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask",
	Short: "Answer the profile questionnaire in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd, true)
	},
}
