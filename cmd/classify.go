package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/screens/ask"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <goal...>",
	Short: "Classify an investment goal without storing a user",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		self, _ := cmd.Flags().GetString("self")
		reference, _ := cmd.Flags().GetString("reference")
		userID, _ := cmd.Flags().GetInt("user")
		asJSON, _ := cmd.Flags().GetBool("json")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(cmd.Context()))

		in := profiling.Input{
			Goal:           strings.Join(args, " "),
			SelfAssessment: self,
			Reference:      reference,
		}
		if userID > 0 {
			in.UserID = strconv.Itoa(userID)
		}
		res := rt.engine.Classify(in)

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		fmt.Fprintf(out, "Perfil:     %s\n", res.Dominant)
		fmt.Fprintf(out, "Confiança:  %.0f%%\n", res.Confidence*100)
		if res.Fallback {
			fmt.Fprintln(out, "Nenhum padrão reconhecido; distribuição estimada pelo texto.")
		}
		fmt.Fprintln(out)
		fmt.Fprint(out, ask.Bars(res.Distribution, 60))
		if len(res.Matched) > 0 {
			fmt.Fprintf(out, "\nPadrões: %s\n", strings.Join(res.Matched, ", "))
		}
		return nil
	},
}

func init() {
	classifyCmd.Flags().String("self", "", "Self-assessed profile: conservador, moderado or agressivo")
	classifyCmd.Flags().String("reference", "", "Extra text considered with the goal")
	classifyCmd.Flags().Int("user", 0, "User ID whose history biases the result")
	classifyCmd.Flags().Bool("json", false, "Print the result as JSON")
}
