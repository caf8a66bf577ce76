package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var evolutionCmd = &cobra.Command{
	Use:   "evolution <user-id>",
	Short: "Show how a user's profile evolved and what to do next",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid user ID %q: %w", args[0], err)
		}

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(cmd.Context()))

		ctx := cmd.Context()
		u, err := rt.service.GetUser(ctx, id)
		if err != nil {
			return fmt.Errorf("user %d: %w", id, err)
		}
		ev, err := rt.service.Evolution(ctx, id)
		if err != nil {
			return err
		}
		sug, err := rt.service.Suggestions(ctx, id)
		if err != nil {
			return err
		}

		fmt.Printf("Usuário:       %s (#%d)\n", u.Name, u.ID)
		if ev.HistoryLength == 0 {
			fmt.Println("Nenhuma classificação registrada ainda.")
			return nil
		}
		fmt.Printf("Perfil:        %s\n", ev.Dominant)
		fmt.Printf("Consistência:  %.0f%%\n", ev.Consistency*100)
		fmt.Printf("Tendência:     %s (%+.2f)\n", ev.Trend, ev.TrendScore)
		fmt.Printf("Histórico:     %d classificações, %d mudanças recentes\n", ev.HistoryLength, ev.RecentChangeCount)
		fmt.Printf("Confiança:     %.0f%% (%s)\n", ev.AvgConfidence*100, ev.ConfidenceTrend)
		fmt.Printf("Qualidade:     %.0f%%\n", ev.DataQuality*100)

		fmt.Printf("\nAção: %s\n", sug.Action)
		for _, s := range sug.Suggestions {
			fmt.Println("  •", s)
		}
		if sug.Progress != "" {
			fmt.Println("\n" + sug.Progress)
		}
		return nil
	},
}
