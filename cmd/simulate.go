package cmd

import (
	"context"
	"fmt"

	"github.com/malu-oliver/agent-financeiro/internal/invest"
	"github.com/malu-oliver/agent-financeiro/internal/profiling"
	"github.com/malu-oliver/agent-financeiro/internal/screens/simulate"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Project an investment with monthly deposits",
	RunE: func(cmd *cobra.Command, args []string) error {
		initial, _ := cmd.Flags().GetFloat64("initial")
		monthly, _ := cmd.Flags().GetFloat64("monthly")
		years, _ := cmd.Flags().GetInt("years")
		rate, _ := cmd.Flags().GetFloat64("rate")
		profile, _ := cmd.Flags().GetString("profile")
		userID, _ := cmd.Flags().GetInt("user")

		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(cmd.Context()))

		sim, err := rt.service.Simulate(cmd.Context(), userID, invest.SimulationRequest{
			InitialAmount:  initial,
			MonthlyDeposit: monthly,
			Years:          years,
			AnnualRate:     rate,
			Profile:        profiling.Profile(profile),
		})
		if err != nil {
			return err
		}
		fmt.Print(simulate.Summary(sim))
		return nil
	},
}

func init() {
	simulateCmd.Flags().Float64("initial", 0, "Initial amount in BRL")
	simulateCmd.Flags().Float64("monthly", 0, "Monthly deposit in BRL")
	simulateCmd.Flags().Int("years", 10, "Horizon in years (1-50)")
	simulateCmd.Flags().Float64("rate", 0, "Annual rate in percent; 0 derives it from the Selic rate")
	simulateCmd.Flags().String("profile", "", "Profile used to derive the rate (defaults to the user's or moderado)")
	simulateCmd.Flags().Int("user", 0, "Record the simulation for this user ID")
}
