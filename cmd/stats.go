package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/malu-oliver/agent-financeiro/internal/analytics"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show learning statistics and the user benchmark",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.close(context.WithoutCancel(cmd.Context()))

		out := cmd.OutOrStdout()
		st := rt.service.Stats()
		fmt.Fprintln(out, "Learning")
		fmt.Fprintln(out, strings.Repeat("─", 48))
		fmt.Fprintf(out, "%-30s %10d\n", "Users tracked", st.TotalUsers)
		fmt.Fprintf(out, "%-30s %10d\n", "Classifications", st.TotalClassifications)
		fmt.Fprintf(out, "%-30s %10.2f\n", "Per user", st.AvgClassificationsPerUser)
		fmt.Fprintf(out, "%-30s %10d\n", "Patterns learned", st.PatternsLearned)
		fmt.Fprintf(out, "%-30s %10.3f\n", "Mean pattern effectiveness", st.AvgPatternEffectiveness)
		fmt.Fprintf(out, "%-30s %9.0f%%\n", "Mean confidence", st.AvgConfidence*100)
		fmt.Fprintf(out, "%-30s %9.1f%%\n", "High confidence", st.HighConfidencePercentage)

		bench, err := rt.service.Benchmark(cmd.Context())
		if err != nil {
			return fmt.Errorf("benchmark: %w", err)
		}
		fmt.Fprintln(out)
		printBenchmark(out, bench)
		return nil
	},
}

func printBenchmark(out io.Writer, b *analytics.Benchmark) {
	fmt.Fprintln(out, "Benchmark")
	fmt.Fprintln(out, strings.Repeat("─", 48))
	if b.Message != "" {
		fmt.Fprintln(out, b.Message)
		return
	}
	fmt.Fprintf(out, "%-30s %10d\n", "Users", b.TotalUsers)
	fmt.Fprintf(out, "%-30s %10.1f\n", "Mean age", b.MeanAge)
	fmt.Fprintf(out, "%-30s %10.2f\n", "Mean income", b.MeanIncome)
	for _, p := range []string{"conservador", "moderado", "agressivo"} {
		fmt.Fprintf(out, "%-30s %9.1f%%\n", p, b.Distribution[p])
	}
	fmt.Fprintf(out, "%-30s %10s\n", "Most common", b.MostCommon)
}
