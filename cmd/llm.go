package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"

	"github.com/malu-oliver/agent-financeiro/internal/llm"
	"github.com/malu-oliver/agent-financeiro/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect language model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		t := newTable("ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
		rows := 0
		for _, e := range events {
			if purpose != "" && e.Purpose != purpose {
				continue
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			t.Row(
				strconv.Itoa(e.ID),
				e.Timestamp.Local().Format(time.DateTime),
				e.Purpose,
				e.Model,
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				ok,
			)
			rows++
		}
		if rows == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}
		fmt.Println(t.Render())
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and output of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid id %q", args[0])
		}

		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}
		if e == nil {
			return fmt.Errorf("event %d not found", id)
		}

		fmt.Printf("%-9s %d\n", "ID", e.ID)
		fmt.Printf("%-9s %s\n", "Time", e.Timestamp.Local().Format(time.DateTime))
		fmt.Printf("%-9s %s / %s\n", "Model", e.Provider, e.Model)
		fmt.Printf("%-9s %s\n", "Purpose", e.Purpose)
		fmt.Printf("%-9s %d in, %d out\n", "Tokens", e.InputTokens, e.OutputTokens)
		fmt.Printf("%-9s %dms\n", "Latency", e.LatencyMs)
		if e.ErrorMessage != "" {
			fmt.Printf("%-9s %s\n", "Error", e.ErrorMessage)
		}

		heading := lipgloss.NewStyle().Bold(true).MarginTop(1)
		for _, part := range []struct{ title, body string }{
			{"Prompt", e.RequestBody},
			{"Output", e.ResponseBody},
		} {
			fmt.Println(heading.Render(part.title))
			if part.body == "" {
				part.body = "(vazio)"
			}
			fmt.Println(part.body)
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}

		t := newTable("Purpose", "Calls", "In", "Out", "Avg ms")
		for _, u := range byPurpose {
			t.Row(u.Purpose, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens), strconv.FormatInt(u.AvgLatencyMs, 10))
		}
		fmt.Println(t.Render())

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		t = newTable("Model", "Calls", "In", "Out", "USD")
		var total float64
		partial := false
		for _, u := range byModel {
			cost := "?"
			if p, ok := llm.PriceOf(u.Model); ok {
				c := p.Cost(u.InputTokens, u.OutputTokens)
				total += c
				cost = usd(c)
			} else {
				partial = true
			}
			t.Row(u.Model, strconv.Itoa(u.Calls), strconv.Itoa(u.InputTokens), strconv.Itoa(u.OutputTokens), cost)
		}
		label := "total"
		if partial {
			label = "total (partial)"
		}
		t.Row(label, "", "", "", usd(total))
		fmt.Println(t.Render())
		return nil
	},
}

var llmCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured provider's key and model",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd)
		if err != nil {
			return err
		}
		defer rt.store.Close()

		if rt.provider == nil {
			return errors.New("no LLM provider configured; texts come from the built-in templates")
		}
		checker, ok := rt.provider.(llm.Checker)
		if !ok {
			return fmt.Errorf("%s cannot be checked", rt.cfg.LLM.Provider)
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()
		if err := checker.Check(ctx); err != nil {
			return err
		}
		fmt.Printf("%s: %s ok\n", rt.cfg.LLM.Provider, rt.provider.ModelID())
		return nil
	},
}

func newTable(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Padding(0, 1)
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}

func usd(v float64) string {
	if v < 0.01 {
		return fmt.Sprintf("$%.4f", v)
	}
	return fmt.Sprintf("$%.2f", v)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (e.g. content)")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd, llmCheckCmd)
}
