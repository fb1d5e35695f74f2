package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/engreader/internal/llm"
	"github.com/abhisek/engreader/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded provider calls, token usage and cost",
}

const timeLayout = "2006-01-02 15:04:05"

func rule(width int) { fmt.Println(strings.Repeat("─", width)) }

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent provider calls",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")
		failedOnly, _ := cmd.Flags().GetBool("failed")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		shown := 0
		for _, e := range events {
			if failedOnly && e.Success {
				continue
			}
			if shown == 0 {
				fmt.Printf("%-5s  %-19s  %-16s  %-28s  %6s  %6s  %7s  %s\n",
					"ID", "Time", "Purpose", "Model", "In", "Out", "Ms", "OK")
				rule(102)
			}
			ok := "✓"
			if !e.Success {
				ok = "✗"
			}
			fmt.Printf("%-5d  %-19s  %-16s  %-28s  %6d  %6d  %7d  %s\n",
				e.ID, e.Timestamp.Local().Format(timeLayout), e.Purpose, truncate(e.Model, 28),
				e.InputTokens, e.OutputTokens, e.LatencyMs, ok)
			shown++
		}
		if shown == 0 {
			fmt.Println("No provider calls recorded.")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and response of one call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openEventStore(cmd)
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

		fields := [][2]string{
			{"ID", strconv.FormatInt(e.ID, 10)},
			{"Time", e.Timestamp.Local().Format(timeLayout)},
			{"Provider", e.Provider},
			{"Model", e.Model},
			{"Purpose", e.Purpose},
			{"Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens)},
			{"Latency", fmt.Sprintf("%dms", e.LatencyMs)},
			{"Success", strconv.FormatBool(e.Success)},
		}
		if c := llm.LookupCost(e.Model); c != nil {
			fields = append(fields, [2]string{"Cost", formatCost(c.Cost(e.InputTokens, e.OutputTokens))})
		}
		if e.ErrorMessage != "" {
			fields = append(fields, [2]string{"Error", e.ErrorMessage})
		}
		for _, f := range fields {
			fmt.Printf("%-10s %s\n", f[0]+":", f[1])
		}

		for _, part := range []struct{ title, body string }{{"REQUEST", e.RequestBody}, {"RESPONSE", e.ResponseBody}} {
			fmt.Println()
			rule(60)
			fmt.Println(part.title)
			rule(60)
			if part.body == "" {
				fmt.Println("(not captured)")
			} else {
				fmt.Println(part.body)
			}
		}
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token usage per purpose and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
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
			fmt.Println("No provider calls recorded.")
			return nil
		}

		fmt.Println("Usage by purpose")
		rule(72)
		fmt.Printf("%-18s  %6s  %10s  %10s  %10s  %8s\n", "Purpose", "Calls", "Input", "Output", "Total", "Avg ms")
		rule(72)
		var calls, in, out int
		for _, u := range byPurpose {
			fmt.Printf("%-18s  %6d  %10d  %10d  %10d  %8d\n",
				u.Purpose, u.Calls, u.InputTokens, u.OutputTokens, u.InputTokens+u.OutputTokens, u.AvgLatencyMs)
			calls += u.Calls
			in += u.InputTokens
			out += u.OutputTokens
		}
		rule(72)
		fmt.Printf("%-18s  %6d  %10d  %10d  %10d\n", "TOTAL", calls, in, out, in+out)

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}
		fmt.Println()
		fmt.Println("Estimated cost (USD)")
		rule(72)
		var total float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if c := llm.LookupCost(u.Model); c != nil {
				usd := c.Cost(u.InputTokens, u.OutputTokens)
				total += usd
				cost = formatCost(usd)
			} else {
				unpriced = append(unpriced, u.Model)
			}
			fmt.Printf("%-32s  %6d calls  %10s\n", truncate(u.Model, 32), u.Calls, cost)
		}
		rule(72)
		label := "TOTAL"
		if len(unpriced) > 0 {
			label = "TOTAL (partial)"
		}
		fmt.Printf("%-32s  %17s\n", label, formatCost(total))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo pricing for: %s\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

// openEventStore opens the database without building the services.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	s, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only this purpose (story_generation, quiz_generation, translation)")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
