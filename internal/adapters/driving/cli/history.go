package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

var (
	historyLimit int
	historyJSON  bool
	historyFull  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show previous questions, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the conversation history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "show at most n exchanges (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	historyCmd.Flags().BoolVar(&historyFull, "full", false, "include answers and summaries")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	session, err := requireSession(cmd)
	if err != nil {
		return err
	}

	history := session.History()
	total := session.HistoryLen()
	if historyLimit > 0 && len(history) > historyLimit {
		history = history[:historyLimit]
	}

	if historyJSON {
		data, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(history) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	faint := color.New(color.Faint).SprintFunc()
	for i, ex := range history {
		when := ""
		if !ex.AskedAt.IsZero() {
			when = faint(ex.AskedAt.Local().Format("2006-01-02 15:04"))
		}
		cmd.Printf("%d. %s %s\n", i+1, ex.Question, when)
		cmd.Printf("   %s\n", faint(fmt.Sprintf("%d answers from %d documents",
			len(ex.DocumentAnswers), len(domain.DeriveMatches(ex.DocumentAnswers)))))
		if historyFull {
			cmd.Println()
			printOutcome(cmd.OutOrStdout(), &domain.AskOutcome{
				Exchange: ex,
				Matches:  domain.DeriveMatches(ex.DocumentAnswers),
				Segments: session.Resolve(ex),
			}, false)
			cmd.Println()
		}
	}
	if len(history) < total {
		cmd.Println(faint(fmt.Sprintf("Showing %d of %d exchanges.", len(history), total)))
	}
	return nil
}

func runHistoryClear(cmd *cobra.Command, _ []string) error {
	session, err := requireSession(cmd)
	if err != nil {
		return err
	}
	if err := session.Clear(commandContext(cmd)); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	cmd.Println("History cleared.")
	return nil
}
