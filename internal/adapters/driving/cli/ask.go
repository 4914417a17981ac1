package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

var (
	askExclude []string
	askTopK    int
	askDocType string
	askAfter   string
	askBefore  string
	askJSON    bool
	askPlain   bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question across all documents",
	Long: `Sends a question to the answering service. Every matching document
contributes its own answer with a page and chunk citation, and a theme
summary ties them together. Citations in the summary are numbered and
listed below it.

The exchange is appended to the history.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringSliceVarP(&askExclude, "exclude", "x", nil, "document to leave out (repeatable)")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of chunks to retrieve (0 = configured default)")
	askCmd.Flags().StringVar(&askDocType, "doc-type", "", "only search documents of this type")
	askCmd.Flags().StringVar(&askAfter, "after", "", "only documents uploaded after this date (YYYY-MM-DD)")
	askCmd.Flags().StringVar(&askBefore, "before", "", "only documents uploaded before this date (YYYY-MM-DD)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the exchange as JSON")
	askCmd.Flags().BoolVar(&askPlain, "plain", false, "do not render markdown")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	session, err := requireSession(cmd)
	if err != nil {
		return err
	}

	opts, err := askOptions(cmd)
	if err != nil {
		return err
	}
	if len(askExclude) > 0 {
		session.ExcludeAll(askExclude)
	}

	outcome, err := session.Ask(commandContext(cmd), args[0], opts)
	if err != nil {
		if errors.Is(err, domain.ErrTransport) {
			return fmt.Errorf("could not reach the answering service: %w", err)
		}
		return err
	}
	if outcome.Warning != nil {
		printWarning(cmd, outcome.Warning)
	}

	if askJSON {
		return outputAskJSON(cmd, outcome)
	}
	printOutcome(cmd.OutOrStdout(), outcome, !askPlain && isTerminal())
	return nil
}

// askOptions merges flags over the configured defaults.
func askOptions(cmd *cobra.Command) (domain.AskOptions, error) {
	opts := domain.AskOptions{SortBy: domain.SortByRelevance}
	if settings, err := requireSettings(cmd); err == nil {
		if s, err := settings.Get(); err == nil {
			opts = s.AskDefaults()
		}
	}

	if askTopK < 0 {
		return opts, fmt.Errorf("%w: --top-k must not be negative", domain.ErrInvalidInput)
	}
	if askTopK > 0 {
		opts.TopK = askTopK
	}
	if askDocType != "" {
		opts.DocType = askDocType
	}
	for _, d := range []struct{ flag, value string }{{"--after", askAfter}, {"--before", askBefore}} {
		if d.value == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, d.value); err != nil {
			return opts, fmt.Errorf("%w: %s expects YYYY-MM-DD, got %q", domain.ErrInvalidInput, d.flag, d.value)
		}
	}
	opts.DateAfter = askAfter
	opts.DateBefore = askBefore
	return opts, nil
}

func outputAskJSON(cmd *cobra.Command, outcome *domain.AskOutcome) error {
	payload := struct {
		domain.Exchange
		Matches []domain.MatchedDocument `json:"matches"`
	}{outcome.Exchange, outcome.Matches}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal exchange: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
