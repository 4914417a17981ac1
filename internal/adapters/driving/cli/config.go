package cli

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docthemes/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change client settings",
	Long: `Shows the effective settings: defaults, then config.toml, then
DOCTHEMES_* environment variables (also read from a .env file).`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting in config.toml",
	Long: `Changes one setting in config.toml.

Keys:
  server.url         answering service base URL
  server.timeout     request timeout (e.g. 90s)
  server.rate_limit  requests per second (0 = unlimited)
  ask.top_k          chunks retrieved per question (0 = service default)
  ask.doc_type       default document type filter
  history.data_dir   folder holding history.db
  history.key        key the history is stored under`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE:  runConfigWizard,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configWizardCmd)
	rootCmd.AddCommand(configCmd)
}

// settingSetters maps config keys to field updates.
var settingSetters = map[string]func(*domain.AppSettings, string) error{
	"server.url": func(s *domain.AppSettings, v string) error {
		s.ServerURL = v
		return nil
	},
	"server.timeout": func(s *domain.AppSettings, v string) error {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		s.Timeout = d
		return nil
	},
	"server.rate_limit": func(s *domain.AppSettings, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		s.RateLimit = f
		return nil
	},
	"ask.top_k": func(s *domain.AppSettings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		s.TopK = n
		return nil
	},
	"ask.doc_type": func(s *domain.AppSettings, v string) error {
		s.DocType = v
		return nil
	},
	"history.data_dir": func(s *domain.AppSettings, v string) error {
		s.DataDir = v
		return nil
	},
	"history.key": func(s *domain.AppSettings, v string) error {
		s.HistoryKey = v
		return nil
	},
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	settings, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	s, err := settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()
	cmd.Println("[Server]")
	cmd.Printf("  URL: %s\n", s.ServerURL)
	cmd.Printf("  Timeout: %s\n", s.Timeout)
	cmd.Printf("  Rate limit: %s\n", describeRate(s.RateLimit))
	cmd.Println()
	cmd.Println("[Ask]")
	cmd.Printf("  Top K: %s\n", describeTopK(s.TopK))
	cmd.Printf("  Document type: %s\n", orDefault(s.DocType, "(all)"))
	cmd.Println()
	cmd.Println("[History]")
	cmd.Printf("  Data dir: %s\n", orDefault(s.DataDir, "~/.docthemes/data"))
	cmd.Printf("  Key: %s\n", s.HistoryKey)
	cmd.Println()
	if path := settings.ConfigPath(); path != "" {
		cmd.Printf("Config file: %s\n", path)
	}
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	settings, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	key, value := args[0], args[1]
	set, ok := settingSetters[key]
	if !ok {
		return fmt.Errorf("%w: unknown key %q (known: %s)", domain.ErrInvalidInput, key, strings.Join(settingKeys(), ", "))
	}

	s, err := settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := set(s, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	if err := settings.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

func runConfigWizard(cmd *cobra.Command, _ []string) error {
	settings, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	s, err := settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("docthemes Settings Wizard")
	cmd.Println("=========================")
	cmd.Println("Press Enter to keep the current value.")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	steps := []struct {
		key     string
		prompt  string
		current string
	}{
		{"server.url", "Answering service URL", s.ServerURL},
		{"server.timeout", "Request timeout", s.Timeout.String()},
		{"ask.top_k", "Chunks per question", strconv.Itoa(s.TopK)},
		{"ask.doc_type", "Default document type", s.DocType},
	}
	for _, step := range steps {
		cmd.Printf("%s [%s]: ", step.prompt, step.current)
		input := readLine(reader)
		if input == "" {
			continue
		}
		if err := settingSetters[step.key](s, input); err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, step.key, err)
		}
	}

	if err := settings.Save(s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	cmd.Println()
	cmd.Println("Settings saved.")
	return nil
}

func settingKeys() []string {
	keys := make([]string, 0, len(settingSetters))
	for k := range settingSetters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func describeRate(r float64) string {
	if r <= 0 {
		return "unlimited"
	}
	return strconv.FormatFloat(r, 'f', -1, 64) + " req/s"
}

func describeTopK(k int) string {
	if k <= 0 {
		return "(service default)"
	}
	return strconv.Itoa(k)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

