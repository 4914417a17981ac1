package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docthemes/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface for docthemes.

The TUI lets you ask questions, browse the per-document answers and the
theme summary, open cited passages, exclude documents and upload files.

Controls:
  Enter     - Ask / Open citation
  Tab, n/p  - Move between citations
  /         - Focus the question input
  Esc       - Back / Cancel
  ?         - Toggle help
  q         - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	session, err := requireSession(cmd)
	if err != nil {
		return err
	}
	settings, err := requireSettings(cmd)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(tui.NewPorts(session, settings))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(commandContext(cmd))

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
