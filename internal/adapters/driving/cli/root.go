// Package cli provides the docthemes command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docthemes/internal/core/ports/driving"
	"github.com/custodia-labs/docthemes/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Services are the driving ports the commands operate on.
type Services struct {
	Session  driving.SessionService
	Settings driving.SettingsService

	// Close releases storage handles. May be nil.
	Close func() error
}

// Options carry the global flags into the bootstrap.
type Options struct {
	ConfigDir string
	ServerURL string
	Ephemeral bool
}

// Bootstrap builds the services for a command invocation.
type Bootstrap func(ctx context.Context, opts Options) (*Services, error)

var (
	bootstrap       Bootstrap
	sessionService  driving.SessionService
	settingsService driving.SettingsService
	closeServices   func() error
	sessionStarted  bool
)

// Global flags.
var (
	verboseFlag   bool
	configDirFlag string
	serverFlag    string
	ephemeralFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "docthemes",
	Short: "Ask questions across your documents",
	Long: `docthemes is a client for a document question-answering service.

Ask a question and every uploaded document contributes its own answer with a
page and chunk citation, followed by a synthesized summary of the themes they
share. Documents can be excluded from a question, and the conversation
history is kept between runs.`,
	SilenceUsage:      true,
	PersistentPreRun:  func(*cobra.Command, []string) { logger.SetVerbose(verboseFlag) },
	PersistentPostRun: func(*cobra.Command, []string) { shutdown() },
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verboseFlag, "verbose", "v", false, "enable debug output")
	flags.StringVar(&configDirFlag, "config-dir", "", "configuration directory (default ~/.docthemes)")
	flags.StringVar(&serverFlag, "server", "", "answering service URL (overrides config)")
	flags.BoolVar(&ephemeralFlag, "ephemeral", false, "keep history in memory only")
}

// SetBootstrap registers the function that builds services on first use.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadServices builds the services once per process.
func loadServices(cmd *cobra.Command) error {
	if sessionService != nil && settingsService != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	svc, err := bootstrap(commandContext(cmd), Options{
		ConfigDir: configDirFlag,
		ServerURL: serverFlag,
		Ephemeral: ephemeralFlag,
	})
	if err != nil {
		return err
	}
	sessionService = svc.Session
	settingsService = svc.Settings
	closeServices = svc.Close
	return nil
}

// requireSession returns a started session. Start warnings are printed
// and never fail the command.
func requireSession(cmd *cobra.Command) (driving.SessionService, error) {
	if err := loadServices(cmd); err != nil {
		return nil, err
	}
	if sessionService == nil {
		return nil, errors.New("session service not configured")
	}
	if !sessionStarted {
		sessionStarted = true
		if err := sessionService.Start(commandContext(cmd)); err != nil {
			printWarning(cmd, err)
		}
	}
	return sessionService, nil
}

// requireSettings returns the settings service.
func requireSettings(cmd *cobra.Command) (driving.SettingsService, error) {
	if err := loadServices(cmd); err != nil {
		return nil, err
	}
	if settingsService == nil {
		return nil, errors.New("settings service not configured")
	}
	return settingsService, nil
}

func shutdown() {
	if closeServices == nil {
		return
	}
	if err := closeServices(); err != nil {
		logger.Warn("closing storage: %v", err)
	}
	closeServices = nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printWarning(cmd *cobra.Command, err error) {
	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", yellow("warning:"), err)
}

// isTerminal reports whether stdout is an interactive terminal.
var isTerminal = func() bool {
	return stdoutIsTerminal(os.Stdout)
}
