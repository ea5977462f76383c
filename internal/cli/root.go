// Package cli provides the command-line interface for docchat.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"docchat/internal/client"
	"docchat/internal/config"
	"docchat/internal/metrics"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Global config and backend client
	cfg         config.Config
	apiClient   *client.Client
	collector   *metrics.Collector
	closeLogger func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents from the terminal",
	Long: `Docchat is a terminal client for a local RAG backend: upload documents,
ask questions about them, and read answers with source citations.

Running docchat without a subcommand opens the interactive chat. The
one-shot subcommands (ask, upload, status, docs) cover scripted use.`,
	Version: Version,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if closeLogger != nil {
			if err := closeLogger(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
	RunE: runChat,
}

// runChat starts the interactive chat UI.
func runChat(cmd *cobra.Command, args []string) error {
	slog.Info("chat session started", "backend", apiClient.BaseURL())

	model := newChatModel(apiClient, apiClient.BaseURL(), cfg)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI error: %w", err)
	}

	slog.Info("chat session ended")
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Assigned here instead of in the composite literal: the closure refers
	// to rootCmd, which would make the literal an initialization cycle.
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		// The chat TUI owns the terminal, so its log lines go to the file
		// only; one-shot commands keep the stderr text handler.
		var logger *slog.Logger
		if cmd == rootCmd {
			logger, closeLogger = config.SetupFileLogger(cfg.LogFile, cfg.Level())
		} else {
			logger, closeLogger = config.SetupLogger(cfg.LogFile, cfg.Level())
		}
		slog.SetDefault(logger)

		collector = metrics.NewCollector()
		apiClient = client.New(cfg.BackendURL, collector)

		return nil
	}

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(docsCmd)
}
