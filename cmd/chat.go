package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/chat"
	"github.com/theirongolddev/chatburn/internal/cli"
	"github.com/theirongolddev/chatburn/internal/config"
	"github.com/theirongolddev/chatburn/internal/history"
	"github.com/theirongolddev/chatburn/internal/ledger"
	"github.com/theirongolddev/chatburn/internal/llm"
	"github.com/theirongolddev/chatburn/internal/logger"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, table, err := loadConfig()
	if err != nil {
		return err
	}

	led, err := ledger.Open(cfg.Storage.LedgerPath)
	if err != nil {
		// Ledger corruption is fatal at startup; a broken cost file must
		// never be replaced with empty state.
		return fmt.Errorf("opening cost ledger: %w", err)
	}

	log, closer, err := logger.New(cfg.Logging.Level, cfg.Logging.File)
	if err != nil {
		return err
	}
	if closer != nil {
		defer func() { _ = closer.Close() }()
	}

	var hist *history.Store
	if h, err := history.Open(cfg.Storage.HistoryDB); err != nil {
		// History is an optional convenience; the session runs without it.
		log.Warn("history store unavailable", "error", err)
		if !flagQuiet {
			fmt.Fprintln(os.Stderr, "  History unavailable, transcripts will not be saved")
		}
	} else {
		hist = h
		defer func() { _ = hist.Close() }()
	}

	var client llm.Completer = llm.NewClient(config.GetAPIKey(cfg), cfg.API.BaseURL)
	if !flagQuiet {
		client = &spinnerCompleter{inner: client}
	}

	session := chat.NewSession(chat.Options{
		Config:  cfg,
		Table:   table,
		Ledger:  led,
		Client:  client,
		History: hist,
		Logger:  log,
	})

	return session.Run(context.Background())
}

// spinnerCompleter shows a spinner while the completion call is in flight.
type spinnerCompleter struct {
	inner llm.Completer
}

func (s *spinnerCompleter) Complete(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	return cli.WithSpinner("Thinking...", func() (*llm.Completion, error) {
		return s.inner.Complete(ctx, req)
	})
}
