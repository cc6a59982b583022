// Package cmd wires the chatburn command tree.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/config"
	"github.com/theirongolddev/chatburn/internal/pricing"
)

var (
	flagConfig string
	flagModel  string
	flagUser   string
	flagLedger string
	flagQuiet  bool
)

var rootCmd = &cobra.Command{
	Use:   "chatburn",
	Short: "Budget-aware AI chat with cost tracking",
	Long: "Chat with an AI model from your terminal while every message is\n" +
		"estimated, budget-checked, and recorded in a per-user cost ledger.",
	RunE: runChat,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file path")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Override the configured model")
	rootCmd.PersistentFlags().StringVarP(&flagUser, "user", "u", "", "Override the configured user id")
	rootCmd.PersistentFlags().StringVar(&flagLedger, "ledger", "", "Override the cost ledger path")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
}

// loadConfig is the shared configuration path used by all commands:
// file + env + flag overrides, then validation against the pricing table.
func loadConfig() (config.Config, pricing.Table, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, pricing.Table{}, err
	}

	if flagModel != "" {
		cfg.Chat.Model = flagModel
	}
	if flagUser != "" {
		cfg.Chat.UserID = flagUser
	}
	if flagLedger != "" {
		cfg.Storage.LedgerPath = flagLedger
	}

	table := config.PricingTable(cfg)
	if err := config.Validate(cfg, table); err != nil {
		return cfg, table, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, table, nil
}
