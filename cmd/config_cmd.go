package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/cli"
	"github.com/theirongolddev/chatburn/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	budgetOrUnlimited := func(v float64) string {
		if v <= 0 {
			return "no limit"
		}
		return cli.FormatUSD(v)
	}

	apiKey := "(not set)"
	if config.GetAPIKey(cfg) != "" {
		apiKey = "(set)"
	}

	rows := [][]string{
		{"model", cfg.Chat.Model},
		{"max_tokens", fmt.Sprintf("%d", cfg.Chat.MaxTokens)},
		{"temperature", fmt.Sprintf("%.1f", cfg.Chat.Temperature)},
		{"user_id", cfg.Chat.UserID},
		{"session budget", budgetOrUnlimited(cfg.Budget.SessionUSD)},
		{"daily budget", budgetOrUnlimited(cfg.Budget.DailyUSD)},
		{"warning threshold", cli.FormatPercent(cfg.Budget.WarningThreshold)},
		{"api key", apiKey},
		{"ledger", cfg.Storage.LedgerPath},
		{"history db", cfg.Storage.HistoryDB},
		{"log level", cfg.Logging.Level},
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Configuration",
		Headers: []string{"Setting", "Value"},
		Rows:    rows,
	}))
	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if !config.Exists() {
		fmt.Println("  (file not found, using defaults; run `chatburn setup` to create it)")
	}
	fmt.Println()

	return nil
}
