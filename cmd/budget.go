package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/cli"
	"github.com/theirongolddev/chatburn/internal/ledger"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show budget caps and today's spend",
	RunE:  runBudget,
}

func init() {
	rootCmd.AddCommand(budgetCmd)
}

func runBudget(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	led, err := ledger.Open(cfg.Storage.LedgerPath)
	if err != nil {
		return fmt.Errorf("opening cost ledger: %w", err)
	}

	dailyCost := led.DailyCost(cfg.Chat.UserID, "")

	fmt.Println()
	fmt.Println(cli.RenderTitle("BUDGET STATUS"))
	fmt.Println()
	fmt.Printf("  User: %s\n\n", cfg.Chat.UserID)

	if cfg.Budget.SessionUSD > 0 {
		fmt.Printf("  Session cap  %s per session\n", cli.FormatUSD(cfg.Budget.SessionUSD))
	} else {
		fmt.Println("  Session cap  no limit")
	}

	if cfg.Budget.DailyUSD > 0 {
		fmt.Printf("  Daily cap    %s\n", cli.FormatUSD(cfg.Budget.DailyUSD))
		fmt.Printf("  Spent today  %s  %s\n",
			cli.FormatUSD(dailyCost),
			cli.RenderBudgetBar(dailyCost, cfg.Budget.DailyUSD, cfg.Budget.WarningThreshold, 30))
	} else {
		fmt.Println("  Daily cap    no limit")
		fmt.Printf("  Spent today  %s\n", cli.FormatUSD(dailyCost))
	}

	fmt.Printf("\n  Warnings start at %s of the session cap.\n\n",
		cli.FormatPercent(cfg.Budget.WarningThreshold))

	return nil
}
