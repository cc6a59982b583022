package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/cli"
	"github.com/theirongolddev/chatburn/internal/ledger"
)

var flagAllUsers bool

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Daily cost report from the ledger",
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&flagAllUsers, "all-users", false, "Report every user in the ledger")
	rootCmd.AddCommand(reportCmd)
}

func runReport(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	led, err := ledger.Open(cfg.Storage.LedgerPath)
	if err != nil {
		return fmt.Errorf("opening cost ledger: %w", err)
	}

	users := []string{cfg.Chat.UserID}
	if flagAllUsers {
		users = led.Users()
	}

	if len(users) == 0 {
		fmt.Println("\n  No cost data recorded yet.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("COST REPORT"))
	fmt.Println()

	userTotals := make(map[string]float64, len(users))

	for _, user := range users {
		days := led.Days(user)
		if len(days) == 0 {
			fmt.Printf("  No cost data for %s.\n\n", user)
			continue
		}

		var totalCost float64
		totalSessions := 0
		totalMessages := 0
		dailyCosts := make([]float64, 0, len(days))

		rows := make([][]string, 0, len(days)+2)
		for _, date := range days {
			agg := led.Day(user, date)
			rows = append(rows, []string{
				date,
				fmt.Sprintf("%d", len(agg.Sessions)),
				cli.FormatNumber(int64(agg.TotalMessages)),
				cli.FormatUSD(agg.TotalCost),
			})
			userTotals[user] += agg.TotalCost
			totalCost += agg.TotalCost
			totalSessions += len(agg.Sessions)
			totalMessages += agg.TotalMessages
			dailyCosts = append(dailyCosts, agg.TotalCost)
		}
		rows = append(rows, []string{"---"})
		rows = append(rows, []string{
			"TOTAL",
			fmt.Sprintf("%d", totalSessions),
			cli.FormatNumber(int64(totalMessages)),
			cli.FormatUSD(totalCost),
		})

		fmt.Print(cli.RenderTable(cli.Table{
			Title:   user,
			Headers: []string{"Date", "Sessions", "Messages", "Cost"},
			Rows:    rows,
		}))

		if len(dailyCosts) > 1 {
			fmt.Printf("  Daily trend  %s\n", cli.RenderSparkline(dailyCosts))
		}
		fmt.Println()
	}

	if flagAllUsers && len(users) > 1 {
		maxTotal := 0.0
		for _, total := range userTotals {
			if total > maxTotal {
				maxTotal = total
			}
		}

		fmt.Println("  Spend by user")
		for _, user := range users {
			fmt.Println(cli.RenderHorizontalBar(user, userTotals[user], maxTotal, 30))
		}
		fmt.Println()
	}

	return nil
}
