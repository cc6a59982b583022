package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/cli"
	"github.com/theirongolddev/chatburn/internal/history"
)

var flagHistoryLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent chat exchanges",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 20, "Number of exchanges to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.Open(cfg.Storage.HistoryDB)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer func() { _ = store.Close() }()

	exchanges, err := store.Recent(cfg.Chat.UserID, flagHistoryLimit)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if len(exchanges) == 0 {
		fmt.Println("\n  No exchanges recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(exchanges))
	for _, e := range exchanges {
		rows = append(rows, []string{
			e.CreatedAt.Local().Format("2006-01-02 15:04"),
			e.SessionID,
			cli.Truncate(e.Prompt, 40),
			fmt.Sprintf("%s/%s",
				cli.FormatTokens(int64(e.InputTokens)),
				cli.FormatTokens(int64(e.OutputTokens))),
			cli.FormatUSD(e.Cost),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Last %d exchanges for %s", len(exchanges), cfg.Chat.UserID),
		Headers: []string{"When", "Session", "Prompt", "Tokens in/out", "Cost"},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}
