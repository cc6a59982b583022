package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/cli"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models and their token prices",
	RunE:  runModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

func runModels(_ *cobra.Command, _ []string) error {
	cfg, table, err := loadConfig()
	if err != nil {
		return err
	}

	names := table.Models()
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		p, _ := table.Lookup(name)

		cached := "-"
		if p.CachedInputPerMTok > 0 {
			cached = fmt.Sprintf("$%.3f", p.CachedInputPerMTok)
		}

		label := name
		if name == table.Normalize(cfg.Chat.Model) {
			label = name + " *"
		}

		rows = append(rows, []string{
			label,
			fmt.Sprintf("$%.2f", p.InputPerMTok),
			fmt.Sprintf("$%.2f", p.OutputPerMTok),
			cached,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Pricing per 1M tokens (* = configured model)",
		Headers: []string{"Model", "Input", "Output", "Cached In"},
		Rows:    rows,
	}))
	fmt.Println()

	return nil
}
