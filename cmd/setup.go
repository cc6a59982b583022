package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/chatburn/internal/config"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults so re-running keeps prior answers.
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}

	table := config.PricingTable(cfg)
	models := table.Models()
	sort.Strings(models)

	model := cfg.Chat.Model
	userID := cfg.Chat.UserID
	apiKey := cfg.API.APIKey
	sessionBudget := formatBudgetInput(cfg.Budget.SessionUSD)
	dailyBudget := formatBudgetInput(cfg.Budget.DailyUSD)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Model").
				Description("Which model should chat sessions use?").
				Options(huh.NewOptions(models...)...).
				Value(&model),

			huh.NewInput().
				Title("User id").
				Description("Costs are tracked per user per day.").
				Value(&userID),

			huh.NewInput().
				Title("API key").
				Description("Leave blank to use the OPENAI_API_KEY env var.").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Session budget (USD)").
				Description("Maximum spend per chat session. 0 = unlimited.").
				Validate(validateBudgetInput).
				Value(&sessionBudget),

			huh.NewInput().
				Title("Daily budget (USD)").
				Description("Maximum spend per user per day. 0 = unlimited.").
				Validate(validateBudgetInput).
				Value(&dailyBudget),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("setup aborted: %w", err)
	}

	cfg.Chat.Model = model
	cfg.Chat.UserID = userID
	cfg.API.APIKey = apiKey
	cfg.Budget.SessionUSD, _ = strconv.ParseFloat(sessionBudget, 64)
	cfg.Budget.DailyUSD, _ = strconv.ParseFloat(dailyBudget, 64)

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `chatburn setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func formatBudgetInput(v float64) string {
	if v <= 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func validateBudgetInput(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("enter a dollar amount, e.g. 1.50")
	}
	if v < 0 {
		return fmt.Errorf("budget cannot be negative")
	}
	return nil
}
