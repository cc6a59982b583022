// Package chat runs the interactive chat loop with budget enforcement.
package chat

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/theirongolddev/chatburn/internal/budget"
	"github.com/theirongolddev/chatburn/internal/cli"
	"github.com/theirongolddev/chatburn/internal/config"
	"github.com/theirongolddev/chatburn/internal/cost"
	"github.com/theirongolddev/chatburn/internal/history"
	"github.com/theirongolddev/chatburn/internal/ledger"
	"github.com/theirongolddev/chatburn/internal/llm"
	"github.com/theirongolddev/chatburn/internal/pricing"
	"github.com/theirongolddev/chatburn/internal/tokens"
)

// Options wires a session's collaborators. Config, Ledger, and Client are
// required; History is optional, and nil Logger/Input/Output get defaults.
type Options struct {
	Config  config.Config
	Table   pricing.Table
	Ledger  *ledger.Ledger
	Client  llm.Completer
	History *history.Store
	Logger  *slog.Logger
	Input   io.Reader
	Output  io.Writer
}

// Session is one interactive chat conversation with running cost totals.
// Sessions are single-use: construct, Run, discard.
type Session struct {
	cfg     config.Config
	table   pricing.Table
	guard   budget.Guard
	ledger  *ledger.Ledger
	counter *tokens.Counter
	client  llm.Completer
	hist    *history.Store
	log     *slog.Logger

	id           string
	sessionCost  float64
	messageCount int
	running      bool
	saved        bool

	in  io.Reader
	out io.Writer
}

// NewSession builds a session and performs the daily-budget pre-check: a
// user whose daily spend already reached the cap gets a session that starts
// refused rather than silently proceeding.
func NewSession(opts Options) *Session {
	s := &Session{
		cfg:     opts.Config,
		table:   opts.Table,
		ledger:  opts.Ledger,
		counter: tokens.NewCounter(),
		client:  opts.Client,
		hist:    opts.History,
		log:     opts.Logger,
		id:      uuid.NewString()[:8],
		running: true,
		in:      opts.Input,
		out:     opts.Output,
	}
	s.guard = budget.New(
		opts.Config.Budget.SessionUSD,
		opts.Config.Budget.DailyUSD,
		opts.Config.Budget.WarningThreshold,
	)
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.in == nil {
		s.in = os.Stdin
	}
	if s.out == nil {
		s.out = os.Stdout
	}

	s.log.Info("chat session started",
		"session_id", s.id,
		"user_id", s.cfg.Chat.UserID,
		"model", s.cfg.Chat.Model,
	)

	dailyCost := s.ledger.DailyCost(s.cfg.Chat.UserID, "")
	if s.guard.DailyExhausted(dailyCost) {
		s.log.Warn("daily budget already exceeded",
			"user_id", s.cfg.Chat.UserID,
			"daily_cost", dailyCost,
			"daily_budget", s.cfg.Budget.DailyUSD,
		)
		fmt.Fprintf(s.out, "Daily budget exceeded (%s spent of %s)\n",
			cli.FormatUSD(dailyCost), cli.FormatUSD(s.cfg.Budget.DailyUSD))
		fmt.Fprintln(s.out, "Contact your administrator to increase the budget.")
		s.running = false
	}

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Cost returns the running session cost in USD.
func (s *Session) Cost() float64 { return s.sessionCost }

// Messages returns the number of completed exchanges.
func (s *Session) Messages() int { return s.messageCount }

// Running reports whether the session accepts further input.
func (s *Session) Running() bool { return s.running }

// Run reads input lines until the session stops, then persists the session
// record. Blocking and single-threaded: one exchange at a time.
func (s *Session) Run(ctx context.Context) error {
	if !s.running {
		// Refused at the daily pre-check: nothing ran, nothing to record.
		s.saved = true
		return nil
	}

	fmt.Fprintln(s.out, "AI Chat - type 'exit' to quit, 'help' for commands")
	fmt.Fprintln(s.out)

	scanner := bufio.NewScanner(s.in)
	for s.running {
		fmt.Fprint(s.out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(s.out, "\nGoodbye!")
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		s.ProcessMessage(ctx, input)
	}

	if err := scanner.Err(); err != nil {
		_ = s.Stop()
		return fmt.Errorf("reading input: %w", err)
	}
	return s.Stop()
}

// ProcessMessage routes one line of input: built-in commands are free,
// anything else goes to the completion service under budget control.
func (s *Session) ProcessMessage(ctx context.Context, message string) {
	switch strings.ToLower(message) {
	case "exit":
		_ = s.Stop()
		s.running = false
		fmt.Fprintf(s.out, "\nGoodbye! Total cost: %s\n", cli.FormatUSD(s.sessionCost))
	case "help":
		s.printHelp()
	case "/cost":
		s.printCostReport()
	case "/budget":
		s.printBudgetStatus()
	default:
		s.sendMessage(ctx, message)
	}
}

// Stop persists the session record once. Safe to call repeatedly.
func (s *Session) Stop() error {
	if s.saved {
		return nil
	}
	s.saved = true

	err := s.ledger.AddSession(s.id, s.cfg.Chat.UserID, s.sessionCost, s.messageCount)
	if err != nil {
		s.log.Error("saving session record failed", "session_id", s.id, "error", err)
		return err
	}

	s.log.Info("chat session ended",
		"session_id", s.id,
		"user_id", s.cfg.Chat.UserID,
		"total_cost", s.sessionCost,
		"messages", s.messageCount,
	)
	return nil
}

func (s *Session) sendMessage(ctx context.Context, message string) {
	model := s.cfg.Chat.Model

	// Pessimistic estimate: message tokens in, the full response limit out.
	// The guard must never under-estimate the rejection boundary.
	inputTokens := s.counter.Count(message, model)
	estimated, err := cost.Calculate(s.table, model, inputTokens, s.cfg.Chat.MaxTokens)
	if err != nil {
		s.log.Error("cost estimate failed", "session_id", s.id, "model", model, "error", err)
		fmt.Fprintf(s.out, "\nError: %v\n", err)
		return
	}

	fmt.Fprintf(s.out, "\n[Estimated cost: %s]\n", cli.FormatUSD(estimated))

	decision := s.guard.Admit(s.sessionCost, estimated)
	if !decision.Admitted {
		s.log.Warn("budget exceeded",
			"session_id", s.id,
			"user_id", s.cfg.Chat.UserID,
			"session_cost", decision.SessionCost,
			"estimated_cost", decision.Estimated,
			"budget", decision.Budget,
		)
		fmt.Fprintln(s.out, "\nBudget exceeded!")
		fmt.Fprintf(s.out, "Session cost:   %s\n", cli.FormatUSD(decision.SessionCost))
		fmt.Fprintf(s.out, "Session budget: %s\n", cli.FormatUSD(decision.Budget))
		fmt.Fprintf(s.out, "This message would cost: %s\n", cli.FormatUSD(decision.Estimated))
		fmt.Fprintln(s.out, "\nSession ended due to budget limit.")
		s.running = false
		return
	}

	comp, err := s.client.Complete(ctx, llm.Request{
		Model:       model,
		Message:     message,
		MaxTokens:   s.cfg.Chat.MaxTokens,
		Temperature: s.cfg.Chat.Temperature,
	})
	if err != nil {
		// Service failures are recovered in place: nothing was billed.
		s.log.Error("API call failed",
			"session_id", s.id,
			"user_id", s.cfg.Chat.UserID,
			"error", err,
		)
		fmt.Fprintf(s.out, "\nError: %v\n", err)
		return
	}

	// Actual usage comes from the service, never re-estimated.
	actual, err := cost.Calculate(s.table, model, comp.PromptTokens, comp.CompletionTokens)
	if err != nil {
		s.log.Error("cost calculation failed", "session_id", s.id, "model", model, "error", err)
		fmt.Fprintf(s.out, "\nError: %v\n", err)
		return
	}

	s.sessionCost += actual
	s.messageCount++

	s.log.Info("API call completed",
		"session_id", s.id,
		"user_id", s.cfg.Chat.UserID,
		"model", model,
		"input_tokens", comp.PromptTokens,
		"output_tokens", comp.CompletionTokens,
		"total_tokens", comp.TotalTokens,
		"cost", actual,
		"session_total", s.sessionCost,
		"message_count", s.messageCount,
	)

	if s.hist != nil {
		saveErr := s.hist.Save(history.Exchange{
			SessionID:    s.id,
			UserID:       s.cfg.Chat.UserID,
			Model:        model,
			Prompt:       message,
			Reply:        comp.Reply,
			InputTokens:  comp.PromptTokens,
			OutputTokens: comp.CompletionTokens,
			Cost:         actual,
		})
		if saveErr != nil {
			s.log.Warn("saving exchange failed", "session_id", s.id, "error", saveErr)
		}
	}

	switch s.guard.Check(s.sessionCost) {
	case budget.LevelCritical:
		usage := s.sessionCost / s.cfg.Budget.SessionUSD
		s.log.Warn("budget critical", "session_id", s.id, "budget_percent", usage)
		fmt.Fprintf(s.out, "\nCritical: %.0f%% of session budget used!\n", usage*100)
	case budget.LevelWarning:
		usage := s.sessionCost / s.cfg.Budget.SessionUSD
		s.log.Info("budget warning", "session_id", s.id, "budget_percent", usage)
		fmt.Fprintf(s.out, "\nWarning: %.0f%% of session budget used\n", usage*100)
	}

	fmt.Fprintf(s.out, "\nAI: %s\n", comp.Reply)
	fmt.Fprintf(s.out, "\n[Tokens: %d in + %d out = %d total]\n",
		comp.PromptTokens, comp.CompletionTokens, comp.TotalTokens)
	fmt.Fprintf(s.out, "[Cost: %s | Session: %s]\n", cli.FormatUSD(actual), cli.FormatUSD(s.sessionCost))
}

func (s *Session) printHelp() {
	fmt.Fprintln(s.out, "\nAvailable commands:")
	fmt.Fprintln(s.out, "  exit    - Exit the chat")
	fmt.Fprintln(s.out, "  help    - Show this help message")
	fmt.Fprintln(s.out, "  /cost   - Show cost report")
	fmt.Fprintln(s.out, "  /budget - Show budget status")
	fmt.Fprintln(s.out, "\nCurrent settings:")
	fmt.Fprintf(s.out, "  Model: %s\n", s.cfg.Chat.Model)
	fmt.Fprintf(s.out, "  Max tokens: %d\n", s.cfg.Chat.MaxTokens)
	fmt.Fprintf(s.out, "  Temperature: %.1f\n", s.cfg.Chat.Temperature)
	fmt.Fprintln(s.out, "\nSession stats:")
	fmt.Fprintf(s.out, "  Messages: %d\n", s.messageCount)
	fmt.Fprintf(s.out, "  Total cost: %s\n", cli.FormatUSD(s.sessionCost))
}

func (s *Session) printCostReport() {
	fmt.Fprintln(s.out, "\nCost Report")
	fmt.Fprintln(s.out, strings.Repeat("=", 50))
	fmt.Fprintf(s.out, "Session: %s (%d messages)\n", cli.FormatUSD(s.sessionCost), s.messageCount)

	if s.cfg.Budget.DailyUSD > 0 {
		dailyCost := s.ledger.DailyCost(s.cfg.Chat.UserID, "")
		fmt.Fprintf(s.out, "Today: %s / %s (%.1f%%)\n",
			cli.FormatUSD(dailyCost), cli.FormatUSD(s.cfg.Budget.DailyUSD),
			dailyCost/s.cfg.Budget.DailyUSD*100)
	}

	if s.sessionCost > 0 && s.messageCount > 0 {
		fmt.Fprintf(s.out, "Average per message: %s\n", cli.FormatUSD(s.sessionCost/float64(s.messageCount)))
	}
}

func (s *Session) printBudgetStatus() {
	fmt.Fprintln(s.out, "\nBudget Status")
	fmt.Fprintln(s.out, strings.Repeat("=", 50))

	if s.cfg.Budget.SessionUSD > 0 {
		fmt.Fprintf(s.out, "Session: %s / %s (%.1f%%)\n",
			cli.FormatUSD(s.sessionCost), cli.FormatUSD(s.cfg.Budget.SessionUSD),
			s.sessionCost/s.cfg.Budget.SessionUSD*100)
	} else {
		fmt.Fprintf(s.out, "Session: %s (no limit)\n", cli.FormatUSD(s.sessionCost))
	}

	if s.cfg.Budget.DailyUSD > 0 {
		dailyCost := s.ledger.DailyCost(s.cfg.Chat.UserID, "")
		fmt.Fprintf(s.out, "Daily: %s / %s (%.1f%%)\n",
			cli.FormatUSD(dailyCost), cli.FormatUSD(s.cfg.Budget.DailyUSD),
			dailyCost/s.cfg.Budget.DailyUSD*100)
	} else {
		fmt.Fprintln(s.out, "Daily: no limit set")
	}
}
