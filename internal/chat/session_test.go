package chat

import (
	"bytes"
	"context"
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/chatburn/internal/config"
	"github.com/theirongolddev/chatburn/internal/ledger"
	"github.com/theirongolddev/chatburn/internal/llm"
	"github.com/theirongolddev/chatburn/internal/pricing"
)

// fakeCompleter returns canned completions and counts calls.
type fakeCompleter struct {
	calls int
	comp  llm.Completion
	err   error
}

func (f *fakeCompleter) Complete(_ context.Context, _ llm.Request) (*llm.Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	c := f.comp
	return &c, nil
}

func testConfig() config.Config {
	cfg := config.DefaultConfig()
	cfg.Chat.UserID = "user1"
	return cfg
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "costs.json"))
	if err != nil {
		t.Fatalf("ledger.Open: %v", err)
	}
	return l
}

func newTestSession(t *testing.T, cfg config.Config, l *ledger.Ledger, client llm.Completer, out *bytes.Buffer) *Session {
	t.Helper()
	return NewSession(Options{
		Config: cfg,
		Table:  pricing.Default(),
		Ledger: l,
		Client: client,
		Output: out,
	})
}

func TestCommandsDoNotCallService(t *testing.T) {
	fake := &fakeCompleter{}
	var out bytes.Buffer
	s := newTestSession(t, testConfig(), testLedger(t), fake, &out)

	for _, cmd := range []string{"help", "HELP", "/cost", "/Cost", "/budget", "/BUDGET"} {
		s.ProcessMessage(context.Background(), cmd)
	}

	if fake.calls != 0 {
		t.Fatalf("commands triggered %d API calls, want 0", fake.calls)
	}
	if s.Cost() != 0 || s.Messages() != 0 {
		t.Fatalf("commands changed totals: cost=%.6f messages=%d", s.Cost(), s.Messages())
	}
	if !strings.Contains(out.String(), "Available commands") {
		t.Fatal("help output missing")
	}
	if !strings.Contains(out.String(), "Budget Status") {
		t.Fatal("/budget output missing")
	}
}

func TestSuccessfulMessageAccumulates(t *testing.T) {
	// gpt-3.5-turbo at 0.50/1.50 per MTok: 10 in + 20 out = $0.000035.
	fake := &fakeCompleter{comp: llm.Completion{
		Reply:            "hi there",
		PromptTokens:     10,
		CompletionTokens: 20,
		TotalTokens:      30,
	}}
	var out bytes.Buffer
	s := newTestSession(t, testConfig(), testLedger(t), fake, &out)

	s.ProcessMessage(context.Background(), "hello")

	if fake.calls != 1 {
		t.Fatalf("API calls = %d, want 1", fake.calls)
	}
	if math.Abs(s.Cost()-0.000035) > 1e-12 {
		t.Fatalf("session cost = %.9f, want 0.000035", s.Cost())
	}
	if s.Messages() != 1 {
		t.Fatalf("messages = %d, want 1", s.Messages())
	}
	if !s.Running() {
		t.Fatal("session stopped after successful message")
	}

	got := out.String()
	if !strings.Contains(got, "AI: hi there") {
		t.Fatalf("reply missing from output: %q", got)
	}
	if !strings.Contains(got, "[Tokens: 10 in + 20 out = 30 total]") {
		t.Fatalf("token breakdown missing: %q", got)
	}
	if !strings.Contains(got, "[Estimated cost:") {
		t.Fatalf("estimate line missing: %q", got)
	}
}

func TestFailedCallLeavesTotalsUnchanged(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("service unavailable")}
	var out bytes.Buffer
	s := newTestSession(t, testConfig(), testLedger(t), fake, &out)

	s.ProcessMessage(context.Background(), "hello")

	if s.Cost() != 0 || s.Messages() != 0 {
		t.Fatalf("failed call changed totals: cost=%.6f messages=%d", s.Cost(), s.Messages())
	}
	if !s.Running() {
		t.Fatal("service error stopped the session; it must continue")
	}
	if !strings.Contains(out.String(), "service unavailable") {
		t.Fatal("error not reported to user")
	}
}

func TestBudgetRejectionStopsSession(t *testing.T) {
	cfg := testConfig()
	// Estimate for any message is at least 500 output tokens at 1.50/MTok
	// = $0.00075, comfortably above this cap.
	cfg.Budget.SessionUSD = 0.0005

	fake := &fakeCompleter{comp: llm.Completion{Reply: "x"}}
	var out bytes.Buffer
	s := newTestSession(t, cfg, testLedger(t), fake, &out)

	s.ProcessMessage(context.Background(), "hello")

	if fake.calls != 0 {
		t.Fatalf("rejected message still called the service %d times", fake.calls)
	}
	if s.Running() {
		t.Fatal("session still running after budget rejection")
	}
	if s.Cost() != 0 {
		t.Fatalf("rejection spent money: %.6f", s.Cost())
	}

	got := out.String()
	for _, want := range []string{"Budget exceeded!", "Session cost:", "Session budget:", "This message would cost:"} {
		if !strings.Contains(got, want) {
			t.Fatalf("rejection output missing %q: %q", want, got)
		}
	}
}

func TestBudgetWarningLevels(t *testing.T) {
	tests := []struct {
		name       string
		sessionUSD float64
		want       string
		wantAbsent string
	}{
		// Actual cost per message is $0.000035 (10 in / 20 out).
		{"warning at 87%", 0.00004, "Warning:", "Critical:"},
		{"critical at 97%", 0.000036, "Critical:", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Budget.SessionUSD = tt.sessionUSD
			cfg.Chat.MaxTokens = 2 // keep the pessimistic estimate under the cap

			fake := &fakeCompleter{comp: llm.Completion{
				Reply: "ok", PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30,
			}}
			var out bytes.Buffer
			s := newTestSession(t, cfg, testLedger(t), fake, &out)

			s.ProcessMessage(context.Background(), "hi")

			if fake.calls != 1 {
				t.Fatalf("API calls = %d, want 1", fake.calls)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Fatalf("output missing %q: %q", tt.want, out.String())
			}
			if tt.wantAbsent != "" && strings.Contains(out.String(), tt.wantAbsent) {
				t.Fatalf("output unexpectedly contains %q", tt.wantAbsent)
			}
		})
	}
}

func TestDailyBudgetPreCheck(t *testing.T) {
	l := testLedger(t)
	if err := l.AddSession("earlier", "user1", 5.00, 10); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig()
	cfg.Budget.DailyUSD = 5.00

	var out bytes.Buffer
	s := newTestSession(t, cfg, l, &fakeCompleter{}, &out)

	if s.Running() {
		t.Fatal("session started running despite exhausted daily budget")
	}
	if !strings.Contains(out.String(), "Daily budget exceeded") {
		t.Fatalf("refusal message missing: %q", out.String())
	}
}

func TestExitPersistsSessionRecord(t *testing.T) {
	l := testLedger(t)
	fake := &fakeCompleter{comp: llm.Completion{
		Reply: "ok", PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30,
	}}
	var out bytes.Buffer
	s := newTestSession(t, testConfig(), l, fake, &out)

	s.ProcessMessage(context.Background(), "hello")
	s.ProcessMessage(context.Background(), "exit")

	if s.Running() {
		t.Fatal("session still running after exit")
	}

	agg := l.Day("user1", "")
	if agg == nil || len(agg.Sessions) != 1 {
		t.Fatalf("ledger aggregate = %+v, want 1 session", agg)
	}
	rec := agg.Sessions[0]
	if rec.SessionID != s.ID() || rec.Messages != 1 {
		t.Fatalf("record = %+v", rec)
	}
	if math.Abs(rec.Cost-0.000035) > 1e-12 {
		t.Fatalf("record cost = %.9f, want 0.000035", rec.Cost)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	l := testLedger(t)
	var out bytes.Buffer
	s := newTestSession(t, testConfig(), l, &fakeCompleter{}, &out)

	if err := s.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("second Stop: %v", err)
	}

	agg := l.Day("user1", "")
	if agg == nil || len(agg.Sessions) != 1 {
		t.Fatalf("repeated Stop wrote %+v, want exactly 1 record", agg)
	}
}

func TestRunLoop(t *testing.T) {
	l := testLedger(t)
	fake := &fakeCompleter{comp: llm.Completion{
		Reply: "sure", PromptTokens: 5, CompletionTokens: 5, TotalTokens: 10,
	}}
	var out bytes.Buffer

	s := NewSession(Options{
		Config: testConfig(),
		Table:  pricing.Default(),
		Ledger: l,
		Client: fake,
		Input:  strings.NewReader("hello\n\nexit\n"),
		Output: &out,
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if fake.calls != 1 {
		t.Fatalf("API calls = %d, want 1 (blank line must be skipped)", fake.calls)
	}
	agg := l.Day("user1", "")
	if agg == nil || len(agg.Sessions) != 1 {
		t.Fatalf("ledger after Run = %+v, want 1 session", agg)
	}
	if !strings.Contains(out.String(), "Goodbye!") {
		t.Fatal("exit message missing")
	}
}

func TestRunPersistsOnEOF(t *testing.T) {
	l := testLedger(t)
	var out bytes.Buffer

	s := NewSession(Options{
		Config: testConfig(),
		Table:  pricing.Default(),
		Ledger: l,
		Client: &fakeCompleter{},
		Input:  strings.NewReader(""), // immediate EOF
		Output: &out,
	})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	agg := l.Day("user1", "")
	if agg == nil || len(agg.Sessions) != 1 {
		t.Fatalf("EOF did not persist the session record: %+v", agg)
	}
}

func TestUnknownModelReportedNotFatal(t *testing.T) {
	cfg := testConfig()
	cfg.Chat.Model = "no-such-model"

	fake := &fakeCompleter{}
	var out bytes.Buffer
	s := newTestSession(t, cfg, testLedger(t), fake, &out)

	s.ProcessMessage(context.Background(), "hello")

	if fake.calls != 0 {
		t.Fatal("unpriced model still reached the service")
	}
	if !s.Running() {
		t.Fatal("pricing error must not stop the session")
	}
	if !strings.Contains(out.String(), "unknown model") {
		t.Fatalf("error not surfaced: %q", out.String())
	}
}
