package history

import (
	"math"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndRecent(t *testing.T) {
	s := openTestStore(t)

	exchanges := []Exchange{
		{SessionID: "s1", UserID: "user1", Model: "gpt-3.5-turbo", Prompt: "hi", Reply: "hello", InputTokens: 2, OutputTokens: 3, Cost: 0.000005},
		{SessionID: "s1", UserID: "user1", Model: "gpt-3.5-turbo", Prompt: "more", Reply: "sure", InputTokens: 4, OutputTokens: 6, Cost: 0.00001},
		{SessionID: "s2", UserID: "other", Model: "gpt-4o", Prompt: "x", Reply: "y", InputTokens: 1, OutputTokens: 1, Cost: 0.0000125},
	}
	for _, e := range exchanges {
		if err := s.Save(e); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	recent, err := s.Recent("user1", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent returned %d rows, want 2", len(recent))
	}
	// Most recent first.
	if recent[0].Prompt != "more" || recent[1].Prompt != "hi" {
		t.Fatalf("order = %q, %q", recent[0].Prompt, recent[1].Prompt)
	}
	if recent[0].Model != "gpt-3.5-turbo" || recent[0].OutputTokens != 6 {
		t.Fatalf("row = %+v", recent[0])
	}
	if recent[0].CreatedAt.IsZero() {
		t.Fatal("CreatedAt not populated")
	}
}

func TestRecentLimit(t *testing.T) {
	s := openTestStore(t)

	for i := 0; i < 5; i++ {
		if err := s.Save(Exchange{SessionID: "s1", UserID: "u", Model: "m", Prompt: "p", Reply: "r"}); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.Recent("u", 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Recent returned %d rows, want 3", len(recent))
	}
}

func TestSessionTotals(t *testing.T) {
	s := openTestStore(t)

	_ = s.Save(Exchange{SessionID: "s1", UserID: "u", Model: "m", Prompt: "a", Reply: "b", InputTokens: 10, OutputTokens: 20, Cost: 0.01})
	_ = s.Save(Exchange{SessionID: "s1", UserID: "u", Model: "m", Prompt: "c", Reply: "d", InputTokens: 5, OutputTokens: 5, Cost: 0.02})
	_ = s.Save(Exchange{SessionID: "s2", UserID: "u", Model: "m", Prompt: "e", Reply: "f", InputTokens: 99, OutputTokens: 99, Cost: 9.99})

	in, out, cost, err := s.SessionTotals("s1")
	if err != nil {
		t.Fatalf("SessionTotals: %v", err)
	}
	if in != 15 || out != 25 {
		t.Fatalf("totals = %d in / %d out, want 15/25", in, out)
	}
	if math.Abs(cost-0.03) > 1e-9 {
		t.Fatalf("cost = %.6f, want 0.03", cost)
	}

	count, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("Count = %d, want 3", count)
	}
}
