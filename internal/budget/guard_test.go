package budget

import "testing"

func TestAdmitBoundary(t *testing.T) {
	g := New(1.00, 0, 0)

	// 0.96 + 0.03 = 0.99 <= 1.00 -> admit
	d := g.Admit(0.96, 0.03)
	if !d.Admitted {
		t.Fatalf("Admit(0.96, 0.03) rejected; decision = %+v", d)
	}

	// 0.96 + 0.05 = 1.01 > 1.00 -> reject
	d = g.Admit(0.96, 0.05)
	if d.Admitted {
		t.Fatalf("Admit(0.96, 0.05) admitted; decision = %+v", d)
	}
	if d.SessionCost != 0.96 || d.Budget != 1.00 || d.Estimated != 0.05 {
		t.Fatalf("rejection figures = %+v", d)
	}
}

func TestAdmitUnlimited(t *testing.T) {
	g := New(0, 0, 0)
	if d := g.Admit(1e6, 1e6); !d.Admitted {
		t.Fatal("zero session budget must admit everything")
	}
}

func TestCheckLevels(t *testing.T) {
	g := New(1.00, 0, 0.75)

	tests := []struct {
		cost float64
		want Level
	}{
		{0.00, LevelNone},
		{0.50, LevelNone},
		{0.74, LevelNone},
		{0.75, LevelWarning},
		{0.76, LevelWarning},
		{0.89, LevelWarning},
		{0.90, LevelCritical},
		{0.95, LevelCritical},
		{1.20, LevelCritical},
	}

	for _, tt := range tests {
		if got := g.Check(tt.cost); got != tt.want {
			t.Errorf("Check(%.2f) = %v, want %v", tt.cost, got, tt.want)
		}
	}
}

func TestCheckNoBudget(t *testing.T) {
	g := New(0, 0, 0.75)
	if got := g.Check(100); got != LevelNone {
		t.Fatalf("Check with no budget = %v, want LevelNone", got)
	}
}

func TestWarningThresholdDefault(t *testing.T) {
	g := New(1.00, 0, 0)
	if g.WarningThreshold != DefaultWarningThreshold {
		t.Fatalf("WarningThreshold = %.2f, want %.2f", g.WarningThreshold, DefaultWarningThreshold)
	}
}

func TestDailyExhausted(t *testing.T) {
	g := New(0, 5.00, 0)

	if !g.DailyExhausted(5.00) {
		t.Fatal("DailyExhausted(5.00) with cap 5.00 = false, want true")
	}
	if !g.DailyExhausted(6.00) {
		t.Fatal("DailyExhausted(6.00) with cap 5.00 = false, want true")
	}
	if g.DailyExhausted(4.99) {
		t.Fatal("DailyExhausted(4.99) with cap 5.00 = true, want false")
	}

	unlimited := New(0, 0, 0)
	if unlimited.DailyExhausted(1e9) {
		t.Fatal("zero daily budget must never report exhausted")
	}
}

func TestLevelString(t *testing.T) {
	if LevelNone.String() != "none" || LevelWarning.String() != "warning" || LevelCritical.String() != "critical" {
		t.Fatal("Level.String mismatch")
	}
}
