// Package budget decides whether a prospective API call may spend money.
package budget

// DefaultWarningThreshold is the budget fraction at which warnings start.
const DefaultWarningThreshold = 0.75

// criticalThreshold is the budget fraction at which warnings become critical.
const criticalThreshold = 0.9

// Level classifies how close a session is to its budget.
type Level int

const (
	LevelNone Level = iota
	LevelWarning
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelCritical:
		return "critical"
	default:
		return "none"
	}
}

// Decision is the outcome of a pre-flight budget check. Rejection is an
// expected, frequent outcome, so it is a value rather than an error.
type Decision struct {
	Admitted    bool
	SessionCost float64
	Budget      float64
	Estimated   float64
}

// Guard enforces a per-session cap and a per-user-per-day cap.
// A cap of 0 means unlimited. The zero value admits everything.
type Guard struct {
	SessionBudget    float64
	DailyBudget      float64
	WarningThreshold float64
}

// New returns a guard with the given caps and warning threshold.
// A non-positive threshold falls back to the default.
func New(sessionBudget, dailyBudget, warningThreshold float64) Guard {
	if warningThreshold <= 0 {
		warningThreshold = DefaultWarningThreshold
	}
	return Guard{
		SessionBudget:    sessionBudget,
		DailyBudget:      dailyBudget,
		WarningThreshold: warningThreshold,
	}
}

// Admit decides whether a call with the given estimated cost may proceed
// on top of the session's spend so far. The estimate must be pessimistic:
// callers price the full configured response limit as output so the guard
// never under-estimates the rejection boundary.
func (g Guard) Admit(sessionCost, estimated float64) Decision {
	d := Decision{
		Admitted:    true,
		SessionCost: sessionCost,
		Budget:      g.SessionBudget,
		Estimated:   estimated,
	}
	if g.SessionBudget > 0 && sessionCost+estimated > g.SessionBudget {
		d.Admitted = false
	}
	return d
}

// Check classifies the session's cumulative spend against the session cap.
// Advisory only; it never blocks further spending.
func (g Guard) Check(sessionCost float64) Level {
	if g.SessionBudget <= 0 {
		return LevelNone
	}
	usage := sessionCost / g.SessionBudget
	switch {
	case usage >= criticalThreshold:
		return LevelCritical
	case usage >= g.WarningThreshold:
		return LevelWarning
	default:
		return LevelNone
	}
}

// DailyExhausted reports whether the user's daily spend has already reached
// the daily cap. Checked once at session construction; an exhausted user's
// session starts refused rather than silently proceeding.
func (g Guard) DailyExhausted(dailyCost float64) bool {
	return g.DailyBudget > 0 && dailyCost >= g.DailyBudget
}
