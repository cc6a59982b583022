// Package cost computes USD costs from token counts and the pricing table.
package cost

import (
	"fmt"

	"github.com/theirongolddev/chatburn/internal/pricing"
)

// UnknownModelError indicates the model has no pricing entry.
type UnknownModelError struct {
	Model string
}

func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("unknown model: %s", e.Model)
}

// Calculate computes the USD cost for a single API call. No rounding is
// applied; display formatting is the caller's concern.
func Calculate(table pricing.Table, model string, inputTokens, outputTokens int) (float64, error) {
	p, ok := table.Lookup(model)
	if !ok {
		return 0, &UnknownModelError{Model: model}
	}

	c := float64(inputTokens) * p.InputPerMTok / 1_000_000
	c += float64(outputTokens) * p.OutputPerMTok / 1_000_000
	return c, nil
}
