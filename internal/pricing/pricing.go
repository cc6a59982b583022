// Package pricing holds the per-model token price table used for cost math.
package pricing

import "strings"

// ModelPricing holds per-million-token prices for a model.
type ModelPricing struct {
	InputPerMTok       float64
	OutputPerMTok      float64
	CachedInputPerMTok float64 // 0 when the model has no cached-input rate
}

// defaultPricing maps model base names to their published prices
// (USD per 1M tokens, OpenAI price list as of January 2025).
var defaultPricing = map[string]ModelPricing{
	"gpt-4o": {
		InputPerMTok: 2.50, OutputPerMTok: 10.00, CachedInputPerMTok: 1.25,
	},
	"gpt-4o-mini": {
		InputPerMTok: 0.15, OutputPerMTok: 0.60, CachedInputPerMTok: 0.075,
	},
	"gpt-5": {
		InputPerMTok: 1.25, OutputPerMTok: 10.00, CachedInputPerMTok: 0.125,
	},
	"gpt-5-mini": {
		InputPerMTok: 0.25, OutputPerMTok: 2.00, CachedInputPerMTok: 0.025,
	},
	"gpt-5-nano": {
		InputPerMTok: 0.05, OutputPerMTok: 0.40, CachedInputPerMTok: 0.005,
	},
	"gpt-4.1": {
		InputPerMTok: 2.00, OutputPerMTok: 8.00, CachedInputPerMTok: 0.50,
	},
	"gpt-4.1-mini": {
		InputPerMTok: 0.40, OutputPerMTok: 1.60, CachedInputPerMTok: 0.10,
	},
	"gpt-4.1-nano": {
		InputPerMTok: 0.10, OutputPerMTok: 0.40, CachedInputPerMTok: 0.025,
	},
	"o3-mini": {
		InputPerMTok: 1.10, OutputPerMTok: 4.40, CachedInputPerMTok: 0.55,
	},
	"o4-mini": {
		InputPerMTok: 1.10, OutputPerMTok: 4.40, CachedInputPerMTok: 0.275,
	},
	"gpt-4-turbo": {
		InputPerMTok: 10.00, OutputPerMTok: 30.00,
	},
	"gpt-3.5-turbo": {
		InputPerMTok: 0.50, OutputPerMTok: 1.50,
	},
}

// Override adjusts individual rates for one model. Nil fields keep the
// default rate; overrides for unknown models add a new entry.
type Override struct {
	InputPerMTok       *float64
	OutputPerMTok      *float64
	CachedInputPerMTok *float64
}

// Table is an immutable model → pricing mapping. The zero value is not
// usable; construct with NewTable.
type Table struct {
	models map[string]ModelPricing
}

// NewTable builds a pricing table from the built-in defaults with the given
// per-model overrides applied. The result does not alias the inputs.
func NewTable(overrides map[string]Override) Table {
	models := make(map[string]ModelPricing, len(defaultPricing))
	for name, p := range defaultPricing {
		models[name] = p
	}
	for name, o := range overrides {
		p := models[name]
		if o.InputPerMTok != nil {
			p.InputPerMTok = *o.InputPerMTok
		}
		if o.OutputPerMTok != nil {
			p.OutputPerMTok = *o.OutputPerMTok
		}
		if o.CachedInputPerMTok != nil {
			p.CachedInputPerMTok = *o.CachedInputPerMTok
		}
		models[name] = p
	}
	return Table{models: models}
}

// Default returns the built-in pricing table without overrides.
func Default() Table {
	return NewTable(nil)
}

// Lookup returns the pricing for a model, normalizing the name first.
// Returns zero pricing and false if the model is unknown.
func (t Table) Lookup(model string) (ModelPricing, bool) {
	p, ok := t.models[t.Normalize(model)]
	return p, ok
}

// Has reports whether the table carries an entry for the model.
func (t Table) Has(model string) bool {
	_, ok := t.Lookup(model)
	return ok
}

// Models returns the model names in the table, unsorted.
func (t Table) Models() []string {
	names := make([]string, 0, len(t.models))
	for name := range t.models {
		names = append(names, name)
	}
	return names
}

// Normalize strips date suffixes from model identifiers.
// e.g., "gpt-4o-2024-08-06" -> "gpt-4o"
func (t Table) Normalize(raw string) string {
	if _, ok := t.models[raw]; ok {
		return raw
	}

	// Snapshot names append a -YYYY-MM-DD or -YYYYMMDD suffix. Strip
	// trailing all-digit segments until the base name matches.
	parts := strings.Split(raw, "-")
	for len(parts) >= 2 && isAllDigits(parts[len(parts)-1]) {
		parts = parts[:len(parts)-1]
		candidate := strings.Join(parts, "-")
		if _, ok := t.models[candidate]; ok {
			return candidate
		}
	}

	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
