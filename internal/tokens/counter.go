// Package tokens estimates token counts for chat messages.
package tokens

import "strings"

// encoding is a deterministic char-based token approximation standing in for
// a model's real BPE vocabulary. The ~4 chars/token rule of thumb holds for
// mixed English/code text; denser vocabularies get a slightly higher ratio.
type encoding struct {
	name          string
	charsPerToken int
}

var (
	encO200k   = encoding{name: "o200k_base", charsPerToken: 4}
	encCl100k  = encoding{name: "cl100k_base", charsPerToken: 4}
	encDefault = encCl100k
)

// modelEncodings maps model-name prefixes to their encoding.
// Longest prefix wins.
var modelEncodings = []struct {
	prefix string
	enc    encoding
}{
	{"gpt-4o", encO200k},
	{"gpt-5", encO200k},
	{"gpt-4.1", encO200k},
	{"o3-", encO200k},
	{"o4-", encO200k},
	{"gpt-4", encCl100k},
	{"gpt-3.5", encCl100k},
}

// Counter resolves a model's encoding and counts tokens with it.
// The zero value is usable.
type Counter struct{}

// NewCounter returns a token counter.
func NewCounter() *Counter {
	return &Counter{}
}

// Count returns the token count of text under the given model's encoding.
// Unknown models fall back to the default encoding rather than failing.
// Empty text counts as zero. Identical (text, model) pairs always yield
// the same count.
func (c *Counter) Count(text, model string) int {
	if len(text) == 0 {
		return 0
	}
	enc := encodingFor(model)
	return (len(text) + enc.charsPerToken - 1) / enc.charsPerToken
}

// EncodingName returns the name of the encoding used for a model.
func (c *Counter) EncodingName(model string) string {
	return encodingFor(model).name
}

func encodingFor(model string) encoding {
	best := encDefault
	bestLen := 0
	for _, me := range modelEncodings {
		if strings.HasPrefix(model, me.prefix) && len(me.prefix) > bestLen {
			best = me.enc
			bestLen = len(me.prefix)
		}
	}
	return best
}
