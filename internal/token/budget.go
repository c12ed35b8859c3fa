// Package token provides token counting and budget management.
package token

import "strings"

// ModelContextLimits maps model names to their maximum context window sizes.
var ModelContextLimits = map[string]int{
	// OpenAI models
	"gpt-4o":            128000,
	"gpt-4o-mini":       128000,
	"gpt-4-turbo":       128000,
	"gpt-4":             8192,
	"gpt-3.5-turbo":     16385,
	"gpt-3.5-turbo-16k": 16385,

	// Google Gemini models
	"gemini-2.0-flash": 1000000,
	"gemini-2.5-flash": 1000000,
	"gemini-2.5-pro":   1000000,
}

// DefaultContextLimit is used when the model is not recognized.
const DefaultContextLimit = 8192

// ResponseReserve is the share of the context window kept free for the answer.
const ResponseReserve = 0.25

// ContextLimit returns the context window of model, matching dated variants
// such as "gpt-4-0613" by prefix.
func ContextLimit(model string) int {
	if limit, ok := ModelContextLimits[model]; ok {
		return limit
	}

	best, limit := "", DefaultContextLimit
	for name, l := range ModelContextLimits {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best, limit = name, l
		}
	}
	return limit
}

// WindowBudget returns the token budget for the transcript window.
// A configured value <= 0 disables windowing and returns 0. Otherwise the
// configured value is capped so the window plus the response reserve fits
// the model's context.
func WindowBudget(configured int, model string) int {
	if configured <= 0 {
		return 0
	}

	ceiling := int(float64(ContextLimit(model)) * (1 - ResponseReserve))
	if configured > ceiling {
		return ceiling
	}
	return configured
}
