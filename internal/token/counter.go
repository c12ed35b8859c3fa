// Package token provides token counting utilities for LLM context management.
package token

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// Counter wraps a tiktoken encoder for token counting operations.
type Counter struct {
	encoder  *tiktoken.Tiktoken
	encoding string
}

// Default encoding for fallback.
const defaultEncoding = "cl100k_base"

// NewCounter creates a new token counter with the specified encoding.
// Supported encodings include:
//   - "cl100k_base" (GPT-4, GPT-4-turbo, GPT-3.5-turbo)
//   - "p50k_base" (GPT-3, Codex)
//   - "o200k_base" (GPT-4o)
//   - "r50k_base" (older models)
//
// Falls back to cl100k_base if the specified encoding is not found.
func NewCounter(encoding string) (*Counter, error) {
	if encoding == "" {
		encoding = defaultEncoding
	}

	encoder, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		// Fallback to default encoding
		encoder, err = tiktoken.GetEncoding(defaultEncoding)
		if err != nil {
			return nil, err
		}
		encoding = defaultEncoding
	}

	return &Counter{
		encoder:  encoder,
		encoding: encoding,
	}, nil
}

// NewCounterForModel picks the encoding used by model. Unknown models (for
// example Gemini) use the default encoding, which is a close enough
// approximation for budgeting.
func NewCounterForModel(model string) (*Counter, error) {
	encoding := defaultEncoding
	if enc, ok := modelEncodings[model]; ok {
		encoding = enc
	}
	return NewCounter(encoding)
}

// modelEncodings lists models that do not use cl100k_base.
var modelEncodings = map[string]string{
	"gpt-4o":      "o200k_base",
	"gpt-4o-mini": "o200k_base",
	"o1":          "o200k_base",
	"o1-mini":     "o200k_base",
}

// Encoding returns the current encoding name.
func (c *Counter) Encoding() string {
	return c.encoding
}

// Count returns the number of tokens in the given text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	tokens := c.encoder.Encode(text, nil, nil)
	return len(tokens)
}

// EstimateTokens provides a quick estimate of token count without encoding.
// Uses a heuristic of approximately 4 characters per token for English text.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}
	runeCount := utf8.RuneCountInString(text)
	return (runeCount + 3) / 4
}

// Estimator counts tokens with EstimateTokens. It is the fallback when the
// tiktoken encodings cannot be loaded.
type Estimator struct{}

// Count implements llm.TokenCounter.
func (Estimator) Count(text string) int {
	return EstimateTokens(text)
}
