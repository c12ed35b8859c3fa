package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/azyu/publishgpt/pkg/types"
)

// UsageRecorder persists usage of a remote call.
type UsageRecorder interface {
	Record(ctx context.Context, event types.UsageEvent) error
}

// GeneratorOption configures a TextGenerator.
type GeneratorOption func(*TextGenerator)

// WithContextBudget limits each request to a token window of the transcript.
func WithContextBudget(maxTokens int, counter TokenCounter) GeneratorOption {
	return func(g *TextGenerator) {
		g.budget = maxTokens
		g.counter = counter
	}
}

// WithUsageRecorder records every completed call.
func WithUsageRecorder(recorder UsageRecorder, runID string) GeneratorOption {
	return func(g *TextGenerator) {
		g.recorder = recorder
		g.runID = runID
	}
}

// WithErrorHandler receives errors that do not abort a call, such as a
// failed usage record.
func WithErrorHandler(fn func(error)) GeneratorOption {
	return func(g *TextGenerator) {
		g.onError = fn
	}
}

// TextGenerator drives a conversation with a Provider and owns its Transcript.
// It is not safe for concurrent use.
type TextGenerator struct {
	provider   Provider
	model      string
	transcript *Transcript

	budget  int
	counter TokenCounter

	recorder UsageRecorder
	runID    string
	onError  func(error)
}

// NewTextGenerator creates a generator whose transcript starts with system.
func NewTextGenerator(provider Provider, model string, system ChatMessage, opts ...GeneratorOption) *TextGenerator {
	g := &TextGenerator{
		provider:   provider,
		model:      model,
		transcript: NewTranscript(system),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Transcript returns the conversation log.
func (g *TextGenerator) Transcript() *Transcript {
	return g.transcript
}

// Generate appends prompt as a user turn, requests a completion with the
// transcript as context and appends the answer as an assistant turn.
// Provider errors are returned unmodified and nothing is retried.
func (g *TextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.transcript.Append(NewUserMessage(prompt))

	messages := g.transcript.Window(g.budget, g.counter)

	start := time.Now()
	resp, err := g.provider.Chat(ctx, ChatRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}

	content := resp.Message.Content
	g.transcript.Append(NewAssistantMessage(content))
	g.record(ctx, messages, resp, time.Since(start))

	return content, nil
}

func (g *TextGenerator) record(ctx context.Context, sent []ChatMessage, resp *ChatResponse, elapsed time.Duration) {
	if g.recorder == nil {
		return
	}

	model := resp.Model
	if model == "" {
		model = g.model
	}

	event := types.UsageEvent{
		RunID:            g.runID,
		Kind:             types.UsageKindChat,
		Provider:         g.provider.Name(),
		Model:            model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Duration:         elapsed,
	}
	if event.PromptTokens == 0 && g.counter != nil {
		for _, msg := range sent {
			event.PromptTokens += g.counter.Count(msg.Content)
		}
		event.CompletionTokens = g.counter.Count(resp.Message.Content)
	}

	if err := g.recorder.Record(ctx, event); err != nil && g.onError != nil {
		g.onError(fmt.Errorf("failed to record usage: %w", err))
	}
}
