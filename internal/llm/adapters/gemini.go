package adapters

import (
	"context"
	"fmt"
	"strings"

	"github.com/azyu/publishgpt/internal/llm"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured for Gemini.
const DefaultGeminiModel = "gemini-2.5-flash"

// GeminiAdapter implements the Provider interface for Google's Gemini API.
type GeminiAdapter struct {
	client *genai.Client
	model  string
}

// NewGeminiAdapter creates a new GeminiAdapter for Google's Gemini API.
// The apiKey should be a valid Gemini API key.
// The model should be the model name to use (e.g., "gemini-2.5-flash").
func NewGeminiAdapter(ctx context.Context, apiKey, model string) (*GeminiAdapter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: API key is required", llm.ErrInvalidAPIKey)
	}

	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiAdapter{
		client: client,
		model:  model,
	}, nil
}

// Name returns the provider identifier.
func (a *GeminiAdapter) Name() string {
	return "gemini"
}

// Chat sends a chat completion request and returns the complete response.
// A model named in the request that is not a Gemini model is ignored in
// favor of the adapter's model, so an OpenAI model_config keeps working.
func (a *GeminiAdapter) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := a.model
	if strings.HasPrefix(req.Model, "gemini") {
		model = req.Model
	}

	contents, systemInstruction := convertGeminiMessages(req.Messages)
	config := &genai.GenerateContentConfig{}
	if systemInstruction != nil {
		config.SystemInstruction = systemInstruction
	}

	result, err := a.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, a.wrapError(err)
	}

	return a.convertResponse(result, model)
}

// Close releases resources held by the adapter.
func (a *GeminiAdapter) Close() error {
	// The genai client doesn't have a Close method, so nothing to clean up
	return nil
}

// convertGeminiMessages converts our ChatMessage slice to Gemini's Content format.
// Returns the contents and an optional system instruction.
func convertGeminiMessages(messages []llm.ChatMessage) ([]*genai.Content, *genai.Content) {
	var systemInstruction *genai.Content
	var contents []*genai.Content

	for _, msg := range messages {
		switch msg.Role {
		case llm.RoleSystem:
			// Gemini uses SystemInstruction for system messages
			systemInstruction = &genai.Content{
				Parts: []*genai.Part{
					{Text: msg.Content},
				},
			}

		case llm.RoleAssistant:
			contents = append(contents, &genai.Content{
				Role: "model",
				Parts: []*genai.Part{
					{Text: msg.Content},
				},
			})

		default:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{
					{Text: msg.Content},
				},
			})
		}
	}

	return contents, systemInstruction
}

// convertResponse converts Gemini's response to our ChatResponse format.
func (a *GeminiAdapter) convertResponse(result *genai.GenerateContentResponse, model string) (*llm.ChatResponse, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates in response", llm.ErrEmptyResponse)
	}

	candidate := result.Candidates[0]
	response := &llm.ChatResponse{
		Model:        model,
		FinishReason: convertFinishReason(candidate.FinishReason),
	}

	var contentParts []string
	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				contentParts = append(contentParts, part.Text)
			}
		}
	}

	response.Message = llm.NewAssistantMessage(strings.Join(contentParts, ""))

	if result.UsageMetadata != nil {
		response.Usage = llm.TokenUsage{
			PromptTokens:     int(result.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return response, nil
}

// convertFinishReason converts Gemini's finish reason to our format.
func convertFinishReason(reason genai.FinishReason) string {
	switch reason {
	case genai.FinishReasonStop:
		return llm.FinishReasonStop
	case genai.FinishReasonMaxTokens:
		return llm.FinishReasonLength
	case genai.FinishReasonSafety, genai.FinishReasonRecitation, genai.FinishReasonBlocklist:
		return llm.FinishReasonContentFilter
	default:
		return string(reason)
	}
}

// wrapError wraps Gemini errors in our error types.
func (a *GeminiAdapter) wrapError(err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "API key"):
		return fmt.Errorf("%w: %s", llm.ErrInvalidAPIKey, errStr)
	case strings.Contains(errStr, "not found") || strings.Contains(errStr, "404"):
		return fmt.Errorf("%w: %s", llm.ErrModelNotFound, errStr)
	case strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429"):
		return fmt.Errorf("%w: %s", llm.ErrRateLimited, errStr)
	case strings.Contains(errStr, "context") && strings.Contains(errStr, "token"):
		return fmt.Errorf("%w: %s", llm.ErrContextTooLong, errStr)
	default:
		return fmt.Errorf("%w: %s", llm.ErrAPIError, errStr)
	}
}

// Verify GeminiAdapter implements Provider interface.
var _ llm.Provider = (*GeminiAdapter)(nil)
