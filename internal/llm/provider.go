// Package llm provides abstractions for interacting with Large Language Models.
package llm

import (
	"context"
	"errors"
)

// Common errors returned by LLM providers.
var (
	// ErrContextTooLong is returned when the input exceeds the model's context window.
	ErrContextTooLong = errors.New("context length exceeds model maximum")

	// ErrRateLimited is returned when the API rate limit has been exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrAPIError is returned when the API returns an unexpected error.
	ErrAPIError = errors.New("API error")

	// ErrInvalidAPIKey is returned when the API key is invalid or missing.
	ErrInvalidAPIKey = errors.New("invalid or missing API key")

	// ErrModelNotFound is returned when the requested model is not available.
	ErrModelNotFound = errors.New("model not found")

	// ErrEmptyResponse is returned when the API answers without any content.
	ErrEmptyResponse = errors.New("empty response")
)

// Role constants for chat messages.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// FinishReason constants for response completion reasons.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonContentFilter = "content_filter"
)

// Provider defines the interface for chat completion providers.
type Provider interface {
	// Chat sends a chat request and returns the complete response.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Name returns the provider identifier, e.g. "openai".
	Name() string

	// Close releases any resources held by the provider.
	Close() error
}

// ImageProvider generates images from a text prompt.
type ImageProvider interface {
	// GenerateImage requests a single image and returns its URL.
	GenerateImage(ctx context.Context, req ImageRequest) (*ImageResponse, error)
}

// ChatRequest represents a request to the chat API.
type ChatRequest struct {
	// Model is the model identifier. Empty uses the provider default.
	Model string

	// Messages is the conversation history to send.
	Messages []ChatMessage
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role indicates the message author: system, user or assistant.
	Role string

	// Content is the text content of the message.
	Content string
}

// ChatResponse represents the complete response from a chat request.
type ChatResponse struct {
	// Message is the assistant's response message.
	Message ChatMessage

	// Usage contains token usage statistics.
	Usage TokenUsage

	// FinishReason indicates why generation stopped.
	FinishReason string

	// Model is the actual model used (may differ from requested if aliased).
	Model string
}

// ImageRequest describes a single image generation.
type ImageRequest struct {
	Prompt string
	Size   string
}

// ImageResponse carries the location of a generated image.
type ImageResponse struct {
	URL   string
	Model string
}

// TokenUsage contains token usage statistics for a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// NewChatMessage creates a new ChatMessage with the specified role and content.
func NewChatMessage(role, content string) ChatMessage {
	return ChatMessage{
		Role:    role,
		Content: content,
	}
}

// NewSystemMessage creates a new system message.
func NewSystemMessage(content string) ChatMessage {
	return NewChatMessage(RoleSystem, content)
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) ChatMessage {
	return NewChatMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) ChatMessage {
	return NewChatMessage(RoleAssistant, content)
}
