// Package types provides shared data models for publishgpt.
package types

import (
	"time"
)

// File names used as checkpoints in the working directory.
const (
	ModelConfigFile = "model_config.json"
	BookConfigFile  = "book_config.json"
	ChaptersFile    = "chapters.json"
	EnvFile         = ".env"
)

// StateDir holds local state that is not a checkpoint, such as the usage ledger.
const (
	StateDir    = ".publishgpt"
	UsageDBFile = "usage.db"
)

// DefaultImageSize is the cover image size requested when the model config does not set one.
const DefaultImageSize = "1024x1024"

// Message is a single role/content pair, used for the configured system message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ModelConfig is the contents of model_config.json. It is read once and never modified.
type ModelConfig struct {
	Model           string   `json:"model"`
	SystemMessage   Message  `json:"system_message"`
	InitialPrompt   string   `json:"initial_prompt"`
	TextPrompt      string   `json:"text_prompt"`
	CharsToRemove   []string `json:"chars_to_remove"`
	PandocExtraArgs []string `json:"pandoc_extra_args"`

	// ImageSize overrides the cover image size. Empty means DefaultImageSize.
	ImageSize string `json:"image_size,omitempty"`

	// MaxContextTokens bounds the transcript window sent with each request.
	// Zero sends the whole transcript.
	MaxContextTokens int `json:"max_context_tokens,omitempty"`
}

// CoverSize returns the configured image size or the default.
func (c *ModelConfig) CoverSize() string {
	if c.ImageSize == "" {
		return DefaultImageSize
	}
	return c.ImageSize
}

// BookConfig is the contents of book_config.json.
type BookConfig struct {
	Title        string `json:"book_title"`
	Description  string `json:"description"`
	Words        int    `json:"words"`
	Image        string `json:"image"`
	ChapterCount int    `json:"chapter_count"`
}

// CoverFileName returns the file name of the cover image for a name.
func CoverFileName(name string) string {
	return name + "_cover.png"
}

// ManuscriptFileName returns the Markdown file name for a book title.
func ManuscriptFileName(title string) string {
	return title + ".md"
}

// GlobalConfig is the user-wide configuration at ~/.config/publishgpt/config.yaml.
type GlobalConfig struct {
	Version   int                        `yaml:"version"`
	Providers map[string]*ProviderConfig `yaml:"providers"`
	Defaults  DefaultsConfig             `yaml:"defaults"`
	Logging   LoggingConfig              `yaml:"logging"`
}

// ProviderConfig holds API configuration for an LLM provider.
type ProviderConfig struct {
	APIKey       string `yaml:"api_key"`
	DefaultModel string `yaml:"default_model,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`

	// Organization and ImageModel apply to OpenAI only.
	Organization string `yaml:"organization,omitempty"`
	ImageModel   string `yaml:"image_model,omitempty"`
}

// DefaultsConfig specifies default settings.
type DefaultsConfig struct {
	Provider string `yaml:"provider"`
}

// LoggingConfig specifies logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format,omitempty"`
}

// UsageKind identifies the kind of remote call recorded in the usage ledger.
type UsageKind string

const (
	UsageKindChat  UsageKind = "chat"
	UsageKindImage UsageKind = "image"
)

// UsageEvent is one remote call recorded in the usage ledger.
type UsageEvent struct {
	ID               string
	RunID            string
	Kind             UsageKind
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
	CreatedAt        time.Time
}

// UsageTotal aggregates usage events for one kind and model.
type UsageTotal struct {
	Kind             UsageKind
	Model            string
	Calls            int
	PromptTokens     int
	CompletionTokens int
}

// DefaultModelConfig returns the model configuration written by init-config.
func DefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		Model: "gpt-3.5-turbo",
		SystemMessage: Message{
			Role:    "system",
			Content: "You are a creative AI writing assistant. You're writing a book and are provided one chapter at a time. Always consider the entire context of all the chapters while writing a section. They have to fit together in the end.",
		},
		InitialPrompt:   "I'm writing a book titled '{}'. Could you please suggest {} chapters? Please return only the titles, without numbering or anything similar. All chapters: {}",
		TextPrompt:      "Could you please generate about {} words of text for the '{}' chapter of the book '{}'? Please keep {} in mind when generating the texts.",
		CharsToRemove:   []string{"-", "#"},
		PandocExtraArgs: []string{"--pdf-engine=xelatex"},
	}
}

// DefaultGlobalConfig returns a new GlobalConfig with sensible defaults.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		Version:   1,
		Providers: make(map[string]*ProviderConfig),
		Defaults: DefaultsConfig{
			Provider: "openai",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}
