// Package app wires configuration, credentials and providers together.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/azyu/publishgpt/internal/llm"
	"github.com/azyu/publishgpt/internal/llm/adapters"
	"github.com/azyu/publishgpt/internal/logger"
	"github.com/azyu/publishgpt/internal/storage"
	"github.com/azyu/publishgpt/pkg/types"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// ErrNoAPIKey is returned when no API key is available for a provider.
var ErrNoAPIKey = errors.New("no API key configured")

// Provider names.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// apiKeyEnv maps provider names to the environment variable holding their key.
var apiKeyEnv = map[string]string{
	ProviderOpenAI: "OPENAI_API_KEY",
	ProviderGemini: "GEMINI_API_KEY",
}

// App represents one invocation of the tool in a working directory.
type App struct {
	Config      *ConfigManager
	Checkpoints *storage.Checkpoints

	runID string
	dir   string
	log   *logger.Logger
	usage *storage.UsageStore
}

// New creates an application for the working directory dir.
func New(dir string, config *ConfigManager, log *logger.Logger) *App {
	if log == nil {
		log = logger.Get()
	}
	return &App{
		Config:      config,
		Checkpoints: storage.NewCheckpoints(dir),
		runID:       uuid.NewString(),
		dir:         dir,
		log:         log,
	}
}

// Dir returns the working directory.
func (a *App) Dir() string {
	return a.dir
}

// RunID identifies this invocation in the usage ledger.
func (a *App) RunID() string {
	return a.runID
}

// Logger returns the application logger.
func (a *App) Logger() *logger.Logger {
	return a.log
}

// LoadEnv loads the working directory's .env into the process environment.
// Variables that are already set keep their values. A missing file is not an error.
func (a *App) LoadEnv() error {
	path := a.Checkpoints.Path(types.EnvFile)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", types.EnvFile, err)
	}
	a.log.Debug("loaded environment file", map[string]interface{}{"path": path})
	return nil
}

// LoadModelConfig reads model_config.json from the working directory.
func (a *App) LoadModelConfig() (*types.ModelConfig, error) {
	cfg, err := a.Checkpoints.LoadModelConfig()
	if errors.Is(err, storage.ErrCheckpointNotFound) {
		return nil, fmt.Errorf("%w: %s (run init-config)", ErrConfigNotFound, types.ModelConfigFile)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// TextProviderName returns the configured default text provider.
func (a *App) TextProviderName() (string, error) {
	config, err := a.Config.LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if config.Defaults.Provider == "" {
		return ProviderOpenAI, nil
	}
	return config.Defaults.Provider, nil
}

// APIKey resolves the key for a provider: environment first, then global config.
func (a *App) APIKey(provider string) (string, error) {
	if env, ok := apiKeyEnv[provider]; ok {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
	}

	config, err := a.Config.LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if p, ok := config.Providers[provider]; ok && p.APIKey != "" {
		return p.APIKey, nil
	}

	if env, ok := apiKeyEnv[provider]; ok {
		return "", fmt.Errorf("%w for %s: set %s in %s or run 'publishgpt auth'", ErrNoAPIKey, provider, env, types.EnvFile)
	}
	return "", fmt.Errorf("%w for %s", ErrNoAPIKey, provider)
}

// TextProvider creates the chat provider selected in the global config.
func (a *App) TextProvider(ctx context.Context) (llm.Provider, error) {
	name, err := a.TextProviderName()
	if err != nil {
		return nil, err
	}

	key, err := a.APIKey(name)
	if err != nil {
		return nil, err
	}
	pc := a.providerConfig(name)

	a.log.Debug("creating text provider", map[string]interface{}{"provider": name})

	switch name {
	case ProviderOpenAI:
		adapter, err := a.openAI(key, pc)
		if err != nil {
			return nil, err
		}
		a.log.Debug("openai fallback model", map[string]interface{}{"model": adapter.Model()})
		return adapter, nil
	case ProviderGemini:
		return adapters.NewGeminiAdapter(ctx, key, pc.DefaultModel)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrInvalidConfig, name)
	}
}

// ImageProvider creates the image provider. Images always use OpenAI.
func (a *App) ImageProvider(_ context.Context) (llm.ImageProvider, error) {
	key, err := a.APIKey(ProviderOpenAI)
	if err != nil {
		return nil, err
	}
	return a.openAI(key, a.providerConfig(ProviderOpenAI))
}

func (a *App) openAI(key string, pc *types.ProviderConfig) (*adapters.OpenAIAdapter, error) {
	var opts []adapters.OpenAIOption
	if pc.BaseURL != "" {
		opts = append(opts, adapters.WithOpenAIBaseURL(pc.BaseURL))
	}
	if pc.Organization != "" {
		opts = append(opts, adapters.WithOpenAIOrganization(pc.Organization))
	}
	if pc.ImageModel != "" {
		opts = append(opts, adapters.WithOpenAIImageModel(pc.ImageModel))
	}
	return adapters.NewOpenAIAdapter(key, pc.DefaultModel, opts...)
}

// providerConfig returns the provider's global settings, or an empty config.
func (a *App) providerConfig(name string) *types.ProviderConfig {
	pc, err := a.Config.GetProviderConfig(name)
	if err != nil {
		return &types.ProviderConfig{}
	}
	return pc
}

// UsageRecorder opens the usage ledger on first use. When the ledger cannot
// be opened a warning is logged and nil is returned, so usage goes unrecorded.
func (a *App) UsageRecorder() llm.UsageRecorder {
	store, err := a.UsageStore()
	if err != nil {
		a.log.Warn("usage ledger unavailable", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return store
}

// UsageStore opens the usage ledger on first use.
func (a *App) UsageStore() (*storage.UsageStore, error) {
	if a.usage != nil {
		return a.usage, nil
	}
	store, err := storage.OpenUsageStore(a.dir)
	if err != nil {
		return nil, err
	}
	a.usage = store
	return store, nil
}

// Close releases resources held by the application.
func (a *App) Close() error {
	if a.usage != nil {
		err := a.usage.Close()
		a.usage = nil
		return err
	}
	return nil
}
