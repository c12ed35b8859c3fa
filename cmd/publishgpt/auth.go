package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/azyu/publishgpt/internal/app"
	"github.com/azyu/publishgpt/internal/ui"
	"github.com/azyu/publishgpt/pkg/types"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Configure LLM provider authentication",
	Long: `Store API keys and default models in the global config file.
Keys set in the environment or in the working directory's .env take precedence.`,
	Args: cobra.NoArgs,
	RunE: runAuthCmd,
}

var knownProviders = []struct {
	name  string
	label string
}{
	{app.ProviderOpenAI, "OpenAI"},
	{app.ProviderGemini, "Google Gemini"},
}

func runAuthCmd(cmd *cobra.Command, _ []string) error {
	listFlag, _ := cmd.Flags().GetBool("list")
	removeFlag, _ := cmd.Flags().GetString("remove")
	providerFlag, _ := cmd.Flags().GetString("provider")

	cm, err := app.NewConfigManager()
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	out := cmd.OutOrStdout()

	if listFlag {
		return listProviders(cm, out)
	}

	if removeFlag != "" {
		return removeProvider(cm, removeFlag, out)
	}

	if providerFlag != "" {
		return configureProvider(cm, providerFlag, out)
	}

	return interactiveAuth(cm, out)
}

func listProviders(cm *app.ConfigManager, out io.Writer) error {
	config, err := cm.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	p := ui.NewPrinter(out)
	p.Title("Configured providers:")

	hasAny := false
	for _, known := range knownProviders {
		providerConfig, exists := config.Providers[known.name]
		if !exists || (providerConfig.APIKey == "" && providerConfig.BaseURL == "") {
			continue
		}

		hasAny = true
		defaultMark := ""
		if config.Defaults.Provider == known.name {
			defaultMark = " (default)"
		}
		p.Info("  %s%s", known.label, defaultMark)

		if providerConfig.APIKey != "" {
			p.Info("    API Key: %s", maskAPIKey(providerConfig.APIKey))
		}
		if providerConfig.DefaultModel != "" {
			p.Info("    Model: %s", providerConfig.DefaultModel)
		}
		if providerConfig.BaseURL != "" {
			p.Info("    Base URL: %s", providerConfig.BaseURL)
		}
	}

	if !hasAny {
		p.Info("  No providers configured.")
		p.Info("Run 'publishgpt auth' to configure a provider.")
	}

	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func removeProvider(cm *app.ConfigManager, providerName string, out io.Writer) error {
	config, err := cm.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if _, exists := config.Providers[providerName]; !exists {
		return fmt.Errorf("provider '%s' is not configured", providerName)
	}

	delete(config.Providers, providerName)

	if config.Defaults.Provider == providerName {
		config.Defaults.Provider = ""
		remaining := make([]string, 0, len(config.Providers))
		for name := range config.Providers {
			remaining = append(remaining, name)
		}
		if len(remaining) > 0 {
			sort.Strings(remaining)
			config.Defaults.Provider = remaining[0]
		}
	}

	if err := cm.SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ui.NewPrinter(out).Success("Provider '%s' removed.", providerName)
	return nil
}

func configureProvider(cm *app.ConfigManager, providerName string, out io.Writer) error {
	switch providerName {
	case app.ProviderOpenAI, app.ProviderGemini:
		return setupProvider(cm, providerName, out)
	default:
		return fmt.Errorf("unknown provider: %s (supported: openai, gemini)", providerName)
	}
}

func interactiveAuth(cm *app.ConfigManager, out io.Writer) error {
	var providerName string

	options := make([]huh.Option[string], len(knownProviders))
	for i, known := range knownProviders {
		options[i] = huh.NewOption(known.label, known.name)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select provider to configure").
				Options(options...).
				Value(&providerName),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("provider selection failed: %w", err)
	}

	return setupProvider(cm, providerName, out)
}

func setupProvider(cm *app.ConfigManager, providerName string, out io.Writer) error {
	config, err := cm.LoadGlobalConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if config.Providers == nil {
		config.Providers = make(map[string]*types.ProviderConfig)
	}

	providerConfig := config.Providers[providerName]
	if providerConfig == nil {
		providerConfig = &types.ProviderConfig{}
	}

	switch providerName {
	case app.ProviderOpenAI:
		err = setupOpenAI(providerConfig)
	case app.ProviderGemini:
		err = setupGemini(providerConfig)
	}
	if err != nil {
		return err
	}

	config.Providers[providerName] = providerConfig

	// Images always go through OpenAI, so only a text provider can be the default.
	var setDefault bool
	defaultForm := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Use for chapter generation by default?").
				Value(&setDefault),
		),
	)

	if err := defaultForm.Run(); err != nil {
		return fmt.Errorf("default selection failed: %w", err)
	}

	if setDefault {
		config.Defaults.Provider = providerName
	}

	if err := cm.SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	ui.NewPrinter(out).Success("%s configured successfully", providerName)
	return nil
}

func setupOpenAI(config *types.ProviderConfig) error {
	var apiKey, model string

	currentKey := ""
	if config.APIKey != "" {
		currentKey = " (current: " + maskAPIKey(config.APIKey) + ")"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("OpenAI API Key"+currentKey).
				Placeholder("sk-...").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewSelect[string]().
				Title("Default model when model_config.json names none").
				Options(
					huh.NewOption("GPT-3.5 Turbo", "gpt-3.5-turbo"),
					huh.NewOption("GPT-4o Mini", "gpt-4o-mini"),
					huh.NewOption("GPT-4o", "gpt-4o"),
					huh.NewOption("GPT-4 Turbo", "gpt-4-turbo"),
				).
				Value(&model),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("OpenAI setup failed: %w", err)
	}

	applyProviderAnswers(config, apiKey, model)
	return nil
}

func setupGemini(config *types.ProviderConfig) error {
	var apiKey, model string

	currentKey := ""
	if config.APIKey != "" {
		currentKey = " (current: " + maskAPIKey(config.APIKey) + ")"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key"+currentKey).
				Placeholder("Get from ai.google.dev").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
			huh.NewSelect[string]().
				Title("Default model").
				Options(
					huh.NewOption("Gemini 2.5 Flash (recommended)", "gemini-2.5-flash"),
					huh.NewOption("Gemini 2.5 Pro", "gemini-2.5-pro"),
					huh.NewOption("Gemini 2.0 Flash", "gemini-2.0-flash"),
				).
				Value(&model),
		),
	)

	if err := form.Run(); err != nil {
		return fmt.Errorf("Gemini setup failed: %w", err)
	}

	applyProviderAnswers(config, apiKey, model)
	return nil
}

// applyProviderAnswers keeps the stored values for answers left blank.
func applyProviderAnswers(config *types.ProviderConfig, apiKey, model string) {
	if apiKey != "" {
		config.APIKey = apiKey
	}
	if model != "" {
		config.DefaultModel = model
	}
}
