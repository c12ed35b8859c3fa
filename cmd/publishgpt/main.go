// Package main is the entry point for publishgpt.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/azyu/publishgpt/internal/app"
	"github.com/azyu/publishgpt/internal/convert"
	"github.com/azyu/publishgpt/internal/logger"
	"github.com/azyu/publishgpt/internal/workflow"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "publishgpt",
	Short: "Draft a book with a language model",
	Long: `publishgpt drafts a book step by step. It asks a language model for a
chapter list, generates the text of every chapter, assembles a Markdown
manuscript with a generated cover and converts it to PDF with pandoc.

Every step stores its result as a JSON file in the working directory, so
the steps can be run in separate sessions.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Create model_config.json and .env in the working directory",
	Args:  cobra.NoArgs,
	RunE: runWorkflow(func(ctx context.Context, _ *cobra.Command, wf *workflow.Workflow, _ *app.App) error {
		return wf.InitConfig(ctx)
	}),
}

var createTopicsCmd = &cobra.Command{
	Use:   "create-topics-and-chapters",
	Short: "Enter the book details, create the cover and generate the chapter list",
	Args:  cobra.NoArgs,
	RunE: runWorkflow(func(ctx context.Context, _ *cobra.Command, wf *workflow.Workflow, _ *app.App) error {
		return wf.CreateTopicsAndChapters(ctx)
	}),
}

var createBookCmd = &cobra.Command{
	Use:   "create-book",
	Short: "Generate the text of every chapter and write the Markdown manuscript",
	Args:  cobra.NoArgs,
	RunE: runWorkflow(func(ctx context.Context, _ *cobra.Command, wf *workflow.Workflow, _ *app.App) error {
		return wf.CreateBook(ctx)
	}),
}

var createPDFCmd = &cobra.Command{
	Use:   "create-pdf",
	Short: "Convert a Markdown file in the working directory to PDF",
	Args:  cobra.NoArgs,
	RunE: runWorkflow(func(ctx context.Context, _ *cobra.Command, wf *workflow.Workflow, _ *app.App) error {
		return wf.CreatePDF(ctx)
	}),
}

var generateImageCmd = &cobra.Command{
	Use:   "generate-image",
	Short: "Generate a standalone image from a description",
	Args:  cobra.NoArgs,
	RunE: runWorkflow(func(ctx context.Context, _ *cobra.Command, wf *workflow.Workflow, _ *app.App) error {
		return wf.GenerateImage(ctx)
	}),
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded model usage for the working directory",
	Long: `Show recorded model usage for the working directory.

Without flags the totals per kind and model are printed. --run lists the
calls of one invocation; the run id is logged with every command at debug level.`,
	Args: cobra.NoArgs,
	RunE: runWorkflow(func(ctx context.Context, cmd *cobra.Command, wf *workflow.Workflow, application *app.App) error {
		store, err := application.UsageStore()
		if err != nil {
			return err
		}
		application.Logger().Debug("reading usage ledger", map[string]interface{}{"path": store.Path()})
		if runID, _ := cmd.Flags().GetString("run"); runID != "" {
			return wf.RunUsage(ctx, store, runID)
		}
		return wf.Usage(ctx, store)
	}),
}

// setupLogging configures the global logger from flags, falling back to the
// global config file.
func setupLogging(cmd *cobra.Command, _ []string) error {
	level, _ := cmd.Flags().GetString("log-level")
	format, _ := cmd.Flags().GetString("log-format")

	if level == "" || format == "" {
		if cm, err := app.NewConfigManager(); err == nil {
			if cfg, err := cm.LoadGlobalConfig(); err == nil {
				if level == "" {
					level = cfg.Logging.Level
				}
				if format == "" {
					format = cfg.Logging.Format
				}
			}
		}
	}

	log := logger.Setup(logger.Config{
		Level:  level,
		Format: logger.ParseLogFormat(format),
	})
	log.Debug("logger ready", map[string]interface{}{"level": log.GetLevel().String()})
	return nil
}

func newApp(cmd *cobra.Command) (*app.App, error) {
	dir, _ := cmd.Flags().GetString("dir")
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %q: %w", dir, err)
	}

	cm, err := app.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize app: %w", err)
	}

	application := app.New(abs, cm, logger.Get())
	if err := application.LoadEnv(); err != nil {
		return nil, err
	}
	return application, nil
}

func runWorkflow(fn func(context.Context, *cobra.Command, *workflow.Workflow, *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		application, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer application.Close()

		log := application.Logger().WithFields(map[string]interface{}{
			"command": cmd.Name(),
			"run_id":  application.RunID(),
		})
		log.Debug("starting command", map[string]interface{}{"dir": application.Dir()})

		opts := []workflow.Option{
			workflow.WithOutput(cmd.OutOrStdout()),
			workflow.WithLogger(log),
		}
		if pandoc, _ := cmd.Flags().GetString("pandoc"); pandoc != "" {
			opts = append(opts, workflow.WithConverterOptions(convert.WithBinary(pandoc)))
		}

		wf := workflow.New(application.Checkpoints, application, formPrompter{}, opts...)

		return fn(cmd.Context(), cmd, wf, application)
	}
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Working directory holding the book files")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (console, json)")

	createPDFCmd.Flags().String("pandoc", convert.DefaultBinary, "Converter executable")

	usageCmd.Flags().String("run", "", "List the calls of one run id")

	authCmd.Flags().BoolP("list", "l", false, "List configured providers")
	authCmd.Flags().StringP("remove", "r", "", "Remove a provider configuration")
	authCmd.Flags().StringP("provider", "p", "", "Configure a specific provider")

	rootCmd.AddCommand(initConfigCmd)
	rootCmd.AddCommand(createTopicsCmd)
	rootCmd.AddCommand(createBookCmd)
	rootCmd.AddCommand(createPDFCmd)
	rootCmd.AddCommand(generateImageCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(authCmd)
}
