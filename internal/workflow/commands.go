package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/azyu/publishgpt/internal/chapters"
	"github.com/azyu/publishgpt/internal/convert"
	"github.com/azyu/publishgpt/internal/cover"
	"github.com/azyu/publishgpt/internal/llm"
	"github.com/azyu/publishgpt/internal/manuscript"
	"github.com/azyu/publishgpt/internal/prompt"
	"github.com/azyu/publishgpt/internal/token"
	"github.com/azyu/publishgpt/pkg/types"
)

// InitConfig creates model_config.json and .env unless they exist.
func (w *Workflow) InitConfig(_ context.Context) error {
	if w.store.Exists(types.ModelConfigFile) {
		w.printer.Info("Model configuration file already exists.")
	} else {
		if err := w.store.SaveModelConfig(types.DefaultModelConfig()); err != nil {
			return fmt.Errorf("failed to create %s: %w", types.ModelConfigFile, err)
		}
		w.printer.Success("Model configuration file created successfully.")
	}

	created, err := w.store.CreateEnvFile()
	if err != nil {
		return err
	}
	if created {
		w.printer.Success(".env file created successfully. Please fill in the OPENAI_API_KEY.")
	} else {
		w.printer.Info(".env file already exists.")
	}

	return nil
}

// CreateTopicsAndChapters collects the book details, generates the cover and
// asks the model for the chapter list.
func (w *Workflow) CreateTopicsAndChapters(ctx context.Context) error {
	if !w.store.Exists(types.ModelConfigFile) || !w.store.Exists(types.EnvFile) {
		w.printer.Warn("Config files are not present.")
		if err := w.InitConfig(ctx); err != nil {
			return err
		}
	}

	var book *types.BookConfig
	updated := false
	if w.store.Exists(types.BookConfigFile) {
		var err error
		updated, err = w.prompter.Confirm("Do you want to update the book_config.json file?")
		if err != nil {
			return err
		}
		if updated {
			book, err = w.promptBookConfig()
		} else {
			book, err = w.store.LoadBookConfig()
		}
		if err != nil {
			return err
		}
	}

	if book == nil {
		w.printer.Info("The book_config.json file is not present. Please enter the book details.")
		var err error
		if book, err = w.promptBookConfig(); err != nil {
			return err
		}
	}

	cfg, err := w.services.LoadModelConfig()
	if err != nil {
		return err
	}

	current := []string{}
	regenerate := false
	if !updated {
		if current, err = w.store.LoadChapters(); err != nil {
			return err
		}
		if len(current) > 0 {
			if regenerate, err = w.prompter.Confirm("Chapters already exist. Do you want to regenerate them?"); err != nil {
				return err
			}
		}
	}

	if len(current) > 0 && !regenerate {
		return nil
	}

	log := w.log.WithFields(map[string]interface{}{"book": book.Title, "run_id": w.services.RunID()})

	if _, err := w.createCover(ctx, cfg, book.Image, book.Title); err != nil {
		return fmt.Errorf("failed to create cover: %w", err)
	}
	log.Info("cover created")

	gen, closeFn, err := w.newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	titles, err := generateChapters(ctx, gen, cfg, book, current)
	if err != nil {
		return err
	}
	log.Info("chapters generated", map[string]interface{}{"count": len(titles)})

	if err := w.store.SaveChapters(titles); err != nil {
		return fmt.Errorf("failed to save chapters: %w", err)
	}
	if err := w.store.SaveBookConfig(book); err != nil {
		return fmt.Errorf("failed to save book config: %w", err)
	}
	w.printer.Success("Book configuration file updated successfully.")

	w.printer.Success("Chapters for the book %s generated successfully:", book.Title)
	w.printer.List(titles)
	return nil
}

// CreateBook generates the text of every chapter and writes the manuscript.
func (w *Workflow) CreateBook(ctx context.Context) error {
	if !w.store.Exists(types.BookConfigFile) {
		w.printer.Info("Please run the 'create-topics-and-chapters' command first.")
		return nil
	}
	if !w.store.Exists(types.ChaptersFile) {
		w.printer.Info("Chapters have not been generated. Please run the 'create-topics-and-chapters' command first.")
		return nil
	}

	book, err := w.store.LoadBookConfig()
	if err != nil {
		return err
	}
	titles, err := w.store.LoadChapters()
	if err != nil {
		return err
	}
	cfg, err := w.services.LoadModelConfig()
	if err != nil {
		return err
	}

	gen, closeFn, err := w.newGenerator(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	texts, err := w.generateTexts(ctx, gen, cfg, book, titles)
	if err != nil {
		return err
	}
	w.printer.Success("Text for the chapters generated successfully.")

	name := types.ManuscriptFileName(book.Title)
	path := w.store.Path(name)
	if err := manuscript.Write(path, book.Title, titles, texts); err != nil {
		return err
	}
	w.checkOutline(path, titles[:min(len(titles), len(texts))])
	w.printer.Success("Markdown file %s created successfully.", name)
	return nil
}

// checkOutline warns when the headings parsed back from the manuscript differ
// from the chapter titles, e.g. when a title contains a line break.
func (w *Workflow) checkOutline(path string, titles []string) {
	content, err := os.ReadFile(path)
	if err != nil {
		w.log.Warn("could not read manuscript back", map[string]interface{}{"path": path, "error": err.Error()})
		return
	}

	outline := manuscript.Outline(content)
	if !slices.Equal(outline, titles) {
		w.log.Warn("manuscript headings do not match chapters", map[string]interface{}{
			"path":     path,
			"headings": outline,
			"chapters": titles,
		})
	}
}

// CreatePDF converts a Markdown file chosen by the user.
func (w *Workflow) CreatePDF(ctx context.Context) error {
	cfg, err := w.services.LoadModelConfig()
	if err != nil {
		return err
	}

	conv := convert.New(w.store.Dir(), cfg.PandocExtraArgs, w.convertOpts...)

	files, err := conv.MarkdownFiles()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		w.printer.Info("No Markdown files found in the current directory.")
		return nil
	}

	name, err := w.prompter.Input("Please choose a file to convert", files[0], files...)
	if err != nil {
		return err
	}
	if name == "" {
		name = files[0]
	}

	output, err := conv.Convert(ctx, name)
	if errors.Is(err, convert.ErrFileNotFound) {
		w.printer.Info("%s not found in the current directory.", name)
		return nil
	}
	if err != nil {
		return err
	}

	w.printer.Success("Successfully converted %s to %s", name, output)
	return nil
}

// GenerateImage generates a standalone image from a description.
func (w *Workflow) GenerateImage(ctx context.Context) error {
	description, err := w.prompter.Input("Please enter a text description for the image", "")
	if err != nil {
		return err
	}

	cfg, err := w.services.LoadModelConfig()
	if err != nil {
		w.log.Debug("using default image size", map[string]interface{}{"reason": err.Error()})
		cfg = types.DefaultModelConfig()
	}

	gen, err := w.coverGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	url, err := gen.URL(ctx, description)
	if err != nil {
		return err
	}

	name, err := w.prompter.Input("Please enter a name for the image file", "")
	if err != nil {
		return err
	}

	path, err := gen.Download(ctx, url, name)
	if err != nil {
		return err
	}

	if w.store.Exists(types.CoverFileName(name)) {
		w.printer.Success("Image created successfully and saved as %s", path)
	} else {
		w.printer.Error("Something went wrong, the image could not be saved.")
	}
	return nil
}

// Usage prints the usage ledger totals.
func (w *Workflow) Usage(ctx context.Context, reporter UsageReporter) error {
	totals, err := reporter.Totals(ctx)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		w.printer.Info("No usage recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{
			string(t.Kind),
			t.Model,
			strconv.Itoa(t.Calls),
			strconv.Itoa(t.PromptTokens),
			strconv.Itoa(t.CompletionTokens),
		})
	}
	w.printer.Table([]string{"KIND", "MODEL", "CALLS", "PROMPT", "COMPLETION"}, rows)
	return nil
}

// RunUsage prints every recorded call of one run in order.
func (w *Workflow) RunUsage(ctx context.Context, reporter RunReporter, runID string) error {
	events, err := reporter.Events(ctx, runID)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		w.printer.Info("No usage recorded for run %s.", runID)
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.CreatedAt.Format(time.DateTime),
			string(e.Kind),
			e.Provider,
			e.Model,
			strconv.Itoa(e.PromptTokens),
			strconv.Itoa(e.CompletionTokens),
			e.Duration.Round(time.Millisecond).String(),
		})
	}
	w.printer.Table([]string{"TIME", "KIND", "PROVIDER", "MODEL", "PROMPT", "COMPLETION", "DURATION"}, rows)
	return nil
}

func (w *Workflow) promptBookConfig() (*types.BookConfig, error) {
	var book types.BookConfig
	var err error

	if book.Title, err = w.prompter.Input("Please enter the book title", ""); err != nil {
		return nil, err
	}
	if book.Description, err = w.prompter.Input("Please provide a brief description of the book", ""); err != nil {
		return nil, err
	}
	if book.Words, err = w.prompter.Int("Please enter the number of words you want each chapter to contain"); err != nil {
		return nil, err
	}
	if book.Image, err = w.prompter.Input("Please enter an image description for the book cover", ""); err != nil {
		return nil, err
	}
	if book.ChapterCount, err = w.prompter.Int("Please enter the number of chapters you want the book to have"); err != nil {
		return nil, err
	}

	return &book, nil
}

// newGenerator creates a text generator seeded with the configured system message.
func (w *Workflow) newGenerator(ctx context.Context, cfg *types.ModelConfig) (*llm.TextGenerator, func(), error) {
	provider, err := w.services.TextProvider(ctx)
	if err != nil {
		return nil, nil, err
	}

	opts := []llm.GeneratorOption{
		llm.WithErrorHandler(func(err error) {
			w.log.Warn("usage not recorded", map[string]interface{}{"error": err.Error()})
		}),
	}
	if recorder := w.services.UsageRecorder(); recorder != nil {
		opts = append(opts, llm.WithUsageRecorder(recorder, w.services.RunID()))
	}

	if budget := token.WindowBudget(cfg.MaxContextTokens, cfg.Model); budget > 0 {
		var counter llm.TokenCounter = token.Estimator{}
		if c, err := token.NewCounterForModel(cfg.Model); err == nil {
			counter = c
			w.log.Debug("counting tokens", map[string]interface{}{"encoding": c.Encoding()})
		} else {
			w.log.Warn("falling back to estimated token counts", map[string]interface{}{"error": err.Error()})
		}
		opts = append(opts, llm.WithContextBudget(budget, counter))
		w.log.Debug("transcript window enabled", map[string]interface{}{"budget": budget})
	} else {
		opts = append(opts, llm.WithContextBudget(0, token.Estimator{}))
	}

	system := llm.NewChatMessage(cfg.SystemMessage.Role, cfg.SystemMessage.Content)
	gen := llm.NewTextGenerator(provider, cfg.Model, system, opts...)

	return gen, func() { provider.Close() }, nil
}

func (w *Workflow) coverGenerator(ctx context.Context, cfg *types.ModelConfig) (*cover.Generator, error) {
	images, err := w.services.ImageProvider(ctx)
	if err != nil {
		return nil, err
	}

	opts := []cover.Option{
		cover.WithSize(cfg.CoverSize()),
		cover.WithHTTPClient(w.httpClient),
		cover.WithErrorHandler(func(err error) {
			w.log.Warn("usage not recorded", map[string]interface{}{"error": err.Error()})
		}),
	}
	if recorder := w.services.UsageRecorder(); recorder != nil {
		opts = append(opts, cover.WithUsageRecorder(recorder, w.services.RunID()))
	}

	return cover.NewGenerator(images, w.store.Dir(), opts...), nil
}

func (w *Workflow) createCover(ctx context.Context, cfg *types.ModelConfig, description, name string) (string, error) {
	gen, err := w.coverGenerator(ctx, cfg)
	if err != nil {
		return "", err
	}
	return gen.Create(ctx, description, name)
}

// generateChapters asks for the chapter list, passing the current chapters as context.
func generateChapters(ctx context.Context, gen *llm.TextGenerator, cfg *types.ModelConfig, book *types.BookConfig, current []string) ([]string, error) {
	text, err := prompt.Format(cfg.InitialPrompt, book.Title, book.ChapterCount, current)
	if err != nil {
		return nil, fmt.Errorf("initial_prompt: %w", err)
	}

	raw, err := gen.Generate(ctx, text)
	if err != nil {
		return nil, err
	}

	return chapters.Extract(raw, cfg.CharsToRemove), nil
}

// generateTexts generates chapter bodies in list order so that texts[i] belongs to titles[i].
func (w *Workflow) generateTexts(ctx context.Context, gen *llm.TextGenerator, cfg *types.ModelConfig, book *types.BookConfig, titles []string) ([]string, error) {
	texts := make([]string, 0, len(titles))
	for i, title := range titles {
		text, err := prompt.Format(cfg.TextPrompt, book.Words, title, book.Title, book.Description)
		if err != nil {
			return nil, fmt.Errorf("text_prompt: %w", err)
		}

		body, err := gen.Generate(ctx, text)
		if err != nil {
			w.log.Error("chapter generation failed", map[string]interface{}{"chapter": title, "index": i + 1})
			return nil, err
		}
		texts = append(texts, body)

		w.printer.Progress(i+1, len(titles), title)
		w.log.Debug("chapter generated", map[string]interface{}{"chapter": title, "index": i + 1})
	}
	return texts, nil
}
