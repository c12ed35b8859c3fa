// Package workflow implements the book drafting commands.
//
// Each command is an independent step. Progress between steps is carried by
// the checkpoint files in the working directory, so a book can be drafted
// over several sessions.
package workflow

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/azyu/publishgpt/internal/convert"
	"github.com/azyu/publishgpt/internal/llm"
	"github.com/azyu/publishgpt/internal/logger"
	"github.com/azyu/publishgpt/internal/storage"
	"github.com/azyu/publishgpt/internal/ui"
	"github.com/azyu/publishgpt/pkg/types"
)

// Prompter asks the user for input.
type Prompter interface {
	// Input asks for free text. suggestions may be offered for completion.
	Input(title, defaultValue string, suggestions ...string) (string, error)
	// Int asks for an integer.
	Int(title string) (int, error)
	// Confirm asks a yes/no question.
	Confirm(title string) (bool, error)
}

// Services supplies configuration and remote providers.
type Services interface {
	LoadModelConfig() (*types.ModelConfig, error)
	TextProvider(ctx context.Context) (llm.Provider, error)
	ImageProvider(ctx context.Context) (llm.ImageProvider, error)
	// UsageRecorder may return nil, in which case usage is not recorded.
	UsageRecorder() llm.UsageRecorder
	RunID() string
}

// UsageReporter aggregates the usage ledger.
type UsageReporter interface {
	Totals(ctx context.Context) ([]types.UsageTotal, error)
}

// RunReporter lists the usage events of one run.
type RunReporter interface {
	Events(ctx context.Context, runID string) ([]types.UsageEvent, error)
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithOutput sets where status lines are printed. Default: os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(wf *Workflow) {
		wf.printer = ui.NewPrinter(w)
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(wf *Workflow) {
		wf.log = l
	}
}

// WithHTTPClient sets the client used for image downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(wf *Workflow) {
		wf.httpClient = client
	}
}

// WithConverterOptions passes options to the document converter.
func WithConverterOptions(opts ...convert.Option) Option {
	return func(wf *Workflow) {
		wf.convertOpts = append(wf.convertOpts, opts...)
	}
}

// Workflow runs the commands against one working directory.
type Workflow struct {
	store    *storage.Checkpoints
	services Services
	prompter Prompter

	printer     *ui.Printer
	log         *logger.Logger
	httpClient  *http.Client
	convertOpts []convert.Option
}

// New creates a Workflow.
func New(store *storage.Checkpoints, services Services, prompter Prompter, opts ...Option) *Workflow {
	wf := &Workflow{
		store:      store,
		services:   services,
		prompter:   prompter,
		printer:    ui.NewPrinter(os.Stdout),
		log:        logger.Get(),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(wf)
	}
	return wf
}
