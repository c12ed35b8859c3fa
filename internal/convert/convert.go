// Package convert renders Markdown manuscripts to PDF with pandoc.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
)

var (
	ErrNoMarkdownFiles   = errors.New("no Markdown files found")
	ErrFileNotFound      = errors.New("file not found")
	ErrConverterNotFound = errors.New("converter not found")
)

// DefaultBinary is the converter executable looked up on PATH.
const DefaultBinary = "pandoc"

// Runner executes the converter. It returns the combined error output on failure.
type Runner func(ctx context.Context, binary string, args []string, dir string) error

// Converter turns Markdown files of one directory into PDFs.
type Converter struct {
	dir       string
	binary    string
	extraArgs []string
	run       Runner
}

// Option configures a Converter.
type Option func(*Converter)

// WithBinary overrides the converter executable.
func WithBinary(binary string) Option {
	return func(c *Converter) {
		c.binary = binary
	}
}

// WithRunner replaces process execution, mainly for tests.
func WithRunner(run Runner) Option {
	return func(c *Converter) {
		c.run = run
	}
}

// New creates a Converter for dir passing extraArgs after the output file.
func New(dir string, extraArgs []string, opts ...Option) *Converter {
	c := &Converter{
		dir:       dir,
		binary:    DefaultBinary,
		extraArgs: extraArgs,
		run:       execRunner,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MarkdownFiles lists the *.md files directly in the directory, sorted by name.
func (c *Converter) MarkdownFiles() ([]string, error) {
	return FindMarkdownFiles(c.dir)
}

// Convert renders name, which must be one of MarkdownFiles, and returns the
// output file name.
func (c *Converter) Convert(ctx context.Context, name string) (string, error) {
	files, err := c.MarkdownFiles()
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoMarkdownFiles
	}
	if !slices.Contains(files, name) {
		return "", fmt.Errorf("%w: %s", ErrFileNotFound, name)
	}

	output := OutputName(name)
	args := append([]string{name, "-o", output}, c.extraArgs...)
	if err := c.run(ctx, c.binary, args, c.dir); err != nil {
		return "", err
	}
	return output, nil
}

// FindMarkdownFiles lists the *.md files directly in dir, sorted by name.
func FindMarkdownFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	files := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".md") {
			files = append(files, e.Name())
		}
	}
	slices.Sort(files)
	return files, nil
}

// OutputName returns the PDF name for a Markdown file: "book.md" -> "book_output.pdf".
func OutputName(markdown string) string {
	return strings.TrimSuffix(markdown, ".md") + "_output.pdf"
}

func execRunner(ctx context.Context, binary string, args []string, dir string) error {
	path, err := exec.LookPath(binary)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrConverterNotFound, binary, err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("%s failed: %w", filepath.Base(binary), err)
		}
		return fmt.Errorf("%s failed: %w: %s", filepath.Base(binary), err, msg)
	}
	return nil
}
