// Package manuscript assembles the Markdown manuscript of a book.
package manuscript

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/azyu/publishgpt/internal/storage"
	"github.com/azyu/publishgpt/pkg/types"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Assemble writes the manuscript to w: a centered upper-case title, the
// cover image reference and one level-2 section per chapter. Chapters and
// texts are paired by position and pairing stops at the shorter list.
func Assemble(w io.Writer, title string, chapters, texts []string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "#<center>%s</center>\n\n", strings.ToUpper(title))
	fmt.Fprintf(bw, "![%s](%s)\n\n", title, types.CoverFileName(title))

	n := min(len(chapters), len(texts))
	for i := 0; i < n; i++ {
		fmt.Fprintf(bw, "\n## %s\n\n", chapters[i])
		bw.WriteString(texts[i])
		bw.WriteString("\n")
	}

	return bw.Flush()
}

// Write assembles the manuscript into path atomically.
func Write(path, title string, chapters, texts []string) error {
	writer, err := storage.NewAtomicWriter(path)
	if err != nil {
		return err
	}
	defer writer.Abort()

	if err := Assemble(writer, title, chapters, texts); err != nil {
		return fmt.Errorf("failed to write manuscript: %w", err)
	}

	return writer.Commit()
}

// Outline returns the text of every level-2 heading of a manuscript in
// document order. For an assembled manuscript these are the chapter titles.
func Outline(content []byte) []string {
	doc := goldmark.New().Parser().Parse(text.NewReader(content))

	headings := []string{}
	ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if heading, ok := n.(*ast.Heading); ok && heading.Level == 2 {
			headings = append(headings, headingText(heading, content))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return headings
}

// headingText concatenates the text segments below a heading.
func headingText(n ast.Node, source []byte) string {
	var b strings.Builder
	ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}
