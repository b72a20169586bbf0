// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/modulegen/pkg/types"
)

type textRenderer struct{}

func (textRenderer) Extension() string   { return ".txt" }
func (textRenderer) ContentType() string { return "text/plain; charset=utf-8" }

// Render writes each section as its title, a newline and its trimmed body,
// separated by one blank line.
func (textRenderer) Render(w io.Writer, doc *types.Document, _ Meta) error {
	_, err := io.WriteString(w, PlainText(doc))
	return err
}

// PlainText returns the plain-text rendition of doc.
func PlainText(doc *types.Document) string {
	parts := make([]string, len(doc.Sections))
	for i, s := range doc.Sections {
		parts[i] = s.Title + "\n" + strings.TrimSpace(s.Body)
	}
	return strings.Join(parts, "\n\n")
}

type markdownRenderer struct{}

func (markdownRenderer) Extension() string   { return ".md" }
func (markdownRenderer) ContentType() string { return "text/markdown; charset=utf-8" }

func (markdownRenderer) Render(w io.Writer, doc *types.Document, meta Meta) error {
	_, err := io.WriteString(w, Markdown(doc, meta))
	return err
}

// Markdown returns doc as a Markdown document with one level-2 heading per
// section.
func Markdown(doc *types.Document, meta Meta) string {
	meta = MetaFor(doc, meta)
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n_%s_\n", meta.Title, meta.Line())
	for _, s := range doc.Sections {
		fmt.Fprintf(&b, "\n## %s\n", s.Title)
		if body := strings.TrimSpace(s.Body); body != "" {
			fmt.Fprintf(&b, "\n%s\n", body)
		}
	}
	return b.String()
}

type jsonRenderer struct{}

func (jsonRenderer) Extension() string   { return ".json" }
func (jsonRenderer) ContentType() string { return "application/json" }

func (jsonRenderer) Render(w io.Writer, doc *types.Document, _ Meta) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

type yamlRenderer struct{}

func (yamlRenderer) Extension() string   { return ".yaml" }
func (yamlRenderer) ContentType() string { return "application/yaml" }

func (yamlRenderer) Render(w io.Writer, doc *types.Document, _ Meta) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}
