// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns an assembled Document into downloadable artifacts.
// Renderers are pure: the same Document and Meta always produce the same
// bytes, and sections are emitted exactly in Document order.
package render

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/modulegen/pkg/types"
)

// Format names an output format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatDOCX     Format = "docx"
	FormatPDF      Format = "pdf"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatMarkdown, FormatDOCX, FormatPDF, FormatJSON, FormatYAML}

// DefaultTitle is used when neither Meta nor the Document supply a title.
const DefaultTitle = "Educational Module"

// Meta carries presentation details that are not part of the Document.
type Meta struct {
	Title       string
	Language    string
	GeneratedAt time.Time
	FooterLabel string
}

// MetaFor fills Meta from doc, keeping any field already set.
func MetaFor(doc *types.Document, m Meta) Meta {
	if m.Title == "" {
		m.Title = doc.Topic
	}
	if m.Title == "" {
		m.Title = DefaultTitle
	}
	if m.Language == "" {
		m.Language = doc.Language
	}
	if m.GeneratedAt.IsZero() {
		m.GeneratedAt = doc.CreatedAt
	}
	if m.FooterLabel == "" {
		m.FooterLabel = types.DefaultFooterLabel
	}
	return m
}

// Line returns the "Language: X • Generated: ..." caption.
func (m Meta) Line() string {
	return fmt.Sprintf("Language: %s • Generated: %s", m.Language, m.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"))
}

// Renderer writes a Document in one format.
type Renderer interface {
	Render(w io.Writer, doc *types.Document, meta Meta) error
	Extension() string
	ContentType() string
}

// UnknownFormatError is returned for a format no renderer handles.
type UnknownFormatError struct {
	Format string
}

func (e *UnknownFormatError) Error() string {
	return fmt.Sprintf("unknown output format %q (want one of %s)", e.Format, strings.Join(formatNames(), ", "))
}

// For returns the renderer for f.
func For(f Format) (Renderer, error) {
	switch Format(strings.ToLower(string(f))) {
	case FormatText, "txt":
		return textRenderer{}, nil
	case FormatMarkdown, "md":
		return markdownRenderer{}, nil
	case FormatDOCX:
		return docxRenderer{}, nil
	case FormatPDF:
		return pdfRenderer{}, nil
	case FormatJSON:
		return jsonRenderer{}, nil
	case FormatYAML, "yml":
		return yamlRenderer{}, nil
	default:
		return nil, &UnknownFormatError{Format: string(f)}
	}
}

// Bytes renders doc in format f into memory.
func Bytes(f Format, doc *types.Document, meta Meta) ([]byte, error) {
	r, err := For(f)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, doc, MetaFor(doc, meta)); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// WriteFiles renders doc once per format into dir/name.<ext> and returns the
// written paths in format order.
func WriteFiles(dir, name string, doc *types.Document, meta Meta, formats []Format) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	var paths []string
	for _, f := range formats {
		r, err := For(f)
		if err != nil {
			return paths, err
		}
		data, err := Bytes(f, doc, meta)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, name+r.Extension())
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ParseFormats converts names to Formats, rejecting unknown ones.
func ParseFormats(names []string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if _, err := For(Format(part)); err != nil {
				return nil, err
			}
			f := canonical(Format(part))
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	return out, nil
}

func canonical(f Format) Format {
	switch Format(strings.ToLower(string(f))) {
	case "txt":
		return FormatText
	case "md":
		return FormatMarkdown
	case "yml":
		return FormatYAML
	}
	return Format(strings.ToLower(string(f)))
}

func formatNames() []string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return names
}

// paragraphs splits a body on blank lines, dropping empty chunks.
func paragraphs(body string) []string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(body, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns s into a lowercase file name stem. Letters outside ASCII are
// folded to their base letter where a simple mapping exists.
func Slug(s string) string {
	s = strings.ToLower(strings.Map(foldAccent, s))
	s = strings.Trim(nonSlug.ReplaceAllString(s, "-"), "-")
	if len(s) > 60 {
		s = strings.TrimRight(s[:60], "-")
	}
	if s == "" {
		return "module"
	}
	return s
}

func foldAccent(r rune) rune {
	switch {
	case strings.ContainsRune("àáâãäå", r):
		return 'a'
	case strings.ContainsRune("ÀÁÂÃÄÅ", r):
		return 'A'
	case strings.ContainsRune("èéêë", r):
		return 'e'
	case strings.ContainsRune("ÈÉÊË", r):
		return 'E'
	case strings.ContainsRune("ìíîï", r):
		return 'i'
	case strings.ContainsRune("ÌÍÎÏ", r):
		return 'I'
	case strings.ContainsRune("òóôõö", r):
		return 'o'
	case strings.ContainsRune("ÒÓÔÕÖ", r):
		return 'O'
	case strings.ContainsRune("ùúûü", r):
		return 'u'
	case strings.ContainsRune("ÙÚÛÜ", r):
		return 'U'
	case r == 'ç':
		return 'c'
	case r == 'Ç':
		return 'C'
	case r == 'ñ':
		return 'n'
	case r == 'Ñ':
		return 'N'
	}
	return r
}
