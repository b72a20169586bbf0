// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source decodes uploaded files and pasted text into the normalized
// input of a generation run.
package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/pdiddy/modulegen/internal/fingerprint"
	"github.com/pdiddy/modulegen/pkg/types"
)

// UnsupportedFormatError is returned for files whose extension has no decoder.
type UnsupportedFormatError struct {
	Name      string
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s (want .txt, .md, .html, .docx or .pdf)", e.Extension, e.Name)
}

// Extensions lists the file extensions Load accepts.
var Extensions = []string{".txt", ".md", ".markdown", ".html", ".htm", ".docx", ".pdf"}

// Loader decodes files. PDF is nil when no converter is configured, in which
// case PDF uploads fail with an explanatory error.
type Loader struct {
	PDF PDFConverter
	Log *zap.Logger
}

// Load reads path and decodes it by extension. The digest covers the raw
// bytes, so the same file always yields the same fingerprint.
func (l *Loader) Load(ctx context.Context, path, topic, language string) (types.NormalizedInput, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !supported(ext) {
		return types.NormalizedInput{}, &UnsupportedFormatError{Name: filepath.Base(path), Extension: ext}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return types.NormalizedInput{}, fmt.Errorf("reading %s: %w", path, err)
	}
	text, err := l.Decode(ctx, filepath.Base(path), data)
	if err != nil {
		return types.NormalizedInput{}, err
	}
	l.logger().Debug("source decoded",
		zap.String("file", filepath.Base(path)),
		zap.Int("bytes", len(data)),
		zap.Int("chars", utf8.RuneCountInString(text)))

	return types.NormalizedInput{
		RawText:    text,
		Topic:      strings.TrimSpace(topic),
		Language:   language,
		FileDigest: fingerprint.Digest(data),
	}, nil
}

// Decode extracts normalized text from data, choosing the decoder by the
// extension of name.
func (l *Loader) Decode(ctx context.Context, name string, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	var (
		text string
		err  error
	)
	switch ext {
	case ".txt", ".md", ".markdown":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("decoding %s: file is not valid UTF-8", name)
		}
		text = string(data)
	case ".html", ".htm":
		text, err = HTMLText(data)
	case ".docx":
		text, err = DOCXText(data)
	case ".pdf":
		if l.PDF == nil {
			return "", fmt.Errorf("decoding %s: no PDF converter configured", name)
		}
		text, err = l.PDF.Convert(ctx, data)
	default:
		return "", &UnsupportedFormatError{Name: name, Extension: ext}
	}
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", name, err)
	}
	return Normalize(text), nil
}

func (l *Loader) logger() *zap.Logger {
	if l.Log == nil {
		return zap.NewNop()
	}
	return l.Log
}

// FromText builds the input for pasted text. The digest covers the
// normalized text so cosmetic whitespace changes still hit the cache.
func FromText(text, topic, language string) types.NormalizedInput {
	norm := Normalize(text)
	in := types.NormalizedInput{
		RawText:  norm,
		Topic:    strings.TrimSpace(topic),
		Language: language,
	}
	if norm != "" {
		in.FileDigest = fingerprint.Digest([]byte(norm))
	}
	return in
}

// FromTopic builds the input for a topic-only run.
func FromTopic(topic, language string) types.NormalizedInput {
	return types.NormalizedInput{Topic: strings.TrimSpace(topic), Language: language}
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts line endings to LF, strips trailing spaces, collapses
// runs of blank lines and trims the result.
func Normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.TrimPrefix(s, "\ufeff")
	s = trailingSpace.ReplaceAllString(s, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func supported(ext string) bool {
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}
