// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/modulegen/pkg/types"
)

var generatedAt = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func sampleDocument() *types.Document {
	return &types.Document{
		ID:          "01HZXTESTDOC",
		Fingerprint: "f00d",
		Topic:       "Photosynthesis",
		Language:    "Portuguese",
		CreatedAt:   generatedAt,
		Sections: []types.SectionResult{
			{TaskID: "introduction", Title: "Introduction", Body: "INTRO_TEXT\n", Order: 1},
			{TaskID: "units", Title: "Learning Units", Body: "Unit 1: Light\n\nChlorophyll absorbs light & stores energy.", Order: 2},
			{TaskID: "glossary", Title: "Glossary", Body: "", Order: 3},
		},
	}
}

func TestPlainText(t *testing.T) {
	doc := &types.Document{Sections: []types.SectionResult{
		{Title: "Introduction", Body: "  INTRO_TEXT  ", Order: 1},
		{Title: "Glossary", Body: "GLOSS_TEXT", Order: 3},
	}}
	assert.Equal(t, "Introduction\nINTRO_TEXT\n\nGlossary\nGLOSS_TEXT", PlainText(doc))

	// Splitting on blank lines recovers every (title, body) pair in order.
	blocks := strings.Split(PlainText(doc), "\n\n")
	require.Len(t, blocks, 2)
	for i, block := range blocks {
		title, body, ok := strings.Cut(block, "\n")
		require.True(t, ok)
		assert.Equal(t, doc.Sections[i].Title, title)
		assert.Equal(t, strings.TrimSpace(doc.Sections[i].Body), body)
	}
}

func TestPlainText_EmptyBodyKeepsHeading(t *testing.T) {
	got := PlainText(sampleDocument())
	assert.True(t, strings.HasSuffix(got, "\n\nGlossary\n"))
}

func TestMarkdown(t *testing.T) {
	got := Markdown(sampleDocument(), Meta{})
	assert.True(t, strings.HasPrefix(got, "# Photosynthesis\n\n_Language: Portuguese • Generated: 2026-03-14 09:30 UTC_\n"))

	intro := strings.Index(got, "## Introduction")
	units := strings.Index(got, "## Learning Units")
	gloss := strings.Index(got, "## Glossary")
	assert.True(t, intro > 0 && intro < units && units < gloss, "headings out of order:\n%s", got)
}

func TestDOCX(t *testing.T) {
	data, err := Bytes(FormatDOCX, sampleDocument(), Meta{})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	names := make(map[string]bool)
	var document string
	for _, f := range zr.File {
		names[f.Name] = true
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			require.NoError(t, err)
			b, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			document = string(b)
		}
	}
	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/document.xml", "word/styles.xml"} {
		assert.True(t, names[want], "missing part %s", want)
	}

	headings := regexp.MustCompile(`<w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t xml:space="preserve">([^<]*)</w:t>`).FindAllStringSubmatch(document, -1)
	var titles []string
	for _, h := range headings {
		titles = append(titles, h[1])
	}
	assert.Equal(t, []string{"Introduction", "Learning Units", "Glossary"}, titles)
	assert.Contains(t, document, `<w:pStyle w:val="Title"/></w:pPr><w:r><w:t xml:space="preserve">Photosynthesis</w:t>`)
	assert.Contains(t, document, "Chlorophyll absorbs light &amp; stores energy.")
	assert.Less(t, strings.Index(document, "Unit 1: Light"), strings.Index(document, "Chlorophyll"))
}

func TestDOCX_Deterministic(t *testing.T) {
	a, err := Bytes(FormatDOCX, sampleDocument(), Meta{})
	require.NoError(t, err)
	b, err := Bytes(FormatDOCX, sampleDocument(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLayout(t *testing.T) {
	doc := sampleDocument()
	got := layout(doc, MetaFor(doc, Meta{}))

	want := []block{
		{kind: blockLabel, text: ProductLabel},
		{kind: blockTitle, text: "Photosynthesis"},
		{kind: blockMeta, text: "Language: Portuguese • Generated: 2026-03-14 09:30 UTC"},
		{kind: blockPageBreak},
		{kind: blockHeading, text: "Introduction"},
		{kind: blockParagraph, text: "INTRO_TEXT"},
		{kind: blockHeading, text: "Learning Units"},
		{kind: blockParagraph, text: "Unit 1: Light"},
		{kind: blockParagraph, text: "Chlorophyll absorbs light & stores energy."},
		{kind: blockHeading, text: "Glossary"},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(block{})); diff != "" {
		t.Errorf("layout mismatch (-want +got):\n%s", diff)
	}
}

func TestFooterText(t *testing.T) {
	assert.Equal(t, "Module Generator    •    Page 3", footerText("Module Generator", 3))
}

func TestPDF(t *testing.T) {
	doc := sampleDocument()
	var buf bytes.Buffer
	require.NoError(t, pdfRenderer{uncompressed: true}.Render(&buf, doc, MetaFor(doc, Meta{})))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "%PDF"))
	assert.Contains(t, out, "Page 1")
	assert.Contains(t, out, "Page 2")
	assert.Contains(t, out, "INTRO_TEXT")
}

func TestPDF_NonLatinTextEmbedsUnicodeFont(t *testing.T) {
	doc := sampleDocument()
	doc.Topic = "Фотосинтез"
	doc.Sections[0].Body = "Хлорофилл поглощает свет."

	var buf bytes.Buffer
	require.NoError(t, pdfRenderer{uncompressed: true}.Render(&buf, doc, MetaFor(doc, Meta{})))
	assert.Contains(t, buf.String(), "/Encoding /Identity-H")

	buf.Reset()
	latin := sampleDocument()
	require.NoError(t, pdfRenderer{uncompressed: true}.Render(&buf, latin, MetaFor(latin, Meta{})))
	assert.NotContains(t, buf.String(), "/Encoding /Identity-H")
}

func TestNeedsUnicode(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"Educação a Distância • Página 2", false},
		{"Ελληνικά", true},
		{"光合作用", true},
		{"naïve café – “quoted”", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, needsUnicode([]block{{kind: blockParagraph, text: tt.text}}, "Module Generator"), tt.text)
	}
	assert.True(t, needsUnicode(nil, "Учебный модуль"))
}

func TestPDF_Compressed(t *testing.T) {
	data, err := Bytes(FormatPDF, sampleDocument(), Meta{FooterLabel: "Course Studio"})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestExports(t *testing.T) {
	doc := sampleDocument()

	data, err := Bytes(FormatJSON, doc, Meta{})
	require.NoError(t, err)
	var fromJSON types.Document
	require.NoError(t, json.Unmarshal(data, &fromJSON))
	assert.Equal(t, doc.Sections, fromJSON.Sections)

	data, err = Bytes(FormatYAML, doc, Meta{})
	require.NoError(t, err)
	var fromYAML types.Document
	require.NoError(t, yaml.Unmarshal(data, &fromYAML))
	assert.Equal(t, doc.Sections, fromYAML.Sections)
}

func TestFor(t *testing.T) {
	tests := []struct {
		format Format
		ext    string
	}{
		{FormatText, ".txt"},
		{"TXT", ".txt"},
		{FormatMarkdown, ".md"},
		{FormatDOCX, ".docx"},
		{FormatPDF, ".pdf"},
		{FormatJSON, ".json"},
		{"yml", ".yaml"},
	}
	for _, tt := range tests {
		r, err := For(tt.format)
		require.NoError(t, err, tt.format)
		assert.Equal(t, tt.ext, r.Extension())
		assert.NotEmpty(t, r.ContentType())
	}

	_, err := For("odt")
	var unknown *UnknownFormatError
	assert.ErrorAs(t, err, &unknown)
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"pdf,md", "text", "markdown"})
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatPDF, FormatMarkdown, FormatText}, got)

	_, err = ParseFormats([]string{"rtf"})
	assert.Error(t, err)
}

func TestWriteFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := WriteFiles(dir, "photosynthesis", sampleDocument(), Meta{}, []Format{FormatText, FormatDOCX})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "photosynthesis.txt"),
		filepath.Join(dir, "photosynthesis.docx"),
	}, paths)

	text, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, PlainText(sampleDocument()), string(text))
}

func TestSlug(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Photosynthesis", "photosynthesis"},
		{"Educação a Distância: Leis", "educacao-a-distancia-leis"},
		{"  --  ", "module"},
		{"Soil & Water (Part 2)", "soil-water-part-2"},
		{strings.Repeat("long word ", 10), "long-word-long-word-long-word-long-word-long-word-long-word"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slug(tt.in), tt.in)
	}
}
