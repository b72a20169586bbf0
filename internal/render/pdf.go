// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	_ "embed"
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"
	"golang.org/x/text/encoding/charmap"

	"github.com/pdiddy/modulegen/pkg/types"
)

// ProductLabel heads the title page of every paginated rendition.
const ProductLabel = "Educational Module"

type blockKind int

const (
	blockLabel blockKind = iota
	blockTitle
	blockMeta
	blockPageBreak
	blockHeading
	blockParagraph
)

// block is one unit of paginated layout.
type block struct {
	kind blockKind
	text string
}

// layout flattens doc into the block sequence the PDF writer emits: the title
// page, a page break, then one heading and its paragraphs per section.
func layout(doc *types.Document, meta Meta) []block {
	blocks := []block{
		{kind: blockLabel, text: ProductLabel},
		{kind: blockTitle, text: meta.Title},
		{kind: blockMeta, text: meta.Line()},
		{kind: blockPageBreak},
	}
	for _, s := range doc.Sections {
		blocks = append(blocks, block{kind: blockHeading, text: s.Title})
		for _, p := range paragraphs(s.Body) {
			blocks = append(blocks, block{kind: blockParagraph, text: p})
		}
	}
	return blocks
}

// footerText is printed at the bottom of page n.
func footerText(label string, n int) string {
	return fmt.Sprintf("%s    •    Page %d", label, n)
}

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	dejaVuRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	dejaVuBold []byte
)

// pdfFont is the face set a rendition is written with. Text passes through tr
// before it reaches the page.
type pdfFont struct {
	family      string
	footerStyle string
	tr          func(string) string
}

// needsUnicode reports whether any text in blocks or label falls outside
// cp1252, the encoding of the core PDF fonts.
func needsUnicode(blocks []block, label string) bool {
	texts := []string{label}
	for _, b := range blocks {
		texts = append(texts, b.text)
	}
	for _, t := range texts {
		for _, r := range t {
			if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
				return true
			}
		}
	}
	return false
}

// selectFont registers the faces for blocks on pdf. Latin-script text keeps
// the core Helvetica font; anything else gets the embedded DejaVu font, which
// is subset to the glyphs used.
func selectFont(pdf *fpdf.Fpdf, blocks []block, label string) pdfFont {
	if !needsUnicode(blocks, label) {
		return pdfFont{family: "Helvetica", footerStyle: "I", tr: pdf.UnicodeTranslatorFromDescriptor("")}
	}
	pdf.AddUTF8FontFromBytes("DejaVu", "", dejaVuRegular)
	pdf.AddUTF8FontFromBytes("DejaVu", "B", dejaVuBold)
	return pdfFont{family: "DejaVu", footerStyle: "", tr: func(s string) string { return s }}
}

type pdfRenderer struct {
	// uncompressed leaves page streams readable; used by tests.
	uncompressed bool
}

func (pdfRenderer) Extension() string   { return ".pdf" }
func (pdfRenderer) ContentType() string { return "application/pdf" }

// Render writes an A4 PDF. Documents whose text fits cp1252 use the core
// Helvetica font; others embed a Unicode font.
func (r pdfRenderer) Render(w io.Writer, doc *types.Document, meta Meta) error {
	meta = MetaFor(doc, meta)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(!r.uncompressed)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetCreationDate(meta.GeneratedAt)
	pdf.SetModificationDate(meta.GeneratedAt)
	pdf.SetTitle(meta.Title, true)
	pdf.SetCreator(meta.FooterLabel, true)
	pdf.SetProducer(meta.FooterLabel, true)

	blocks := layout(doc, meta)
	font := selectFont(pdf, blocks, meta.FooterLabel)
	tr := font.tr
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font.family, font.footerStyle, 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr(footerText(meta.FooterLabel, pdf.PageNo())), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	for _, b := range blocks {
		switch b.kind {
		case blockLabel:
			pdf.SetY(80)
			pdf.SetFont(font.family, "B", 12)
			pdf.SetTextColor(90, 90, 90)
			pdf.CellFormat(0, 8, tr(b.text), "", 1, "C", false, 0, "")
		case blockTitle:
			pdf.Ln(6)
			pdf.SetFont(font.family, "B", 24)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 11, tr(b.text), "", "C", false)
		case blockMeta:
			pdf.Ln(6)
			pdf.SetFont(font.family, "", 10)
			pdf.SetTextColor(90, 90, 90)
			pdf.CellFormat(0, 6, tr(b.text), "", 1, "C", false, 0, "")
		case blockPageBreak:
			pdf.AddPage()
		case blockHeading:
			pdf.Ln(4)
			pdf.SetFont(font.family, "B", 16)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 8, tr(b.text), "", "L", false)
			pdf.Ln(2)
		case blockParagraph:
			pdf.SetFont(font.family, "", 11)
			pdf.SetTextColor(0, 0, 0)
			pdf.MultiCell(0, 5.5, tr(b.text), "", "J", false)
			pdf.Ln(3)
		}
	}

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}
