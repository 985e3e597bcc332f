package parser

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/google/go-cmp/cmp"
	"github.com/ledongthuc/pdf"
)

// pdfLine is one line of text drawn at (x, y) in 12pt Courier.
type pdfLine struct {
	x, y float64
	text string
}

// writeTestPDF writes a minimal PDF with one page per entry of pages.
func writeTestPDF(t *testing.T, pages ...[]pdfLine) string {
	t.Helper()
	var buf bytes.Buffer
	var offsets []int
	object := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	widths := strings.TrimSpace(strings.Repeat("600 ", 95))
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	buf.WriteString("%PDF-1.4\n")
	object("<< /Type /Catalog /Pages 2 0 R >>")
	object(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] >>", strings.Join(kids, " "), len(pages)))
	object("<< /Type /Font /Subtype /Type1 /BaseFont /Courier /Encoding /WinAnsiEncoding /FirstChar 32 /LastChar 126 /Widths [" + widths + "] >>")
	for i, lines := range pages {
		var content strings.Builder
		for _, l := range lines {
			fmt.Fprintf(&content, "BT /F1 12 Tf 1 0 0 1 %g %g Tm (%s) Tj ET\n", l.x, l.y, l.text)
		}
		object(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		object(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", content.Len(), content.String()))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)

	path := filepath.Join(t.TempDir(), "snacks.pdf")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write test PDF: %v", err)
	}
	return path
}

// snackPDFPage draws a snack table under a title. The afternoon heading above
// the table header must be ignored.
func snackPDFPage() []pdfLine {
	return []pdfLine{
		{72, 760, "Weekly Menu"},
		{72, 740, "Afternoon Snack"},
		{72, 730, "Cake"},
		{72, 700, "Students Snack"},
		{72, 680, "Morning Snack"},
		{72, 660, "Apple"},
		{72, 645, "Pingguo"},
		{72, 620, "Afternoon Snack"},
		{72, 600, "Banana"},
		{72, 585, "Xiangjiao"},
		{72, 560, "Evening Snack"},
		{72, 540, "Milk"},
		{72, 525, "Niunai"},
	}
}

func glyph(s string, x, y float64) pdf.Text {
	return pdf.Text{S: s, X: x, Y: y, W: 5, FontSize: 10}
}

func TestGroupGlyphs(t *testing.T) {
	glyphs := []pdf.Text{
		glyph("H", 10, 100),
		glyph("i", 15, 100),
		glyph("Y", 23, 100.2), // word gap, same baseline
		glyph("Z", 60, 100),   // cell gap
		glyph("Q", 10, 80),    // next line
		glyph(" ", 15, 80),
		glyph("R", 20, 80),
	}

	want := []TextRun{
		{Text: "Hi Y", X: 10, Y: 100},
		{Text: "Z", X: 60, Y: 100},
		{Text: "Q R", X: 10, Y: 80},
	}
	if diff := cmp.Diff(want, groupGlyphs(glyphs)); diff != "" {
		t.Errorf("runs mismatch (-want +got):\n%s", diff)
	}
}

func TestGroupGlyphsDropsBlankRuns(t *testing.T) {
	glyphs := []pdf.Text{glyph(" ", 10, 100), glyph("A", 10, 50)}

	runs := groupGlyphs(glyphs)
	if len(runs) != 1 || runs[0].Text != "A" {
		t.Errorf("Expected single run A, got %v", runs)
	}
}

func TestOpenPDFMissingFile(t *testing.T) {
	_, err := OpenPDF(filepath.Join(t.TempDir(), "snacks.pdf"))
	if !errors.Is(err, ErrDocumentUnavailable) {
		t.Fatalf("Expected ErrDocumentUnavailable, got %v", err)
	}
}

func TestOpenPDFPageRuns(t *testing.T) {
	doc, err := OpenPDF(writeTestPDF(t, snackPDFPage()))
	if err != nil {
		t.Fatalf("OpenPDF failed: %v", err)
	}
	defer doc.Close()

	if doc.PageCount() != 1 {
		t.Fatalf("PageCount = %d, expected 1", doc.PageCount())
	}
	runs, err := doc.PageRuns(1)
	if err != nil {
		t.Fatalf("PageRuns failed: %v", err)
	}
	if len(runs) != len(snackPDFPage()) {
		t.Fatalf("Expected %d runs, got %d: %v", len(snackPDFPage()), len(runs), runs)
	}
	if runs[3].Text != "Students Snack" || runs[3].Y != 700 || runs[3].X != 72 {
		t.Errorf("Unexpected header run %+v", runs[3])
	}
	if runs[4].Y >= runs[3].Y {
		t.Errorf("Expected lower lines to have smaller y, got %v below %v", runs[4].Y, runs[3].Y)
	}

	if _, err := doc.PageRuns(2); !errors.Is(err, ErrPageNotFound) {
		t.Errorf("Expected ErrPageNotFound, got %v", err)
	}
}

func TestExtractSnacksFromPDF(t *testing.T) {
	notices := []pdfLine{{72, 700, "Notices"}, {72, 680, "Library closed on Friday"}}
	want := models.SnackSet{
		Morning:   []models.BilingualItem{{Primary: "Apple", Secondary: "Pingguo"}},
		Afternoon: []models.BilingualItem{{Primary: "Banana", Secondary: "Xiangjiao"}},
		Evening:   []models.BilingualItem{{Primary: "Milk", Secondary: "Niunai"}},
	}

	tests := []struct {
		name  string
		pages [][]pdfLine
	}{
		{"header on first page", [][]pdfLine{snackPDFPage()}},
		{"header on following page", [][]pdfLine{notices, snackPDFPage()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTestPDF(t, tt.pages...)
			doc, err := OpenPDF(path)
			if err != nil {
				t.Fatalf("OpenPDF failed: %v", err)
			}
			defer doc.Close()

			got, err := ExtractSnacks(path, doc, DefaultSnackParams())
			if err != nil {
				t.Fatalf("ExtractSnacks failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("snacks mismatch (-want +got):\n%s", diff)
			}
		})
	}

	path := writeTestPDF(t, notices, snackPDFPage())
	doc, err := OpenPDF(path)
	if err != nil {
		t.Fatalf("OpenPDF failed: %v", err)
	}
	defer doc.Close()
	p := DefaultSnackParams()
	p.Fallback = false
	if _, err := ExtractSnacks(path, doc, p); !errors.Is(err, ErrSnackHeaderNotFound) {
		t.Errorf("Expected ErrSnackHeaderNotFound without fallback, got %v", err)
	}
}

func TestOpenPDFInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snacks.pdf")
	if err := os.WriteFile(path, []byte("not a pdf"), 0o644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	_, err := OpenPDF(path)
	var mde *MalformedDocumentError
	if !errors.As(err, &mde) {
		t.Fatalf("Expected MalformedDocumentError, got %v", err)
	}
	if errors.Is(err, ErrDocumentUnavailable) {
		t.Error("Expected an invalid file not to be reported as unavailable")
	}
}
