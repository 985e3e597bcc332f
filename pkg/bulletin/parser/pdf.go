package parser

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Glyph grouping tolerances, in font-size units unless noted.
const (
	baselineTolerance = 0.5 // points
	runGapFactor      = 1.0
	wordGapFactor     = 0.2
)

// PDFDocument reads positioned text from a PDF file.
type PDFDocument struct {
	path  string
	file  *os.File
	r     *pdf.Reader
	pages int
}

// OpenPDF validates the file and opens it for text extraction.
func OpenPDF(path string) (*PDFDocument, error) {
	pages, err := validatePDF(path)
	if err != nil {
		return nil, err
	}
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, NewMalformedDocumentError(path, "pdf", err)
	}
	return &PDFDocument{path: path, file: f, r: r, pages: pages}, nil
}

func validatePDF(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, NewMalformedDocumentError(path, "pdf", fmt.Errorf("%w: %v", ErrDocumentUnavailable, err))
		}
		return 0, NewMalformedDocumentError(path, "pdf", err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	ctx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return 0, NewMalformedDocumentError(path, "pdf", fmt.Errorf("pdfcpu read: %w", err))
	}
	return ctx.PageCount, nil
}

// Close releases the underlying file.
func (d *PDFDocument) Close() error {
	return d.file.Close()
}

// PageCount returns the number of pages.
func (d *PDFDocument) PageCount() int {
	return d.pages
}

// PageRuns returns the text runs of a page (1-based) in content order.
func (d *PDFDocument) PageRuns(page int) (runs []TextRun, err error) {
	if page < 1 || page > d.r.NumPage() {
		return nil, NewMalformedDocumentError(d.path, "pdf", fmt.Errorf("%w: page %d", ErrPageNotFound, page))
	}
	p := d.r.Page(page)
	if p.V.IsNull() {
		return nil, NewMalformedDocumentError(d.path, "pdf", fmt.Errorf("%w: page %d", ErrPageNotFound, page))
	}
	defer func() {
		if rec := recover(); rec != nil {
			runs = nil
			err = NewMalformedDocumentError(d.path, "pdf", fmt.Errorf("page %d content: %v", page, rec))
		}
	}()
	return groupGlyphs(p.Content().Text), nil
}

// groupGlyphs merges consecutive glyphs that share a baseline and sit close
// together into runs.
func groupGlyphs(glyphs []pdf.Text) []TextRun {
	var runs []TextRun
	var sb strings.Builder
	var cur TextRun
	var lastEnd float64
	open := false

	flush := func() {
		if open {
			cur.Text = strings.TrimSpace(sb.String())
			if cur.Text != "" {
				runs = append(runs, cur)
			}
		}
		sb.Reset()
		open = false
	}

	for _, g := range glyphs {
		size := g.FontSize
		if size <= 0 {
			size = 1
		}
		if open {
			gap := g.X - lastEnd
			if math.Abs(g.Y-cur.Y) > baselineTolerance || gap > runGapFactor*size || gap < -size {
				flush()
			} else if gap > wordGapFactor*size && !strings.HasSuffix(sb.String(), " ") && g.S != " " {
				sb.WriteByte(' ')
			}
		}
		if !open {
			cur = TextRun{X: g.X, Y: g.Y}
			open = true
		}
		sb.WriteString(g.S)
		lastEnd = g.X + g.W
	}
	flush()
	return runs
}
