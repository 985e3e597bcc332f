package parser

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// nsR is the relationships namespace used for r:id attributes.
const nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

// Deck is an open presentation. Slides are parsed on first use.
type Deck struct {
	path   string
	zr     *zip.ReadCloser
	slides []string // zip paths in presentation order
	cache  map[int]*slideContent
}

type slideContent struct {
	tables []*slideTable
	blocks []string
}

// OpenDeck opens a .pptx file and resolves its slide order.
func OpenDeck(path string) (*Deck, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("%w: %v", ErrDocumentUnavailable, err)
		}
		return nil, NewMalformedDocumentError(path, "slides", err)
	}
	slides, err := slideOrder(&zr.Reader)
	if err != nil {
		zr.Close()
		return nil, NewMalformedDocumentError(path, "slides", err)
	}
	return &Deck{path: path, zr: zr, slides: slides, cache: make(map[int]*slideContent)}, nil
}

// Close releases the underlying archive.
func (d *Deck) Close() error {
	return d.zr.Close()
}

// SlideCount returns the number of slides.
func (d *Deck) SlideCount() int {
	return len(d.slides)
}

// Table returns the first table on slide index (0-based).
func (d *Deck) Table(index int) (TableSource, error) {
	sc, err := d.slide(index)
	if err != nil {
		return nil, err
	}
	if len(sc.tables) == 0 {
		return nil, NewMalformedDocumentError(d.path, "slides", fmt.Errorf("%w on slide %d", ErrTableNotFound, index))
	}
	return sc.tables[0], nil
}

// TextBlocks returns the text of each text-bearing shape on slide index, in
// shape order. Paragraphs are separated by newlines.
func (d *Deck) TextBlocks(index int) ([]string, error) {
	sc, err := d.slide(index)
	if err != nil {
		return nil, err
	}
	return sc.blocks, nil
}

func (d *Deck) slide(index int) (*slideContent, error) {
	if sc, ok := d.cache[index]; ok {
		return sc, nil
	}
	if index < 0 || index >= len(d.slides) {
		return nil, NewMalformedDocumentError(d.path, "slides",
			fmt.Errorf("%w: slide %d of %d", ErrPageNotFound, index, len(d.slides)))
	}
	data, err := readZipFile(&d.zr.Reader, d.slides[index])
	if err != nil {
		return nil, NewMalformedDocumentError(d.path, "slides", err)
	}
	sc, err := parseSlideXML(data)
	if err != nil {
		return nil, NewMalformedDocumentError(d.path, "slides", fmt.Errorf("slide %d: %w", index, err))
	}
	d.cache[index] = sc
	return sc, nil
}

// slideOrder maps the presentation's slide list onto zip paths.
func slideOrder(r *zip.Reader) ([]string, error) {
	presXML, err := readZipFile(r, "ppt/presentation.xml")
	if err != nil {
		return nil, err
	}
	relsXML, err := readZipFile(r, "ppt/_rels/presentation.xml.rels")
	if err != nil {
		return nil, err
	}
	targets := parseRelationships(relsXML)

	var slides []string
	decoder := xml.NewDecoder(strings.NewReader(string(presXML)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		se, ok := token.(xml.StartElement)
		if !ok || se.Name.Local != "sldId" {
			continue
		}
		for _, attr := range se.Attr {
			if attr.Name.Local == "id" && attr.Name.Space == nsR {
				if target, ok := targets[attr.Value]; ok {
					slides = append(slides, resolvePartPath(target, "ppt"))
				}
			}
		}
	}
	if len(slides) == 0 {
		return nil, errors.New("presentation has no slides")
	}
	return slides, nil
}

// parseRelationships returns relationship id -> target.
func parseRelationships(data []byte) map[string]string {
	result := make(map[string]string)
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := token.(xml.StartElement); ok && se.Name.Local == "Relationship" {
			var id, target string
			for _, attr := range se.Attr {
				switch attr.Name.Local {
				case "Id":
					id = attr.Value
				case "Target":
					target = attr.Value
				}
			}
			if id != "" && target != "" {
				result[id] = target
			}
		}
	}
	return result
}

// resolvePartPath resolves a relationship target relative to baseDir.
func resolvePartPath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(baseDir + "/" + target)
}

func readZipFile(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name == name {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s: %w", name, ErrPageNotFound)
}

// parseSlideXML streams a slide part collecting tables and shape text.
// Group shapes need no special handling since their children are visited in
// document order.
func parseSlideXML(data []byte) (*slideContent, error) {
	sc := &slideContent{}
	decoder := xml.NewDecoder(strings.NewReader(string(data)))
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			return sc, nil
		}
		if err != nil {
			return nil, err
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case "txBody":
			text, err := parseTextBody(decoder)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(text) != "" {
				sc.blocks = append(sc.blocks, text)
			}
		case "tbl":
			tbl, err := parseTable(decoder)
			if err != nil {
				return nil, err
			}
			sc.tables = append(sc.tables, tbl)
		}
	}
}

// parseTextBody reads a shape's txBody: paragraphs joined by "\n", line
// breaks as "\n".
func parseTextBody(decoder *xml.Decoder) (string, error) {
	var paras []string
	var cur strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return "", err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				cur.Reset()
				depth++
			case "t":
				text, err := readElementText(decoder)
				if err != nil {
					return "", err
				}
				cur.WriteString(text)
			case "br":
				cur.WriteByte('\n')
				depth++
			default:
				depth++
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "p" {
				paras = append(paras, cur.String())
			}
		}
	}
	return strings.Join(paras, "\n"), nil
}

// slideTable is an a:tbl element.
type slideTable struct {
	cols int
	rows [][]SourceCell
}

func (t *slideTable) RowCount() int    { return len(t.rows) }
func (t *slideTable) ColumnCount() int { return t.cols }

func (t *slideTable) Cell(row, col int) SourceCell {
	if row < 0 || row >= len(t.rows) || col < 0 || col >= len(t.rows[row]) {
		return SourceCell{SpanHeight: 1, SpanWidth: 1}
	}
	return t.rows[row][col]
}

func parseTable(decoder *xml.Decoder) (*slideTable, error) {
	tbl := &slideTable{}
	gridCols := 0
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return nil, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "gridCol":
				gridCols++
				depth++
			case "tr":
				tbl.rows = append(tbl.rows, nil)
				depth++
			case "tc":
				cell, err := parseTableCell(decoder, t)
				if err != nil {
					return nil, err
				}
				if n := len(tbl.rows); n > 0 {
					tbl.rows[n-1] = append(tbl.rows[n-1], cell)
				}
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}
	tbl.cols = gridCols
	for _, row := range tbl.rows {
		tbl.cols = max(tbl.cols, len(row))
	}
	return tbl, nil
}

// parseTableCell reads an a:tc element. Text fragments are the a:t values
// of its runs in order.
func parseTableCell(decoder *xml.Decoder, start xml.StartElement) (SourceCell, error) {
	cell := SourceCell{SpanHeight: 1, SpanWidth: 1}
	for _, attr := range start.Attr {
		switch attr.Name.Local {
		case "rowSpan":
			cell.SpanHeight = atoiDefault(attr.Value, 1)
		case "gridSpan":
			cell.SpanWidth = atoiDefault(attr.Value, 1)
		case "vMerge", "hMerge":
			if attr.Value == "1" || attr.Value == "true" {
				cell.Spanned = true
			}
		}
	}
	cell.MergeOrigin = !cell.Spanned && (cell.SpanHeight > 1 || cell.SpanWidth > 1)

	depth := 1
	inRun := false
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return cell, err
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case t.Name.Local == "r":
				inRun = true
				depth++
			case t.Name.Local == "t" && inRun:
				text, err := readElementText(decoder)
				if err != nil {
					return cell, err
				}
				cell.Fragments = append(cell.Fragments, text)
			default:
				depth++
			}
		case xml.EndElement:
			depth--
			if t.Name.Local == "r" {
				inRun = false
			}
		}
	}
	return cell, nil
}

// readElementText returns the character data of the current element and
// consumes it up to its end tag.
func readElementText(decoder *xml.Decoder) (string, error) {
	var sb strings.Builder
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return sb.String(), err
		}
		switch t := token.(type) {
		case xml.CharData:
			sb.Write(t)
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return sb.String(), nil
}

func atoiDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}
