package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// ErrSnackHeaderNotFound indicates the snack table header is absent from
// both candidate pages.
var ErrSnackHeaderNotFound = errors.New("snack header not found")

// TextRun is a piece of page text with the origin of its first glyph.
type TextRun struct {
	Text string
	X, Y float64
}

// PageSource yields positioned text runs per page (1-based).
type PageSource interface {
	PageCount() int
	PageRuns(page int) ([]TextRun, error)
}

// SnackBucket identifies a snack period.
type SnackBucket int

const (
	BucketUnassigned SnackBucket = iota - 1
	BucketMorning
	BucketAfternoon
	BucketEvening
)

// SnackParams holds parameters for snack extraction.
type SnackParams struct {
	// Page is the primary candidate page (1-based).
	Page int
	// Fallback tries Page+1 once when the header is missing from Page.
	Fallback bool
	// Header marks the snack table; runs below its baseline are read.
	Header string
	// Markers are the bucket headings, in SnackBucket order.
	Markers [3]string
	// RepairHead and RepairTail are the halves of the known split item.
	RepairHead string
	RepairTail string
}

// DefaultSnackParams returns the standard snack-table layout.
func DefaultSnackParams() SnackParams {
	return SnackParams{
		Page:       1,
		Fallback:   true,
		Header:     "students snack",
		Markers:    [3]string{"morning snack", "afternoon snack", "evening snack"},
		RepairHead: "Roasted Bread",
		RepairTail: "with Ham and Cheese",
	}
}

// HeaderBaseline returns the y-coordinate of the first run containing the
// header, ignoring case.
func HeaderBaseline(runs []TextRun, header string) (float64, bool) {
	for _, r := range runs {
		if containsFold(r.Text, header) {
			return r.Y, true
		}
	}
	return 0, false
}

// snackFold is the state carried across runs by ClassifySnackRuns.
type snackFold struct {
	bucket SnackBucket
	seen   [3]bool
	lists  [3][]string
}

func (s snackFold) step(r TextRun, baseline float64, markers [3]string) snackFold {
	if r.Y >= baseline {
		return s
	}
	for b, m := range markers {
		if containsFold(r.Text, m) {
			s.bucket = SnackBucket(b)
			s.seen[b] = true
			return s
		}
	}
	text := strings.TrimSpace(r.Text)
	if text == "" || s.bucket == BucketUnassigned {
		return s
	}
	s.lists[s.bucket] = append(s.lists[s.bucket], text)
	return s
}

// ClassifySnackRuns folds the runs below baseline into per-bucket item lists.
// Runs before the first bucket heading are dropped. seen reports which
// headings occurred.
func ClassifySnackRuns(runs []TextRun, baseline float64, markers [3]string) (lists [3][]string, seen [3]bool) {
	state := snackFold{bucket: BucketUnassigned}
	for _, r := range runs {
		state = state.step(r, baseline, markers)
	}
	return state.lists, state.seen
}

// RepairSplitItem joins head with the first later tail into one item. It is
// only applied to odd-length lists.
func RepairSplitItem(items []string, head, tail string) []string {
	if len(items)%2 == 0 || head == "" || tail == "" {
		return items
	}
	for i, it := range items {
		if it != head {
			continue
		}
		for j := i + 1; j < len(items); j++ {
			if items[j] != tail {
				continue
			}
			out := make([]string, 0, len(items)-1)
			out = append(out, items[:i]...)
			out = append(out, head+" "+tail)
			out = append(out, items[i+1:j]...)
			return append(out, items[j+1:]...)
		}
		break
	}
	return items
}

// PairBilingual pairs consecutive (primary, secondary) entries.
func PairBilingual(items []string) ([]models.BilingualItem, bool) {
	if len(items)%2 != 0 {
		return nil, false
	}
	out := make([]models.BilingualItem, 0, len(items)/2)
	for i := 0; i < len(items); i += 2 {
		out = append(out, models.BilingualItem{Primary: items[i], Secondary: items[i+1]})
	}
	return out, true
}

// ParseSnackRuns builds a SnackSet from the runs of a page whose header
// baseline is known.
func ParseSnackRuns(document string, runs []TextRun, baseline float64, p SnackParams) (models.SnackSet, error) {
	lists, seen := ClassifySnackRuns(runs, baseline, p.Markers)
	var paired [3][]models.BilingualItem
	for b := range lists {
		if !seen[b] {
			return models.SnackSet{}, newStructuralError(document, ComponentSnacks, KindSnackBuckets,
				"heading %q not found below the snack header", p.Markers[b])
		}
		items := RepairSplitItem(lists[b], p.RepairHead, p.RepairTail)
		pairs, ok := PairBilingual(items)
		if !ok {
			return models.SnackSet{}, newStructuralError(document, ComponentSnacks, KindSnackOddCount,
				"%q has %d entries after repair", p.Markers[b], len(items))
		}
		paired[b] = pairs
	}
	return models.SnackSet{
		Morning:   paired[BucketMorning],
		Afternoon: paired[BucketAfternoon],
		Evening:   paired[BucketEvening],
	}, nil
}

// ExtractSnacks reads the snack table from the primary page, or from the
// following page when the header is not on the primary one.
func ExtractSnacks(document string, src PageSource, p SnackParams) (models.SnackSet, error) {
	pages := []int{p.Page}
	if p.Fallback {
		pages = append(pages, p.Page+1)
	}
	for _, page := range pages {
		if page < 1 || page > src.PageCount() {
			continue
		}
		runs, err := src.PageRuns(page)
		if err != nil {
			return models.SnackSet{}, err
		}
		baseline, ok := HeaderBaseline(runs, p.Header)
		if !ok {
			continue
		}
		return ParseSnackRuns(document, runs, baseline, p)
	}
	return models.SnackSet{}, NewMalformedDocumentError(document, ComponentSnacks,
		fmt.Errorf("%w: %q on pages %v", ErrSnackHeaderNotFound, p.Header, pages))
}
