// Package acquire places the source documents of a week at deterministic
// paths, fetching only those that are not already present.
package acquire

import (
	"fmt"
	"path/filepath"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// Kind identifies a source document.
type Kind string

const (
	KindWeekAhead     Kind = "the_week_ahead"
	KindMenuPrimary   Kind = "menu_primary"
	KindMenuSecondary Kind = "menu_secondary"
	KindSnacks        Kind = "snacks"
)

// Kinds lists every document a weekly run needs.
var Kinds = []Kind{KindWeekAhead, KindMenuPrimary, KindMenuSecondary, KindSnacks}

// Layout names files in the build directory.
type Layout struct {
	BuildDir string
	// MenuExt is the menu file extension without dot ("pptx" or "xlsx").
	MenuExt string
}

// Document returns the path of a source document for the week.
func (l Layout) Document(kind Kind, week models.Date) string {
	d := week.Compact()
	var name string
	switch kind {
	case KindWeekAhead:
		name = fmt.Sprintf("the_week_ahead-%s.pptx", d)
	case KindMenuPrimary:
		name = fmt.Sprintf("menu-%s-en.%s", d, l.menuExt())
	case KindMenuSecondary:
		name = fmt.Sprintf("menu-%s-zh.%s", d, l.menuExt())
	case KindSnacks:
		name = fmt.Sprintf("snacks-%s.pdf", d)
	default:
		name = fmt.Sprintf("%s-%s", kind, d)
	}
	return filepath.Join(l.BuildDir, name)
}

// Lock returns the path of the advisory lock for the week.
func (l Layout) Lock(week models.Date) string {
	return filepath.Join(l.BuildDir, ".week-"+week.Compact()+".lock")
}

func (l Layout) menuExt() string {
	if l.MenuExt == "" {
		return "pptx"
	}
	return l.MenuExt
}
