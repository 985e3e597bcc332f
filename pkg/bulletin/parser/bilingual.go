package parser

import (
	"fmt"
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// ShapeNode is the structure of a nested table with all text removed.
type ShapeNode struct {
	Leaf     bool
	Children []ShapeNode
}

// String renders the skeleton, e.g. "[[[_,_],[_]]]".
func (n ShapeNode) String() string {
	if n.Leaf {
		return "_"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range n.Children {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.String())
	}
	sb.WriteByte(']')
	return sb.String()
}

// Skeleton returns the day/window/item shape of a meal table.
func Skeleton(t models.MealTable) ShapeNode {
	root := ShapeNode{Children: make([]ShapeNode, len(t.Days))}
	for d, day := range t.Days {
		dn := ShapeNode{Children: make([]ShapeNode, len(day.Windows))}
		for w, win := range day.Windows {
			wn := ShapeNode{Children: make([]ShapeNode, len(win.Items))}
			for i := range win.Items {
				wn.Children[i] = ShapeNode{Leaf: true}
			}
			dn.Children[w] = wn
		}
		root.Children[d] = dn
	}
	return root
}

var shapeLevels = []string{"day", "window", "item"}

// CompareShapes walks both skeletons in lockstep and returns the path and a
// description of the first divergence. ok is true when they are identical.
func CompareShapes(a, b ShapeNode) (path, detail string, ok bool) {
	return compareShapes(a, b, nil)
}

func compareShapes(a, b ShapeNode, path []string) (string, string, bool) {
	if a.Leaf != b.Leaf {
		return formatShapePath(path), "leaf and list at the same position", false
	}
	if a.Leaf {
		return "", "", true
	}
	level := "node"
	if len(path) < len(shapeLevels) {
		level = shapeLevels[len(path)]
	}
	if len(a.Children) != len(b.Children) {
		return formatShapePath(path), fmt.Sprintf("%d vs %d %s entries", len(a.Children), len(b.Children), level), false
	}
	for i := range a.Children {
		next := append(path[:len(path):len(path)], fmt.Sprintf("%s[%d]", level, i))
		if p, d, ok := compareShapes(a.Children[i], b.Children[i], next); !ok {
			return p, d, false
		}
	}
	return "", "", true
}

func formatShapePath(path []string) string {
	if len(path) == 0 {
		return "root"
	}
	return strings.Join(path, "/")
}

// MergeBilingual zips two single-language tables into one bilingual menu.
// Day and category labels come from the primary table.
func MergeBilingual(meal, primaryDoc, secondaryDoc string, primary, secondary models.MealTable) (models.MealMenu, error) {
	ps, ss := Skeleton(primary), Skeleton(secondary)
	if path, detail, ok := CompareShapes(ps, ss); !ok {
		return models.MealMenu{}, &MealTableShapeError{
			Meal:              meal,
			Primary:           primaryDoc,
			Secondary:         secondaryDoc,
			Path:              path,
			Detail:            detail,
			PrimarySkeleton:   ps,
			SecondarySkeleton: ss,
		}
	}

	menu := models.MealMenu{Days: make([]models.DayMenu, len(primary.Days))}
	for d, day := range primary.Days {
		dm := models.DayMenu{Day: day.Day, Categories: make([]models.CategoryItems, len(day.Windows))}
		for w, win := range day.Windows {
			other := secondary.Days[d].Windows[w].Items
			items := make([]models.BilingualItem, len(win.Items))
			for i, text := range win.Items {
				items[i] = models.BilingualItem{Primary: text, Secondary: other[i]}
			}
			dm.Categories[w] = models.CategoryItems{Category: win.Category, Items: items}
		}
		menu.Days[d] = dm
	}
	return menu, nil
}
