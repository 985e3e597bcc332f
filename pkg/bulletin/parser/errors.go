package parser

import (
	"errors"
	"fmt"
)

// ErrDocumentUnavailable indicates a source document is missing or unreadable.
var ErrDocumentUnavailable = errors.New("document unavailable")

// ErrTableNotFound indicates the expected table is absent.
var ErrTableNotFound = errors.New("table not found")

// ErrPageNotFound indicates a slide, sheet or page index is out of range.
var ErrPageNotFound = errors.New("page not found")

// MalformedDocumentError is returned when a document cannot be read into the
// expected shape at all.
type MalformedDocumentError struct {
	Document  string
	Component string // "grid", "slides", "sheet", "pdf", "snacks"
	Err       error
}

func (e *MalformedDocumentError) Error() string {
	return fmt.Sprintf("malformed document %q (%s): %v", e.Document, e.Component, e.Err)
}

func (e *MalformedDocumentError) Unwrap() error {
	return e.Err
}

// NewMalformedDocumentError creates a new MalformedDocumentError.
func NewMalformedDocumentError(document, component string, err error) *MalformedDocumentError {
	return &MalformedDocumentError{
		Document:  document,
		Component: component,
		Err:       err,
	}
}

// MealTableShapeError reports that the two language versions of a meal table
// do not have the same nested shape.
type MealTableShapeError struct {
	Meal      string
	Primary   string // primary-language document
	Secondary string // secondary-language document
	// Path locates the first divergence, e.g. "day[2]/window[4]".
	Path              string
	Detail            string
	PrimarySkeleton   ShapeNode
	SecondarySkeleton ShapeNode
}

func (e *MealTableShapeError) Error() string {
	return fmt.Sprintf("%s table shape mismatch at %s: %s (primary %s, secondary %s)",
		e.Meal, e.Path, e.Detail, e.PrimarySkeleton, e.SecondarySkeleton)
}

// Documents returns the documents involved in the mismatch.
func (e *MealTableShapeError) Documents() []string {
	return []string{e.Primary, e.Secondary}
}

// StructuralKind classifies a StructuralError.
type StructuralKind string

const (
	KindColumnCount      StructuralKind = "column-count"
	KindRowCount         StructuralKind = "row-count"
	KindWindowCount      StructuralKind = "window-count"
	KindAODMissingMonday StructuralKind = "aod-missing-monday"
	KindAODIncomplete    StructuralKind = "aod-incomplete"
	KindSnackOddCount    StructuralKind = "snack-odd-count"
	KindSnackBuckets     StructuralKind = "snack-buckets"
)

// Components named in StructuralError.
const (
	ComponentMenu          = "menu"
	ComponentCommunityTime = "community_time"
	ComponentAOD           = "aod"
	ComponentSnacks        = "snacks"
)

// StructuralError reports a document that was read successfully but whose
// content violates an expected structure.
type StructuralError struct {
	Document  string
	Component string
	Kind      StructuralKind
	Detail    string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error in %q (%s, %s): %s", e.Document, e.Component, e.Kind, e.Detail)
}

func newStructuralError(document, component string, kind StructuralKind, format string, args ...any) *StructuralError {
	return &StructuralError{
		Document:  document,
		Component: component,
		Kind:      kind,
		Detail:    fmt.Sprintf(format, args...),
	}
}

// Warning is a non-fatal observation made while extracting.
type Warning struct {
	Component string
	Message   string
}

func (w Warning) String() string {
	return w.Component + ": " + w.Message
}
