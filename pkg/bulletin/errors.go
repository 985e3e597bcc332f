package bulletin

import (
	"errors"
	"fmt"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
)

// ErrNoCycleDay indicates the cycle data has no entry for a date.
var ErrNoCycleDay = errors.New("no cycle day for date")

// StageError represents a weekly run that stopped in a pipeline stage.
type StageError struct {
	Week  models.Date
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("week %s failed in %s: %v", e.Week, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError creates a new StageError.
func NewStageError(week models.Date, stage Stage, err error) *StageError {
	return &StageError{
		Week:  week,
		Stage: stage,
		Err:   err,
	}
}

// escalationTarget reports whether err can be fixed by hand-editing a source
// document, and which documents to open.
func escalationTarget(err error, escalateAOD bool) ([]string, bool) {
	var shapeErr *parser.MealTableShapeError
	if errors.As(err, &shapeErr) {
		return shapeErr.Documents(), true
	}
	var structErr *parser.StructuralError
	if errors.As(err, &structErr) {
		switch structErr.Component {
		case parser.ComponentCommunityTime, parser.ComponentMenu:
			return []string{structErr.Document}, true
		case parser.ComponentAOD:
			return []string{structErr.Document}, escalateAOD
		}
	}
	return nil, false
}
