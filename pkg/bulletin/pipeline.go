package bulletin

import (
	"context"
	"errors"
	"fmt"

	"github.com/dailybulletin/bulletin/pkg/bulletin/acquire"
	"github.com/dailybulletin/bulletin/pkg/bulletin/escalate"
	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
	"github.com/dailybulletin/bulletin/pkg/bulletin/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Stage is a state of the weekly run.
type Stage string

const (
	StageLock         Stage = "LOCK"
	StageAcquire      Stage = "ACQUIRE_DOCS"
	StageExtract      Stage = "EXTRACT"
	StageCheckpoint   Stage = "CHECKPOINT"
	StageEscalate     Stage = "ESCALATE"
	StageExtractRetry Stage = "EXTRACT_RETRY"
	StageAssemble     Stage = "ASSEMBLE"
	StagePersist      Stage = "PERSIST"
	StageDone         Stage = "DONE"
	StageFatal        Stage = "FATAL"
)

// DocumentSource places a week's documents on disk.
type DocumentSource interface {
	Acquire(ctx context.Context, week models.Date) (acquire.Documents, error)
}

// RecordStore persists weekly records and escalation checkpoints.
type RecordStore interface {
	HasWeek(ctx context.Context, start models.Date) (bool, error)
	RecordPath(start models.Date) string
	SaveWeek(ctx context.Context, rec *models.WeeklyScheduleRecord, opts store.SaveOptions) (string, error)
	SaveCheckpoint(ctx context.Context, cp store.Checkpoint) error
	LoadCheckpoint(ctx context.Context, week models.Date) (*store.Checkpoint, bool, error)
	ClearCheckpoint(ctx context.Context, week models.Date) error
}

// Result describes a finished weekly run.
type Result struct {
	RunID string
	Week  models.Date
	// Path is the weekly record file.
	Path      string
	Skipped   bool
	Resumed   bool
	Escalated bool
	Stages    []Stage
	Warnings  []parser.Warning
}

func (r *Result) enter(s Stage) {
	r.Stages = append(r.Stages, s)
}

// Pipeline runs the weekly extraction.
type Pipeline struct {
	Options   Options
	Layout    acquire.Layout
	Source    DocumentSource
	Extractor Extractor
	Escalator escalate.Escalator
	Store     RecordStore
	Logger    *zap.Logger
}

// NewPipeline wires the document-backed pipeline.
func NewPipeline(opts Options, st RecordStore, fetcher acquire.Fetcher, esc escalate.Escalator, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	layout := acquire.Layout{BuildDir: opts.BuildDir, MenuExt: opts.menuExt()}
	return &Pipeline{
		Options:   opts,
		Layout:    layout,
		Source:    &acquire.Acquirer{Layout: layout, Fetcher: fetcher, Logger: logger},
		Extractor: &DocumentExtractor{Options: opts, Logger: logger},
		Escalator: esc,
		Store:     st,
		Logger:    logger,
	}
}

// RunWeek produces the weekly record for the week starting on week.
//
// A structural failure that a human can fix in a source document is
// escalated once; the extraction is then retried exactly once. A checkpoint
// left by an interrupted escalation makes the next run resume at the retry.
func (p *Pipeline) RunWeek(ctx context.Context, week models.Date) (*Result, error) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	res := &Result{RunID: uuid.NewString(), Week: week}
	logger = logger.With(zap.String("run_id", res.RunID), zap.String("week", week.String()))
	fail := func(stage Stage, err error) (*Result, error) {
		res.enter(StageFatal)
		logger.Error("weekly run failed", zap.String("stage", string(stage)), zap.Error(err))
		return res, NewStageError(week, stage, err)
	}

	res.enter(StageLock)
	lock, err := acquire.LockWeek(p.Layout, week, res.RunID)
	if err != nil {
		return fail(StageLock, err)
	}
	defer lock.Release()

	if !p.Options.Force {
		exists, err := p.Store.HasWeek(ctx, week)
		if err != nil {
			return fail(StageLock, err)
		}
		if exists {
			res.Skipped = true
			res.Path = p.Store.RecordPath(week)
			res.enter(StageDone)
			logger.Info("weekly record already exists", zap.String("path", res.Path))
			return res, nil
		}
	}

	cp, resumed, err := p.Store.LoadCheckpoint(ctx, week)
	if err != nil {
		return fail(StageLock, err)
	}

	res.enter(StageAcquire)
	docs, err := p.Source.Acquire(ctx, week)
	if err != nil {
		return fail(StageAcquire, err)
	}

	var ex *Extraction
	if resumed {
		res.Resumed = true
		res.Escalated = true
		logger.Info("resuming after manual correction",
			zap.String("previous_run_id", cp.RunID),
			zap.String("reason", cp.Reason))
	} else {
		res.enter(StageExtract)
		var cause error
		ex, cause = p.Extractor.Extract(ctx, docs)
		if cause != nil {
			paths, ok := escalationTarget(cause, p.Options.EscalateAOD)
			if !ok {
				return fail(StageExtract, cause)
			}
			logger.Warn("extraction needs manual correction", zap.Error(cause), zap.Strings("documents", paths))

			res.enter(StageCheckpoint)
			if err := p.Store.SaveCheckpoint(ctx, store.Checkpoint{
				Week:      week,
				RunID:     res.RunID,
				Reason:    cause.Error(),
				Documents: paths,
				Attempt:   1,
			}); err != nil {
				return fail(StageCheckpoint, err)
			}

			res.enter(StageEscalate)
			res.Escalated = true
			if p.Escalator == nil {
				return fail(StageEscalate, fmt.Errorf("%w: no escalator configured", escalate.ErrAborted))
			}
			if err := p.Escalator.Escalate(ctx, cause, paths...); err != nil {
				// The checkpoint stays so a later run resumes at the retry.
				return fail(StageEscalate, err)
			}
		}
	}

	if ex == nil {
		res.enter(StageExtractRetry)
		ex, err = p.Extractor.Extract(ctx, docs)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				if cerr := p.Store.ClearCheckpoint(ctx, week); cerr != nil {
					logger.Warn("could not clear checkpoint", zap.Error(cerr))
				}
			}
			return fail(StageExtractRetry, err)
		}
	}
	res.Warnings = ex.Warnings

	res.enter(StageAssemble)
	rec := assemble(week, ex)

	res.enter(StagePersist)
	path, err := p.Store.SaveWeek(ctx, rec, store.SaveOptions{RunID: res.RunID, Replace: p.Options.Force})
	if err != nil {
		return fail(StagePersist, err)
	}
	res.Path = path
	if err := p.Store.ClearCheckpoint(ctx, week); err != nil {
		logger.Warn("could not clear checkpoint", zap.Error(err))
	}

	res.enter(StageDone)
	logger.Info("weekly record written",
		zap.String("path", path),
		zap.Bool("escalated", res.Escalated),
		zap.Int("warnings", len(res.Warnings)))
	return res, nil
}
