package acquire

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
	"go.uber.org/zap"
)

// Fetcher retrieves one source document into dest.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, week models.Date, dest string) error
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, kind Kind, week models.Date, dest string) error

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, kind Kind, week models.Date, dest string) error {
	return f(ctx, kind, week, dest)
}

// Documents maps each document kind to its local path.
type Documents map[Kind]string

// Acquirer ensures source documents exist locally.
type Acquirer struct {
	Layout  Layout
	Fetcher Fetcher
	Logger  *zap.Logger
}

// Acquire returns the paths of all documents for the week, fetching those
// missing from the build directory. A document still missing afterwards is
// reported as unavailable.
func (a *Acquirer) Acquire(ctx context.Context, week models.Date) (Documents, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(a.Layout.BuildDir, 0o755); err != nil {
		return nil, fmt.Errorf("acquire: mkdir: %w", err)
	}

	docs := make(Documents, len(Kinds))
	for _, kind := range Kinds {
		path := a.Layout.Document(kind, week)
		docs[kind] = path
		if fileExists(path) {
			logger.Info("document already present", zap.String("kind", string(kind)), zap.String("path", path))
			continue
		}
		if a.Fetcher == nil {
			return nil, parser.NewMalformedDocumentError(path, string(kind),
				fmt.Errorf("%w: no fetcher configured", parser.ErrDocumentUnavailable))
		}
		logger.Info("fetching document", zap.String("kind", string(kind)), zap.String("path", path))
		if err := a.Fetcher.Fetch(ctx, kind, week, path); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, parser.NewMalformedDocumentError(path, string(kind),
				fmt.Errorf("%w: %v", parser.ErrDocumentUnavailable, err))
		}
		if !fileExists(path) {
			return nil, parser.NewMalformedDocumentError(path, string(kind),
				fmt.Errorf("%w: fetch produced no file", parser.ErrDocumentUnavailable))
		}
	}
	return docs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
