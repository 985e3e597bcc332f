// Package escalate hands a failing source document to a human and waits
// until they report it fixed.
package escalate

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"go.uber.org/zap"
)

// ErrAborted indicates the operator did not complete the fix.
var ErrAborted = errors.New("escalation aborted")

// Escalator performs one escalation for a set of documents.
type Escalator interface {
	Escalate(ctx context.Context, cause error, paths ...string) error
}

// Signal blocks until the operator reports the documents as edited.
type Signal interface {
	Wait(ctx context.Context, paths []string) error
}

// Editor opens each document with an external command and then waits on
// Signal.
type Editor struct {
	// Command is the opener and its leading arguments; the document path is
	// appended. Empty means the documents are not opened.
	Command []string
	Signal  Signal
	Logger  *zap.Logger
}

// Escalate implements Escalator.
func (e *Editor) Escalate(ctx context.Context, cause error, paths ...string) error {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if e.Signal == nil {
		return fmt.Errorf("%w: no completion signal configured", ErrAborted)
	}
	logger.Warn("manual correction required",
		zap.Error(cause),
		zap.Strings("documents", paths))

	if len(e.Command) > 0 {
		for _, p := range paths {
			args := append(append([]string{}, e.Command[1:]...), p)
			cmd := exec.CommandContext(ctx, e.Command[0], args...)
			if err := cmd.Start(); err != nil {
				logger.Warn("could not open document", zap.String("path", p), zap.Error(err))
				continue
			}
			// Openers usually detach; reap without blocking the wait.
			go cmd.Wait()
		}
	}

	if err := e.Signal.Wait(ctx, paths); err != nil {
		return err
	}
	logger.Info("operator reported documents fixed", zap.Strings("documents", paths))
	return nil
}
