package escalate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReaderSignal waits for a line on In, typically stdin.
type ReaderSignal struct {
	In     io.Reader
	Out    io.Writer
	Prompt string
}

// Wait implements Signal. EOF before a line is read aborts.
//
// In is read one byte at a time up to the newline, so successive calls on the
// same reader each consume exactly one line. When ctx ends first, Wait returns
// but its read stays blocked in the background and swallows the next line.
func (s *ReaderSignal) Wait(ctx context.Context, paths []string) error {
	if s.Out != nil {
		prompt := s.Prompt
		if prompt == "" {
			prompt = "Fix the documents above, save them, then press ENTER to retry."
		}
		for _, p := range paths {
			fmt.Fprintf(s.Out, "  %s\n", p)
		}
		fmt.Fprintln(s.Out, prompt)
	}

	done := make(chan error, 1)
	go func() {
		done <- readLine(s.In)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

func readLine(r io.Reader) error {
	var b [1]byte
	for {
		n, err := r.Read(b[:])
		if n == 1 && b[0] == '\n' {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: input closed", ErrAborted)
		}
		if err != nil {
			return err
		}
	}
}

// DoneSuffix is appended to a document path to form its completion marker.
const DoneSuffix = ".done"

// FileSignal waits for a "<document>.done" marker to appear next to every
// document, then removes the markers.
type FileSignal struct {
	// Timeout bounds the wait; zero waits until the context ends.
	Timeout time.Duration
}

// Wait implements Signal.
func (s *FileSignal) Wait(ctx context.Context, paths []string) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	pending := make(map[string]bool, len(paths))
	dirs := make(map[string]bool)
	for _, p := range paths {
		marker := filepath.Clean(p + DoneSuffix)
		pending[marker] = true
		dirs[filepath.Dir(marker)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("escalate: watch %s: %w", dir, err)
		}
	}

	// Markers created before the watch was registered.
	for marker := range pending {
		if _, err := os.Stat(marker); err == nil {
			delete(pending, marker)
		}
	}

	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: timed out waiting for completion markers", ErrAborted)
			}
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("%w: watcher closed", ErrAborted)
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				delete(pending, filepath.Clean(event.Name))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("%w: watcher closed", ErrAborted)
			}
			return fmt.Errorf("escalate: watch: %w", err)
		}
	}

	for _, p := range paths {
		os.Remove(p + DoneSuffix)
	}
	return nil
}
