package escalate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type stubSignal struct {
	calls int
	paths []string
	err   error
}

func (s *stubSignal) Wait(_ context.Context, paths []string) error {
	s.calls++
	s.paths = paths
	return s.err
}

func TestEditorEscalate(t *testing.T) {
	sig := &stubSignal{}
	e := &Editor{Signal: sig}

	err := e.Escalate(context.Background(), errors.New("shape mismatch"), "a.pptx", "b.pptx")
	if err != nil {
		t.Fatalf("Escalate failed: %v", err)
	}
	if sig.calls != 1 {
		t.Errorf("Expected 1 wait, got %d", sig.calls)
	}
	if len(sig.paths) != 2 || sig.paths[0] != "a.pptx" {
		t.Errorf("Unexpected paths %v", sig.paths)
	}
}

func TestEditorEscalateErrors(t *testing.T) {
	e := &Editor{}
	if err := e.Escalate(context.Background(), errors.New("x"), "a.pptx"); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted without signal, got %v", err)
	}

	e = &Editor{
		Command: []string{filepath.Join(t.TempDir(), "no-such-opener")},
		Signal:  &stubSignal{err: ErrAborted},
	}
	if err := e.Escalate(context.Background(), errors.New("x"), "a.pptx"); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected signal error to propagate, got %v", err)
	}
}

func TestReaderSignal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr error
	}{
		{"enter", "\n", nil},
		{"text line", "ok\n", nil},
		{"closed input", "", ErrAborted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			s := &ReaderSignal{In: strings.NewReader(tt.input), Out: &out}
			err := s.Wait(context.Background(), []string{"menu.pptx"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Wait() = %v, expected %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), "menu.pptx") {
				t.Errorf("Expected prompt to list document, got %q", out.String())
			}
		})
	}
}

func TestReaderSignalSuccessiveWaits(t *testing.T) {
	s := &ReaderSignal{In: strings.NewReader("first\nsecond\n")}
	for i := range 2 {
		if err := s.Wait(context.Background(), nil); err != nil {
			t.Fatalf("Wait %d failed: %v", i+1, err)
		}
	}
	if err := s.Wait(context.Background(), nil); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted once input is used up, got %v", err)
	}
}

func TestReaderSignalCancel(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := &ReaderSignal{In: r}
	if err := s.Wait(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestFileSignal(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "the_week_ahead-20240408.pptx")

	go func() {
		time.Sleep(50 * time.Millisecond)
		os.WriteFile(doc+DoneSuffix, nil, 0o644)
	}()

	s := &FileSignal{Timeout: 5 * time.Second}
	if err := s.Wait(context.Background(), []string{doc}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	if _, err := os.Stat(doc + DoneSuffix); !os.IsNotExist(err) {
		t.Errorf("Expected marker to be removed, stat err = %v", err)
	}
}

func TestFileSignalExistingMarker(t *testing.T) {
	dir := t.TempDir()
	doc := filepath.Join(dir, "menu-20240408-en.pptx")
	if err := os.WriteFile(doc+DoneSuffix, nil, 0o644); err != nil {
		t.Fatalf("Failed to write marker: %v", err)
	}

	s := &FileSignal{Timeout: time.Second}
	if err := s.Wait(context.Background(), []string{doc}); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
}

func TestFileSignalTimeout(t *testing.T) {
	doc := filepath.Join(t.TempDir(), "snacks.pdf")
	s := &FileSignal{Timeout: 50 * time.Millisecond}
	if err := s.Wait(context.Background(), []string{doc}); !errors.Is(err, ErrAborted) {
		t.Errorf("Expected ErrAborted on timeout, got %v", err)
	}
}
