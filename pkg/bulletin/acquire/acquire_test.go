package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
	"github.com/dailybulletin/bulletin/pkg/bulletin/parser"
)

func week() models.Date {
	return models.NewDate(time.Date(2024, time.April, 8, 0, 0, 0, 0, time.UTC))
}

// countingFetcher writes a placeholder file and counts calls.
type countingFetcher struct {
	calls int
}

func (f *countingFetcher) Fetch(_ context.Context, kind Kind, _ models.Date, dest string) error {
	f.calls++
	return os.WriteFile(dest, []byte(kind), 0o644)
}

func TestLayoutDocument(t *testing.T) {
	l := Layout{BuildDir: "build", MenuExt: "xlsx"}
	tests := []struct {
		kind     Kind
		expected string
	}{
		{KindWeekAhead, "build/the_week_ahead-20240408.pptx"},
		{KindMenuPrimary, "build/menu-20240408-en.xlsx"},
		{KindMenuSecondary, "build/menu-20240408-zh.xlsx"},
		{KindSnacks, "build/snacks-20240408.pdf"},
	}

	for _, tt := range tests {
		result := l.Document(tt.kind, week())
		if result != filepath.FromSlash(tt.expected) {
			t.Errorf("Document(%s) = %q, expected %q", tt.kind, result, tt.expected)
		}
	}
}

func TestAcquireIsIdempotent(t *testing.T) {
	fetcher := &countingFetcher{}
	a := &Acquirer{Layout: Layout{BuildDir: t.TempDir()}, Fetcher: fetcher}
	ctx := context.Background()

	docs, err := a.Acquire(ctx, week())
	if err != nil {
		t.Fatalf("Acquire failed: %v", err)
	}
	if fetcher.calls != len(Kinds) {
		t.Errorf("Expected %d fetches on first run, got %d", len(Kinds), fetcher.calls)
	}
	if len(docs) != len(Kinds) {
		t.Errorf("Expected %d documents, got %d", len(Kinds), len(docs))
	}

	fetcher.calls = 0
	if _, err := a.Acquire(ctx, week()); err != nil {
		t.Fatalf("second Acquire failed: %v", err)
	}
	if fetcher.calls != 0 {
		t.Errorf("Expected zero fetches on second run, got %d", fetcher.calls)
	}
}

func TestAcquireUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		fetcher Fetcher
	}{
		{"no fetcher", nil},
		{"fetch error", FetcherFunc(func(context.Context, Kind, models.Date, string) error {
			return errors.New("share link expired")
		})},
		{"no file written", FetcherFunc(func(context.Context, Kind, models.Date, string) error {
			return nil
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Acquirer{Layout: Layout{BuildDir: t.TempDir()}, Fetcher: tt.fetcher}
			_, err := a.Acquire(context.Background(), week())
			if !errors.Is(err, parser.ErrDocumentUnavailable) {
				t.Fatalf("Expected ErrDocumentUnavailable, got %v", err)
			}
			var mde *parser.MalformedDocumentError
			if !errors.As(err, &mde) {
				t.Errorf("Expected MalformedDocumentError, got %T", err)
			}
		})
	}
}

func TestURLFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/snacks-20240408.pdf" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, "%PDF-1.4")
	}))
	defer srv.Close()

	f := NewURLFetcher(map[Kind]string{
		KindSnacks:    srv.URL + "/snacks-{date}.pdf",
		KindWeekAhead: srv.URL + "/missing.pptx",
	})
	dir := t.TempDir()

	dest := filepath.Join(dir, "snacks.pdf")
	if err := f.Fetch(context.Background(), KindSnacks, week(), dest); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "%PDF-1.4" {
		t.Errorf("Unexpected download %q (%v)", data, err)
	}

	if err := f.Fetch(context.Background(), KindWeekAhead, week(), filepath.Join(dir, "twa.pptx")); err == nil {
		t.Error("Expected error for 404")
	}
	if err := f.Fetch(context.Background(), KindMenuPrimary, week(), filepath.Join(dir, "menu.pptx")); err == nil {
		t.Error("Expected error for unconfigured kind")
	}
}

func TestLockWeek(t *testing.T) {
	l := Layout{BuildDir: t.TempDir()}

	lock, err := LockWeek(l, week(), "run-1")
	if err != nil {
		t.Fatalf("LockWeek failed: %v", err)
	}
	if _, err := LockWeek(l, week(), "run-2"); !errors.Is(err, ErrWeekLocked) {
		t.Fatalf("Expected ErrWeekLocked, got %v", err)
	}
	if _, err := LockWeek(l, week().AddDays(7), "run-3"); err != nil {
		t.Errorf("Expected other week to lock independently, got %v", err)
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("Release failed: %v", err)
	}
	relock, err := LockWeek(l, week(), "run-4")
	if err != nil {
		t.Fatalf("LockWeek after release failed: %v", err)
	}
	relock.Release()
}

func TestLockWeekStale(t *testing.T) {
	l := Layout{BuildDir: t.TempDir()}

	// A finished child process gives a pid that is no longer running.
	cmd := exec.Command(os.Args[0], "-test.run=^$")
	if err := cmd.Run(); err != nil {
		t.Fatalf("Failed to run child process: %v", err)
	}
	stale := fmt.Sprintf("pid=%d run_id=crashed\n", cmd.Process.Pid)
	if err := os.WriteFile(l.Lock(week()), []byte(stale), 0o644); err != nil {
		t.Fatalf("Failed to write lock: %v", err)
	}

	lock, err := LockWeek(l, week(), "run-1")
	if err != nil {
		t.Fatalf("Expected stale lock to be taken over, got %v", err)
	}
	defer lock.Release()
	holder, err := os.ReadFile(l.Lock(week()))
	if err != nil {
		t.Fatalf("Failed to read lock: %v", err)
	}
	if !strings.Contains(string(holder), "run_id=run-1") {
		t.Errorf("Expected lock to name the new run, got %q", holder)
	}

	// A lock naming a running process, or no pid at all, is respected.
	for _, content := range []string{fmt.Sprintf("pid=%d run_id=live", os.Getpid()), "garbage"} {
		other := week().AddDays(7)
		if err := os.WriteFile(l.Lock(other), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write lock: %v", err)
		}
		if _, err := LockWeek(l, other, "run-2"); !errors.Is(err, ErrWeekLocked) {
			t.Errorf("Expected ErrWeekLocked for %q, got %v", content, err)
		}
	}
}

func TestHolderPID(t *testing.T) {
	tests := []struct {
		input    string
		pid      int
		expected bool
	}{
		{"pid=42 run_id=abc\n", 42, true},
		{"run_id=abc pid=7", 7, true},
		{"pid=x run_id=abc", 0, false},
		{"pid=0", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		pid, ok := holderPID(tt.input)
		if ok != tt.expected || (ok && pid != tt.pid) {
			t.Errorf("holderPID(%q) = (%d, %v), expected (%d, %v)", tt.input, pid, ok, tt.pid, tt.expected)
		}
	}
}
