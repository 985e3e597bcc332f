package acquire

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/dailybulletin/bulletin/pkg/bulletin/models"
)

// ErrWeekLocked indicates another run holds the week's lock.
var ErrWeekLocked = errors.New("week is locked by another run")

// WeekLock is an advisory lock file held for the duration of a weekly run.
type WeekLock struct {
	path string
}

// LockWeek creates the week's lock file. It fails with ErrWeekLocked when the
// file already exists and its holder process is still running; a lock left by
// a process that no longer exists is taken over.
func LockWeek(l Layout, week models.Date, runID string) (*WeekLock, error) {
	if err := os.MkdirAll(l.BuildDir, 0o755); err != nil {
		return nil, fmt.Errorf("acquire: mkdir: %w", err)
	}
	path := l.Lock(week)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, os.ErrExist) {
		holder, _ := os.ReadFile(path)
		if pid, ok := holderPID(string(holder)); !ok || processAlive(pid) {
			return nil, fmt.Errorf("%w: %s (%s)", ErrWeekLocked, path, strings.TrimSpace(string(holder)))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("acquire: remove stale lock: %w", err)
		}
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrWeekLocked, path)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("acquire: lock: %w", err)
	}
	_, werr := fmt.Fprintf(f, "pid=%d run_id=%s\n", os.Getpid(), runID)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return nil, fmt.Errorf("acquire: lock: %w", werr)
	}
	return &WeekLock{path: path}, nil
}

// holderPID parses the pid field of a lock file.
func holderPID(holder string) (int, bool) {
	for _, field := range strings.Fields(holder) {
		if v, ok := strings.CutPrefix(field, "pid="); ok {
			pid, err := strconv.Atoi(v)
			return pid, err == nil && pid > 0
		}
	}
	return 0, false
}

// Release removes the lock file.
func (l *WeekLock) Release() error {
	if err := os.Remove(l.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
