package portal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

var (
	// Extensions the portal's export is known to produce.
	finalExtensions = []string{".xlsx", ".xls", ".csv"}

	// In-progress markers written by the browser while a download is
	// still streaming.
	partialSuffixes = []string{".crdownload", ".part", ".tmp", ".download"}
)

// Watcher detects a freshly completed download in a directory by diffing
// against a snapshot taken before the export was triggered.
type Watcher struct {
	Dir      string
	Interval time.Duration
	Timeout  time.Duration
}

func NewWatcher(dir string) *Watcher {
	return &Watcher{Dir: dir, Interval: time.Second, Timeout: 45 * time.Second}
}

// Snapshot lists the directory's current file names. Taken immediately
// before triggering an export so a stale or concurrently produced file is
// never attributed to the current export.
func (w *Watcher) Snapshot() (map[string]struct{}, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot of %s: %w", w.Dir, err)
	}
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		names[e.Name()] = struct{}{}
	}
	return names, nil
}

// Await polls until a new, fully written export file shows up and returns
// its path. Files already present in before, partial-download markers and
// unrecognized extensions are ignored.
func (w *Watcher) Await(ctx context.Context, before map[string]struct{}) (string, error) {
	var found string

	err := PollUntil(ctx, w.Interval, w.Timeout, func(context.Context) (bool, error) {
		entries, err := os.ReadDir(w.Dir)
		if err != nil {
			return false, err
		}
		for _, e := range entries {
			name := e.Name()
			if _, existed := before[name]; existed {
				continue
			}
			if isPartial(name) || !isFinal(name) {
				continue
			}
			found = filepath.Join(w.Dir, name)
			return true, nil
		}
		return false, nil
	})

	if err != nil {
		return "", fmt.Errorf("no export file appeared in %s: %w", w.Dir, err)
	}
	return found, nil
}

func isPartial(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range partialSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func isFinal(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range finalExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
