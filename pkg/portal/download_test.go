package portal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAwaitIgnoresPreexistingAndPartialFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "A.xlsx")

	w := NewWatcher(dir)
	w.Interval = 5 * time.Millisecond
	w.Timeout = time.Second

	before, err := w.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, dir, "B.crdownload")
	writeFile(t, dir, "C.xlsx")

	got, err := w.Await(context.Background(), before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "C.xlsx" {
		t.Fatalf("expected C.xlsx, got %s", got)
	}
}

func TestAwaitIgnoresUnrecognizedExtensions(t *testing.T) {
	dir := t.TempDir()

	w := NewWatcher(dir)
	w.Interval = 5 * time.Millisecond
	w.Timeout = 50 * time.Millisecond

	before, err := w.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "debug.html")

	if _, err := w.Await(context.Background(), before); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestAwaitTimesOutWhenNothingArrives(t *testing.T) {
	dir := t.TempDir()

	w := NewWatcher(dir)
	w.Interval = 5 * time.Millisecond
	w.Timeout = 30 * time.Millisecond

	before, err := w.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	if _, err := w.Await(context.Background(), before); !errors.Is(err, ErrWaitTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
}

func TestAwaitPicksUpLateArrival(t *testing.T) {
	dir := t.TempDir()

	w := NewWatcher(dir)
	w.Interval = 5 * time.Millisecond
	w.Timeout = time.Second

	before, err := w.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "report.xls"), []byte("x"), 0o644)
	}()

	got, err := w.Await(context.Background(), before)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filepath.Base(got) != "report.xls" {
		t.Fatalf("expected report.xls, got %s", got)
	}
}
