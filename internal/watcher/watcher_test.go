package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type recorder struct {
	mu    sync.Mutex
	paths []string
}

func (r *recorder) record(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, path)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func (r *recorder) waitFor(t *testing.T, n int, timeout time.Duration) []string {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if got := r.snapshot(); len(got) >= n {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d callbacks, got %v", n, r.snapshot())
	return nil
}

func TestWatcher_PicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(dir, []string{".txt"}, rec.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(path, []byte("fed minutes summary"), 0644); err != nil {
		t.Fatal(err)
	}

	got := rec.waitFor(t, 1, 3*time.Second)
	if got[0] != path {
		t.Errorf("got %q, want %q", got[0], path)
	}
}

func TestWatcher_IgnoresOtherExtensions(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	w := New(dir, []string{".txt"}, rec.record, WithDebounce(50*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "chart.png"), []byte{1, 2, 3}, 0644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(300 * time.Millisecond)
	if got := rec.snapshot(); len(got) != 0 {
		t.Errorf("unexpected callbacks: %v", got)
	}
}

func TestWatcher_SyncExisting(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "thesis.md")
	if err := os.WriteFile(keep, []byte("long thesis"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "data.bin"), []byte{0}, 0644); err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	w := New(dir, []string{".md"}, rec.record)
	w.SyncExisting()

	got := rec.snapshot()
	if len(got) != 1 || got[0] != keep {
		t.Errorf("got %v, want [%s]", got, keep)
	}
}

func TestWatcher_StartCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "notes")
	w := New(dir, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("directory not created: %v", err)
	}
}
