package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func collectFiles() (func(string), func() []string) {
	var mu sync.Mutex
	var files []string
	add := func(path string) {
		mu.Lock()
		files = append(files, path)
		mu.Unlock()
	}
	get := func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), files...)
	}
	return add, get
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(20 * time.Millisecond)
	}
	return cond()
}

func TestWatcherIngestsDroppedFile(t *testing.T) {
	dir := t.TempDir()
	onFile, got := collectFiles()

	w := NewWatcher([]string{dir}, []string{".txt"}, false, onFile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "dropped.txt")
	if err := os.WriteFile(path, []byte("dropped content"), 0600); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return len(got()) == 1 }) {
		t.Fatalf("dropped file not ingested, got %v", got())
	}
	if filepath.Base(got()[0]) != "dropped.txt" {
		t.Errorf("ingested %v", got())
	}
}

func TestWatcherExtensionFilter(t *testing.T) {
	dir := t.TempDir()
	onFile, got := collectFiles()

	w := NewWatcher([]string{dir}, []string{".txt", ".md"}, false, onFile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	if err := os.WriteFile(filepath.Join(dir, "skip.bin"), []byte{1, 2}, 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "keep.md"), []byte("kept"), 0600); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 3*time.Second, func() bool { return len(got()) >= 1 }) {
		t.Fatalf("matching file not ingested")
	}
	time.Sleep(600 * time.Millisecond)
	for _, p := range got() {
		if filepath.Ext(p) == ".bin" {
			t.Errorf("non-matching file ingested: %s", p)
		}
	}
}

func TestWatcherDebounceCollapsesWrites(t *testing.T) {
	dir := t.TempDir()
	onFile, got := collectFiles()

	w := NewWatcher([]string{dir}, []string{".txt"}, false, onFile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	path := filepath.Join(dir, "busy.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("write burst"), 0600); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if !waitFor(t, 3*time.Second, func() bool { return len(got()) >= 1 }) {
		t.Fatalf("file never ingested")
	}
	time.Sleep(600 * time.Millisecond)
	if n := len(got()); n != 1 {
		t.Errorf("ingest fired %d times, want 1", n)
	}
}

func TestWatcherSyncExisting(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("already here"), 0600); err != nil {
		t.Fatal(err)
	}
	onFile, got := collectFiles()

	w := NewWatcher([]string{dir}, []string{".txt"}, false, onFile)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatal(err)
	}
	defer w.Stop()

	w.SyncExisting()
	if len(got()) != 1 {
		t.Errorf("existing files = %v, want 1 entry", got())
	}
}

func TestWatcherCreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "not-yet")
	w := NewWatcher([]string{root}, nil, false, func(string) {})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	if _, err := os.Stat(root); err != nil {
		t.Errorf("root not created: %v", err)
	}
}
