package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"bitmark-hq/compiler/pkg/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDebouncerCollapsesBursts(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	var last atomic.Int32
	for i := 1; i <= 5; i++ {
		d.Trigger("a.bitmark", func() {
			calls.Add(1)
			last.Store(int32(i))
		})
	}
	d.Trigger("b.bitmark", func() { calls.Add(1) })

	waitFor(t, func() bool { return calls.Load() == 2 })
	time.Sleep(40 * time.Millisecond)
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if last.Load() != 5 {
		t.Errorf("callback = %d, want the last one", last.Load())
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", d.Pending())
	}
}

func TestDebouncerStop(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var called atomic.Bool
	d.Trigger("a", func() { called.Store(true) })
	if d.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", d.Pending())
	}

	d.Stop()
	d.Stop()
	d.Trigger("b", func() { called.Store(true) })
	if d.Pending() != 0 || called.Load() {
		t.Error("callbacks survived Stop")
	}
}

func TestFiles(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{
		"b.bitmark",
		"a.BM",
		"notes.txt",
		".hidden.bitmark",
		"unit/one.bitmark",
		".git/skip.bitmark",
	} {
		writeFile(t, filepath.Join(root, name), "[.article]\n")
	}

	got, err := Files(root, config.DefaultWatchExtensions)
	if err != nil {
		t.Fatalf("Files() error = %v", err)
	}
	want := []string{
		filepath.Join(root, "a.BM"),
		filepath.Join(root, "b.bitmark"),
		filepath.Join(root, "unit", "one.bitmark"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Files() mismatch (-want +got):\n%s", diff)
	}

	single := filepath.Join(root, "notes.txt")
	got, err = Files(single, config.DefaultWatchExtensions)
	if err != nil || len(got) != 1 || got[0] != single {
		t.Errorf("Files(file) = %v, %v", got, err)
	}

	if _, err := Files(filepath.Join(root, "missing"), nil); !os.IsNotExist(err) {
		t.Errorf("Files(missing) error = %v, want not exist", err)
	}
}

type events struct {
	mu  sync.Mutex
	got []Event
}

func (e *events) add(_ context.Context, ev Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.got = append(e.got, ev)
}

func (e *events) snapshot() []Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Event(nil), e.got...)
}

func TestWatcher(t *testing.T) {
	root := t.TempDir()
	existing := filepath.Join(root, "lesson.bitmark")
	writeFile(t, existing, "[.article]\n")

	w, err := New(FromConfig(root, config.WatchConfig{
		Debounce:   30 * time.Millisecond,
		Extensions: []string{".bitmark"},
	}), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec := &events{}
	errCh := make(chan error, 1)
	go func() { errCh <- w.Watch(ctx, rec.add) }()

	select {
	case <-w.Ready():
	case err := <-errCh:
		t.Fatalf("Watch() error = %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher not ready")
	}
	if !w.Running() {
		t.Fatal("Running() = false")
	}

	for i := 0; i < 3; i++ {
		writeFile(t, existing, "[.article]\nedit\n")
	}
	writeFile(t, filepath.Join(root, "ignored.txt"), "x")
	waitFor(t, func() bool { return len(rec.snapshot()) == 1 })

	sub := filepath.Join(root, "unit")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	// Give the watcher time to register the new directory.
	time.Sleep(50 * time.Millisecond)
	nested := filepath.Join(sub, "nested.bitmark")
	writeFile(t, nested, "[.cloze]\n")
	waitFor(t, func() bool { return len(rec.snapshot()) == 2 })

	if err := os.Remove(existing); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return len(rec.snapshot()) == 3 })

	want := []Event{
		{Path: existing},
		{Path: nested},
		{Path: existing, Removed: true},
	}
	if diff := cmp.Diff(want, rec.snapshot()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}

	w.Stop()
	if err := <-errCh; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
	if w.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	w, err := New(Config{Root: filepath.Join(t.TempDir(), "missing")}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := w.Watch(context.Background(), func(context.Context, Event) {}); err == nil {
		t.Error("Watch() on a missing root returned no error")
	}
}

func TestStopUnstarted(t *testing.T) {
	w, err := New(Config{Root: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	w.Stop()
	w.Stop()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
