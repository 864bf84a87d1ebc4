package retention

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/goleak"

	"bitmark-hq/compiler/pkg/config"
	"bitmark-hq/compiler/pkg/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type pruneCall struct {
	removed int64
	failed  bool
}

type fakeObserver struct {
	calls []pruneCall
}

func (f *fakeObserver) ObservePrune(removed int64, err error) {
	f.calls = append(f.calls, pruneCall{removed: removed, failed: err != nil})
}

func seeded(t *testing.T, ages ...time.Duration) store.Store {
	t.Helper()
	s := store.NewMemoryStore()
	for i, age := range ages {
		rec := &store.Record{
			ID:        string(rune('a' + i)),
			File:      "lesson.bitmark",
			CreatedAt: now.Add(-age),
			Document:  []byte(`{}`),
		}
		if err := s.Put(context.Background(), rec); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func remaining(t *testing.T, s store.Store) []string {
	t.Helper()
	recs, err := s.List(context.Background(), store.Query{})
	if err != nil {
		t.Fatal(err)
	}
	out := []string{}
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestPrune(t *testing.T) {
	ages := []time.Duration{72 * time.Hour, 48 * time.Hour, 2 * time.Hour, time.Hour, 0}

	tests := []struct {
		name    string
		config  config.RetentionConfig
		deleted int64
		want    []string
	}{
		{name: "no limits", deleted: 0, want: []string{"e", "d", "c", "b", "a"}},
		{name: "max age", config: config.RetentionConfig{MaxAge: 24 * time.Hour}, deleted: 2, want: []string{"e", "d", "c"}},
		{name: "max records", config: config.RetentionConfig{MaxRecords: 2}, deleted: 3, want: []string{"e", "d"}},
		{
			name:    "both",
			config:  config.RetentionConfig{MaxAge: 50 * time.Hour, MaxRecords: 3},
			deleted: 2,
			want:    []string{"e", "d", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seeded(t, ages...)
			obs := &fakeObserver{}
			p := NewPruner(s, tt.config, obs)
			p.now = func() time.Time { return now }

			deleted, err := p.Prune(context.Background())
			if err != nil {
				t.Fatalf("Prune() error = %v", err)
			}
			if deleted != tt.deleted {
				t.Errorf("Prune() = %d, want %d", deleted, tt.deleted)
			}
			if diff := cmp.Diff(tt.want, remaining(t, s)); diff != "" {
				t.Errorf("remaining mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff([]pruneCall{{removed: tt.deleted}}, obs.calls, cmp.AllowUnexported(pruneCall{})); diff != "" {
				t.Errorf("observer mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type failingStore struct {
	store.Store
}

func (failingStore) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, errors.New("disk I/O error")
}

func TestPruneError(t *testing.T) {
	obs := &fakeObserver{}
	p := NewPruner(failingStore{store.NewMemoryStore()}, config.RetentionConfig{MaxAge: time.Hour}, obs)

	if _, err := p.Prune(context.Background()); err == nil {
		t.Fatal("Prune() returned no error")
	}
	if len(obs.calls) != 1 || !obs.calls[0].failed {
		t.Errorf("observer calls = %+v, want one failure", obs.calls)
	}
}

func TestSchedulerStartStop(t *testing.T) {
	p := NewPruner(store.NewMemoryStore(), config.RetentionConfig{MaxRecords: 10}, nil)
	s := NewScheduler(p, "0 3 * * *")

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if !s.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	next := s.NextRun()
	if next == nil || next.Hour() != 3 || next.Minute() != 0 {
		t.Errorf("NextRun() = %v, want 03:00", next)
	}

	s.Stop()
	s.Stop()
	if s.IsRunning() {
		t.Error("IsRunning() = true after Stop")
	}
}

func TestSchedulerContextCancel(t *testing.T) {
	p := NewPruner(store.NewMemoryStore(), config.RetentionConfig{}, nil)
	s := NewScheduler(p, "@hourly")

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for s.IsRunning() {
		if time.Now().After(deadline) {
			t.Fatal("scheduler still running after context cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestSchedulerInvalid(t *testing.T) {
	p := NewPruner(store.NewMemoryStore(), config.RetentionConfig{}, nil)

	if err := NewScheduler(p, "every tuesday").Start(context.Background()); err == nil {
		t.Error("Start() with an invalid schedule returned no error")
	}

	idle := NewScheduler(p, "")
	if err := idle.Start(context.Background()); err != nil {
		t.Fatalf("Start() with no schedule error = %v", err)
	}
	if idle.IsRunning() || idle.NextRun() != nil {
		t.Error("scheduler without a schedule is running")
	}
}
