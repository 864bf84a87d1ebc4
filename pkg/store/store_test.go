package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"bitmark-hq/compiler/pkg/bitmark"
	"bitmark-hq/compiler/pkg/config"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewSQLiteStore(config.SQLiteConfig{
		Path:         filepath.Join(t.TempDir(), "db", "bitmark.db"),
		JournalMode:  "WAL",
		BusyTimeout:  time.Second,
		MaxOpenConns: 2,
	})
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func record(id, file string, age time.Duration) *Record {
	return &Record{
		ID:        id,
		Hash:      HashSource([]byte(id)),
		File:      file,
		CreatedAt: base.Add(-age),
		Bits:      2,
		Warnings:  1,
		Document:  []byte(`{"bits":[]}`),
	}
}

func seed(t *testing.T, s Store) {
	t.Helper()
	for _, rec := range []*Record{
		record("a", "one.bitmark", 3*time.Hour),
		record("b", "one.bitmark", 2*time.Hour),
		record("c", "two.bitmark", time.Hour),
		record("d", "one.bitmark", 0),
	} {
		if err := s.Put(context.Background(), rec); err != nil {
			t.Fatalf("Put(%s) error = %v", rec.ID, err)
		}
	}
}

func ids(recs []*Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func TestGetAndLatest(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, s)

			got, err := s.Get(ctx, "b")
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if diff := cmp.Diff(record("b", "one.bitmark", 2*time.Hour), got); diff != "" {
				t.Errorf("Get() mismatch (-want +got):\n%s", diff)
			}

			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
			}

			latest, err := s.Latest(ctx, "one.bitmark")
			if err != nil {
				t.Fatalf("Latest() error = %v", err)
			}
			if latest.ID != "d" {
				t.Errorf("Latest() = %s, want d", latest.ID)
			}
			if _, err := s.Latest(ctx, "three.bitmark"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Latest(three) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestList(t *testing.T) {
	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{name: "all", want: []string{"d", "c", "b", "a"}},
		{name: "file", query: Query{File: "one.bitmark"}, want: []string{"d", "b", "a"}},
		{name: "since", query: Query{Since: base.Add(-2 * time.Hour)}, want: []string{"d", "c", "b"}},
		{name: "limit", query: Query{Limit: 2}, want: []string{"d", "c"}},
		{name: "no match", query: Query{File: "none"}, want: []string{}},
	}

	for name, s := range backends(t) {
		seed(t, s)
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				got, err := s.List(context.Background(), tt.query)
				if err != nil {
					t.Fatalf("List() error = %v", err)
				}
				if diff := cmp.Diff(tt.want, ids(got)); diff != "" {
					t.Errorf("List() mismatch (-want +got):\n%s", diff)
				}
			})
		}
	}
}

func TestDelete(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, s)

			n, err := s.DeleteBefore(ctx, base.Add(-90*time.Minute))
			if err != nil || n != 2 {
				t.Fatalf("DeleteBefore() = %d, %v, want 2", n, err)
			}
			n, err = s.DeleteOldest(ctx, 1)
			if err != nil || n != 1 {
				t.Fatalf("DeleteOldest() = %d, %v, want 1", n, err)
			}
			n, err = s.DeleteOldest(ctx, 5)
			if err != nil || n != 0 {
				t.Fatalf("DeleteOldest(5) = %d, %v, want 0", n, err)
			}

			count, err := s.Count(ctx)
			if err != nil || count != 1 {
				t.Fatalf("Count() = %d, %v, want 1", count, err)
			}
			recs, _ := s.List(ctx, Query{})
			if diff := cmp.Diff([]string{"d"}, ids(recs)); diff != "" {
				t.Errorf("remaining mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPutAssignsIDAndTime(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			rec := &Record{File: "x.bitmark", Document: []byte(`{}`)}
			if err := s.Put(context.Background(), rec); err != nil {
				t.Fatalf("Put() error = %v", err)
			}
			if rec.ID == "" || rec.CreatedAt.IsZero() {
				t.Fatalf("Put() left ID %q CreatedAt %v", rec.ID, rec.CreatedAt)
			}
			got, err := s.Get(context.Background(), rec.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if !got.CreatedAt.Equal(rec.CreatedAt) {
				t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, rec.CreatedAt)
			}
			if err := s.Ping(context.Background()); err != nil {
				t.Errorf("Ping() error = %v", err)
			}
		})
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	s := NewMemoryStore()
	rec := record("a", "one.bitmark", 0)
	if err := s.Put(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	rec.Document[0] = 'X'

	got, _ := s.Get(context.Background(), "a")
	if string(got.Document) != `{"bits":[]}` {
		t.Errorf("stored document changed through caller's slice: %s", got.Document)
	}

	s.Close()
	var se *StorageError
	if err := s.Ping(context.Background()); !errors.As(err, &se) || se.Backend != "memory" {
		t.Errorf("Ping() after Close error = %v, want StorageError", err)
	}
}

func TestNewRecord(t *testing.T) {
	src := []byte("[.article]\nHello\n\n[.nope]\nx\n")
	res, err := bitmark.Compile(context.Background(), src)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	res.File = "hello.bitmark"

	rec, err := NewRecord(res, src)
	if err != nil {
		t.Fatalf("NewRecord() error = %v", err)
	}
	if rec.Hash != HashSource(src) || len(rec.Hash) != 64 {
		t.Errorf("Hash = %q", rec.Hash)
	}
	if rec.Bits != 1 || rec.Dropped != 1 || rec.Errors != 1 {
		t.Errorf("counts = bits %d dropped %d errors %d, want 1/1/1", rec.Bits, rec.Dropped, rec.Errors)
	}
	if rec.File != "hello.bitmark" || rec.ID == "" {
		t.Errorf("record = %+v", rec)
	}
	if HashSource([]byte("a")) == HashSource([]byte("b")) {
		t.Error("distinct sources hash equal")
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("Open(memory) error = %v", err)
	}
	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("Open(memory) = %T", s)
	}

	s, err = Open(config.StoreConfig{Backend: "sqlite", SQLite: config.SQLiteConfig{
		Path: filepath.Join(t.TempDir(), "open.db"),
	}})
	if err != nil {
		t.Fatalf("Open(sqlite) error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*SQLiteStore); !ok {
		t.Errorf("Open(sqlite) = %T", s)
	}

	if _, err := Open(config.StoreConfig{Backend: "redis"}); err == nil {
		t.Error("Open(redis) returned no error")
	}
}

type observation struct {
	op  string
	err bool
}

type fakeObserver struct {
	mu  sync.Mutex
	obs []observation
}

func (f *fakeObserver) ObserveStore(op string, _ time.Duration, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obs = append(f.obs, observation{op: op, err: err != nil})
}

func TestInstrument(t *testing.T) {
	obs := &fakeObserver{}
	s := Instrument(NewMemoryStore(), obs)
	ctx := context.Background()

	if err := s.Put(ctx, record("a", "one.bitmark", 0)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v", err)
	}
	if _, err := s.DeleteOldest(ctx, 0); err != nil {
		t.Fatal(err)
	}
	s.Close()
	if err := s.Ping(ctx); err == nil {
		t.Fatal("Ping() after Close returned no error")
	}

	want := []observation{
		{op: "put"},
		{op: "get"},
		{op: "delete_oldest"},
		{op: "ping", err: true},
	}
	if diff := cmp.Diff(want, obs.obs, cmp.AllowUnexported(observation{})); diff != "" {
		t.Errorf("observations mismatch (-want +got):\n%s", diff)
	}
}
