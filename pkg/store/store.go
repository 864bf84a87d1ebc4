package store

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"

	"bitmark-hq/compiler/pkg/bitmark"
	"bitmark-hq/compiler/pkg/config"
)

// ErrNotFound is returned when no record matches a lookup.
var ErrNotFound = errors.New("record not found")

// Record is one stored compilation of a source file.
type Record struct {
	// ID is a random UUID assigned by Put when empty.
	ID string

	// Hash is the hex BLAKE3 digest of the source.
	Hash string

	// File is the path the source was compiled under.
	File string

	// CreatedAt is when the compilation finished, in UTC.
	CreatedAt time.Time

	// Bits is the number of compiled bits.
	Bits int

	// Dropped is the number of bits removed because of a fatal header.
	Dropped int

	// Warnings and Errors count the diagnostics of the compilation.
	Warnings int
	Errors   int

	// Document is the JSON encoding of the compiled document.
	Document []byte
}

// Query selects records for List. The zero Query selects every record.
type Query struct {
	// File keeps only records of this file.
	File string

	// Since keeps only records created at or after this time.
	Since time.Time

	// Limit caps the number of records returned. Zero means no limit.
	Limit int
}

// Store persists compile records. Implementations are safe for concurrent
// use. Listings are ordered newest first.
type Store interface {
	// Put stores a record, assigning ID and CreatedAt when they are empty.
	Put(ctx context.Context, rec *Record) error

	// Get returns the record with the given ID or ErrNotFound.
	Get(ctx context.Context, id string) (*Record, error)

	// Latest returns the newest record of file or ErrNotFound.
	Latest(ctx context.Context, file string) (*Record, error)

	// List returns the records matching q.
	List(ctx context.Context, q Query) ([]*Record, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int64, error)

	// DeleteBefore removes records created before cutoff.
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// DeleteOldest removes all but the keep newest records.
	DeleteOldest(ctx context.Context, keep int) (int64, error)

	// Ping reports whether the backend is usable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// StorageError wraps a backend failure with the operation that caused it.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("store error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// HashSource returns the hex BLAKE3 digest of src.
func HashSource(src []byte) string {
	sum := blake3.Sum256(src)
	return hex.EncodeToString(sum[:])
}

// NewRecord builds a record from a compilation of src.
func NewRecord(res *bitmark.Result, src []byte) (*Record, error) {
	doc, err := res.JSON(false)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return &Record{
		ID:        uuid.NewString(),
		Hash:      HashSource(src),
		File:      res.File,
		CreatedAt: time.Now().UTC(),
		Bits:      len(res.Document.Bits),
		Dropped:   res.Dropped(),
		Warnings:  len(res.Diagnostics.Warnings()),
		Errors:    len(res.Diagnostics.Errors()),
		Document:  doc,
	}, nil
}

// Open creates the store selected by cfg.Backend.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return NewSQLiteStore(cfg.SQLite)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

func prepare(rec *Record) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
}

func clone(rec *Record) *Record {
	c := *rec
	c.Document = append([]byte(nil), rec.Document...)
	return &c
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*instrumented)(nil)
)
