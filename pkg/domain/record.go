package domain

import "context"

// RecordDriver identifies a concrete durable record store implementation.
type RecordDriver string

// Supported durable record drivers.
const (
	// RecordMemory keeps blobs in process memory (tests / ephemeral runs).
	RecordMemory RecordDriver = "memory"
	// RecordFilesystem stores one file per key under a root directory.
	RecordFilesystem RecordDriver = "fs"
	// RecordSQLite stores blobs in a single-table embedded SQLite file.
	RecordSQLite RecordDriver = "sqlite"
	// RecordPostgres stores blobs in a PostgreSQL table.
	RecordPostgres RecordDriver = "postgres"
	// RecordS3 stores one object per key in an S3-compatible bucket.
	RecordS3 RecordDriver = "s3"
)

// RecordStore is a minimal abstraction over durable mediums. It is a passive
// mirror of the in-memory collections, written on every mutation and read
// once at startup; it is never the source of truth. Implementations report
// medium failures as errors, which the engine logs and degrades past rather
// than propagating.
type RecordStore interface {
	// Load returns the blob stored under key, or ok=false when absent.
	Load(ctx context.Context, key string) (payload []byte, ok bool, err error)
	// Save writes the blob under key, replacing any previous value.
	Save(ctx context.Context, key string, payload []byte) error
	// Remove deletes the blob under key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
	// Driver reports the backing medium.
	Driver() RecordDriver
}
