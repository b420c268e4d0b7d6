// Package record re-exports the durable record store abstractions for stable
// internal imports and provides the driver selection factory.
package record

import (
	"readingcore/pkg/domain"
)

type (
	// Driver identifies a record store backend.
	Driver = domain.RecordDriver
	// Store is the interface for durable record backends.
	Store = domain.RecordStore
)

const (
	// DriverMemory is the in-process driver.
	DriverMemory = domain.RecordMemory
	// DriverFilesystem is the local filesystem driver.
	DriverFilesystem = domain.RecordFilesystem
	// DriverSQLite is the embedded sqlite driver.
	DriverSQLite = domain.RecordSQLite
	// DriverPostgres is the PostgreSQL driver.
	DriverPostgres = domain.RecordPostgres
	// DriverS3 is the S3-compatible driver.
	DriverS3 = domain.RecordS3
)
