package record

import (
	"context"
	"fmt"
	"os"
	"strings"

	"readingcore/internal/infra/record/fs"
	"readingcore/internal/infra/record/memory"
	"readingcore/internal/infra/record/postgres"
	recs3 "readingcore/internal/infra/record/s3"
	"readingcore/internal/infra/record/sqlite"
)

// Options holds explicit construction parameters for Open. Zero values fall
// back to each driver's defaults.
type Options struct {
	Driver      Driver
	FSRoot      string
	SQLitePath  string
	PostgresDSN string
	S3          recs3.Config
}

// Open constructs the record store selected by opts.Driver. The environment
// decision is made once here; the engine itself never branches on the medium.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverFilesystem, "":
		return fs.New(opts.FSRoot)
	case DriverSQLite:
		return sqlite.New(opts.SQLitePath)
	case DriverPostgres:
		return postgres.New(ctx, opts.PostgresDSN)
	case DriverS3:
		return recs3.New(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unknown record driver %s", opts.Driver)
	}
}

// OpenFromEnv selects a record store using environment variables.
//
//	READINGCORE_STORAGE_DRIVER: memory|fs|sqlite|postgres|s3 (default fs)
//	READINGCORE_FS_ROOT: directory root when driver=fs (default ./readingdata)
//	READINGCORE_SQLITE_PATH: sqlite file when driver=sqlite (default readingcore.db)
//	READINGCORE_POSTGRES_DSN: postgres DSN when driver=postgres
//	READINGCORE_S3_BUCKET / _REGION / _ENDPOINT / _PREFIX / _PATH_STYLE: s3 driver
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY / AWS_SESSION_TOKEN (optional)
func OpenFromEnv(ctx context.Context) (Store, error) {
	return Open(ctx, Options{
		Driver:      Driver(os.Getenv("READINGCORE_STORAGE_DRIVER")),
		FSRoot:      os.Getenv("READINGCORE_FS_ROOT"),
		SQLitePath:  os.Getenv("READINGCORE_SQLITE_PATH"),
		PostgresDSN: os.Getenv("READINGCORE_POSTGRES_DSN"),
		S3: recs3.Config{
			Bucket:          os.Getenv("READINGCORE_S3_BUCKET"),
			Region:          os.Getenv("READINGCORE_S3_REGION"),
			Endpoint:        os.Getenv("READINGCORE_S3_ENDPOINT"),
			Prefix:          os.Getenv("READINGCORE_S3_PREFIX"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			PathStyle:       strings.EqualFold(os.Getenv("READINGCORE_S3_PATH_STYLE"), "true"),
		},
	})
}
