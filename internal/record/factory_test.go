package record

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	memory, err := Open(ctx, Options{Driver: DriverMemory})
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if memory.Driver() != DriverMemory {
		t.Fatalf("driver = %s", memory.Driver())
	}

	fs, err := Open(ctx, Options{Driver: DriverFilesystem, FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("fs: %v", err)
	}
	if fs.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", fs.Driver())
	}

	sqlite, err := Open(ctx, Options{Driver: DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "state.db")})
	if err != nil {
		t.Fatalf("sqlite: %v", err)
	}
	if sqlite.Driver() != DriverSQLite {
		t.Fatalf("driver = %s", sqlite.Driver())
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	store, err := Open(context.Background(), Options{FSRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestOpenFromEnv(t *testing.T) {
	t.Setenv("READINGCORE_STORAGE_DRIVER", string(DriverMemory))
	store, err := OpenFromEnv(context.Background())
	if err != nil {
		t.Fatalf("open from env: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}
