package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"readingcore/pkg/domain"
)

// stubDriver backs a database/sql handle with an in-memory key/payload map so
// the store can be exercised without a running server.
type stubDriver struct{ conn *stubConn }

func (d *stubDriver) Open(string) (driver.Conn, error) { return d.conn, nil }

type stubConn struct {
	mu    sync.Mutex
	rows  map[string][]byte
	execs []string
}

func (c *stubConn) Prepare(string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *stubConn) Close() error                        { return nil }
func (c *stubConn) Begin() (driver.Tx, error)           { return nil, driver.ErrSkip }

func (c *stubConn) ExecContext(_ context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.execs = append(c.execs, query)
	upper := strings.ToUpper(query)
	switch {
	case strings.HasPrefix(upper, "CREATE TABLE"):
	case strings.HasPrefix(upper, "INSERT"):
		key, _ := args[0].Value.(string)
		payload, _ := args[1].Value.([]byte)
		cp := make([]byte, len(payload))
		copy(cp, payload)
		c.rows[key] = cp
	case strings.HasPrefix(upper, "DELETE"):
		key, _ := args[0].Value.(string)
		delete(c.rows, key)
	default:
		return nil, fmt.Errorf("unexpected exec %q", query)
	}
	return driver.RowsAffected(1), nil
}

func (c *stubConn) QueryContext(_ context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if !strings.HasPrefix(strings.ToUpper(query), "SELECT") {
		return nil, fmt.Errorf("unexpected query %q", query)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	key, _ := args[0].Value.(string)
	payload, ok := c.rows[key]
	result := &stubRows{}
	if ok {
		cp := make([]byte, len(payload))
		copy(cp, payload)
		result.payload = cp
		result.has = true
	}
	return result, nil
}

type stubRows struct {
	payload []byte
	has     bool
	done    bool
}

func (r *stubRows) Columns() []string { return []string{"payload"} }
func (r *stubRows) Close() error      { return nil }

func (r *stubRows) Next(dest []driver.Value) error {
	if !r.has || r.done {
		return io.EOF
	}
	r.done = true
	dest[0] = r.payload
	return nil
}

func newStubStore(t *testing.T) (*Store, *stubConn) {
	t.Helper()
	conn := &stubConn{rows: make(map[string][]byte)}
	name := fmt.Sprintf("stubpg%d", time.Now().UnixNano())
	sql.Register(name, &stubDriver{conn: conn})
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		return sql.Open(name, "stub")
	})
	t.Cleanup(restore)

	store, err := New(context.Background(), "postgres://stub")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, conn
}

func TestNewAppliesSchema(t *testing.T) {
	_, conn := newStubStore(t)
	conn.mu.Lock()
	defer conn.mu.Unlock()
	var sawDDL bool
	for _, stmt := range conn.execs {
		if strings.Contains(strings.ToUpper(stmt), "CREATE TABLE") {
			sawDDL = true
			break
		}
	}
	if !sawDDL {
		t.Fatalf("expected DDL, got execs: %v", conn.execs)
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, _ := newStubStore(t)
	if store.Driver() != domain.RecordPostgres {
		t.Fatalf("driver = %s", store.Driver())
	}

	if _, ok, err := store.Load(ctx, "goals"); err != nil || ok {
		t.Fatalf("load absent: ok=%v err=%v", ok, err)
	}
	if err := store.Save(ctx, "goals", []byte(`[{"id":"g"}]`)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Save(ctx, "goals", []byte(`[]`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	payload, ok, err := store.Load(ctx, "goals")
	if err != nil || !ok {
		t.Fatalf("load: ok=%v err=%v", ok, err)
	}
	if string(payload) != `[]` {
		t.Fatalf("payload = %q", payload)
	}
	if err := store.Remove(ctx, "goals"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, _ := store.Load(ctx, "goals"); ok {
		t.Fatalf("still present after remove")
	}
}
