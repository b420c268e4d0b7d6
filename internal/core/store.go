// Package core implements the readingcore engine: six in-memory collections
// with per-collection CRUD, best-effort durability through an injected record
// store, full-snapshot change notification, race-safe lazy initialization,
// and a mock session layer over the accounts collection.
package core

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"readingcore/pkg/domain"
)

// engineState holds the authoritative copies of all collections. Slices keep
// insertion order, which is the order List reports.
type engineState struct {
	accounts       []Account
	books          []Book
	readingRecords []ReadingRecord
	profiles       []Profile
	children       []Child
	goals          []ReadingGoal
}

type initPhase int32

const (
	phaseUninitialized initPhase = iota
	phaseInitializing
	phaseReady
)

// Store is the engine. All exported operations are safe for concurrent use;
// each mutation runs to completion under the state lock so callers never
// observe a half-applied add, update, or delete.
type Store struct {
	mu       sync.Mutex // guards state, active, phase, initDone
	state    engineState
	active   *Account
	phase    initPhase
	initDone chan struct{}

	durable   RecordStore
	bus       *bus
	persistMu sync.Mutex // serializes durable writes; acquired while mu is held

	nowFn   func() time.Time
	idFn    func() string
	logger  *zap.Logger
	metrics MetricsRecorder
	tracer  Tracer
	seed    bool
}

// Option configures a Store at construction time.
type Option func(*Store)

// WithClock overrides the timestamp source. Test hook.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.nowFn = now }
}

// WithIDFunc overrides identifier synthesis. Test hook.
func WithIDFunc(id func() string) Option {
	return func(s *Store) { s.idFn = id }
}

// WithLogger sets the diagnostic logger. Logging never affects control flow.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsRecorder attaches an operation metrics recorder.
func WithMetricsRecorder(metrics MetricsRecorder) Option {
	return func(s *Store) {
		if metrics != nil {
			s.metrics = metrics
		}
	}
}

// WithTracer attaches an operation tracer.
func WithTracer(tracer Tracer) Option {
	return func(s *Store) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithoutSeed disables the first-run demonstration dataset. The default
// account is still created when the accounts collection is empty.
func WithoutSeed() Option {
	return func(s *Store) { s.seed = false }
}

// New constructs an engine over the given durable record store. The store is
// not loaded until the first operation; see ensureReady.
func New(durable RecordStore, opts ...Option) *Store {
	s := &Store{
		durable: durable,
		nowFn:   func() time.Time { return time.Now().UTC() },
		idFn:    uuid.NewString,
		logger:  zap.NewNop(),
		metrics: nopMetrics{},
		tracer:  nopTracer{},
		seed:    true,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.bus = newBus(s.logger)
	return s
}

// begin opens a trace span and returns the completion callback that records
// the operation outcome.
func (s *Store) begin(ctx context.Context, operation string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, operation)
	return ctx, func(err error) {
		span.End(err)
		s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	}
}

// snapshotLocked clones the named collection for broadcast. Caller holds mu.
func (s *Store) snapshotLocked(collection Collection) any {
	switch collection {
	case CollectionAccounts:
		return cloneAccounts(s.state.accounts)
	case CollectionBooks:
		return cloneBooks(s.state.books)
	case CollectionReadingRecords:
		return cloneReadingRecords(s.state.readingRecords)
	case CollectionProfiles:
		return cloneProfiles(s.state.profiles)
	case CollectionChildren:
		return cloneChildren(s.state.children)
	case CollectionGoals:
		return cloneReadingGoals(s.state.goals)
	case CollectionSession:
		return s.activeCloneLocked()
	}
	return nil
}

// encodeLocked marshals the named collection for the durable mirror. Caller
// holds mu.
func (s *Store) encodeLocked(collection Collection) ([]byte, error) {
	switch collection {
	case CollectionAccounts:
		return json.Marshal(s.state.accounts)
	case CollectionBooks:
		return json.Marshal(s.state.books)
	case CollectionReadingRecords:
		return json.Marshal(s.state.readingRecords)
	case CollectionProfiles:
		return json.Marshal(s.state.profiles)
	case CollectionChildren:
		return json.Marshal(s.state.children)
	case CollectionGoals:
		return json.Marshal(s.state.goals)
	}
	return nil, fmt.Errorf("unknown collection %s", collection)
}

func (s *Store) activeCloneLocked() *Account {
	if s.active == nil {
		return nil
	}
	a := domain.CloneAccount(*s.active)
	return &a
}

func cloneAccounts(in []Account) []Account {
	out := make([]Account, len(in))
	for i, a := range in {
		out[i] = domain.CloneAccount(a)
	}
	return out
}

func cloneBooks(in []Book) []Book {
	out := make([]Book, len(in))
	for i, b := range in {
		out[i] = domain.CloneBook(b)
	}
	return out
}

func cloneReadingRecords(in []ReadingRecord) []ReadingRecord {
	out := make([]ReadingRecord, len(in))
	for i, r := range in {
		out[i] = domain.CloneReadingRecord(r)
	}
	return out
}

func cloneProfiles(in []Profile) []Profile {
	out := make([]Profile, len(in))
	for i, p := range in {
		out[i] = domain.CloneProfile(p)
	}
	return out
}

func cloneChildren(in []Child) []Child {
	out := make([]Child, len(in))
	for i, c := range in {
		out[i] = domain.CloneChild(c)
	}
	return out
}

func cloneReadingGoals(in []ReadingGoal) []ReadingGoal {
	out := make([]ReadingGoal, len(in))
	for i, g := range in {
		out[i] = domain.CloneReadingGoal(g)
	}
	return out
}

// txn accumulates the changes one mutation applied so commit can derive the
// collections to persist and broadcast. Cascades surface as changes against
// multiple collections committed together.
type txn struct {
	now            time.Time
	changes        []Change
	sessionChanged bool
}

func (tx *txn) record(collection Collection, action Action, id string) {
	tx.changes = append(tx.changes, Change{Collection: collection, Action: action, ID: id})
}

// touched returns the mutated collections in first-touch order.
func (tx *txn) touched() []Collection {
	var out []Collection
	seen := make(map[Collection]bool, len(tx.changes))
	for _, ch := range tx.changes {
		if !seen[ch.Collection] {
			seen[ch.Collection] = true
			out = append(out, ch.Collection)
		}
	}
	return out
}

// mutate runs fn under the state lock, then persists and broadcasts every
// collection fn touched. The broadcast snapshots and durable payloads are
// captured before the lock is released and the persist lock is acquired
// before the state lock is dropped, so neither deliveries nor durable writes
// can reorder across concurrent mutations.
func (s *Store) mutate(ctx context.Context, fn func(tx *txn) error) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	tx := &txn{now: s.nowFn()}
	if err := fn(tx); err != nil {
		s.mu.Unlock()
		return err
	}

	touched := tx.touched()
	type pending struct {
		key     Collection
		payload []byte
	}
	var writes []pending
	for _, collection := range touched {
		s.bus.enqueue(notice{collection: collection, payload: s.snapshotLocked(collection)})
		payload, err := s.encodeLocked(collection)
		if err != nil {
			s.logger.Warn("encode collection failed", zap.String("collection", string(collection)), zap.Error(err))
			continue
		}
		writes = append(writes, pending{key: collection, payload: payload})
	}
	var sessionWrite *pending
	if tx.sessionChanged {
		s.bus.enqueue(notice{collection: CollectionSession, payload: s.activeCloneLocked()})
		if s.active != nil {
			payload, err := json.Marshal(s.active)
			if err == nil {
				sessionWrite = &pending{key: Collection(domain.KeyCurrentAccount), payload: payload}
			}
		} else {
			sessionWrite = &pending{key: Collection(domain.KeyCurrentAccount)}
		}
	}
	for _, ch := range tx.changes {
		s.logger.Debug("applied change",
			zap.String("collection", string(ch.Collection)),
			zap.String("action", string(ch.Action)),
			zap.String("id", ch.ID),
		)
	}

	s.persistMu.Lock()
	s.mu.Unlock()

	for _, w := range writes {
		s.save(ctx, string(w.key), w.payload)
	}
	if sessionWrite != nil {
		if sessionWrite.payload != nil {
			s.save(ctx, string(sessionWrite.key), sessionWrite.payload)
		} else {
			s.remove(ctx, string(sessionWrite.key))
		}
	}
	s.persistMu.Unlock()

	s.bus.drain()
	return nil
}

// save mirrors one collection to the durable medium. Failures degrade to
// in-memory operation for this call and are logged, never propagated.
func (s *Store) save(ctx context.Context, key string, payload []byte) {
	if err := s.durable.Save(ctx, key, payload); err != nil {
		s.logger.Warn("durable save failed, continuing in memory",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)),
		)
	}
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.durable.Remove(ctx, key); err != nil {
		s.logger.Warn("durable remove failed, continuing in memory",
			zap.String("key", key),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)),
		)
	}
}

// view runs fn under the state lock after initialization.
func (s *Store) view(ctx context.Context, fn func(st *engineState)) error {
	if err := s.ensureReady(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return nil
}

// Driver reports the durable medium backing the engine.
func (s *Store) Driver() domain.RecordDriver { return s.durable.Driver() }
