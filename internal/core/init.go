package core

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"readingcore/pkg/domain"
)

// ensureReady is the lazy initializer gate. The first caller transitions the
// store from uninitialized to initializing and performs the one-time load and
// seed; concurrent early callers wait on the same shared channel rather than
// starting a second initialization. The store always reaches ready, even when
// the load or seed step fails, so later callers are never stuck behind a
// wedged bootstrap.
func (s *Store) ensureReady(ctx context.Context) error {
	s.mu.Lock()
	switch s.phase {
	case phaseReady:
		s.mu.Unlock()
		return nil
	case phaseInitializing:
		done := s.initDone
		s.mu.Unlock()
		select {
		case <-done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	s.phase = phaseInitializing
	s.initDone = make(chan struct{})
	s.mu.Unlock()

	s.initialize(ctx)

	s.mu.Lock()
	s.phase = phaseReady
	close(s.initDone)
	s.mu.Unlock()
	return nil
}

// Ready forces initialization and reports whether it has completed. Useful
// for warming the store at application start.
func (s *Store) Ready(ctx context.Context) error {
	ctx, done := s.begin(ctx, "ready")
	err := s.ensureReady(ctx)
	done(err)
	return err
}

// initialize loads the six collections from the durable medium and seeds
// first-run content. It never fails: partial state is accepted and logged so
// the store can still serve the current session.
func (s *Store) initialize(ctx context.Context) {
	_, done := s.begin(ctx, "initialize")
	defer done(nil)

	var st engineState
	s.loadCollection(ctx, CollectionAccounts, &st.accounts)
	s.loadCollection(ctx, CollectionBooks, &st.books)
	s.loadCollection(ctx, CollectionReadingRecords, &st.readingRecords)
	s.loadCollection(ctx, CollectionProfiles, &st.profiles)
	s.loadCollection(ctx, CollectionChildren, &st.children)
	s.loadCollection(ctx, CollectionGoals, &st.goals)

	now := s.nowFn()
	var seeded []Collection

	if len(st.accounts) == 0 {
		account, profile := defaultAccount(s.idFn(), now)
		st.accounts = append(st.accounts, account)
		st.profiles = append(st.profiles, profile)
		seeded = append(seeded, CollectionAccounts, CollectionProfiles)
		s.logger.Debug("created default account", zap.String("email", account.Email))
	}

	if s.seed && (len(st.books) == 0 || len(st.readingRecords) == 0) {
		owner := st.accounts[0].ID
		books, records := demoDataset(s.idFn, now, owner)
		st.books = books
		st.readingRecords = records
		seeded = append(seeded, CollectionBooks, CollectionReadingRecords)
		s.logger.Debug("seeded demonstration dataset",
			zap.Int("books", len(books)),
			zap.Int("records", len(records)),
		)
	}

	s.mu.Lock()
	s.state = st
	var writes [][2][]byte
	for _, collection := range seeded {
		payload, err := s.encodeLocked(collection)
		if err != nil {
			s.logger.Warn("encode seeded collection failed",
				zap.String("collection", string(collection)),
				zap.Error(fmt.Errorf("%w: %v", domain.ErrInitializationFailed, err)),
			)
			continue
		}
		writes = append(writes, [2][]byte{[]byte(collection), payload})
	}
	s.persistMu.Lock()
	s.mu.Unlock()
	for _, w := range writes {
		s.save(ctx, string(w[0]), w[1])
	}
	s.persistMu.Unlock()
}

// loadCollection reads one collection blob. Medium failures and corrupt
// payloads degrade to an empty collection; durability is best-effort, never a
// hard dependency.
func (s *Store) loadCollection(ctx context.Context, collection Collection, into any) {
	payload, ok, err := s.durable.Load(ctx, string(collection))
	if err != nil {
		s.logger.Warn("durable load failed, starting empty",
			zap.String("collection", string(collection)),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)),
		)
		return
	}
	if !ok || len(payload) == 0 {
		return
	}
	if err := json.Unmarshal(payload, into); err != nil {
		s.logger.Warn("decode collection failed, starting empty",
			zap.String("collection", string(collection)),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrInitializationFailed, err)),
		)
	}
}
