package core

import (
	"context"
	"fmt"

	"readingcore/pkg/domain"
)

// Books

// ListBooks returns the books owned by ownerID in insertion order. An empty
// ownerID lists every book.
func (s *Store) ListBooks(ctx context.Context, ownerID string) ([]Book, error) {
	ctx, done := s.begin(ctx, "list_books")
	var out []Book
	err := s.view(ctx, func(st *engineState) {
		for _, b := range st.books {
			if ownerID == "" || b.OwnerID == ownerID {
				out = append(out, domain.CloneBook(b))
			}
		}
	})
	done(err)
	return out, err
}

// GetBook returns one book by id.
func (s *Store) GetBook(ctx context.Context, id string) (Book, error) {
	ctx, done := s.begin(ctx, "get_book")
	var out Book
	found := false
	err := s.view(ctx, func(st *engineState) {
		for _, b := range st.books {
			if b.ID == id {
				out = domain.CloneBook(b)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		err = &domain.NotFoundError{Collection: CollectionBooks, ID: id}
	}
	done(err)
	return out, err
}

// AddBook stores a new book owned by the signed-in account. The engine
// assigns the identifier and timestamps; values supplied by the caller are
// overwritten.
func (s *Store) AddBook(ctx context.Context, book Book) (Book, error) {
	ctx, done := s.begin(ctx, "add_book")
	var out Book
	err := s.mutate(ctx, func(tx *txn) error {
		if s.active == nil {
			return domain.ErrNotAuthenticated
		}
		book.ID = s.idFn()
		book.OwnerID = s.active.ID
		book.CreatedAt = tx.now
		book.UpdatedAt = tx.now
		s.state.books = append(s.state.books, book)
		out = domain.CloneBook(book)
		tx.record(CollectionBooks, ActionCreate, book.ID)
		return nil
	})
	done(err)
	return out, err
}

// UpdateBook applies mut to the stored book. Identity fields and the creation
// timestamp cannot be changed through the mutator.
func (s *Store) UpdateBook(ctx context.Context, id string, mut func(*Book)) (Book, error) {
	ctx, done := s.begin(ctx, "update_book")
	var out Book
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.books {
			if s.state.books[i].ID != id {
				continue
			}
			updated := domain.CloneBook(s.state.books[i])
			mut(&updated)
			updated.ID = s.state.books[i].ID
			updated.OwnerID = s.state.books[i].OwnerID
			updated.CreatedAt = s.state.books[i].CreatedAt
			updated.UpdatedAt = tx.now
			s.state.books[i] = updated
			out = domain.CloneBook(updated)
			tx.record(CollectionBooks, ActionUpdate, id)
			return nil
		}
		return &domain.NotFoundError{Collection: CollectionBooks, ID: id}
	})
	done(err)
	return out, err
}

// DeleteBook removes a book together with its reading records. Both removals
// commit as one mutation, so subscribers of either collection never observe a
// record pointing at a deleted book.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	ctx, done := s.begin(ctx, "delete_book")
	err := s.mutate(ctx, func(tx *txn) error {
		idx := -1
		for i := range s.state.books {
			if s.state.books[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return &domain.NotFoundError{Collection: CollectionBooks, ID: id}
		}
		s.state.books = append(s.state.books[:idx], s.state.books[idx+1:]...)
		tx.record(CollectionBooks, ActionDelete, id)

		kept := s.state.readingRecords[:0]
		for _, r := range s.state.readingRecords {
			if r.BookID == id {
				tx.record(CollectionReadingRecords, ActionDelete, r.ID)
				continue
			}
			kept = append(kept, r)
		}
		s.state.readingRecords = kept
		return nil
	})
	done(err)
	return err
}

// Reading records

// ListReadingRecords returns the reading records owned by ownerID.
func (s *Store) ListReadingRecords(ctx context.Context, ownerID string) ([]ReadingRecord, error) {
	ctx, done := s.begin(ctx, "list_reading_records")
	var out []ReadingRecord
	err := s.view(ctx, func(st *engineState) {
		for _, r := range st.readingRecords {
			if ownerID == "" || r.OwnerID == ownerID {
				out = append(out, domain.CloneReadingRecord(r))
			}
		}
	})
	done(err)
	return out, err
}

// ReadingRecordsByBook returns the reading records for one book.
func (s *Store) ReadingRecordsByBook(ctx context.Context, bookID string) ([]ReadingRecord, error) {
	ctx, done := s.begin(ctx, "reading_records_by_book")
	var out []ReadingRecord
	err := s.view(ctx, func(st *engineState) {
		for _, r := range st.readingRecords {
			if r.BookID == bookID {
				out = append(out, domain.CloneReadingRecord(r))
			}
		}
	})
	done(err)
	return out, err
}

// GetReadingRecord returns one reading record by id.
func (s *Store) GetReadingRecord(ctx context.Context, id string) (ReadingRecord, error) {
	ctx, done := s.begin(ctx, "get_reading_record")
	var out ReadingRecord
	found := false
	err := s.view(ctx, func(st *engineState) {
		for _, r := range st.readingRecords {
			if r.ID == id {
				out = domain.CloneReadingRecord(r)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		err = &domain.NotFoundError{Collection: CollectionReadingRecords, ID: id}
	}
	done(err)
	return out, err
}

// AddReadingRecord stores a new reading record. The referenced book must
// exist.
func (s *Store) AddReadingRecord(ctx context.Context, record ReadingRecord) (ReadingRecord, error) {
	ctx, done := s.begin(ctx, "add_reading_record")
	var out ReadingRecord
	err := s.mutate(ctx, func(tx *txn) error {
		if s.active == nil {
			return domain.ErrNotAuthenticated
		}
		exists := false
		for i := range s.state.books {
			if s.state.books[i].ID == record.BookID {
				exists = true
				break
			}
		}
		if !exists {
			return &domain.NotFoundError{Collection: CollectionBooks, ID: record.BookID}
		}
		record.ID = s.idFn()
		record.OwnerID = s.active.ID
		record.CreatedAt = tx.now
		record.UpdatedAt = tx.now
		s.state.readingRecords = append(s.state.readingRecords, record)
		out = domain.CloneReadingRecord(record)
		tx.record(CollectionReadingRecords, ActionCreate, record.ID)
		return nil
	})
	done(err)
	return out, err
}

// UpdateReadingRecord applies mut to the stored record.
func (s *Store) UpdateReadingRecord(ctx context.Context, id string, mut func(*ReadingRecord)) (ReadingRecord, error) {
	ctx, done := s.begin(ctx, "update_reading_record")
	var out ReadingRecord
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.readingRecords {
			if s.state.readingRecords[i].ID != id {
				continue
			}
			updated := domain.CloneReadingRecord(s.state.readingRecords[i])
			mut(&updated)
			updated.ID = s.state.readingRecords[i].ID
			updated.BookID = s.state.readingRecords[i].BookID
			updated.OwnerID = s.state.readingRecords[i].OwnerID
			updated.CreatedAt = s.state.readingRecords[i].CreatedAt
			updated.UpdatedAt = tx.now
			s.state.readingRecords[i] = updated
			out = domain.CloneReadingRecord(updated)
			tx.record(CollectionReadingRecords, ActionUpdate, id)
			return nil
		}
		return &domain.NotFoundError{Collection: CollectionReadingRecords, ID: id}
	})
	done(err)
	return out, err
}

// DeleteReadingRecord removes one reading record.
func (s *Store) DeleteReadingRecord(ctx context.Context, id string) error {
	ctx, done := s.begin(ctx, "delete_reading_record")
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.readingRecords {
			if s.state.readingRecords[i].ID == id {
				s.state.readingRecords = append(s.state.readingRecords[:i], s.state.readingRecords[i+1:]...)
				tx.record(CollectionReadingRecords, ActionDelete, id)
				return nil
			}
		}
		return &domain.NotFoundError{Collection: CollectionReadingRecords, ID: id}
	})
	done(err)
	return err
}

// Profiles

// ListProfiles returns every profile.
func (s *Store) ListProfiles(ctx context.Context) ([]Profile, error) {
	ctx, done := s.begin(ctx, "list_profiles")
	var out []Profile
	err := s.view(ctx, func(st *engineState) {
		out = cloneProfiles(st.profiles)
	})
	done(err)
	return out, err
}

// GetProfile returns one profile by id. Profiles share their account's id.
func (s *Store) GetProfile(ctx context.Context, id string) (Profile, error) {
	ctx, done := s.begin(ctx, "get_profile")
	var out Profile
	found := false
	err := s.view(ctx, func(st *engineState) {
		for _, p := range st.profiles {
			if p.ID == id {
				out = domain.CloneProfile(p)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		err = &domain.NotFoundError{Collection: CollectionProfiles, ID: id}
	}
	done(err)
	return out, err
}

// UpdateProfile applies mut to the stored profile.
func (s *Store) UpdateProfile(ctx context.Context, id string, mut func(*Profile)) (Profile, error) {
	ctx, done := s.begin(ctx, "update_profile")
	var out Profile
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.profiles {
			if s.state.profiles[i].ID != id {
				continue
			}
			updated := domain.CloneProfile(s.state.profiles[i])
			mut(&updated)
			updated.ID = s.state.profiles[i].ID
			updated.Email = s.state.profiles[i].Email
			updated.CreatedAt = s.state.profiles[i].CreatedAt
			updated.UpdatedAt = tx.now
			s.state.profiles[i] = updated
			out = domain.CloneProfile(updated)
			tx.record(CollectionProfiles, ActionUpdate, id)
			return nil
		}
		return &domain.NotFoundError{Collection: CollectionProfiles, ID: id}
	})
	done(err)
	return out, err
}

// Children

// ListChildren returns the children registered under ownerID.
func (s *Store) ListChildren(ctx context.Context, ownerID string) ([]Child, error) {
	ctx, done := s.begin(ctx, "list_children")
	var out []Child
	err := s.view(ctx, func(st *engineState) {
		for _, c := range st.children {
			if ownerID == "" || c.OwnerID == ownerID {
				out = append(out, domain.CloneChild(c))
			}
		}
	})
	done(err)
	return out, err
}

// GetChild returns one child by id.
func (s *Store) GetChild(ctx context.Context, id string) (Child, error) {
	ctx, done := s.begin(ctx, "get_child")
	var out Child
	found := false
	err := s.view(ctx, func(st *engineState) {
		for _, c := range st.children {
			if c.ID == id {
				out = domain.CloneChild(c)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		err = &domain.NotFoundError{Collection: CollectionChildren, ID: id}
	}
	done(err)
	return out, err
}

// AddChild registers a child under the signed-in account.
func (s *Store) AddChild(ctx context.Context, child Child) (Child, error) {
	ctx, done := s.begin(ctx, "add_child")
	var out Child
	err := s.mutate(ctx, func(tx *txn) error {
		if s.active == nil {
			return domain.ErrNotAuthenticated
		}
		child.ID = s.idFn()
		child.OwnerID = s.active.ID
		child.CreatedAt = tx.now
		child.UpdatedAt = tx.now
		s.state.children = append(s.state.children, child)
		out = domain.CloneChild(child)
		tx.record(CollectionChildren, ActionCreate, child.ID)
		return nil
	})
	done(err)
	return out, err
}

// UpdateChild applies mut to the stored child.
func (s *Store) UpdateChild(ctx context.Context, id string, mut func(*Child)) (Child, error) {
	ctx, done := s.begin(ctx, "update_child")
	var out Child
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.children {
			if s.state.children[i].ID != id {
				continue
			}
			updated := domain.CloneChild(s.state.children[i])
			mut(&updated)
			updated.ID = s.state.children[i].ID
			updated.OwnerID = s.state.children[i].OwnerID
			updated.CreatedAt = s.state.children[i].CreatedAt
			updated.UpdatedAt = tx.now
			s.state.children[i] = updated
			out = domain.CloneChild(updated)
			tx.record(CollectionChildren, ActionUpdate, id)
			return nil
		}
		return &domain.NotFoundError{Collection: CollectionChildren, ID: id}
	})
	done(err)
	return out, err
}

// DeleteChild removes one child.
func (s *Store) DeleteChild(ctx context.Context, id string) error {
	ctx, done := s.begin(ctx, "delete_child")
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.children {
			if s.state.children[i].ID == id {
				s.state.children = append(s.state.children[:i], s.state.children[i+1:]...)
				tx.record(CollectionChildren, ActionDelete, id)
				return nil
			}
		}
		return &domain.NotFoundError{Collection: CollectionChildren, ID: id}
	})
	done(err)
	return err
}

// Goals

// ListGoals returns the reading goals owned by ownerID.
func (s *Store) ListGoals(ctx context.Context, ownerID string) ([]ReadingGoal, error) {
	ctx, done := s.begin(ctx, "list_goals")
	var out []ReadingGoal
	err := s.view(ctx, func(st *engineState) {
		for _, g := range st.goals {
			if ownerID == "" || g.OwnerID == ownerID {
				out = append(out, domain.CloneReadingGoal(g))
			}
		}
	})
	done(err)
	return out, err
}

// GetGoal returns one reading goal by id.
func (s *Store) GetGoal(ctx context.Context, id string) (ReadingGoal, error) {
	ctx, done := s.begin(ctx, "get_goal")
	var out ReadingGoal
	found := false
	err := s.view(ctx, func(st *engineState) {
		for _, g := range st.goals {
			if g.ID == id {
				out = domain.CloneReadingGoal(g)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		err = &domain.NotFoundError{Collection: CollectionGoals, ID: id}
	}
	done(err)
	return out, err
}

// AddGoal stores a new reading goal for the signed-in account.
func (s *Store) AddGoal(ctx context.Context, goal ReadingGoal) (ReadingGoal, error) {
	ctx, done := s.begin(ctx, "add_goal")
	var out ReadingGoal
	err := s.mutate(ctx, func(tx *txn) error {
		if s.active == nil {
			return domain.ErrNotAuthenticated
		}
		if !goal.Period.Valid() {
			return fmt.Errorf("invalid goal period %q", goal.Period)
		}
		goal.ID = s.idFn()
		goal.OwnerID = s.active.ID
		goal.CreatedAt = tx.now
		goal.UpdatedAt = tx.now
		s.state.goals = append(s.state.goals, goal)
		out = domain.CloneReadingGoal(goal)
		tx.record(CollectionGoals, ActionCreate, goal.ID)
		return nil
	})
	done(err)
	return out, err
}

// UpdateGoal applies mut to the stored goal.
func (s *Store) UpdateGoal(ctx context.Context, id string, mut func(*ReadingGoal)) (ReadingGoal, error) {
	ctx, done := s.begin(ctx, "update_goal")
	var out ReadingGoal
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.goals {
			if s.state.goals[i].ID != id {
				continue
			}
			updated := domain.CloneReadingGoal(s.state.goals[i])
			mut(&updated)
			if !updated.Period.Valid() {
				return fmt.Errorf("invalid goal period %q", updated.Period)
			}
			updated.ID = s.state.goals[i].ID
			updated.OwnerID = s.state.goals[i].OwnerID
			updated.CreatedAt = s.state.goals[i].CreatedAt
			updated.UpdatedAt = tx.now
			s.state.goals[i] = updated
			out = domain.CloneReadingGoal(updated)
			tx.record(CollectionGoals, ActionUpdate, id)
			return nil
		}
		return &domain.NotFoundError{Collection: CollectionGoals, ID: id}
	})
	done(err)
	return out, err
}

// DeleteGoal removes one reading goal.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	ctx, done := s.begin(ctx, "delete_goal")
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.goals {
			if s.state.goals[i].ID == id {
				s.state.goals = append(s.state.goals[:i], s.state.goals[i+1:]...)
				tx.record(CollectionGoals, ActionDelete, id)
				return nil
			}
		}
		return &domain.NotFoundError{Collection: CollectionGoals, ID: id}
	})
	done(err)
	return err
}

// Accounts

// ListAccounts returns every account.
func (s *Store) ListAccounts(ctx context.Context) ([]Account, error) {
	ctx, done := s.begin(ctx, "list_accounts")
	var out []Account
	err := s.view(ctx, func(st *engineState) {
		out = cloneAccounts(st.accounts)
	})
	done(err)
	return out, err
}

// GetAccount returns one account by id.
func (s *Store) GetAccount(ctx context.Context, id string) (Account, error) {
	ctx, done := s.begin(ctx, "get_account")
	var out Account
	found := false
	err := s.view(ctx, func(st *engineState) {
		for _, a := range st.accounts {
			if a.ID == id {
				out = domain.CloneAccount(a)
				found = true
				return
			}
		}
	})
	if err == nil && !found {
		err = &domain.NotFoundError{Collection: CollectionAccounts, ID: id}
	}
	done(err)
	return out, err
}

// UpdateAccount applies mut to the stored account. When the signed-in account
// is the one updated, the session snapshot follows.
func (s *Store) UpdateAccount(ctx context.Context, id string, mut func(*Account)) (Account, error) {
	ctx, done := s.begin(ctx, "update_account")
	var out Account
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.accounts {
			if s.state.accounts[i].ID != id {
				continue
			}
			updated := domain.CloneAccount(s.state.accounts[i])
			mut(&updated)
			updated.ID = s.state.accounts[i].ID
			updated.Email = s.state.accounts[i].Email
			updated.CreatedAt = s.state.accounts[i].CreatedAt
			updated.UpdatedAt = tx.now
			s.state.accounts[i] = updated
			out = domain.CloneAccount(updated)
			tx.record(CollectionAccounts, ActionUpdate, id)
			if s.active != nil && s.active.ID == id {
				s.active = &updated
				tx.sessionChanged = true
			}
			return nil
		}
		return &domain.NotFoundError{Collection: CollectionAccounts, ID: id}
	})
	done(err)
	return out, err
}

// Subscribe registers fn for full-snapshot notifications of one collection.
// The current snapshot is delivered asynchronously right after registration,
// then once per mutation of the collection. The returned function removes the
// subscription; it is idempotent.
func (s *Store) Subscribe(ctx context.Context, collection Collection, fn SubscriberFunc) (func(), error) {
	ctx, done := s.begin(ctx, "subscribe")
	if !subscribable(collection) {
		err := fmt.Errorf("unknown collection %s", collection)
		done(err)
		return nil, err
	}
	if err := s.ensureReady(ctx); err != nil {
		done(err)
		return nil, err
	}
	sub := s.bus.register(collection, fn)
	s.mu.Lock()
	s.bus.enqueue(notice{collection: collection, payload: s.snapshotLocked(collection), only: sub})
	s.mu.Unlock()
	go s.bus.drain()
	done(nil)
	return func() { s.bus.unregister(sub) }, nil
}

func subscribable(collection Collection) bool {
	if collection == CollectionSession {
		return true
	}
	for _, c := range storedCollections {
		if c == collection {
			return true
		}
	}
	return false
}
