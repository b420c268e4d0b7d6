package core

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"readingcore/pkg/domain"
)

// SignUp creates an account with a companion profile and signs it in. The
// display and family names default to the local part of the email address.
func (s *Store) SignUp(ctx context.Context, email, secret string) (Account, error) {
	ctx, done := s.begin(ctx, "sign_up")
	var out Account
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.accounts {
			if s.state.accounts[i].Email == email {
				return domain.ErrEmailAlreadyInUse
			}
		}
		name := email
		if at := strings.IndexByte(email, '@'); at > 0 {
			name = email[:at]
		}
		id := s.idFn()
		account := Account{
			Base:        Base{ID: id, CreatedAt: tx.now, UpdatedAt: tx.now},
			Email:       email,
			Secret:      secret,
			DisplayName: name,
			LastLoginAt: tx.now,
		}
		profile := Profile{
			Base:       Base{ID: id, CreatedAt: tx.now, UpdatedAt: tx.now},
			Email:      email,
			FamilyName: name,
		}
		s.state.accounts = append(s.state.accounts, account)
		s.state.profiles = append(s.state.profiles, profile)
		active := domain.CloneAccount(account)
		s.active = &active
		out = domain.CloneAccount(account)
		tx.record(CollectionAccounts, ActionCreate, id)
		tx.record(CollectionProfiles, ActionCreate, id)
		tx.sessionChanged = true
		return nil
	})
	done(err)
	return out, err
}

// SignIn matches email and secret against the accounts collection and marks
// the matching account as the active session. A failed attempt leaves the
// current session untouched.
func (s *Store) SignIn(ctx context.Context, email, secret string) (Account, error) {
	ctx, done := s.begin(ctx, "sign_in")
	var out Account
	err := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.accounts {
			if s.state.accounts[i].Email != email || s.state.accounts[i].Secret != secret {
				continue
			}
			s.state.accounts[i].LastLoginAt = tx.now
			s.state.accounts[i].UpdatedAt = tx.now
			active := domain.CloneAccount(s.state.accounts[i])
			s.active = &active
			out = domain.CloneAccount(s.state.accounts[i])
			tx.record(CollectionAccounts, ActionUpdate, s.state.accounts[i].ID)
			tx.sessionChanged = true
			return nil
		}
		return domain.ErrInvalidCredentials
	})
	done(err)
	return out, err
}

// SignOut clears the active session. Signing out while signed out is a
// no-op.
func (s *Store) SignOut(ctx context.Context) error {
	ctx, done := s.begin(ctx, "sign_out")
	err := s.mutate(ctx, func(tx *txn) error {
		if s.active == nil {
			return nil
		}
		s.active = nil
		tx.sessionChanged = true
		return nil
	})
	done(err)
	return err
}

// CurrentAccount returns the signed-in account, or nil when signed out. It
// never triggers initialization: before the first operation the session is
// always reported as signed out.
func (s *Store) CurrentAccount() *Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != phaseReady {
		return nil
	}
	return s.activeCloneLocked()
}

// ObserveSession subscribes fn to session changes. fn receives the signed-in
// account or nil, starting with the current state.
func (s *Store) ObserveSession(ctx context.Context, fn func(*Account)) (func(), error) {
	return s.Subscribe(ctx, CollectionSession, func(snapshot any) {
		account, _ := snapshot.(*Account)
		fn(account)
	})
}

// RestoreSession signs back in as the account persisted by the last session
// change, if any. Restoration is explicit: a new store always starts signed
// out until asked to restore.
func (s *Store) RestoreSession(ctx context.Context) (*Account, error) {
	ctx, done := s.begin(ctx, "restore_session")
	if err := s.ensureReady(ctx); err != nil {
		done(err)
		return nil, err
	}
	payload, ok, err := s.durable.Load(ctx, domain.KeyCurrentAccount)
	if err != nil {
		s.logger.Warn("durable load failed, session not restored",
			zap.String("key", domain.KeyCurrentAccount),
			zap.Error(fmt.Errorf("%w: %v", domain.ErrStorageUnavailable, err)),
		)
		done(nil)
		return nil, nil
	}
	if !ok || len(payload) == 0 {
		done(nil)
		return nil, nil
	}
	var saved Account
	if err := json.Unmarshal(payload, &saved); err != nil {
		done(nil)
		return nil, nil
	}

	var restored *Account
	mErr := s.mutate(ctx, func(tx *txn) error {
		for i := range s.state.accounts {
			if s.state.accounts[i].ID != saved.ID {
				continue
			}
			active := domain.CloneAccount(s.state.accounts[i])
			s.active = &active
			clone := domain.CloneAccount(active)
			restored = &clone
			tx.sessionChanged = true
			return nil
		}
		return nil
	})
	done(mErr)
	return restored, mErr
}
