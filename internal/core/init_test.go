package core

import (
	"context"
	"sync"
	"testing"
	"time"

	"readingcore/internal/infra/record/memory"
	"readingcore/testutil"
)

func TestConcurrentInitializationRunsOnce(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.ListAccounts(ctx); err != nil {
				t.Errorf("list accounts: %v", err)
			}
		}()
	}
	wg.Wait()

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("accounts = %d, want exactly one default account", len(accounts))
	}
	if accounts[0].Email != DefaultAccountEmail || !accounts[0].Verified {
		t.Fatalf("unexpected default account: %+v", accounts[0])
	}
	profiles, err := s.ListProfiles(ctx)
	if err != nil {
		t.Fatalf("list profiles: %v", err)
	}
	if len(profiles) != 1 || profiles[0].ID != accounts[0].ID {
		t.Fatalf("profile should share the account id: %+v", profiles)
	}
}

func TestSeedDataset(t *testing.T) {
	ctx := context.Background()
	s := New(memory.New(),
		WithClock(testutil.NewClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)).Now),
		WithIDFunc(testutil.IDs()),
	)

	books, err := s.ListBooks(ctx, "")
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 3 {
		t.Fatalf("seeded books = %d, want 3", len(books))
	}
	records, err := s.ListReadingRecords(ctx, "")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("seeded records = %d, want 2", len(records))
	}
	for _, r := range records {
		if _, err := s.GetBook(ctx, r.BookID); err != nil {
			t.Fatalf("seeded record references missing book: %v", err)
		}
	}
}

func TestReloadFromRecordStore(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()

	first := New(durable, WithoutSeed())
	if _, err := first.SignIn(ctx, DefaultAccountEmail, DefaultAccountSecret); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	book, err := first.AddBook(ctx, Book{Title: "Swimmy", Author: "Leo Lionni"})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if _, err := first.AddReadingRecord(ctx, ReadingRecord{BookID: book.ID, ReadCount: 2}); err != nil {
		t.Fatalf("add record: %v", err)
	}

	second := New(durable, WithoutSeed())
	books, err := second.ListBooks(ctx, "")
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Swimmy" {
		t.Fatalf("reload lost books: %+v", books)
	}
	records, err := second.ListReadingRecords(ctx, "")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].BookID != book.ID {
		t.Fatalf("reload lost records: %+v", records)
	}
	if second.CurrentAccount() != nil {
		t.Fatalf("a reloaded store must start signed out")
	}
	accounts, err := second.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("reload duplicated the default account: %d", len(accounts))
	}
}

func TestCorruptPayloadDegradesToEmpty(t *testing.T) {
	ctx := context.Background()
	durable := memory.New()
	if err := durable.Save(ctx, string(CollectionBooks), []byte("{not json")); err != nil {
		t.Fatalf("save: %v", err)
	}

	s := New(durable, WithoutSeed())
	if err := s.Ready(ctx); err != nil {
		t.Fatalf("ready: %v", err)
	}
	books, err := s.ListBooks(ctx, "")
	if err != nil {
		t.Fatalf("list books: %v", err)
	}
	if len(books) != 0 {
		t.Fatalf("corrupt collection should load empty, got %+v", books)
	}
	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("other collections should still initialize: %d", len(accounts))
	}
}

func TestReadyIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	for i := 0; i < 3; i++ {
		if err := s.Ready(ctx); err != nil {
			t.Fatalf("ready: %v", err)
		}
	}
}
