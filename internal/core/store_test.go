package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"readingcore/internal/infra/record/memory"
	"readingcore/testutil"
	"readingcore/pkg/domain"
)

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithoutSeed(),
		WithClock(testutil.NewClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)).Now),
		WithIDFunc(testutil.IDs()),
	}
	return New(memory.New(), append(base, opts...)...)
}

func signIn(t *testing.T, s *Store) Account {
	t.Helper()
	account, err := s.SignIn(context.Background(), DefaultAccountEmail, DefaultAccountSecret)
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return account
}

func TestAddBookAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	account := signIn(t, s)

	book, err := s.AddBook(ctx, Book{
		Base:    Base{ID: "ignored", CreatedAt: time.Unix(1, 0)},
		Title:   "Swimmy",
		Author:  "Leo Lionni",
		OwnerID: "ignored",
	})
	if err != nil {
		t.Fatalf("add book: %v", err)
	}
	if book.ID == "" || book.ID == "ignored" {
		t.Fatalf("expected synthesized id, got %q", book.ID)
	}
	if book.OwnerID != account.ID {
		t.Fatalf("owner = %q, want %q", book.OwnerID, account.ID)
	}
	if book.CreatedAt.IsZero() || !book.CreatedAt.Equal(book.UpdatedAt) {
		t.Fatalf("timestamps not stamped: %+v", book.Base)
	}

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("get book: %v", err)
	}
	if got.Title != "Swimmy" {
		t.Fatalf("title = %q", got.Title)
	}
}

func TestAddBookRequiresSession(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := s.AddBook(ctx, Book{Title: "Swimmy"}); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestUpdateBookPreservesIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	signIn(t, s)

	book, err := s.AddBook(ctx, Book{Title: "Swimmy", Author: "Leo Lionni"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	updated, err := s.UpdateBook(ctx, book.ID, func(b *Book) {
		b.Title = "Frederick"
		b.ID = "tampered"
		b.OwnerID = "tampered"
		b.CreatedAt = time.Unix(0, 0)
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Frederick" {
		t.Fatalf("title = %q", updated.Title)
	}
	if updated.ID != book.ID || updated.OwnerID != book.OwnerID || !updated.CreatedAt.Equal(book.CreatedAt) {
		t.Fatalf("identity fields changed: %+v", updated)
	}
}

func TestUpdateBookNotFound(t *testing.T) {
	s := newTestStore(t)
	signIn(t, s)
	_, err := s.UpdateBook(context.Background(), "missing", func(b *Book) {})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) || nf.Collection != CollectionBooks || nf.ID != "missing" {
		t.Fatalf("unexpected not-found detail: %v", err)
	}
}

func TestDeleteBookCascadesReadingRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	signIn(t, s)

	keep, err := s.AddBook(ctx, Book{Title: "Frederick"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	doomed, err := s.AddBook(ctx, Book{Title: "Swimmy"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := s.AddReadingRecord(ctx, ReadingRecord{BookID: keep.ID, ReadCount: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.AddReadingRecord(ctx, ReadingRecord{BookID: doomed.ID, ReadCount: 1}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	if err := s.DeleteBook(ctx, doomed.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	records, err := s.ListReadingRecords(ctx, "")
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(records) != 1 || records[0].BookID != keep.ID {
		t.Fatalf("cascade failed, records = %+v", records)
	}
	if _, err := s.GetBook(ctx, doomed.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("book still present: %v", err)
	}
}

func TestAddReadingRecordRejectsUnknownBook(t *testing.T) {
	s := newTestStore(t)
	signIn(t, s)
	_, err := s.AddReadingRecord(context.Background(), ReadingRecord{BookID: "missing"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReadingRecordsByBook(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	signIn(t, s)

	a, _ := s.AddBook(ctx, Book{Title: "A"})
	b, _ := s.AddBook(ctx, Book{Title: "B"})
	for i := 0; i < 3; i++ {
		if _, err := s.AddReadingRecord(ctx, ReadingRecord{BookID: a.ID}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}
	if _, err := s.AddReadingRecord(ctx, ReadingRecord{BookID: b.ID}); err != nil {
		t.Fatalf("record: %v", err)
	}

	records, err := s.ReadingRecordsByBook(ctx, a.ID)
	if err != nil {
		t.Fatalf("by book: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
}

func TestListBooksFiltersByOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	signIn(t, s)
	if _, err := s.AddBook(ctx, Book{Title: "Mine"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	other, err := s.SignUp(ctx, "other@example.com", "secret")
	if err != nil {
		t.Fatalf("sign up: %v", err)
	}
	if _, err := s.AddBook(ctx, Book{Title: "Theirs"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	books, err := s.ListBooks(ctx, other.ID)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(books) != 1 || books[0].Title != "Theirs" {
		t.Fatalf("owner filter failed: %+v", books)
	}
	all, err := s.ListBooks(ctx, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("len = %d, want 2", len(all))
	}
}

func TestGoalPeriodValidation(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	signIn(t, s)

	if _, err := s.AddGoal(ctx, ReadingGoal{TargetBooks: 5, Period: "fortnightly", StartDate: time.Now()}); err == nil {
		t.Fatalf("expected invalid period error")
	}
	goal, err := s.AddGoal(ctx, ReadingGoal{TargetBooks: 5, Period: domain.GoalMonthly, StartDate: time.Now()})
	if err != nil {
		t.Fatalf("add goal: %v", err)
	}
	if _, err := s.UpdateGoal(ctx, goal.ID, func(g *ReadingGoal) { g.Period = "bogus" }); err == nil {
		t.Fatalf("expected invalid period error on update")
	}
}

func TestChildrenCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	account := signIn(t, s)

	birth := time.Date(2021, 6, 15, 0, 0, 0, 0, time.UTC)
	child, err := s.AddChild(ctx, Child{Name: "Hana", Birthdate: &birth})
	if err != nil {
		t.Fatalf("add child: %v", err)
	}
	if child.OwnerID != account.ID {
		t.Fatalf("owner = %q", child.OwnerID)
	}

	if _, err := s.UpdateChild(ctx, child.ID, func(c *Child) { c.Name = "Hanako" }); err != nil {
		t.Fatalf("update child: %v", err)
	}
	children, err := s.ListChildren(ctx, account.ID)
	if err != nil {
		t.Fatalf("list children: %v", err)
	}
	if len(children) != 1 || children[0].Name != "Hanako" {
		t.Fatalf("children = %+v", children)
	}

	if err := s.DeleteChild(ctx, child.ID); err != nil {
		t.Fatalf("delete child: %v", err)
	}
	if err := s.DeleteChild(ctx, child.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
}

func TestSnapshotsAreCopies(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	signIn(t, s)

	book, err := s.AddBook(ctx, Book{Title: "Swimmy"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	books, err := s.ListBooks(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	books[0].Title = "mutated"

	got, err := s.GetBook(ctx, book.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Swimmy" {
		t.Fatalf("caller mutation leaked into store: %q", got.Title)
	}
}
