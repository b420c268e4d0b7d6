// Package domain defines the persistent entities, collection identifiers,
// change records, and error taxonomy shared by the readingcore engine.
package domain

import "time"

// Collection identifies a named set of records stored by the engine. The
// values double as durable storage keys, so they must stay stable.
type Collection string

// Collections managed by the engine, plus the reserved session channel.
const (
	// CollectionAccounts holds sign-up credentials and account metadata.
	CollectionAccounts Collection = "accounts"
	// CollectionBooks holds the picture books registered by families.
	CollectionBooks Collection = "books"
	// CollectionReadingRecords holds per-read log entries for books.
	CollectionReadingRecords Collection = "reading-records"
	// CollectionProfiles holds family profiles, one per account.
	CollectionProfiles Collection = "profiles"
	// CollectionChildren holds the children registered under an account.
	CollectionChildren Collection = "children"
	// CollectionGoals holds reading goals.
	CollectionGoals Collection = "goals"
	// CollectionSession is the reserved broadcast channel for session
	// changes. It is not a stored collection; observers receive the active
	// account reference (or nil after sign-out).
	CollectionSession Collection = "session"
)

// KeyCurrentAccount is the durable key holding the active account reference.
// It is written on every session change and absent while logged out.
const KeyCurrentAccount = "current-account"

// GoalPeriod enumerates the supported reading goal periods.
type GoalPeriod string

// Canonical goal periods.
const (
	GoalDaily   GoalPeriod = "daily"
	GoalWeekly  GoalPeriod = "weekly"
	GoalMonthly GoalPeriod = "monthly"
	GoalYearly  GoalPeriod = "yearly"
)

// Valid reports whether p is a recognised goal period.
func (p GoalPeriod) Valid() bool {
	switch p {
	case GoalDaily, GoalWeekly, GoalMonthly, GoalYearly:
		return true
	}
	return false
}

// Base contains common fields for all stored records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Account represents a sign-up identity. The secret is stored as entered;
// this is a deliberately simplified identity simulator, not a credential
// vault.
type Account struct {
	Base
	Email       string    `json:"email"`
	Secret      string    `json:"secret"`
	Verified    bool      `json:"emailVerified"`
	DisplayName string    `json:"displayName"`
	LastLoginAt time.Time `json:"lastLoginAt"`
}

// Profile is the family profile paired one-to-one with an account. The
// profile reuses the account identifier as its own.
type Profile struct {
	Base
	Email      string `json:"email"`
	FamilyName string `json:"familyName"`
}

// Book is a picture book registered under an owning account.
type Book struct {
	Base
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher,omitempty"`
	PublishedYear int    `json:"publishedYear,omitempty"`
	ISBN          string `json:"isbn,omitempty"`
	CoverImage    string `json:"coverImage,omitempty"`
	OwnerID       string `json:"ownerId"`
}

// ReadingRecord captures one read-aloud session of a book. BookID must
// reference an existing book at creation time; deleting the book cascades
// deletion of its records.
type ReadingRecord struct {
	Base
	BookID         string    `json:"bookId"`
	OwnerID        string    `json:"ownerId"`
	ReadDate       time.Time `json:"readDate"`
	ReadCount      int       `json:"readCount"`
	FavoriteRating int       `json:"favoriteRating"`
	ChildReaction  string    `json:"childReaction"`
	Notes          string    `json:"notes"`
}

// Child is a child registered under an owning account.
type Child struct {
	Base
	Name      string     `json:"name"`
	Birthdate *time.Time `json:"birthdate,omitempty"`
	OwnerID   string     `json:"ownerId"`
}

// ReadingGoal is a target book count over a period for an owning account.
type ReadingGoal struct {
	Base
	OwnerID     string     `json:"ownerId"`
	TargetBooks int        `json:"targetBooks"`
	Period      GoalPeriod `json:"period"`
	StartDate   time.Time  `json:"startDate"`
	EndDate     *time.Time `json:"endDate,omitempty"`
	Completed   bool       `json:"isCompleted"`
}

// CloneAccount returns a copy of a safe to hand to observers.
func CloneAccount(a Account) Account { return a }

// CloneProfile returns a copy of p.
func CloneProfile(p Profile) Profile { return p }

// CloneBook returns a copy of b.
func CloneBook(b Book) Book { return b }

// CloneReadingRecord returns a copy of r.
func CloneReadingRecord(r ReadingRecord) ReadingRecord { return r }

// CloneChild returns a copy of c with pointer fields duplicated.
func CloneChild(c Child) Child {
	cp := c
	if c.Birthdate != nil {
		d := *c.Birthdate
		cp.Birthdate = &d
	}
	return cp
}

// CloneReadingGoal returns a copy of g with pointer fields duplicated.
func CloneReadingGoal(g ReadingGoal) ReadingGoal {
	cp := g
	if g.EndDate != nil {
		d := *g.EndDate
		cp.EndDate = &d
	}
	return cp
}
