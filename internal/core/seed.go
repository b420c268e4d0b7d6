package core

import (
	"time"

	"readingcore/pkg/domain"
)

// First-run credentials so the store is usable immediately after a fresh
// install.
const (
	DefaultAccountEmail  = "demo@example.com"
	DefaultAccountSecret = "password123"
	DefaultDisplayName   = "Demo Family"
)

func defaultAccount(id string, now time.Time) (domain.Account, domain.Profile) {
	account := domain.Account{
		Base:        domain.Base{ID: id, CreatedAt: now, UpdatedAt: now},
		Email:       DefaultAccountEmail,
		Secret:      DefaultAccountSecret,
		Verified:    true,
		DisplayName: DefaultDisplayName,
		LastLoginAt: now,
	}
	profile := domain.Profile{
		Base:       domain.Base{ID: id, CreatedAt: now, UpdatedAt: now},
		Email:      DefaultAccountEmail,
		FamilyName: DefaultDisplayName,
	}
	return account, profile
}

// demoDataset builds a small library with a couple of reading records so a
// fresh install has something to show.
func demoDataset(idFn func() string, now time.Time, owner string) ([]domain.Book, []domain.ReadingRecord) {
	books := []domain.Book{
		{
			Base:          domain.Base{ID: idFn(), CreatedAt: now, UpdatedAt: now},
			Title:         "The Very Hungry Caterpillar",
			Author:        "Eric Carle",
			Publisher:     "World Publishing Company",
			PublishedYear: 1969,
			ISBN:          "9780399226908",
			OwnerID:       owner,
		},
		{
			Base:          domain.Base{ID: idFn(), CreatedAt: now, UpdatedAt: now},
			Title:         "Goodnight Moon",
			Author:        "Margaret Wise Brown",
			Publisher:     "Harper & Brothers",
			PublishedYear: 1947,
			ISBN:          "9780064430173",
			OwnerID:       owner,
		},
		{
			Base:          domain.Base{ID: idFn(), CreatedAt: now, UpdatedAt: now},
			Title:         "Where the Wild Things Are",
			Author:        "Maurice Sendak",
			Publisher:     "Harper & Row",
			PublishedYear: 1963,
			ISBN:          "9780060254926",
			OwnerID:       owner,
		},
	}
	records := []domain.ReadingRecord{
		{
			Base:           domain.Base{ID: idFn(), CreatedAt: now, UpdatedAt: now},
			BookID:         books[0].ID,
			OwnerID:        owner,
			ReadDate:       now.AddDate(0, 0, -3),
			ReadCount:      2,
			FavoriteRating: 5,
			ChildReaction:  "laughed at the holes in the pages",
		},
		{
			Base:           domain.Base{ID: idFn(), CreatedAt: now, UpdatedAt: now},
			BookID:         books[1].ID,
			OwnerID:        owner,
			ReadDate:       now.AddDate(0, 0, -1),
			ReadCount:      1,
			FavoriteRating: 4,
			ChildReaction:  "fell asleep before the last page",
		},
	}
	return books, records
}
