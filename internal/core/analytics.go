package core

import (
	"context"
	"sort"

	"readingcore/pkg/domain"
)

// AuthorCount ranks an author by how often their books were read.
type AuthorCount struct {
	Author string `json:"author"`
	Reads  int    `json:"reads"`
}

// BookRating ranks a book by its average favorite rating.
type BookRating struct {
	BookID string  `json:"bookId"`
	Title  string  `json:"title"`
	Rating float64 `json:"rating"`
	Reads  int     `json:"reads"`
}

// TrendPoint counts reads within one calendar month, keyed YYYY-MM.
type TrendPoint struct {
	Month string `json:"month"`
	Reads int    `json:"reads"`
}

// GoalProgress reports how far along the owner's most recent goal is.
type GoalProgress struct {
	GoalID      string  `json:"goalId"`
	TargetBooks int     `json:"targetBooks"`
	BooksRead   int     `json:"booksRead"`
	Ratio       float64 `json:"ratio"`
	Completed   bool    `json:"isCompleted"`
}

// ReadingAnalytics aggregates one owner's library and reading history.
type ReadingAnalytics struct {
	TotalBooks      int           `json:"totalBooks"`
	TotalReads      int           `json:"totalReads"`
	FavoriteAuthors []AuthorCount `json:"favoriteAuthors"`
	FavoriteBooks   []BookRating  `json:"favoriteBooks"`
	ReadingTrends   []TrendPoint  `json:"readingTrends"`
	GoalProgress    *GoalProgress `json:"goalProgress,omitempty"`
}

// Analytics derives reading statistics for one owner from the current
// snapshot. Authors and books rank by reads and rating, trends bucket reads
// by calendar month, and goal progress tracks the most recently created goal.
func (s *Store) Analytics(ctx context.Context, ownerID string) (ReadingAnalytics, error) {
	ctx, done := s.begin(ctx, "analytics")
	var out ReadingAnalytics
	err := s.view(ctx, func(st *engineState) {
		books := make(map[string]Book)
		for _, b := range st.books {
			if b.OwnerID == ownerID {
				books[b.ID] = b
				out.TotalBooks++
			}
		}

		authorReads := make(map[string]int)
		type ratingAcc struct {
			sum   int
			rated int
			reads int
		}
		ratings := make(map[string]*ratingAcc)
		months := make(map[string]int)
		var records []ReadingRecord
		for _, r := range st.readingRecords {
			if r.OwnerID != ownerID {
				continue
			}
			records = append(records, r)
			reads := r.ReadCount
			if reads <= 0 {
				reads = 1
			}
			out.TotalReads += reads
			if b, ok := books[r.BookID]; ok && b.Author != "" {
				authorReads[b.Author] += reads
			}
			acc := ratings[r.BookID]
			if acc == nil {
				acc = &ratingAcc{}
				ratings[r.BookID] = acc
			}
			acc.reads += reads
			if r.FavoriteRating > 0 {
				acc.sum += r.FavoriteRating
				acc.rated++
			}
			months[r.ReadDate.Format("2006-01")] += reads
		}

		for author, reads := range authorReads {
			out.FavoriteAuthors = append(out.FavoriteAuthors, AuthorCount{Author: author, Reads: reads})
		}
		sort.Slice(out.FavoriteAuthors, func(i, j int) bool {
			if out.FavoriteAuthors[i].Reads != out.FavoriteAuthors[j].Reads {
				return out.FavoriteAuthors[i].Reads > out.FavoriteAuthors[j].Reads
			}
			return out.FavoriteAuthors[i].Author < out.FavoriteAuthors[j].Author
		})

		for bookID, acc := range ratings {
			b, ok := books[bookID]
			if !ok {
				continue
			}
			rating := 0.0
			if acc.rated > 0 {
				rating = float64(acc.sum) / float64(acc.rated)
			}
			out.FavoriteBooks = append(out.FavoriteBooks, BookRating{
				BookID: bookID,
				Title:  b.Title,
				Rating: rating,
				Reads:  acc.reads,
			})
		}
		sort.Slice(out.FavoriteBooks, func(i, j int) bool {
			if out.FavoriteBooks[i].Rating != out.FavoriteBooks[j].Rating {
				return out.FavoriteBooks[i].Rating > out.FavoriteBooks[j].Rating
			}
			if out.FavoriteBooks[i].Reads != out.FavoriteBooks[j].Reads {
				return out.FavoriteBooks[i].Reads > out.FavoriteBooks[j].Reads
			}
			return out.FavoriteBooks[i].Title < out.FavoriteBooks[j].Title
		})

		for month, reads := range months {
			out.ReadingTrends = append(out.ReadingTrends, TrendPoint{Month: month, Reads: reads})
		}
		sort.Slice(out.ReadingTrends, func(i, j int) bool {
			return out.ReadingTrends[i].Month < out.ReadingTrends[j].Month
		})

		out.GoalProgress = goalProgress(st.goals, records, ownerID)
	})
	done(err)
	return out, err
}

// goalProgress evaluates the owner's most recently created goal against the
// reading records that fall inside its window.
func goalProgress(goals []ReadingGoal, records []ReadingRecord, ownerID string) *GoalProgress {
	var goal *domain.ReadingGoal
	for i := range goals {
		if goals[i].OwnerID != ownerID {
			continue
		}
		if goal == nil || goals[i].CreatedAt.After(goal.CreatedAt) {
			goal = &goals[i]
		}
	}
	if goal == nil {
		return nil
	}

	read := make(map[string]bool)
	for _, r := range records {
		if r.ReadDate.Before(goal.StartDate) {
			continue
		}
		if goal.EndDate != nil && r.ReadDate.After(*goal.EndDate) {
			continue
		}
		read[r.BookID] = true
	}

	progress := &GoalProgress{
		GoalID:      goal.ID,
		TargetBooks: goal.TargetBooks,
		BooksRead:   len(read),
		Completed:   goal.Completed,
	}
	if goal.TargetBooks > 0 {
		progress.Ratio = float64(len(read)) / float64(goal.TargetBooks)
		if progress.Ratio > 1 {
			progress.Ratio = 1
		}
	}
	if len(read) >= goal.TargetBooks && goal.TargetBooks > 0 {
		progress.Completed = true
	}
	return progress
}
