package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/domain/user"
)

type AuthorLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// ReviewsRepo stores reviews in insertion order, which is the order they are listed in.
type ReviewsRepo struct {
	mu      sync.RWMutex
	items   []review.Review
	authors AuthorLookup
}

func NewReviewsRepo(authors AuthorLookup) *ReviewsRepo {
	return &ReviewsRepo{
		items:   make([]review.Review, 0),
		authors: authors,
	}
}

func (r *ReviewsRepo) Create(_ context.Context, rv review.Review) (review.Review, error) {
	stored := cloneReview(rv)

	r.mu.Lock()
	r.items = append(r.items, stored)
	r.mu.Unlock()

	return rv, nil
}

func (r *ReviewsRepo) ListWithAuthors(ctx context.Context) ([]review.WithAuthor, error) {
	r.mu.RLock()
	snapshot := make([]review.Review, len(r.items))
	copy(snapshot, r.items)
	r.mu.RUnlock()

	out := make([]review.WithAuthor, 0, len(snapshot))

	for _, rv := range snapshot {
		item := review.WithAuthor{Review: cloneReview(rv)}

		if r.authors != nil {
			u, err := r.authors.GetByID(ctx, rv.AuthorID)
			if err == nil {
				item.Author = review.Author{ID: u.ID, Name: u.Name, Email: u.Email}
			}
		}

		out = append(out, item)
	}

	return out, nil
}

func (r *ReviewsRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func cloneReview(rv review.Review) review.Review {
	rv.ImageURLs = append([]string{}, rv.ImageURLs...)
	rv.VideoURLs = append([]string{}, rv.VideoURLs...)
	return rv
}
