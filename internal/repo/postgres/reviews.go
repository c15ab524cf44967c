package postgres

import (
	"context"

	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReviewsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewReviewsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{pool: pool, prom: prom}
}

// Create writes the review in a single statement so it is either fully stored or absent.
func (r *ReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	err := r.prom.ObserveDB("reviews.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO reviews (id, content, author_id, author_name, image_urls, video_urls, created_at, updated_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			rv.ID, rv.Content, rv.AuthorID, rv.AuthorName, rv.ImageURLs, rv.VideoURLs, rv.CreatedAt, rv.UpdatedAt,
		)
		return e
	})
	if err != nil {
		return review.Review{}, err
	}

	return rv, nil
}

// ListWithAuthors returns every review oldest first with the author's current
// name and email. Reviews whose author row is gone keep an empty author.
func (r *ReviewsRepo) ListWithAuthors(ctx context.Context) (items []review.WithAuthor, err error) {
	var rows pgx.Rows

	err = r.prom.ObserveDB("reviews.list_with_authors", func() error {
		rows, err = r.pool.Query(ctx, `
			SELECT r.id, r.content, r.author_id, r.author_name, r.image_urls, r.video_urls,
			       r.created_at, r.updated_at,
			       COALESCE(u.id::text, ''), COALESCE(u.name, ''), COALESCE(u.email, '')
			FROM reviews r
			LEFT JOIN users u ON u.id = r.author_id
			ORDER BY r.created_at ASC, r.id ASC
		`)
		return err
	})
	if err != nil {
		return
	}

	defer rows.Close()

	items = make([]review.WithAuthor, 0)

	for rows.Next() {
		var it review.WithAuthor

		e := rows.Scan(
			&it.ID, &it.Content, &it.AuthorID, &it.AuthorName, &it.ImageURLs, &it.VideoURLs,
			&it.CreatedAt, &it.UpdatedAt,
			&it.Author.ID, &it.Author.Name, &it.Author.Email,
		)
		if e != nil {
			err = e
			return
		}

		if it.ImageURLs == nil {
			it.ImageURLs = []string{}
		}
		if it.VideoURLs == nil {
			it.VideoURLs = []string{}
		}

		items = append(items, it)
	}

	if e := rows.Err(); e != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("reviews.list_with_authors", "rows_err").Inc()
		}
		err = e
		return
	}

	return
}
