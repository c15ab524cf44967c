// Package reviews turns submissions into stored reviews and lists them back.
package reviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/geocoder89/reviewhub/internal/actorctx"
	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type AuthorLookup interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type MediaUploader interface {
	Upload(ctx context.Context, a review.Attachment) (string, error)
}

type ReviewWriter interface {
	Create(ctx context.Context, r review.Review) (review.Review, error)
}

// CatalogInvalidator is told after every stored review.
type CatalogInvalidator interface {
	Invalidate(ctx context.Context)
}

type Assembler struct {
	authors  AuthorLookup
	uploader MediaUploader
	reviews  ReviewWriter
	catalog  CatalogInvalidator
	log      *slog.Logger
}

func NewAssembler(authors AuthorLookup, uploader MediaUploader, reviews ReviewWriter, catalog CatalogInvalidator, log *slog.Logger) *Assembler {
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{
		authors:  authors,
		uploader: uploader,
		reviews:  reviews,
		catalog:  catalog,
		log:      log,
	}
}

// Submit validates the author, uploads every attachment concurrently and
// stores the review only if all uploads succeeded.
func (a *Assembler) Submit(ctx context.Context, sub review.Submission) (review.Review, error) {
	if strings.TrimSpace(sub.Content) == "" {
		return review.Review{}, review.ErrEmptyContent
	}

	if _, err := uuid.Parse(sub.AuthorID); err != nil {
		return review.Review{}, review.ErrMalformedID
	}

	author, err := a.authors.GetByID(ctx, sub.AuthorID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return review.Review{}, review.ErrAuthorNotFound
		}
		return review.Review{}, fmt.Errorf("lookup author: %w", err)
	}

	images, videos, err := review.Partition(sub.Attachments)
	if err != nil {
		return review.Review{}, err
	}

	imageURLs, videoURLs, err := a.uploadAll(ctx, images, videos)
	if err != nil {
		a.log.WarnContext(ctx, "review submission aborted", "author_id", author.ID,
			"images", len(images), "videos", len(videos), "err", err)
		return review.Review{}, err
	}

	rv := review.New(sub.Content, author.ID, author.Name, imageURLs, videoURLs)

	stored, err := a.reviews.Create(ctx, rv)
	if err != nil {
		return review.Review{}, fmt.Errorf("%w: %v", review.ErrPersistence, err)
	}

	if a.catalog != nil {
		a.catalog.Invalidate(ctx)
	}

	attrs := []any{"review_id", stored.ID, "author_id", author.ID, "images", len(imageURLs), "videos", len(videoURLs)}
	if actor, ok := actorctx.UserIDFrom(ctx); ok {
		attrs = append(attrs, "submitted_by", actor)
	}
	a.log.InfoContext(ctx, "review created", attrs...)

	return stored, nil
}

// uploadAll fires every upload at once and waits for all of them. The group
// has no shared cancel, so one failure never interrupts its siblings. URLs
// land at their original index regardless of completion order.
func (a *Assembler) uploadAll(ctx context.Context, images, videos []review.Attachment) ([]string, []string, error) {
	imageURLs := make([]string, len(images))
	videoURLs := make([]string, len(videos))

	var g errgroup.Group

	dispatch := func(items []review.Attachment, out []string) {
		for i, item := range items {
			g.Go(func() error {
				url, err := a.uploader.Upload(ctx, item)
				if err != nil {
					if !errors.Is(err, review.ErrUploadFailed) {
						err = fmt.Errorf("%w: %v", review.ErrUploadFailed, err)
					}
					return err
				}
				out[i] = url
				return nil
			})
		}
	}

	dispatch(images, imageURLs)
	dispatch(videos, videoURLs)

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return imageURLs, videoURLs, nil
}
