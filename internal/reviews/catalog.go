package reviews

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/geocoder89/reviewhub/internal/cache"
	"github.com/geocoder89/reviewhub/internal/domain/review"
	"github.com/geocoder89/reviewhub/internal/domain/user"
	"github.com/geocoder89/reviewhub/internal/observability"
)

const (
	catalogGenerationKey = "reviews:gen"
	catalogKeyPrefix     = "reviews:all:"
)

type ReviewLister interface {
	ListWithAuthors(ctx context.Context) ([]review.WithAuthor, error)
}

type AuthorDirectory interface {
	GetManyByID(ctx context.Context, ids []string) (map[string]user.User, error)
}

// Catalog is the read side. Only review rows are cached, since they never
// change once written; authors are joined from the store on every call.
// Cached rows live under a generation number that Invalidate bumps, so a
// listing that raced a new review can only fill a key nobody reads any more.
// Any cache failure falls through to the store.
type Catalog struct {
	store   ReviewLister
	authors AuthorDirectory
	cache   cache.Store
	ttl     time.Duration
	prom    *observability.Prom
	log     *slog.Logger
}

func NewCatalog(store ReviewLister, authors AuthorDirectory, c cache.Store, ttl time.Duration, prom *observability.Prom, log *slog.Logger) *Catalog {
	if log == nil {
		log = slog.Default()
	}
	return &Catalog{store: store, authors: authors, cache: c, ttl: ttl, prom: prom, log: log}
}

// ListAll returns every review oldest first with the author's current name and email.
func (c *Catalog) ListAll(ctx context.Context) ([]review.WithAuthor, error) {
	gen, cacheable := c.generation(ctx)

	if cacheable {
		if rows, ok := c.fromCache(ctx, gen); ok {
			items, err := c.join(ctx, rows)
			if err == nil {
				return items, nil
			}
			c.log.WarnContext(ctx, "catalog author join failed", "err", err)
		}
	}

	items, err := c.store.ListWithAuthors(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.toCache(ctx, gen, items)
	}
	return items, nil
}

// Invalidate retires every cached listing.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if _, err := c.cache.Incr(ctx, catalogGenerationKey); err != nil {
		c.log.WarnContext(ctx, "catalog cache invalidate failed", "err", err)
	}
}

func (c *Catalog) generation(ctx context.Context) (int64, bool) {
	if c.cache == nil || c.authors == nil {
		return 0, false
	}

	raw, ok, err := c.cache.Get(ctx, catalogGenerationKey)
	if err != nil {
		c.prom.ObserveCache("error")
		c.log.WarnContext(ctx, "catalog generation read failed", "err", err)
		return 0, false
	}
	if !ok {
		return 0, true
	}

	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		c.prom.ObserveCache("error")
		c.log.WarnContext(ctx, "catalog generation unreadable", "value", string(raw))
		return 0, false
	}
	return gen, true
}

func (c *Catalog) join(ctx context.Context, rows []review.Review) ([]review.WithAuthor, error) {
	ids := make([]string, 0, len(rows))
	seen := make(map[string]struct{}, len(rows))
	for _, rv := range rows {
		if _, ok := seen[rv.AuthorID]; !ok {
			seen[rv.AuthorID] = struct{}{}
			ids = append(ids, rv.AuthorID)
		}
	}

	found, err := c.authors.GetManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]review.WithAuthor, 0, len(rows))
	for _, rv := range rows {
		item := review.WithAuthor{Review: rv}
		if u, ok := found[rv.AuthorID]; ok {
			item.Author = review.Author{ID: u.ID, Name: u.Name, Email: u.Email}
		}
		items = append(items, item)
	}
	return items, nil
}

func cacheKey(gen int64) string {
	return catalogKeyPrefix + strconv.FormatInt(gen, 10)
}

func (c *Catalog) fromCache(ctx context.Context, gen int64) ([]review.Review, bool) {
	raw, ok, err := c.cache.Get(ctx, cacheKey(gen))
	if err != nil {
		c.prom.ObserveCache("error")
		c.log.WarnContext(ctx, "catalog cache read failed", "err", err)
		return nil, false
	}
	if !ok {
		c.prom.ObserveCache("miss")
		return nil, false
	}

	var rows []review.Review
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.prom.ObserveCache("error")
		c.log.WarnContext(ctx, "catalog cache entry unreadable", "err", err)
		return nil, false
	}

	c.prom.ObserveCache("hit")
	return rows, true
}

func (c *Catalog) toCache(ctx context.Context, gen int64, items []review.WithAuthor) {
	rows := make([]review.Review, 0, len(items))
	for _, it := range items {
		rows = append(rows, it.Review)
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey(gen), raw, c.ttl); err != nil {
		c.log.WarnContext(ctx, "catalog cache write failed", "err", err)
	}
}
