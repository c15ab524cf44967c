package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/reviewhub/internal/domain/user"
)

// UsersRepo keeps users in process. Email uniqueness is checked under the
// same lock as the insert, mirroring the unique index in Postgres.
type UsersRepo struct {
	mu      sync.RWMutex
	items   map[string]user.User // {"id": user}
	byEmail map[string]string
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items:   make(map[string]user.User),
		byEmail: make(map[string]string),
	}
}

func (r *UsersRepo) Create(_ context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[u.Email]; taken {
		return user.User{}, user.ErrEmailTaken
	}

	r.items[u.ID] = u
	r.byEmail[u.Email] = u.ID

	return u, nil
}

func (r *UsersRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return r.items[id], nil
}

func (r *UsersRepo) GetByID(_ context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// GetManyByID returns the users that exist among ids, keyed by id.
func (r *UsersRepo) GetManyByID(_ context.Context, ids []string) (map[string]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]user.User, len(ids))
	for _, id := range ids {
		if u, ok := r.items[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// Rename changes a stored user's name in place. Nothing in the API renames
// users; it exists so reads can be checked against a changed author.
func (r *UsersRepo) Rename(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.items[id]
	if !ok {
		return user.ErrNotFound
	}
	u.Name = name
	r.items[id] = u
	return nil
}
