package repositories

import (
	"context"
	"time"

	"github.com/fliproyale/waitlist/internal/store"
)

// SessionRepo maps opaque session tokens to user ids. Expiry is enforced by the store.
type SessionRepo struct {
	store store.Store
	keys  Keys
}

func NewSessionRepo(s store.Store, keys Keys) *SessionRepo {
	return &SessionRepo{store: s, keys: keys}
}

func (r *SessionRepo) Create(ctx context.Context, token, userID string, ttl time.Duration) error {
	return r.store.Set(ctx, r.keys.Session(token), userID, ttl)
}

func (r *SessionRepo) Resolve(ctx context.Context, token string) (string, bool, error) {
	userID, found, err := r.store.Get(ctx, r.keys.Session(token))
	if err != nil || !found || userID == "" {
		return "", false, err
	}
	return userID, true, nil
}
