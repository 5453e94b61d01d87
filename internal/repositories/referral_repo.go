package repositories

import (
	"context"

	"github.com/fliproyale/waitlist/internal/store"
)

// ReferralRepo stores the (referrer, referee) edge markers that make crediting idempotent.
type ReferralRepo struct {
	store store.Store
	keys  Keys
}

func NewReferralRepo(s store.Store, keys Keys) *ReferralRepo {
	return &ReferralRepo{store: s, keys: keys}
}

// MarkEdge creates the edge if absent. false means the pair was already credited.
func (r *ReferralRepo) MarkEdge(ctx context.Context, referrerID, userID string) (bool, error) {
	return r.store.SetNX(ctx, r.keys.ReferralEdge(referrerID, userID), "1", 0)
}

func (r *ReferralRepo) EdgeExists(ctx context.Context, referrerID, userID string) (bool, error) {
	return r.store.Exists(ctx, r.keys.ReferralEdge(referrerID, userID))
}

// ClearEdge removes a marker whose credit could not be written, so a retry can land.
func (r *ReferralRepo) ClearEdge(ctx context.Context, referrerID, userID string) error {
	return r.store.Del(ctx, r.keys.ReferralEdge(referrerID, userID))
}
