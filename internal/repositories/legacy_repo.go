package repositories

import (
	"context"

	"github.com/fliproyale/waitlist/internal/store"
)

// LegacyRepo is the flat per-username completed-task set.
type LegacyRepo struct {
	store store.Store
	keys  Keys
}

func NewLegacyRepo(s store.Store, keys Keys) *LegacyRepo {
	return &LegacyRepo{store: s, keys: keys}
}

// AddTask returns false when the task was already in the set.
func (r *LegacyRepo) AddTask(ctx context.Context, username, taskID string) (bool, error) {
	return r.store.SAdd(ctx, r.keys.LegacyTasks(username), taskID)
}

func (r *LegacyRepo) Tasks(ctx context.Context, username string) ([]string, error) {
	return r.store.SMembers(ctx, r.keys.LegacyTasks(username))
}

func (r *LegacyRepo) Count(ctx context.Context, username string) (int64, error) {
	return r.store.SCard(ctx, r.keys.LegacyTasks(username))
}
