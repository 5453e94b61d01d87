package services

import (
	"context"
	"errors"
	"testing"

	"github.com/fliproyale/waitlist/internal/repositories"
	"go.uber.org/zap"
)

func newLegacy(env *testEnv, open bool) *LegacyService {
	return NewLegacyService(repositories.NewLegacyRepo(env.store, env.keys), env.catalog, open, zap.NewNop())
}

func TestLegacy_ClaimAndStatus(t *testing.T) {
	env := newTestEnv(t)
	svc := newLegacy(env, true)
	ctx := context.Background()

	stats, err := svc.Status(ctx, "@Alice")
	if err != nil {
		t.Fatal(err)
	}
	if stats.Username != "alice" || stats.TotalEntries != 1 || stats.CompletedCount != 0 {
		t.Errorf("fresh legacy stats = %+v", stats)
	}

	for i := 0; i < 2; i++ {
		stats, err = svc.ClaimTask(ctx, "alice", "retweet-1991999830911320492")
		if err != nil {
			t.Fatal(err)
		}
	}
	if stats.CompletedCount != 1 || stats.TaskBonus != 2 || stats.TotalEntries != 3 {
		t.Errorf("after duplicate claims = %+v", stats)
	}

	stats, err = svc.ClaimTask(ctx, "ALICE", "follow")
	if err != nil {
		t.Fatal(err)
	}
	if stats.CompletedCount != 2 || stats.TotalEntries != 4 {
		t.Errorf("after follow = %+v", stats)
	}
}

func TestLegacy_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, err := newLegacy(env, true).ClaimTask(ctx, "alice", "nope"); !errors.Is(err, ErrUnknownTask) {
		t.Errorf("expected ErrUnknownTask, got %v", err)
	}
	if _, err := newLegacy(env, true).Status(ctx, "bad name!"); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := newLegacy(env, false).ClaimTask(ctx, "alice", "follow"); !errors.Is(err, ErrClaimsClosed) {
		t.Errorf("expected ErrClaimsClosed, got %v", err)
	}
}
