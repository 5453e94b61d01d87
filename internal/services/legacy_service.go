package services

import (
	"context"
	"fmt"

	"github.com/fliproyale/waitlist/internal/catalog"
	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/fliproyale/waitlist/internal/validation"
	"go.uber.org/zap"
)

// LegacyService is the username-keyed variant: a flat completed-task set per
// username with no wallet linkage and no referrals.
type LegacyService struct {
	repo       *repositories.LegacyRepo
	catalog    *catalog.Catalog
	claimsOpen bool
	log        *zap.Logger
}

func NewLegacyService(repo *repositories.LegacyRepo, cat *catalog.Catalog, claimsOpen bool, log *zap.Logger) *LegacyService {
	return &LegacyService{repo: repo, catalog: cat, claimsOpen: claimsOpen, log: log}
}

func (s *LegacyService) Status(ctx context.Context, username string) (models.LegacyStats, error) {
	name, err := legacyUsername(username)
	if err != nil {
		return models.LegacyStats{}, err
	}
	return s.stats(ctx, name)
}

func (s *LegacyService) ClaimTask(ctx context.Context, username, taskID string) (models.LegacyStats, error) {
	if !s.claimsOpen {
		return models.LegacyStats{}, ErrClaimsClosed
	}
	name, err := legacyUsername(username)
	if err != nil {
		return models.LegacyStats{}, err
	}
	if _, ok := s.catalog.Lookup(taskID); !ok {
		return models.LegacyStats{}, fmt.Errorf("%w: %q", ErrUnknownTask, taskID)
	}

	added, err := s.repo.AddTask(ctx, name, taskID)
	if err != nil {
		return models.LegacyStats{}, err
	}
	if added {
		s.log.Info("legacy task claimed", zap.String("username", name), zap.String("task_id", taskID))
	}
	return s.stats(ctx, name)
}

func (s *LegacyService) stats(ctx context.Context, name string) (models.LegacyStats, error) {
	tasks, err := s.repo.Tasks(ctx, name)
	if err != nil {
		return models.LegacyStats{}, err
	}
	count, err := s.repo.Count(ctx, name)
	if err != nil {
		return models.LegacyStats{}, err
	}
	bonus := s.catalog.BonusOf(tasks)
	return models.LegacyStats{
		Username:       name,
		CompletedTasks: tasks,
		CompletedCount: count,
		TaskBonus:      bonus,
		TotalEntries:   models.BaseEntries + bonus,
	}, nil
}

func legacyUsername(raw string) (string, error) {
	if _, err := validation.TwitterHandle(raw); err != nil {
		return "", asValidationError(err)
	}
	return NormalizeTwitter(raw), nil
}
