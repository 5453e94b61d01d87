package services

import (
	"context"
	"fmt"
	"time"

	"github.com/fliproyale/waitlist/internal/catalog"
	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"go.uber.org/zap"
)

// TaskService records one-time task claims.
type TaskService struct {
	users   *repositories.UserRepo
	catalog *catalog.Catalog
	log     *zap.Logger
	now     func() time.Time
}

func NewTaskService(users *repositories.UserRepo, cat *catalog.Catalog, log *zap.Logger) *TaskService {
	return &TaskService{users: users, catalog: cat, log: log, now: time.Now}
}

// ClaimTask records taskID for user. Claiming twice is a no-op (claimed=false).
// The claim is applied to the stored record, so concurrent writes to the same
// user (referral credits, other claims) are kept. On success user is refreshed
// from the stored record; on failure it is left as it was.
func (s *TaskService) ClaimTask(ctx context.Context, user *models.User, taskID string) (bool, error) {
	task, ok := s.catalog.Lookup(taskID)
	if !ok {
		return false, fmt.Errorf("%w: %q", ErrUnknownTask, taskID)
	}
	if user.HasClaimed(taskID) {
		return false, nil
	}

	claimedAt := s.now().UTC().Format(time.RFC3339)
	updated, claimed, err := s.users.Update(ctx, user.ID, func(u *models.User) (bool, error) {
		if u.HasClaimed(taskID) {
			return false, nil
		}
		u.TaskClaims[taskID] = claimedAt
		u.TaskBonusEntries = s.catalog.Bonus(u.TaskClaims)
		return true, nil
	})
	if err != nil {
		return false, err
	}
	*user = *updated
	if !claimed {
		return false, nil
	}

	s.log.Info("task claimed",
		zap.String("user_id", user.ID),
		zap.String("task_id", task.ID),
		zap.Int("entries", task.Entries),
	)
	return true, nil
}
