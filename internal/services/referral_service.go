package services

import (
	"context"
	"errors"
	"strings"

	"github.com/fliproyale/waitlist/internal/events"
	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"go.uber.org/zap"
)

// ReferralService credits a referrer at most once per referred user.
type ReferralService struct {
	users     *repositories.UserRepo
	referrals *repositories.ReferralRepo
	publisher events.Publisher
	channel   string
	log       *zap.Logger
}

func NewReferralService(
	users *repositories.UserRepo,
	referrals *repositories.ReferralRepo,
	publisher events.Publisher,
	channel string,
	log *zap.Logger,
) *ReferralService {
	return &ReferralService{
		users:     users,
		referrals: referrals,
		publisher: publisher,
		channel:   channel,
		log:       log,
	}
}

// ApplyReferral attributes user to the owner of code. Attribution is
// first-write-wins: unknown codes, self-referrals, already attributed users and
// already credited pairs are silent no-ops. The edge marker is claimed with a
// create-if-absent write before any counter moves, so retries never double-credit.
func (s *ReferralService) ApplyReferral(ctx context.Context, user *models.User, code string) (bool, error) {
	code = strings.TrimSpace(code)
	if code == "" || user.ReferredBy != "" {
		return false, nil
	}

	referrerID, found, err := s.users.IDByReferralCode(ctx, code)
	if err != nil || !found {
		return false, err
	}
	if referrerID == user.ID {
		return false, nil
	}

	if _, err := s.users.GetByID(ctx, referrerID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	marked, err := s.referrals.MarkEdge(ctx, referrerID, user.ID)
	if err != nil {
		return false, err
	}
	if !marked {
		// Credited by an earlier attempt that failed before attributing the user.
		return false, s.attribute(ctx, user, referrerID)
	}

	// Only the referrer's record is written, so a failure here means the credit
	// did not land and the edge can be released for a retry.
	referrer, _, err := s.users.Update(ctx, referrerID, func(r *models.User) (bool, error) {
		r.ReferralsCount++
		r.ReferralBonusEntries += models.ReferralBonusReward
		return true, nil
	})
	if err != nil {
		if clearErr := s.referrals.ClearEdge(ctx, referrerID, user.ID); clearErr != nil {
			s.log.Error("failed to clear referral edge after failed credit",
				zap.String("referrer_id", referrerID),
				zap.String("user_id", user.ID),
				zap.Error(clearErr),
			)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.attribute(ctx, user, referrerID); err != nil {
		return false, err
	}

	s.log.Info("referral credited",
		zap.String("referrer_id", referrerID),
		zap.String("user_id", user.ID),
		zap.Int("referrals_count", referrer.ReferralsCount),
	)
	if err := s.publisher.Publish(ctx, s.channel, events.Event{
		Type: events.EventReferralCredited,
		Payload: map[string]any{
			"referrer_id":     referrerID,
			"user_id":         user.ID,
			"referrals_count": referrer.ReferralsCount,
		},
	}); err != nil {
		s.log.Warn("failed to publish referral event", zap.Error(err))
	}
	return true, nil
}

// attribute sets the referring user once. user is refreshed from the stored record.
func (s *ReferralService) attribute(ctx context.Context, user *models.User, referrerID string) error {
	if user.ReferredBy != "" {
		return nil
	}
	updated, _, err := s.users.Update(ctx, user.ID, func(u *models.User) (bool, error) {
		if u.ReferredBy != "" {
			return false, nil
		}
		u.ReferredBy = referrerID
		return true, nil
	})
	if err != nil {
		return err
	}
	*user = *updated
	return nil
}
