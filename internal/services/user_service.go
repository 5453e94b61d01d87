package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	referralCodeAttempts = 5
	// resolveAttempts bounds the re-resolution after losing a create-if-absent race.
	resolveAttempts = 2
)

// UserService resolves a (wallet, twitter) pair to a single user record,
// creating or updating it as needed.
type UserService struct {
	users *repositories.UserRepo
	log   *zap.Logger

	newID   func() string
	newCode func() (string, error)
}

func NewUserService(users *repositories.UserRepo, log *zap.Logger) *UserService {
	return &UserService{
		users:   users,
		log:     log,
		newID:   uuid.NewString,
		newCode: randomReferralCode,
	}
}

// ResolveOrCreate finds the user owning wallet or twitter, or creates one.
// A known user gets its wallet/twitter overwritten with the given values.
// If wallet and twitter belong to two different users ErrIdentityConflict is
// returned and nothing is written.
func (s *UserService) ResolveOrCreate(ctx context.Context, wallet, twitter string) (*models.User, bool, error) {
	wallet = NormalizeWallet(wallet)
	twitter = NormalizeTwitter(twitter)

	for attempt := 0; attempt < resolveAttempts; attempt++ {
		walletID, _, err := s.users.IDByWallet(ctx, wallet)
		if err != nil {
			return nil, false, err
		}
		twitterID, _, err := s.users.IDByTwitter(ctx, twitter)
		if err != nil {
			return nil, false, err
		}

		if walletID != "" && twitterID != "" && walletID != twitterID {
			s.log.Debug("identity conflict",
				zap.String("wallet_user_id", walletID),
				zap.String("twitter_user_id", twitterID),
			)
			return nil, false, ErrIdentityConflict
		}

		if id := firstNonEmpty(walletID, twitterID); id != "" {
			user, err := s.update(ctx, id, wallet, twitter)
			return user, false, err
		}

		user, won, err := s.create(ctx, wallet, twitter)
		if err != nil {
			return nil, false, err
		}
		if won {
			return user, true, nil
		}
		s.log.Debug("lost signup race, resolving again", zap.String("wallet", wallet), zap.String("twitter", twitter))
	}

	return nil, false, fmt.Errorf("%w: concurrent signup for the same identity", ErrIdentityConflict)
}

func (s *UserService) update(ctx context.Context, id, wallet, twitter string) (*models.User, error) {
	current, err := s.users.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		// Index written by a signup that has not saved its record yet.
		return nil, fmt.Errorf("%w: user %s is still being created", ErrIdentityConflict, id)
	}
	if err != nil {
		return nil, err
	}

	var code string
	if current.ReferralCode == "" {
		if code, err = s.generateReferralCode(ctx); err != nil {
			return nil, err
		}
	}

	user, _, err := s.users.Update(ctx, id, func(u *models.User) (bool, error) {
		changed := u.Wallet != wallet || u.Twitter != twitter
		u.Wallet, u.Twitter = wallet, twitter
		if u.ReferralCode == "" && code != "" {
			u.ReferralCode = code
			changed = true
		}
		return changed, nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.Index(ctx, user); err != nil {
		return nil, err
	}

	if current.Wallet != "" && current.Wallet != wallet {
		if err := s.users.UnindexWallet(ctx, current.Wallet, user.ID); err != nil {
			s.log.Warn("failed to drop previous wallet index", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	if current.Twitter != "" && current.Twitter != twitter {
		if err := s.users.UnindexTwitter(ctx, current.Twitter, user.ID); err != nil {
			s.log.Warn("failed to drop previous twitter index", zap.String("user_id", user.ID), zap.Error(err))
		}
	}
	return user, nil
}

// create reserves both identity indexes with create-if-absent writes before
// saving. won=false means another signup got there first. Any failure after
// the reservations discards them, so the same identity can sign up again.
func (s *UserService) create(ctx context.Context, wallet, twitter string) (*models.User, bool, error) {
	user := &models.User{
		ID:          s.newID(),
		Wallet:      wallet,
		Twitter:     twitter,
		TaskClaims:  map[string]string{},
		BaseEntries: models.BaseEntries,
	}

	ok, err := s.users.ReserveWallet(ctx, wallet, user.ID)
	if err != nil || !ok {
		return nil, false, err
	}
	ok, err = s.users.ReserveTwitter(ctx, twitter, user.ID)
	if err != nil || !ok {
		s.discard(ctx, user)
		return nil, false, err
	}

	if user.ReferralCode, err = s.generateReferralCode(ctx); err != nil {
		s.discard(ctx, user)
		return nil, false, err
	}
	if err := s.users.Save(ctx, user); err != nil {
		s.discard(ctx, user)
		return nil, false, err
	}

	s.log.Info("waitlist user created", zap.String("user_id", user.ID), zap.String("twitter", twitter))
	return user, true, nil
}

func (s *UserService) discard(ctx context.Context, user *models.User) {
	if err := s.users.Discard(ctx, user); err != nil {
		s.log.Warn("failed to discard incomplete signup",
			zap.String("user_id", user.ID),
			zap.String("wallet", user.Wallet),
			zap.String("twitter", user.Twitter),
			zap.Error(err),
		)
	}
}

// generateReferralCode probes the referral-code index a few times and then
// falls back to a uuid-derived code, so a signup never fails on collisions alone.
func (s *UserService) generateReferralCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < referralCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", err
		}
		taken, err := s.users.ReferralCodeTaken(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	s.log.Warn("referral code collisions exhausted, using fallback")
	return strings.ReplaceAll(s.newID(), "-", "")[:10], nil
}

func randomReferralCode() (string, error) {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate referral code: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
