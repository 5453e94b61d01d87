package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/fliproyale/waitlist/internal/catalog"
	"github.com/fliproyale/waitlist/internal/config"
	"github.com/fliproyale/waitlist/internal/events"
	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/fliproyale/waitlist/internal/validation"
	"go.uber.org/zap"
)

type SignupInput struct {
	Wallet     string
	Twitter    string
	ReferredBy string
}

type SignupResult struct {
	User             *models.User
	Stats            models.Stats
	Token            string
	Created          bool
	ReferralCredited bool
}

// WaitlistService wires identity, referrals, tasks and sessions into the
// three request flows: signup, status and task claim.
type WaitlistService struct {
	users     *repositories.UserRepo
	userSvc   *UserService
	referrals *ReferralService
	tasks     *TaskService
	sessions  *SessionService
	catalog   *catalog.Catalog
	publisher events.Publisher
	cfg       *config.Config
	log       *zap.Logger
}

func NewWaitlistService(
	users *repositories.UserRepo,
	userSvc *UserService,
	referrals *ReferralService,
	tasks *TaskService,
	sessions *SessionService,
	cat *catalog.Catalog,
	publisher events.Publisher,
	cfg *config.Config,
	log *zap.Logger,
) *WaitlistService {
	return &WaitlistService{
		users:     users,
		userSvc:   userSvc,
		referrals: referrals,
		tasks:     tasks,
		sessions:  sessions,
		catalog:   cat,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
	}
}

func (s *WaitlistService) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	if !s.cfg.SignupsOpen {
		return nil, ErrWaitlistClosed
	}

	twitter, err := validation.TwitterHandle(in.Twitter)
	if err != nil {
		return nil, asValidationError(err)
	}
	wallet, err := validation.WalletAddress(in.Wallet)
	if err != nil {
		return nil, asValidationError(err)
	}

	user, created, err := s.userSvc.ResolveOrCreate(ctx, wallet, twitter)
	if err != nil {
		return nil, err
	}

	credited, err := s.referrals.ApplyReferral(ctx, user, in.ReferredBy)
	if err != nil {
		return nil, fmt.Errorf("apply referral: %w", err)
	}

	token, err := s.sessions.CreateSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventWaitlistSignup,
		Payload: map[string]any{
			"user_id":  user.ID,
			"twitter":  user.Twitter,
			"created":  created,
			"referred": user.ReferredBy != "",
		},
	})

	return &SignupResult{
		User:             user,
		Stats:            BuildStats(user, s.catalog),
		Token:            token,
		Created:          created,
		ReferralCredited: credited,
	}, nil
}

func (s *WaitlistService) Status(ctx context.Context, token string) (models.Stats, error) {
	user, err := s.sessionUser(ctx, token)
	if err != nil {
		return models.Stats{}, err
	}
	return BuildStats(user, s.catalog), nil
}

func (s *WaitlistService) ClaimTask(ctx context.Context, token, taskID string) (models.Stats, error) {
	if !s.cfg.ClaimsOpen {
		return models.Stats{}, ErrClaimsClosed
	}

	user, err := s.sessionUser(ctx, token)
	if err != nil {
		return models.Stats{}, err
	}

	claimed, err := s.tasks.ClaimTask(ctx, user, taskID)
	if err != nil {
		return models.Stats{}, err
	}
	if claimed {
		s.publish(ctx, events.Event{
			Type:    events.EventTaskClaimed,
			Payload: map[string]any{"user_id": user.ID, "task_id": taskID},
		})
	}
	return BuildStats(user, s.catalog), nil
}

func (s *WaitlistService) Tasks() []catalog.Task {
	return s.catalog.Tasks()
}

func (s *WaitlistService) sessionUser(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.sessions.ResolveSession(ctx, token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	return user, err
}

func (s *WaitlistService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, s.cfg.EventsChannel, event); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", event.Type), zap.Error(err))
	}
}

func asValidationError(err error) error {
	var fe *validation.FieldError
	if errors.As(err, &fe) {
		return &ValidationError{Field: fe.Field, Reason: fe.Reason}
	}
	return &ValidationError{Field: "request", Reason: err.Error()}
}
