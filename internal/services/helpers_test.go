package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fliproyale/waitlist/internal/catalog"
	"github.com/fliproyale/waitlist/internal/config"
	"github.com/fliproyale/waitlist/internal/events"
	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/repositories"
	"github.com/fliproyale/waitlist/internal/store"
	"go.uber.org/zap"
)

const (
	walletA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	walletB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	walletC = "0xcccccccccccccccccccccccccccccccccccccccc"
)

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, _ string, ev events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type testEnv struct {
	store     *store.MemoryStore
	keys      repositories.Keys
	users     *repositories.UserRepo
	catalog   *catalog.Catalog
	cfg       *config.Config
	publisher *capturePublisher

	userSvc   *UserService
	referrals *ReferralService
	tasks     *TaskService
	sessions  *SessionService
	waitlist  *WaitlistService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()

	env := &testEnv{
		store:     store.NewMemoryStore(),
		keys:      repositories.NewKeys("waitlist"),
		catalog:   catalog.Default(),
		publisher: &capturePublisher{},
		cfg: &config.Config{
			KeyPrefix:     "waitlist",
			SessionTTL:    30 * 24 * time.Hour,
			SignupsOpen:   true,
			ClaimsOpen:    true,
			EventsChannel: "events:waitlist",
		},
	}
	env.users = repositories.NewUserRepo(env.store, env.keys)

	env.userSvc = NewUserService(env.users, log)
	env.referrals = NewReferralService(env.users, repositories.NewReferralRepo(env.store, env.keys), env.publisher, env.cfg.EventsChannel, log)
	env.tasks = NewTaskService(env.users, env.catalog, log)
	env.sessions = NewSessionService(repositories.NewSessionRepo(env.store, env.keys), env.cfg.SessionTTL)
	env.waitlist = NewWaitlistService(env.users, env.userSvc, env.referrals, env.tasks, env.sessions, env.catalog, env.publisher, env.cfg, log)
	return env
}

func (e *testEnv) mustCreate(t *testing.T, wallet, twitter string) *models.User {
	t.Helper()
	u, _, err := e.userSvc.ResolveOrCreate(context.Background(), wallet, twitter)
	if err != nil {
		t.Fatalf("ResolveOrCreate(%s, %s): %v", wallet, twitter, err)
	}
	return u
}

func (e *testEnv) reload(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.users.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID(%s): %v", id, err)
	}
	return u
}

// assertTotals checks the stored task bonus against a recomputation and the
// total against its components.
func assertTotals(t *testing.T, u *models.User, cat *catalog.Catalog) {
	t.Helper()
	if want := cat.Bonus(u.TaskClaims); u.TaskBonusEntries != want {
		t.Errorf("cached task bonus %d != recomputed %d", u.TaskBonusEntries, want)
	}
	stats := BuildStats(u, cat)
	if want := u.BaseEntries + stats.TaskBonusEntries + u.ReferralBonusEntries; stats.TotalEntries != want {
		t.Errorf("total %d != base+task+referral %d", stats.TotalEntries, want)
	}
}

func hex40(c string) string {
	return "0x" + strings.Repeat(c, 40)
}

// failOnce matches the first op on a key starting with prefix, for MemoryStore.FailOn.
func failOnce(op, prefix string) func(string, string) bool {
	done := false
	return func(gotOp, key string) bool {
		if done || gotOp != op || !strings.HasPrefix(key, prefix) {
			return false
		}
		done = true
		return true
	}
}
