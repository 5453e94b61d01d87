package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/fliproyale/waitlist/internal/repositories"
)

func TestResolveOrCreate_NewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, created, err := env.userSvc.ResolveOrCreate(ctx, walletA, "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created=true")
	}
	if u.ID == "" || u.ReferralCode == "" {
		t.Fatalf("expected id and referral code, got %+v", u)
	}
	if u.BaseEntries != 1 || u.ReferralBonusEntries != 0 || u.ReferralsCount != 0 || len(u.TaskClaims) != 0 {
		t.Errorf("unexpected initial counters: %+v", u)
	}
	assertTotals(t, u, env.catalog)

	for name, lookup := range map[string]func() (string, bool, error){
		"wallet":  func() (string, bool, error) { return env.users.IDByWallet(ctx, walletA) },
		"twitter": func() (string, bool, error) { return env.users.IDByTwitter(ctx, "alice") },
		"code":    func() (string, bool, error) { return env.users.IDByReferralCode(ctx, u.ReferralCode) },
	} {
		id, found, err := lookup()
		if err != nil || !found || id != u.ID {
			t.Errorf("%s index: got id=%q found=%v err=%v", name, id, found, err)
		}
	}
}

func TestResolveOrCreate_UniqueReferralCodes(t *testing.T) {
	env := newTestEnv(t)
	seen := map[string]bool{}
	for i, c := range []string{"1", "2", "3", "4", "5", "6", "7", "8"} {
		u := env.mustCreate(t, hex40(c), "user"+c)
		if seen[u.ReferralCode] {
			t.Fatalf("user %d got duplicate referral code %q", i, u.ReferralCode)
		}
		seen[u.ReferralCode] = true
	}
}

func TestResolveOrCreate_Idempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first := env.mustCreate(t, walletA, "alice")
	second, created, err := env.userSvc.ResolveOrCreate(ctx, "  0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA ", "@Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected created=false on re-signup")
	}
	if second.ID != first.ID {
		t.Errorf("expected same id %s, got %s", first.ID, second.ID)
	}
	if second.ReferralCode != first.ReferralCode {
		t.Errorf("referral code changed on re-signup: %s -> %s", first.ReferralCode, second.ReferralCode)
	}
}

func TestResolveOrCreate_Conflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustCreate(t, walletA, "alice")
	b := env.mustCreate(t, walletB, "bob")
	beforeA, beforeB := env.reload(t, a.ID), env.reload(t, b.ID)

	_, _, err := env.userSvc.ResolveOrCreate(ctx, walletA, "bob")
	if !errors.Is(err, ErrIdentityConflict) {
		t.Fatalf("expected ErrIdentityConflict, got %v", err)
	}

	if got := env.reload(t, a.ID); !reflect.DeepEqual(got, beforeA) {
		t.Errorf("user A mutated: %+v -> %+v", beforeA, got)
	}
	if got := env.reload(t, b.ID); !reflect.DeepEqual(got, beforeB) {
		t.Errorf("user B mutated: %+v -> %+v", beforeB, got)
	}
}

func TestResolveOrCreate_MergeCorrectsHandle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a := env.mustCreate(t, walletA, "alcie")
	fixed, created, err := env.userSvc.ResolveOrCreate(ctx, walletA, "alice")
	if err != nil || created {
		t.Fatalf("expected merge, got created=%v err=%v", created, err)
	}
	if fixed.ID != a.ID || fixed.Twitter != "alice" {
		t.Fatalf("expected handle corrected on same user, got %+v", fixed)
	}

	if id, found, _ := env.users.IDByTwitter(ctx, "alice"); !found || id != a.ID {
		t.Errorf("new handle not indexed")
	}
	if _, found, _ := env.users.IDByTwitter(ctx, "alcie"); found {
		t.Errorf("old handle still indexed")
	}

	// The freed handle can be taken by someone else.
	c := env.mustCreate(t, walletC, "alcie")
	if c.ID == a.ID {
		t.Error("expected a distinct user for the freed handle")
	}
}

func TestResolveOrCreate_MergeByHandleUpdatesWallet(t *testing.T) {
	env := newTestEnv(t)
	a := env.mustCreate(t, walletA, "alice")
	moved := env.mustCreate(t, walletB, "alice")
	if moved.ID != a.ID || moved.Wallet != walletB {
		t.Fatalf("expected wallet update on same user, got %+v", moved)
	}
}

func TestResolveOrCreate_ReferralCodeCollisionFallback(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.store.Set(ctx, env.keys.ReferralCode("taken"), "someone", 0); err != nil {
		t.Fatal(err)
	}
	calls := 0
	env.userSvc.newCode = func() (string, error) {
		calls++
		return "taken", nil
	}
	env.userSvc.newID = func() string { return "0123456789ab-cdef-0000-0000-000000000000" }

	u, _, err := env.userSvc.ResolveOrCreate(ctx, walletA, "alice")
	if err != nil {
		t.Fatalf("collisions must not fail signup: %v", err)
	}
	if calls != referralCodeAttempts {
		t.Errorf("expected %d attempts, got %d", referralCodeAttempts, calls)
	}
	if u.ReferralCode != "0123456789" {
		t.Errorf("expected uuid-derived fallback code, got %q", u.ReferralCode)
	}
}

func TestResolveOrCreate_LostRaceResolvesToWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	winner := env.mustCreate(t, walletA, "alice")

	// Simulate a request that read "not found" before the winner indexed:
	// its create-if-absent reservation must fail and it must not clobber the index.
	ok, err := env.users.ReserveWallet(ctx, walletA, "loser")
	if err != nil || ok {
		t.Fatalf("expected reservation to fail, got ok=%v err=%v", ok, err)
	}
	if id, _, _ := env.users.IDByWallet(ctx, walletA); id != winner.ID {
		t.Errorf("wallet index clobbered: %s", id)
	}
}

func TestResolveOrCreate_RetryAfterPartialFailure(t *testing.T) {
	keys := repositories.NewKeys("waitlist")

	tests := []struct {
		name   string
		op     string
		prefix string
	}{
		{"twitter reservation", "setnx", keys.Twitter("")},
		{"referral code probe", "exists", keys.ReferralCode("")},
		{"record write", "set", keys.User("")},
		{"wallet index write", "set", keys.Wallet("")},
		{"referral code index write", "set", keys.ReferralCode("")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			env.store.FailOn(failOnce(tt.op, tt.prefix))

			_, _, err := env.userSvc.ResolveOrCreate(ctx, walletA, "alice")
			if !errors.Is(err, ErrStorageUnavailable) {
				t.Fatalf("expected ErrStorageUnavailable, got %v", err)
			}
			if env.store.Len() != 0 {
				t.Errorf("failed signup left %d keys behind", env.store.Len())
			}

			u, created, err := env.userSvc.ResolveOrCreate(ctx, walletA, "alice")
			if err != nil || !created {
				t.Fatalf("retry: created=%v err=%v", created, err)
			}
			if id, _, _ := env.users.IDByWallet(ctx, walletA); id != u.ID {
				t.Errorf("wallet index = %q, want %q", id, u.ID)
			}
			if id, _, _ := env.users.IDByTwitter(ctx, "alice"); id != u.ID {
				t.Errorf("twitter index = %q, want %q", id, u.ID)
			}
		})
	}
}

func TestResolveOrCreate_LostTwitterKeepsOwner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Another signup holds the handle but has not indexed its wallet yet.
	if ok, err := env.users.ReserveTwitter(ctx, "alice", "in-flight"); err != nil || !ok {
		t.Fatalf("ReserveTwitter: ok=%v err=%v", ok, err)
	}
	env.userSvc.newID = func() string { return "contender" }
	if _, won, err := env.userSvc.create(ctx, walletA, "alice"); err != nil || won {
		t.Fatalf("expected lost reservation, got won=%v err=%v", won, err)
	}
	if id, _, _ := env.users.IDByTwitter(ctx, "alice"); id != "in-flight" {
		t.Errorf("twitter reservation of the other signup removed: %q", id)
	}
	if _, found, _ := env.users.IDByWallet(ctx, walletA); found {
		t.Error("wallet reservation not released after losing the handle")
	}
}

func TestResolveOrCreate_StorageUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.store.FailWith(errors.New("dial tcp: connection refused"))

	_, _, err := env.userSvc.ResolveOrCreate(context.Background(), walletA, "alice")
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestNormalize(t *testing.T) {
	if got := NormalizeTwitter("  @@Alice "); got != "@alice" {
		t.Errorf("NormalizeTwitter strips exactly one @, got %q", got)
	}
	if got := NormalizeWallet(" 0xABC "); got != "0xabc" {
		t.Errorf("NormalizeWallet = %q", got)
	}
}
