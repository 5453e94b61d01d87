package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fliproyale/waitlist/internal/models"
	"github.com/fliproyale/waitlist/internal/store"
)

var ErrNotFound = errors.New("not found")

var errUnchanged = errors.New("user unchanged")

// UserRepo persists user records and their wallet / twitter / referral-code
// secondary indexes. It is the identity lookup side of the waitlist: every
// lookup is an exact match on already-normalized strings.
type UserRepo struct {
	store store.Store
	keys  Keys
}

func NewUserRepo(s store.Store, keys Keys) *UserRepo {
	return &UserRepo{store: s, keys: keys}
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	raw, found, err := r.store.Get(ctx, r.keys.User(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}
	return decodeUser(id, raw)
}

func (r *UserRepo) IDByWallet(ctx context.Context, wallet string) (string, bool, error) {
	return r.lookup(ctx, r.keys.Wallet(wallet))
}

func (r *UserRepo) IDByTwitter(ctx context.Context, handle string) (string, bool, error) {
	return r.lookup(ctx, r.keys.Twitter(handle))
}

func (r *UserRepo) IDByReferralCode(ctx context.Context, code string) (string, bool, error) {
	return r.lookup(ctx, r.keys.ReferralCode(code))
}

func (r *UserRepo) ReferralCodeTaken(ctx context.Context, code string) (bool, error) {
	return r.store.Exists(ctx, r.keys.ReferralCode(code))
}

// ReserveWallet claims the wallet index for id only if no user owns it yet.
func (r *UserRepo) ReserveWallet(ctx context.Context, wallet, id string) (bool, error) {
	return r.store.SetNX(ctx, r.keys.Wallet(wallet), id, 0)
}

// ReserveTwitter claims the twitter index for id only if no user owns it yet.
func (r *UserRepo) ReserveTwitter(ctx context.Context, handle, id string) (bool, error) {
	return r.store.SetNX(ctx, r.keys.Twitter(handle), id, 0)
}

// Save writes the record and then its three secondary index entries.
func (r *UserRepo) Save(ctx context.Context, u *models.User) error {
	data, err := encodeUser(u)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.keys.User(u.ID), data, 0); err != nil {
		return err
	}
	return r.Index(ctx, u)
}

// Update applies fn to the stored record of id in a single-key optimistic
// write. fn reports whether it changed the record; nothing is written when it
// did not. Secondary indexes are not touched: callers that change the wallet
// or twitter call Index afterwards. fn may run more than once.
func (r *UserRepo) Update(ctx context.Context, id string, fn func(u *models.User) (bool, error)) (*models.User, bool, error) {
	var updated *models.User
	err := r.store.Update(ctx, r.keys.User(id), func(current string, found bool) (string, error) {
		if !found {
			return "", ErrNotFound
		}
		u, err := decodeUser(id, current)
		if err != nil {
			return "", err
		}
		changed, err := fn(u)
		if err != nil {
			return "", err
		}
		updated = u
		if !changed {
			return "", errUnchanged
		}
		return encodeUser(u)
	})
	if errors.Is(err, errUnchanged) {
		return updated, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return updated, true, nil
}

// Index points the wallet, twitter and referral code index entries at u.
func (r *UserRepo) Index(ctx context.Context, u *models.User) error {
	if err := r.store.Set(ctx, r.keys.Wallet(u.Wallet), u.ID, 0); err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.keys.Twitter(u.Twitter), u.ID, 0); err != nil {
		return err
	}
	if u.ReferralCode != "" {
		if err := r.store.Set(ctx, r.keys.ReferralCode(u.ReferralCode), u.ID, 0); err != nil {
			return err
		}
	}
	return nil
}

func (r *UserRepo) lookup(ctx context.Context, key string) (string, bool, error) {
	id, found, err := r.store.Get(ctx, key)
	if err != nil || !found || id == "" {
		return "", false, err
	}
	return id, true, nil
}

// UnindexWallet removes a wallet index entry if it still points at id.
func (r *UserRepo) UnindexWallet(ctx context.Context, wallet, id string) error {
	return r.unindex(ctx, r.keys.Wallet(wallet), id)
}

// Discard undoes a signup that never completed: index entries still owned by
// u are removed along with the record. Every step is attempted.
func (r *UserRepo) Discard(ctx context.Context, u *models.User) error {
	errs := []error{
		r.UnindexWallet(ctx, u.Wallet, u.ID),
		r.UnindexTwitter(ctx, u.Twitter, u.ID),
	}
	if u.ReferralCode != "" {
		errs = append(errs, r.unindex(ctx, r.keys.ReferralCode(u.ReferralCode), u.ID))
	}
	errs = append(errs, r.store.Del(ctx, r.keys.User(u.ID)))
	return errors.Join(errs...)
}

// UnindexTwitter removes a twitter index entry if it still points at id.
func (r *UserRepo) UnindexTwitter(ctx context.Context, handle, id string) error {
	return r.unindex(ctx, r.keys.Twitter(handle), id)
}

func (r *UserRepo) unindex(ctx context.Context, key, id string) error {
	owner, found, err := r.store.Get(ctx, key)
	if err != nil || !found || owner != id {
		return err
	}
	return r.store.Del(ctx, key)
}

func decodeUser(id, raw string) (*models.User, error) {
	var u models.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	if u.TaskClaims == nil {
		u.TaskClaims = map[string]string{}
	}
	return &u, nil
}

func encodeUser(u *models.User) (string, error) {
	data, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("encode user %s: %w", u.ID, err)
	}
	return string(data), nil
}
