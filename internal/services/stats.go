package services

import (
	"github.com/fliproyale/waitlist/internal/catalog"
	"github.com/fliproyale/waitlist/internal/models"
)

// BuildStats derives the read view of user. The task bonus is recomputed
// against the current catalog; the cached TaskBonusEntries is ignored.
func BuildStats(user *models.User, cat *catalog.Catalog) models.Stats {
	taskBonus := cat.Bonus(user.TaskClaims)

	claims := make(map[string]string, len(user.TaskClaims))
	for id, at := range user.TaskClaims {
		claims[id] = at
	}

	return models.Stats{
		Wallet:               user.Wallet,
		Twitter:              user.Twitter,
		ReferralCode:         user.ReferralCode,
		ReferralsCount:       user.ReferralsCount,
		ReferralBonusEntries: user.ReferralBonusEntries,
		TaskClaims:           claims,
		TaskBonusEntries:     taskBonus,
		BaseEntries:          user.BaseEntries,
		TotalEntries:         user.BaseEntries + taskBonus + user.ReferralBonusEntries,
	}
}
