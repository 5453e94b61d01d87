package models

// Entry grants.
const (
	BaseEntries         = 1
	ReferralBonusReward = 2
)

// User is the waitlist record stored as JSON under waitlist:user:<id>.
type User struct {
	ID                   string            `json:"id"`
	Wallet               string            `json:"wallet"`  // lowercase 0x-hex
	Twitter              string            `json:"twitter"` // lowercase, no leading @
	ReferralCode         string            `json:"referral_code"`
	ReferredBy           string            `json:"referred_by,omitempty"` // referrer user id, set once
	ReferralsCount       int               `json:"referrals_count"`
	ReferralBonusEntries int               `json:"referral_bonus_entries"`
	TaskClaims           map[string]string `json:"task_claims"` // task id -> RFC3339 claim time
	TaskBonusEntries     int               `json:"task_bonus_entries"`
	BaseEntries          int               `json:"base_entries"`
}

// HasClaimed reports whether taskID is already in the claims map.
func (u *User) HasClaimed(taskID string) bool {
	_, ok := u.TaskClaims[taskID]
	return ok
}

// Stats is the read view of a user. TotalEntries is always derived.
type Stats struct {
	Wallet               string            `json:"wallet"`
	Twitter              string            `json:"twitter"`
	ReferralCode         string            `json:"referral_code"`
	ReferralsCount       int               `json:"referrals_count"`
	ReferralBonusEntries int               `json:"referral_bonus_entries"`
	TaskClaims           map[string]string `json:"task_claims"`
	TaskBonusEntries     int               `json:"task_bonus_entries"`
	BaseEntries          int               `json:"base_entries"`
	TotalEntries         int               `json:"total_entries"`
}

// LegacyStats is the per-username view without wallet or referral linkage.
type LegacyStats struct {
	Username       string   `json:"username"`
	CompletedTasks []string `json:"completed_tasks"`
	CompletedCount int64    `json:"completed_count"`
	TaskBonus      int      `json:"task_bonus_entries"`
	TotalEntries   int      `json:"total_entries"`
}
