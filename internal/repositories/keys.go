package repositories

import "strings"

// Keys builds store keys under a common prefix, e.g. waitlist:user:<id>.
type Keys struct {
	prefix string
}

func NewKeys(prefix string) Keys {
	return Keys{prefix: strings.TrimSuffix(prefix, ":")}
}

func (k Keys) join(parts ...string) string {
	if k.prefix == "" {
		return strings.Join(parts, ":")
	}
	return k.prefix + ":" + strings.Join(parts, ":")
}

func (k Keys) User(id string) string              { return k.join("user", id) }
func (k Keys) Wallet(wallet string) string        { return k.join("wallet", wallet) }
func (k Keys) Twitter(handle string) string       { return k.join("twitter", handle) }
func (k Keys) ReferralCode(code string) string    { return k.join("refcode", code) }
func (k Keys) Session(token string) string        { return k.join("session", token) }
func (k Keys) LegacyTasks(username string) string { return k.join("legacy", "tasks", username) }

func (k Keys) ReferralEdge(referrerID, userID string) string {
	return k.join("ref", referrerID, userID)
}
