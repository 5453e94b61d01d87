package dto

// SignupRequest accepts both the short field names and the form's long ones.
type SignupRequest struct {
	Wallet          string `json:"wallet"`
	WalletAddress   string `json:"wallet_address"`
	Twitter         string `json:"twitter"`
	TwitterUsername string `json:"twitter_username"`
	ReferredBy      string `json:"referred_by"`
	ReferredByCamel string `json:"referredBy"`
}

func (r SignupRequest) WalletValue() string  { return firstSet(r.Wallet, r.WalletAddress) }
func (r SignupRequest) TwitterValue() string { return firstSet(r.Twitter, r.TwitterUsername) }
func (r SignupRequest) ReferralCode() string { return firstSet(r.ReferredBy, r.ReferredByCamel) }

type ClaimTaskRequest struct {
	TaskID      string `json:"task_id"`
	TaskIDCamel string `json:"taskId"`
}

func (r ClaimTaskRequest) Task() string { return firstSet(r.TaskID, r.TaskIDCamel) }

func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
