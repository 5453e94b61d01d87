package services

import "strings"

// NormalizeTwitter trims, drops a single leading "@" and lowercases.
func NormalizeTwitter(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}

// NormalizeWallet trims and lowercases.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}
