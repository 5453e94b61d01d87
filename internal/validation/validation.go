// Package validation checks signup fields before they reach the waitlist core.
package validation

import (
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var handleRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// FieldError is a rejected field with a human readable reason.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// TwitterHandle strips a leading "@" and checks the X/Twitter username rules.
// The returned value keeps its original case.
func TwitterHandle(raw string) (string, error) {
	cleaned := strings.TrimPrefix(strings.TrimSpace(raw), "@")

	if cleaned == "" {
		return "", &FieldError{Field: "twitter", Reason: "Twitter username is required"}
	}
	if len(cleaned) > 15 {
		return cleaned, &FieldError{Field: "twitter", Reason: "Twitter username must be between 1 and 15 characters"}
	}
	if !handleRe.MatchString(cleaned) {
		return cleaned, &FieldError{Field: "twitter", Reason: "Twitter username can only contain letters, numbers, and underscores"}
	}
	return cleaned, nil
}

// WalletAddress checks an EVM address (0x + 40 hex) and returns it lowercased.
func WalletAddress(raw string) (string, error) {
	cleaned := strings.TrimSpace(raw)

	if cleaned == "" {
		return "", &FieldError{Field: "wallet", Reason: "Wallet address is required"}
	}
	if !strings.HasPrefix(cleaned, "0x") {
		return cleaned, &FieldError{Field: "wallet", Reason: "Wallet address must start with 0x"}
	}
	if len(cleaned) != 2+2*common.AddressLength {
		return cleaned, &FieldError{Field: "wallet", Reason: "Wallet address must be 42 characters long (0x + 40 hex digits)"}
	}
	if !common.IsHexAddress(cleaned) {
		return cleaned, &FieldError{Field: "wallet", Reason: "Wallet address contains invalid characters (must be hexadecimal)"}
	}
	return strings.ToLower(cleaned), nil
}
