package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestTwitterHandle(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{"alice", "alice", ""},
		{"  @Alice_99 ", "Alice_99", ""},
		{"", "", "required"},
		{"@", "", "required"},
		{"abcdefghijklmnop", "abcdefghijklmnop", "between 1 and 15"},
		{"al-ice", "al-ice", "letters, numbers"},
		{"@@alice", "@alice", "letters, numbers"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := TwitterHandle(tt.in)
			if got != tt.want {
				t.Errorf("TwitterHandle(%q) = %q, want %q", tt.in, got, tt.want)
			}
			checkErr(t, err, "twitter", tt.wantErr)
		})
	}
}

func TestWalletAddress(t *testing.T) {
	valid := "0x" + strings.Repeat("aB", 20)
	tests := []struct {
		in      string
		want    string
		wantErr string
	}{
		{valid, strings.ToLower(valid), ""},
		{"  " + valid + "\n", strings.ToLower(valid), ""},
		{"", "", "required"},
		{strings.Repeat("a", 42), strings.Repeat("a", 42), "start with 0x"},
		{"0x1234", "0x1234", "42 characters"},
		{"0x" + strings.Repeat("g", 40), "0x" + strings.Repeat("g", 40), "invalid characters"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := WalletAddress(tt.in)
			if got != tt.want {
				t.Errorf("WalletAddress(%q) = %q, want %q", tt.in, got, tt.want)
			}
			checkErr(t, err, "wallet", tt.wantErr)
		})
	}
}

func checkErr(t *testing.T, err error, field, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	var fe *FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldError, got %v", err)
	}
	if fe.Field != field {
		t.Errorf("expected field %q, got %q", field, fe.Field)
	}
	if !strings.Contains(fe.Reason, want) {
		t.Errorf("expected reason containing %q, got %q", want, fe.Reason)
	}
}
