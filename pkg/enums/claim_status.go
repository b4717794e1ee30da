package enums

import (
	"fmt"
	"strings"
)

// ClaimStatus tracks a claim through staff adjudication.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "pending"
	ClaimStatusApproved ClaimStatus = "approved"
	ClaimStatusRejected ClaimStatus = "rejected"
	ClaimStatusPickedUp ClaimStatus = "picked_up"
)

var validClaimStatuses = []ClaimStatus{
	ClaimStatusPending,
	ClaimStatusApproved,
	ClaimStatusRejected,
	ClaimStatusPickedUp,
}

// ResolvedClaimStatuses hold the item; at most one claim per item may be in one.
var ResolvedClaimStatuses = []ClaimStatus{ClaimStatusApproved, ClaimStatusPickedUp}

// OpenClaimStatuses block the same claimant from filing again on the item.
var OpenClaimStatuses = []ClaimStatus{ClaimStatusPending, ClaimStatusApproved}

// ClaimStatuses lists every known status.
func ClaimStatuses() []ClaimStatus {
	out := make([]ClaimStatus, len(validClaimStatuses))
	copy(out, validClaimStatuses)
	return out
}

// String implements fmt.Stringer.
func (s ClaimStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ClaimStatus.
func (s ClaimStatus) IsValid() bool {
	for _, candidate := range validClaimStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsResolved reports whether the claim currently holds its item.
func (s ClaimStatus) IsResolved() bool {
	return s == ClaimStatusApproved || s == ClaimStatusPickedUp
}

// IsOpen reports whether the claim is still live for its claimant.
func (s ClaimStatus) IsOpen() bool {
	return s == ClaimStatusPending || s == ClaimStatusApproved
}

// IsTerminal reports whether no further transitions are allowed.
func (s ClaimStatus) IsTerminal() bool {
	return s == ClaimStatusPickedUp
}

// ParseClaimStatus converts raw input into a ClaimStatus. Matching ignores case
// and surrounding whitespace.
func ParseClaimStatus(value string) (ClaimStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validClaimStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid claim status %q", value)
}
