package enums

import (
	"fmt"
	"strings"
)

// ItemStatus describes catalog visibility of a found item.
type ItemStatus string

const (
	ItemStatusUnclaimed ItemStatus = "unclaimed"
	ItemStatusClaimed   ItemStatus = "claimed"
	ItemStatusDeleted   ItemStatus = "deleted"
)

var validItemStatuses = []ItemStatus{
	ItemStatusUnclaimed,
	ItemStatusClaimed,
	ItemStatusDeleted,
}

// String implements fmt.Stringer.
func (s ItemStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ItemStatus.
func (s ItemStatus) IsValid() bool {
	for _, candidate := range validItemStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseItemStatus converts raw input into an ItemStatus.
func ParseItemStatus(value string) (ItemStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validItemStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid item status %q", value)
}
