package enums

import "fmt"

// ActivityAction names an audited action in the activity log.
type ActivityAction string

const (
	ActivityItemAdded     ActivityAction = "item_added"
	ActivityItemUpdated   ActivityAction = "item_updated"
	ActivityItemDeleted   ActivityAction = "item_deleted"
	ActivityClaimCreated  ActivityAction = "claim_created"
	ActivityClaimApproved ActivityAction = "claim_approved"
	ActivityClaimRejected ActivityAction = "claim_rejected"
	ActivityClaimPickedUp ActivityAction = "claim_picked_up"
)

var validActivityActions = []ActivityAction{
	ActivityItemAdded,
	ActivityItemUpdated,
	ActivityItemDeleted,
	ActivityClaimCreated,
	ActivityClaimApproved,
	ActivityClaimRejected,
	ActivityClaimPickedUp,
}

// IsValid reports whether the value is a known ActivityAction.
func (a ActivityAction) IsValid() bool {
	for _, candidate := range validActivityActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseActivityAction converts raw input into an ActivityAction.
func ParseActivityAction(value string) (ActivityAction, error) {
	for _, candidate := range validActivityActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid activity action %q", value)
}

// ActivityActionForClaimStatus maps a staff transition target to its audit action.
func ActivityActionForClaimStatus(status ClaimStatus) ActivityAction {
	switch status {
	case ClaimStatusApproved:
		return ActivityClaimApproved
	case ClaimStatusRejected:
		return ActivityClaimRejected
	case ClaimStatusPickedUp:
		return ActivityClaimPickedUp
	default:
		return ""
	}
}
