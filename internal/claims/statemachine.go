package claims

import "github.com/aidanjnn/lost-found-app/pkg/enums"

var transitions = map[enums.ClaimStatus][]enums.ClaimStatus{
	enums.ClaimStatusPending:  {enums.ClaimStatusApproved, enums.ClaimStatusRejected},
	enums.ClaimStatusApproved: {enums.ClaimStatusRejected, enums.ClaimStatusPickedUp},
	enums.ClaimStatusRejected: {enums.ClaimStatusApproved},
}

// CanTransition reports whether staff may move a claim from one status to
// another. picked_up has no outgoing edges.
func CanTransition(from, to enums.ClaimStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
