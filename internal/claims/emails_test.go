package claims

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEmailKinds(t *testing.T) {
	id := uuid.MustParse("6f1c2a1e-2d7b-4f43-9a55-3c1a4c2b9e10")
	for kind, subject := range emailSubjects {
		msg, err := renderEmail("alice@uwaterloo.ca", emailData{
			Kind:           kind,
			ClaimantName:   "Alice",
			ClaimID:        id,
			Item:           "Blue backpack",
			PickupLocation: "Student Life Centre (SLC)",
		})
		require.NoError(t, err, kind)
		assert.Equal(t, subject, msg.Subject)
		assert.Contains(t, msg.Text, "Hi Alice,")
		assert.Contains(t, msg.Text, "Claim ID: #"+id.String())
		assert.Contains(t, msg.Text, "Please do not reply to this email.")
		assert.Contains(t, msg.HTML, "Blue backpack")
	}
}

func TestRenderEmailEscapesHTML(t *testing.T) {
	msg, err := renderEmail("bob@uwaterloo.ca", emailData{
		Kind:         emailRejected,
		ClaimantName: "<b>Bob</b>",
		StaffNotes:   "<script>alert(1)</script>",
	})
	require.NoError(t, err)
	assert.NotContains(t, msg.HTML, "<script>")
	assert.Contains(t, msg.Text, "Staff Notes: <script>alert(1)</script>")
}

func TestRenderEmailApprovedIncludesPickup(t *testing.T) {
	msg, err := renderEmail("alice@uwaterloo.ca", emailData{Kind: emailApproved, ClaimantName: "Alice", PickupLocation: "Columbia Icefield (CIF)"})
	require.NoError(t, err)
	assert.Contains(t, msg.Text, "PICKUP LOCATION: Columbia Icefield (CIF)")
	assert.Contains(t, msg.Text, "Valid student ID or government-issued photo ID")
}

func TestRenderEmailUnknownKind(t *testing.T) {
	_, err := renderEmail("alice@uwaterloo.ca", emailData{Kind: "lost"})
	assert.Error(t, err)
}
