package claims

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/internal/activity"
	"github.com/aidanjnn/lost-found-app/internal/items"
	"github.com/aidanjnn/lost-found-app/internal/notifications"
	"github.com/aidanjnn/lost-found-app/internal/users"
	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/db"
	"github.com/aidanjnn/lost-found-app/pkg/db/dbtest"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
	"github.com/aidanjnn/lost-found-app/pkg/mailer"
	"github.com/aidanjnn/lost-found-app/pkg/metrics"
)

type stubNotifier struct {
	mu   sync.Mutex
	sent []notifications.Message
	err  error
}

func (s *stubNotifier) Notify(_ context.Context, msg notifications.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *stubMailer) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type stubActivity struct {
	mu      sync.Mutex
	entries []activity.Entry
}

func (s *stubActivity) Record(_ context.Context, entry activity.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
}

type fixture struct {
	svc      Service
	conn     *gorm.DB
	notifier *stubNotifier
	mail     *stubMailer
	activity *stubActivity
	registry *prometheus.Registry
	staff    auth.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	client, conn := dbtest.Client(t)
	return buildFixture(t, client, conn)
}

func buildFixture(t *testing.T, client *db.Client, conn *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{
		conn:     conn,
		notifier: &stubNotifier{},
		mail:     &stubMailer{},
		activity: &stubActivity{},
		registry: prometheus.NewRegistry(),
	}
	svc, err := NewService(Deps{
		Tx:       client,
		Repo:     NewRepository(conn),
		Items:    items.NewRepository(conn),
		Users:    users.NewRepository(conn),
		Notifier: f.notifier,
		Mailer:   f.mail,
		Activity: f.activity,
		Metrics:  metrics.NewClaimMetrics(f.registry),
		Logger:   logger.Nop(),
	})
	require.NoError(t, err)
	f.svc = svc
	f.staff = f.user(t, "desk@uwaterloo.ca", "Desk Staff", enums.UserRoleStaff)
	return f
}

func (f *fixture) user(t *testing.T, email, name string, role enums.UserRole) auth.Actor {
	t.Helper()
	u, err := users.NewRepository(f.conn).Create(context.Background(), users.CreateUserDTO{Email: email, Name: name, Role: role})
	require.NoError(t, err)
	return auth.Actor{UserID: u.ID, Role: u.Role}
}

func (f *fixture) item(t *testing.T, description string) models.Item {
	t.Helper()
	desc := description
	item := models.Item{
		ID:            uuid.New(),
		Name:          "Found item",
		Description:   &desc,
		Category:      "electronics",
		LocationFound: "MC 4020",
		PickupAt:      enums.PickupLocationSLC,
		FoundByDesk:   "SLC Turnkey",
		DateFound:     time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC),
		Status:        enums.ItemStatusUnclaimed,
	}
	require.NoError(t, f.conn.Create(&item).Error)
	return item
}

func (f *fixture) submit(t *testing.T, actor auth.Actor, itemID uuid.UUID) *models.Claim {
	t.Helper()
	claim, err := f.svc.Submit(context.Background(), actor, SubmitInput{ItemID: itemID, VerificationText: "Black case, cracked corner"})
	require.NoError(t, err)
	return claim
}

func (f *fixture) transition(actor auth.Actor, claimID uuid.UUID, status string, notes *string) (*TransitionResult, error) {
	return f.svc.Transition(context.Background(), actor, TransitionInput{ClaimID: claimID, Status: status, StaffNotes: notes})
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) models.Claim {
	t.Helper()
	var claim models.Claim
	require.NoError(t, f.conn.First(&claim, "id = ?", id).Error)
	return claim
}

func (f *fixture) reset() {
	f.notifier.sent = nil
	f.mail.sent = nil
	f.activity.entries = nil
}

func strPtr(s string) *string { return &s }

func TestSubmitCreatesPendingClaimWithSnapshot(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "iPhone 13")

	claim, err := f.svc.Submit(context.Background(), alice, SubmitInput{
		ItemID:           item.ID,
		VerificationText: "  Lock screen is a photo of my dog  ",
		Phone:            strPtr(" 519-555-0100 "),
	})
	require.NoError(t, err)

	stored := f.reload(t, claim.ID)
	assert.Equal(t, enums.ClaimStatusPending, stored.Status)
	assert.Equal(t, "Alice", stored.ClaimantName)
	assert.Equal(t, "alice@uwaterloo.ca", stored.ClaimantEmail)
	require.NotNil(t, stored.ClaimantPhone)
	assert.Equal(t, "519-555-0100", *stored.ClaimantPhone)
	assert.Equal(t, "Lock screen is a photo of my dog", stored.VerificationText)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Claim Submitted", f.notifier.sent[0].Title)
	assert.Equal(t, "Your claim for iPhone 13 was submitted and is pending review.", f.notifier.sent[0].Body)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "Claim Submitted - UW Lost & Found", f.mail.sent[0].Subject)
	assert.Equal(t, "alice@uwaterloo.ca", f.mail.sent[0].To)
	require.Len(t, f.activity.entries, 1)
	assert.Equal(t, enums.ActivityClaimCreated, f.activity.entries[0].Action)
}

func TestSubmitGuards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Water bottle")

	_, err := f.svc.Submit(ctx, auth.Actor{}, SubmitInput{ItemID: item.ID, VerificationText: "x"})
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))

	_, err = f.svc.Submit(ctx, alice, SubmitInput{ItemID: item.ID, VerificationText: "   "})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.svc.Submit(ctx, alice, SubmitInput{ItemID: uuid.New(), VerificationText: "mine"})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	deleted := f.item(t, "Umbrella")
	require.NoError(t, f.conn.Model(&models.Item{}).Where("id = ?", deleted.ID).Update("status", enums.ItemStatusDeleted).Error)
	_, err = f.svc.Submit(ctx, alice, SubmitInput{ItemID: deleted.ID, VerificationText: "mine"})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	first := f.submit(t, alice, item.ID)
	_, err = f.svc.Submit(ctx, alice, SubmitInput{ItemID: item.ID, VerificationText: "again"})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, first.ID, details["claim_id"])
	assert.Equal(t, enums.ClaimStatusPending, details["claim_status"])
}

func TestSubmitRejectedClaimantMayRefile(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Scarf")

	first := f.submit(t, alice, item.ID)
	_, err := f.transition(f.staff, first.ID, "rejected", strPtr("Colour does not match"))
	require.NoError(t, err)

	second := f.submit(t, alice, item.ID)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestSubmitOnResolvedItemConflicts(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Calculator")

	claim := f.submit(t, alice, item.ID)
	_, err := f.transition(f.staff, claim.ID, "approved", nil)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), bob, SubmitInput{ItemID: item.ID, VerificationText: "TI-84"})
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, enums.ClaimStatusApproved, details["claim_status"])
}

func TestApproveAutoRejectsCompetitors(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Blue backpack")

	a := f.submit(t, alice, item.ID)
	b := f.submit(t, bob, item.ID)
	require.NoError(t, f.conn.Model(&models.Claim{}).Where("id = ?", b.ID).Update("staff_notes", "Asked for receipt").Error)
	f.reset()

	result, err := f.transition(f.staff, a.ID, "approved", strPtr("Matched serial"))
	require.NoError(t, err)
	assert.Equal(t, enums.ClaimStatusApproved, result.NewStatus)
	assert.False(t, result.ItemUpdated)
	assert.Equal(t, []uuid.UUID{b.ID}, result.AutoRejected)

	approved := f.reload(t, a.ID)
	assert.Equal(t, enums.ClaimStatusApproved, approved.Status)
	assert.Equal(t, "Matched serial", *approved.StaffNotes)
	assert.Equal(t, f.staff.UserID, *approved.ProcessedByStaffID)

	rejected := f.reload(t, b.ID)
	assert.Equal(t, enums.ClaimStatusRejected, rejected.Status)
	assert.Equal(t, "Asked for receipt\n"+autoRejectNote, *rejected.StaffNotes)
	assert.Equal(t, f.staff.UserID, *rejected.ProcessedByStaffID)

	require.Len(t, f.notifier.sent, 2)
	auto := f.notifier.sent[0]
	assert.Equal(t, bob.UserID, auto.UserID)
	assert.Equal(t, "Claim Update", auto.Title)
	assert.Equal(t, true, auto.Metadata["auto"])
	primary := f.notifier.sent[1]
	assert.Equal(t, alice.UserID, primary.UserID)
	assert.Equal(t, "Claim Approved", primary.Title)
	assert.Equal(t, "Great news! Your claim for Blue backpack was approved.", primary.Body)

	require.Len(t, f.mail.sent, 2)
	assert.Equal(t, "❌ Claim Update - UW Lost & Found", f.mail.sent[0].Subject)
	assert.Equal(t, "✅ Claim Approved - UW Lost & Found", f.mail.sent[1].Subject)
	assert.Contains(t, f.mail.sent[1].Text, "Student Life Centre")

	actions := []enums.ActivityAction{}
	for _, e := range f.activity.entries {
		actions = append(actions, e.Action)
	}
	assert.ElementsMatch(t, []enums.ActivityAction{enums.ActivityClaimRejected, enums.ActivityClaimApproved}, actions)
}

func TestAutoRejectNoteOnEmptyNotes(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Keys")

	a := f.submit(t, alice, item.ID)
	b := f.submit(t, bob, item.ID)

	_, err := f.transition(f.staff, a.ID, "approved", nil)
	require.NoError(t, err)
	assert.Equal(t, autoRejectNote, *f.reload(t, b.ID).StaffNotes)
}

func TestApproveWhileAnotherApprovedConflicts(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Laptop")

	a := f.submit(t, alice, item.ID)
	b := f.submit(t, bob, item.ID)
	_, err := f.transition(f.staff, a.ID, "approved", nil)
	require.NoError(t, err)
	f.reset()

	// b was auto-rejected; re-approving it while a holds the item must fail.
	_, err = f.transition(f.staff, b.ID, "approved", nil)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))
	details := pkgerrors.As(err).Details().(map[string]any)
	assert.Equal(t, a.ID, details["existing_claim_id"])

	assert.Equal(t, enums.ClaimStatusRejected, f.reload(t, b.ID).Status)
	assert.Equal(t, enums.ClaimStatusApproved, f.reload(t, a.ID).Status)
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.mail.sent)
}

func TestReconsiderationAfterApprovalRevoked(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Headphones")

	a := f.submit(t, alice, item.ID)
	b := f.submit(t, bob, item.ID)
	_, err := f.transition(f.staff, a.ID, "approved", nil)
	require.NoError(t, err)

	_, err = f.transition(f.staff, a.ID, "rejected", strPtr("ID did not match"))
	require.NoError(t, err)

	result, err := f.transition(f.staff, b.ID, "approved", nil)
	require.NoError(t, err)
	assert.Empty(t, result.AutoRejected)
	assert.Equal(t, enums.ClaimStatusApproved, f.reload(t, b.ID).Status)
}

func TestPickupMarksItemClaimedAndIsFinal(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "")

	a := f.submit(t, alice, item.ID)
	_, err := f.transition(f.staff, a.ID, "approved", nil)
	require.NoError(t, err)
	f.reset()

	result, err := f.transition(f.staff, a.ID, "picked_up", nil)
	require.NoError(t, err)
	assert.True(t, result.ItemUpdated)

	var stored models.Item
	require.NoError(t, f.conn.First(&stored, "id = ?", item.ID).Error)
	assert.Equal(t, enums.ItemStatusClaimed, stored.Status)
	require.NotNil(t, stored.ClaimedAt)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "Claim Completed", f.notifier.sent[0].Title)
	assert.Equal(t, "Electronics item has been marked as picked up. Thank you!", f.notifier.sent[0].Body)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "✅ Item Picked Up - UW Lost & Found", f.mail.sent[0].Subject)

	for _, status := range []string{"rejected", "approved", "pending", "picked_up"} {
		_, err = f.transition(f.staff, a.ID, status, nil)
		assert.Equal(t, pkgerrors.CodeInvalidTransition, pkgerrors.CodeOf(err), status)
	}
	assert.Equal(t, enums.ClaimStatusPickedUp, f.reload(t, a.ID).Status)
}

func TestTransitionValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Wallet")
	a := f.submit(t, alice, item.ID)

	_, err := f.transition(alice, a.ID, "approved", nil)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = f.transition(f.staff, a.ID, "returned", nil)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = f.transition(f.staff, uuid.New(), "approved", nil)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = f.transition(f.staff, a.ID, "picked_up", nil)
	assert.Equal(t, pkgerrors.CodeInvalidTransition, pkgerrors.CodeOf(err))
	assert.Equal(t, enums.ClaimStatusPending, f.reload(t, a.ID).Status)
}

func TestTransitionSameStatusIsNoop(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Jacket")
	a := f.submit(t, alice, item.ID)
	_, err := f.transition(f.staff, a.ID, "Approved", nil)
	require.NoError(t, err)
	before := f.reload(t, a.ID)
	f.reset()

	result, err := f.transition(f.staff, a.ID, "approved", strPtr("second click"))
	require.NoError(t, err)
	assert.Equal(t, enums.ClaimStatusApproved, result.NewStatus)
	assert.Empty(t, result.AutoRejected)

	after := f.reload(t, a.ID)
	assert.Equal(t, before.StaffNotes, after.StaffNotes)
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.mail.sent)
	assert.Empty(t, f.activity.entries)
}

func TestSideEffectFailuresDoNotFailTransition(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Textbook")
	a := f.submit(t, alice, item.ID)

	f.notifier.err = errors.New("notifications table unavailable")
	f.mail.err = errors.New("smtp down")

	result, err := f.transition(f.staff, a.ID, "rejected", strPtr("Wrong edition"))
	require.NoError(t, err)
	assert.Equal(t, enums.ClaimStatusRejected, result.NewStatus)
	assert.Equal(t, enums.ClaimStatusRejected, f.reload(t, a.ID).Status)

	mfs, err := f.registry.Gather()
	require.NoError(t, err)
	failures := map[string]float64{}
	for _, mf := range mfs {
		if mf.GetName() != "claim_side_effect_failures_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			failures[m.GetLabel()[0].GetValue()] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, 1.0, failures["notification"])
	assert.Equal(t, 1.0, failures["email"])
}

func TestRejectedEmailCarriesStaffNotes(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Ring")
	a := f.submit(t, alice, item.ID)
	f.reset()

	_, err := f.transition(f.staff, a.ID, "rejected", strPtr("Engraving does not match"))
	require.NoError(t, err)
	require.Len(t, f.mail.sent, 1)
	assert.Contains(t, f.mail.sent[0].Text, "Staff Notes: Engraving does not match")
	assert.Contains(t, f.mail.sent[0].HTML, "Engraving does not match")
	assert.Equal(t, "Your claim for Ring was not approved. Please review staff notes for details.", f.notifier.sent[0].Body)
}

func TestGetAndListAccessControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Glasses")
	other := f.item(t, "Mug")

	a := f.submit(t, alice, item.ID)
	f.submit(t, bob, item.ID)
	f.submit(t, bob, other.ID)

	_, err := f.svc.Get(ctx, bob, a.ID)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	own, err := f.svc.Get(ctx, alice, a.ID)
	require.NoError(t, err)
	require.NotNil(t, own.Item)
	assert.Equal(t, item.ID, own.Item.ID)
	assert.Equal(t, enums.PickupLocationSLC, own.Item.PickupAt)

	_, err = f.svc.Get(ctx, f.staff, uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	aliceOnly := alice.UserID
	page, err := f.svc.List(ctx, bob, ListParams{ClaimantUserID: &aliceOnly})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, c := range page.Items {
		assert.Equal(t, bob.UserID, c.ClaimantUserID)
	}

	page, err = f.svc.List(ctx, f.staff, ListParams{ClaimantUserID: &aliceOnly})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, a.ID, page.Items[0].ID)

	itemID := item.ID
	page, err = f.svc.List(ctx, f.staff, ListParams{ItemID: &itemID, Status: "pending"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	_, err = f.svc.List(ctx, f.staff, ListParams{Status: "lost"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var want []uuid.UUID
	for i := 0; i < 5; i++ {
		student := f.user(t, "student"+string(rune('a'+i))+"@uwaterloo.ca", "Student", enums.UserRoleStudent)
		item := f.item(t, "Item")
		want = append([]uuid.UUID{f.submit(t, student, item.ID).ID}, want...)
	}

	var got []uuid.UUID
	cursor := ""
	for {
		page, err := f.svc.List(ctx, f.staff, ListParams{Limit: 2, Cursor: cursor})
		require.NoError(t, err)
		for _, c := range page.Items {
			got = append(got, c.ID)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	assert.Equal(t, want, got)
}

func TestCanTransition(t *testing.T) {
	allowed := map[string]bool{
		"pending>approved":   true,
		"pending>rejected":   true,
		"approved>rejected":  true,
		"approved>picked_up": true,
		"rejected>approved":  true,
	}
	for _, from := range enums.ClaimStatuses() {
		for _, to := range enums.ClaimStatuses() {
			key := strings.Join([]string{from.String(), to.String()}, ">")
			assert.Equal(t, allowed[key], CanTransition(from, to), key)
		}
	}
}

func TestReapproveRejectedClaimRejectsClaimantsRefiledClaim(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Bike lock")

	first := f.submit(t, alice, item.ID)
	_, err := f.transition(f.staff, first.ID, "rejected", strPtr("Key number not given"))
	require.NoError(t, err)
	refiled := f.submit(t, alice, item.ID)
	f.reset()

	result, err := f.transition(f.staff, first.ID, "approved", strPtr("Key number confirmed at desk"))
	require.NoError(t, err)
	assert.Equal(t, enums.ClaimStatusApproved, result.NewStatus)
	assert.Equal(t, []uuid.UUID{refiled.ID}, result.AutoRejected)

	assert.Equal(t, enums.ClaimStatusApproved, f.reload(t, first.ID).Status)
	assert.Equal(t, enums.ClaimStatusRejected, f.reload(t, refiled.ID).Status)
	assert.Equal(t, autoRejectNote, *f.reload(t, refiled.ID).StaffNotes)
}

func TestConcurrentApprovalsOnOneItemSerialize(t *testing.T) {
	client, conn := dbtest.ConcurrentClient(t, 4)
	f := buildFixture(t, client, conn)
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)
	item := f.item(t, "Laptop charger")

	a := f.submit(t, alice, item.ID)
	b := f.submit(t, bob, item.ID)

	start := make(chan struct{})
	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []uuid.UUID{a.ID, b.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			<-start
			_, errs[i] = f.transition(f.staff, id, "approved", nil)
		}(i, id)
	}
	close(start)
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case pkgerrors.IsCode(err, pkgerrors.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	var resolved int64
	require.NoError(t, conn.Model(&models.Claim{}).
		Where("item_id = ? AND status IN ?", item.ID, enums.ResolvedClaimStatuses).
		Count(&resolved).Error)
	assert.EqualValues(t, 1, resolved)
}

func TestProfileUpdateLeavesClaimSnapshotUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	item := f.item(t, "Student card")
	claim := f.submit(t, alice, item.ID)

	usersSvc, err := users.NewService(users.NewRepository(f.conn))
	require.NoError(t, err)
	_, err = usersSvc.UpdateProfile(ctx, alice.UserID, users.UpdateProfileInput{
		Name:  strPtr("Alice Renamed"),
		Email: strPtr("a.renamed@uwaterloo.ca"),
	})
	require.NoError(t, err)

	stored := f.reload(t, claim.ID)
	assert.Equal(t, "Alice", stored.ClaimantName)
	assert.Equal(t, "alice@uwaterloo.ca", stored.ClaimantEmail)

	dto, err := f.svc.Get(ctx, alice, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice", dto.ClaimantName)

	f.reset()
	_, err = f.transition(f.staff, claim.ID, "approved", nil)
	require.NoError(t, err)
	require.Len(t, f.mail.sent, 1)
	assert.Equal(t, "alice@uwaterloo.ca", f.mail.sent[0].To)
}

func TestListArchivedReturnsPickedUpItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.user(t, "alice@uwaterloo.ca", "Alice", enums.UserRoleStudent)
	bob := f.user(t, "bob@uwaterloo.ca", "Bob", enums.UserRoleStudent)

	returned := f.item(t, "Blue umbrella")
	approvedOnly := f.item(t, "Laptop charger")
	removed := f.item(t, "Water bottle")

	pickUp := func(actor auth.Actor, itemID uuid.UUID) *models.Claim {
		claim := f.submit(t, actor, itemID)
		_, err := f.transition(f.staff, claim.ID, "approved", nil)
		require.NoError(t, err)
		_, err = f.transition(f.staff, claim.ID, "picked_up", nil)
		require.NoError(t, err)
		return claim
	}
	closed := pickUp(alice, returned.ID)
	pickUp(bob, removed.ID)
	require.NoError(t, f.conn.Model(&models.Item{}).Where("id = ?", removed.ID).
		Update("status", enums.ItemStatusDeleted).Error)

	pending := f.submit(t, bob, approvedOnly.ID)
	_, err := f.transition(f.staff, pending.ID, "approved", nil)
	require.NoError(t, err)

	list, err := f.svc.ListArchived(ctx, f.staff, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.TotalCount)
	require.Len(t, list.Items, 1)
	got := list.Items[0]
	assert.Equal(t, returned.ID, got.ItemID)
	assert.Equal(t, "SLC Turnkey", got.FoundByDesk)
	assert.Equal(t, closed.ID, got.Claim.ID)
	assert.Equal(t, enums.ClaimStatusPickedUp, got.Claim.Status)
	assert.Equal(t, "Alice", got.Claim.ClaimantName)
	require.NotNil(t, got.Claim.ProcessedByStaffName)
	assert.Equal(t, "Desk Staff", *got.Claim.ProcessedByStaffName)

	_, err = f.svc.ListArchived(ctx, alice, 0)
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))
	_, err = f.svc.ListArchived(ctx, auth.Actor{}, 0)
	assert.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.CodeOf(err))
}
