package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanjnn/lost-found-app/internal/claims"
	"github.com/aidanjnn/lost-found-app/internal/users"
	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/config"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
)

type stubUsers struct {
	byID    map[uuid.UUID]*models.User
	created []users.CreateUserDTO
}

func (s *stubUsers) Create(_ context.Context, input users.CreateUserDTO) (*models.User, error) {
	s.created = append(s.created, input)
	user := input.ToModel()
	s.byID[user.ID] = user
	return user, nil
}

func (s *stubUsers) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := s.byID[id]; ok {
		return user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *stubUsers) UpdateProfile(context.Context, uuid.UUID, users.UpdateProfileInput) (*models.User, error) {
	return nil, errors.New("not used")
}

type stubClaims struct {
	transitions []claims.TransitionInput
	actors      []auth.Actor
	result      *claims.TransitionResult
	err         error
}

func (s *stubClaims) Submit(context.Context, auth.Actor, claims.SubmitInput) (*models.Claim, error) {
	return nil, errors.New("not used")
}

func (s *stubClaims) Transition(_ context.Context, actor auth.Actor, input claims.TransitionInput) (*claims.TransitionResult, error) {
	s.actors = append(s.actors, actor)
	s.transitions = append(s.transitions, input)
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubClaims) Get(_ context.Context, _ auth.Actor, id uuid.UUID) (*claims.ClaimDTO, error) {
	notes := "matched student card"
	return &claims.ClaimDTO{
		ID:            id,
		Status:        enums.ClaimStatusApproved,
		ClaimantName:  "Jo Smith",
		ClaimantEmail: "j2smith@uwaterloo.ca",
		StaffNotes:    &notes,
		Item:          &claims.ItemSummary{Name: "Black wallet", Status: enums.ItemStatusUnclaimed, PickupAt: enums.PickupLocationSLC},
	}, nil
}

func (s *stubClaims) List(context.Context, auth.Actor, claims.ListParams) (*claims.ClaimPage, error) {
	return &claims.ClaimPage{}, nil
}

func (s *stubClaims) ListArchived(context.Context, auth.Actor, int) (*claims.ArchivedList, error) {
	return &claims.ArchivedList{}, nil
}

type cliFixture struct {
	users  *stubUsers
	claims *stubClaims
	staff  *models.User
	loads  int
}

func newCLIFixture() *cliFixture {
	staff := &models.User{ID: uuid.New(), Email: "desk@uwaterloo.ca", Name: "SLC Desk", Role: enums.UserRoleStaff}
	return &cliFixture{
		users:  &stubUsers{byID: map[uuid.UUID]*models.User{staff.ID: staff}},
		claims: &stubClaims{},
		staff:  staff,
	}
}

func (f *cliFixture) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	load := func(context.Context) (*Env, error) {
		f.loads++
		return &Env{
			Users:  f.users,
			Claims: f.claims,
			JWT:    config.JWTConfig{Secret: "secret", Issuer: "lostfound-test", ExpirationMinutes: 30},
		}, nil
	}
	cmd := NewRootCommand(load)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, path := range [][]string{{"users", "create"}, {"token", "mint"}, {"claims", "transition"}, {"claims", "show"}} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], sub.Name())
	}
}

func TestInvalidFormatDoesNotLoadEnv(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "--format", "yaml", "token", "mint", "--user", f.staff.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
	assert.Zero(t, f.loads)
}

func TestUsersCreate(t *testing.T) {
	f := newCLIFixture()
	out, err := f.run(t, "--format", "json", "users", "create", "--email", "J2Smith@uwaterloo.ca", "--name", "Jo Smith", "--phone", "519-555-0100")
	require.NoError(t, err)

	require.Len(t, f.users.created, 1)
	assert.Equal(t, enums.UserRoleStudent, f.users.created[0].Role)
	require.NotNil(t, f.users.created[0].Phone)

	var dto users.UserDTO
	require.NoError(t, json.Unmarshal([]byte(out), &dto))
	assert.Equal(t, "j2smith@uwaterloo.ca", dto.Email)
}

func TestUsersCreateRejectsUnknownRole(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "users", "create", "--email", "a@b.ca", "--name", "A", "--role", "admin")
	require.Error(t, err)
	assert.Empty(t, f.users.created)
}

func TestTokenMintRoundTrips(t *testing.T) {
	f := newCLIFixture()
	out, err := f.run(t, "token", "mint", "--user", f.staff.ID.String())
	require.NoError(t, err)

	claimsOut, err := auth.ParseAccessToken(config.JWTConfig{Secret: "secret", Issuer: "lostfound-test", ExpirationMinutes: 30}, strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, f.staff.ID, claimsOut.UserID)
	assert.Equal(t, enums.UserRoleStaff, claimsOut.Role)
}

func TestTokenMintUnknownUser(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "token", "mint", "--user", uuid.NewString())
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	assert.Contains(t, Describe(err), "NOT_FOUND")
}

func TestClaimsTransitionPassesDecision(t *testing.T) {
	f := newCLIFixture()
	claimID := uuid.New()
	loser := uuid.New()
	f.claims.result = &claims.TransitionResult{ClaimID: claimID, NewStatus: enums.ClaimStatusApproved, AutoRejected: []uuid.UUID{loser}}

	out, err := f.run(t, "claims", "transition", claimID.String(), "--staff", f.staff.ID.String(), "--status", "approved", "--notes", "card matched")
	require.NoError(t, err)

	require.Len(t, f.claims.transitions, 1)
	input := f.claims.transitions[0]
	assert.Equal(t, claimID, input.ClaimID)
	assert.Equal(t, "approved", input.Status)
	require.NotNil(t, input.StaffNotes)
	assert.Equal(t, "card matched", *input.StaffNotes)
	assert.Equal(t, auth.Actor{UserID: f.staff.ID, Role: enums.UserRoleStaff}, f.claims.actors[0])
	assert.Contains(t, out, "is now approved")
	assert.Contains(t, out, "auto-rejected "+loser.String())
}

func TestClaimsTransitionWithoutNotesKeepsThem(t *testing.T) {
	f := newCLIFixture()
	claimID := uuid.New()
	f.claims.result = &claims.TransitionResult{ClaimID: claimID, NewStatus: enums.ClaimStatusRejected}

	_, err := f.run(t, "claims", "transition", claimID.String(), "--staff", f.staff.ID.String(), "--status", "rejected")
	require.NoError(t, err)
	require.Len(t, f.claims.transitions, 1)
	assert.Nil(t, f.claims.transitions[0].StaffNotes)
}

func TestClaimsTransitionSurfacesServiceError(t *testing.T) {
	f := newCLIFixture()
	f.claims.err = pkgerrors.New(pkgerrors.CodeInvalidTransition, "cannot transition from picked_up to approved")

	_, err := f.run(t, "claims", "transition", uuid.NewString(), "--staff", f.staff.ID.String(), "--status", "approved")
	require.Error(t, err)
	assert.Equal(t, "INVALID_TRANSITION: cannot transition from picked_up to approved", Describe(err))
}

func TestClaimsTransitionRejectsBadClaimID(t *testing.T) {
	f := newCLIFixture()
	_, err := f.run(t, "claims", "transition", "not-a-uuid", "--staff", f.staff.ID.String(), "--status", "approved")
	require.Error(t, err)
	assert.Zero(t, f.loads)
}

func TestClaimsShowText(t *testing.T) {
	f := newCLIFixture()
	claimID := uuid.New()
	out, err := f.run(t, "claims", "show", claimID.String(), "--as", f.staff.ID.String())
	require.NoError(t, err)
	assert.Contains(t, out, claimID.String())
	assert.Contains(t, out, "Black wallet")
	assert.Contains(t, out, "matched student card")
}
