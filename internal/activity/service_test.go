package activity

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidanjnn/lost-found-app/pkg/auth"
	"github.com/aidanjnn/lost-found-app/pkg/db/dbtest"
	"github.com/aidanjnn/lost-found-app/pkg/db/models"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
	"github.com/aidanjnn/lost-found-app/pkg/logger"
)

func TestRecordAndListActivity(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), logger.Nop())
	require.NoError(t, err)
	ctx := context.Background()

	staff := auth.Actor{UserID: uuid.New(), Role: enums.UserRoleStaff}
	claimID := uuid.New()
	svc.Record(ctx, Entry{Actor: staff, Action: enums.ActivityClaimApproved, EntityType: EntityClaim, EntityID: claimID})
	svc.Record(ctx, Entry{Actor: staff, Action: enums.ActivityItemAdded, EntityType: EntityItem, EntityID: uuid.New()})
	svc.Record(ctx, Entry{Actor: staff, Action: enums.ActivityClaimRejected, EntityType: EntityClaim, EntityID: uuid.New()})

	page, err := svc.List(ctx, staff, ListParams{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	rest, err := svc.List(ctx, staff, ListParams{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Items, 1)
	assert.Empty(t, rest.NextCursor)

	approved, err := svc.List(ctx, staff, ListParams{Action: "claim_approved"})
	require.NoError(t, err)
	require.Len(t, approved.Items, 1)
	assert.Equal(t, claimID, approved.Items[0].EntityID)
	require.NotNil(t, approved.Items[0].ActorUserID)
	assert.Equal(t, staff.UserID, *approved.Items[0].ActorUserID)
}

func TestListRequiresStaff(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)), logger.Nop())
	require.NoError(t, err)

	_, err = svc.List(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleStudent}, ListParams{})
	assert.Equal(t, pkgerrors.CodeForbidden, pkgerrors.CodeOf(err))

	_, err = svc.List(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleStaff}, ListParams{Action: "nope"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

type failingRepo struct{}

func (failingRepo) Create(context.Context, *models.ActivityLog) error { return errors.New("disk full") }
func (failingRepo) List(context.Context, listParams) ([]models.ActivityLog, error) {
	return nil, errors.New("disk full")
}

func TestRecordSwallowsFailures(t *testing.T) {
	buf := &bytes.Buffer{}
	svc, err := NewService(failingRepo{}, logger.New(logger.Options{ServiceName: "test", Output: buf}))
	require.NoError(t, err)

	svc.Record(context.Background(), Entry{Action: enums.ActivityItemDeleted, EntityType: EntityItem, EntityID: uuid.New()})
	assert.Contains(t, buf.String(), "activity.record_failed")

	_, err = svc.List(context.Background(), auth.Actor{UserID: uuid.New(), Role: enums.UserRoleStaff}, ListParams{})
	assert.Equal(t, pkgerrors.CodeStorage, pkgerrors.CodeOf(err))
}
