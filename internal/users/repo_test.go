package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aidanjnn/lost-found-app/pkg/db/dbtest"
	"github.com/aidanjnn/lost-found-app/pkg/enums"
	pkgerrors "github.com/aidanjnn/lost-found-app/pkg/errors"
)

func TestRepositoryCreateAndFind(t *testing.T) {
	repo := NewRepository(dbtest.Open(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, CreateUserDTO{Email: "  Goose@UWaterloo.ca ", Name: "Goose", Role: enums.UserRoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "goose@uwaterloo.ca", created.Email)

	byEmail, err := repo.FindByEmail(ctx, "GOOSE@uwaterloo.ca")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)

	byID, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Goose", byID.Name)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestServiceCreateRejectsDuplicatesAndBadInput(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	ctx := context.Background()

	staff, err := svc.Create(ctx, CreateUserDTO{Email: "desk@uwaterloo.ca", Name: "Desk", Role: enums.UserRoleStaff})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleStaff, staff.Role)

	_, err = svc.Create(ctx, CreateUserDTO{Email: "desk@uwaterloo.ca", Name: "Other"})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	_, err = svc.Create(ctx, CreateUserDTO{Email: "not-an-email", Name: "X"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.Create(ctx, CreateUserDTO{Email: "x@uwaterloo.ca", Name: "X", Role: "admin"})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	student, err := svc.Create(ctx, CreateUserDTO{Email: "s@uwaterloo.ca", Name: "S"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleStudent, student.Role)
}

func TestServiceGet(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New())
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))

	_, err = svc.Get(context.Background(), uuid.Nil)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestServiceUpdateProfile(t *testing.T) {
	svc, err := NewService(NewRepository(dbtest.Open(t)))
	require.NoError(t, err)
	ctx := context.Background()

	goose, err := svc.Create(ctx, CreateUserDTO{Email: "goose@uwaterloo.ca", Name: "Goose"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateUserDTO{Email: "taken@uwaterloo.ca", Name: "Taken"})
	require.NoError(t, err)

	name := "  Honk Goose "
	updated, err := svc.UpdateProfile(ctx, goose.ID, UpdateProfileInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Honk Goose", updated.Name)
	assert.Equal(t, "goose@uwaterloo.ca", updated.Email)

	email := "Honk@UWaterloo.ca"
	updated, err = svc.UpdateProfile(ctx, goose.ID, UpdateProfileInput{Email: &email})
	require.NoError(t, err)
	assert.Equal(t, "honk@uwaterloo.ca", updated.Email)

	same := "honk@uwaterloo.ca"
	_, err = svc.UpdateProfile(ctx, goose.ID, UpdateProfileInput{Email: &same})
	assert.NoError(t, err, "keeping your own email is not a conflict")

	taken := "TAKEN@uwaterloo.ca"
	_, err = svc.UpdateProfile(ctx, goose.ID, UpdateProfileInput{Email: &taken})
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.CodeOf(err))

	short := "G"
	_, err = svc.UpdateProfile(ctx, goose.ID, UpdateProfileInput{Name: &short})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.UpdateProfile(ctx, goose.ID, UpdateProfileInput{})
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))

	_, err = svc.UpdateProfile(ctx, uuid.New(), UpdateProfileInput{Name: &name})
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.CodeOf(err))
}
