package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/ipr-backend/internal/models"
)

func TestUpdateProfileKeepsApplicationSnapshot(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t, "Snapshot")

	name := "  Ines Renamed "
	dept := "Materials"
	user, err := f.users.UpdateProfile(f.ctx, f.applicant, &UpdateUserProfileRequest{DisplayName: &name, Department: &dept})
	require.NoError(t, err)
	assert.Equal(t, "Ines Renamed", user.DisplayName)
	assert.Equal(t, "Materials", user.Department)

	stored, err := f.apps.GetOwn(f.ctx, f.applicant, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ines Inventor", stored.ApplicantName)
	assert.Equal(t, "R&D", stored.Department)

	bad := "#"
	_, err = f.users.UpdateProfile(f.ctx, f.applicant, &UpdateUserProfileRequest{EmployeeID: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestAdminApprovesAndRejectsUsers(t *testing.T) {
	f := newFixture(t)

	rejected, err := f.users.Reject(f.ctx, f.admin, f.other.ID)
	require.NoError(t, err)
	assert.False(t, rejected.IsApproved)
	assert.NotNil(t, rejected.RejectedAt)

	inbox := f.inbox(t, f.other)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Account Access Revoked", inbox[0].Title)
	assert.Equal(t, models.NotificationError, inbox[0].Type)

	pending := false
	users, total, err := f.users.List(f.ctx, f.admin, UserQuery{Approved: &pending})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, f.other.ID, users[0].ID)

	approved, err := f.users.Approve(f.ctx, f.admin, f.other.ID)
	require.NoError(t, err)
	assert.True(t, approved.IsApproved)
	assert.Equal(t, "Account Approved", f.inbox(t, f.other)[0].Title)

	_, err = f.users.Approve(f.ctx, f.attorney, f.other.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.users.Approve(f.ctx, f.admin, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.users.Reject(f.ctx, f.admin, f.admin.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestRevokedAttorneyStopsReceivingAssignments(t *testing.T) {
	f := newFixture(t)
	_, err := f.users.Reject(f.ctx, f.admin, f.attorney.ID)
	require.NoError(t, err)
	before := len(f.inbox(t, f.attorney))

	app := f.submit(t, "Gasket")
	_, err = f.apps.Forward(f.ctx, f.admin, app.ID)
	require.NoError(t, err)

	assert.Len(t, f.inbox(t, f.attorney), before)
}

func TestChangeRole(t *testing.T) {
	f := newFixture(t)

	user, err := f.users.ChangeRole(f.ctx, f.admin, f.other.ID, &ChangeRoleRequest{Role: models.RolePatentAttorney})
	require.NoError(t, err)
	assert.Equal(t, models.RolePatentAttorney, user.Role)

	ids, err := f.notifier.RecipientsByRole(f.ctx, models.RolePatentAttorney)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{f.attorney.ID, f.other.ID}, ids)

	_, err = f.users.ChangeRole(f.ctx, f.admin, f.other.ID, &ChangeRoleRequest{Role: "superuser"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.users.ChangeRole(f.ctx, f.admin, f.admin.ID, &ChangeRoleRequest{Role: models.RoleUser})
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
