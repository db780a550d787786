package service

import (
	"testing"
	"time"

	"checksuite-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInviteLifecycle(t *testing.T) {
	fx := newFixture(t)
	svc := NewInviteService(fx.db, nil, time.Hour)

	invite, err := svc.Create(fx.owner, "  New.Hire@Acme.Test ", model.RoleMember)
	require.NoError(t, err)
	assert.Equal(t, "new.hire@acme.test", invite.Email)
	assert.NotEmpty(t, invite.Token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), invite.ExpiresAt, time.Minute)

	newcomer := model.User{Email: "new.hire@acme.test", Password: "hashed"}
	require.NoError(t, fx.db.Create(&newcomer).Error)

	accepted, err := svc.Accept(newcomer.ID, invite.Token)
	require.NoError(t, err)
	assert.Equal(t, fx.ws.ID, accepted.WorkspaceID)

	var member model.WorkspaceMember
	require.NoError(t, fx.db.
		First(&member, "workspace_id = ? AND user_id = ?", fx.ws.ID, newcomer.ID).Error)
	assert.Equal(t, model.RoleMember, member.Role)

	// Accepted invites are consumed.
	_, err = svc.Accept(newcomer.ID, invite.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInviteExpired(t *testing.T) {
	fx := newFixture(t)
	svc := NewInviteService(fx.db, nil, time.Hour)

	invite := model.WorkspaceInvite{
		WorkspaceID: fx.ws.ID,
		Email:       "late@acme.test",
		Role:        model.RoleMember,
		Token:       "expired-token",
		InvitedBy:   fx.owner.UserID,
		ExpiresAt:   time.Now().Add(-time.Minute),
	}
	require.NoError(t, fx.db.Create(&invite).Error)

	_, err := svc.Accept(fx.member.UserID, invite.Token)
	assert.ErrorIs(t, err, ErrInviteExpired)
}

func TestInviteRequiresAdmin(t *testing.T) {
	fx := newFixture(t)
	svc := NewInviteService(fx.db, nil, time.Hour)

	_, err := svc.Create(fx.member, "x@acme.test", model.RoleMember)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	_, err = svc.List(fx.member)
	assert.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorIs(t, svc.Revoke(fx.member, "any"), ErrPermissionDenied)
}

func TestInviteRejectsBadEmail(t *testing.T) {
	fx := newFixture(t)
	svc := NewInviteService(fx.db, nil, time.Hour)

	for _, email := range []string{"", "   ", "not-an-email"} {
		_, err := svc.Create(fx.owner, email, model.RoleMember)
		assert.ErrorIs(t, err, ErrInvalidInput, "email %q", email)
	}
}

func TestInviteRevoke(t *testing.T) {
	fx := newFixture(t)
	svc := NewInviteService(fx.db, nil, time.Hour)

	invite, err := svc.Create(fx.owner, "pending@acme.test", model.RoleAdmin)
	require.NoError(t, err)

	invites, err := svc.List(fx.owner)
	require.NoError(t, err)
	require.Len(t, invites, 1)

	require.NoError(t, svc.Revoke(fx.owner, invite.ID))
	assert.ErrorIs(t, svc.Revoke(fx.owner, invite.ID), ErrNotFound)

	_, err = svc.Accept(fx.member.UserID, invite.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAcceptExistingMemberKeepsRole(t *testing.T) {
	fx := newFixture(t)
	svc := NewInviteService(fx.db, nil, time.Hour)

	invite, err := svc.Create(fx.owner, fx.member.Email, model.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Accept(fx.member.UserID, invite.Token)
	require.NoError(t, err)

	var member model.WorkspaceMember
	require.NoError(t, fx.db.
		First(&member, "workspace_id = ? AND user_id = ?", fx.ws.ID, fx.member.UserID).Error)
	assert.Equal(t, model.RoleMember, member.Role)

	var count int64
	require.NoError(t, fx.db.Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", fx.ws.ID, fx.member.UserID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
