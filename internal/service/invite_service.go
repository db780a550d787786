package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"checksuite-service/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// InviteService issues and consumes workspace invites. An invite is a
// token-addressable, time-bounded membership grant: accepted invites are
// deleted, pending ones can be revoked.
type InviteService struct {
	db  *gorm.DB
	log *zap.Logger
	ttl time.Duration
}

// NewInviteService creates a new invite service
func NewInviteService(db *gorm.DB, log *zap.Logger, ttl time.Duration) *InviteService {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &InviteService{db: db, log: log, ttl: ttl}
}

// Create issues an invite for the given email and coarse role. Admin only.
func (s *InviteService) Create(actor Actor, email, role string) (*model.WorkspaceInvite, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if role == "" {
		role = model.RoleMember
	}

	invite := model.WorkspaceInvite{
		WorkspaceID: actor.WorkspaceID,
		Email:       email,
		Role:        role,
		Token:       uuid.NewString(),
		InvitedBy:   actor.UserID,
		ExpiresAt:   time.Now().Add(s.ttl),
	}
	if err := s.db.Create(&invite).Error; err != nil {
		return nil, fmt.Errorf("creating invite: %w", err)
	}

	s.log.Info("Workspace invite created",
		zap.String("workspace_id", actor.WorkspaceID),
		zap.String("email", email),
		zap.String("role", role))
	return &invite, nil
}

// Accept resolves a token to its invite, adds the user to the workspace and
// consumes the invite. An already-member user still consumes the invite.
func (s *InviteService) Accept(userID, token string) (*model.WorkspaceInvite, error) {
	var invite model.WorkspaceInvite
	err := s.db.First(&invite, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching invite: %w", err)
	}

	if time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteExpired
	}

	var existing int64
	if err := s.db.Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", invite.WorkspaceID, userID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("checking membership: %w", err)
	}
	if existing == 0 {
		member := model.WorkspaceMember{
			WorkspaceID: invite.WorkspaceID,
			UserID:      userID,
			Role:        invite.Role,
		}
		if err := s.db.Create(&member).Error; err != nil {
			return nil, fmt.Errorf("adding member: %w", err)
		}
	}

	if err := s.db.Delete(&invite).Error; err != nil {
		// Membership exists; a stale invite row is not worth failing over.
		s.log.Warn("Failed to consume invite", zap.String("invite_id", invite.ID), zap.Error(err))
	}

	s.log.Info("Workspace invite accepted",
		zap.String("workspace_id", invite.WorkspaceID),
		zap.String("user_id", userID))
	return &invite, nil
}

// List returns the workspace's pending invites. Admin only.
func (s *InviteService) List(actor Actor) ([]model.WorkspaceInvite, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	var invites []model.WorkspaceInvite
	if err := s.db.Where("workspace_id = ?", actor.WorkspaceID).
		Order("created_at DESC").Find(&invites).Error; err != nil {
		return nil, fmt.Errorf("listing invites: %w", err)
	}
	return invites, nil
}

// Revoke deletes a pending invite. Admin only.
func (s *InviteService) Revoke(actor Actor, inviteID string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	result := s.db.Where("id = ? AND workspace_id = ?", inviteID, actor.WorkspaceID).
		Delete(&model.WorkspaceInvite{})
	if result.Error != nil {
		return fmt.Errorf("revoking invite: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
