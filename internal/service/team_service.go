package service

import (
	"errors"
	"fmt"

	"checksuite-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeamService manages workspace members and functional roles.
type TeamService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewTeamService creates a new team service
func NewTeamService(db *gorm.DB, log *zap.Logger) *TeamService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TeamService{db: db, log: log}
}

// Member is one workspace member with the user's email resolved.
type Member struct {
	UserID           string  `json:"user_id"`
	Email            string  `json:"email"`
	Role             string  `json:"role"`
	FunctionalRoleID *string `json:"functional_role_id,omitempty"`
}

// ListMembers returns the actor's workspace members.
func (s *TeamService) ListMembers(actor Actor) ([]Member, error) {
	var memberships []model.WorkspaceMember
	if err := s.db.Preload("User").
		Where("workspace_id = ?", actor.WorkspaceID).
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}

	members := make([]Member, 0, len(memberships))
	for _, m := range memberships {
		members = append(members, Member{
			UserID:           m.UserID,
			Email:            m.User.Email,
			Role:             m.Role,
			FunctionalRoleID: m.FunctionalRoleID,
		})
	}
	return members, nil
}

// ListRoles returns the workspace's functional roles ordered by name.
func (s *TeamService) ListRoles(actor Actor) ([]model.WorkspaceRole, error) {
	var roles []model.WorkspaceRole
	if err := s.db.Where("workspace_id = ?", actor.WorkspaceID).
		Order("name").Find(&roles).Error; err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	return roles, nil
}

// CreateRole adds a functional role to the workspace. Admin only.
func (s *TeamService) CreateRole(actor Actor, name, color string) (*model.WorkspaceRole, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if name == "" {
		return nil, ErrInvalidInput
	}
	if color == "" {
		color = "#64748b"
	}

	role := model.WorkspaceRole{
		WorkspaceID: actor.WorkspaceID,
		Name:        name,
		Color:       color,
	}
	if err := s.db.Create(&role).Error; err != nil {
		return nil, fmt.Errorf("creating role: %w", err)
	}
	return &role, nil
}

// DeleteRole removes a functional role. Admin only.
func (s *TeamService) DeleteRole(actor Actor, roleID string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	result := s.db.Where("id = ? AND workspace_id = ?", roleID, actor.WorkspaceID).
		Delete(&model.WorkspaceRole{})
	if result.Error != nil {
		return fmt.Errorf("deleting role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AssignRole sets or clears a member's functional role. Admin only; the
// target must belong to the actor's workspace.
func (s *TeamService) AssignRole(actor Actor, targetUserID string, roleID *string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}

	if roleID != nil {
		var role model.WorkspaceRole
		err := s.db.First(&role, "id = ? AND workspace_id = ?", *roleID, actor.WorkspaceID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("fetching role: %w", err)
		}
	}

	result := s.db.Model(&model.WorkspaceMember{}).
		Where("user_id = ? AND workspace_id = ?", targetUserID, actor.WorkspaceID).
		Update("functional_role_id", roleID)
	if result.Error != nil {
		return fmt.Errorf("assigning role: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
