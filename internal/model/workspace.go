package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Workspace represents the tenant/organization grouping members, boards and templates.
type Workspace struct {
	ID        string         `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string         `json:"name" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (w *Workspace) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// Coarse workspace roles
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// WorkspaceMember links a user to a workspace with a coarse role and an
// optional functional role. Unique per (workspace, user).
type WorkspaceMember struct {
	ID               string    `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID      string    `json:"workspace_id" gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user"`
	UserID           string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_workspace_user"`
	Role             string    `json:"role" gorm:"type:varchar(50);not null;default:'member'"` // 'owner', 'admin', 'member'
	FunctionalRoleID *string   `json:"functional_role_id,omitempty" gorm:"type:uuid"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	Workspace Workspace `json:"workspace,omitempty" gorm:"foreignKey:WorkspaceID"`
	User      User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (m *WorkspaceMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IsAdminRole reports whether a coarse role carries admin rights.
func IsAdminRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

// WorkspaceRole is a functional role defined per workspace, e.g. "Accounting".
type WorkspaceRole struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID string    `json:"workspace_id" gorm:"type:uuid;not null;index"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	Color       string    `json:"color" gorm:"type:varchar(20);default:'#64748b'"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *WorkspaceRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
