package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WorkspaceInvite is a token-addressable, time-bounded grant of workspace
// membership. Consumed (deleted) on acceptance, revoked explicitly otherwise.
type WorkspaceInvite struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID string    `json:"workspace_id" gorm:"type:uuid;not null;index"`
	Email       string    `json:"email" gorm:"type:varchar(100);not null"`
	Role        string    `json:"role" gorm:"type:varchar(50);not null;default:'member'"`
	Token       string    `json:"token" gorm:"type:varchar(100);uniqueIndex;not null"`
	InvitedBy   string    `json:"invited_by" gorm:"type:uuid"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

func (i *WorkspaceInvite) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// BoardShare grants read-only access to a board via a public token.
// Deactivated shares keep their row but stop resolving.
type BoardShare struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	BoardID   string    `json:"board_id" gorm:"type:uuid;not null;index"`
	Token     string    `json:"token" gorm:"type:varchar(100);uniqueIndex;not null"`
	CreatedBy string    `json:"created_by" gorm:"type:uuid"`
	IsActive  bool      `json:"is_active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *BoardShare) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
