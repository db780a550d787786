package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Board represents a kanban board. Boards created by instantiating a process
// template carry their origin references and are structurally locked: columns
// cannot be added, renamed or removed afterwards.
type Board struct {
	ID                      string         `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID             string         `json:"workspace_id" gorm:"type:uuid;not null;index"`
	Name                    string         `json:"name" gorm:"type:varchar(200);not null"`
	OriginTemplateID        *string        `json:"origin_template_id,omitempty" gorm:"type:uuid"`
	OriginTemplateVersionID *string        `json:"origin_template_version_id,omitempty" gorm:"type:uuid"`
	IsStructureLocked       bool           `json:"is_structure_locked" gorm:"default:false"`
	CreatedAt               time.Time      `json:"created_at"`
	UpdatedAt               time.Time      `json:"updated_at"`
	DeletedAt               gorm.DeletedAt `json:"-" gorm:"index"`

	Columns []Column `json:"columns,omitempty" gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE"`
}

func (b *Board) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// Column is an ordered lane within a board. RequiresTaskCompletion is the
// compliance-gate flag: set from the originating step at instantiation time,
// false for manually created columns.
type Column struct {
	ID                     string    `json:"id" gorm:"type:uuid;primaryKey"`
	BoardID                string    `json:"board_id" gorm:"type:uuid;not null;index"`
	Name                   string    `json:"name" gorm:"type:varchar(200);not null"`
	Position               int       `json:"position" gorm:"not null"`
	RequiresTaskCompletion bool      `json:"requires_task_completion" gorm:"default:false"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"updated_at"`

	Cards []Card `json:"cards,omitempty" gorm:"foreignKey:ColumnID;constraint:OnDelete:CASCADE"`
}

func (c *Column) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
