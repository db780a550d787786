package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Template version statuses
const (
	VersionStatusDraft     = "draft"
	VersionStatusPublished = "published"
	VersionStatusArchived  = "archived"
)

// ProcessTemplate is a reusable, versioned process blueprint. A nil
// WorkspaceID marks a system template visible to every workspace.
// Templates are soft-deactivated, never hard-deleted in normal flow.
type ProcessTemplate struct {
	ID          string         `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID *string        `json:"workspace_id,omitempty" gorm:"type:uuid;index"`
	Name        string         `json:"name" gorm:"type:varchar(200);not null"`
	Slug        string         `json:"slug" gorm:"type:varchar(200)"`
	Description string         `json:"description" gorm:"type:text"`
	Category    string         `json:"category" gorm:"type:varchar(100);index"`
	IsActive    bool           `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	Versions []TemplateVersion `json:"versions,omitempty" gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE"`
}

func (t *ProcessTemplate) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TemplateVersion is one numbered revision of a template. Version numbers
// start at 1 and increase monotonically per template.
type TemplateVersion struct {
	ID            string     `json:"id" gorm:"type:uuid;primaryKey"`
	TemplateID    string     `json:"template_id" gorm:"type:uuid;not null;index"`
	VersionNumber int        `json:"version_number" gorm:"not null"`
	Status        string     `json:"status" gorm:"type:varchar(20);not null;default:'draft'"` // 'draft', 'published', 'archived'
	PublishedAt   *time.Time `json:"published_at,omitempty"`
	ChangeSummary string     `json:"change_summary" gorm:"type:text"`
	CreatedBy     string     `json:"created_by" gorm:"type:uuid"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	Steps []TemplateStep `json:"steps,omitempty" gorm:"foreignKey:VersionID;constraint:OnDelete:CASCADE"`
}

func (v *TemplateVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

// TemplateStep is an ordered phase within a version. On instantiation it
// becomes a column; RequireChecklistComplete becomes the column's gate flag.
type TemplateStep struct {
	ID                       string    `json:"id" gorm:"type:uuid;primaryKey"`
	VersionID                string    `json:"version_id" gorm:"type:uuid;not null;index"`
	Name                     string    `json:"name" gorm:"type:varchar(200);not null"`
	Description              string    `json:"description" gorm:"type:text"`
	Position                 int       `json:"position" gorm:"not null"`
	RequireChecklistComplete bool      `json:"require_checklist_complete" gorm:"default:false"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`

	Items []TemplateChecklistItem `json:"items,omitempty" gorm:"foreignKey:StepID;constraint:OnDelete:CASCADE"`
}

func (s *TemplateStep) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// TemplateChecklistItem is a blueprint checklist entry under a step.
type TemplateChecklistItem struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	StepID      string    `json:"step_id" gorm:"type:uuid;not null;index"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Position    int       `json:"position" gorm:"not null"`
	IsMandatory bool      `json:"is_mandatory" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *TemplateChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// TemplateFavorite marks a template as a favorite for one user.
type TemplateFavorite struct {
	ID         string    `json:"id" gorm:"type:uuid;primaryKey"`
	UserID     string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_template"`
	TemplateID string    `json:"template_id" gorm:"type:uuid;not null;uniqueIndex:idx_user_template"`
	CreatedAt  time.Time `json:"created_at"`
}

func (f *TemplateFavorite) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
