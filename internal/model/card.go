package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Card priorities
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Card is a task within a column, ordered by position.
type Card struct {
	ID          string     `json:"id" gorm:"type:uuid;primaryKey"`
	ColumnID    string     `json:"column_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *string    `json:"priority,omitempty" gorm:"type:varchar(20)"`
	AssignedTo  *string    `json:"assigned_to,omitempty" gorm:"type:uuid;index"`
	Position    int        `json:"position" gorm:"not null"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	ChecklistItems []ChecklistItem `json:"checklist_items,omitempty" gorm:"foreignKey:CardID;constraint:OnDelete:CASCADE"`
	Participants   []User          `json:"participants,omitempty" gorm:"many2many:card_participants"`
}

func (c *Card) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// ChecklistItem belongs to a card. Mandatory items feed the compliance gate
// when the card's column requires task completion.
type ChecklistItem struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	CardID      string    `json:"card_id" gorm:"type:uuid;not null;index"`
	Content     string    `json:"content" gorm:"type:text;not null"`
	Position    int       `json:"position" gorm:"not null"`
	IsCompleted bool      `json:"is_completed" gorm:"default:false"`
	IsMandatory bool      `json:"is_mandatory" gorm:"default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (i *ChecklistItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
