package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit event types
const (
	AuditProcessStart        = "PROCESS_START"
	AuditCardMove            = "CARD_MOVE"
	AuditChecklistComplete   = "CHECKLIST_COMPLETE"
	AuditChecklistIncomplete = "CHECKLIST_INCOMPLETE"
	AuditOverrideBlocker     = "OVERRIDE_BLOCKER"
	AuditTemplatePublish     = "TEMPLATE_PUBLISH"
)

// Audit entity types
const (
	AuditEntityBoard           = "board"
	AuditEntityCard            = "card"
	AuditEntityChecklistItem   = "checklist_item"
	AuditEntityTemplateVersion = "template_version"
)

// AuditEvent is an append-only record of a significant state change or
// policy override. Never mutated or deleted by normal flow.
type AuditEvent struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey"`
	WorkspaceID string    `json:"workspace_id" gorm:"type:uuid;not null;index"`
	ActorID     *string   `json:"actor_id,omitempty" gorm:"type:uuid"`
	EventType   string    `json:"event_type" gorm:"type:varchar(50);not null;index"`
	EntityType  string    `json:"entity_type" gorm:"type:varchar(50);not null"`
	EntityID    string    `json:"entity_id" gorm:"type:uuid;not null;index"`
	Metadata    string    `json:"metadata" gorm:"type:jsonb"`
	CreatedAt   time.Time `json:"created_at"`
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
