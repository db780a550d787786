package service

import (
	"encoding/json"

	"checksuite-service/internal/model"
	"checksuite-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AuditRecorder writes append-only audit events. Recording is best-effort:
// a failed insert is logged and counted but never fails the primary action.
type AuditRecorder struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAuditRecorder creates a new audit recorder
func NewAuditRecorder(db *gorm.DB, log *zap.Logger) *AuditRecorder {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuditRecorder{db: db, log: log}
}

// Record persists one audit event. An empty actorID records an anonymous event.
func (r *AuditRecorder) Record(workspaceID, actorID, eventType, entityType, entityID string, metadata map[string]interface{}) {
	payload := "{}"
	if metadata != nil {
		if raw, err := json.Marshal(metadata); err == nil {
			payload = string(raw)
		}
	}

	event := model.AuditEvent{
		WorkspaceID: workspaceID,
		EventType:   eventType,
		EntityType:  entityType,
		EntityID:    entityID,
		Metadata:    payload,
	}
	if actorID != "" {
		event.ActorID = &actorID
	}

	if err := r.db.Create(&event).Error; err != nil {
		r.log.Error("Failed to record audit event",
			zap.String("event_type", eventType),
			zap.String("entity_type", entityType),
			zap.String("entity_id", entityID),
			zap.Error(err))
		if prometheus.AuditFailureCounter != nil {
			prometheus.AuditFailureCounter.Inc()
		}
		return
	}

	if prometheus.AuditEventCounter != nil {
		prometheus.AuditEventCounter.WithLabelValues(eventType).Inc()
	}
}

// AuditListOptions filters an audit event listing.
type AuditListOptions struct {
	EventType string
	Limit     int
}

// List returns the workspace's audit events, newest first. Admin only.
func (r *AuditRecorder) List(actor Actor, opts AuditListOptions) ([]model.AuditEvent, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	query := r.db.Where("workspace_id = ?", actor.WorkspaceID).Order("created_at DESC")
	if opts.EventType != "" {
		query = query.Where("event_type = ?", opts.EventType)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	var events []model.AuditEvent
	if err := query.Limit(limit).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
