package service

import (
	"fmt"
	"strings"

	"checksuite-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProcessService materializes published template versions into structurally
// locked boards. Instantiation copies the version's structure instead of
// referencing it live: later drafts and republishes never alter boards that
// already run.
type ProcessService struct {
	db        *gorm.DB
	log       *zap.Logger
	templates *TemplateService
	audit     *AuditRecorder
}

// NewProcessService creates a new process service
func NewProcessService(db *gorm.DB, log *zap.Logger, templates *TemplateService, audit *AuditRecorder) *ProcessService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProcessService{db: db, log: log, templates: templates, audit: audit}
}

// StartResult reports what an instantiation produced. SkippedSteps counts
// steps lost to per-row failures; the board may be partially built and the
// caller decides whether to inspect or retry.
type StartResult struct {
	BoardID        string `json:"board_id"`
	ColumnsCreated int    `json:"columns_created"`
	CardsCreated   int    `json:"cards_created"`
	SkippedSteps   int    `json:"skipped_steps"`
}

// Start instantiates a template version into a new locked board in the
// actor's workspace. Steps become columns in position order; a step with
// checklist items additionally seeds one card (titled like the step,
// assigned to assigneeUserID) carrying the items, all incomplete.
func (s *ProcessService) Start(actor Actor, templateID, versionID, assigneeUserID, processName string) (*StartResult, error) {
	if strings.TrimSpace(processName) == "" {
		return nil, ErrInvalidInput
	}
	if actor.WorkspaceID == "" {
		return nil, ErrPermissionDenied
	}

	version, err := s.templates.GetVersion(actor, versionID)
	if err != nil {
		return nil, err
	}

	board := model.Board{
		WorkspaceID:             actor.WorkspaceID,
		Name:                    processName,
		OriginTemplateID:        &templateID,
		OriginTemplateVersionID: &versionID,
		IsStructureLocked:       true,
	}
	if err := s.db.Create(&board).Error; err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	result := &StartResult{BoardID: board.ID}
	for _, step := range version.Steps {
		column := model.Column{
			BoardID:                board.ID,
			Name:                   step.Name,
			Position:               step.Position,
			RequiresTaskCompletion: step.RequireChecklistComplete,
		}
		if err := s.db.Create(&column).Error; err != nil {
			s.log.Warn("Skipping step during instantiation",
				zap.String("board_id", board.ID),
				zap.String("step_id", step.ID),
				zap.Error(err))
			result.SkippedSteps++
			continue
		}
		result.ColumnsCreated++

		if len(step.Items) == 0 {
			continue
		}

		// The seed card holds the step's checklist and names the phase.
		card := model.Card{
			ColumnID:   column.ID,
			Title:      step.Name,
			AssignedTo: &assigneeUserID,
			Position:   0,
		}
		if err := s.db.Create(&card).Error; err != nil {
			s.log.Warn("Skipping seed card during instantiation",
				zap.String("board_id", board.ID),
				zap.String("column_id", column.ID),
				zap.Error(err))
			continue
		}
		result.CardsCreated++

		items := make([]model.ChecklistItem, 0, len(step.Items))
		for _, item := range step.Items {
			items = append(items, model.ChecklistItem{
				CardID:      card.ID,
				Content:     item.Content,
				Position:    item.Position,
				IsCompleted: false,
				IsMandatory: item.IsMandatory,
			})
		}
		if err := s.db.Create(&items).Error; err != nil {
			s.log.Warn("Failed to seed checklist items",
				zap.String("card_id", card.ID),
				zap.Error(err))
		}
	}

	s.audit.Record(actor.WorkspaceID, actor.UserID, model.AuditProcessStart,
		model.AuditEntityBoard, board.ID,
		map[string]interface{}{
			"template_id":   templateID,
			"version_id":    versionID,
			"process_name":  processName,
			"skipped_steps": result.SkippedSteps,
		})

	s.log.Info("Process instantiated",
		zap.String("board_id", board.ID),
		zap.String("template_id", templateID),
		zap.String("version_id", versionID),
		zap.Int("columns", result.ColumnsCreated),
		zap.Int("cards", result.CardsCreated),
		zap.Int("skipped_steps", result.SkippedSteps))
	return result, nil
}
