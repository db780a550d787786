package service

import (
	"errors"
	"fmt"
	"time"

	"checksuite-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CardService handles card and checklist CRUD and enforces the compliance
// gate on cross-column card moves.
//
// Gate rule: a move out of a column with requires_task_completion is blocked
// while any mandatory checklist item on the card is incomplete. Owners and
// admins may override; every override is audit-logged.
type CardService struct {
	db    *gorm.DB
	log   *zap.Logger
	audit *AuditRecorder
}

// NewCardService creates a new card service
func NewCardService(db *gorm.DB, log *zap.Logger, audit *AuditRecorder) *CardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &CardService{db: db, log: log, audit: audit}
}

// MoveResult reports the outcome of a committed card move.
type MoveResult struct {
	Overridden bool `json:"overridden"` // an admin bypassed the compliance gate
}

// Move updates a card's column and position. Same-column moves reorder only
// and skip the gate entirely. Cross-column moves validate the target column
// before the gate runs, so a rejected move never leaves an override audit
// event behind; the card is only mutated after the gate allows the move, and
// the move audit event only after the mutation succeeds.
func (s *CardService) Move(actor Actor, cardID, newColumnID string, newPosition int) (*MoveResult, error) {
	var card model.Card
	err := s.db.Preload("ChecklistItems").First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching card: %w", err)
	}

	var sourceColumn model.Column
	if err := s.db.First(&sourceColumn, "id = ?", card.ColumnID).Error; err != nil {
		return nil, fmt.Errorf("fetching source column: %w", err)
	}
	workspaceID, err := s.workspaceOfBoard(sourceColumn.BoardID)
	if err != nil {
		return nil, err
	}

	result := &MoveResult{}
	crossColumn := newColumnID != card.ColumnID

	if crossColumn {
		var targetColumn model.Column
		err := s.db.First(&targetColumn, "id = ?", newColumnID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("fetching target column: %w", err)
		}
		if targetColumn.BoardID != sourceColumn.BoardID {
			return nil, ErrInvalidInput
		}
	}

	if crossColumn && sourceColumn.RequiresTaskCompletion {
		incomplete := 0
		for _, item := range card.ChecklistItems {
			if item.IsMandatory && !item.IsCompleted {
				incomplete++
			}
		}
		if incomplete > 0 {
			if !actor.IsAdmin() {
				s.log.Info("Card move blocked by compliance gate",
					zap.String("card_id", cardID),
					zap.String("source_column_id", sourceColumn.ID),
					zap.Int("incomplete_items", incomplete))
				return nil, ErrComplianceViolation
			}

			result.Overridden = true
			s.audit.Record(workspaceID, actor.UserID, model.AuditOverrideBlocker,
				model.AuditEntityCard, cardID,
				map[string]interface{}{
					"reason":           "mandatory checklist items incomplete",
					"incomplete_items": incomplete,
					"source_column_id": sourceColumn.ID,
					"target_column_id": newColumnID,
				})
			s.log.Warn("Compliance gate overridden",
				zap.String("card_id", cardID),
				zap.String("actor_id", actor.UserID),
				zap.String("role", actor.Role),
				zap.Int("incomplete_items", incomplete))
		}
	}

	if err := s.db.Model(&model.Card{}).Where("id = ?", cardID).
		Updates(map[string]interface{}{
			"column_id": newColumnID,
			"position":  newPosition,
		}).Error; err != nil {
		return nil, fmt.Errorf("moving card: %w", err)
	}

	s.audit.Record(workspaceID, actor.UserID, model.AuditCardMove,
		model.AuditEntityCard, cardID,
		map[string]interface{}{
			"column_id": newColumnID,
			"position":  newPosition,
		})
	return result, nil
}

// Create inserts a card at the bottom of a column.
func (s *CardService) Create(actor Actor, columnID, title string) (*model.Card, error) {
	if title == "" {
		return nil, ErrInvalidInput
	}
	var column model.Column
	err := s.db.First(&column, "id = ?", columnID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching column: %w", err)
	}

	var maxPos *int
	if err := s.db.Model(&model.Card{}).
		Where("column_id = ?", columnID).
		Select("MAX(position)").Scan(&maxPos).Error; err != nil {
		return nil, fmt.Errorf("finding card position: %w", err)
	}
	position := 0
	if maxPos != nil {
		position = *maxPos + 1
	}

	card := model.Card{
		ColumnID:   columnID,
		Title:      title,
		Position:   position,
		AssignedTo: &actor.UserID,
	}
	if err := s.db.Create(&card).Error; err != nil {
		return nil, fmt.Errorf("creating card: %w", err)
	}
	return &card, nil
}

// CardUpdate carries the editable card fields. Nil pointers leave the field
// unchanged; the Clear flags reset optional fields to empty.
type CardUpdate struct {
	Title         *string    `json:"title,omitempty"`
	Description   *string    `json:"description,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	ClearDueDate  bool       `json:"clear_due_date,omitempty"`
	Priority      *string    `json:"priority,omitempty"`
	AssignedTo    *string    `json:"assigned_to,omitempty"`
	ClearAssignee bool       `json:"clear_assignee,omitempty"`
}

// Update patches a card's fields.
func (s *CardService) Update(actor Actor, cardID string, update CardUpdate) error {
	updates := map[string]interface{}{}
	if update.Title != nil {
		updates["title"] = *update.Title
	}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.DueDate != nil {
		updates["due_date"] = *update.DueDate
	} else if update.ClearDueDate {
		updates["due_date"] = nil
	}
	if update.Priority != nil {
		updates["priority"] = *update.Priority
	}
	if update.AssignedTo != nil {
		updates["assigned_to"] = *update.AssignedTo
	} else if update.ClearAssignee {
		updates["assigned_to"] = nil
	}
	if len(updates) == 0 {
		return nil
	}

	result := s.db.Model(&model.Card{}).Where("id = ?", cardID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("updating card: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a card and its checklist items.
func (s *CardService) Delete(actor Actor, cardID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("card_id = ?", cardID).Delete(&model.ChecklistItem{}).Error; err != nil {
			return fmt.Errorf("deleting checklist items: %w", err)
		}
		if err := tx.Model(&model.Card{ID: cardID}).Association("Participants").Clear(); err != nil {
			return fmt.Errorf("clearing participants: %w", err)
		}
		result := tx.Delete(&model.Card{}, "id = ?", cardID)
		if result.Error != nil {
			return fmt.Errorf("deleting card: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AddParticipant links a workspace member to a card. The user must belong to
// the card's workspace.
func (s *CardService) AddParticipant(actor Actor, cardID, userID string) error {
	var card model.Card
	err := s.db.First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching card: %w", err)
	}

	workspaceID, err := s.workspaceOfCard(cardID)
	if err != nil {
		return err
	}
	var count int64
	if err := s.db.Model(&model.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error; err != nil {
		return fmt.Errorf("checking membership: %w", err)
	}
	if count == 0 {
		return ErrInvalidInput
	}

	if err := s.db.Model(&card).Association("Participants").Append(&model.User{ID: userID}); err != nil {
		return fmt.Errorf("adding participant: %w", err)
	}
	return nil
}

// RemoveParticipant unlinks a user from a card.
func (s *CardService) RemoveParticipant(actor Actor, cardID, userID string) error {
	var card model.Card
	err := s.db.First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching card: %w", err)
	}
	if err := s.db.Model(&card).Association("Participants").Delete(&model.User{ID: userID}); err != nil {
		return fmt.Errorf("removing participant: %w", err)
	}
	return nil
}

// AddChecklistItem appends an item to a card's checklist.
func (s *CardService) AddChecklistItem(actor Actor, cardID, content string) (*model.ChecklistItem, error) {
	if content == "" {
		return nil, ErrInvalidInput
	}
	var card model.Card
	err := s.db.First(&card, "id = ?", cardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching card: %w", err)
	}

	var maxPos *int
	if err := s.db.Model(&model.ChecklistItem{}).
		Where("card_id = ?", cardID).
		Select("MAX(position)").Scan(&maxPos).Error; err != nil {
		return nil, fmt.Errorf("finding item position: %w", err)
	}
	position := 0
	if maxPos != nil {
		position = *maxPos + 1
	}

	item := model.ChecklistItem{
		CardID:   cardID,
		Content:  content,
		Position: position,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("creating checklist item: %w", err)
	}
	return &item, nil
}

// ToggleChecklistItem sets an item's completion state and audits the change.
func (s *CardService) ToggleChecklistItem(actor Actor, itemID string, completed bool) error {
	var item model.ChecklistItem
	err := s.db.First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching checklist item: %w", err)
	}

	if err := s.db.Model(&item).Update("is_completed", completed).Error; err != nil {
		return fmt.Errorf("updating checklist item: %w", err)
	}

	workspaceID, err := s.workspaceOfCard(item.CardID)
	if err != nil {
		return nil // item updated; audit scope lookup failed, nothing else to do
	}
	eventType := model.AuditChecklistComplete
	if !completed {
		eventType = model.AuditChecklistIncomplete
	}
	s.audit.Record(workspaceID, actor.UserID, eventType,
		model.AuditEntityChecklistItem, itemID,
		map[string]interface{}{"card_id": item.CardID, "content": item.Content})
	return nil
}

// UpdateChecklistItem replaces an item's content.
func (s *CardService) UpdateChecklistItem(actor Actor, itemID, content string) error {
	result := s.db.Model(&model.ChecklistItem{}).Where("id = ?", itemID).Update("content", content)
	if result.Error != nil {
		return fmt.Errorf("updating checklist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleChecklistMandatory flips whether an item feeds the compliance gate.
func (s *CardService) ToggleChecklistMandatory(actor Actor, itemID string, mandatory bool) error {
	result := s.db.Model(&model.ChecklistItem{}).Where("id = ?", itemID).Update("is_mandatory", mandatory)
	if result.Error != nil {
		return fmt.Errorf("updating checklist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteChecklistItem removes an item from a card's checklist.
func (s *CardService) DeleteChecklistItem(actor Actor, itemID string) error {
	result := s.db.Delete(&model.ChecklistItem{}, "id = ?", itemID)
	if result.Error != nil {
		return fmt.Errorf("deleting checklist item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *CardService) workspaceOfBoard(boardID string) (string, error) {
	var board model.Board
	if err := s.db.Select("workspace_id").First(&board, "id = ?", boardID).Error; err != nil {
		return "", fmt.Errorf("fetching board: %w", err)
	}
	return board.WorkspaceID, nil
}

func (s *CardService) workspaceOfCard(cardID string) (string, error) {
	var card model.Card
	if err := s.db.Select("column_id").First(&card, "id = ?", cardID).Error; err != nil {
		return "", fmt.Errorf("fetching card: %w", err)
	}
	var column model.Column
	if err := s.db.Select("board_id").First(&column, "id = ?", card.ColumnID).Error; err != nil {
		return "", fmt.Errorf("fetching column: %w", err)
	}
	return s.workspaceOfBoard(column.BoardID)
}
