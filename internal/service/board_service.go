package service

import (
	"errors"
	"fmt"

	"checksuite-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BoardService handles board and column CRUD. Boards instantiated from
// process templates are structurally locked: their column set is frozen.
type BoardService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewBoardService creates a new board service
func NewBoardService(db *gorm.DB, log *zap.Logger) *BoardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BoardService{db: db, log: log}
}

// BoardSummary is one board list entry with its template origin, if any.
type BoardSummary struct {
	model.Board
	OriginTemplateName  string `json:"origin_template_name,omitempty"`
	OriginVersionNumber int    `json:"origin_version_number,omitempty"`
}

// List returns the workspace's boards, newest first.
func (s *BoardService) List(actor Actor) ([]BoardSummary, error) {
	var boards []model.Board
	if err := s.db.Where("workspace_id = ?", actor.WorkspaceID).
		Order("created_at DESC").
		Find(&boards).Error; err != nil {
		return nil, fmt.Errorf("listing boards: %w", err)
	}

	summaries := make([]BoardSummary, 0, len(boards))
	for _, b := range boards {
		summary := BoardSummary{Board: b}
		if b.OriginTemplateID != nil {
			var template model.ProcessTemplate
			if err := s.db.Select("name").First(&template, "id = ?", *b.OriginTemplateID).Error; err == nil {
				summary.OriginTemplateName = template.Name
			}
		}
		if b.OriginTemplateVersionID != nil {
			var version model.TemplateVersion
			if err := s.db.Select("version_number").First(&version, "id = ?", *b.OriginTemplateVersionID).Error; err == nil {
				summary.OriginVersionNumber = version.VersionNumber
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Get returns a board with its full column/card/checklist tree in display order.
func (s *BoardService) Get(actor Actor, boardID string) (*model.Board, error) {
	var board model.Board
	err := s.db.
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Columns.Cards", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Columns.Cards.ChecklistItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&board, "id = ? AND workspace_id = ?", boardID, actor.WorkspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching board: %w", err)
	}
	return &board, nil
}

// Create inserts a manual (unlocked) board with the standard starter columns.
func (s *BoardService) Create(actor Actor, name string) (*model.Board, error) {
	if name == "" {
		return nil, ErrInvalidInput
	}

	board := model.Board{
		WorkspaceID:       actor.WorkspaceID,
		Name:              name,
		IsStructureLocked: false,
	}
	if err := s.db.Create(&board).Error; err != nil {
		return nil, fmt.Errorf("creating board: %w", err)
	}

	defaults := []string{"To Do", "In Progress", "Done"}
	for i, colName := range defaults {
		column := model.Column{BoardID: board.ID, Name: colName, Position: i}
		if err := s.db.Create(&column).Error; err != nil {
			// Board exists without a full column set; surfaced via log only.
			s.log.Error("Failed to create default column",
				zap.String("board_id", board.ID),
				zap.String("column", colName),
				zap.Error(err))
		}
	}

	s.log.Info("Board created",
		zap.String("board_id", board.ID),
		zap.String("workspace_id", actor.WorkspaceID))
	return &board, nil
}

// Delete removes a board with all its columns, cards, checklist items and
// share links in one transaction.
func (s *BoardService) Delete(actor Actor, boardID string) error {
	if _, err := s.boardInWorkspace(actor, boardID); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var columnIDs []string
		if err := tx.Model(&model.Column{}).Where("board_id = ?", boardID).
			Pluck("id", &columnIDs).Error; err != nil {
			return fmt.Errorf("collecting columns: %w", err)
		}
		if len(columnIDs) > 0 {
			var cardIDs []string
			if err := tx.Model(&model.Card{}).Where("column_id IN ?", columnIDs).
				Pluck("id", &cardIDs).Error; err != nil {
				return fmt.Errorf("collecting cards: %w", err)
			}
			if len(cardIDs) > 0 {
				if err := tx.Where("card_id IN ?", cardIDs).Delete(&model.ChecklistItem{}).Error; err != nil {
					return fmt.Errorf("deleting checklist items: %w", err)
				}
				if err := tx.Exec("DELETE FROM card_participants WHERE card_id IN ?", cardIDs).Error; err != nil {
					return fmt.Errorf("deleting participants: %w", err)
				}
				if err := tx.Where("column_id IN ?", columnIDs).Delete(&model.Card{}).Error; err != nil {
					return fmt.Errorf("deleting cards: %w", err)
				}
			}
			if err := tx.Where("board_id = ?", boardID).Delete(&model.Column{}).Error; err != nil {
				return fmt.Errorf("deleting columns: %w", err)
			}
		}
		if err := tx.Where("board_id = ?", boardID).Delete(&model.BoardShare{}).Error; err != nil {
			return fmt.Errorf("deleting shares: %w", err)
		}
		if err := tx.Delete(&model.Board{}, "id = ?", boardID).Error; err != nil {
			return fmt.Errorf("deleting board: %w", err)
		}
		return nil
	})
}

// CreateColumn appends a column to an unlocked board.
func (s *BoardService) CreateColumn(actor Actor, boardID, name string) (*model.Column, error) {
	board, err := s.boardInWorkspace(actor, boardID)
	if err != nil {
		return nil, err
	}
	if board.IsStructureLocked {
		return nil, ErrBoardLocked
	}

	var maxPos *int
	if err := s.db.Model(&model.Column{}).
		Where("board_id = ?", boardID).
		Select("MAX(position)").Scan(&maxPos).Error; err != nil {
		return nil, fmt.Errorf("finding column position: %w", err)
	}
	position := 0
	if maxPos != nil {
		position = *maxPos + 1
	}

	column := model.Column{BoardID: boardID, Name: name, Position: position}
	if err := s.db.Create(&column).Error; err != nil {
		return nil, fmt.Errorf("creating column: %w", err)
	}
	return &column, nil
}

// RenameColumn renames a column on an unlocked board.
func (s *BoardService) RenameColumn(actor Actor, columnID, name string) error {
	column, err := s.columnOnUnlockedBoard(actor, columnID)
	if err != nil {
		return err
	}
	return s.db.Model(column).Update("name", name).Error
}

// DeleteColumn removes a column and its cards from an unlocked board.
func (s *BoardService) DeleteColumn(actor Actor, columnID string) error {
	column, err := s.columnOnUnlockedBoard(actor, columnID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var cardIDs []string
		if err := tx.Model(&model.Card{}).Where("column_id = ?", columnID).
			Pluck("id", &cardIDs).Error; err != nil {
			return fmt.Errorf("collecting cards: %w", err)
		}
		if len(cardIDs) > 0 {
			if err := tx.Where("card_id IN ?", cardIDs).Delete(&model.ChecklistItem{}).Error; err != nil {
				return fmt.Errorf("deleting checklist items: %w", err)
			}
			if err := tx.Exec("DELETE FROM card_participants WHERE card_id IN ?", cardIDs).Error; err != nil {
				return fmt.Errorf("deleting participants: %w", err)
			}
			if err := tx.Where("column_id = ?", columnID).Delete(&model.Card{}).Error; err != nil {
				return fmt.Errorf("deleting cards: %w", err)
			}
		}
		return tx.Delete(column).Error
	})
}

func (s *BoardService) boardInWorkspace(actor Actor, boardID string) (*model.Board, error) {
	var board model.Board
	err := s.db.First(&board, "id = ? AND workspace_id = ?", boardID, actor.WorkspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching board: %w", err)
	}
	return &board, nil
}

func (s *BoardService) columnOnUnlockedBoard(actor Actor, columnID string) (*model.Column, error) {
	var column model.Column
	err := s.db.First(&column, "id = ?", columnID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching column: %w", err)
	}
	board, err := s.boardInWorkspace(actor, column.BoardID)
	if err != nil {
		return nil, err
	}
	if board.IsStructureLocked {
		return nil, ErrBoardLocked
	}
	return &column, nil
}
