package service

import (
	"errors"
	"fmt"

	"checksuite-service/internal/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShareService issues public read-only board links. A share resolves to the
// full board tree without authentication while it stays active.
type ShareService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewShareService creates a new share service
func NewShareService(db *gorm.DB, log *zap.Logger) *ShareService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ShareService{db: db, log: log}
}

// Create issues a share link for a board in the actor's workspace.
func (s *ShareService) Create(actor Actor, boardID string) (*model.BoardShare, error) {
	var board model.Board
	err := s.db.First(&board, "id = ? AND workspace_id = ?", boardID, actor.WorkspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching board: %w", err)
	}

	share := model.BoardShare{
		BoardID:   boardID,
		Token:     uuid.NewString(),
		CreatedBy: actor.UserID,
		IsActive:  true,
	}
	if err := s.db.Create(&share).Error; err != nil {
		return nil, fmt.Errorf("creating share: %w", err)
	}

	s.log.Info("Board share created",
		zap.String("board_id", boardID),
		zap.String("share_id", share.ID))
	return &share, nil
}

// Resolve returns the shared board's full tree for an active token. No
// authentication: the token is the capability.
func (s *ShareService) Resolve(token string) (*model.Board, error) {
	var share model.BoardShare
	err := s.db.First(&share, "token = ? AND is_active = ?", token, true).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching share: %w", err)
	}

	var board model.Board
	err = s.db.
		Preload("Columns", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Columns.Cards", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Columns.Cards.ChecklistItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&board, "id = ?", share.BoardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching shared board: %w", err)
	}
	return &board, nil
}

// List returns a board's share links.
func (s *ShareService) List(actor Actor, boardID string) ([]model.BoardShare, error) {
	var board model.Board
	err := s.db.Select("id").First(&board, "id = ? AND workspace_id = ?", boardID, actor.WorkspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching board: %w", err)
	}

	var shares []model.BoardShare
	if err := s.db.Where("board_id = ?", boardID).Order("created_at DESC").Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("listing shares: %w", err)
	}
	return shares, nil
}

// Revoke deactivates a share link. The row is kept for audit purposes.
func (s *ShareService) Revoke(actor Actor, shareID string) error {
	var share model.BoardShare
	err := s.db.First(&share, "id = ?", shareID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching share: %w", err)
	}

	var board model.Board
	err = s.db.Select("id").First(&board, "id = ? AND workspace_id = ?", share.BoardID, actor.WorkspaceID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching board: %w", err)
	}

	return s.db.Model(&share).Update("is_active", false).Error
}
