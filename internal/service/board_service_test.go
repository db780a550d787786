package service

import (
	"testing"

	"checksuite-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoardSeedsDefaultColumns(t *testing.T) {
	fx := newFixture(t)
	svc := NewBoardService(fx.db, nil)

	board, err := svc.Create(fx.member, "Marketing")
	require.NoError(t, err)
	assert.False(t, board.IsStructureLocked)
	assert.Nil(t, board.OriginTemplateID)

	var columns []model.Column
	require.NoError(t, fx.db.Where("board_id = ?", board.ID).
		Order("position ASC").Find(&columns).Error)
	require.Len(t, columns, 3)
	assert.Equal(t, "To Do", columns[0].Name)
	assert.Equal(t, "In Progress", columns[1].Name)
	assert.Equal(t, "Done", columns[2].Name)
	for _, col := range columns {
		assert.False(t, col.RequiresTaskCompletion)
	}
}

func TestLockedBoardRejectsStructuralChanges(t *testing.T) {
	fx := newFixture(t)
	svc := NewBoardService(fx.db, nil)

	board := model.Board{WorkspaceID: fx.ws.ID, Name: "Onboarding", IsStructureLocked: true}
	require.NoError(t, fx.db.Create(&board).Error)
	column := model.Column{BoardID: board.ID, Name: "Paperwork", Position: 0}
	require.NoError(t, fx.db.Create(&column).Error)

	_, err := svc.CreateColumn(fx.owner, board.ID, "Extra")
	assert.ErrorIs(t, err, ErrBoardLocked)
	assert.ErrorIs(t, svc.RenameColumn(fx.owner, column.ID, "Renamed"), ErrBoardLocked)
	assert.ErrorIs(t, svc.DeleteColumn(fx.owner, column.ID), ErrBoardLocked)

	// Card-level work stays possible on locked boards.
	cards := NewCardService(fx.db, nil, NewAuditRecorder(fx.db, nil))
	_, err = cards.Create(fx.member, column.ID, "Sign contract")
	require.NoError(t, err)
}

func TestUnlockedBoardColumnLifecycle(t *testing.T) {
	fx := newFixture(t)
	svc := NewBoardService(fx.db, nil)

	board, err := svc.Create(fx.member, "Marketing")
	require.NoError(t, err)

	column, err := svc.CreateColumn(fx.member, board.ID, "Blocked")
	require.NoError(t, err)
	assert.Equal(t, 3, column.Position)

	require.NoError(t, svc.RenameColumn(fx.member, column.ID, "On Hold"))
	var stored model.Column
	require.NoError(t, fx.db.First(&stored, "id = ?", column.ID).Error)
	assert.Equal(t, "On Hold", stored.Name)

	require.NoError(t, svc.DeleteColumn(fx.member, column.ID))
	assert.ErrorIs(t, svc.RenameColumn(fx.member, column.ID, "Gone"), ErrNotFound)
}

func TestGetBoardScopedToWorkspace(t *testing.T) {
	fx := newFixture(t)
	svc := NewBoardService(fx.db, nil)

	other := model.Workspace{Name: "Globex"}
	require.NoError(t, fx.db.Create(&other).Error)
	foreign := model.Board{WorkspaceID: other.ID, Name: "Secret"}
	require.NoError(t, fx.db.Create(&foreign).Error)

	_, err := svc.Get(fx.member, foreign.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	boards, err := svc.List(fx.member)
	require.NoError(t, err)
	assert.Empty(t, boards)
}

func TestListResolvesTemplateOrigin(t *testing.T) {
	fx := newFixture(t)
	svc := NewBoardService(fx.db, nil)

	template, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, nil)
	board := model.Board{
		WorkspaceID:             fx.ws.ID,
		Name:                    "Onboarding: Jamie",
		OriginTemplateID:        &template.ID,
		OriginTemplateVersionID: &version.ID,
		IsStructureLocked:       true,
	}
	require.NoError(t, fx.db.Create(&board).Error)

	boards, err := svc.List(fx.member)
	require.NoError(t, err)
	require.Len(t, boards, 1)
	assert.Equal(t, template.Name, boards[0].OriginTemplateName)
	assert.Equal(t, version.VersionNumber, boards[0].OriginVersionNumber)
}

func TestDeleteBoardCascades(t *testing.T) {
	fx := newFixture(t)
	svc := NewBoardService(fx.db, nil)

	gbSvc := NewCardService(fx.db, nil, NewAuditRecorder(fx.db, nil))
	board, err := svc.Create(fx.member, "Marketing")
	require.NoError(t, err)
	var column model.Column
	require.NoError(t, fx.db.First(&column, "board_id = ?", board.ID).Error)
	card, err := gbSvc.Create(fx.member, column.ID, "Launch campaign")
	require.NoError(t, err)
	_, err = gbSvc.AddChecklistItem(fx.member, card.ID, "Draft copy")
	require.NoError(t, err)
	shares := NewShareService(fx.db, nil)
	_, err = shares.Create(fx.member, board.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(fx.member, board.ID))

	var colCount, cardCount, itemCount, shareCount int64
	require.NoError(t, fx.db.Model(&model.Column{}).Where("board_id = ?", board.ID).Count(&colCount).Error)
	require.NoError(t, fx.db.Model(&model.Card{}).Where("column_id = ?", column.ID).Count(&cardCount).Error)
	require.NoError(t, fx.db.Model(&model.ChecklistItem{}).Where("card_id = ?", card.ID).Count(&itemCount).Error)
	require.NoError(t, fx.db.Model(&model.BoardShare{}).Where("board_id = ?", board.ID).Count(&shareCount).Error)
	assert.Zero(t, colCount)
	assert.Zero(t, cardCount)
	assert.Zero(t, itemCount)
	assert.Zero(t, shareCount)

	_, err = svc.Get(fx.member, board.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
