package service

import (
	"testing"

	"checksuite-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessService(fx *fixture) *ProcessService {
	audit := NewAuditRecorder(fx.db, nil)
	return NewProcessService(fx.db, nil, NewTemplateService(fx.db, nil, audit), audit)
}

func TestStartProcessBuildsLockedBoard(t *testing.T) {
	fx := newFixture(t)
	svc := newProcessService(fx)

	template, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, []model.TemplateStep{
		{Name: "Paperwork", Position: 0, RequireChecklistComplete: true, Items: []model.TemplateChecklistItem{
			{Content: "Sign contract", Position: 0, IsMandatory: true},
			{Content: "Collect tax forms", Position: 1, IsMandatory: true},
		}},
		{Name: "Equipment", Position: 1, Items: []model.TemplateChecklistItem{
			{Content: "Order laptop", Position: 0},
		}},
		{Name: "Done", Position: 2},
	})

	result, err := svc.Start(fx.owner, template.ID, version.ID, fx.member.UserID, "Onboarding: Jamie")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ColumnsCreated)
	assert.Equal(t, 2, result.CardsCreated)
	assert.Zero(t, result.SkippedSteps)

	var board model.Board
	require.NoError(t, fx.db.
		Preload("Columns.Cards.ChecklistItems").
		First(&board, "id = ?", result.BoardID).Error)
	assert.True(t, board.IsStructureLocked)
	assert.Equal(t, "Onboarding: Jamie", board.Name)
	assert.Equal(t, fx.ws.ID, board.WorkspaceID)
	require.NotNil(t, board.OriginTemplateID)
	assert.Equal(t, template.ID, *board.OriginTemplateID)
	require.NotNil(t, board.OriginTemplateVersionID)
	assert.Equal(t, version.ID, *board.OriginTemplateVersionID)

	require.Len(t, board.Columns, 3)
	byName := map[string]model.Column{}
	for _, col := range board.Columns {
		byName[col.Name] = col
	}
	assert.True(t, byName["Paperwork"].RequiresTaskCompletion)
	assert.False(t, byName["Equipment"].RequiresTaskCompletion)
	assert.Equal(t, 2, byName["Done"].Position)

	// A step with items seeds one card carrying the checklist, all
	// incomplete, assigned to the chosen assignee.
	require.Len(t, byName["Paperwork"].Cards, 1)
	seed := byName["Paperwork"].Cards[0]
	assert.Equal(t, "Paperwork", seed.Title)
	require.NotNil(t, seed.AssignedTo)
	assert.Equal(t, fx.member.UserID, *seed.AssignedTo)
	require.Len(t, seed.ChecklistItems, 2)
	for _, item := range seed.ChecklistItems {
		assert.False(t, item.IsCompleted)
		assert.True(t, item.IsMandatory)
	}

	// A step without items gets a column only.
	assert.Empty(t, byName["Done"].Cards)

	events := auditEvents(t, fx.db, fx.ws.ID, model.AuditProcessStart)
	require.Len(t, events, 1)
	assert.Equal(t, result.BoardID, events[0].EntityID)
	assert.Equal(t, model.AuditEntityBoard, events[0].EntityType)
}

func TestStartProcessIsACopyNotAReference(t *testing.T) {
	fx := newFixture(t)
	svc := newProcessService(fx)

	template, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, []model.TemplateStep{
		{Name: "Intake", Position: 0, Items: []model.TemplateChecklistItem{
			{Content: "Collect documents", Position: 0, IsMandatory: true},
		}},
	})

	result, err := svc.Start(fx.owner, template.ID, version.ID, fx.owner.UserID, "Run 1")
	require.NoError(t, err)

	// Mutating the template afterwards never touches the running board.
	require.NoError(t, fx.db.Model(&model.TemplateStep{}).
		Where("version_id = ?", version.ID).
		Update("name", "Renamed Intake").Error)

	var columns []model.Column
	require.NoError(t, fx.db.Where("board_id = ?", result.BoardID).Find(&columns).Error)
	require.Len(t, columns, 1)
	assert.Equal(t, "Intake", columns[0].Name)
}

func TestStartProcessRequiresName(t *testing.T) {
	fx := newFixture(t)
	svc := newProcessService(fx)

	template, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, nil)

	_, err := svc.Start(fx.owner, template.ID, version.ID, fx.owner.UserID, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestStartProcessUnknownVersion(t *testing.T) {
	fx := newFixture(t)
	svc := newProcessService(fx)

	template, _ := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, nil)

	_, err := svc.Start(fx.owner, template.ID, "00000000-0000-0000-0000-000000000000", fx.owner.UserID, "Run")
	assert.ErrorIs(t, err, ErrNotFound)
}
