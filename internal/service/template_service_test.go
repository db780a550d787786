package service

import (
	"testing"

	"checksuite-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTemplateCreatesInitialDraft(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	template, err := svc.Create(fx.owner, "Client Onboarding", "standard intake", "sales")
	require.NoError(t, err)
	require.NotEmpty(t, template.ID)
	assert.NotEmpty(t, template.Slug)
	assert.True(t, template.IsActive)
	require.NotNil(t, template.WorkspaceID)
	assert.Equal(t, fx.ws.ID, *template.WorkspaceID)

	var versions []model.TemplateVersion
	require.NoError(t, fx.db.Where("template_id = ?", template.ID).Find(&versions).Error)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, model.VersionStatusDraft, versions[0].Status)
	assert.Equal(t, fx.owner.UserID, versions[0].CreatedBy)
}

func TestCreateTemplateRequiresAdmin(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	_, err := svc.Create(fx.member, "Client Onboarding", "", "")
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCreateTemplateRejectsBlankName(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	_, err := svc.Create(fx.owner, "   ", "", "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateNewDraftClonesStructure(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	template, source := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, []model.TemplateStep{
		{Name: "Paperwork", Position: 0, RequireChecklistComplete: true, Items: []model.TemplateChecklistItem{
			{Content: "Sign contract", Position: 0, IsMandatory: true},
			{Content: "Collect tax forms", Position: 1, IsMandatory: true},
		}},
		{Name: "Equipment", Position: 1, Items: []model.TemplateChecklistItem{
			{Content: "Order laptop", Position: 0},
		}},
	})

	result, err := svc.CreateNewDraft(fx.owner, template.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Version.VersionNumber)
	assert.Equal(t, model.VersionStatusDraft, result.Version.Status)
	assert.Equal(t, 2, result.StepsCloned)
	assert.Equal(t, 3, result.ItemsCloned)
	assert.Zero(t, result.SkippedSteps)
	assert.Zero(t, result.SkippedItems)

	clone, err := svc.GetVersion(fx.owner, result.Version.ID)
	require.NoError(t, err)
	require.Len(t, clone.Steps, 2)
	assert.Equal(t, "Paperwork", clone.Steps[0].Name)
	assert.True(t, clone.Steps[0].RequireChecklistComplete)
	require.Len(t, clone.Steps[0].Items, 2)

	// Cloned rows carry fresh identifiers.
	original, err := svc.GetVersion(fx.owner, source.ID)
	require.NoError(t, err)
	assert.NotEqual(t, original.Steps[0].ID, clone.Steps[0].ID)
	assert.NotEqual(t, original.Steps[0].Items[0].ID, clone.Steps[0].Items[0].ID)

	// Editing the draft leaves the source version untouched.
	require.NoError(t, svc.UpdateStepItem(fx.owner, clone.Steps[0].Items[0].ID, "Sign updated contract", true))
	original, err = svc.GetVersion(fx.owner, source.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sign contract", original.Steps[0].Items[0].Content)
}

func TestCreateNewDraftUnknownTemplate(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	_, err := svc.CreateNewDraft(fx.owner, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPublishVersion(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	_, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusDraft, nil)

	require.NoError(t, svc.Publish(fx.owner, version.ID, "initial release"))

	published, err := svc.GetVersion(fx.owner, version.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VersionStatusPublished, published.Status)
	require.NotNil(t, published.PublishedAt)
	assert.Equal(t, "initial release", published.ChangeSummary)

	events := auditEvents(t, fx.db, fx.ws.ID, model.AuditTemplatePublish)
	require.Len(t, events, 1)
	assert.Equal(t, version.ID, events[0].EntityID)

	// Republishing only refreshes the stamp.
	require.NoError(t, svc.Publish(fx.owner, version.ID, "re-release"))
	published, err = svc.GetVersion(fx.owner, version.ID)
	require.NoError(t, err)
	assert.Equal(t, model.VersionStatusPublished, published.Status)
	assert.Equal(t, "re-release", published.ChangeSummary)
}

func TestPublishUnknownVersion(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	err := svc.Publish(fx.owner, "00000000-0000-0000-0000-000000000000", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersAndFavorites(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	mine, err := svc.Create(fx.owner, "Sales Pipeline", "", "sales")
	require.NoError(t, err)
	system := model.ProcessTemplate{Name: "Starter Kanban", Slug: "starter-kanban-1", IsActive: true}
	require.NoError(t, fx.db.Create(&system).Error)
	retired, err := svc.Create(fx.owner, "Old Process", "", "")
	require.NoError(t, err)
	require.NoError(t, svc.Deactivate(fx.owner, retired.ID))

	all, err := svc.List(fx.member, TemplateListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	workspaceOnly, err := svc.List(fx.member, TemplateListOptions{Filter: TemplateFilterWorkspace})
	require.NoError(t, err)
	require.Len(t, workspaceOnly, 1)
	assert.Equal(t, mine.ID, workspaceOnly[0].ID)

	systemOnly, err := svc.List(fx.member, TemplateListOptions{Filter: TemplateFilterSystem})
	require.NoError(t, err)
	require.Len(t, systemOnly, 1)
	assert.Equal(t, system.ID, systemOnly[0].ID)

	require.NoError(t, svc.ToggleFavorite(fx.member, system.ID, true))
	favorites, err := svc.List(fx.member, TemplateListOptions{Filter: TemplateFilterFavorites})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, system.ID, favorites[0].ID)
	assert.True(t, favorites[0].IsFavorite)

	searched, err := svc.List(fx.member, TemplateListOptions{Search: "sales pipe"})
	require.NoError(t, err)
	require.Len(t, searched, 1)
	assert.Equal(t, mine.ID, searched[0].ID)
}

func TestListVersionDigest(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	template, v1 := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, nil)
	v2 := model.TemplateVersion{TemplateID: template.ID, VersionNumber: 2, Status: model.VersionStatusDraft, CreatedBy: fx.owner.UserID}
	require.NoError(t, fx.db.Create(&v2).Error)

	summaries, err := svc.List(fx.owner, TemplateListOptions{Filter: TemplateFilterWorkspace})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, 2, summaries[0].VersionCount)
	require.NotNil(t, summaries[0].LatestPublishedVersion)
	assert.Equal(t, v1.ID, summaries[0].LatestPublishedVersion.ID)
	require.NotNil(t, summaries[0].LatestDraftVersion)
	assert.Equal(t, v2.ID, summaries[0].LatestDraftVersion.ID)
}

func TestStepEditingDraftOnly(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	_, draft := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusDraft, nil)

	first, err := svc.AddStep(fx.owner, draft.ID, StepInput{Name: "Kickoff"})
	require.NoError(t, err)
	assert.Equal(t, 0, first.Position)
	second, err := svc.AddStep(fx.owner, draft.ID, StepInput{Name: "Review", RequireChecklistComplete: true})
	require.NoError(t, err)
	assert.Equal(t, 1, second.Position)

	item, err := svc.AddStepItem(fx.owner, second.ID, "Approve budget", true)
	require.NoError(t, err)
	assert.True(t, item.IsMandatory)

	_, err = svc.AddStep(fx.member, draft.ID, StepInput{Name: "Nope"})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.Publish(fx.owner, draft.ID, ""))
	_, err = svc.AddStep(fx.owner, draft.ID, StepInput{Name: "Too late"})
	assert.ErrorIs(t, err, ErrVersionNotDraft)
	err = svc.UpdateStep(fx.owner, first.ID, StepInput{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrVersionNotDraft)
	err = svc.DeleteStepItem(fx.owner, item.ID)
	assert.ErrorIs(t, err, ErrVersionNotDraft)
}

func TestAuditListAdminOnly(t *testing.T) {
	fx := newFixture(t)
	audit := NewAuditRecorder(fx.db, nil)

	audit.Record(fx.ws.ID, fx.owner.UserID, model.AuditTemplatePublish,
		model.AuditEntityTemplateVersion, "v1", nil)

	events, err := audit.List(fx.owner, AuditListOptions{})
	require.NoError(t, err)
	require.Len(t, events, 1)

	_, err = audit.List(fx.member, AuditListOptions{})
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestTemplateHiddenFromOtherWorkspaces(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	template, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, nil)

	other := model.Workspace{Name: "Globex"}
	require.NoError(t, fx.db.Create(&other).Error)
	stranger := seedMember(t, fx.db, other.ID, "stranger@globex.test", model.RoleOwner)

	_, err := svc.Get(stranger, template.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.GetVersion(stranger, version.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// System templates have no owning workspace and stay visible.
	system := model.ProcessTemplate{Name: "Incident Response", Slug: "incident-response-1", IsActive: true}
	require.NoError(t, fx.db.Create(&system).Error)
	_, err = svc.Get(stranger, system.ID)
	assert.NoError(t, err)
}

func TestAuditRecordSwallowsFailures(t *testing.T) {
	fx := newFixture(t)
	rec := NewAuditRecorder(fx.db, nil)

	require.NoError(t, fx.db.Migrator().DropTable(&model.AuditEvent{}))

	// Must not panic or surface the insert failure.
	rec.Record(fx.ws.ID, fx.owner.UserID, model.AuditCardMove, model.AuditEntityCard, "card-1", nil)
}

func TestTemplateWritesScopedToWorkspace(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	steps := []model.TemplateStep{{Name: "Paperwork", Position: 0}}
	template, version := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusDraft, steps)

	other := model.Workspace{Name: "Globex"}
	require.NoError(t, fx.db.Create(&other).Error)
	stranger := seedMember(t, fx.db, other.ID, "stranger@globex.test", model.RoleOwner)

	assert.ErrorIs(t, svc.Publish(stranger, version.ID, "hostile"), ErrNotFound)
	var stored model.TemplateVersion
	require.NoError(t, fx.db.First(&stored, "id = ?", version.ID).Error)
	assert.Equal(t, model.VersionStatusDraft, stored.Status)

	assert.ErrorIs(t, svc.Deactivate(stranger, template.ID), ErrNotFound)
	var storedTemplate model.ProcessTemplate
	require.NoError(t, fx.db.First(&storedTemplate, "id = ?", template.ID).Error)
	assert.True(t, storedTemplate.IsActive)

	// No draft row may appear in the foreign template.
	_, err := svc.CreateNewDraft(stranger, template.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	var versionCount int64
	require.NoError(t, fx.db.Model(&model.TemplateVersion{}).
		Where("template_id = ?", template.ID).Count(&versionCount).Error)
	assert.EqualValues(t, 1, versionCount)

	assert.ErrorIs(t, svc.ToggleFavorite(stranger, template.ID, true), ErrNotFound)

	err = svc.UpdateStep(stranger, steps[0].ID, StepInput{Name: "Renamed"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.AddStep(stranger, version.ID, StepInput{Name: "Injected"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateNewDraftRequiresAdmin(t *testing.T) {
	fx := newFixture(t)
	svc := NewTemplateService(fx.db, nil, NewAuditRecorder(fx.db, nil))

	template, _ := seedVersion(t, fx.db, fx.ws.ID, fx.owner.UserID, model.VersionStatusPublished, nil)

	_, err := svc.CreateNewDraft(fx.member, template.ID)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	var versionCount int64
	require.NoError(t, fx.db.Model(&model.TemplateVersion{}).
		Where("template_id = ?", template.ID).Count(&versionCount).Error)
	assert.EqualValues(t, 1, versionCount)
}
