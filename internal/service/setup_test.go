package service

import (
	"testing"

	"checksuite-service/internal/model"
	"checksuite-service/pkg/database"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB builds a fresh in-memory database with the full schema. The
// connection pool is pinned to one connection so every query sees the same
// in-memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

// fixture is one workspace with an owner and a plain member.
type fixture struct {
	db     *gorm.DB
	ws     model.Workspace
	owner  Actor
	member Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := newTestDB(t)
	ws := model.Workspace{Name: "Acme"}
	require.NoError(t, db.Create(&ws).Error)

	return &fixture{
		db:     db,
		ws:     ws,
		owner:  seedMember(t, db, ws.ID, "owner@acme.test", model.RoleOwner),
		member: seedMember(t, db, ws.ID, "member@acme.test", model.RoleMember),
	}
}

func seedMember(t *testing.T, db *gorm.DB, workspaceID, email, role string) Actor {
	t.Helper()

	user := model.User{Email: email, Password: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&model.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      user.ID,
		Role:        role,
	}).Error)

	return Actor{UserID: user.ID, Email: email, WorkspaceID: workspaceID, Role: role}
}

// seedVersion inserts a template with one version holding the given steps.
func seedVersion(t *testing.T, db *gorm.DB, workspaceID, createdBy, status string, steps []model.TemplateStep) (model.ProcessTemplate, model.TemplateVersion) {
	t.Helper()

	template := model.ProcessTemplate{
		WorkspaceID: &workspaceID,
		Name:        "Employee Onboarding",
		Slug:        "employee-onboarding-1",
		Category:    "hr",
		IsActive:    true,
	}
	require.NoError(t, db.Create(&template).Error)

	version := model.TemplateVersion{
		TemplateID:    template.ID,
		VersionNumber: 1,
		Status:        status,
		CreatedBy:     createdBy,
	}
	require.NoError(t, db.Create(&version).Error)

	for i := range steps {
		steps[i].VersionID = version.ID
		items := steps[i].Items
		steps[i].Items = nil
		require.NoError(t, db.Create(&steps[i]).Error)
		for j := range items {
			items[j].StepID = steps[i].ID
			require.NoError(t, db.Create(&items[j]).Error)
		}
	}
	return template, version
}

func auditEvents(t *testing.T, db *gorm.DB, workspaceID, eventType string) []model.AuditEvent {
	t.Helper()

	var events []model.AuditEvent
	require.NoError(t, db.
		Where("workspace_id = ? AND event_type = ?", workspaceID, eventType).
		Order("created_at ASC").
		Find(&events).Error)
	return events
}
