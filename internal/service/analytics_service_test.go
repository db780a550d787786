package service

import (
	"testing"
	"time"

	"checksuite-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedAnalyticsBoard(t *testing.T, fx *fixture) (model.Column, model.Column) {
	t.Helper()

	board := model.Board{WorkspaceID: fx.ws.ID, Name: "Sprint"}
	require.NoError(t, fx.db.Create(&board).Error)
	active := model.Column{BoardID: board.ID, Name: "In Progress", Position: 0}
	require.NoError(t, fx.db.Create(&active).Error)
	done := model.Column{BoardID: board.ID, Name: "Done", Position: 1}
	require.NoError(t, fx.db.Create(&done).Error)
	return active, done
}

func seedCard(t *testing.T, fx *fixture, columnID, title string, assignee *string, due *time.Time) model.Card {
	t.Helper()

	card := model.Card{ColumnID: columnID, Title: title, AssignedTo: assignee, DueDate: due}
	require.NoError(t, fx.db.Create(&card).Error)
	return card
}

func TestWorkspaceAnalytics(t *testing.T) {
	fx := newFixture(t)
	svc := NewAnalyticsService(fx.db, nil)

	active, done := seedAnalyticsBoard(t, fx)
	yesterday := time.Now().Add(-24 * time.Hour)
	lastWeek := time.Now().Add(-7 * 24 * time.Hour)
	nextWeek := time.Now().Add(7 * 24 * time.Hour)

	seedCard(t, fx, active.ID, "Overdue A", &fx.member.UserID, &yesterday)
	seedCard(t, fx, active.ID, "Overdue B", &fx.member.UserID, &lastWeek)
	seedCard(t, fx, active.ID, "On track", &fx.owner.UserID, &nextWeek)
	seedCard(t, fx, active.ID, "No due date", nil, nil)
	// Past due but in a done column: not overdue.
	seedCard(t, fx, done.ID, "Shipped late", &fx.owner.UserID, &yesterday)

	data, err := svc.Workspace(fx.member)
	require.NoError(t, err)

	assert.Equal(t, 5, data.TotalCards)
	assert.Equal(t, 2, data.OverdueCards)

	// Oldest due date leads the overdue list.
	require.Len(t, data.OverdueList, 2)
	assert.Equal(t, "Overdue B", data.OverdueList[0].Title)
	assert.Equal(t, "Overdue A", data.OverdueList[1].Title)
	assert.Equal(t, fx.member.Email, data.OverdueList[0].AssignedToEmail)

	// Workload sorted by count descending.
	require.Len(t, data.CardsPerUser, 3)
	assert.Equal(t, fx.member.Email, data.CardsPerUser[0].Email)
	assert.Equal(t, 2, data.CardsPerUser[0].Count)

	perColumn := map[string]int{}
	for _, c := range data.CardsPerColumn {
		perColumn[c.Name] = c.Count
	}
	assert.Equal(t, 4, perColumn["In Progress"])
	assert.Equal(t, 1, perColumn["Done"])
}

func TestWorkspaceAnalyticsScopedToWorkspace(t *testing.T) {
	fx := newFixture(t)
	svc := NewAnalyticsService(fx.db, nil)

	other := model.Workspace{Name: "Globex"}
	require.NoError(t, fx.db.Create(&other).Error)
	foreignBoard := model.Board{WorkspaceID: other.ID, Name: "Elsewhere"}
	require.NoError(t, fx.db.Create(&foreignBoard).Error)
	foreignColumn := model.Column{BoardID: foreignBoard.ID, Name: "Inbox", Position: 0}
	require.NoError(t, fx.db.Create(&foreignColumn).Error)
	seedCard(t, fx, foreignColumn.ID, "Not ours", nil, nil)

	data, err := svc.Workspace(fx.member)
	require.NoError(t, err)
	assert.Zero(t, data.TotalCards)
}

func TestMyDay(t *testing.T) {
	fx := newFixture(t)
	svc := NewAnalyticsService(fx.db, nil)

	active, _ := seedAnalyticsBoard(t, fx)
	yesterday := time.Now().Add(-24 * time.Hour)
	lastWeek := time.Now().Add(-7 * 24 * time.Hour)
	nextWeek := time.Now().Add(7 * 24 * time.Hour)

	seedCard(t, fx, active.ID, "Due yesterday", &fx.member.UserID, &yesterday)
	seedCard(t, fx, active.ID, "Long overdue", &fx.member.UserID, &lastWeek)
	seedCard(t, fx, active.ID, "Due next week", &fx.member.UserID, &nextWeek)
	seedCard(t, fx, active.ID, "Someone else's", &fx.owner.UserID, &yesterday)
	seedCard(t, fx, active.ID, "No due date", &fx.member.UserID, nil)

	cards, err := svc.MyDay(fx.member)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Long overdue", cards[0].Title)
	assert.Equal(t, "Due yesterday", cards[1].Title)
}
