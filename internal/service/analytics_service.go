package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"checksuite-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AnalyticsService computes read-only workload and bottleneck aggregates
// over the workspace's cards.
type AnalyticsService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *gorm.DB, log *zap.Logger) *AnalyticsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnalyticsService{db: db, log: log}
}

// UserCount is one workload entry.
type UserCount struct {
	Email string `json:"email"`
	Count int    `json:"count"`
}

// ColumnCount is one bottleneck entry, aggregated by column name across boards.
type ColumnCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// OverdueCard is one overdue listing entry.
type OverdueCard struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	DueDate         time.Time `json:"due_date"`
	AssignedToEmail string    `json:"assigned_to_email,omitempty"`
	BoardName       string    `json:"board_name"`
}

// AnalyticsData is the workspace dashboard aggregate.
type AnalyticsData struct {
	TotalCards     int           `json:"total_cards"`
	OverdueCards   int           `json:"overdue_cards"`
	CardsPerUser   []UserCount   `json:"cards_per_user"`
	CardsPerColumn []ColumnCount `json:"cards_per_column"`
	OverdueList    []OverdueCard `json:"overdue_list"`
}

type cardRow struct {
	ID         string
	Title      string
	DueDate    *time.Time
	AssignedTo *string
	ColumnName string
	BoardName  string
}

// Workspace aggregates all cards in the actor's workspace. Cards in columns
// whose name reads like a done lane are excluded from the overdue figures.
func (s *AnalyticsService) Workspace(actor Actor) (*AnalyticsData, error) {
	var rows []cardRow
	err := s.db.Model(&model.Card{}).
		Select("cards.id, cards.title, cards.due_date, cards.assigned_to, columns.name AS column_name, boards.name AS board_name").
		Joins("JOIN columns ON columns.id = cards.column_id").
		Joins("JOIN boards ON boards.id = columns.board_id").
		Where("boards.workspace_id = ?", actor.WorkspaceID).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("fetching cards: %w", err)
	}

	emails, err := s.userEmails(actor.WorkspaceID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	data := &AnalyticsData{}
	userCounts := map[string]int{}
	columnCounts := map[string]int{}

	for _, row := range rows {
		data.TotalCards++

		if row.DueDate != nil && row.DueDate.Before(now) && !isDoneColumn(row.ColumnName) {
			data.OverdueCards++
			entry := OverdueCard{
				ID:        row.ID,
				Title:     row.Title,
				DueDate:   *row.DueDate,
				BoardName: row.BoardName,
			}
			if row.AssignedTo != nil {
				entry.AssignedToEmail = emails[*row.AssignedTo]
			}
			data.OverdueList = append(data.OverdueList, entry)
		}

		assignee := "unassigned"
		if row.AssignedTo != nil {
			if email, ok := emails[*row.AssignedTo]; ok {
				assignee = email
			} else {
				assignee = *row.AssignedTo
			}
		}
		userCounts[assignee]++
		columnCounts[row.ColumnName]++
	}

	for email, count := range userCounts {
		data.CardsPerUser = append(data.CardsPerUser, UserCount{Email: email, Count: count})
	}
	sort.Slice(data.CardsPerUser, func(i, j int) bool {
		if data.CardsPerUser[i].Count != data.CardsPerUser[j].Count {
			return data.CardsPerUser[i].Count > data.CardsPerUser[j].Count
		}
		return data.CardsPerUser[i].Email < data.CardsPerUser[j].Email
	})

	for name, count := range columnCounts {
		data.CardsPerColumn = append(data.CardsPerColumn, ColumnCount{Name: name, Count: count})
	}
	sort.Slice(data.CardsPerColumn, func(i, j int) bool {
		if data.CardsPerColumn[i].Count != data.CardsPerColumn[j].Count {
			return data.CardsPerColumn[i].Count > data.CardsPerColumn[j].Count
		}
		return data.CardsPerColumn[i].Name < data.CardsPerColumn[j].Name
	})

	// Oldest due date first: the longest-overdue card leads the list.
	sort.Slice(data.OverdueList, func(i, j int) bool {
		return data.OverdueList[i].DueDate.Before(data.OverdueList[j].DueDate)
	})

	return data, nil
}

// MyDay returns the actor's cards due today or already overdue, soonest first.
func (s *AnalyticsService) MyDay(actor Actor) ([]model.Card, error) {
	endOfDay := time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour)

	var cards []model.Card
	err := s.db.Model(&model.Card{}).
		Joins("JOIN columns ON columns.id = cards.column_id").
		Joins("JOIN boards ON boards.id = columns.board_id").
		Where("boards.workspace_id = ?", actor.WorkspaceID).
		Where("cards.assigned_to = ?", actor.UserID).
		Where("cards.due_date IS NOT NULL AND cards.due_date < ?", endOfDay).
		Order("cards.due_date ASC").
		Find(&cards).Error
	if err != nil {
		return nil, fmt.Errorf("fetching my-day cards: %w", err)
	}
	return cards, nil
}

func (s *AnalyticsService) userEmails(workspaceID string) (map[string]string, error) {
	var memberships []model.WorkspaceMember
	if err := s.db.Preload("User").Where("workspace_id = ?", workspaceID).
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("listing members: %w", err)
	}
	emails := make(map[string]string, len(memberships))
	for _, m := range memberships {
		emails[m.UserID] = m.User.Email
	}
	return emails, nil
}

func isDoneColumn(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, "done") || strings.Contains(lower, "fertig") || strings.Contains(lower, "erledigt")
}
