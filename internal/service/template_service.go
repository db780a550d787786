package service

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"checksuite-service/internal/model"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Template list filters
const (
	TemplateFilterAll       = "all"
	TemplateFilterWorkspace = "workspace"
	TemplateFilterSystem    = "system"
	TemplateFilterFavorites = "favorites"
)

// TemplateService owns the process template catalog and the version
// lifecycle: initial drafts, deep-cloned new drafts and publishing.
type TemplateService struct {
	db    *gorm.DB
	log   *zap.Logger
	audit *AuditRecorder
}

// NewTemplateService creates a new template service
func NewTemplateService(db *gorm.DB, log *zap.Logger, audit *AuditRecorder) *TemplateService {
	if log == nil {
		log = zap.NewNop()
	}
	return &TemplateService{db: db, log: log, audit: audit}
}

// TemplateListOptions filters the template catalog.
type TemplateListOptions struct {
	Filter   string // one of the TemplateFilter constants; defaults to "all"
	Search   string // case-insensitive substring match on name
	Category string
}

// TemplateSummary is one catalog entry with its version digest.
type TemplateSummary struct {
	model.ProcessTemplate
	LatestPublishedVersion *model.TemplateVersion `json:"latest_published_version,omitempty"`
	LatestDraftVersion     *model.TemplateVersion `json:"latest_draft_version,omitempty"`
	VersionCount           int                    `json:"version_count"`
	IsFavorite             bool                   `json:"is_favorite"`
}

// List returns active templates visible to the actor: system templates
// (no workspace) plus the actor's workspace templates, narrowed by filter.
func (s *TemplateService) List(actor Actor, opts TemplateListOptions) ([]TemplateSummary, error) {
	var favorites []model.TemplateFavorite
	if err := s.db.Where("user_id = ?", actor.UserID).Find(&favorites).Error; err != nil {
		return nil, fmt.Errorf("fetching favorites: %w", err)
	}
	favoriteIDs := make(map[string]bool, len(favorites))
	for _, f := range favorites {
		favoriteIDs[f.TemplateID] = true
	}

	query := s.db.Model(&model.ProcessTemplate{}).
		Preload("Versions").
		Where("is_active = ?", true).
		Order("created_at DESC")

	switch opts.Filter {
	case TemplateFilterWorkspace:
		query = query.Where("workspace_id = ?", actor.WorkspaceID)
	case TemplateFilterSystem:
		query = query.Where("workspace_id IS NULL")
	case TemplateFilterFavorites:
		if len(favoriteIDs) == 0 {
			return []TemplateSummary{}, nil
		}
		ids := make([]string, 0, len(favoriteIDs))
		for id := range favoriteIDs {
			ids = append(ids, id)
		}
		query = query.Where("id IN ?", ids)
	default:
		query = query.Where("workspace_id = ? OR workspace_id IS NULL", actor.WorkspaceID)
	}

	if opts.Search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(opts.Search)+"%")
	}
	if opts.Category != "" && opts.Category != "all" {
		query = query.Where("category = ?", opts.Category)
	}

	var templates []model.ProcessTemplate
	if err := query.Find(&templates).Error; err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}

	summaries := make([]TemplateSummary, 0, len(templates))
	for _, t := range templates {
		versions := t.Versions
		sort.Slice(versions, func(i, j int) bool {
			return versions[i].VersionNumber > versions[j].VersionNumber
		})

		summary := TemplateSummary{
			ProcessTemplate: t,
			VersionCount:    len(versions),
			IsFavorite:      favoriteIDs[t.ID],
		}
		for i := range versions {
			v := versions[i]
			if summary.LatestPublishedVersion == nil && v.Status == model.VersionStatusPublished {
				summary.LatestPublishedVersion = &v
			}
			if summary.LatestDraftVersion == nil && v.Status == model.VersionStatusDraft {
				summary.LatestDraftVersion = &v
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// Get returns a template with its version list.
func (s *TemplateService) Get(actor Actor, templateID string) (*model.ProcessTemplate, error) {
	var template model.ProcessTemplate
	err := s.db.Preload("Versions").First(&template, "id = ?", templateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching template: %w", err)
	}
	if template.WorkspaceID != nil && *template.WorkspaceID != actor.WorkspaceID {
		return nil, ErrNotFound
	}
	return &template, nil
}

// GetVersion returns a version with its full step/item tree in position order.
func (s *TemplateService) GetVersion(actor Actor, versionID string) (*model.TemplateVersion, error) {
	var version model.TemplateVersion
	err := s.db.
		Preload("Steps", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Steps.Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&version, "id = ?", versionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching version: %w", err)
	}
	if err := s.checkTemplateVisible(actor, version.TemplateID); err != nil {
		return nil, err
	}
	return &version, nil
}

// checkTemplateVisible hides other workspaces' templates. System templates
// (no workspace) are visible everywhere.
func (s *TemplateService) checkTemplateVisible(actor Actor, templateID string) error {
	var template model.ProcessTemplate
	err := s.db.Select("workspace_id").First(&template, "id = ?", templateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching template: %w", err)
	}
	if template.WorkspaceID != nil && *template.WorkspaceID != actor.WorkspaceID {
		return ErrNotFound
	}
	return nil
}

// Create inserts a workspace-scoped template together with its initial
// draft version (number 1). Owner or admin role required. Both inserts run
// in one transaction so a failed version insert never leaves an orphan
// template behind.
func (s *TemplateService) Create(actor Actor, name, description, category string) (*model.ProcessTemplate, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidInput
	}

	template := model.ProcessTemplate{
		WorkspaceID: &actor.WorkspaceID,
		Name:        name,
		Slug:        makeSlug(name),
		Description: description,
		Category:    category,
		IsActive:    true,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&template).Error; err != nil {
			return fmt.Errorf("creating template: %w", err)
		}
		version := model.TemplateVersion{
			TemplateID:    template.ID,
			VersionNumber: 1,
			Status:        model.VersionStatusDraft,
			CreatedBy:     actor.UserID,
		}
		if err := tx.Create(&version).Error; err != nil {
			return fmt.Errorf("creating initial draft: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Process template created",
		zap.String("template_id", template.ID),
		zap.String("name", template.Name),
		zap.String("workspace_id", actor.WorkspaceID))
	return &template, nil
}

// CloneResult reports the outcome of a deep clone into a new draft.
// Skipped counts expose rows lost to per-row insert failures: the clone is
// best-effort, a single bad row does not abort the rest.
type CloneResult struct {
	Version      *model.TemplateVersion `json:"version"`
	StepsCloned  int                    `json:"steps_cloned"`
	ItemsCloned  int                    `json:"items_cloned"`
	SkippedSteps int                    `json:"skipped_steps"`
	SkippedItems int                    `json:"skipped_items"`
}

// CreateNewDraft clones the template's latest version into a new draft
// numbered max+1. The clone is structural: new step and item rows with fresh
// identifiers, so editing the draft never touches the source version.
func (s *TemplateService) CreateNewDraft(actor Actor, templateID string) (*CloneResult, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := s.checkTemplateVisible(actor, templateID); err != nil {
		return nil, err
	}

	var latest model.TemplateVersion
	err := s.db.Where("template_id = ?", templateID).
		Order("version_number DESC").
		First(&latest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching latest version: %w", err)
	}

	source, err := s.GetVersion(actor, latest.ID)
	if err != nil {
		return nil, err
	}

	newVersion := model.TemplateVersion{
		TemplateID:    templateID,
		VersionNumber: latest.VersionNumber + 1,
		Status:        model.VersionStatusDraft,
		CreatedBy:     actor.UserID,
	}
	if err := s.db.Create(&newVersion).Error; err != nil {
		return nil, fmt.Errorf("creating draft version: %w", err)
	}

	result := &CloneResult{Version: &newVersion}
	for _, step := range source.Steps {
		newStep := model.TemplateStep{
			VersionID:                newVersion.ID,
			Name:                     step.Name,
			Description:              step.Description,
			Position:                 step.Position,
			RequireChecklistComplete: step.RequireChecklistComplete,
		}
		if err := s.db.Create(&newStep).Error; err != nil {
			s.log.Warn("Skipping step during draft clone",
				zap.String("template_id", templateID),
				zap.String("source_step_id", step.ID),
				zap.Error(err))
			result.SkippedSteps++
			result.SkippedItems += len(step.Items)
			continue
		}
		result.StepsCloned++

		for _, item := range step.Items {
			newItem := model.TemplateChecklistItem{
				StepID:      newStep.ID,
				Content:     item.Content,
				Position:    item.Position,
				IsMandatory: item.IsMandatory,
			}
			if err := s.db.Create(&newItem).Error; err != nil {
				s.log.Warn("Skipping checklist item during draft clone",
					zap.String("source_item_id", item.ID),
					zap.Error(err))
				result.SkippedItems++
				continue
			}
			result.ItemsCloned++
		}
	}

	s.log.Info("New draft created",
		zap.String("template_id", templateID),
		zap.Int("version_number", newVersion.VersionNumber),
		zap.Int("steps_cloned", result.StepsCloned),
		zap.Int("skipped_steps", result.SkippedSteps))
	return result, nil
}

// Publish marks a version published and stamps the publish time and change
// summary. Republishing an already-published version is allowed and only
// refreshes the timestamp and summary.
func (s *TemplateService) Publish(actor Actor, versionID, changeSummary string) error {
	var version model.TemplateVersion
	err := s.db.Select("template_id").First(&version, "id = ?", versionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching version: %w", err)
	}
	if err := s.checkTemplateVisible(actor, version.TemplateID); err != nil {
		return err
	}

	now := time.Now()
	result := s.db.Model(&model.TemplateVersion{}).
		Where("id = ?", versionID).
		Updates(map[string]interface{}{
			"status":         model.VersionStatusPublished,
			"published_at":   now,
			"change_summary": changeSummary,
		})
	if result.Error != nil {
		return fmt.Errorf("publishing version: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}

	s.audit.Record(actor.WorkspaceID, actor.UserID, model.AuditTemplatePublish,
		model.AuditEntityTemplateVersion, versionID,
		map[string]interface{}{"change_summary": changeSummary})

	s.log.Info("Template version published",
		zap.String("version_id", versionID),
		zap.String("actor_id", actor.UserID))
	return nil
}

// Deactivate soft-deletes a template from the catalog. Admin only.
// Boards already instantiated from it are unaffected.
func (s *TemplateService) Deactivate(actor Actor, templateID string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	if err := s.checkTemplateVisible(actor, templateID); err != nil {
		return err
	}
	result := s.db.Model(&model.ProcessTemplate{}).
		Where("id = ?", templateID).
		Update("is_active", false)
	if result.Error != nil {
		return fmt.Errorf("deactivating template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleFavorite marks or unmarks a template as a favorite for the actor.
func (s *TemplateService) ToggleFavorite(actor Actor, templateID string, favorite bool) error {
	if err := s.checkTemplateVisible(actor, templateID); err != nil {
		return err
	}
	if favorite {
		fav := model.TemplateFavorite{UserID: actor.UserID, TemplateID: templateID}
		if err := s.db.Create(&fav).Error; err != nil {
			return fmt.Errorf("adding favorite: %w", err)
		}
		return nil
	}
	if err := s.db.Where("user_id = ? AND template_id = ?", actor.UserID, templateID).
		Delete(&model.TemplateFavorite{}).Error; err != nil {
		return fmt.Errorf("removing favorite: %w", err)
	}
	return nil
}

func makeSlug(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	return fmt.Sprintf("%s-%d", slug, rand.Intn(1000))
}
