package service

import (
	"errors"
	"fmt"

	"checksuite-service/internal/model"

	"gorm.io/gorm"
)

// Draft structure editing. All of these operate on draft versions only:
// once published, a version's step/item tree is frozen so that boards
// instantiated from it stay reproducible.

// StepInput carries the editable fields of a template step.
type StepInput struct {
	Name                     string `json:"name"`
	Description              string `json:"description"`
	RequireChecklistComplete bool   `json:"require_checklist_complete"`
}

// AddStep appends a step to a draft version at the next free position.
func (s *TemplateService) AddStep(actor Actor, versionID string, input StepInput) (*model.TemplateStep, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if err := s.requireDraft(actor, versionID); err != nil {
		return nil, err
	}

	var maxPos *int
	if err := s.db.Model(&model.TemplateStep{}).
		Where("version_id = ?", versionID).
		Select("MAX(position)").Scan(&maxPos).Error; err != nil {
		return nil, fmt.Errorf("finding step position: %w", err)
	}
	position := 0
	if maxPos != nil {
		position = *maxPos + 1
	}

	step := model.TemplateStep{
		VersionID:                versionID,
		Name:                     input.Name,
		Description:              input.Description,
		Position:                 position,
		RequireChecklistComplete: input.RequireChecklistComplete,
	}
	if err := s.db.Create(&step).Error; err != nil {
		return nil, fmt.Errorf("creating step: %w", err)
	}
	return &step, nil
}

// UpdateStep edits a step on a draft version.
func (s *TemplateService) UpdateStep(actor Actor, stepID string, input StepInput) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	step, err := s.stepOnDraft(actor, stepID)
	if err != nil {
		return err
	}

	return s.db.Model(step).Updates(map[string]interface{}{
		"name":                       input.Name,
		"description":                input.Description,
		"require_checklist_complete": input.RequireChecklistComplete,
	}).Error
}

// DeleteStep removes a step and its items from a draft version.
func (s *TemplateService) DeleteStep(actor Actor, stepID string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	step, err := s.stepOnDraft(actor, stepID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("step_id = ?", stepID).Delete(&model.TemplateChecklistItem{}).Error; err != nil {
			return fmt.Errorf("deleting step items: %w", err)
		}
		if err := tx.Delete(step).Error; err != nil {
			return fmt.Errorf("deleting step: %w", err)
		}
		return nil
	})
}

// AddStepItem appends a checklist item to a step on a draft version.
func (s *TemplateService) AddStepItem(actor Actor, stepID, content string, mandatory bool) (*model.TemplateChecklistItem, error) {
	if !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	if _, err := s.stepOnDraft(actor, stepID); err != nil {
		return nil, err
	}

	var maxPos *int
	if err := s.db.Model(&model.TemplateChecklistItem{}).
		Where("step_id = ?", stepID).
		Select("MAX(position)").Scan(&maxPos).Error; err != nil {
		return nil, fmt.Errorf("finding item position: %w", err)
	}
	position := 0
	if maxPos != nil {
		position = *maxPos + 1
	}

	item := model.TemplateChecklistItem{
		StepID:      stepID,
		Content:     content,
		Position:    position,
		IsMandatory: mandatory,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, fmt.Errorf("creating step item: %w", err)
	}
	return &item, nil
}

// UpdateStepItem edits a checklist item on a draft version.
func (s *TemplateService) UpdateStepItem(actor Actor, itemID, content string, mandatory bool) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	item, err := s.itemOnDraft(actor, itemID)
	if err != nil {
		return err
	}
	return s.db.Model(item).Updates(map[string]interface{}{
		"content":      content,
		"is_mandatory": mandatory,
	}).Error
}

// DeleteStepItem removes a checklist item from a draft version.
func (s *TemplateService) DeleteStepItem(actor Actor, itemID string) error {
	if !actor.IsAdmin() {
		return ErrPermissionDenied
	}
	item, err := s.itemOnDraft(actor, itemID)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}

func (s *TemplateService) requireDraft(actor Actor, versionID string) error {
	var version model.TemplateVersion
	err := s.db.Select("id", "status", "template_id").First(&version, "id = ?", versionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("fetching version: %w", err)
	}
	if err := s.checkTemplateVisible(actor, version.TemplateID); err != nil {
		return err
	}
	if version.Status != model.VersionStatusDraft {
		return ErrVersionNotDraft
	}
	return nil
}

func (s *TemplateService) stepOnDraft(actor Actor, stepID string) (*model.TemplateStep, error) {
	var step model.TemplateStep
	err := s.db.First(&step, "id = ?", stepID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching step: %w", err)
	}
	if err := s.requireDraft(actor, step.VersionID); err != nil {
		return nil, err
	}
	return &step, nil
}

func (s *TemplateService) itemOnDraft(actor Actor, itemID string) (*model.TemplateChecklistItem, error) {
	var item model.TemplateChecklistItem
	err := s.db.First(&item, "id = ?", itemID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetching step item: %w", err)
	}
	var step model.TemplateStep
	if err := s.db.Select("id", "version_id").First(&step, "id = ?", item.StepID).Error; err != nil {
		return nil, fmt.Errorf("fetching parent step: %w", err)
	}
	if err := s.requireDraft(actor, step.VersionID); err != nil {
		return nil, err
	}
	return &item, nil
}
