package handler

import (
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"
	"checksuite-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TemplateHandler exposes the process template catalog and its version
// lifecycle.
type TemplateHandler struct {
	templates *service.TemplateService
	processes *service.ProcessService
}

func NewTemplateHandler(templates *service.TemplateService, processes *service.ProcessService) *TemplateHandler {
	return &TemplateHandler{templates: templates, processes: processes}
}

func (h *TemplateHandler) List(c echo.Context) error {
	prometheus.RecordTemplateOperation("list")

	opts := service.TemplateListOptions{
		Filter:   c.QueryParam("filter"),
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
	}
	templates, err := h.templates.List(actorFromContext(c), opts)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"templates": templates})
}

func (h *TemplateHandler) Get(c echo.Context) error {
	prometheus.RecordTemplateOperation("get")

	template, err := h.templates.Get(actorFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) GetVersion(c echo.Context) error {
	version, err := h.templates.GetVersion(actorFromContext(c), c.Param("versionId"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, version)
}

func (h *TemplateHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("create")

	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	template, err := h.templates.Create(actorFromContext(c), req.Name, req.Description, req.Category)
	if err != nil {
		return serviceError(c, err)
	}

	log.Info("Template created",
		zap.String("template_id", template.ID),
		zap.String("name", template.Name))
	return c.JSON(http.StatusCreated, template)
}

// CreateDraft clones the latest version of a template into a new editable
// draft.
func (h *TemplateHandler) CreateDraft(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTemplateOperation("create_draft")

	result, err := h.templates.CreateNewDraft(actorFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}

	if n := result.SkippedSteps + result.SkippedItems; n > 0 {
		prometheus.DraftCloneSkippedCounter.Add(float64(n))
	}
	log.Info("Draft created",
		zap.String("template_id", c.Param("id")),
		zap.Int("version_number", result.Version.VersionNumber),
		zap.Int("skipped_steps", result.SkippedSteps),
		zap.Int("skipped_items", result.SkippedItems))
	return c.JSON(http.StatusCreated, result)
}

func (h *TemplateHandler) Publish(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ChangeSummary string `json:"change_summary"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	versionID := c.Param("versionId")
	if err := h.templates.Publish(actorFromContext(c), versionID, req.ChangeSummary); err != nil {
		return serviceError(c, err)
	}

	prometheus.TemplatePublishCounter.Inc()
	log.Info("Template version published", zap.String("version_id", versionID))
	return c.JSON(http.StatusOK, echo.Map{"message": "version published"})
}

func (h *TemplateHandler) Deactivate(c echo.Context) error {
	prometheus.RecordTemplateOperation("deactivate")

	if err := h.templates.Deactivate(actorFromContext(c), c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "template deactivated"})
}

func (h *TemplateHandler) ToggleFavorite(c echo.Context) error {
	var req struct {
		Favorite bool `json:"favorite"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.templates.ToggleFavorite(actorFromContext(c), c.Param("id"), req.Favorite); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"favorite": req.Favorite})
}

func (h *TemplateHandler) AddStep(c echo.Context) error {
	var req service.StepInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	step, err := h.templates.AddStep(actorFromContext(c), c.Param("versionId"), req)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, step)
}

func (h *TemplateHandler) UpdateStep(c echo.Context) error {
	var req service.StepInput
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.templates.UpdateStep(actorFromContext(c), c.Param("stepId"), req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "step updated"})
}

func (h *TemplateHandler) DeleteStep(c echo.Context) error {
	if err := h.templates.DeleteStep(actorFromContext(c), c.Param("stepId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "step deleted"})
}

func (h *TemplateHandler) AddStepItem(c echo.Context) error {
	var req struct {
		Content     string `json:"content"`
		IsMandatory bool   `json:"is_mandatory"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	item, err := h.templates.AddStepItem(actorFromContext(c), c.Param("stepId"), req.Content, req.IsMandatory)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *TemplateHandler) UpdateStepItem(c echo.Context) error {
	var req struct {
		Content     string `json:"content"`
		IsMandatory bool   `json:"is_mandatory"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.templates.UpdateStepItem(actorFromContext(c), c.Param("itemId"), req.Content, req.IsMandatory); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item updated"})
}

func (h *TemplateHandler) DeleteStepItem(c echo.Context) error {
	if err := h.templates.DeleteStepItem(actorFromContext(c), c.Param("itemId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted"})
}

// StartProcess instantiates a published template version into a locked board.
func (h *TemplateHandler) StartProcess(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name           string `json:"name"`
		AssigneeUserID string `json:"assignee_user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	actor := actorFromContext(c)
	if req.AssigneeUserID == "" {
		req.AssigneeUserID = actor.UserID
	}

	result, err := h.processes.Start(actor, c.Param("id"), c.Param("versionId"), req.AssigneeUserID, req.Name)
	if err != nil {
		return serviceError(c, err)
	}

	prometheus.ProcessStartCounter.Inc()
	if result.SkippedSteps > 0 {
		prometheus.ProcessStepSkippedCounter.Add(float64(result.SkippedSteps))
	}
	log.Info("Process started",
		zap.String("board_id", result.BoardID),
		zap.String("template_id", c.Param("id")),
		zap.Int("columns_created", result.ColumnsCreated),
		zap.Int("skipped_steps", result.SkippedSteps))
	return c.JSON(http.StatusCreated, result)
}
