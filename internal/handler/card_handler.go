package handler

import (
	"errors"
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"
	"checksuite-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CardHandler exposes card and checklist operations, including the gated
// move.
type CardHandler struct {
	cards *service.CardService
}

func NewCardHandler(cards *service.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

func (h *CardHandler) Create(c echo.Context) error {
	var req struct {
		ColumnID string `json:"column_id"`
		Title    string `json:"title"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ColumnID == "" || req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "column_id and title are required"})
	}

	card, err := h.cards.Create(actorFromContext(c), req.ColumnID, req.Title)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, card)
}

func (h *CardHandler) Update(c echo.Context) error {
	var req service.CardUpdate
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.cards.Update(actorFromContext(c), c.Param("id"), req); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "card updated"})
}

func (h *CardHandler) Delete(c echo.Context) error {
	if err := h.cards.Delete(actorFromContext(c), c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "card deleted"})
}

// Move relocates a card. Cross-column moves out of a gated column are
// blocked for members while mandatory checklist items remain open; admins
// pass through with the override recorded.
func (h *CardHandler) Move(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		ColumnID string `json:"column_id"`
		Position int    `json:"position"`
	}
	if err := c.Bind(&req); err != nil {
		prometheus.RecordCardMove("rejected")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.ColumnID == "" {
		prometheus.RecordCardMove("rejected")
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "column_id is required"})
	}

	cardID := c.Param("id")
	result, err := h.cards.Move(actorFromContext(c), cardID, req.ColumnID, req.Position)
	if err != nil {
		if errors.Is(err, service.ErrComplianceViolation) {
			prometheus.RecordCardMove("blocked")
			prometheus.ComplianceBlockCounter.Inc()
			log.Info("Card move blocked by compliance gate",
				zap.String("card_id", cardID),
				zap.String("target_column_id", req.ColumnID))
		} else {
			prometheus.RecordCardMove("rejected")
		}
		return serviceError(c, err)
	}

	if result.Overridden {
		prometheus.RecordCardMove("overridden")
		prometheus.OverrideCounter.Inc()
	} else {
		prometheus.RecordCardMove("committed")
	}

	log.Info("Card moved",
		zap.String("card_id", cardID),
		zap.String("column_id", req.ColumnID),
		zap.Bool("overridden", result.Overridden))
	return c.JSON(http.StatusOK, result)
}

func (h *CardHandler) AddParticipant(c echo.Context) error {
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.UserID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	if err := h.cards.AddParticipant(actorFromContext(c), c.Param("id"), req.UserID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "participant added"})
}

func (h *CardHandler) RemoveParticipant(c echo.Context) error {
	if err := h.cards.RemoveParticipant(actorFromContext(c), c.Param("id"), c.Param("userId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "participant removed"})
}

func (h *CardHandler) AddChecklistItem(c echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	item, err := h.cards.AddChecklistItem(actorFromContext(c), c.Param("id"), req.Content)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *CardHandler) ToggleChecklistItem(c echo.Context) error {
	var req struct {
		Completed bool `json:"completed"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.cards.ToggleChecklistItem(actorFromContext(c), c.Param("itemId"), req.Completed); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"completed": req.Completed})
}

func (h *CardHandler) UpdateChecklistItem(c echo.Context) error {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "content is required"})
	}

	if err := h.cards.UpdateChecklistItem(actorFromContext(c), c.Param("itemId"), req.Content); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item updated"})
}

func (h *CardHandler) ToggleChecklistMandatory(c echo.Context) error {
	var req struct {
		Mandatory bool `json:"mandatory"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.cards.ToggleChecklistMandatory(actorFromContext(c), c.Param("itemId"), req.Mandatory); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"mandatory": req.Mandatory})
}

func (h *CardHandler) DeleteChecklistItem(c echo.Context) error {
	if err := h.cards.DeleteChecklistItem(actorFromContext(c), c.Param("itemId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "item deleted"})
}
