package handler

import (
	"net/http"
	"strconv"

	"checksuite-service/internal/service"

	"github.com/labstack/echo/v4"
)

// AuditHandler exposes the workspace audit trail. Admin only.
type AuditHandler struct {
	audit *service.AuditRecorder
}

func NewAuditHandler(audit *service.AuditRecorder) *AuditHandler {
	return &AuditHandler{audit: audit}
}

func (h *AuditHandler) List(c echo.Context) error {
	opts := service.AuditListOptions{
		EventType: c.QueryParam("event_type"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		opts.Limit = limit
	}

	events, err := h.audit.List(actorFromContext(c), opts)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}
