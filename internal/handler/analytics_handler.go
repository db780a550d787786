package handler

import (
	"net/http"

	"checksuite-service/internal/service"

	"github.com/labstack/echo/v4"
)

// AnalyticsHandler exposes the workspace dashboard aggregates.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

func (h *AnalyticsHandler) Workspace(c echo.Context) error {
	data, err := h.analytics.Workspace(actorFromContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

func (h *AnalyticsHandler) MyDay(c echo.Context) error {
	cards, err := h.analytics.MyDay(actorFromContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cards": cards})
}
