package handler

import (
	"errors"
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// actorFromContext builds the service actor from the claims the auth
// middleware stored on the request.
func actorFromContext(c echo.Context) service.Actor {
	actor := service.Actor{}
	if v, ok := c.Get("user_id").(string); ok {
		actor.UserID = v
	}
	if v, ok := c.Get("email").(string); ok {
		actor.Email = v
	}
	if v, ok := c.Get("workspace_id").(string); ok {
		actor.WorkspaceID = v
	}
	if v, ok := c.Get("user_role").(string); ok {
		actor.Role = v
	}
	return actor
}

// serviceError translates service sentinel errors into HTTP responses.
// Unknown errors are logged and surface as a plain 500.
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "permission denied"})
	case errors.Is(err, service.ErrComplianceViolation):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, service.ErrVersionNotDraft):
		return c.JSON(http.StatusConflict, echo.Map{"error": "version is not a draft"})
	case errors.Is(err, service.ErrBoardLocked):
		return c.JSON(http.StatusConflict, echo.Map{"error": "board structure is locked"})
	case errors.Is(err, service.ErrInviteExpired):
		return c.JSON(http.StatusGone, echo.Map{"error": "invite has expired"})
	case errors.Is(err, service.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		logger.FromContext(c).Error("Unhandled service error", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
