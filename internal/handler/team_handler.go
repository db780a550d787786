package handler

import (
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TeamHandler exposes workspace membership and functional roles.
type TeamHandler struct {
	team *service.TeamService
}

func NewTeamHandler(team *service.TeamService) *TeamHandler {
	return &TeamHandler{team: team}
}

func (h *TeamHandler) ListMembers(c echo.Context) error {
	members, err := h.team.ListMembers(actorFromContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"members": members})
}

func (h *TeamHandler) ListRoles(c echo.Context) error {
	roles, err := h.team.ListRoles(actorFromContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"roles": roles})
}

func (h *TeamHandler) CreateRole(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name  string `json:"name"`
		Color string `json:"color"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	role, err := h.team.CreateRole(actorFromContext(c), req.Name, req.Color)
	if err != nil {
		return serviceError(c, err)
	}

	log.Info("Workspace role created",
		zap.String("role_id", role.ID),
		zap.String("name", role.Name))
	return c.JSON(http.StatusCreated, role)
}

func (h *TeamHandler) DeleteRole(c echo.Context) error {
	if err := h.team.DeleteRole(actorFromContext(c), c.Param("roleId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role deleted"})
}

// AssignRole sets or clears a member's functional role.
func (h *TeamHandler) AssignRole(c echo.Context) error {
	var req struct {
		RoleID *string `json:"role_id"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.team.AssignRole(actorFromContext(c), c.Param("userId"), req.RoleID); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "role assigned"})
}
