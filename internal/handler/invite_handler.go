package handler

import (
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// InviteHandler exposes workspace invites.
type InviteHandler struct {
	invites *service.InviteService
}

func NewInviteHandler(invites *service.InviteService) *InviteHandler {
	return &InviteHandler{invites: invites}
}

func (h *InviteHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	invite, err := h.invites.Create(actorFromContext(c), req.Email, req.Role)
	if err != nil {
		return serviceError(c, err)
	}

	log.Info("Invite created",
		zap.String("invite_id", invite.ID),
		zap.String("email", invite.Email),
		zap.String("role", invite.Role))
	return c.JSON(http.StatusCreated, invite)
}

func (h *InviteHandler) List(c echo.Context) error {
	invites, err := h.invites.List(actorFromContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"invites": invites})
}

func (h *InviteHandler) Revoke(c echo.Context) error {
	if err := h.invites.Revoke(actorFromContext(c), c.Param("id")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "invite revoked"})
}

// Accept redeems an invite token for the authenticated user and joins them
// to the inviting workspace.
func (h *InviteHandler) Accept(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Token string `json:"token"`
	}
	if err := c.Bind(&req); err != nil || req.Token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}

	userID, _ := c.Get("user_id").(string)
	invite, err := h.invites.Accept(userID, req.Token)
	if err != nil {
		return serviceError(c, err)
	}

	log.Info("Invite accepted",
		zap.String("user_id", userID),
		zap.String("workspace_id", invite.WorkspaceID))
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "invite accepted",
		"workspace_id": invite.WorkspaceID,
		"role":         invite.Role,
	})
}
