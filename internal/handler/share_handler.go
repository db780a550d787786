package handler

import (
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ShareHandler exposes read-only board share links.
type ShareHandler struct {
	shares *service.ShareService
}

func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

func (h *ShareHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	share, err := h.shares.Create(actorFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}

	log.Info("Board share created",
		zap.String("board_id", share.BoardID),
		zap.String("share_id", share.ID))
	return c.JSON(http.StatusCreated, share)
}

func (h *ShareHandler) List(c echo.Context) error {
	shares, err := h.shares.List(actorFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"shares": shares})
}

func (h *ShareHandler) Revoke(c echo.Context) error {
	if err := h.shares.Revoke(actorFromContext(c), c.Param("shareId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "share revoked"})
}

// Resolve serves a shared board by token. Unauthenticated and read-only.
func (h *ShareHandler) Resolve(c echo.Context) error {
	board, err := h.shares.Resolve(c.Param("token"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, board)
}
