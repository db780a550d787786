package handler

import (
	"net/http"

	"checksuite-service/internal/service"
	"checksuite-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// BoardHandler exposes board and column management.
type BoardHandler struct {
	boards *service.BoardService
}

func NewBoardHandler(boards *service.BoardService) *BoardHandler {
	return &BoardHandler{boards: boards}
}

func (h *BoardHandler) List(c echo.Context) error {
	boards, err := h.boards.List(actorFromContext(c))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"boards": boards})
}

func (h *BoardHandler) Get(c echo.Context) error {
	board, err := h.boards.Get(actorFromContext(c), c.Param("id"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, board)
}

func (h *BoardHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	board, err := h.boards.Create(actorFromContext(c), req.Name)
	if err != nil {
		return serviceError(c, err)
	}

	log.Info("Board created",
		zap.String("board_id", board.ID),
		zap.String("name", board.Name))
	return c.JSON(http.StatusCreated, board)
}

func (h *BoardHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)

	boardID := c.Param("id")
	if err := h.boards.Delete(actorFromContext(c), boardID); err != nil {
		return serviceError(c, err)
	}

	log.Info("Board deleted", zap.String("board_id", boardID))
	return c.JSON(http.StatusOK, echo.Map{"message": "board deleted"})
}

func (h *BoardHandler) CreateColumn(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	column, err := h.boards.CreateColumn(actorFromContext(c), c.Param("id"), req.Name)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, column)
}

func (h *BoardHandler) RenameColumn(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}

	if err := h.boards.RenameColumn(actorFromContext(c), c.Param("columnId"), req.Name); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "column renamed"})
}

func (h *BoardHandler) DeleteColumn(c echo.Context) error {
	if err := h.boards.DeleteColumn(actorFromContext(c), c.Param("columnId")); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "column deleted"})
}
