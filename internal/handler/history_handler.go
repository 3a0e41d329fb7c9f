package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Youskoofx/chrono24/internal/service"
	"github.com/Youskoofx/chrono24/pkg/logger"
)

// HistoryHandler serves the audit log endpoint
type HistoryHandler struct {
	history *service.HistoryService
}

// NewHistoryHandler creates the history handler
func NewHistoryHandler(history *service.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history}
}

// List handles retrieving the audit log, newest first
func (h *HistoryHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	entries, err := h.history.List(c.Request().Context())
	if err != nil {
		log.Error("Failed to list history", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve history"})
	}

	log.Info("History retrieved", zap.Int("count", len(entries)))
	return c.JSON(http.StatusOK, entries)
}
