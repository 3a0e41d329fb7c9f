package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Youskoofx/chrono24/internal/model"
	"github.com/Youskoofx/chrono24/internal/service"
	"github.com/Youskoofx/chrono24/pkg/logger"
)

// TireRequest defines the structure for tire creation requests
type TireRequest struct {
	Brand     string `json:"brand"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Diameter  int    `json:"diameter"`
	Season    string `json:"season"`
	Condition string `json:"condition"`
	Quantity  int    `json:"quantity"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

// TireHandler serves the tire inventory endpoints
type TireHandler struct {
	tires *service.TireService
}

// NewTireHandler creates the tire handler
func NewTireHandler(tires *service.TireService) *TireHandler {
	return &TireHandler{tires: tires}
}

// List handles retrieving all tires
func (h *TireHandler) List(c echo.Context) error {
	log := logger.FromContext(c)

	tires, err := h.tires.List(c.Request().Context())
	if err != nil {
		log.Error("Failed to list tires", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tires"})
	}

	log.Info("Tires retrieved", zap.Int("count", len(tires)))
	return c.JSON(http.StatusOK, tires)
}

// Get handles retrieving a single tire by ID
func (h *TireHandler) Get(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	tire, err := h.tires.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTireNotFound) {
			log.Warn("Tire not found", zap.String("tire_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tire not found"})
		}
		log.Error("Failed to get tire", zap.String("tire_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve tire"})
	}

	return c.JSON(http.StatusOK, tire)
}

// Create handles adding a new tire
func (h *TireHandler) Create(c echo.Context) error {
	log := logger.FromContext(c)

	var req TireRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	tire := model.Tire{
		Brand:     req.Brand,
		Width:     req.Width,
		Height:    req.Height,
		Diameter:  req.Diameter,
		Season:    req.Season,
		Condition: req.Condition,
		Quantity:  req.Quantity,
		Reference: req.Reference,
		Notes:     req.Notes,
	}

	created, err := h.tires.Create(c.Request().Context(), &tire)
	if err != nil {
		if isValidationError(err) {
			log.Warn("Tire validation failed", zap.Error(err))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		log.Error("Failed to create tire", zap.String("brand", req.Brand), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create tire"})
	}

	log.Info("Tire created",
		zap.String("tire_id", created.ID),
		zap.String("brand", created.Brand),
		zap.String("dimensions", created.Dimensions()))
	return c.JSON(http.StatusCreated, created)
}

// Update handles partial updates of an existing tire
func (h *TireHandler) Update(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var patch service.TirePatch
	if err := c.Bind(&patch); err != nil {
		log.Error("Invalid request data", zap.String("tire_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	updated, err := h.tires.Update(c.Request().Context(), id, &patch)
	if err != nil {
		if errors.Is(err, service.ErrTireNotFound) {
			log.Warn("Tire not found for update", zap.String("tire_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tire not found"})
		}
		if isValidationError(err) {
			log.Warn("Tire validation failed", zap.String("tire_id", id), zap.Error(err))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
		}
		log.Error("Failed to update tire", zap.String("tire_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update tire"})
	}

	log.Info("Tire updated",
		zap.String("tire_id", updated.ID),
		zap.Int("quantity", updated.Quantity))
	return c.JSON(http.StatusOK, updated)
}

// Delete handles removing a tire
func (h *TireHandler) Delete(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	if err := h.tires.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, service.ErrTireNotFound) {
			log.Warn("Tire not found for deletion", zap.String("tire_id", id))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tire not found"})
		}
		log.Error("Failed to delete tire", zap.String("tire_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete tire"})
	}

	log.Info("Tire deleted", zap.String("tire_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "tire deleted successfully"})
}

// Stats handles the dashboard aggregate counts
func (h *TireHandler) Stats(c echo.Context) error {
	log := logger.FromContext(c)

	stats, err := h.tires.Stats(c.Request().Context())
	if err != nil {
		log.Error("Failed to compute stats", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}

	return c.JSON(http.StatusOK, stats)
}

// LowStock handles the low stock listing, with an optional threshold
// query parameter
func (h *TireHandler) LowStock(c echo.Context) error {
	log := logger.FromContext(c)

	threshold := service.DefaultLowStockThreshold
	if raw := c.QueryParam("threshold"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Warn("Invalid threshold parameter", zap.String("value", raw))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "threshold must be a positive integer"})
		}
		threshold = parsed
	}

	tires, err := h.tires.LowStock(c.Request().Context(), threshold)
	if err != nil {
		log.Error("Failed to list low stock tires", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve low stock tires"})
	}

	log.Info("Low stock tires retrieved",
		zap.Int("threshold", threshold),
		zap.Int("count", len(tires)))
	return c.JSON(http.StatusOK, tires)
}

// isValidationError reports whether the error came from the model schema
// check rather than the store
func isValidationError(err error) bool {
	return errors.Is(err, model.ErrBrandRequired) ||
		errors.Is(err, model.ErrInvalidSeason) ||
		errors.Is(err, model.ErrInvalidCondition) ||
		errors.Is(err, model.ErrNegativeQuantity) ||
		errors.Is(err, model.ErrInvalidSize)
}
