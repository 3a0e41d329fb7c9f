package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Youskoofx/chrono24/internal/cache"
	"github.com/Youskoofx/chrono24/internal/model"
	"github.com/Youskoofx/chrono24/internal/notify"
	"github.com/Youskoofx/chrono24/prometheus"
)

// DefaultLowStockThreshold matches the dashboard's low stock card.
const DefaultLowStockThreshold = 5

// Dashboard cache keys. Only the default-threshold low stock query is
// cached so invalidation stays a fixed key set.
const (
	statsCacheKey    = "tires:stats"
	lowStockCacheKey = "tires:lowstock:default"
)

// TirePatch carries a partial update; nil fields are left untouched.
type TirePatch struct {
	Brand     *string `json:"brand,omitempty"`
	Width     *int    `json:"width,omitempty"`
	Height    *int    `json:"height,omitempty"`
	Diameter  *int    `json:"diameter,omitempty"`
	Season    *string `json:"season,omitempty"`
	Condition *string `json:"condition,omitempty"`
	Quantity  *int    `json:"quantity,omitempty"`
	Reference *string `json:"reference,omitempty"`
	Notes     *string `json:"notes,omitempty"`
}

func (p *TirePatch) apply(t *model.Tire) {
	if p.Brand != nil {
		t.Brand = *p.Brand
	}
	if p.Width != nil {
		t.Width = *p.Width
	}
	if p.Height != nil {
		t.Height = *p.Height
	}
	if p.Diameter != nil {
		t.Diameter = *p.Diameter
	}
	if p.Season != nil {
		t.Season = *p.Season
	}
	if p.Condition != nil {
		t.Condition = *p.Condition
	}
	if p.Quantity != nil {
		t.Quantity = *p.Quantity
	}
	if p.Reference != nil {
		t.Reference = *p.Reference
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
}

// TireService owns the tire table. Every mutation appends its audit entry
// in the same transaction, then publishes a change event and drops the
// dashboard caches.
type TireService struct {
	db       *gorm.DB
	history  *HistoryService
	hub      *notify.Hub
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewTireService wires the tire service with its collaborators
func NewTireService(db *gorm.DB, history *HistoryService, hub *notify.Hub, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *TireService {
	return &TireService{
		db:       db,
		history:  history,
		hub:      hub,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// List returns all tires, newest first
func (s *TireService) List(ctx context.Context) ([]model.Tire, error) {
	defer prometheus.TrackDBOperation("tire_list")(time.Now())

	var tires []model.Tire
	result := s.db.WithContext(ctx).Order("created_at DESC").Find(&tires)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list tires: %w", result.Error)
	}
	return tires, nil
}

// Get returns one tire or ErrTireNotFound
func (s *TireService) Get(ctx context.Context, id string) (*model.Tire, error) {
	defer prometheus.TrackDBOperation("tire_get")(time.Now())

	var tire model.Tire
	result := s.db.WithContext(ctx).First(&tire, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTireNotFound
		}
		return nil, fmt.Errorf("failed to get tire: %w", result.Error)
	}
	return &tire, nil
}

// Create validates and inserts one tire and its audit entry
func (s *TireService) Create(ctx context.Context, tire *model.Tire) (*model.Tire, error) {
	defer prometheus.TrackDBOperation("tire_create")(time.Now())

	if err := tire.Validate(); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(tire); result.Error != nil {
			return fmt.Errorf("failed to create tire: %w", result.Error)
		}
		return s.history.Append(tx, snapshot(tire, model.ActionAdd, tire.Quantity))
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordTireOperation("create")
	s.logger.Info("Tire created",
		zap.String("tire_id", tire.ID),
		zap.String("brand", tire.Brand),
		zap.Int("quantity", tire.Quantity))

	s.afterMutation(ctx, model.ActionAdd, tire.ID)
	return tire, nil
}

// Update merges the patch into an existing tire and audits the edit with
// the resulting quantity delta
func (s *TireService) Update(ctx context.Context, id string, patch *TirePatch) (*model.Tire, error) {
	defer prometheus.TrackDBOperation("tire_update")(time.Now())

	var updated model.Tire
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tire model.Tire
		if result := tx.First(&tire, "id = ?", id); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrTireNotFound
			}
			return fmt.Errorf("failed to load tire: %w", result.Error)
		}

		previousQuantity := tire.Quantity
		patch.apply(&tire)
		if err := tire.Validate(); err != nil {
			return err
		}

		if result := tx.Save(&tire); result.Error != nil {
			return fmt.Errorf("failed to update tire: %w", result.Error)
		}

		delta := tire.Quantity - previousQuantity
		if err := s.history.Append(tx, snapshot(&tire, model.ActionEdit, delta)); err != nil {
			return err
		}
		updated = tire
		return nil
	})
	if err != nil {
		return nil, err
	}

	prometheus.RecordTireOperation("update")
	s.logger.Info("Tire updated",
		zap.String("tire_id", updated.ID),
		zap.String("brand", updated.Brand),
		zap.Int("quantity", updated.Quantity))

	s.afterMutation(ctx, model.ActionEdit, updated.ID)
	return &updated, nil
}

// Delete removes one tire and audits the removal with delta equal to the
// negated previous quantity. A second delete of the same id returns
// ErrTireNotFound and appends nothing.
func (s *TireService) Delete(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("tire_delete")(time.Now())

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tire model.Tire
		if result := tx.First(&tire, "id = ?", id); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return ErrTireNotFound
			}
			return fmt.Errorf("failed to load tire: %w", result.Error)
		}

		if result := tx.Delete(&model.Tire{}, "id = ?", id); result.Error != nil {
			return fmt.Errorf("failed to delete tire: %w", result.Error)
		}

		return s.history.Append(tx, snapshot(&tire, model.ActionRemove, -tire.Quantity))
	})
	if err != nil {
		return err
	}

	prometheus.RecordTireOperation("delete")
	s.logger.Info("Tire deleted", zap.String("tire_id", id))

	s.afterMutation(ctx, model.ActionRemove, id)
	return nil
}

// Stats sums quantities grouped by condition for the dashboard
func (s *TireService) Stats(ctx context.Context) (*model.TireStats, error) {
	if cached, err := s.cache.Get(ctx, statsCacheKey); err == nil {
		var stats model.TireStats
		if err := json.Unmarshal(cached, &stats); err == nil {
			return &stats, nil
		}
	}

	defer prometheus.TrackDBOperation("tire_stats")(time.Now())

	var tires []model.Tire
	result := s.db.WithContext(ctx).Select("condition", "quantity").Find(&tires)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load stats: %w", result.Error)
	}

	stats := &model.TireStats{}
	for _, tire := range tires {
		stats.Total += tire.Quantity
		if tire.Condition == model.ConditionNew {
			stats.New += tire.Quantity
		} else {
			stats.Used += tire.Quantity
		}
	}

	s.cachePut(ctx, statsCacheKey, stats)
	return stats, nil
}

// LowStock returns tires with quantity at or below the threshold,
// ascending by quantity
func (s *TireService) LowStock(ctx context.Context, threshold int) ([]model.Tire, error) {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	useCache := threshold == DefaultLowStockThreshold
	if useCache {
		if cached, err := s.cache.Get(ctx, lowStockCacheKey); err == nil {
			var tires []model.Tire
			if err := json.Unmarshal(cached, &tires); err == nil {
				return tires, nil
			}
		}
	}

	defer prometheus.TrackDBOperation("tire_low_stock")(time.Now())

	var tires []model.Tire
	result := s.db.WithContext(ctx).
		Where("quantity <= ?", threshold).
		Order("quantity ASC").
		Find(&tires)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to load low stock tires: %w", result.Error)
	}

	prometheus.LowStockGauge.Set(float64(len(tires)))
	if useCache {
		s.cachePut(ctx, lowStockCacheKey, tires)
	}
	return tires, nil
}

// snapshot builds the denormalized audit entry for one mutation
func snapshot(tire *model.Tire, action string, delta int) *model.HistoryEntry {
	return &model.HistoryEntry{
		TireID:          tire.ID,
		Action:          action,
		QuantityChanged: delta,
		Brand:           tire.Brand,
		Dimensions:      tire.Dimensions(),
		Season:          tire.Season,
		Condition:       tire.Condition,
		Actor:           model.DefaultActor,
	}
}

// afterMutation runs the post-commit side effects: change events for the
// tires and history tables, and dashboard cache invalidation.
func (s *TireService) afterMutation(ctx context.Context, action, tireID string) {
	s.hub.Publish(notify.Event{Table: notify.TableTires, Action: action, RecordID: tireID})
	s.hub.Publish(notify.Event{Table: notify.TableHistory, Action: model.ActionAdd, RecordID: tireID})

	if err := s.cache.Delete(ctx, statsCacheKey, lowStockCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *TireService) cachePut(ctx context.Context, key string, value interface{}) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		s.logger.Warn("Failed to write dashboard cache", zap.String("key", key), zap.Error(err))
	}
}
