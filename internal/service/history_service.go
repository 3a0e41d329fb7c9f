package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Youskoofx/chrono24/internal/model"
	"github.com/Youskoofx/chrono24/prometheus"
)

// HistoryService reads and appends the audit log. Entries are append-only:
// no update or delete path exists.
type HistoryService struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewHistoryService creates the audit log service
func NewHistoryService(db *gorm.DB, logger *zap.Logger) *HistoryService {
	return &HistoryService{db: db, logger: logger}
}

// List returns all audit entries, newest first
func (s *HistoryService) List(ctx context.Context) ([]model.HistoryEntry, error) {
	defer prometheus.TrackDBOperation("history_list")(time.Now())

	var entries []model.HistoryEntry
	result := s.db.WithContext(ctx).Order("created_at DESC").Find(&entries)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list history: %w", result.Error)
	}
	return entries, nil
}

// Append inserts one audit entry on the given transaction. It is only
// called from within a tire mutation, so a failure here rolls the primary
// write back with it.
func (s *HistoryService) Append(tx *gorm.DB, entry *model.HistoryEntry) error {
	if result := tx.Create(entry); result.Error != nil {
		return fmt.Errorf("failed to append history entry: %w", result.Error)
	}
	prometheus.RecordHistoryOperation("append")
	return nil
}
