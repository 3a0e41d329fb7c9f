package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Youskoofx/chrono24/internal/cache"
	"github.com/Youskoofx/chrono24/internal/model"
	"github.com/Youskoofx/chrono24/internal/notify"
	"github.com/Youskoofx/chrono24/pkg/config"
	"github.com/Youskoofx/chrono24/prometheus"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{Metrics: config.MetricsConfig{Prefix: "test"}})
	os.Exit(m.Run())
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Tire{}, &model.HistoryEntry{}, &model.User{}))
	return db
}

func newTestService(t *testing.T) (*TireService, *HistoryService, *notify.Hub) {
	t.Helper()
	db := newTestDB(t)
	logger := zap.NewNop()
	hub := notify.NewHub()
	history := NewHistoryService(db, logger)
	tires := NewTireService(db, history, hub, cache.NewMemoryCache(), time.Minute, logger)
	return tires, history, hub
}

func michelin() *model.Tire {
	return &model.Tire{
		Brand:     "Michelin",
		Width:     205,
		Height:    55,
		Diameter:  16,
		Season:    model.SeasonSummer,
		Condition: model.ConditionNew,
		Quantity:  8,
	}
}

func TestCreateAssignsIDAndTimestamp(t *testing.T) {
	tires, _, _ := newTestService(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.Before(before))

	listed, err := tires.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, 8, listed[0].Quantity)
}

func TestCreateRejectsInvalidTire(t *testing.T) {
	tires, history, _ := newTestService(t)
	ctx := context.Background()

	bad := michelin()
	bad.Brand = ""
	_, err := tires.Create(ctx, bad)
	assert.ErrorIs(t, err, model.ErrBrandRequired)

	// Nothing may reach the store, including the audit log
	entries, err := history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGetNotFound(t *testing.T) {
	tires, _, _ := newTestService(t)

	_, err := tires.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTireNotFound)
}

func TestAuditTrailForAddEditDelete(t *testing.T) {
	tires, history, _ := newTestService(t)
	ctx := context.Background()

	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	quantity := 3
	_, err = tires.Update(ctx, created.ID, &TirePatch{Quantity: &quantity})
	require.NoError(t, err)

	require.NoError(t, tires.Delete(ctx, created.ID))

	entries, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first: remove, edit, add
	assert.Equal(t, model.ActionRemove, entries[0].Action)
	assert.Equal(t, model.ActionEdit, entries[1].Action)
	assert.Equal(t, model.ActionAdd, entries[2].Action)

	for _, entry := range entries {
		assert.Equal(t, created.ID, entry.TireID)
		assert.Equal(t, "Michelin", entry.Brand)
		assert.Equal(t, "205/55 R16", entry.Dimensions)
		assert.Equal(t, model.ConditionNew, entry.Condition)
		assert.Equal(t, model.DefaultActor, entry.Actor)
		assert.NotEmpty(t, entry.ID)
	}

	assert.Equal(t, 8, entries[2].QuantityChanged)
	assert.Equal(t, -5, entries[1].QuantityChanged)
	assert.Equal(t, -3, entries[0].QuantityChanged)
}

func TestStats(t *testing.T) {
	tires, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	used := michelin()
	used.Brand = "Continental"
	used.Condition = model.ConditionUsed
	used.Quantity = 4
	_, err = tires.Create(ctx, used)
	require.NoError(t, err)

	stats, err := tires.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Total)
	assert.Equal(t, 8, stats.New)
	assert.Equal(t, 4, stats.Used)
	assert.Equal(t, stats.Total, stats.New+stats.Used)
}

func TestStatsCacheInvalidatedOnMutation(t *testing.T) {
	tires, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	stats, err := tires.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, stats.Total)

	quantity := 2
	_, err = tires.Update(ctx, created.ID, &TirePatch{Quantity: &quantity})
	require.NoError(t, err)

	stats, err = tires.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total)
}

func TestLowStock(t *testing.T) {
	tires, _, _ := newTestService(t)
	ctx := context.Background()

	quantities := map[string]int{"Michelin": 8, "Continental": 2, "Pirelli": 5, "Hankook": 3}
	for brand, quantity := range quantities {
		tire := michelin()
		tire.Brand = brand
		tire.Quantity = quantity
		_, err := tires.Create(ctx, tire)
		require.NoError(t, err)
	}

	low, err := tires.LowStock(ctx, 5)
	require.NoError(t, err)
	require.Len(t, low, 3)

	// Ascending by quantity, nothing above the threshold
	assert.Equal(t, "Continental", low[0].Brand)
	assert.Equal(t, "Hankook", low[1].Brand)
	assert.Equal(t, "Pirelli", low[2].Brand)
	for _, tire := range low {
		assert.LessOrEqual(t, tire.Quantity, 5)
	}
}

func TestDeleteTwiceReturnsNotFound(t *testing.T) {
	tires, history, _ := newTestService(t)
	ctx := context.Background()

	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	require.NoError(t, tires.Delete(ctx, created.ID))
	assert.ErrorIs(t, tires.Delete(ctx, created.ID), ErrTireNotFound)

	// The failed second delete must not append a second remove entry
	entries, err := history.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionRemove, entries[0].Action)
	assert.Equal(t, model.ActionAdd, entries[1].Action)
}

func TestUpdateNotFound(t *testing.T) {
	tires, history, _ := newTestService(t)
	ctx := context.Background()

	quantity := 1
	_, err := tires.Update(ctx, "missing", &TirePatch{Quantity: &quantity})
	assert.ErrorIs(t, err, ErrTireNotFound)

	entries, err := history.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestMichelinScenario(t *testing.T) {
	tires, history, _ := newTestService(t)
	ctx := context.Background()

	// Insert quantity 8
	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	listed, err := tires.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 8, listed[0].Quantity)

	stats, err := tires.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &model.TireStats{Total: 8, New: 8, Used: 0}, stats)

	// Update quantity to 3: latest entry is an edit with delta -5
	quantity := 3
	_, err = tires.Update(ctx, created.ID, &TirePatch{Quantity: &quantity})
	require.NoError(t, err)

	entries, err := history.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, model.ActionEdit, entries[0].Action)
	assert.Equal(t, -5, entries[0].QuantityChanged)

	// Delete: gone from low stock, latest entry is a remove with delta -3
	require.NoError(t, tires.Delete(ctx, created.ID))

	low, err := tires.LowStock(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, low)

	entries, err = history.List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.Equal(t, model.ActionRemove, entries[0].Action)
	assert.Equal(t, -3, entries[0].QuantityChanged)
}

func TestMutationsPublishChangeEvents(t *testing.T) {
	tires, _, hub := newTestService(t)
	ctx := context.Background()

	events, cancel := hub.Subscribe(notify.TableTires)
	defer cancel()

	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	select {
	case event := <-events:
		assert.Equal(t, model.ActionAdd, event.Action)
		assert.Equal(t, created.ID, event.RecordID)
	case <-time.After(time.Second):
		t.Fatal("expected a change event")
	}
}

func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	tires, _, _ := newTestService(t)
	ctx := context.Background()

	created, err := tires.Create(ctx, michelin())
	require.NoError(t, err)

	notes := "customer reserved two"
	updated, err := tires.Update(ctx, created.ID, &TirePatch{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, "Michelin", updated.Brand)
	assert.Equal(t, 8, updated.Quantity)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, created.CreatedAt.Unix(), updated.CreatedAt.Unix())
}
