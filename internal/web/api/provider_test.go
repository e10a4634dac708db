package api

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gowvp/motionsearch/internal/conf"
	"github.com/gowvp/motionsearch/internal/core/motion"
	"github.com/gowvp/motionsearch/internal/core/motiondata/store/motiondatadb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestNewMotionDataCoreCleanupStopsWorker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	cfg := conf.DefaultConfig()
	cfg.Motion.RetainDays = 7
	_, cleanup := NewMotionDataCore(motiondatadb.NewDB(db).AutoMigrate(true), &cfg)

	done := make(chan struct{})
	go func() {
		cleanup()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("cleanup did not stop the worker")
	}
}

func TestNewMotionCoreCopiesConfig(t *testing.T) {
	cfg := conf.DefaultConfig()
	cfg.Motion.SpanSize = 10
	cfg.Motion.HeatmapCap = 200
	cfg.Motion.GridCols = 4

	grid := make(motion.HeatmapGrid, 8)
	core, err := NewMotionCore(&stubTransport{heatmap: grid}, &cfg, slog.Default())
	require.NoError(t, err)
	assert.Equal(t, 10, core.SpanSize())

	view, err := core.Heatmap(context.Background(), "cam1")
	require.NoError(t, err)
	assert.Equal(t, 200, view.Cap)
	assert.Equal(t, 4, view.Columns)
}
