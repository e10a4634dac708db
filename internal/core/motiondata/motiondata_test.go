package motiondata_test

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/gowvp/motionsearch/internal/core/motiondata/store/motiondatadb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC)

func newTestCore(t *testing.T) motiondata.Core {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := motiondatadb.NewDB(db).AutoMigrate(true)
	return motiondata.NewCore(store,
		motiondata.WithLocation(time.UTC),
		motiondata.WithNow(func() time.Time { return testNow }),
	)
}

func at(hour, minute, second int) int64 {
	return time.Date(2026, 10, 19, hour, minute, second, 0, time.UTC).UnixMilli()
}

func TestRecordAndMotions(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "cam", Cells: []int{0, 1, 17}, Timestamp: at(0, 0, 10)}))
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "cam", Cells: []int{17}, Timestamp: at(0, 1, 0)}))
	// 重复上报同一秒不报错也不重复计数
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "cam", Cells: []int{17, 17}, Timestamp: at(0, 1, 0)}))
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "other", Cells: []int{0}, Timestamp: at(0, 0, 5)}))

	got, err := core.Motions(ctx, "cam", "", motiondata.CellRect{X: 0, Y: 0, Width: 2, Height: 2})
	require.NoError(t, err)
	assert.Equal(t, []int{10, 60}, got)

	got, err = core.Motions(ctx, "cam", "", motiondata.CellRect{X: 0, Y: 0, Width: 1, Height: 1})
	require.NoError(t, err)
	assert.Equal(t, []int{10}, got)

	got, err = core.Motions(ctx, "cam", "2026-10-18", motiondata.CellRect{X: 0, Y: 0, Width: 16, Height: 9})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordRejectsCellOutsideGrid(t *testing.T) {
	core := newTestCore(t)
	err := core.Record(context.Background(), &motiondata.RecordInput{CameraID: "cam", Cells: []int{144}})
	require.Error(t, err)
}

func TestMotionsOutOfBounds(t *testing.T) {
	core := newTestCore(t)
	_, err := core.Motions(context.Background(), "cam", "", motiondata.CellRect{X: 10, Y: 0, Width: 7, Height: 1})
	require.Error(t, err)
}

func TestCellsFromPercent(t *testing.T) {
	core := newTestCore(t)
	tests := []struct {
		name                     string
		left, top, width, height float64
		want                     motiondata.CellRect
	}{
		{name: "origin", left: 0, top: 0, width: 0.1, height: 0.1, want: motiondata.CellRect{X: 0, Y: 0, Width: 2, Height: 1}},
		{name: "centre", left: 0.25, top: 0.5, width: 0.5, height: 0.25, want: motiondata.CellRect{X: 4, Y: 4, Width: 9, Height: 3}},
		{name: "whole frame clamps", left: 0, top: 0, width: 1, height: 1, want: motiondata.CellRect{X: 0, Y: 0, Width: 16, Height: 9}},
		{name: "right edge", left: 1, top: 1, width: 0, height: 0, want: motiondata.CellRect{X: 15, Y: 8, Width: 1, Height: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.CellsFromPercent(tt.left, tt.top, tt.width, tt.height)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := core.CellsFromPercent(-0.1, 0, 0.1, 0.1)
	require.Error(t, err)
}

func TestSampleIndices(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	for _, ts := range []int64{at(0, 0, 1), at(0, 0, 29), at(0, 0, 30), at(0, 2, 0)} {
		require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "cam", Cells: []int{0}, Timestamp: ts}))
	}

	got, err := core.SampleIndices(ctx, &motiondata.SampleInput{
		PercentInput: motiondata.PercentInput{CameraID: "cam", Width: 1, Height: 1},
		SpanSize:     30,
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, got)

	// span_size 为 0 时按默认的 30 秒
	got, err = core.SampleIndices(ctx, &motiondata.SampleInput{
		PercentInput: motiondata.PercentInput{CameraID: "cam", Width: 1, Height: 1},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 4}, got)

	_, err = core.SampleIndices(ctx, &motiondata.SampleInput{
		PercentInput: motiondata.PercentInput{CameraID: "cam", Width: 1, Height: 1},
		SpanSize:     -1,
	})
	require.Error(t, err)
}

func TestToSampleIndices(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2}, motiondata.ToSampleIndices([]int{0, 5, 9, 10, 14}, 5))
	assert.Equal(t, []int{}, motiondata.ToSampleIndices(nil, 30))
}

func TestHeatmapAndCameras(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "b", Cells: []int{3, 143}, Timestamp: at(1, 0, 0)}))
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "b", Cells: []int{3}, Timestamp: at(1, 0, 1)}))
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "a", Cells: []int{0}, Timestamp: at(1, 0, 0)}))

	grid, err := core.Heatmap(ctx, "b", "")
	require.NoError(t, err)
	require.Len(t, grid, 144)
	assert.Equal(t, 2, grid[3])
	assert.Equal(t, 1, grid[143])
	assert.Equal(t, 0, grid[0])

	cams, err := core.Cameras(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cams)
}

func TestCleanupExpired(t *testing.T) {
	core := newTestCore(t)
	ctx := context.Background()
	old := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC).UnixMilli()
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "cam", Cells: []int{0, 1}, Timestamp: old}))
	require.NoError(t, core.Record(ctx, &motiondata.RecordInput{CameraID: "cam", Cells: []int{0}, Timestamp: at(2, 0, 0)}))

	assert.EqualValues(t, 2, core.CleanupExpired(ctx, 7))
	cams, err := core.Cameras(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"cam"}, cams)
}
