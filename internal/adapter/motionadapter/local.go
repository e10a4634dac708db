package motionadapter

import (
	"context"

	"github.com/gowvp/motionsearch/internal/core/motion"
	"github.com/gowvp/motionsearch/internal/core/motiondata"
)

var _ motion.Transport = (*Local)(nil)

// Local 直接查询本进程内的运动数据，不经过 http
type Local struct {
	dataCore motiondata.Core
}

func NewLocal(dataCore motiondata.Core) *Local {
	return &Local{dataCore: dataCore}
}

// FetchSampleIndices implements motion.Transport.
func (a *Local) FetchSampleIndices(ctx context.Context, cameraID string, region motion.Region, spanSize int) ([]int, error) {
	return a.dataCore.SampleIndices(ctx, &motiondata.SampleInput{
		PercentInput: motiondata.PercentInput{
			CameraID: cameraID,
			Left:     motion.Round4(region.Position.X),
			Top:      motion.Round4(region.Position.Y),
			Width:    motion.Round4(region.Width),
			Height:   motion.Round4(region.Height),
		},
		SpanSize: spanSize,
	})
}

// FetchHeatmap implements motion.Transport.
func (a *Local) FetchHeatmap(ctx context.Context, cameraID string) (motion.HeatmapGrid, error) {
	grid, err := a.dataCore.Heatmap(ctx, cameraID, "")
	if err != nil {
		return nil, err
	}
	return motion.HeatmapGrid(grid), nil
}
