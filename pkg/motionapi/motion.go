package motionapi

import (
	"context"
	"net/url"
	"strconv"

	"github.com/gowvp/motionsearch/internal/core/motion"
)

// FetchSampleIndices GET /motion_data
// 选区参数保留 4 位小数
func (e Engine) FetchSampleIndices(ctx context.Context, cameraID string, region motion.Region, spanSize int) ([]int, error) {
	params := url.Values{}
	params.Set("camera_id", cameraID)
	params.Set("left", formatFraction(region.Position.X))
	params.Set("top", formatFraction(region.Position.Y))
	params.Set("width", formatFraction(region.Width))
	params.Set("height", formatFraction(region.Height))
	params.Set("span_size", strconv.Itoa(spanSize))

	var out []int
	if err := e.get(ctx, "/motion_data", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchHeatmap GET /heatmap
func (e Engine) FetchHeatmap(ctx context.Context, cameraID string) (motion.HeatmapGrid, error) {
	params := url.Values{}
	params.Set("camera_id", cameraID)

	var out motion.HeatmapGrid
	if err := e.get(ctx, "/heatmap", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatFraction(v float64) string {
	return strconv.FormatFloat(motion.Round4(v), 'f', -1, 64)
}
