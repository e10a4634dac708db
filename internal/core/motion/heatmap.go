package motion

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultHeatmapCap 密度到透明度换算的上限，只影响显示
const DefaultHeatmapCap = 1000

// HeatmapGrid 每个网格单元的运动次数，行优先
type HeatmapGrid []int

// HeatmapView 热力图及显示用的透明度
type HeatmapView struct {
	CameraID string      `json:"camera_id"`
	Columns  int         `json:"columns"`
	Cap      int         `json:"cap"`
	Cells    HeatmapGrid `json:"cells"`
	Opacity  []float64   `json:"opacity"`
	Max      int         `json:"max"`
	Mean     float64     `json:"mean"`
}

// Opacity 将密度换算为 [0,1] 的透明度
func Opacity(n, limit int) float64 {
	if limit <= 0 {
		limit = DefaultHeatmapCap
	}
	v := float64(n) / float64(limit) / 1.5
	return min(max(v, 0), 1)
}

// NewHeatmapView 生成热力图视图，Cells 为副本
func NewHeatmapView(cameraID string, grid HeatmapGrid, limit, columns int) *HeatmapView {
	if limit <= 0 {
		limit = DefaultHeatmapCap
	}
	out := HeatmapView{
		CameraID: cameraID,
		Columns:  columns,
		Cap:      limit,
		Cells:    make(HeatmapGrid, len(grid)),
		Opacity:  make([]float64, len(grid)),
	}
	copy(out.Cells, grid)
	if len(grid) == 0 {
		return &out
	}

	values := make([]float64, len(grid))
	for i, n := range grid {
		values[i] = float64(n)
		out.Opacity[i] = Opacity(n, limit)
	}
	out.Max = int(floats.Max(values))
	out.Mean = stat.Mean(values, nil)
	return &out
}
