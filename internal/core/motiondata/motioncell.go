package motiondata

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"time"

	"github.com/gowvp/motionsearch/internal/core/motion"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/reason"
)

// MotionCellStorer Instantiation interface
type MotionCellStorer interface {
	// BatchAdd 批量写入，已存在的 (camera_id, day, cell, second) 忽略
	BatchAdd(context.Context, []*MotionCell) error
	// Seconds 去重后升序的秒数
	Seconds(context.Context, ...orm.QueryOption) ([]int, error)
	CountByCell(context.Context, ...orm.QueryOption) ([]CellCount, error)
	Cameras(context.Context, ...orm.QueryOption) ([]string, error)
	Count(context.Context, ...orm.QueryOption) (int64, error)
	Del(context.Context, ...orm.QueryOption) (int64, error)
}

// Record 写入一次运动检测，每个网格一行
func (c Core) Record(ctx context.Context, in *RecordInput) error {
	if in.CameraID == "" {
		return reason.ErrBadRequest.SetMsg("camera_id is required")
	}
	total := c.rows * c.cols
	for _, cell := range in.Cells {
		if cell < 0 || cell >= total {
			return reason.ErrBadRequest.Withf("cell[%d] out of grid %dx%d", cell, c.rows, c.cols)
		}
	}
	if len(in.Cells) == 0 {
		return nil
	}

	at := c.now()
	if in.Timestamp > 0 {
		at = time.UnixMilli(in.Timestamp)
	}
	day, second := c.dayAndSecond(at)

	tpl := MotionCell{CameraID: in.CameraID, Day: day, Second: second, CreatedAt: orm.Now()}

	cells := slices.Clone(in.Cells)
	slices.Sort(cells)
	cells = slices.Compact(cells)
	items := make([]*MotionCell, 0, len(cells))
	for _, cell := range cells {
		item := tpl
		item.Cell = cell
		items = append(items, &item)
	}
	if err := c.store.MotionCell().BatchAdd(ctx, items); err != nil {
		return reason.ErrDB.Withf(`BatchAdd camera[%s] err[%s]`, in.CameraID, err.Error())
	}
	return nil
}

// CellsFromPercent 将比例矩形换算为网格矩形
// 宽高向下取整后加 1 保证覆盖选区边缘，超出网格部分截断
func (c Core) CellsFromPercent(left, top, width, height float64) (CellRect, error) {
	for _, v := range []float64{left, top, width, height} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return CellRect{}, reason.ErrBadRequest.Withf("fraction %v out of [0,1]", v)
		}
	}
	r := CellRect{
		X:      min(int(left*float64(c.cols)), c.cols-1),
		Y:      min(int(top*float64(c.rows)), c.rows-1),
		Width:  int(width*float64(c.cols)) + 1,
		Height: int(height*float64(c.rows)) + 1,
	}
	r.Width = min(r.Width, c.cols-r.X)
	r.Height = min(r.Height, c.rows-r.Y)
	return r, nil
}

// CellsFromPixels 将帧像素矩形换算为网格矩形
func (c Core) CellsFromPixels(x, y, width, height, frameWidth, frameHeight int) (CellRect, error) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return CellRect{}, reason.ErrBadRequest.Withf("invalid frame size %dx%d", frameWidth, frameHeight)
	}
	if x < 0 || y < 0 || width < 0 || height < 0 || x+width > frameWidth || y+height > frameHeight {
		return CellRect{}, reason.ErrBadRequest.Withf("rect (%d,%d,%d,%d) outside frame %dx%d", x, y, width, height, frameWidth, frameHeight)
	}
	fw, fh := float64(frameWidth), float64(frameHeight)
	return c.CellsFromPercent(float64(x)/fw, float64(y)/fh, float64(width)/fw, float64(height)/fh)
}

// cellIndices 网格矩形覆盖的全部网格序号，超出网格返回错误
func (c Core) cellIndices(r CellRect) ([]int, error) {
	if r.X < 0 || r.Y < 0 || r.Width < 1 || r.Height < 1 || r.X+r.Width > c.cols || r.Y+r.Height > c.rows {
		return nil, reason.ErrBadRequest.Withf("requested selection %+v is out of bounds %dx%d", r, c.rows, c.cols)
	}
	out := make([]int, 0, r.Width*r.Height)
	for row := r.Y; row < r.Y+r.Height; row++ {
		for col := r.X; col < r.X+r.Width; col++ {
			out = append(out, row*c.cols+col)
		}
	}
	return out, nil
}

// Motions 网格矩形内任一网格有运动的秒数，升序去重
func (c Core) Motions(ctx context.Context, cameraID, day string, r CellRect) ([]int, error) {
	cells, err := c.cellIndices(r)
	if err != nil {
		return nil, err
	}
	day = c.day(day)
	seconds, err := c.store.MotionCell().Seconds(ctx,
		orm.Where("camera_id = ?", cameraID),
		orm.Where("day = ?", day),
		orm.Where("cell IN ?", cells),
	)
	if err != nil {
		return nil, reason.ErrDB.Withf(`Seconds camera[%s] day[%s] err[%s]`, cameraID, day, err.Error())
	}
	return seconds, nil
}

// MotionsFromPercent 按比例矩形查询运动秒数
func (c Core) MotionsFromPercent(ctx context.Context, in *PercentInput) ([]int, error) {
	r, err := c.CellsFromPercent(in.Left, in.Top, in.Width, in.Height)
	if err != nil {
		return nil, err
	}
	slog.DebugContext(ctx, "percent to cells", "camera_id", in.CameraID, "rect", r)
	return c.Motions(ctx, in.CameraID, in.Day, r)
}

// SampleIndices 按比例矩形查询采样索引，索引 = 秒数 / spanSize，升序去重
func (c Core) SampleIndices(ctx context.Context, in *SampleInput) ([]int, error) {
	span := in.SpanSize
	if span == 0 {
		span = motion.DefaultSpanSize
	}
	if span < 1 {
		return nil, reason.ErrBadRequest.Withf("span_size[%d] must be positive", span)
	}
	seconds, err := c.MotionsFromPercent(ctx, &in.PercentInput)
	if err != nil {
		return nil, err
	}
	return ToSampleIndices(seconds, span), nil
}

// ToSampleIndices 升序秒数转换为升序去重的采样索引
func ToSampleIndices(seconds []int, spanSize int) []int {
	out := make([]int, 0, len(seconds))
	for _, s := range seconds {
		idx := s / spanSize
		if n := len(out); n > 0 && out[n-1] == idx {
			continue
		}
		out = append(out, idx)
	}
	return out
}

// Heatmap 每个网格的运动秒数，行优先，长度为 rows*cols
func (c Core) Heatmap(ctx context.Context, cameraID, day string) ([]int, error) {
	day = c.day(day)
	counts, err := c.store.MotionCell().CountByCell(ctx,
		orm.Where("camera_id = ?", cameraID),
		orm.Where("day = ?", day),
	)
	if err != nil {
		return nil, reason.ErrDB.Withf(`CountByCell camera[%s] day[%s] err[%s]`, cameraID, day, err.Error())
	}
	out := make([]int, c.rows*c.cols)
	for _, v := range counts {
		if v.Cell >= 0 && v.Cell < len(out) {
			out[v.Cell] = v.Count
		}
	}
	return out, nil
}

// Cameras 指定日期有运动数据的摄像头
func (c Core) Cameras(ctx context.Context, day string) ([]string, error) {
	day = c.day(day)
	out, err := c.store.MotionCell().Cameras(ctx, orm.Where("day = ?", day))
	if err != nil {
		return nil, reason.ErrDB.Withf(`Cameras day[%s] err[%s]`, day, err.Error())
	}
	return out, nil
}
