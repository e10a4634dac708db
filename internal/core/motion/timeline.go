package motion

import "time"

// Clock 提供时间轴当前范围
type Clock interface {
	Now() time.Time
}

// CameraDirectory 摄像头名称查询
type CameraDirectory interface {
	CameraName(cameraID string) string
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// TimelineBar 时间轴上的一段高亮
type TimelineBar struct {
	Start       int     `json:"start"`        // 采样索引
	End         int     `json:"end"`          // 采样索引（含）
	StartSecond int     `json:"start_second"` // 当天第几秒
	EndSecond   int     `json:"end_second"`   // 当天第几秒（不含）
	Left        float64 `json:"left"`         // 相对时间轴的左侧位置
	Width       float64 `json:"width"`        // 相对时间轴的宽度
}

// TimelineView 某个摄像头的时间轴
type TimelineView struct {
	CameraID   string         `json:"camera_id"`
	CameraName string         `json:"camera_name"`
	SpanSize   int            `json:"span_size"`
	ScopeStart float64        `json:"scope_start"`
	ScopeEnd   float64        `json:"scope_end"`
	Frames     SearchFrameSet `json:"frames"`
	Bars       []TimelineBar  `json:"bars"`
}

// SearchEnd 当天已经过去的采样数，即时间轴右端
func SearchEnd(now time.Time, spanSize int) float64 {
	if spanSize < 1 {
		spanSize = DefaultSpanSize
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	ms := now.Sub(midnight).Milliseconds()
	return float64(ms) / float64(1000*spanSize)
}

// BarWidth 区间宽度占时间轴范围的比例
func BarWidth(f FrameRange, scopeStart, scopeEnd float64) float64 {
	scope := scopeEnd - scopeStart
	if scope <= 0 {
		return 0
	}
	return clamp01(float64(f.End+1-f.Start) / scope)
}

// BarPosition 区间起点相对时间轴的位置；fromRight 为 true 时返回距右端的比例
func BarPosition(f FrameRange, scopeStart, scopeEnd float64, fromRight bool) float64 {
	scope := scopeEnd - scopeStart
	if scope <= 0 {
		return 0
	}
	left := clamp01((float64(f.Start) - scopeStart) / scope)
	if fromRight {
		return 1 - left
	}
	return left
}

// NewTimelineView 将区间集合换算为时间轴几何
func NewTimelineView(cameraID, name string, frames SearchFrameSet, spanSize int, scopeEnd float64) TimelineView {
	out := TimelineView{
		CameraID:   cameraID,
		CameraName: name,
		SpanSize:   spanSize,
		ScopeEnd:   scopeEnd,
		Frames:     frames,
		Bars:       make([]TimelineBar, 0, len(frames)),
	}
	for _, f := range frames {
		bar := TimelineBar{
			Start:       f.Start,
			End:         f.End,
			StartSecond: f.Start * spanSize,
			EndSecond:   (f.End + 1) * spanSize,
			Left:        BarPosition(f, out.ScopeStart, scopeEnd, false),
			Width:       BarWidth(f, out.ScopeStart, scopeEnd),
		}
		bar.Width = min(bar.Width, 1-bar.Left)
		out.Bars = append(out.Bars, bar)
	}
	return out
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
