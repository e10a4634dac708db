// Package motion 实现运动搜索的选区交互、区间压缩与按摄像头的订阅分发
package motion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ixugo/goddd/pkg/conc"
)

// DefaultSpanSize 每个采样索引代表的秒数
const DefaultSpanSize = 30

// Transport 后端查询能力
type Transport interface {
	// FetchSampleIndices 查询选区内有运动的采样索引，结果应当升序
	FetchSampleIndices(ctx context.Context, cameraID string, region Region, spanSize int) ([]int, error)
	// FetchHeatmap 查询摄像头每个网格的运动密度，行优先
	FetchHeatmap(ctx context.Context, cameraID string) (HeatmapGrid, error)
}

// Config 运动搜索配置
type Config struct {
	SpanSize       int // 每个采样索引的秒数，最小为 1
	HeatmapCap     int // 热力图透明度换算上限
	HeatmapColumns int // 热力图列数
}

// Core business domain
type Core struct {
	transport Transport
	store     *Store
	clock     Clock
	cameras   CameraDirectory
	conf      Config
	log       *slog.Logger

	machines conc.Map[string, *Machine]
	order    conc.Map[string, *sync.Mutex] // 指针事件与版本分配的顺序锁
}

type Option func(*Core)

// WithStore 使用外部的选区存储
func WithStore(s *Store) Option {
	return func(c *Core) {
		c.store = s
	}
}

// WithClock 注入时间轴时钟
func WithClock(clock Clock) Option {
	return func(c *Core) {
		c.clock = clock
	}
}

// WithCameraDirectory 注入摄像头名称查询
func WithCameraDirectory(dir CameraDirectory) Option {
	return func(c *Core) {
		c.cameras = dir
	}
}

// WithLogger 指定日志
func WithLogger(log *slog.Logger) Option {
	return func(c *Core) {
		c.log = log
	}
}

// NewCore create business domain
func NewCore(transport Transport, conf Config, opts ...Option) *Core {
	c := Core{
		transport: transport,
		conf:      conf,
		clock:     systemClock{},
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.store == nil {
		c.store = NewStore()
	}
	if c.conf.SpanSize < 1 {
		c.log.Warn("invalid span size, fallback to default", "span_size", c.conf.SpanSize, "default", DefaultSpanSize)
		c.conf.SpanSize = DefaultSpanSize
	}
	if c.conf.HeatmapCap <= 0 {
		c.conf.HeatmapCap = DefaultHeatmapCap
	}
	return &c
}

// Store 选区存储
func (c *Core) Store() *Store {
	return c.store
}

// SpanSize 每个采样索引的秒数
func (c *Core) SpanSize() int {
	return c.conf.SpanSize
}

// Select 查询选区内的运动区间并写入存储
// 同一摄像头上更晚发起的请求优先，较早请求的晚到结果返回 ErrSuperseded 且不会写入
func (c *Core) Select(ctx context.Context, cameraID string, region Region) (SearchFrameSet, error) {
	if err := region.Validate(); err != nil {
		return nil, err
	}
	return c.fetch(ctx, cameraID, c.store.Begin(cameraID), region)
}

// fetch 以已分配的版本查询后端并提交，版本已过期时返回 ErrSuperseded
func (c *Core) fetch(ctx context.Context, cameraID string, version uint64, region Region) (SearchFrameSet, error) {
	log := c.log.With("camera_id", cameraID, "version", version)

	indices, err := c.transport.FetchSampleIndices(ctx, cameraID, region, c.conf.SpanSize)
	if err != nil {
		if !errors.Is(err, ErrTransport) && !errors.Is(err, ErrMalformedResponse) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		log.WarnContext(ctx, "fetch sample indices failed", "err", err)
		return nil, err
	}

	indices, sorted, err := PrepareIndices(indices)
	if err != nil {
		log.WarnContext(ctx, "reject sample indices", "err", err)
		return nil, err
	}
	if sorted {
		log.WarnContext(ctx, "sample indices were not ascending, sorted before compress", "count", len(indices))
	}

	frames := Compress(indices)
	if !c.store.CommitVersion(cameraID, version, frames) {
		log.DebugContext(ctx, "discard superseded selection result", "ranges", len(frames))
		return frames, ErrSuperseded
	}
	log.DebugContext(ctx, "selection committed", "indices", len(indices), "ranges", len(frames))
	return frames, nil
}

// SelectPixels 归一化像素矩形后查询
func (c *Core) SelectPixels(ctx context.Context, cameraID string, rect Rect, viewport Viewport) (SearchFrameSet, error) {
	region, err := Normalize(rect, viewport)
	if err != nil {
		return nil, err
	}
	return c.Select(ctx, cameraID, region)
}

// Unselect 清除选区，不访问后端，重复调用结果相同
func (c *Core) Unselect(cameraID string) {
	c.store.Clear(cameraID)
}

// Frames 当前区间集合的副本
func (c *Core) Frames(cameraID string) SearchFrameSet {
	return c.store.Snapshot(cameraID)
}

// Subscribe 订阅摄像头的区间集合
func (c *Core) Subscribe(cameraID string) *Subscription {
	return c.store.Subscribe(cameraID)
}

// Heatmap 查询热力图并换算透明度，结果不做缓存
func (c *Core) Heatmap(ctx context.Context, cameraID string) (*HeatmapView, error) {
	grid, err := c.transport.FetchHeatmap(ctx, cameraID)
	if err != nil {
		if !errors.Is(err, ErrTransport) && !errors.Is(err, ErrMalformedResponse) {
			err = fmt.Errorf("%w: %w", ErrTransport, err)
		}
		return nil, err
	}
	return NewHeatmapView(cameraID, grid, c.conf.HeatmapCap, c.conf.HeatmapColumns), nil
}

// Timeline 当前区间集合在时间轴上的几何
func (c *Core) Timeline(cameraID string) TimelineView {
	var name string
	if c.cameras != nil {
		name = c.cameras.CameraName(cameraID)
	}
	end := SearchEnd(c.clock.Now(), c.conf.SpanSize)
	return NewTimelineView(cameraID, name, c.store.Snapshot(cameraID), c.conf.SpanSize, end)
}
