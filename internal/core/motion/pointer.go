package motion

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// PointerKind 已解码的指针事件类型
type PointerKind string

const (
	PointerMouseDown   PointerKind = "mousedown"
	PointerMove        PointerKind = "move"
	PointerResizing    PointerKind = "resizing"
	PointerResizeEnd   PointerKind = "resize_end"
	PointerDragging    PointerKind = "dragging"
	PointerDragEnd     PointerKind = "drag_end"
	PointerContextMenu PointerKind = "contextmenu"
)

// PointerEvent 来自宿主界面的一次指针事件，坐标均为像素
type PointerEvent struct {
	Kind     PointerKind `json:"type"`
	X        float64     `json:"x"`
	Y        float64     `json:"y"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Viewport *Viewport   `json:"viewport,omitempty"`
}

// PointerResult 事件处理后的状态
type PointerResult struct {
	State     string         `json:"state"`
	Rect      Rect           `json:"rect"`
	Committed bool           `json:"committed"`
	Cleared   bool           `json:"cleared"`
	Region    *Region        `json:"region,omitempty"`
	Frames    SearchFrameSet `json:"frames"`
}

// Machine 获取摄像头的交互状态机，不存在时使用 viewport 创建
func (c *Core) Machine(cameraID string, viewport Viewport) *Machine {
	if m, ok := c.machines.Load(cameraID); ok {
		return m
	}
	m, _ := c.machines.LoadOrStore(cameraID, NewMachine(viewport))
	return m
}

// Pointer 将指针事件交给摄像头的状态机，提交事件触发查询，清除事件重置存储
// 查询失败时状态机仍停留在 Active，存储保留旧数据
func (c *Core) Pointer(ctx context.Context, cameraID string, ev PointerEvent) (*PointerResult, error) {
	m, emission, version, err := c.dispatch(cameraID, ev)
	if err != nil {
		return c.pointerResult(cameraID, m, emission), err
	}

	switch emission.Kind {
	case EmitCommit:
		c.log.DebugContext(ctx, "selection drawn", "camera_id", cameraID, "region", emission.Region, "version", version)
		if _, err := c.fetch(ctx, cameraID, version, emission.Region); err != nil && !errors.Is(err, ErrSuperseded) {
			return c.pointerResult(cameraID, m, emission), err
		}
	case EmitClear:
		c.log.DebugContext(ctx, "selection cancelled", "camera_id", cameraID)
	}
	return c.pointerResult(cameraID, m, emission), nil
}

// dispatch 在摄像头的顺序锁内驱动状态机，并按状态机输出的顺序分配请求版本或清除存储
// 查询在锁外进行，晚到的旧结果由版本号丢弃
func (c *Core) dispatch(cameraID string, ev PointerEvent) (*Machine, Emission, uint64, error) {
	mu, _ := c.order.LoadOrStore(cameraID, new(sync.Mutex))
	mu.Lock()
	defer mu.Unlock()

	var viewport Viewport
	if ev.Viewport != nil {
		viewport = *ev.Viewport
	}
	m := c.Machine(cameraID, viewport)
	if ev.Viewport != nil && m.Viewport() != viewport {
		if err := m.SetViewport(viewport); err != nil {
			return m, Emission{}, 0, err
		}
	}

	var (
		emission Emission
		err      error
	)
	switch ev.Kind {
	case PointerMouseDown:
		err = m.MouseDown(Point{X: ev.X, Y: ev.Y})
	case PointerMove:
		_, err = m.PointerMove(Point{X: ev.X, Y: ev.Y})
	case PointerResizing:
		_, err = m.Resizing(ev.Width, ev.Height)
	case PointerResizeEnd:
		emission, err = m.ResizeEnd(ev.Width, ev.Height)
	case PointerDragging:
		_, err = m.Dragging(Point{X: ev.X, Y: ev.Y})
	case PointerDragEnd:
		emission, err = m.DragEnd(Point{X: ev.X, Y: ev.Y})
	case PointerContextMenu:
		emission = m.Clear()
	default:
		err = fmt.Errorf("%w: unknown pointer event %q", ErrInvalidGeometry, ev.Kind)
	}
	if err != nil {
		return m, emission, 0, err
	}

	var version uint64
	switch emission.Kind {
	case EmitCommit:
		version = c.store.Begin(cameraID)
	case EmitClear:
		c.store.Clear(cameraID)
	}
	return m, emission, version, nil
}

func (c *Core) pointerResult(cameraID string, m *Machine, e Emission) *PointerResult {
	out := PointerResult{
		State:     m.State().String(),
		Rect:      m.Rect(),
		Committed: e.Kind == EmitCommit,
		Cleared:   e.Kind == EmitClear,
		Frames:    c.store.Snapshot(cameraID),
	}
	if e.Kind == EmitCommit {
		r := e.Region
		out.Region = &r
	}
	return &out
}
