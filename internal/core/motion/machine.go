package motion

import (
	"fmt"
	"sync"
)

// State 选区交互状态
type State int

const (
	StateIdle State = iota
	StateDrawing
	StateActive
	// StateCancelled 瞬时状态，清除后立即回到 StateIdle
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateActive:
		return "active"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EmissionKind 交互产生的事件类型
type EmissionKind int

const (
	EmitNone EmissionKind = iota
	EmitCommit
	EmitClear
)

// Emission 交互状态机的输出，EmitCommit 时携带归一化后的选区
type Emission struct {
	Kind   EmissionKind
	Region Region
	Rect   Rect
}

// Machine 鼠标拖拽/缩放选区的状态机
// 所有事件按到达顺序串行处理；只有拖拽/缩放结束才会提交，中间位置只更新几何
type Machine struct {
	mu        sync.Mutex
	state     State
	viewport  Viewport
	anchor    Point
	rect      Rect // 当前显示的矩形
	committed Rect // 最近一次提交的合法矩形
}

// NewMachine 创建处于 Idle 状态的交互状态机
func NewMachine(v Viewport) *Machine {
	return &Machine{viewport: v}
}

// State 当前状态
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Rect 当前显示的矩形（像素）
func (m *Machine) Rect() Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rect
}

// Viewport 当前宿主尺寸
func (m *Machine) Viewport() Viewport {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.viewport
}

// SetViewport 宿主元素尺寸变化，已提交的矩形必须仍然在新视口内
func (m *Machine) SetViewport(v Viewport) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !v.valid() {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidGeometry, v.Width, v.Height)
	}
	if m.state == StateActive && !v.Contains(m.committed) {
		return fmt.Errorf("%w: active selection does not fit viewport %vx%v", ErrInvalidGeometry, v.Width, v.Height)
	}
	m.viewport = v
	return nil
}

// MouseDown Idle -> Drawing，记录锚点
// 已有选区时按下鼠标不会开始新的绘制
func (m *Machine) MouseDown(p Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateIdle {
		return nil
	}
	candidate := Rect{OffsetX: p.X, OffsetY: p.Y}
	if err := m.check(candidate); err != nil {
		return err
	}
	m.state = StateDrawing
	m.anchor = p
	m.rect = candidate
	return nil
}

// PointerMove 绘制过程中矩形从锚点向指针位置增长，不触发提交
func (m *Machine) PointerMove(p Point) (Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDrawing {
		return m.rect, nil
	}
	candidate := Rect{
		OffsetX: m.anchor.X,
		OffsetY: m.anchor.Y,
		Width:   max(p.X-m.anchor.X, 0),
		Height:  max(p.Y-m.anchor.Y, 0),
	}
	if err := m.check(candidate); err != nil {
		return m.rect, err
	}
	m.rect = candidate
	return m.rect, nil
}

// Resizing 缩放过程中的预览，不触发提交
func (m *Machine) Resizing(width, height float64) (Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDrawing && m.state != StateActive {
		return m.rect, nil
	}
	candidate := Rect{OffsetX: m.rect.OffsetX, OffsetY: m.rect.OffsetY, Width: width, Height: height}
	if err := m.check(candidate); err != nil {
		return m.rect, err
	}
	m.rect = candidate
	return m.rect, nil
}

// ResizeEnd 缩放结束，提交最终矩形
func (m *Machine) ResizeEnd(width, height float64) (Emission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDrawing && m.state != StateActive {
		return Emission{}, nil
	}
	origin := m.rect
	if m.state == StateActive {
		origin = m.committed
	}
	return m.commit(Rect{OffsetX: origin.OffsetX, OffsetY: origin.OffsetY, Width: width, Height: height})
}

// Dragging 拖动过程中的预览，不触发提交
func (m *Machine) Dragging(p Point) (Rect, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateActive {
		return m.rect, nil
	}
	candidate := Rect{OffsetX: p.X, OffsetY: p.Y, Width: m.committed.Width, Height: m.committed.Height}
	if err := m.check(candidate); err != nil {
		return m.rect, err
	}
	m.rect = candidate
	return m.rect, nil
}

// DragEnd 拖动结束，矩形保持尺寸移动到 p 并提交
func (m *Machine) DragEnd(p Point) (Emission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var size Rect
	switch m.state {
	case StateDrawing:
		size = m.rect
	case StateActive:
		size = m.committed
	default:
		return Emission{}, nil
	}
	return m.commit(Rect{OffsetX: p.X, OffsetY: p.Y, Width: size.Width, Height: size.Height})
}

// Clear 右键或主动取消，经 Cancelled 回到 Idle，并发出清除事件
func (m *Machine) Clear() Emission {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = StateCancelled
	m.rect = Rect{}
	m.committed = Rect{}
	m.anchor = Point{}
	m.state = StateIdle
	return Emission{Kind: EmitClear}
}

// commit 调用方持有 m.mu；校验失败时恢复到上一次合法的矩形
func (m *Machine) commit(candidate Rect) (Emission, error) {
	if err := m.check(candidate); err != nil {
		if m.state == StateActive {
			m.rect = m.committed
		}
		return Emission{}, err
	}
	region, err := Normalize(candidate, m.viewport)
	if err != nil {
		return Emission{}, err
	}
	m.state = StateActive
	m.rect = candidate
	m.committed = candidate
	return Emission{Kind: EmitCommit, Region: region, Rect: candidate}, nil
}

func (m *Machine) check(r Rect) error {
	if !m.viewport.valid() {
		return fmt.Errorf("%w: viewport %vx%v", ErrInvalidGeometry, m.viewport.Width, m.viewport.Height)
	}
	if !m.viewport.Contains(r) {
		return fmt.Errorf("%w: rect %+v outside viewport %vx%v", ErrInvalidGeometry, r, m.viewport.Width, m.viewport.Height)
	}
	return nil
}
