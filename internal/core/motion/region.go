package motion

import (
	"fmt"
	"math"
)

// geometryEpsilon 浮点误差容忍度，边界附近的值会被截断而不是拒绝
const geometryEpsilon = 1e-9

// Point 坐标点，像素或比例取决于上下文
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect 像素矩形，OffsetX/OffsetY 为相对宿主元素左上角的偏移
type Rect struct {
	OffsetX float64 `json:"x"`
	OffsetY float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
}

// Viewport 宿主元素的像素尺寸
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region 与分辨率无关的选区，所有字段都是 [0,1] 的比例
type Region struct {
	Position Point   `json:"position"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
}

// Contains 判断像素矩形是否完全落在视口内
func (v Viewport) Contains(r Rect) bool {
	return r.OffsetX >= 0 && r.OffsetY >= 0 && r.Width >= 0 && r.Height >= 0 &&
		r.OffsetX+r.Width <= v.Width+geometryEpsilon &&
		r.OffsetY+r.Height <= v.Height+geometryEpsilon
}

func (v Viewport) valid() bool {
	return v.Width > 0 && v.Height > 0 && !math.IsInf(v.Width, 0) && !math.IsInf(v.Height, 0)
}

// Normalize 将像素矩形转换为视口比例
// 视口宽高为 0，或者比例超出 [0,1]（超出 epsilon 以外）时返回 ErrInvalidGeometry
func Normalize(r Rect, v Viewport) (Region, error) {
	if !v.valid() {
		return Region{}, fmt.Errorf("%w: viewport %vx%v", ErrInvalidGeometry, v.Width, v.Height)
	}
	var err error
	var out Region
	if out.Position.X, err = fraction("x", r.OffsetX, v.Width); err != nil {
		return Region{}, err
	}
	if out.Position.Y, err = fraction("y", r.OffsetY, v.Height); err != nil {
		return Region{}, err
	}
	if out.Width, err = fraction("width", r.Width, v.Width); err != nil {
		return Region{}, err
	}
	if out.Height, err = fraction("height", r.Height, v.Height); err != nil {
		return Region{}, err
	}
	if err := out.Validate(); err != nil {
		return Region{}, err
	}
	return out, nil
}

// Denormalize 使用相同视口将比例还原为像素矩形
func Denormalize(g Region, v Viewport) Rect {
	return Rect{
		OffsetX: g.Position.X * v.Width,
		OffsetY: g.Position.Y * v.Height,
		Width:   g.Width * v.Width,
		Height:  g.Height * v.Height,
	}
}

// Validate 检查选区不超出宿主边界
func (g Region) Validate() error {
	for _, f := range []float64{g.Position.X, g.Position.Y, g.Width, g.Height} {
		if math.IsNaN(f) || f < 0 || f > 1 {
			return fmt.Errorf("%w: region %+v out of [0,1]", ErrInvalidGeometry, g)
		}
	}
	if g.Position.X+g.Width > 1+geometryEpsilon || g.Position.Y+g.Height > 1+geometryEpsilon {
		return fmt.Errorf("%w: region %+v exceeds viewport", ErrInvalidGeometry, g)
	}
	return nil
}

func fraction(name string, value, total float64) (float64, error) {
	f := value / total
	switch {
	case math.IsNaN(f):
		return 0, fmt.Errorf("%w: %s is NaN", ErrInvalidGeometry, name)
	case f < -geometryEpsilon || f > 1+geometryEpsilon:
		return 0, fmt.Errorf("%w: %s=%v outside viewport %v", ErrInvalidGeometry, name, value, total)
	case f < 0:
		return 0, nil
	case f > 1:
		return 1, nil
	}
	return f, nil
}

// Round4 保留 4 位小数，稳定查询参数避免浮点噪声
func Round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
