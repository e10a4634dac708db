// Package motiondata 运动数据后端，按摄像头/天/网格/秒存储运动记录并提供查询
package motiondata

import (
	"time"
)

const (
	DefaultGridRows = 9
	DefaultGridCols = 16
)

// Storer data persistence
type Storer interface {
	MotionCell() MotionCellStorer
}

// Core business domain
type Core struct {
	store Storer
	rows  int
	cols  int
	loc   *time.Location
	now   func() time.Time
}

type Option func(*Core)

// WithGrid 网格行列数
func WithGrid(rows, cols int) Option {
	return func(c *Core) {
		if rows > 0 && cols > 0 {
			c.rows, c.cols = rows, cols
		}
	}
}

// WithLocation 计算“当天”和“当天第几秒”使用的时区
func WithLocation(loc *time.Location) Option {
	return func(c *Core) {
		if loc != nil {
			c.loc = loc
		}
	}
}

// WithNow 替换当前时间，测试使用
func WithNow(fn func() time.Time) Option {
	return func(c *Core) {
		c.now = fn
	}
}

// NewCore create business domain
func NewCore(store Storer, opts ...Option) Core {
	c := Core{
		store: store,
		rows:  DefaultGridRows,
		cols:  DefaultGridCols,
		loc:   time.Local,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Grid 网格行列数
func (c Core) Grid() (rows, cols int) {
	return c.rows, c.cols
}

// Today 当天日期 YYYY-MM-DD
func (c Core) Today() string {
	return c.now().In(c.loc).Format(time.DateOnly)
}

// dayAndSecond 时间所在日期及当天第几秒
func (c Core) dayAndSecond(t time.Time) (string, int) {
	t = t.In(c.loc)
	h, m, s := t.Clock()
	return t.Format(time.DateOnly), h*3600 + m*60 + s
}

func (c Core) day(day string) string {
	if day == "" {
		return c.Today()
	}
	return day
}
