package motiondatadb

import (
	"context"

	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/ixugo/goddd/pkg/orm"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ motiondata.MotionCellStorer = MotionCell{}

// MotionCell Related business namespaces
type MotionCell DB

func (d MotionCell) query(ctx context.Context, opts []orm.QueryOption) *gorm.DB {
	db := d.db.WithContext(ctx).Model(new(motiondata.MotionCell))
	for _, fn := range opts {
		db = fn(db)
	}
	return db
}

// BatchAdd implements motiondata.MotionCellStorer.
func (d MotionCell) BatchAdd(ctx context.Context, cells []*motiondata.MotionCell) error {
	if len(cells) == 0 {
		return nil
	}
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&cells).Error
}

// Seconds implements motiondata.MotionCellStorer.
func (d MotionCell) Seconds(ctx context.Context, opts ...orm.QueryOption) ([]int, error) {
	out := make([]int, 0, 8)
	err := d.query(ctx, opts).Distinct("second_of_day").Order("second_of_day ASC").Pluck("second_of_day", &out).Error
	return out, err
}

// CountByCell implements motiondata.MotionCellStorer.
func (d MotionCell) CountByCell(ctx context.Context, opts ...orm.QueryOption) ([]motiondata.CellCount, error) {
	var out []motiondata.CellCount
	err := d.query(ctx, opts).Select("cell, COUNT(*) AS cnt").Group("cell").Find(&out).Error
	return out, err
}

// Cameras implements motiondata.MotionCellStorer.
func (d MotionCell) Cameras(ctx context.Context, opts ...orm.QueryOption) ([]string, error) {
	out := make([]string, 0, 8)
	err := d.query(ctx, opts).Distinct("camera_id").Order("camera_id ASC").Pluck("camera_id", &out).Error
	return out, err
}

// Count implements motiondata.MotionCellStorer.
func (d MotionCell) Count(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	var total int64
	err := d.query(ctx, opts).Count(&total).Error
	return total, err
}

// Del implements motiondata.MotionCellStorer.
func (d MotionCell) Del(ctx context.Context, opts ...orm.QueryOption) (int64, error) {
	db := d.db.WithContext(ctx)
	for _, fn := range opts {
		db = fn(db)
	}
	res := db.Delete(new(motiondata.MotionCell))
	return res.RowsAffected, res.Error
}
