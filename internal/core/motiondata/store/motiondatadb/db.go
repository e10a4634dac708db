package motiondatadb

import (
	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"gorm.io/gorm"
)

var _ motiondata.Storer = DB{}

// DB Related business namespaces
type DB struct {
	db *gorm.DB
}

// NewDB instance object
func NewDB(db *gorm.DB) DB {
	return DB{db: db}
}

// MotionCell Get business instance
func (d DB) MotionCell() motiondata.MotionCellStorer {
	return MotionCell(d)
}

// AutoMigrate sync database
func (d DB) AutoMigrate(ok bool) DB {
	if !ok {
		return d
	}
	if err := d.db.AutoMigrate(
		new(motiondata.MotionCell),
	); err != nil {
		panic(err)
	}
	return d
}
