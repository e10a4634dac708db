package motiondata

import "github.com/ixugo/goddd/pkg/orm"

// MotionCell 某摄像头某天某个网格在某一秒检测到运动
type MotionCell struct {
	ID        int64    `gorm:"primaryKey" json:"id"`
	CameraID  string   `gorm:"column:camera_id;notNull;default:'';uniqueIndex:idx_motion_cells_key,priority:1" json:"camera_id"`
	Day       string   `gorm:"column:day;notNull;default:'';uniqueIndex:idx_motion_cells_key,priority:2;index" json:"day"` // YYYY-MM-DD
	Cell      int      `gorm:"column:cell;notNull;default:0;uniqueIndex:idx_motion_cells_key,priority:3" json:"cell"`      // 行优先网格序号
	Second    int      `gorm:"column:second_of_day;notNull;default:0;uniqueIndex:idx_motion_cells_key,priority:4" json:"second"`
	CreatedAt orm.Time `gorm:"column:created_at;notNull" json:"created_at"`
}

// TableName database table name
func (*MotionCell) TableName() string {
	return "motion_cells"
}

// CellCount 按网格统计的运动秒数
type CellCount struct {
	Cell  int `gorm:"column:cell"`
	Count int `gorm:"column:cnt"`
}
