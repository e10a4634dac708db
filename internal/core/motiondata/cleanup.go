package motiondata

import (
	"context"
	"log/slog"
	"time"

	"github.com/ixugo/goddd/pkg/orm"
)

// StartCleanupWorker 启动定时清理，启动时执行一次，随后每 24 小时执行一次
// days 指定保留的天数，<=0 表示不清理；ctx 结束时退出
func (c Core) StartCleanupWorker(ctx context.Context, days int) {
	if days <= 0 {
		slog.Info("motion data cleanup disabled", "days", days)
		return
	}
	slog.Info("motion data cleanup worker started", "retain_days", days)

	c.CleanupExpired(ctx, days)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.CleanupExpired(ctx, days)
		}
	}
}

// CleanupExpired 删除保留天数之前的运动数据，返回删除的行数
func (c Core) CleanupExpired(ctx context.Context, days int) int64 {
	cutoff := c.now().In(c.loc).AddDate(0, 0, -days).Format(time.DateOnly)
	n, err := c.store.MotionCell().Del(ctx, orm.Where("day < ?", cutoff))
	if err != nil {
		slog.Warn("failed to delete expired motion data", "cutoff_day", cutoff, "err", err)
		return 0
	}
	if n > 0 {
		slog.Info("motion data cleanup completed", "cutoff_day", cutoff, "rows_deleted", n)
	}
	return n
}
