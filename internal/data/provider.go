package data

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/wire"
	"github.com/gowvp/motionsearch/internal/conf"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/system"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ProviderSet is data providers.
var ProviderSet = wire.NewSet(SetupDB)

// SetupDB 初始化运动数据存储
// sqlite 只允许单连接，数据文件所在目录不存在时自动创建
func SetupDB(c *conf.Bootstrap, log *slog.Logger) (*gorm.DB, error) {
	cfg := c.Data.Database
	driver := DriverName(cfg.Dsn)
	if driver == "sqlite" {
		cfg.MaxIdleConns = 1
		cfg.MaxOpenConns = 1
		if err := os.MkdirAll(filepath.Dir(sqlitePath(cfg.Dsn)), 0o755); err != nil {
			return nil, err
		}
	}
	log.Info("setup database", "driver", driver, "max_open_conns", cfg.MaxOpenConns)
	return orm.New(getDialector(driver, cfg.Dsn), orm.Config{
		MaxIdleConns:    int(cfg.MaxIdleConns),
		MaxOpenConns:    int(cfg.MaxOpenConns),
		ConnMaxLifetime: cfg.ConnMaxLifetime.Duration(),
		SlowThreshold:   cfg.SlowThreshold.Duration(),
	})
}

// DriverName 根据 dsn 前缀判断数据库类型
func DriverName(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres"):
		return "postgres"
	case strings.HasPrefix(dsn, "mysql"):
		return "mysql"
	default:
		return "sqlite"
	}
}

func getDialector(driver, dsn string) gorm.Dialector {
	switch driver {
	case "postgres":
		return postgres.New(postgres.Config{
			DriverName: "pgx",
			DSN:        dsn,
		})
	case "mysql":
		return mysql.Open(strings.TrimPrefix(dsn, "mysql://"))
	default:
		return sqlite.Open(sqlitePath(dsn))
	}
}

func sqlitePath(dsn string) string {
	if filepath.IsAbs(dsn) || strings.HasPrefix(dsn, ":memory:") || strings.HasPrefix(dsn, "file:") {
		return dsn
	}
	return filepath.Join(system.Getwd(), dsn)
}
