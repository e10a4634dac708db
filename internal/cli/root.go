// Package cli 命令行入口，serve 启动服务，其余子命令直接查询运动数据
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gowvp/motionsearch/internal/conf"
	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/gowvp/motionsearch/internal/core/motiondata/store/motiondatadb"
	"github.com/gowvp/motionsearch/internal/data"
	"github.com/ixugo/goddd/pkg/system"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
	day        string
)

var rootCmd = &cobra.Command{
	Use:           "motionsearch",
	Short:         "按画面区域检索监控录像中的运动片段",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute 解析命令行并执行
func Execute(version string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd.Version = version
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "配置文件路径 (默认: <程序目录>/configs/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "输出调试日志")
	rootCmd.AddCommand(serveCmd, motionsCmd, heatmapCmd)
}

func loadConfig(cmd *cobra.Command) (*conf.Bootstrap, error) {
	path := configPath
	if path == "" {
		path = filepath.Join(system.Getwd(), "configs", "config.toml")
	}
	bc, err := conf.SetupConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	bc.Debug = debug
	bc.BuildVersion = cmd.Root().Version
	return &bc, nil
}

// openMotionData 不启动服务，直接打开运动数据
func openMotionData(bc *conf.Bootstrap) (motiondata.Core, error) {
	level := slog.LevelWarn
	if bc.Debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	db, err := data.SetupDB(bc, log)
	if err != nil {
		return motiondata.Core{}, err
	}
	return motiondata.NewCore(motiondatadb.NewDB(db).AutoMigrate(true),
		motiondata.WithGrid(bc.Motion.GridRows, bc.Motion.GridCols),
		motiondata.WithLocation(bc.Motion.Location()),
	), nil
}
