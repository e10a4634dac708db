package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gowvp/motionsearch/internal/conf"
	"github.com/ixugo/goddd/pkg/system"
	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// Run 启动 http 服务，收到退出信号后优雅关闭
func Run(ctx context.Context, bc *conf.Bootstrap) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, clean, err := SetupLog(bc)
	if err != nil {
		return err
	}
	defer clean()
	slog.SetDefault(log)

	handler, cleanup, err := wireApp(bc, log)
	if err != nil {
		return fmt.Errorf("wire app: %w", err)
	}
	defer cleanup()

	svc := http.Server{
		Addr:              fmt.Sprintf(":%d", bc.Server.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       bc.Server.HTTP.Timeout.Duration(),
		// 不设置写超时，sse 是长连接
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("http server start", "port", bc.Server.HTTP.Port, "version", bc.BuildVersion)
		if err := svc.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("http server shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return svc.Shutdown(shutdownCtx)
}

// SetupLog 日志同时输出到控制台与按时间切割的文件
func SetupLog(bc *conf.Bootstrap) (*slog.Logger, func(), error) {
	cfg := bc.Log
	level := ParseLevel(cfg.Level)
	if bc.Debug || bc.Server.Debug {
		level = slog.LevelDebug
	}

	dir := cfg.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(system.Getwd(), dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	opts := make([]rotatelogs.Option, 0, 3)
	if v := cfg.MaxAge.Duration(); v > 0 {
		opts = append(opts, rotatelogs.WithMaxAge(v))
	}
	if v := cfg.RotationTime.Duration(); v > 0 {
		opts = append(opts, rotatelogs.WithRotationTime(v))
	}
	if cfg.RotationSize > 0 {
		opts = append(opts, rotatelogs.WithRotationSize(cfg.RotationSize))
	}
	r, err := rotatelogs.New(filepath.Join(dir, "%Y%m%d_%H_%M_%S.log"), opts...)
	if err != nil {
		return nil, nil, err
	}

	w := io.MultiWriter(os.Stdout, r)
	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: level == slog.LevelDebug,
		Level:     level,
	}))
	return log, func() { _ = r.Close() }, nil
}

// ParseLevel 解析日志级别，无法识别时使用 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
