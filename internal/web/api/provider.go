package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"github.com/gowvp/motionsearch/internal/adapter/motionadapter"
	"github.com/gowvp/motionsearch/internal/conf"
	"github.com/gowvp/motionsearch/internal/core/motion"
	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/gowvp/motionsearch/internal/core/motiondata/store/motiondatadb"
	"github.com/gowvp/motionsearch/pkg/motionapi"
	"github.com/ixugo/goddd/pkg/orm"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

var ProviderSet = wire.NewSet(
	wire.Struct(new(Usecase), "*"),
	NewHTTPHandler,
	NewMotionDataStore, NewMotionDataCore, NewMotionDataAPI,
	NewMotionTransport, NewMotionCore, NewMotionAPI,
)

type Usecase struct {
	Conf *conf.Bootstrap
	DB   *gorm.DB

	MotionDataAPI MotionDataAPI
	MotionAPI     MotionAPI
}

// NewHTTPHandler 生成Gin框架路由内容
func NewHTTPHandler(uc *Usecase) http.Handler {
	cfg := uc.Conf.Server
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	g := gin.New()
	g.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"msg": "来到了无人的荒漠"})
	})
	// 如果启用了 Pprof，设置 Pprof 监控
	if cfg.HTTP.PProf.Enabled {
		web.SetupPProf(g, &cfg.HTTP.PProf.AccessIps)
	}

	setupRouter(g, uc)
	return g
}

// NewMotionDataStore 运动数据存储层
func NewMotionDataStore(db *gorm.DB) motiondata.Storer {
	return motiondatadb.NewDB(db).AutoMigrate(orm.GetEnabledAutoMigrate())
}

// NewMotionDataCore 运动数据后端，并启动过期数据清理协程，cleanup 时停止
func NewMotionDataCore(store motiondata.Storer, cfg *conf.Bootstrap) (motiondata.Core, func()) {
	core := motiondata.NewCore(store,
		motiondata.WithGrid(cfg.Motion.GridRows, cfg.Motion.GridCols),
		motiondata.WithLocation(cfg.Motion.Location()),
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		core.StartCleanupWorker(ctx, cfg.Motion.RetainDays)
	}()
	return core, func() {
		cancel()
		<-done
	}
}

// NewMotionTransport 配置了外部运动数据服务时通过 http 查询，否则直接查询本服务的运动数据
func NewMotionTransport(cfg *conf.Bootstrap, data motiondata.Core) motion.Transport {
	if cfg.Motion.Backend == "" {
		return motionadapter.NewLocal(data)
	}
	return motionapi.NewEngine().SetConfig(motionapi.Config{
		URL:     cfg.Motion.Backend,
		Timeout: cfg.Motion.BackendTimeout.Duration(),
	})
}

// NewMotionCore 运动搜索，同名配置项直接复制，热力图列数取网格列数
func NewMotionCore(transport motion.Transport, cfg *conf.Bootstrap, log *slog.Logger) (*motion.Core, error) {
	var mc motion.Config
	if err := copier.Copy(&mc, &cfg.Motion); err != nil {
		return nil, fmt.Errorf("motion config: %w", err)
	}
	mc.HeatmapColumns = cfg.Motion.GridCols
	return motion.NewCore(transport, mc,
		motion.WithCameraDirectory(cfg),
		motion.WithLogger(log.With("core", "motion")),
	), nil
}
