package api

import (
	"expvar"
	"log/slog"
	"net/http"
	"runtime"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ixugo/goddd/pkg/system"
	"github.com/ixugo/goddd/pkg/web"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
)

var startRuntime = time.Now()

func setupRouter(r *gin.Engine, uc *Usecase) {
	r.Use(
		// 格式化输出到控制台，然后记录到日志
		gin.CustomRecovery(func(c *gin.Context, err any) {
			slog.ErrorContext(c.Request.Context(), "panic", "err", err, "stack", string(debug.Stack()))
			c.AbortWithStatus(http.StatusInternalServerError)
		}),
		web.Metrics(),
		web.Logger(
			web.IgnoreMethod(http.MethodOptions),
			web.IgnorePrefix("/health"),
		),
	)

	if uc.Conf.Server.HTTP.AllowCORS {
		r.Use(cors.New(cors.Config{
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
			AllowHeaders: []string{
				"Accept", "Content-Length", "Content-Type", "Accept-Language",
				"Origin", "Authorization", "Referer", "User-Agent",
				"Accept-Encoding", "Cache-Control", "Pragma", "X-Requested-With",
				"Last-Event-ID",
			},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
			AllowOriginFunc: func(_ string) bool {
				return true
			},
		}))
	}

	r.GET("/health", web.WrapH(uc.getHealth))
	r.GET("/app/metrics/api", web.WrapH(uc.getMetricsAPI))

	registerMotionData(r, uc.MotionDataAPI)
	registerMotion(r, uc.MotionAPI)
}

type getHealthOutput struct {
	Version string    `json:"version"`
	StartAt time.Time `json:"start_at"`
	Backend string    `json:"backend"` // 运动数据来源
}

func (uc *Usecase) getHealth(_ *gin.Context, _ *struct{}) (getHealthOutput, error) {
	backend := uc.Conf.Motion.Backend
	if backend == "" {
		backend = "local"
	}
	return getHealthOutput{
		Version: uc.Conf.BuildVersion,
		StartAt: startRuntime,
		Backend: backend,
	}, nil
}

type getMetricsAPIOutput struct {
	RealTimeRequests int64   `json:"real_time_requests"` // 实时请求数
	TotalRequests    int64   `json:"total_requests"`     // 总请求数
	TotalResponses   int64   `json:"total_responses"`    // 总响应数
	RequestTop10     []KV    `json:"request_top10"`      // 请求TOP10
	StatusCodeTop10  []KV    `json:"status_code_top10"`  // 状态码TOP10
	Goroutines       int     `json:"goroutines"`         // 协程数量
	NumGC            uint32  `json:"num_gc"`             // gc 次数
	SysAlloc         uint64  `json:"sys_alloc"`          // 内存占用
	StartAt          string  `json:"start_at"`           // 运行时间
	CPUPercent       float64 `json:"cpu_percent"`        // 主机 cpu 使用率
	MemPercent       float64 `json:"mem_percent"`        // 主机内存使用率
	DiskPercent      float64 `json:"disk_percent"`       // 程序所在磁盘使用率
	Subscribers      int     `json:"subscribers"`        // 区间订阅数
}

func (uc *Usecase) getMetricsAPI(_ *gin.Context, _ *struct{}) (*getMetricsAPIOutput, error) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	out := getMetricsAPIOutput{
		RealTimeRequests: expvarInt("request"),
		TotalRequests:    expvarInt("requests"),
		TotalResponses:   expvarInt("responses"),
		RequestTop10:     sortExpvarMap("requestURLs", 10),
		StatusCodeTop10:  sortExpvarMap("statusCodes", 10),
		Goroutines:       runtime.NumGoroutine(),
		NumGC:            stats.NumGC,
		SysAlloc:         stats.Sys,
		StartAt:          startRuntime.Format(time.DateTime),
		Subscribers:      uc.MotionAPI.subscribers(),
	}
	if v, err := cpu.Percent(0, false); err == nil && len(v) > 0 {
		out.CPUPercent = v[0]
	}
	if v, err := mem.VirtualMemory(); err == nil {
		out.MemPercent = v.UsedPercent
	}
	if v, err := disk.Usage(system.Getwd()); err == nil {
		out.DiskPercent = v.UsedPercent
	}
	return &out, nil
}

type KV struct {
	Key   string
	Value int64
}

func expvarInt(name string) int64 {
	if v, ok := expvar.Get(name).(*expvar.Int); ok {
		return v.Value()
	}
	return 0
}

func sortExpvarMap(name string, top int) []KV {
	kvs := make([]KV, 0, 8)
	data, ok := expvar.Get(name).(*expvar.Map)
	if !ok {
		return kvs
	}
	data.Do(func(kv expvar.KeyValue) {
		v, ok := kv.Value.(*expvar.Int)
		if !ok {
			return
		}
		kvs = append(kvs, KV{Key: kv.Key, Value: v.Value()})
	})

	sort.Slice(kvs, func(i, j int) bool {
		if kvs[i].Value == kvs[j].Value {
			return strings.Compare(kvs[i].Key, kvs[j].Key) < 0
		}
		return kvs[i].Value > kvs[j].Value
	})
	return kvs[:min(top, len(kvs))]
}
