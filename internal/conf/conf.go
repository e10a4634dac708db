package conf

import (
	"time"
)

// Bootstrap 启动配置
type Bootstrap struct {
	Server  Server   `toml:"server"`
	Data    Data     `toml:"data"`
	Log     Log      `toml:"log"`
	Motion  Motion   `toml:"motion" comment:"运动搜索"`
	Cameras []Camera `toml:"cameras" comment:"摄像头名称，用于时间轴显示"`

	Debug        bool   `toml:"-"`
	BuildVersion string `toml:"-"`
	ConfigDir    string `toml:"-"`
	ConfigPath   string `toml:"-"`
}

type Server struct {
	Debug bool       `toml:"debug" comment:"调试模式，输出更详细的日志"`
	HTTP  ServerHTTP `toml:"http"`
}

type ServerHTTP struct {
	Port      int         `toml:"port" comment:"http 端口"`
	Timeout   Duration    `toml:"timeout" comment:"请求超时时间"`
	PProf     ServerPPROF `toml:"pprof"`
	AllowCORS bool        `toml:"allow_cors" comment:"允许浏览器跨域访问"`
}

type ServerPPROF struct {
	Enabled   bool     `toml:"enabled" comment:"是否启用 pprof，建议设置为 true"`
	AccessIps []string `toml:"access_ips" comment:"访问白名单"`
}

type Data struct {
	Database Database `toml:"database"`
}

type Database struct {
	Dsn             string   `toml:"dsn" comment:"数据库连接，sqlite 为相对路径，postgres/mysql 以协议开头"`
	MaxIdleConns    int32    `toml:"max_idle_conns"`
	MaxOpenConns    int32    `toml:"max_open_conns"`
	ConnMaxLifetime Duration `toml:"conn_max_lifetime"`
	SlowThreshold   Duration `toml:"slow_threshold" comment:"慢查询阈值"`
}

type Log struct {
	Dir          string   `toml:"dir" comment:"日志目录，相对于程序目录"`
	Level        string   `toml:"level" comment:"debug/info/warn/error"`
	MaxAge       Duration `toml:"max_age" comment:"日志保留时长"`
	RotationTime Duration `toml:"rotation_time" comment:"日志切割间隔"`
	RotationSize int64    `toml:"rotation_size" comment:"单个日志文件最大字节数"`
}

// Motion 运动搜索配置
type Motion struct {
	Backend        string   `toml:"backend" comment:"运动数据服务地址，为空时使用本服务自带的运动数据接口"`
	BackendTimeout Duration `toml:"backend_timeout" comment:"运动数据查询超时"`
	SpanSize       int      `toml:"span_size" comment:"每个采样索引代表的秒数，最小为 1"`
	HeatmapCap     int      `toml:"heatmap_cap" comment:"热力图透明度换算上限，只影响显示"`
	GridRows       int      `toml:"grid_rows" comment:"画面网格行数"`
	GridCols       int      `toml:"grid_cols" comment:"画面网格列数"`
	FrameWidth     int      `toml:"frame_width" comment:"按像素查询时默认的画面宽度"`
	FrameHeight    int      `toml:"frame_height" comment:"按像素查询时默认的画面高度"`
	Timezone       string   `toml:"timezone" comment:"划分自然日使用的时区，为空使用本地时区"`
	RetainDays     int      `toml:"retain_days" comment:"运动数据保留天数，<=0 不清理"`
}

// Camera 摄像头
type Camera struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

// Location 解析配置的时区，失败时返回本地时区
func (m Motion) Location() *time.Location {
	if m.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(m.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// CameraName 摄像头名称，未配置时返回空
func (b *Bootstrap) CameraName(id string) string {
	for _, c := range b.Cameras {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}
