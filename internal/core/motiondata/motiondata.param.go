package motiondata

// RecordInput 分析服务上报的一次运动检测
type RecordInput struct {
	CameraID  string `json:"camera_id"`
	Cells     []int  `json:"cells"`     // 检测到运动的网格序号
	Timestamp int64  `json:"timestamp"` // 毫秒时间戳，为 0 时使用当前时间
}

// CellRect 网格坐标下的矩形，X/Y 为左上角所在的列/行
type CellRect struct {
	X      int `form:"x" json:"x"`
	Y      int `form:"y" json:"y"`
	Width  int `form:"width" json:"width"`
	Height int `form:"height" json:"height"`
}

// CellsInput 按网格查询
type CellsInput struct {
	CellRect
	CameraID string `form:"camera_id" binding:"required"`
	Day      string `form:"day"` // 默认当天
}

// PercentInput 按比例查询，参数均为 [0,1]
type PercentInput struct {
	CameraID string  `form:"camera_id" binding:"required"`
	Day      string  `form:"day"`
	Left     float64 `form:"left"`
	Top      float64 `form:"top"`
	Width    float64 `form:"width"`
	Height   float64 `form:"height"`
}

// PixelsInput 按像素查询，帧尺寸缺省时使用配置值
type PixelsInput struct {
	CameraID    string `form:"camera_id" binding:"required"`
	Day         string `form:"day"`
	X           int    `form:"x_pixels"`
	Y           int    `form:"y_pixels"`
	Width       int    `form:"width_pixels"`
	Height      int    `form:"height_pixels"`
	FrameWidth  int    `form:"frame_width"`
	FrameHeight int    `form:"frame_height"`
}

// SampleInput 按比例查询采样索引
type SampleInput struct {
	PercentInput
	SpanSize int `form:"span_size"`
}

// CameraInput 单个摄像头
type CameraInput struct {
	CameraID string `form:"camera_id" binding:"required"`
	Day      string `form:"day"`
}

// DayInput 指定日期
type DayInput struct {
	Day string `form:"day"`
}
