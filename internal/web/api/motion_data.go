package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gowvp/motionsearch/internal/conf"
	"github.com/gowvp/motionsearch/internal/core/motiondata"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// MotionDataAPI 运动数据后端接口
// 查询接口直接返回 json 数组，与分析服务的接口保持一致
type MotionDataAPI struct {
	log      *slog.Logger
	core     motiondata.Core
	frameW   int
	frameH   int
	spanSize int
}

func NewMotionDataAPI(core motiondata.Core, cfg *conf.Bootstrap) MotionDataAPI {
	return MotionDataAPI{
		log:      slog.With("hook", "motion_data"),
		core:     core,
		frameW:   cfg.Motion.FrameWidth,
		frameH:   cfg.Motion.FrameHeight,
		spanSize: cfg.Motion.SpanSize,
	}
}

func registerMotionData(r gin.IRouter, api MotionDataAPI, handler ...gin.HandlerFunc) {
	r.GET("/heatmap", append(handler, api.getHeatmap)...)
	group := r.Group("/motion_data", handler...)
	group.GET("", api.getSampleIndices)
	group.GET("/cells", api.getMotionsFromCells)
	group.GET("/percent", api.getMotionsFromPercent)
	group.GET("/pixels", api.getMotionsFromPixels)
	group.GET("/cameras", web.WrapH(api.findCameras))
	group.POST("/events", web.WrapH(api.onEvents))
}

// bindQuery 绑定查询参数，失败时直接响应 400
func bindQuery[T any](c *gin.Context) (*T, bool) {
	var in T
	if err := c.ShouldBindQuery(&in); err != nil {
		web.Fail(c, reason.ErrBadRequest.SetMsg(err.Error()))
		return nil, false
	}
	return &in, true
}

func writeArray[T any](c *gin.Context, out []T, err error) {
	if err != nil {
		web.Fail(c, err)
		return
	}
	if out == nil {
		out = []T{}
	}
	c.JSON(http.StatusOK, out)
}

// getSampleIndices 选区内有运动的采样索引，升序
func (a MotionDataAPI) getSampleIndices(c *gin.Context) {
	in, ok := bindQuery[motiondata.SampleInput](c)
	if !ok {
		return
	}
	if in.SpanSize == 0 {
		in.SpanSize = a.spanSize
	}
	out, err := a.core.SampleIndices(c.Request.Context(), in)
	writeArray(c, out, err)
}

// getMotionsFromCells 网格矩形内有运动的秒数
func (a MotionDataAPI) getMotionsFromCells(c *gin.Context) {
	in, ok := bindQuery[motiondata.CellsInput](c)
	if !ok {
		return
	}
	out, err := a.core.Motions(c.Request.Context(), in.CameraID, in.Day, in.CellRect)
	writeArray(c, out, err)
}

// getMotionsFromPercent 比例矩形内有运动的秒数
func (a MotionDataAPI) getMotionsFromPercent(c *gin.Context) {
	in, ok := bindQuery[motiondata.PercentInput](c)
	if !ok {
		return
	}
	out, err := a.core.MotionsFromPercent(c.Request.Context(), in)
	writeArray(c, out, err)
}

// getMotionsFromPixels 像素矩形内有运动的秒数
func (a MotionDataAPI) getMotionsFromPixels(c *gin.Context) {
	in, ok := bindQuery[motiondata.PixelsInput](c)
	if !ok {
		return
	}
	if in.FrameWidth <= 0 || in.FrameHeight <= 0 {
		in.FrameWidth, in.FrameHeight = a.frameW, a.frameH
	}
	rect, err := a.core.CellsFromPixels(in.X, in.Y, in.Width, in.Height, in.FrameWidth, in.FrameHeight)
	if err != nil {
		web.Fail(c, err)
		return
	}
	out, err := a.core.Motions(c.Request.Context(), in.CameraID, in.Day, rect)
	writeArray(c, out, err)
}

// getHeatmap 每个网格的运动秒数，行优先
func (a MotionDataAPI) getHeatmap(c *gin.Context) {
	in, ok := bindQuery[motiondata.CameraInput](c)
	if !ok {
		return
	}
	out, err := a.core.Heatmap(c.Request.Context(), in.CameraID, in.Day)
	writeArray(c, out, err)
}

type findCamerasOutput struct {
	Day   string   `json:"day"`
	Items []string `json:"items"`
}

// findCameras 有运动数据的摄像头
func (a MotionDataAPI) findCameras(c *gin.Context, in *motiondata.DayInput) (findCamerasOutput, error) {
	day := in.Day
	if day == "" {
		day = a.core.Today()
	}
	items, err := a.core.Cameras(c.Request.Context(), day)
	return findCamerasOutput{Day: day, Items: items}, err
}

type onEventsOutput struct {
	Cells int `json:"cells"`
}

// onEvents 接收分析服务上报的运动检测
func (a MotionDataAPI) onEvents(c *gin.Context, in *motiondata.RecordInput) (onEventsOutput, error) {
	if err := a.core.Record(c.Request.Context(), in); err != nil {
		a.log.WarnContext(c.Request.Context(), "record motion", "camera_id", in.CameraID, "err", err)
		return onEventsOutput{}, err
	}
	return onEventsOutput{Cells: len(in.Cells)}, nil
}
