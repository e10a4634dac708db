package api

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gowvp/motionsearch/internal/core/motion"
	"github.com/ixugo/goddd/pkg/reason"
	"github.com/ixugo/goddd/pkg/web"
)

// MotionAPI 运动搜索的交互接口，按摄像头维护选区和区间集合
type MotionAPI struct {
	log  *slog.Logger
	core *motion.Core
	subs *atomic.Int64
}

func NewMotionAPI(core *motion.Core) MotionAPI {
	return MotionAPI{
		log:  slog.With("hook", "motion"),
		core: core,
		subs: new(atomic.Int64),
	}
}

func registerMotion(r gin.IRouter, api MotionAPI, handler ...gin.HandlerFunc) {
	group := r.Group("/motion/cameras/:cid", handler...)
	group.GET("/frames", web.WrapH(api.getFrames))
	group.GET("/frames/events", api.streamFrames)
	group.POST("/selection", web.WrapH(api.selectRegion))
	group.POST("/selection/pixels", web.WrapH(api.selectPixels))
	group.DELETE("/selection", web.WrapH(api.unselect))
	group.POST("/pointer", web.WrapH(api.onPointer))

	zip := gzip.Gzip(gzip.DefaultCompression)
	group.GET("/heatmap", zip, web.WrapH(api.getHeatmap))
	group.GET("/timeline", zip, web.WrapH(api.getTimeline))
}

// subscribers 当前通过 sse 订阅区间集合的连接数
func (a MotionAPI) subscribers() int {
	if a.subs == nil {
		return 0
	}
	return int(a.subs.Load())
}

// mapError 将运动搜索的错误转换为 http 错误
func mapError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, motion.ErrInvalidGeometry):
		return reason.ErrBadRequest.SetMsg(err.Error())
	case errors.Is(err, motion.ErrTransport), errors.Is(err, motion.ErrMalformedResponse):
		return reason.ErrServer.SetMsg(err.Error())
	default:
		return err
	}
}

type framesOutput struct {
	CameraID   string                `json:"camera_id"`
	Frames     motion.SearchFrameSet `json:"frames"`
	Samples    int                   `json:"samples"`
	Superseded bool                  `json:"superseded"` // 已有更新的选区，本次结果未写入
}

func newFramesOutput(cid string, frames motion.SearchFrameSet) framesOutput {
	if frames == nil {
		frames = motion.SearchFrameSet{}
	}
	return framesOutput{CameraID: cid, Frames: frames, Samples: frames.Samples()}
}

func (a MotionAPI) getFrames(c *gin.Context, _ *struct{}) (framesOutput, error) {
	cid := c.Param("cid")
	return newFramesOutput(cid, a.core.Frames(cid)), nil
}

func (a MotionAPI) selectRegion(c *gin.Context, in *motion.Region) (framesOutput, error) {
	cid := c.Param("cid")
	frames, err := a.core.Select(c.Request.Context(), cid, *in)
	return a.selectResult(cid, frames, err)
}

type selectPixelsInput struct {
	Rect     motion.Rect     `json:"rect"`
	Viewport motion.Viewport `json:"viewport"`
}

func (a MotionAPI) selectPixels(c *gin.Context, in *selectPixelsInput) (framesOutput, error) {
	cid := c.Param("cid")
	frames, err := a.core.SelectPixels(c.Request.Context(), cid, in.Rect, in.Viewport)
	return a.selectResult(cid, frames, err)
}

func (a MotionAPI) selectResult(cid string, frames motion.SearchFrameSet, err error) (framesOutput, error) {
	if errors.Is(err, motion.ErrSuperseded) {
		out := newFramesOutput(cid, frames)
		out.Superseded = true
		return out, nil
	}
	if err != nil {
		return framesOutput{}, mapError(err)
	}
	return newFramesOutput(cid, frames), nil
}

func (a MotionAPI) unselect(c *gin.Context, _ *struct{}) (framesOutput, error) {
	cid := c.Param("cid")
	a.core.Unselect(cid)
	return newFramesOutput(cid, nil), nil
}

func (a MotionAPI) onPointer(c *gin.Context, in *motion.PointerEvent) (*motion.PointerResult, error) {
	out, err := a.core.Pointer(c.Request.Context(), c.Param("cid"), *in)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

func (a MotionAPI) getHeatmap(c *gin.Context, _ *struct{}) (*motion.HeatmapView, error) {
	out, err := a.core.Heatmap(c.Request.Context(), c.Param("cid"))
	return out, mapError(err)
}

func (a MotionAPI) getTimeline(c *gin.Context, _ *struct{}) (motion.TimelineView, error) {
	return a.core.Timeline(c.Param("cid")), nil
}

// streamFrames 以 sse 推送区间集合，第一条为当前值，之后每次变更推送一条
func (a MotionAPI) streamFrames(c *gin.Context) {
	cid := c.Param("cid")
	ctx := c.Request.Context()
	sub := a.core.Subscribe(cid)
	defer sub.Close()

	a.subs.Add(1)
	defer a.subs.Add(-1)
	a.log.DebugContext(ctx, "frames subscribed", "camera_id", cid, "id", sub.ID)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(_ io.Writer) bool {
		frames, err := sub.Next(ctx)
		if err != nil {
			return false
		}
		c.SSEvent("frames", newFramesOutput(cid, frames))
		return true
	})
	a.log.DebugContext(ctx, "frames unsubscribed", "camera_id", cid, "id", sub.ID)
}
