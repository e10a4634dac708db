package motion

import "errors"

var (
	// ErrInvalidGeometry 选区几何数据非法，调用方应丢弃候选矩形并保留之前的状态
	ErrInvalidGeometry = errors.New("motion: invalid geometry")
	// ErrTransport 后端查询失败（网络或 HTTP 状态码）
	ErrTransport = errors.New("motion: transport error")
	// ErrMalformedResponse 后端返回了越界或无法解析的索引
	ErrMalformedResponse = errors.New("motion: malformed response")
	// ErrSuperseded 同一摄像头已有更新的请求，本次结果被丢弃
	ErrSuperseded = errors.New("motion: superseded by newer request")
	// ErrUnsubscribed 订阅已关闭
	ErrUnsubscribed = errors.New("motion: subscription closed")
)
