// Package motionapi 运动数据分析服务的 HTTP 客户端
package motionapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gowvp/motionsearch/internal/core/motion"
)

type Config struct {
	URL     string
	Timeout time.Duration
}

type Engine struct {
	cfg Config
	cli *http.Client
}

var _ motion.Transport = Engine{}

func NewEngine() Engine {
	return Engine{
		cli: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        30,
				MaxIdleConnsPerHost: 30,
				MaxConnsPerHost:     100,
			},
		},
	}
}

func (e Engine) SetConfig(cfg Config) Engine {
	e.cfg = cfg
	e.cfg.URL = strings.TrimRight(cfg.URL, "/")
	if cfg.Timeout > 0 {
		cli := *e.cli
		cli.Timeout = cfg.Timeout
		e.cli = &cli
	}
	return e
}

// get 发送 GET 请求并解码 JSON 响应
// 网络错误或非 200 状态码返回 motion.ErrTransport，响应无法解析返回 motion.ErrMalformedResponse
func (e Engine) get(ctx context.Context, path string, params url.Values, out any) error {
	u := e.cfg.URL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", motion.ErrTransport, err)
	}
	resp, err := e.cli.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", motion.ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s: %s", motion.ErrTransport, path, resp.Status, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %w", motion.ErrMalformedResponse, path, err)
	}
	return nil
}
