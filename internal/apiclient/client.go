package apiclient

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/ctdash/pkg/cache"
)

// maxAttempts 单次调用最多尝试次数（含首次）
const maxAttempts = 2

// retryBaseWait 重试退避基准间隔
const retryBaseWait = 150 * time.Millisecond

type contextKey string

const apiKeyContextKey contextKey = "ctdash_api_key"

// WithAPIKey 把当前会话的 API key 放入请求上下文
// 凭证按请求传递，进程内不保留任何跨请求的凭证缓存。
func WithAPIKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, apiKeyContextKey, key)
}

// APIKeyFrom 从上下文取出 API key；缺失时返回空串
func APIKeyFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(apiKeyContextKey).(string); ok {
		return v
	}
	return ""
}

// Options 单次调用配置
type Options struct {
	Method       string            // 默认 GET
	Body         any               // POST 请求体，JSON 序列化
	Headers      map[string]string // 额外请求头，可覆盖默认 content-type
	CacheSeconds int               // GET 缓存秒数；0 表示不缓存（每次回源）
	Tag          string            // 缓存失效标签
}

// Client 远程交易 API 客户端
// 负责凭证注入、重试与缓存控制；除网络 I/O 和缓存读写外无其它副作用。
type Client struct {
	http  *resty.Client
	cache cache.Cache
	base  string
}

// New 创建客户端
func New(baseURL string, store cache.Cache) *Client {
	base := strings.TrimSuffix(baseURL, "/")

	httpc := resty.New().
		SetBaseURL(base).
		SetTimeout(60 * time.Second).
		SetRetryCount(maxAttempts - 1).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			// 传输错误或非 2xx 都算失败，触发重试
			return err != nil || !r.IsSuccess()
		}).
		SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 抖动线性退避：150ms * 已完成次数 + rand(0,150ms)
			attempt := 1
			if resp != nil && resp.Request != nil && resp.Request.Attempt > 0 {
				attempt = resp.Request.Attempt
			}
			jitter := time.Duration(rand.Int63n(int64(retryBaseWait)))
			return time.Duration(attempt)*retryBaseWait + jitter, nil
		})

	return &Client{http: httpc, cache: store, base: base}
}

// Request 执行一次远程调用
// GET 且给了 CacheSeconds 时走时限缓存（按完整 URL 作 key，携带标签）；
// GET 无 CacheSeconds 时每次都回源；非 GET 一律不缓存。
// 成功时返回解析后的 JSON（any），解析失败则原样返回响应文本。
func (c *Client) Request(ctx context.Context, path string, opts Options) (any, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}
	isGet := method == http.MethodGet
	ttl := time.Duration(opts.CacheSeconds) * time.Second
	cacheKey := c.base + path

	if isGet && ttl > 0 {
		if v, ok := c.cache.Get(cacheKey); ok {
			return v, nil
		}
	}

	req := c.http.R()
	if ctx != nil {
		req.SetContext(ctx)
	}
	req.SetHeader("Content-Type", "application/json")
	if key := APIKeyFrom(ctx); key != "" {
		req.SetHeader("X-API-Key", key)
	}
	for k, v := range opts.Headers {
		req.SetHeader(k, v)
	}
	if opts.Body != nil {
		req.SetBody(opts.Body)
	}

	var resp *resty.Response
	var err error
	switch method {
	case http.MethodGet:
		resp, err = req.Get(path)
	case http.MethodPost:
		resp, err = req.Post(path)
	case http.MethodPut:
		resp, err = req.Put(path)
	case http.MethodDelete:
		resp, err = req.Delete(path)
	default:
		return nil, errors.Errorf("unsupported method: %s", method)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "request %s %s", method, path)
	}
	if !resp.IsSuccess() {
		return nil, errors.Errorf("HTTP %d", resp.StatusCode())
	}

	body := resp.Body()
	var parsed any
	if jsonErr := json.Unmarshal(body, &parsed); jsonErr != nil {
		// 非 JSON 响应不是错误，按原始文本返回
		parsed = string(body)
	}

	if isGet && ttl > 0 {
		if opts.Tag != "" {
			c.cache.Set(cacheKey, parsed, ttl, opts.Tag)
		} else {
			c.cache.Set(cacheKey, parsed, ttl)
		}
	}
	return parsed, nil
}

// InvalidateTag 按标签失效缓存；变更操作成功后由调用方触发
func (c *Client) InvalidateTag(tag string) {
	c.cache.InvalidateTag(tag)
}
