package trading

import (
	"context"
	"net/http"

	"github.com/betbot/ctdash/internal/apiclient"
	"github.com/betbot/ctdash/pkg/logger"
)

// 变更操作是对远程 API 的薄代理：本地校验 -> 转发 -> 按标签失效缓存。
// 失效只在本次请求成功返回之后发生；并发的页面渲染可能短暂读到旧缓存，
// 这是接受的最终一致窗口。

// Result 变更操作结果
// 重定向是显式返回给调用方的指令，而不是异常式的环境跳转。
type Result struct {
	Data       any
	RedirectTo string
}

// ClosePositionInput 平仓载荷
type ClosePositionInput struct {
	Symbol  string `json:"symbol"`
	TradeID string `json:"tradeId,omitempty"`
}

// CancelOrdersInput 撤单载荷；两个字段都可选（全空表示撤全部）
type CancelOrdersInput struct {
	OrderID string `json:"orderId,omitempty"`
	Symbol  string `json:"symbol,omitempty"`
}

// Actions 变更操作入口
type Actions struct {
	client *apiclient.Client
}

// NewActions 创建变更操作入口
func NewActions(client *apiclient.Client) *Actions {
	return &Actions{client: client}
}

// PlaceTrade 下单
// 校验失败不发任何网络请求。有交易对规则时先做 tick/step 对齐（尽力而为，
// 规则取不到不阻塞下单）。成功后失效 positions/balance/status/orders。
func (a *Actions) PlaceTrade(ctx context.Context, input TradeInput) (Result, error) {
	if err := input.Validate(); err != nil {
		return Result{}, err
	}

	if rules, err := a.client.FetchExchangeInfo(ctx, input.Symbol); err == nil {
		input = ApplySymbolRules(input, FindRule(rules, input.Symbol))
	} else {
		logger.Warnf("exchange info unavailable for %s, skipping rounding: %v", input.Symbol, err)
	}

	raw, err := a.client.Request(ctx, apiclient.EndpointTrade(), apiclient.Options{
		Method: http.MethodPost,
		Body:   input,
	})
	if err != nil {
		return Result{}, err
	}

	a.invalidate("positions", "balance", "status", "orders")
	return Result{Data: raw, RedirectTo: "/positions"}, nil
}

// ClosePosition 平仓；成功后失效 positions/balance/orders
func (a *Actions) ClosePosition(ctx context.Context, input ClosePositionInput) (Result, error) {
	if input.Symbol == "" {
		return Result{}, invalid("symbol", "must not be empty")
	}

	raw, err := a.client.Request(ctx, apiclient.EndpointClosePosition(), apiclient.Options{
		Method: http.MethodPost,
		Body:   input,
	})
	if err != nil {
		return Result{}, err
	}

	a.invalidate("positions", "balance", "orders")
	return Result{Data: raw, RedirectTo: "/positions"}, nil
}

// CancelOrders 撤单；成功后失效 orders/positions
func (a *Actions) CancelOrders(ctx context.Context, input CancelOrdersInput) (Result, error) {
	raw, err := a.client.Request(ctx, apiclient.EndpointCancelOrders(), apiclient.Options{
		Method: http.MethodPost,
		Body:   input,
	})
	if err != nil {
		return Result{}, err
	}

	a.invalidate("orders", "positions")
	return Result{Data: raw, RedirectTo: "/orders"}, nil
}

func (a *Actions) invalidate(tags ...string) {
	for _, tag := range tags {
		a.client.InvalidateTag(tag)
	}
}
