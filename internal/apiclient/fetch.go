package apiclient

import "context"

// 类型化取数入口：路径由端点描述符生成，返回值经过 schema 归一化。
// 缓存策略沿用各页面原有取数约定：余额/状态/交易所元数据走时限缓存，
// 持仓与挂单属于实时读，始终回源。

// Health 远程健康检查，返回原始响应
func (c *Client) Health(ctx context.Context) (any, error) {
	return c.Request(ctx, EndpointHealth(), Options{})
}

// Status 服务状态，5 秒缓存，标签 status
func (c *Client) Status(ctx context.Context) (any, error) {
	return c.Request(ctx, EndpointStatus(), Options{CacheSeconds: 5, Tag: "status"})
}

// FetchBalance 账户余额，5 秒缓存，标签 balance
func (c *Client) FetchBalance(ctx context.Context) (Balance, error) {
	raw, err := c.Request(ctx, EndpointBalance(), Options{CacheSeconds: 5, Tag: "balance"})
	if err != nil {
		return Balance{}, err
	}
	return NormalizeBalance(raw), nil
}

// FetchPositions 持仓列表，实时读不缓存
func (c *Client) FetchPositions(ctx context.Context) ([]Position, error) {
	raw, err := c.Request(ctx, EndpointPositions(), Options{})
	if err != nil {
		return nil, err
	}
	return NormalizePositions(raw), nil
}

// FetchOrders 挂单列表，实时读不缓存
func (c *Client) FetchOrders(ctx context.Context, symbol string) ([]Order, error) {
	raw, err := c.Request(ctx, EndpointOrders(symbol), Options{})
	if err != nil {
		return nil, err
	}
	return NormalizeOrders(raw), nil
}

// FetchTradesByUser 用户交易历史
func (c *Client) FetchTradesByUser(ctx context.Context, userID string) ([]Trade, error) {
	raw, err := c.Request(ctx, EndpointTradesByUser(userID), Options{})
	if err != nil {
		return nil, err
	}
	return NormalizeTrades(raw), nil
}

// FetchTradeByID 单笔交易详情，返回原始响应
func (c *Client) FetchTradeByID(ctx context.Context, tradeID string) (any, error) {
	return c.Request(ctx, EndpointTradeByID(tradeID), Options{})
}

// FetchExchangeInfo 交易所元数据，60 秒缓存，标签 exchange-info
func (c *Client) FetchExchangeInfo(ctx context.Context, symbol string) ([]SymbolRule, error) {
	raw, err := c.Request(ctx, EndpointExchangeInfo(symbol), Options{CacheSeconds: 60, Tag: "exchange-info"})
	if err != nil {
		return nil, err
	}
	return NormalizeSymbolRules(raw), nil
}

// FetchAccountSnapshot 账户快照历史，返回原始对象列表
func (c *Client) FetchAccountSnapshot(ctx context.Context, q *SnapshotQuery) ([]map[string]any, error) {
	raw, err := c.Request(ctx, EndpointAccountSnapshot(q), Options{})
	if err != nil {
		return nil, err
	}
	return asList(raw, "snapshots"), nil
}

// FetchSummary 交易汇总，返回原始对象
func (c *Client) FetchSummary(ctx context.Context, q *SummaryQuery) (map[string]any, error) {
	raw, err := c.Request(ctx, EndpointSummary(q), Options{})
	if err != nil {
		return nil, err
	}
	m, _ := unwrapData(raw).(map[string]any)
	return m, nil
}
