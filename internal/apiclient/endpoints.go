package apiclient

import (
	"fmt"
	"net/url"
	"strconv"
)

// 端点描述符：逻辑操作名 -> 具体路径 + 查询串。纯函数，无状态。

// SnapshotQuery 账户快照查询参数
type SnapshotQuery struct {
	StartTime int64
	EndTime   int64
	Limit     int
}

// SummaryQuery 交易汇总查询参数
type SummaryQuery struct {
	Period string // 1d / 1w / 7d / 1m
	UserID string
}

// EndpointHealth 健康检查
func EndpointHealth() string { return "/health" }

// EndpointStatus 服务状态
func EndpointStatus() string { return "/api/status" }

// EndpointBalance 账户余额
func EndpointBalance() string { return "/api/balance" }

// EndpointAccountSnapshot 账户快照历史
func EndpointAccountSnapshot(q *SnapshotQuery) string {
	base := "/api/account/snapshot"
	if q == nil {
		return base
	}
	params := url.Values{}
	if q.StartTime > 0 {
		params.Set("startTime", strconv.FormatInt(q.StartTime, 10))
	}
	if q.EndTime > 0 {
		params.Set("endTime", strconv.FormatInt(q.EndTime, 10))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}

// EndpointExchangeInfo 交易所元数据（可按 symbol 过滤）
func EndpointExchangeInfo(symbol string) string {
	if symbol == "" {
		return "/api/exchange/info"
	}
	return "/api/exchange/info?symbol=" + url.QueryEscape(symbol)
}

// EndpointPositions 持仓列表
func EndpointPositions() string { return "/api/positions" }

// EndpointClosePosition 平仓（POST）
func EndpointClosePosition() string { return "/api/position/close" }

// EndpointOrders 挂单列表（可按 symbol 过滤）
func EndpointOrders(symbol string) string {
	if symbol == "" {
		return "/api/orders"
	}
	return "/api/orders?symbol=" + url.QueryEscape(symbol)
}

// EndpointCancelOrders 撤单（POST）
func EndpointCancelOrders() string { return "/api/orders/cancel" }

// EndpointTrade 下单（POST）
func EndpointTrade() string { return "/api/trade" }

// EndpointTradeByID 单笔交易详情
func EndpointTradeByID(tradeID string) string {
	return fmt.Sprintf("/api/trade/%s", url.PathEscape(tradeID))
}

// EndpointTradesByUser 用户交易历史
func EndpointTradesByUser(userID string) string {
	return fmt.Sprintf("/api/trades/%s", url.PathEscape(userID))
}

// EndpointSummary 交易汇总
func EndpointSummary(q *SummaryQuery) string {
	base := "/api/summary"
	if q == nil {
		return base
	}
	params := url.Values{}
	if q.Period != "" {
		params.Set("period", q.Period)
	}
	if q.UserID != "" {
		params.Set("userId", q.UserID)
	}
	if len(params) == 0 {
		return base
	}
	return base + "?" + params.Encode()
}
