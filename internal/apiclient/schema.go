package apiclient

import (
	"math"
	"strconv"
	"time"
)

// 远程 API 的响应字段名不稳定（同一概念出现过 unRealizedProfit /
// unrealizedPnl / pnl 等多种写法），这里定义唯一的规范 schema，
// 字段归一化只发生在客户端边界，页面不做逐字段猜测。

// Position 规范持仓
type Position struct {
	Symbol        string
	Side          string // LONG / SHORT / BOTH
	Size          float64
	EntryPrice    float64
	MarkPrice     float64
	Leverage      int
	UnrealizedPnL float64
	PnLPercent    float64
	TradeID       string
}

// Order 规范挂单
type Order struct {
	OrderID  string
	Symbol   string
	Type     string
	Side     string
	Price    float64
	Quantity float64
	Status   string
}

// Trade 规范历史交易
type Trade struct {
	ID         string
	Symbol     string
	Side       string
	Size       float64
	EntryPrice float64
	ExitPrice  float64
	Leverage   int
	PnL        float64
	PnLPercent float64
	Status     string
	CreatedAt  time.Time
	ClosedAt   time.Time
}

// Balance 规范余额
type Balance struct {
	Total     float64
	Available float64
}

// SymbolRule 交易对规则（tick/step 精度与上限）
type SymbolRule struct {
	Symbol      string
	MinQty      float64
	StepSize    float64
	TickSize    float64
	MaxLeverage int
}

// unwrapData 剥掉一层 {data: ...} 包装
func unwrapData(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["data"]; ok {
			return inner
		}
	}
	return v
}

// asList 把响应拍平成对象列表；支持 {data:{<nested>:[...]}} / {data:[...]} / [...]
func asList(v any, nestedKeys ...string) []map[string]any {
	v = unwrapData(v)
	if m, ok := v.(map[string]any); ok {
		for _, k := range nestedKeys {
			if inner, ok := m[k]; ok {
				v = inner
				break
			}
		}
	}
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// getString 按优先级取第一个非空字符串字段
func getString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// getFloat 按优先级取第一个可解析的数值字段；数值和字符串都接受
func getFloat(m map[string]any, keys ...string) float64 {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return v
		case string:
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
		}
	}
	return 0
}

func getInt(m map[string]any, keys ...string) int {
	return int(getFloat(m, keys...))
}

// NormalizePosition 把一条原始持仓归一化
func NormalizePosition(m map[string]any) Position {
	size := getFloat(m, "positionAmt", "size", "quantity")
	side := getString(m, "positionSide", "side")
	// 方向优先从有符号仓位量推导
	switch {
	case size > 0:
		side = "LONG"
	case size < 0:
		side = "SHORT"
	case side == "BUY":
		side = "LONG"
	case side == "SELL":
		side = "SHORT"
	case side == "":
		side = "BOTH"
	}
	entry := getFloat(m, "entryPrice")
	mark := getFloat(m, "markPrice", "currentPrice")
	if mark == 0 {
		mark = entry
	}
	return Position{
		Symbol:        getString(m, "symbol"),
		Side:          side,
		Size:          math.Abs(size),
		EntryPrice:    entry,
		MarkPrice:     mark,
		Leverage:      getInt(m, "leverage"),
		UnrealizedPnL: getFloat(m, "unRealizedProfit", "unrealizedPnl", "pnl"),
		PnLPercent:    getFloat(m, "percentage", "pnlPercent"),
		TradeID:       getString(m, "tradeId", "id"),
	}
}

// NormalizePositions 归一化持仓列表
func NormalizePositions(raw any) []Position {
	items := asList(raw, "positions")
	out := make([]Position, 0, len(items))
	for _, m := range items {
		out = append(out, NormalizePosition(m))
	}
	return out
}

// NormalizeOrders 归一化挂单列表
func NormalizeOrders(raw any) []Order {
	items := asList(raw, "orders")
	out := make([]Order, 0, len(items))
	for _, m := range items {
		typ := getString(m, "type", "orderType")
		if typ == "" {
			typ = "LIMIT"
		}
		status := getString(m, "status")
		if status == "" {
			status = "PENDING"
		}
		out = append(out, Order{
			OrderID:  getString(m, "orderId", "id"),
			Symbol:   getString(m, "symbol"),
			Type:     typ,
			Side:     getString(m, "side"),
			Price:    getFloat(m, "price"),
			Quantity: getFloat(m, "origQty", "quantity", "size"),
			Status:   status,
		})
	}
	return out
}

// NormalizeTrades 归一化历史交易列表
func NormalizeTrades(raw any) []Trade {
	items := asList(raw, "trades")
	out := make([]Trade, 0, len(items))
	for _, m := range items {
		out = append(out, Trade{
			ID:         getString(m, "id", "tradeId"),
			Symbol:     getString(m, "symbol"),
			Side:       getString(m, "side"),
			Size:       getFloat(m, "size", "quantity"),
			EntryPrice: getFloat(m, "entryPrice"),
			ExitPrice:  getFloat(m, "exitPrice"),
			Leverage:   getInt(m, "leverage"),
			PnL:        getFloat(m, "pnl", "realizedPnl"),
			PnLPercent: getFloat(m, "pnlPercent"),
			Status:     getString(m, "status"),
			CreatedAt:  normalizeTime(m, "createdAt", "timestamp"),
			ClosedAt:   normalizeTime(m, "closedAt", "closeTime"),
		})
	}
	return out
}

// normalizeTime 时间字段：秒级字段优先，毫秒级字段兜底
func normalizeTime(m map[string]any, secKey, msKey string) time.Time {
	if sec := getFloat(m, secKey); sec > 0 {
		return time.Unix(int64(sec), 0)
	}
	if ms := getFloat(m, msKey); ms > 0 {
		return time.UnixMilli(int64(ms))
	}
	return time.Time{}
}

// NormalizeBalance 归一化余额
func NormalizeBalance(raw any) Balance {
	m, _ := unwrapData(raw).(map[string]any)
	if m == nil {
		return Balance{}
	}
	total := getFloat(m, "totalWalletBalance", "availableBalance")
	return Balance{
		Total:     total,
		Available: getFloat(m, "availableBalance"),
	}
}

// NormalizeSymbolRules 归一化交易对规则列表
func NormalizeSymbolRules(raw any) []SymbolRule {
	items := asList(raw, "symbols")
	out := make([]SymbolRule, 0, len(items))
	for _, m := range items {
		out = append(out, SymbolRule{
			Symbol:      getString(m, "symbol"),
			MinQty:      getFloat(m, "minQty"),
			StepSize:    getFloat(m, "stepSize"),
			TickSize:    getFloat(m, "tickSize"),
			MaxLeverage: getInt(m, "maxLeverage"),
		})
	}
	return out
}
