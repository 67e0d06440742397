package trading

import "fmt"

// TradeInput 下单请求载荷，转发前在本地校验
type TradeInput struct {
	Symbol     string  `json:"symbol"`
	Side       string  `json:"side"`
	OrderType  string  `json:"orderType"`
	Size       float64 `json:"size"`
	EntryPrice float64 `json:"entryPrice"`
	Leverage   int     `json:"leverage"`
	StopLoss   float64 `json:"stopLoss"`
	TakeProfit float64 `json:"takeProfit"`
	UserID     string  `json:"userId"`
}

// ValidationError 字段级校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Validate 校验下单载荷；任何网络调用之前执行
// orderType 为空时默认 MARKET（原地补全）。
func (in *TradeInput) Validate() error {
	if in.Symbol == "" {
		return invalid("symbol", "must not be empty")
	}
	if in.Side != "BUY" && in.Side != "SELL" {
		return invalid("side", "must be BUY or SELL")
	}
	if in.OrderType == "" {
		in.OrderType = "MARKET"
	}
	if in.OrderType != "MARKET" && in.OrderType != "LIMIT" {
		return invalid("orderType", "must be MARKET or LIMIT")
	}
	if in.Size <= 0 {
		return invalid("size", "must be positive")
	}
	if in.EntryPrice <= 0 {
		return invalid("entryPrice", "must be positive")
	}
	if in.Leverage < 1 || in.Leverage > 125 {
		return invalid("leverage", "must be between 1 and 125")
	}
	if in.StopLoss <= 0 {
		return invalid("stopLoss", "must be positive")
	}
	if in.TakeProfit <= 0 {
		return invalid("takeProfit", "must be positive")
	}
	if in.UserID == "" {
		return invalid("userId", "must not be empty")
	}
	return nil
}
