package trading

import (
	"github.com/shopspring/decimal"

	"github.com/betbot/ctdash/internal/apiclient"
)

// RoundToStep 把 value 取整到最近的 step 倍数
// step <= 0 时原样返回。用 decimal 避免 0.1 之类步长的浮点累积误差。
func RoundToStep(value, step float64) float64 {
	if step <= 0 {
		return value
	}
	v := decimal.NewFromFloat(value)
	s := decimal.NewFromFloat(step)
	rounded := v.Div(s).Round(0).Mul(s)
	f, _ := rounded.Float64()
	return f
}

// FindRule 在规则列表中查找指定交易对
func FindRule(rules []apiclient.SymbolRule, symbol string) *apiclient.SymbolRule {
	for i := range rules {
		if rules[i].Symbol == symbol {
			return &rules[i]
		}
	}
	return nil
}

// ApplySymbolRules 按交易对规则归一化下单载荷：
// 数量对齐 stepSize，价格（入场/止损/止盈）对齐 tickSize。
// rule 为 nil 时原样返回。
func ApplySymbolRules(in TradeInput, rule *apiclient.SymbolRule) TradeInput {
	if rule == nil {
		return in
	}
	in.Size = RoundToStep(in.Size, rule.StepSize)
	in.EntryPrice = RoundToStep(in.EntryPrice, rule.TickSize)
	in.StopLoss = RoundToStep(in.StopLoss, rule.TickSize)
	in.TakeProfit = RoundToStep(in.TakeProfit, rule.TickSize)
	return in
}
