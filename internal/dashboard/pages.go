package dashboard

import (
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/betbot/ctdash/internal/apiclient"
	"github.com/betbot/ctdash/internal/trading"
	"github.com/betbot/ctdash/pkg/logger"
)

// 页面装配层：每个数据源独立拉取、独立记错。一个数据源失败只渲染
// 该区块的错误面板，其余区块照常渲染（局部降级，而不是整页失败）。

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// homeView 首页视图
type homeView struct {
	Balance      apiclient.Balance
	BalanceErr   string
	Positions    []apiclient.Position
	PositionsErr string
	Orders       []apiclient.Order
	OrdersErr    string
	TotalPnL     float64
}

func (s *Server) handleHome(c *gin.Context) {
	ctx := c.Request.Context()
	var view homeView

	// 独立数据源并行拉取，汇合后各自记错
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		var err error
		view.Balance, err = s.client.FetchBalance(ctx)
		view.BalanceErr = errText(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		view.Positions, err = s.client.FetchPositions(ctx)
		view.PositionsErr = errText(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		view.Orders, err = s.client.FetchOrders(ctx, "")
		view.OrdersErr = errText(err)
	}()
	wg.Wait()

	for _, p := range view.Positions {
		view.TotalPnL += p.UnrealizedPnL
	}
	c.HTML(http.StatusOK, "home.tmpl", view)
}

// positionsView 持仓页视图
type positionsView struct {
	Positions []apiclient.Position
	FetchErr  string
	FlashErr  string
}

func (s *Server) handlePositions(c *gin.Context) {
	positions, err := s.client.FetchPositions(c.Request.Context())
	c.HTML(http.StatusOK, "positions.tmpl", positionsView{
		Positions: positions,
		FetchErr:  errText(err),
		FlashErr:  c.Query("error"),
	})
}

func (s *Server) handleClosePosition(c *gin.Context) {
	input := trading.ClosePositionInput{
		Symbol:  c.PostForm("symbol"),
		TradeID: c.PostForm("tradeId"),
	}
	res, err := s.actions.ClosePosition(c.Request.Context(), input)
	if err != nil {
		logger.Warnf("close position %s failed: %v", input.Symbol, err)
		c.Redirect(http.StatusSeeOther, "/positions?error="+url.QueryEscape(err.Error()))
		return
	}
	c.Redirect(http.StatusSeeOther, res.RedirectTo)
}

// ordersView 挂单页视图
type ordersView struct {
	Orders   []apiclient.Order
	Symbol   string
	FetchErr string
	FlashErr string
}

func (s *Server) handleOrders(c *gin.Context) {
	symbol := c.Query("symbol")
	orders, err := s.client.FetchOrders(c.Request.Context(), symbol)
	c.HTML(http.StatusOK, "orders.tmpl", ordersView{
		Orders:   orders,
		Symbol:   symbol,
		FetchErr: errText(err),
		FlashErr: c.Query("error"),
	})
}

func (s *Server) handleCancelOrders(c *gin.Context) {
	input := trading.CancelOrdersInput{
		OrderID: c.PostForm("orderId"),
		Symbol:  c.PostForm("symbol"),
	}
	res, err := s.actions.CancelOrders(c.Request.Context(), input)
	if err != nil {
		logger.Warnf("cancel orders failed: %v", err)
		c.Redirect(http.StatusSeeOther, "/orders?error="+url.QueryEscape(err.Error()))
		return
	}
	c.Redirect(http.StatusSeeOther, res.RedirectTo)
}

// tradeView 下单页视图
type tradeView struct {
	FlashErr string
}

func (s *Server) handleTradePage(c *gin.Context) {
	c.HTML(http.StatusOK, "trade.tmpl", tradeView{FlashErr: c.Query("error")})
}

func formFloat(c *gin.Context, name string) float64 {
	f, _ := strconv.ParseFloat(c.PostForm(name), 64)
	return f
}

func (s *Server) handlePlaceTrade(c *gin.Context) {
	leverage, _ := strconv.Atoi(c.PostForm("leverage"))
	input := trading.TradeInput{
		Symbol:     c.PostForm("symbol"),
		Side:       c.PostForm("side"),
		OrderType:  c.PostForm("orderType"),
		Size:       formFloat(c, "size"),
		EntryPrice: formFloat(c, "entryPrice"),
		Leverage:   leverage,
		StopLoss:   formFloat(c, "stopLoss"),
		TakeProfit: formFloat(c, "takeProfit"),
		UserID:     c.PostForm("userId"),
	}
	res, err := s.actions.PlaceTrade(c.Request.Context(), input)
	if err != nil {
		logger.Warnf("place trade %s failed: %v", input.Symbol, err)
		c.Redirect(http.StatusSeeOther, "/trade?error="+url.QueryEscape(err.Error()))
		return
	}
	c.Redirect(http.StatusSeeOther, res.RedirectTo)
}

// marketsView 交易对页视图
type marketsView struct {
	Rules    []apiclient.SymbolRule
	Symbol   string
	FetchErr string
}

func (s *Server) handleMarkets(c *gin.Context) {
	symbol := c.Query("symbol")
	rules, err := s.client.FetchExchangeInfo(c.Request.Context(), symbol)
	c.HTML(http.StatusOK, "markets.tmpl", marketsView{
		Rules:    rules,
		Symbol:   symbol,
		FetchErr: errText(err),
	})
}

// accountView 账户页视图
type accountView struct {
	Balance      apiclient.Balance
	BalanceErr   string
	Snapshots    []map[string]any
	SnapshotsErr string
}

func (s *Server) handleAccount(c *gin.Context) {
	ctx := c.Request.Context()
	var view accountView

	q := &apiclient.SnapshotQuery{}
	q.StartTime, _ = strconv.ParseInt(c.Query("startTime"), 10, 64)
	q.EndTime, _ = strconv.ParseInt(c.Query("endTime"), 10, 64)
	q.Limit, _ = strconv.Atoi(c.Query("limit"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		view.Balance, err = s.client.FetchBalance(ctx)
		view.BalanceErr = errText(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		view.Snapshots, err = s.client.FetchAccountSnapshot(ctx, q)
		view.SnapshotsErr = errText(err)
	}()
	wg.Wait()

	c.HTML(http.StatusOK, "account.tmpl", view)
}

// historyView 历史页视图
type historyView struct {
	UserID   string
	Trades   []apiclient.Trade
	FetchErr string
}

func (s *Server) handleHistory(c *gin.Context) {
	view := historyView{UserID: c.Query("userId")}
	if view.UserID != "" {
		var err error
		view.Trades, err = s.client.FetchTradesByUser(c.Request.Context(), view.UserID)
		view.FetchErr = errText(err)
	}
	c.HTML(http.StatusOK, "history.tmpl", view)
}

// analyticsView 汇总页视图
type analyticsView struct {
	Period   string
	UserID   string
	Summary  map[string]any
	FetchErr string
}

func (s *Server) handleAnalytics(c *gin.Context) {
	period := c.Query("period")
	if period == "" {
		period = "7d"
	}
	view := analyticsView{Period: period, UserID: c.Query("userId")}

	summary, err := s.client.FetchSummary(c.Request.Context(), &apiclient.SummaryQuery{
		Period: period,
		UserID: view.UserID,
	})
	view.Summary = summary
	view.FetchErr = errText(err)
	c.HTML(http.StatusOK, "analytics.tmpl", view)
}

// healthView 健康页视图
type healthView struct {
	Health    any
	HealthErr string
	Status    any
	StatusErr string
}

func (s *Server) handleHealthPage(c *gin.Context) {
	ctx := c.Request.Context()
	var view healthView

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		view.Health, err = s.client.Health(ctx)
		view.HealthErr = errText(err)
	}()
	go func() {
		defer wg.Done()
		var err error
		view.Status, err = s.client.Status(ctx)
		view.StatusErr = errText(err)
	}()
	wg.Wait()

	c.HTML(http.StatusOK, "health.tmpl", view)
}

// loginView 登录页视图
type loginView struct {
	FlashErr string
}

func (s *Server) handleLoginPage(c *gin.Context) {
	c.HTML(http.StatusOK, "login.tmpl", loginView{FlashErr: c.Query("error")})
}
