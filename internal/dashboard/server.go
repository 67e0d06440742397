package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/betbot/ctdash/internal/apiclient"
	"github.com/betbot/ctdash/internal/trading"
	"github.com/betbot/ctdash/pkg/cache"
	"github.com/betbot/ctdash/pkg/config"
	"github.com/betbot/ctdash/pkg/session"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Server 仪表盘服务
// 所有页面数据都来自远程交易 API；本地只有响应缓存这一份共享可变状态。
type Server struct {
	cfg      config.ServerConfig
	sessions *session.Store
	client   *apiclient.Client
	actions  *trading.Actions
}

// New 创建仪表盘服务
func New(cfg config.Config) *Server {
	store := cache.New()
	client := apiclient.New(cfg.Server.APIBaseURL, store)
	return &Server{
		cfg:      cfg.Server,
		sessions: session.NewStore(cfg.Server.Production),
		client:   client,
		actions:  trading.NewActions(client),
	}
}

// templateFuncs 模板辅助函数
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		// 返回 template.HTML,避免 html/template 把 "+" 转义成 &#43;
		"signedMoney": func(v float64) template.HTML {
			if v >= 0 {
				return template.HTML(fmt.Sprintf("+$%.2f", v))
			}
			return template.HTML(fmt.Sprintf("-$%.2f", -v))
		},
		"qty":     func(v float64) string { return fmt.Sprintf("%.4f", v) },
		"percent": func(v float64) string { return fmt.Sprintf("%+.2f%%", v) },
		"pnlClass": func(v float64) string {
			if v < 0 {
				return "loss"
			}
			return "profit"
		},
		"sideClass": func(side string) string {
			if side == "SELL" || side == "SHORT" {
				return "short"
			}
			return "long"
		},
		"when": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04:05")
		},
		"upper": strings.ToUpper,
	}
}

// Router 组装路由
func (s *Server) Router() http.Handler {
	if s.cfg.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), s.requestID(), s.accessLog(), s.guard())

	tmpl := template.Must(template.New("").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.tmpl"))
	r.SetHTMLTemplate(tmpl)

	staticRoot, _ := fs.Sub(staticFS, "static")
	r.StaticFS("/static", http.FS(staticRoot))

	// 公开路径
	r.GET("/login", s.handleLoginPage)
	r.GET("/health", s.handleHealthPage)

	api := r.Group("/api")
	api.POST("/session/login", s.handleSessionLogin)
	api.POST("/session/logout", s.handleSessionLogout)

	// 受保护页面
	r.GET("/", s.handleHome)
	r.GET("/positions", s.handlePositions)
	r.POST("/positions/close", s.handleClosePosition)
	r.GET("/orders", s.handleOrders)
	r.POST("/orders/cancel", s.handleCancelOrders)
	r.GET("/trade", s.handleTradePage)
	r.POST("/trade", s.handlePlaceTrade)
	r.GET("/markets", s.handleMarkets)
	r.GET("/account", s.handleAccount)
	r.GET("/history", s.handleHistory)
	r.GET("/analytics", s.handleAnalytics)

	return r
}
