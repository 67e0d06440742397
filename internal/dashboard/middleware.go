package dashboard

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/betbot/ctdash/internal/apiclient"
	"github.com/betbot/ctdash/pkg/logger"
)

// publicPrefixes 免认证路径前缀
var publicPrefixes = []string{"/login", "/health", "/static", "/api"}

func isPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// guard 路由守卫：在任何页面逻辑之前按 cookie 有无放行或重定向
// 只做存在性检查；key 是否有效由远程 API 判定，无效 key 表现为页面上的
// 取数错误面板。同时把 key 注入请求上下文供出站调用使用。
func (s *Server) guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := s.sessions.Read(c.Request)
		if key != "" {
			c.Request = c.Request.WithContext(apiclient.WithAPIKey(c.Request.Context(), key))
		}

		if isPublicPath(c.Request.URL.Path) {
			c.Next()
			return
		}
		if key == "" {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// requestID 为每个请求生成标识，写入响应头并带入日志
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// accessLog 访问日志
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request")
	}
}
