package dashboard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// loginPayload 登录载荷；JSON 与表单提交都接受
type loginPayload struct {
	APIKey string `json:"apiKey" form:"apiKey"`
}

// handleSessionLogin 写入会话 cookie
func (s *Server) handleSessionLogin(c *gin.Context) {
	isJSON := strings.Contains(c.ContentType(), "json")

	var payload loginPayload
	_ = c.ShouldBind(&payload)

	if payload.APIKey == "" {
		if isJSON {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing apiKey"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login?error=Missing+API+key")
		return
	}

	s.sessions.Write(c.Writer, payload.APIKey)
	if isJSON {
		c.JSON(http.StatusOK, gin.H{"success": true})
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// handleSessionLogout 清除会话 cookie 并回到登录页
func (s *Server) handleSessionLogout(c *gin.Context) {
	s.sessions.Clear(c.Writer)
	c.Redirect(http.StatusSeeOther, "/login")
}
