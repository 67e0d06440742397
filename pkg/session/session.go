package session

import (
	"net/http"
	"time"
)

// CookieName API key 会话 cookie 名
const CookieName = "ct_api_key"

// MaxAge 会话有效期：30 天
const MaxAge = int(30 * 24 * time.Hour / time.Second)

// Store 凭证存储
// 每个 user-agent 会话持有至多一个 API key，存放在 http-only cookie 中，
// 客户端脚本不可见。值本身不加密，机密性依赖 cookie 传输属性与 TLS。
type Store struct {
	secure bool // 生产环境下为 true，cookie 仅经 HTTPS 发送
}

// NewStore 创建凭证存储
func NewStore(secure bool) *Store {
	return &Store{secure: secure}
}

// Read 读取当前会话的 API key
// 任何情况下都不报错：cookie 缺失或请求不可用时返回空串。
func (s *Store) Read(r *http.Request) string {
	if r == nil {
		return ""
	}
	c, err := r.Cookie(CookieName)
	if err != nil || c == nil {
		return ""
	}
	return c.Value
}

// Write 写入 API key，覆盖旧值
func (s *Store) Write(w http.ResponseWriter, key string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   MaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}

// Clear 删除 API key cookie；对已空的会话调用是无害的 no-op
func (s *Store) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.secure,
	})
}
