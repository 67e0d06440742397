package dashboard

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/betbot/ctdash/pkg/session"
)

// fakeTradingAPI 最小化的远程交易 API 替身
func fakeTradingAPI(t *testing.T, failPaths map[string]bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failPaths[r.URL.Path] {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/api/balance":
			w.Write([]byte(`{"data":{"totalWalletBalance":"1500.50","availableBalance":"1200"}}`))
		case "/api/positions":
			w.Write([]byte(`{"data":[{"symbol":"BTCUSDT","positionAmt":"0.5","entryPrice":"50000","markPrice":"51000","leverage":10,"unRealizedProfit":"500"}]}`))
		case "/api/orders":
			w.Write([]byte(`{"data":[{"symbol":"ETHUSDT","side":"SELL","price":"3200","origQty":"2","status":"NEW","type":"LIMIT","orderId":77}]}`))
		case "/api/exchange/info":
			w.Write([]byte(`{"data":{"symbols":[{"symbol":"BTCUSDT","minQty":0.001,"stepSize":0.001,"tickSize":0.1,"maxLeverage":125}]}}`))
		case "/health":
			w.Write([]byte(`ok`))
		case "/api/status":
			w.Write([]byte(`{"data":{"uptime":"3h"}}`))
		case "/api/summary":
			w.Write([]byte(`{"data":{"totalTrades":12,"winRate":0.58}}`))
		case "/api/account/snapshot":
			w.Write([]byte(`{"data":[{"totalWalletBalance":"1400","time":1700000000000}]}`))
		default:
			if strings.HasPrefix(r.URL.Path, "/api/trades/") {
				w.Write([]byte(`{"data":[{"id":"t-1","symbol":"BTCUSDT","side":"BUY","size":1,"entryPrice":50000,"pnl":25,"status":"CLOSED","createdAt":1700000000}]}`))
				return
			}
			w.Write([]byte(`{"success":true}`))
		}
	}))
}

func authedGet(router http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, withCookie(httptest.NewRequest(http.MethodGet, path, nil), "k"))
	return rec
}

func TestSessionLogin_JSON(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	t.Run("missing key", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/session/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("got %d, want 400", rec.Code)
		}
	})

	t.Run("valid key sets cookie", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/session/login", strings.NewReader(`{"apiKey":"abc123"}`))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("got %d, want 200", rec.Code)
		}
		cookie := findSessionCookie(t, rec)
		if cookie.Value != "abc123" {
			t.Fatalf("unexpected cookie value: %q", cookie.Value)
		}
		if !cookie.HttpOnly {
			t.Fatal("session cookie must be http-only")
		}
	})
}

func TestSessionLogin_Form(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	form := url.Values{"apiKey": {"form-key"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/session/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Fatalf("redirected to %q", loc)
	}
	if c := findSessionCookie(t, rec); c.Value != "form-key" {
		t.Fatalf("unexpected cookie value: %q", c.Value)
	}
}

func TestSessionLogout(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	rec := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodPost, "/api/session/logout", nil), "k")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirected to %q", loc)
	}
	cookie := findSessionCookie(t, rec)
	if cookie.MaxAge >= 0 || cookie.Value != "" {
		t.Fatalf("cookie not cleared: value=%q maxage=%d", cookie.Value, cookie.MaxAge)
	}
}

func findSessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func TestHomePage_RendersRemoteData(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	rec := authedGet(router, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"BTCUSDT", "ETHUSDT", "$1500.50", "+$500.00", "LONG"} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
}

func TestHomePage_PartialFailure(t *testing.T) {
	// 余额源故障时，持仓和挂单区块必须照常渲染
	api := fakeTradingAPI(t, map[string]bool{"/api/balance": true})
	defer api.Close()
	router := newTestServer(api.URL).Router()

	rec := authedGet(router, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded page must still render, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "unavailable") {
		t.Fatal("missing degraded balance marker")
	}
	if !strings.Contains(body, "BTCUSDT") {
		t.Fatal("healthy sections must still render")
	}
}

func TestPages_RenderWithoutError(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	cases := []struct {
		path string
		want string
	}{
		{"/positions", "BTCUSDT"},
		{"/orders?symbol=ETHUSDT", "ETHUSDT"},
		{"/trade", "Trade Form"},
		{"/markets", "125x"},
		{"/account", "$1500.50"},
		{"/history?userId=user123", "t-1"},
		{"/analytics?period=1d", "totalTrades"},
		{"/health", "uptime"},
		{"/login", "API Key"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := authedGet(router, tc.path)
			if rec.Code != http.StatusOK {
				t.Fatalf("got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.want) {
				t.Fatalf("body missing %q", tc.want)
			}
		})
	}
}

func TestPlaceTradeForm_ValidationErrorRedirectsBack(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	form := url.Values{
		"symbol":     {"BTCUSDT"},
		"side":       {"BUY"},
		"orderType":  {"MARKET"},
		"size":       {"1000"},
		"entryPrice": {"50000"},
		"leverage":   {"200"}, // 超出 1-125
		"stopLoss":   {"48000"},
		"takeProfit": {"55000"},
		"userId":     {"user123"},
	}
	rec := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodPost, "/trade", strings.NewReader(form.Encode())), "k")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if !strings.HasPrefix(loc, "/trade?error=") {
		t.Fatalf("redirected to %q", loc)
	}
	if !strings.Contains(loc, "leverage") {
		t.Fatalf("error should name the failing field: %q", loc)
	}
}

func TestPlaceTradeForm_SuccessRedirectsToPositions(t *testing.T) {
	api := fakeTradingAPI(t, nil)
	defer api.Close()
	router := newTestServer(api.URL).Router()

	form := url.Values{
		"symbol":     {"BTCUSDT"},
		"side":       {"BUY"},
		"orderType":  {"MARKET"},
		"size":       {"1000"},
		"entryPrice": {"50000"},
		"leverage":   {"50"},
		"stopLoss":   {"48000"},
		"takeProfit": {"55000"},
		"userId":     {"user123"},
	}
	rec := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodPost, "/trade", strings.NewReader(form.Encode())), "k")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("got %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/positions" {
		t.Fatalf("redirected to %q", loc)
	}
}
