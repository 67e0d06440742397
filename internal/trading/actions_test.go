package trading

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/betbot/ctdash/internal/apiclient"
	"github.com/betbot/ctdash/pkg/cache"
)

// fakeAPI 模拟远程交易 API，按路径计数
type fakeAPI struct {
	mu        sync.Mutex
	hits      map[string]int
	lastTrade TradeInput
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{hits: map[string]int{}}
}

func (f *fakeAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.hits[r.URL.Path]++
		f.mu.Unlock()

		switch r.URL.Path {
		case "/api/exchange/info":
			w.Write([]byte(`{"data":{"symbols":[{"symbol":"BTCUSDT","stepSize":0.001,"tickSize":0.1,"maxLeverage":125}]}}`))
		case "/api/trade":
			json.NewDecoder(r.Body).Decode(&f.lastTrade)
			w.Write([]byte(`{"success":true,"data":{"tradeId":"t-1"}}`))
		default:
			w.Write([]byte(`{"success":true}`))
		}
	}
}

func (f *fakeAPI) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func newActionsFixture(t *testing.T) (*Actions, *apiclient.Client, *fakeAPI, func()) {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	client := apiclient.New(srv.URL, cache.New())
	return NewActions(client), client, api, srv.Close
}

func TestPlaceTrade_InvalidLeverageNeverHitsNetwork(t *testing.T) {
	actions, _, api, closeFn := newActionsFixture(t)
	defer closeFn()

	in := validInput()
	in.Leverage = 200

	_, err := actions.PlaceTrade(context.Background(), in)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := api.count("/api/trade"); got != 0 {
		t.Fatalf("trade endpoint must not be called, got %d hits", got)
	}
	if got := api.count("/api/exchange/info"); got != 0 {
		t.Fatalf("no network call allowed before validation, got %d hits", got)
	}
}

func TestPlaceTrade_ValidInputReachesNetwork(t *testing.T) {
	actions, _, api, closeFn := newActionsFixture(t)
	defer closeFn()

	in := validInput()
	in.EntryPrice = 50000.06 // tickSize 0.1 对齐后应为 50000.1
	in.Size = 1000.0004

	res, err := actions.PlaceTrade(context.Background(), in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.count("/api/trade"); got != 1 {
		t.Fatalf("expected 1 trade call, got %d", got)
	}
	if res.RedirectTo != "/positions" {
		t.Fatalf("unexpected redirect: %s", res.RedirectTo)
	}
	if api.lastTrade.EntryPrice != 50000.1 {
		t.Fatalf("entry price not rounded to tick: %v", api.lastTrade.EntryPrice)
	}
	if api.lastTrade.Size != 1000.0 {
		t.Fatalf("size not rounded to step: %v", api.lastTrade.Size)
	}
}

func TestPlaceTrade_InvalidatesStaleTags(t *testing.T) {
	actions, client, api, closeFn := newActionsFixture(t)
	defer closeFn()
	ctx := context.Background()

	// 预热余额缓存
	if _, err := client.FetchBalance(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := client.FetchBalance(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.count("/api/balance"); got != 1 {
		t.Fatalf("balance should be cached, got %d hits", got)
	}

	if _, err := actions.PlaceTrade(ctx, validInput()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 下单后余额缓存必须失效
	if _, err := client.FetchBalance(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.count("/api/balance"); got != 2 {
		t.Fatalf("balance cache not invalidated, got %d hits", got)
	}
}

func TestClosePosition(t *testing.T) {
	actions, _, api, closeFn := newActionsFixture(t)
	defer closeFn()

	t.Run("requires symbol", func(t *testing.T) {
		_, err := actions.ClosePosition(context.Background(), ClosePositionInput{})
		if err == nil {
			t.Fatal("expected validation error")
		}
		if got := api.count("/api/position/close"); got != 0 {
			t.Fatalf("close endpoint must not be called, got %d", got)
		}
	})

	t.Run("forwards and redirects", func(t *testing.T) {
		res, err := actions.ClosePosition(context.Background(), ClosePositionInput{Symbol: "BTCUSDT", TradeID: "t-1"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := api.count("/api/position/close"); got != 1 {
			t.Fatalf("expected 1 close call, got %d", got)
		}
		if res.RedirectTo != "/positions" {
			t.Fatalf("unexpected redirect: %s", res.RedirectTo)
		}
	})
}

func TestCancelOrders(t *testing.T) {
	actions, _, api, closeFn := newActionsFixture(t)
	defer closeFn()

	res, err := actions.CancelOrders(context.Background(), CancelOrdersInput{Symbol: "BTCUSDT"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := api.count("/api/orders/cancel"); got != 1 {
		t.Fatalf("expected 1 cancel call, got %d", got)
	}
	if res.RedirectTo != "/orders" {
		t.Fatalf("unexpected redirect: %s", res.RedirectTo)
	}
}
