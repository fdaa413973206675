package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"exchange_backend/internal/feature/portfolio/domain"
	"exchange_backend/internal/feature/portfolio/domain/entity"
	"exchange_backend/internal/feature/portfolio/transport/handler"
	"exchange_backend/internal/feature/portfolio/usecase"
)

// mockLedger はLedgerUsecaseインターフェースのモック実装です。
type mockLedger struct {
	BuyFunc       func(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error)
	SellFunc      func(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error)
	PositionsFunc func() []entity.Position
	ValuateFunc   func() entity.Valuation
}

func (m *mockLedger) Buy(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error) {
	return m.BuyFunc(ctx, id, quantity)
}

func (m *mockLedger) Sell(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error) {
	return m.SellFunc(ctx, id, quantity)
}

func (m *mockLedger) Positions() []entity.Position { return m.PositionsFunc() }

func (m *mockLedger) Valuate() entity.Valuation { return m.ValuateFunc() }

type readiness bool

func (r readiness) Loaded() bool { return bool(r) }

func newRouter(ledger handler.LedgerUsecase, loaded bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewPortfolioHandler(ledger, readiness(loaded))
	r := gin.New()
	r.GET("/portfolio", h.GetPortfolio)
	r.POST("/portfolio/buy", h.Buy)
	r.POST("/portfolio/sell", h.Sell)
	return r
}

func TestPortfolioHandler_GetPortfolio(t *testing.T) {
	ledger := &mockLedger{
		PositionsFunc: func() []entity.Position {
			return []entity.Position{{
				Holding: entity.Holding{EntityID: 1, Shares: 3},
				Name:    "Monkey D. Luffy", Symbol: "LUFFY", Faction: "Straw Hat Pirates",
				Price: 9850, ChangePercent: 2.4, Volume: 1200, Value: 29550,
			}}
		},
		ValuateFunc: func() entity.Valuation {
			return entity.Valuation{
				TotalValue: 29550, DailyChangePercent: 2.4000000001, HoldingCount: 1,
				HighestValueName: "Monkey", BestPerformerName: "Monkey", BestPerformerChange: 2.4,
			}
		},
	}

	w := httptest.NewRecorder()
	newRouter(ledger, true).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{
		"holdings":[{"id":1,"name":"Monkey D. Luffy","symbol":"LUFFY","faction":"Straw Hat Pirates",
			"shares":3,"price":9850,"change":2.4,"volume":1200,"value":29550}],
		"summary":{"totalValue":29550,"dailyChange":2.4,"holdingCount":1,"highestValue":"Monkey",
			"bestPerformer":"Monkey","bestPerformerChange":2.4}
	}`, w.Body.String())
}

func TestPortfolioHandler_GetPortfolio_NotLoaded(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&mockLedger{}, false).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/portfolio", nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"error":"market data is not loaded"}`, w.Body.String())
}

// TestPortfolioHandler_Trade は売買エンドポイントの入力検証とエラー変換を検証します。
func TestPortfolioHandler_Trade(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		result         usecase.TradeResult
		err            error
		expectCall     bool
		expectedID     uint
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "success: buy",
			path:           "/portfolio/buy",
			body:           `{"id":1,"quantity":3}`,
			result:         usecase.TradeResult{Message: "Bought 3 share(s) of Monkey D. Luffy!", Holding: entity.Holding{EntityID: 1, Shares: 3}},
			expectCall:     true,
			expectedID:     1,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Bought 3 share(s) of Monkey D. Luffy!","holding":{"id":1,"shares":3}}`,
		},
		{
			name:           "success: numeric string id is normalized",
			path:           "/portfolio/buy",
			body:           `{"id":"5","quantity":2}`,
			result:         usecase.TradeResult{Message: "Bought 2 share(s) of Usopp!", Holding: entity.Holding{EntityID: 5, Shares: 2}},
			expectCall:     true,
			expectedID:     5,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Bought 2 share(s) of Usopp!","holding":{"id":5,"shares":2}}`,
		},
		{
			name:           "success: sell with persistence warning",
			path:           "/portfolio/sell",
			body:           `{"id":1,"quantity":1}`,
			result:         usecase.TradeResult{Message: "Sold 1 share(s) of Monkey D. Luffy!", Warning: domain.ErrPersistenceWrite.Error(), Holding: entity.Holding{EntityID: 1, Shares: 2}},
			expectCall:     true,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"message":"Sold 1 share(s) of Monkey D. Luffy!","warning":"could not save portfolio state","holding":{"id":1,"shares":2}}`,
		},
		{
			name:           "error: missing quantity",
			path:           "/portfolio/buy",
			body:           `{"id":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"quantity must be a positive integer"}`,
		},
		{
			name:           "error: fractional quantity",
			path:           "/portfolio/buy",
			body:           `{"id":1,"quantity":1.5}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"quantity must be a positive integer"}`,
		},
		{
			name:           "error: zero quantity",
			path:           "/portfolio/sell",
			body:           `{"id":1,"quantity":0}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"quantity must be a positive integer"}`,
		},
		{
			name:           "error: malformed body",
			path:           "/portfolio/buy",
			body:           `{"id":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "error: missing id",
			path:           "/portfolio/buy",
			body:           `{"quantity":1}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"invalid request"}`,
		},
		{
			name:           "error: zero id is an unknown entity",
			path:           "/portfolio/buy",
			body:           `{"id":0,"quantity":1}`,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"character not found: invalid id 0"}`,
		},
		{
			name:           "error: negative id is an unknown entity",
			path:           "/portfolio/sell",
			body:           `{"id":-3,"quantity":1}`,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"character not found: invalid id -3"}`,
		},
		{
			name:           "error: non numeric string id is an unknown entity",
			path:           "/portfolio/buy",
			body:           `{"id":"zoro","quantity":1}`,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"character not found: invalid id \"zoro\""}`,
		},
		{
			name:           "error: invalid quantity is reported before invalid id",
			path:           "/portfolio/buy",
			body:           `{"id":0,"quantity":0}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"error":"quantity must be a positive integer"}`,
		},
		{
			name:           "error: unknown entity",
			path:           "/portfolio/buy",
			body:           `{"id":404,"quantity":1}`,
			err:            fmt.Errorf("%w: id 404", domain.ErrUnknownEntity),
			expectCall:     true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"character not found: id 404"}`,
		},
		{
			name:           "error: no holding",
			path:           "/portfolio/sell",
			body:           `{"id":2,"quantity":1}`,
			err:            domain.ErrNoHolding,
			expectCall:     true,
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"error":"no shares held for this character"}`,
		},
		{
			name:           "error: insufficient shares",
			path:           "/portfolio/sell",
			body:           `{"id":13,"quantity":3}`,
			err:            domain.ErrInsufficientShares,
			expectCall:     true,
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"error":"not enough shares to sell"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			var gotID uint
			fn := func(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error) {
				called = true
				gotID = id
				return tt.result, tt.err
			}
			router := newRouter(&mockLedger{BuyFunc: fn, SellFunc: fn}, true)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectCall, called)
			if tt.expectedID != 0 {
				assert.Equal(t, tt.expectedID, gotID)
			}
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.JSONEq(t, tt.expectedBody, w.Body.String())
		})
	}
}

func TestPortfolioHandler_Trade_NotLoaded(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/portfolio/buy", strings.NewReader(`{"id":1,"quantity":1}`))
	req.Header.Set("Content-Type", "application/json")
	newRouter(&mockLedger{}, false).ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
