// Package handler はportfolioフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	marketusecase "exchange_backend/internal/feature/market/usecase"
	"exchange_backend/internal/feature/portfolio/domain"
	"exchange_backend/internal/feature/portfolio/domain/entity"
	"exchange_backend/internal/feature/portfolio/transport/http/dto"
	"exchange_backend/internal/feature/portfolio/usecase"
)

// LedgerUsecase はポートフォリオ台帳のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type LedgerUsecase interface {
	Buy(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error)
	Sell(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error)
	Positions() []entity.Position
	Valuate() entity.Valuation
}

// MarketReadiness はマーケットが読み込み済みかを返します。
type MarketReadiness interface {
	Loaded() bool
}

// PortfolioHandler はポートフォリオのHTTPリクエストを処理します。
type PortfolioHandler struct {
	ledger LedgerUsecase
	market MarketReadiness
}

// NewPortfolioHandler はPortfolioHandlerの新しいインスタンスを生成します。
func NewPortfolioHandler(ledger LedgerUsecase, market MarketReadiness) *PortfolioHandler {
	return &PortfolioHandler{ledger: ledger, market: market}
}

// GetPortfolio は保有一覧と評価サマリーを返します。
func (h *PortfolioHandler) GetPortfolio(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	positions := h.ledger.Positions()
	out := dto.PortfolioResponse{Holdings: make([]dto.PositionResponse, 0, len(positions))}
	for _, p := range positions {
		out.Holdings = append(out.Holdings, dto.PositionResponse{
			ID:            p.EntityID,
			Name:          p.Name,
			Symbol:        p.Symbol,
			Faction:       p.Faction,
			Icon:          p.Icon,
			Shares:        p.Shares,
			Price:         p.Price,
			ChangePercent: p.ChangePercent,
			Volume:        p.Volume,
			Value:         p.Value,
		})
	}

	v := h.ledger.Valuate()
	out.Summary = dto.SummaryResponse{
		TotalValue:          v.TotalValue,
		DailyChangePercent:  marketusecase.Round1(v.DailyChangePercent),
		HoldingCount:        v.HoldingCount,
		HighestValueName:    v.HighestValueName,
		BestPerformerName:   v.BestPerformerName,
		BestPerformerChange: v.BestPerformerChange,
	}
	c.JSON(http.StatusOK, out)
}

// Buy は株式購入APIエンドポイントを処理します。
// - 数量が正の整数でない場合は400を返却
// - IDが正の整数に解決できない、またはキャラクターが存在しない場合は404を返却
// - 成功時は200を返却（保存失敗時は warning を含む）
func (h *PortfolioHandler) Buy(c *gin.Context) {
	h.trade(c, "buy", h.ledger.Buy)
}

// Sell は株式売却APIエンドポイントを処理します。
// - 保有がない場合は404、保有数を超える場合は409を返却
func (h *PortfolioHandler) Sell(c *gin.Context) {
	h.trade(c, "sell", h.ledger.Sell)
}

type tradeFunc func(ctx context.Context, id uint, quantity int64) (usecase.TradeResult, error)

func (h *PortfolioHandler) trade(c *gin.Context, action string, fn tradeFunc) {
	if !h.ready(c) {
		return
	}
	var req dto.TradeRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ID) == 0 {
		slog.Warn("trade validation failed", "action", action, "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid request"})
		return
	}
	if req.Quantity == nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: domain.ErrInvalidQuantity.Error()})
		return
	}
	qty, err := usecase.ParseQuantity(*req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}
	id, err := usecase.NormalizeID(req.ID)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrUnknownEntity, err)
		slog.Info("trade rejected", "action", action, "id", string(req.ID), "error", err)
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
		return
	}

	res, err := fn(c.Request.Context(), id, qty)
	if err != nil {
		slog.Info("trade rejected", "action", action, "id", id, "quantity", qty, "error", err)
		c.JSON(statusFor(err), dto.ErrorResponse{Error: err.Error()})
		return
	}
	slog.Info("trade executed", "action", action, "id", id, "quantity", qty, "shares", res.Holding.Shares)
	c.JSON(http.StatusOK, dto.TradeResponse{
		Message: res.Message,
		Warning: res.Warning,
		Holding: dto.HoldingResponse{ID: res.Holding.EntityID, Shares: res.Holding.Shares},
	})
}

func (h *PortfolioHandler) ready(c *gin.Context) bool {
	if h.market != nil && !h.market.Loaded() {
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: "market data is not loaded"})
		return false
	}
	return true
}

// statusFor はドメインエラーをHTTPステータスに変換します。
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownEntity), errors.Is(err, domain.ErrNoHolding):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientShares):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
