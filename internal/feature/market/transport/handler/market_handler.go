// Package handler はmarketフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"exchange_backend/internal/feature/market/domain"
	"exchange_backend/internal/feature/market/domain/entity"
	"exchange_backend/internal/feature/market/transport/http/dto"
	"exchange_backend/internal/feature/market/usecase"
)

// MarketUsecase はマーケット照会・再読み込みのユースケースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type MarketUsecase interface {
	List(ctx context.Context, q usecase.Query) ([]entity.Character, error)
	Get(ctx context.Context, id uint) (entity.Character, error)
	History(ctx context.Context, id uint) ([]entity.PricePoint, error)
	Factions(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, q usecase.Query) (usecase.Stats, error)
	Load(ctx context.Context) error
}

// MarketHandler はマーケットのHTTPリクエストを処理します。
type MarketHandler struct {
	uc MarketUsecase
}

// NewMarketHandler はMarketHandlerの新しいインスタンスを生成します。
func NewMarketHandler(uc MarketUsecase) *MarketHandler {
	return &MarketHandler{uc: uc}
}

// ListCharacters はフィルタ・検索・並び替えを適用したキャラクター一覧を返します。
//
// エンドポイント例:
// GET /characters?faction=Straw%20Hat%20Pirates&q=zoro&sort=change-desc
func (h *MarketHandler) ListCharacters(c *gin.Context) {
	chars, err := h.uc.List(c.Request.Context(), queryFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]dto.CharacterResponse, 0, len(chars))
	for i := range chars {
		out = append(out, toResponse(&chars[i], false))
	}
	c.JSON(http.StatusOK, out)
}

// GetCharacter は指定IDのキャラクターを価格履歴付きで返します。
//
// エンドポイント例:
// GET /characters/1
func (h *MarketHandler) GetCharacter(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	ch, err := h.uc.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(&ch, true))
}

// GetHistory は指定IDのキャラクターの価格履歴を古い順に返します。
//
// エンドポイント例:
// GET /characters/1/history
func (h *MarketHandler) GetHistory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	history, err := h.uc.History(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toHistory(history))
}

// ListFactions は "All" に続くファクション一覧を返します。
func (h *MarketHandler) ListFactions(c *gin.Context) {
	factions, err := h.uc.Factions(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, factions)
}

// GetStats はフィルタ後の一覧に対するマーケット統計を返します。
func (h *MarketHandler) GetStats(c *gin.Context) {
	st, err := h.uc.Stats(c.Request.Context(), queryFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalIndex:    st.TotalIndex,
		AverageChange: usecase.Round1(st.AverageChange),
		Count:         st.Count,
	})
}

// Reload はキャラクターデータを再読み込みします。読み込み失敗時の手動リトライに使います。
func (h *MarketHandler) Reload(c *gin.Context) {
	if err := h.uc.Load(c.Request.Context()); err != nil {
		slog.Error("market reload failed", "error", err, "remote_addr", c.ClientIP())
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "market data loaded"})
}

func queryFrom(c *gin.Context) usecase.Query {
	return usecase.Query{
		Faction: c.Query("faction"),
		Search:  c.Query("q"),
		Sort:    c.DefaultQuery("sort", usecase.SortPriceDesc),
	}
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid character id"})
		return 0, false
	}
	return uint(id), true
}

// writeError はドメインエラーをHTTPステータスに変換して返します。
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrMarketNotLoaded):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrCharacterNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrEntitySourceLoad):
		c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	default:
		slog.Error("market request failed", "error", err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}

func toResponse(ch *entity.Character, withHistory bool) dto.CharacterResponse {
	r := dto.CharacterResponse{
		ID:            ch.ID,
		Name:          ch.Name,
		Symbol:        ch.Symbol,
		Category:      ch.Category,
		Faction:       ch.Faction,
		Power:         ch.Power,
		Description:   ch.Description,
		Icon:          ch.Icon,
		GlowTag:       ch.GlowTag,
		Price:         ch.Price,
		ChangePercent: ch.ChangePercent,
		Volatility:    ch.Volatility,
		Volume:        ch.Volume,
		Bounty:        ch.Bounty,
	}
	if withHistory {
		r.History = toHistory(ch.History)
	}
	return r
}

func toHistory(points []entity.PricePoint) []dto.PricePointResponse {
	out := make([]dto.PricePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, dto.PricePointResponse{Date: p.Date, Price: p.Price})
	}
	return out
}
