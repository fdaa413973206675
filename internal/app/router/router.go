package router

import (
	"github.com/gin-gonic/gin"

	markethandler "exchange_backend/internal/feature/market/transport/handler"
	portfoliohandler "exchange_backend/internal/feature/portfolio/transport/handler"
	"exchange_backend/internal/platform/http/handler"
	"exchange_backend/internal/platform/realtime"
	"exchange_backend/internal/shared/ratelimiter"
)

func NewRouter(ready handler.ReadyFunc, market *markethandler.MarketHandler,
	portfolio *portfoliohandler.PortfolioHandler, hub *realtime.Hub, tradeLimit *ratelimiter.RateLimiter) *gin.Engine {
	r := gin.Default()

	// 導通確認用
	health := handler.Health(ready)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)

	// マーケット
	r.GET("/characters", market.ListCharacters)
	r.GET("/characters/:id", market.GetCharacter)
	r.GET("/characters/:id/history", market.GetHistory)
	r.GET("/factions", market.ListFactions)
	r.GET("/market/stats", market.GetStats)
	// 読み込み失敗時の手動リトライ
	r.POST("/market/reload", market.Reload)

	// ポートフォリオ
	r.GET("/portfolio", portfolio.GetPortfolio)
	trade := r.Group("/portfolio")
	// 売買リクエストの頻度制限
	trade.Use(ratelimiter.Middleware(tradeLimit))
	{
		trade.POST("/buy", portfolio.Buy)
		trade.POST("/sell", portfolio.Sell)
	}

	// 再描画トリガー（market.tick / portfolio.changed）
	r.GET("/ws", hub.ServeWS)

	return r
}
