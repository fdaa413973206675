// Package dto はportfolioフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

import "encoding/json"

// TradeRequest は /portfolio/buy と /portfolio/sell のリクエストボディです。
// ID は数値または数値文字列、Quantity は正の整数である必要があり、検証はハンドラーで行います。
type TradeRequest struct {
	ID       json.RawMessage `json:"id"`
	Quantity *float64        `json:"quantity"`
}

// HoldingResponse は保有1件のレスポンスDTOです。
type HoldingResponse struct {
	ID     uint  `json:"id"`
	Shares int64 `json:"shares"`
}

// TradeResponse は売買成功時のレスポンスDTOです。
type TradeResponse struct {
	Message string          `json:"message"`
	Warning string          `json:"warning,omitempty"` // 保存に失敗した場合のみ
	Holding HoldingResponse `json:"holding"`
}

// PositionResponse は保有と現在価格を結合したレスポンスDTOです。
type PositionResponse struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Faction       string  `json:"faction"`
	Icon          string  `json:"icon,omitempty"`
	Shares        int64   `json:"shares"`
	Price         int64   `json:"price"`
	ChangePercent float64 `json:"change"`
	Volume        int64   `json:"volume"`
	Value         float64 `json:"value"`
}

// SummaryResponse はポートフォリオ評価のレスポンスDTOです。
type SummaryResponse struct {
	TotalValue          float64 `json:"totalValue"`
	DailyChangePercent  float64 `json:"dailyChange"` // 小数点以下1桁
	HoldingCount        int     `json:"holdingCount"`
	HighestValueName    string  `json:"highestValue"`
	BestPerformerName   string  `json:"bestPerformer"`
	BestPerformerChange float64 `json:"bestPerformerChange"`
}

// PortfolioResponse は GET /portfolio のレスポンスDTOです。
type PortfolioResponse struct {
	Holdings []PositionResponse `json:"holdings"`
	Summary  SummaryResponse    `json:"summary"`
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}
