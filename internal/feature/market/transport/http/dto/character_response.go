// Package dto はmarketフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// PricePointResponse は価格履歴1日分のレスポンスDTOです。
type PricePointResponse struct {
	Date  string `json:"date"`  // 日付（YYYY-MM-DD）
	Price int64  `json:"price"` // 終値
}

// CharacterResponse はキャラクター銘柄のレスポンスDTOです。
// History は詳細取得時のみ含まれます。
type CharacterResponse struct {
	ID            uint                 `json:"id"`
	Name          string               `json:"name"`
	Symbol        string               `json:"symbol"`
	Category      string               `json:"category"`
	Faction       string               `json:"faction"`
	Power         string               `json:"power,omitempty"`
	Description   string               `json:"description,omitempty"`
	Icon          string               `json:"icon,omitempty"`
	GlowTag       string               `json:"glowTag,omitempty"`
	Price         int64                `json:"price"`
	ChangePercent float64              `json:"change"`
	Volatility    float64              `json:"volatility"`
	Volume        int64                `json:"volume"`
	Bounty        *int64               `json:"bounty"` // 不明の場合は null
	History       []PricePointResponse `json:"history,omitempty"`
}

// StatsResponse はマーケット統計のレスポンスDTOです。
type StatsResponse struct {
	TotalIndex    int64   `json:"totalIndex"`    // 価格合計
	AverageChange float64 `json:"averageChange"` // 平均変動率（小数点以下1桁）
	Count         int     `json:"count"`         // 対象件数
}

// ErrorResponse はエラー時のレスポンスDTOです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は処理結果メッセージのレスポンスDTOです。
type MessageResponse struct {
	Message string `json:"message"`
}
