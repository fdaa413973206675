package usecase

import (
	"math"
	"time"

	"exchange_backend/internal/feature/market/domain/entity"
)

// GeneratePriceHistory はキャラクターの初期価格履歴を生成します。
//
// 生成されるポイントは正確に days 件で、日付は1日ずつ増加し、最後の点が today になります。
// 各ステップでは直前の値に (uniform(-1,1) * volatility / damping) の乗数変動を与え、
// minPrice で下限を切り、整数に丸めます。最後の点は basePrice の丸め値に固定されます。
func GeneratePriceHistory(r Random, basePrice, volatility float64, days int, today time.Time, cfg Config) []entity.PricePoint {
	if days <= 0 {
		return []entity.PricePoint{}
	}
	damping := cfg.HistoryDamping
	if damping <= 0 {
		damping = DefaultHistoryDamping
	}
	minPrice := float64(cfg.MinPrice)

	points := make([]entity.PricePoint, days)
	running := basePrice
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, -(days - 1 - i))
		if i > 0 {
			running *= 1 + uniform(r)*volatility/damping
		}
		running = math.Round(math.Max(minPrice, running))
		points[i] = entity.PricePoint{Date: entity.Today(date), Price: int64(running)}
	}

	// 最終点は表示価格と一致させる
	points[days-1].Price = int64(math.Round(math.Max(minPrice, basePrice)))
	return points
}
