package usecase

import (
	"math"
	"time"

	"github.com/shopspring/decimal"

	"exchange_backend/internal/feature/market/domain/entity"
)

// Simulator は全キャラクターの価格を1ティック分進めます。
// スケジューリングは持たず、呼び出し側（タイマーやテスト）が Tick を呼び出します。
type Simulator struct {
	cfg  Config
	rand Random
	now  func() time.Time
}

// NewSimulator は新しいSimulatorを生成します。
// r や now が nil の場合はデフォルトの乱数源と time.Now を使用します。
func NewSimulator(cfg Config, r Random, now func() time.Time) *Simulator {
	if r == nil {
		r = DefaultRandom()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.MaxHistoryDays <= 0 {
		cfg.MaxHistoryDays = DefaultMaxHistoryDays
	}
	return &Simulator{cfg: cfg, rand: r, now: now}
}

// Tick は各キャラクターの価格をランダムに1ステップ変動させ、変動率を再計算し、
// 履歴ウィンドウに新しい価格を追加します。ウィンドウが満杯の場合は最も古い点を先に削除します。
func (s *Simulator) Tick(chars []*entity.Character) {
	today := entity.Today(s.now())
	for _, c := range chars {
		s.step(c, today)
	}
}

func (s *Simulator) step(c *entity.Character, today string) {
	// Price は整数型のため検査不要
	if c == nil || !validNumber(c.Volatility) {
		return
	}

	oldPrice := c.Price
	delta := uniform(s.rand) * c.Volatility * s.cfg.Amplification
	raw := float64(oldPrice) * (1 + delta/100)
	newPrice := int64(math.Round(math.Max(float64(s.cfg.MinPrice), raw)))

	c.Price = newPrice
	c.ChangePercent = ChangePercent(oldPrice, newPrice)

	if len(c.History) >= s.cfg.MaxHistoryDays {
		// 上限を超えないよう、追加前に古い点を削除する
		drop := len(c.History) - s.cfg.MaxHistoryDays + 1
		c.History = append(c.History[:0:0], c.History[drop:]...)
	}
	c.History = append(c.History, entity.PricePoint{Date: today, Price: newPrice})
}

// ChangePercent は旧価格から新価格への変動率を小数点以下1桁で返します。
// 旧価格が0の場合は0を返します。
func ChangePercent(oldPrice, newPrice int64) float64 {
	if oldPrice == 0 {
		return 0
	}
	pct := float64(newPrice-oldPrice) / float64(oldPrice) * 100
	return Round1(pct)
}

// Round1 は値を小数点以下1桁に丸めます。
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func validNumber(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
