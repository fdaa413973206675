// Package usecase はポートフォリオ台帳のビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"sync"

	marketentity "exchange_backend/internal/feature/market/domain/entity"
	"exchange_backend/internal/feature/portfolio/domain"
	"exchange_backend/internal/feature/portfolio/domain/entity"
)

const (
	// EventPortfolioChanged は売買成功時に発行されるイベント種別です。
	EventPortfolioChanged = "portfolio.changed"

	// notAvailable は保有がない場合の表示名です。
	notAvailable = "N/A"

	// MaxShares は1銘柄あたりの保有株数の上限です。price*shares が float64 で正確に表現できる範囲に収めます。
	MaxShares int64 = 1_000_000_000_000
)

// PortfolioStore はポートフォリオの永続化層（キーバリューストア）を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type PortfolioStore interface {
	// ReadPortfolio は保存済みのJSONを返します。未保存の場合は domain.ErrPortfolioNotFound を返します。
	ReadPortfolio(ctx context.Context) ([]byte, error)
	// WritePortfolio はJSON全体を上書き保存します。
	WritePortfolio(ctx context.Context, data []byte) error
}

// PriceLookup は現在のキャラクター情報を参照します。
type PriceLookup interface {
	Lookup(id uint) (marketentity.Character, bool)
}

// EventPublisher は再描画トリガーを購読者に通知します。
type EventPublisher interface {
	Publish(eventType string, payload any)
}

// TradeResult は売買成功時の結果です。
type TradeResult struct {
	Message string         // ユーザー向けの成功メッセージ
	Warning string         // 保存失敗時の警告（空なら正常）
	Holding entity.Holding // 操作後の保有（売却で0になった場合は Shares=0）
}

// Ledger は保有一覧を所有し、検証付きの売買・評価・永続化を行います。
type Ledger struct {
	store     PortfolioStore
	prices    PriceLookup
	publisher EventPublisher

	mu       sync.Mutex
	holdings []entity.Holding
}

// NewLedger は空の台帳を生成します。保存済みの状態は Load で読み込みます。
func NewLedger(store PortfolioStore, prices PriceLookup, publisher EventPublisher) *Ledger {
	return &Ledger{
		store:     store,
		prices:    prices,
		publisher: publisher,
		holdings:  []entity.Holding{},
	}
}

// ParseQuantity はリクエストの数量を検証し、正の整数に変換します。
func ParseQuantity(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 1 || v != math.Trunc(v) || v > float64(MaxShares) {
		return 0, domain.ErrInvalidQuantity
	}
	return int64(v), nil
}

// Load は永続化層から台帳を復元します。
//
// 保存データがない場合は空の台帳になります。データ全体が読み取れない場合は空の台帳に戻し、
// ErrPersistenceRead をラップして返します（呼び出し側は警告として扱います）。
// 形式が不正な個々のエントリは警告ログを出して破棄し、クリーンな一覧で上書き保存します。
func (l *Ledger) Load(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.holdings = []entity.Holding{}

	data, err := l.store.ReadPortfolio(ctx)
	if errors.Is(err, domain.ErrPortfolioNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceRead, err)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("invalid portfolio structure in storage, resetting", "error", err)
		if werr := l.saveLocked(ctx); werr != nil {
			slog.Warn("failed to reset portfolio storage", "error", werr)
		}
		return fmt.Errorf("%w: %v", domain.ErrPersistenceRead, err)
	}

	dropped := 0
	seen := map[uint]struct{}{}
	for i, raw := range items {
		h, err := decodeHolding(raw)
		if err == nil {
			if _, dup := seen[h.EntityID]; dup {
				err = fmt.Errorf("duplicate id %d", h.EntityID)
			}
		}
		if err != nil {
			slog.Warn("dropping malformed portfolio entry", "index", i, "error", err)
			dropped++
			continue
		}
		seen[h.EntityID] = struct{}{}
		l.holdings = append(l.holdings, h)
	}

	if dropped > 0 {
		if err := l.saveLocked(ctx); err != nil {
			slog.Warn("failed to overwrite corrupt portfolio", "error", err)
		}
	}
	slog.Info("portfolio loaded", "holdings", len(l.holdings), "dropped", dropped)
	return nil
}

// decodeHolding は1件分の保存エントリを検証します。
// id は数値または数値文字列、shares は正の整数である必要があります。
func decodeHolding(raw json.RawMessage) (entity.Holding, error) {
	var rec struct {
		ID     json.RawMessage `json:"id"`
		Shares json.RawMessage `json:"shares"`
	}
	if err := json.Unmarshal(raw, &rec); err != nil {
		return entity.Holding{}, err
	}
	id, err := NormalizeID(rec.ID)
	if err != nil {
		return entity.Holding{}, err
	}

	var shares float64
	if len(rec.Shares) == 0 || json.Unmarshal(rec.Shares, &shares) != nil {
		return entity.Holding{}, fmt.Errorf("shares is not a number: %s", string(rec.Shares))
	}
	n, err := ParseQuantity(shares)
	if err != nil {
		return entity.Holding{}, fmt.Errorf("shares must be a positive integer: %v", shares)
	}
	return entity.Holding{EntityID: id, Shares: n}, nil
}

// NormalizeID は数値・数値文字列のIDを uint に正規化します。0以下や整数でない値はエラーです。
func NormalizeID(raw json.RawMessage) (uint, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, errors.New("id is missing")
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil || v == 0 {
			return 0, fmt.Errorf("invalid id %q", s)
		}
		return uint(v), nil
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || f < 1 || f != math.Trunc(f) {
		return 0, fmt.Errorf("invalid id %s", string(raw))
	}
	return uint(f), nil
}

// Buy は指定キャラクターの株式を quantity 株購入します。
func (l *Ledger) Buy(ctx context.Context, id uint, quantity int64) (TradeResult, error) {
	if quantity < 1 || quantity > MaxShares {
		return TradeResult{}, domain.ErrInvalidQuantity
	}
	c, ok := l.prices.Lookup(id)
	if !ok {
		return TradeResult{}, fmt.Errorf("%w: id %d", domain.ErrUnknownEntity, id)
	}

	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx >= 0 && l.holdings[idx].Shares > MaxShares-quantity {
		have := l.holdings[idx].Shares
		l.mu.Unlock()
		return TradeResult{}, fmt.Errorf("%w: holding would exceed %d shares (you have %d)", domain.ErrInvalidQuantity, MaxShares, have)
	}
	if idx >= 0 {
		l.holdings[idx].Shares += quantity
	} else {
		l.holdings = append(l.holdings, entity.Holding{EntityID: id, Shares: quantity})
		idx = len(l.holdings) - 1
	}
	res := TradeResult{
		Message: fmt.Sprintf("Bought %d share(s) of %s!", quantity, c.Name),
		Holding: l.holdings[idx],
	}
	res.Warning = l.persistLocked(ctx)
	l.mu.Unlock()

	l.publish()
	return res, nil
}

// Sell は指定キャラクターの株式を quantity 株売却します。保有が0になった場合は削除します。
func (l *Ledger) Sell(ctx context.Context, id uint, quantity int64) (TradeResult, error) {
	if quantity < 1 {
		return TradeResult{}, domain.ErrInvalidQuantity
	}
	c, ok := l.prices.Lookup(id)
	if !ok {
		return TradeResult{}, fmt.Errorf("%w: id %d", domain.ErrUnknownEntity, id)
	}

	l.mu.Lock()
	idx := l.indexLocked(id)
	if idx < 0 {
		l.mu.Unlock()
		return TradeResult{}, fmt.Errorf("%w: you don't own any shares of %s", domain.ErrNoHolding, c.Name)
	}
	if l.holdings[idx].Shares < quantity {
		have := l.holdings[idx].Shares
		l.mu.Unlock()
		return TradeResult{}, fmt.Errorf("%w: you have %d share(s) of %s", domain.ErrInsufficientShares, have, c.Name)
	}

	l.holdings[idx].Shares -= quantity
	after := l.holdings[idx]
	if after.Shares <= 0 {
		l.holdings = append(l.holdings[:idx], l.holdings[idx+1:]...)
	}
	res := TradeResult{
		Message: fmt.Sprintf("Sold %d share(s) of %s!", quantity, c.Name),
		Holding: after,
	}
	res.Warning = l.persistLocked(ctx)
	l.mu.Unlock()

	l.publish()
	return res, nil
}

// Holdings は保有一覧のコピーを台帳の順序で返します。
func (l *Ledger) Holdings() []entity.Holding {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]entity.Holding, len(l.holdings))
	copy(out, l.holdings)
	return out
}

// Positions は保有一覧を現在価格と結合して返します。キャラクターが見つからない保有は除外します。
func (l *Ledger) Positions() []entity.Position {
	return l.positionsOf(l.Holdings())
}

func (l *Ledger) positionsOf(holdings []entity.Holding) []entity.Position {
	out := make([]entity.Position, 0, len(holdings))
	for _, h := range holdings {
		c, ok := l.prices.Lookup(h.EntityID)
		if !ok {
			slog.Warn("character for holding not found", "id", h.EntityID)
			continue
		}
		out = append(out, entity.Position{
			Holding:       h,
			Name:          c.Name,
			Symbol:        c.Symbol,
			Faction:       c.Faction,
			Icon:          c.Icon,
			Volume:        c.Volume,
			Price:         c.Price,
			ChangePercent: c.ChangePercent,
			Value:         float64(c.Price) * float64(h.Shares),
		})
	}
	return out
}

// Valuate は現在価格での評価額と統計を返します。
//
// 各保有の前回ティックからの変動額は ChangePercent から逆算します:
// changeAmount = price - price/(1+changePercent/100)。
// 最大ポジションと最高パフォーマーは、同値の場合に台帳の順序で先に現れたものを採用します。
func (l *Ledger) Valuate() entity.Valuation {
	v := entity.Valuation{
		HighestValueName:  notAvailable,
		BestPerformerName: notAvailable,
	}

	var totalChange float64
	highest := 0.0
	best := math.Inf(-1)
	holdings := l.Holdings()
	positions := l.positionsOf(holdings)
	for _, p := range positions {
		price := float64(p.Price)
		changeAmount := 0.0
		if base := 1 + p.ChangePercent/100; base != 0 {
			changeAmount = price - price/base
		}

		v.TotalValue += p.Value
		totalChange += changeAmount * float64(p.Shares)

		display := displayName(p.Name)
		if p.Value > highest {
			highest = p.Value
			v.HighestValueName = display
		}
		if p.ChangePercent > best {
			best = p.ChangePercent
			v.BestPerformerName = display
			v.BestPerformerChange = p.ChangePercent
		}
	}

	v.HoldingCount = len(holdings)
	if initial := v.TotalValue - totalChange; initial > 0 {
		v.DailyChangePercent = totalChange / initial * 100
	}
	return v
}

// Snapshot は台帳を保存形式（JSON配列）にシリアライズします。
func (l *Ledger) Snapshot() ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return json.Marshal(l.holdings)
}

func (l *Ledger) indexLocked(id uint) int {
	for i, h := range l.holdings {
		if h.EntityID == id {
			return i
		}
	}
	return -1
}

// persistLocked は台帳を保存し、失敗した場合は警告メッセージを返します。
// メモリ上の状態はロールバックしません。
func (l *Ledger) persistLocked(ctx context.Context) string {
	if err := l.saveLocked(ctx); err != nil {
		slog.Warn("failed to save portfolio", "error", err)
		return domain.ErrPersistenceWrite.Error()
	}
	return ""
}

func (l *Ledger) saveLocked(ctx context.Context) error {
	data, err := json.Marshal(l.holdings)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceWrite, err)
	}
	if err := l.store.WritePortfolio(ctx, data); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceWrite, err)
	}
	return nil
}

func (l *Ledger) publish() {
	if l.publisher != nil {
		l.publisher.Publish(EventPortfolioChanged, nil)
	}
}

func displayName(name string) string {
	c := marketentity.Character{Name: name}
	return c.DisplayName()
}
