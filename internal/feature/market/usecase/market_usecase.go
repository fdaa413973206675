// Package usecase はマーケットシミュレーションのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"exchange_backend/internal/feature/market/domain"
	"exchange_backend/internal/feature/market/domain/entity"
)

const (
	// EventMarketTick はティック完了時に発行されるイベント種別です。
	EventMarketTick = "market.tick"

	// FactionAll はフィルタなしを表すファクション名です。
	FactionAll = "All"
	// FactionUnknown はファクション未設定のキャラクターに使われる名前です。
	FactionUnknown = "Unknown"

	fallbackVolatility = 0.5
)

// 並び替え順の指定値です。
const (
	SortPriceDesc  = "price-desc"
	SortPriceAsc   = "price-asc"
	SortChangeDesc = "change-desc"
	SortChangeAsc  = "change-asc"
	SortNameAsc    = "name-asc"
	SortNameDesc   = "name-desc"
)

// EntitySource はキャラクターデータの読み込み元を抽象化します。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type EntitySource interface {
	// LoadEntities は取引対象のキャラクター一覧を返します。遅延や失敗があり得ます。
	LoadEntities(ctx context.Context) ([]entity.Character, error)
}

// CharacterRepository はキャラクターを保存・読み込みできる永続化層です。
// シードコマンドとキャッシュデコレータが利用します。
type CharacterRepository interface {
	EntitySource
	// UpsertBatch はキャラクターを一括で作成・更新します。スライスの順序が表示順として保存されます。
	UpsertBatch(ctx context.Context, chars []entity.Character) error
}

// EventPublisher は再描画トリガーを購読者に通知します。
type EventPublisher interface {
	Publish(eventType string, payload any)
}

// Query は一覧取得時のフィルタと並び替え条件です。
type Query struct {
	Faction string // "All" または空の場合はフィルタなし
	Search  string // 名前・シンボル・ファクション・カテゴリの部分一致（大文字小文字を区別しない）
	Sort    string // SortPriceDesc など。未知の値は SortPriceDesc として扱う
}

// Stats はマーケット全体の統計値です。
type Stats struct {
	TotalIndex    int64   // 価格の合計
	AverageChange float64 // 変動率の平均
	Count         int     // 対象キャラクター数
}

// MarketUsecase はライブのキャラクターコレクションを所有し、
// 読み込み・ティック・照会の唯一の入口となります。
type MarketUsecase struct {
	source    EntitySource
	simulator *Simulator
	publisher EventPublisher
	cfg       Config
	rand      Random
	now       func() time.Time

	mu     sync.RWMutex
	chars  []*entity.Character
	byID   map[uint]*entity.Character
	loaded bool
}

// NewMarketUsecase はMarketUsecaseの新しいインスタンスを生成します。
// publisher が nil の場合、イベントは発行されません。
func NewMarketUsecase(source EntitySource, cfg Config, r Random, now func() time.Time, publisher EventPublisher) *MarketUsecase {
	if r == nil {
		r = DefaultRandom()
	}
	if now == nil {
		now = time.Now
	}
	if cfg.MaxHistoryDays <= 0 {
		cfg.MaxHistoryDays = DefaultMaxHistoryDays
	}
	return &MarketUsecase{
		source:    source,
		simulator: NewSimulator(cfg, r, now),
		publisher: publisher,
		cfg:       cfg,
		rand:      r,
		now:       now,
		byID:      map[uint]*entity.Character{},
	}
}

// Load はEntitySourceからキャラクターを読み込み、初期履歴を生成してコレクションを置き換えます。
// 失敗した場合は既存のコレクションを保持したまま ErrEntitySourceLoad をラップして返します。
func (u *MarketUsecase) Load(ctx context.Context) error {
	raw, err := u.source.LoadEntities(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEntitySourceLoad, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: character data is empty", domain.ErrEntitySourceLoad)
	}

	chars := make([]*entity.Character, 0, len(raw))
	byID := make(map[uint]*entity.Character, len(raw))
	today := u.now()
	for i := range raw {
		c := raw[i].Clone()
		if _, dup := byID[c.ID]; dup {
			return fmt.Errorf("%w: duplicate character id %d", domain.ErrEntitySourceLoad, c.ID)
		}
		u.normalize(&c, today)
		chars = append(chars, &c)
		byID[c.ID] = &c
	}

	u.mu.Lock()
	u.chars = chars
	u.byID = byID
	u.loaded = true
	u.mu.Unlock()

	slog.Info("market data loaded", "characters", len(chars))
	return nil
}

// normalize は読み込み直後のキャラクターを不変条件に合わせて補正します。
func (u *MarketUsecase) normalize(c *entity.Character, today time.Time) {
	if !validNumber(c.Volatility) || c.Volatility <= 0 || c.Volatility > 1 {
		slog.Warn("invalid volatility, using fallback", "id", c.ID, "volatility", c.Volatility)
		c.Volatility = fallbackVolatility
	}
	if c.Price < u.cfg.MinPrice {
		c.Price = u.cfg.MinPrice
	}
	if len(c.History) == 0 {
		c.History = GeneratePriceHistory(u.rand, float64(c.Price), c.Volatility, u.cfg.MaxHistoryDays, today, u.cfg)
	} else if len(c.History) > u.cfg.MaxHistoryDays {
		c.History = c.History[len(c.History)-u.cfg.MaxHistoryDays:]
	}
}

// Loaded はコレクションが読み込み済みかどうかを返します。
func (u *MarketUsecase) Loaded() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.loaded
}

// Tick は全キャラクターを1ステップ進め、再描画イベントを発行します。
// 未読み込みの場合は何もしません。
func (u *MarketUsecase) Tick() {
	u.mu.Lock()
	if !u.loaded {
		u.mu.Unlock()
		return
	}
	u.simulator.Tick(u.chars)
	u.mu.Unlock()

	if u.publisher != nil {
		u.publisher.Publish(EventMarketTick, nil)
	}
}

// Name はスケジューラに登録するジョブ名を返します。
func (u *MarketUsecase) Name() string { return "market-tick" }

// Run はスケジューラから呼び出され、Tick を実行します。
func (u *MarketUsecase) Run() error {
	if !u.Loaded() {
		return domain.ErrMarketNotLoaded
	}
	u.Tick()
	return nil
}

// Lookup は指定IDのキャラクターのスナップショットを返します。
func (u *MarketUsecase) Lookup(id uint) (entity.Character, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	c, ok := u.byID[id]
	if !ok {
		return entity.Character{}, false
	}
	return c.Clone(), true
}

// Get は指定IDのキャラクターを返します。
func (u *MarketUsecase) Get(ctx context.Context, id uint) (entity.Character, error) {
	if !u.Loaded() {
		return entity.Character{}, domain.ErrMarketNotLoaded
	}
	c, ok := u.Lookup(id)
	if !ok {
		return entity.Character{}, domain.ErrCharacterNotFound
	}
	return c, nil
}

// History は指定IDのキャラクターの価格履歴を古い順に返します。
func (u *MarketUsecase) History(ctx context.Context, id uint) ([]entity.PricePoint, error) {
	c, err := u.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return c.History, nil
}

// List はフィルタと並び替えを適用したキャラクター一覧を返します。
func (u *MarketUsecase) List(ctx context.Context, q Query) ([]entity.Character, error) {
	u.mu.RLock()
	if !u.loaded {
		u.mu.RUnlock()
		return nil, domain.ErrMarketNotLoaded
	}
	out := make([]entity.Character, 0, len(u.chars))
	for _, c := range u.chars {
		if matches(c, q) {
			out = append(out, c.Clone())
		}
	}
	u.mu.RUnlock()

	sortCharacters(out, q.Sort)
	return out, nil
}

// Factions は "All" に続けて、データセット順の重複なしファクション一覧を返します。
func (u *MarketUsecase) Factions(ctx context.Context) ([]string, error) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	if !u.loaded {
		return nil, domain.ErrMarketNotLoaded
	}
	seen := map[string]struct{}{}
	out := []string{FactionAll}
	for _, c := range u.chars {
		f := factionOf(c)
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out, nil
}

// Stats はフィルタ後の一覧に対するマーケット統計を返します。
func (u *MarketUsecase) Stats(ctx context.Context, q Query) (Stats, error) {
	chars, err := u.List(ctx, q)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(chars), nil
}

// ComputeStats は価格合計・平均変動率・件数を計算します。
func ComputeStats(chars []entity.Character) Stats {
	var st Stats
	var sumChange float64
	for _, c := range chars {
		st.TotalIndex += c.Price
		sumChange += c.ChangePercent
	}
	st.Count = len(chars)
	if st.Count > 0 {
		st.AverageChange = sumChange / float64(st.Count)
	}
	return st
}

func factionOf(c *entity.Character) string {
	if c.Faction == "" {
		return FactionUnknown
	}
	return c.Faction
}

func matches(c *entity.Character, q Query) bool {
	if q.Faction != "" && q.Faction != FactionAll && factionOf(c) != q.Faction {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{c.Name, c.Symbol, c.Faction, c.Category} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// sortCharacters は指定順で並び替えます。同値の場合は名前の昇順で比較します。
func sortCharacters(chars []entity.Character, order string) {
	byName := func(a, b entity.Character) bool { return a.Name < b.Name }
	var less func(a, b entity.Character) bool
	switch order {
	case SortPriceAsc:
		less = func(a, b entity.Character) bool {
			if a.Price != b.Price {
				return a.Price < b.Price
			}
			return byName(a, b)
		}
	case SortChangeDesc:
		less = func(a, b entity.Character) bool {
			if a.ChangePercent != b.ChangePercent {
				return a.ChangePercent > b.ChangePercent
			}
			return byName(a, b)
		}
	case SortChangeAsc:
		less = func(a, b entity.Character) bool {
			if a.ChangePercent != b.ChangePercent {
				return a.ChangePercent < b.ChangePercent
			}
			return byName(a, b)
		}
	case SortNameAsc:
		less = byName
	case SortNameDesc:
		less = func(a, b entity.Character) bool { return a.Name > b.Name }
	default:
		less = func(a, b entity.Character) bool {
			if a.Price != b.Price {
				return a.Price > b.Price
			}
			return byName(a, b)
		}
	}
	sort.SliceStable(chars, func(i, j int) bool { return less(chars[i], chars[j]) })
}
