// Package adapters はmarketフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exchange_backend/internal/feature/market/domain/entity"
	"exchange_backend/internal/feature/market/usecase"
)

// characterGorm はキャラクターカタログのgorm実装です。
type characterGorm struct {
	db *gorm.DB
}

var _ usecase.CharacterRepository = (*characterGorm)(nil)

// NewCharacterRepository は指定されたDB接続でcharacterGormリポジトリの新しいインスタンスを生成します。
func NewCharacterRepository(db *gorm.DB) *characterGorm {
	return &characterGorm{db: db}
}

// CharacterModel はcharactersテーブルの行です。価格履歴は保存しません。
type CharacterModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"size:255;not null"`
	Symbol      string `gorm:"size:32;not null;uniqueIndex"`
	Category    string `gorm:"size:100"`
	Faction     string `gorm:"size:100;index"`
	Power       string `gorm:"size:512"`
	Description string `gorm:"size:1024"`
	Icon        string `gorm:"size:32"`
	GlowTag     string `gorm:"size:64"`

	Price         int64   `gorm:"not null"`
	ChangePercent float64 `gorm:"not null;default:0"`
	Volatility    float64 `gorm:"not null"`
	Volume        int64   `gorm:"not null;default:0"`
	Bounty        *int64

	SortKey   int       `gorm:"not null;default:0"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName はテーブル名を返します。
func (CharacterModel) TableName() string {
	return "characters"
}

func toModel(c entity.Character, sortKey int) CharacterModel {
	return CharacterModel{
		ID:            c.ID,
		Name:          c.Name,
		Symbol:        c.Symbol,
		Category:      c.Category,
		Faction:       c.Faction,
		Power:         c.Power,
		Description:   c.Description,
		Icon:          c.Icon,
		GlowTag:       c.GlowTag,
		Price:         c.Price,
		ChangePercent: c.ChangePercent,
		Volatility:    c.Volatility,
		Volume:        c.Volume,
		Bounty:        c.Bounty,
		SortKey:       sortKey,
	}
}

func toEntity(m CharacterModel) entity.Character {
	return entity.Character{
		ID:            m.ID,
		Name:          m.Name,
		Symbol:        m.Symbol,
		Category:      m.Category,
		Faction:       m.Faction,
		Power:         m.Power,
		Description:   m.Description,
		Icon:          m.Icon,
		GlowTag:       m.GlowTag,
		Price:         m.Price,
		ChangePercent: m.ChangePercent,
		Volatility:    m.Volatility,
		Volume:        m.Volume,
		Bounty:        m.Bounty,
	}
}

// UpsertBatch はキャラクターを一括で挿入（または更新）します。
// 並び順はスライスの順序で sort_key に保存されます。
func (r *characterGorm) UpsertBatch(ctx context.Context, chars []entity.Character) error {
	if len(chars) == 0 {
		return nil
	}
	ms := make([]CharacterModel, 0, len(chars))
	for i, c := range chars {
		ms = append(ms, toModel(c, i))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "symbol", "category", "faction", "power", "description", "icon", "glow_tag",
			"price", "change_percent", "volatility", "volume", "bounty", "sort_key", "updated_at",
		}),
	}).Create(&ms).Error
}

// LoadEntities はsort_key順に全キャラクターを返します。
func (r *characterGorm) LoadEntities(ctx context.Context) ([]entity.Character, error) {
	var rows []CharacterModel
	if err := r.db.WithContext(ctx).Order("sort_key ASC").Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Character, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}
