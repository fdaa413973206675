package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"exchange_backend/internal/feature/portfolio/domain"
	"exchange_backend/internal/feature/portfolio/usecase"
)

// portfolioGorm はキーバリューテーブルにポートフォリオを保存する PortfolioStore 実装です。
// Redis が利用できない環境でのフォールバックとして使います。
type portfolioGorm struct {
	db  *gorm.DB
	key string
}

var _ usecase.PortfolioStore = (*portfolioGorm)(nil)

// NewPortfolioRepository は GORM ベースの PortfolioStore を生成します。
func NewPortfolioRepository(db *gorm.DB) *portfolioGorm {
	return &portfolioGorm{db: db, key: portfolioKey}
}

// KVEntryModel はキーバリューテーブルの1行です。
type KVEntryModel struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:64"`
	Value     string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName は GORM が使用するテーブル名を返します。
func (KVEntryModel) TableName() string {
	return "kv_entries"
}

// ReadPortfolio は保存済みのJSONを返します。行が存在しない場合は domain.ErrPortfolioNotFound を返します。
func (r *portfolioGorm) ReadPortfolio(ctx context.Context) ([]byte, error) {
	var row KVEntryModel
	err := r.db.WithContext(ctx).Where("entry_key = ?", r.key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrPortfolioNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Value), nil
}

// WritePortfolio はJSON全体を上書き保存します。
func (r *portfolioGorm) WritePortfolio(ctx context.Context, data []byte) error {
	row := KVEntryModel{Key: r.key, Value: string(data), UpdatedAt: time.Now()}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}
