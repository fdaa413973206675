// Package static はバイナリに埋め込まれたキャラクターデータセットを提供します。
package static

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"exchange_backend/internal/feature/market/domain/entity"
	"exchange_backend/internal/feature/market/usecase"
)

//go:embed characters.yaml
var defaultDataset []byte

// bountyUnknown は非公開の懸賞金を表す値です。
const bountyUnknown = "unknown"

// Source は埋め込みYAMLからキャラクターを読み込むEntitySource実装です。
type Source struct {
	data []byte
}

var _ usecase.EntitySource = (*Source)(nil)

// NewSource は埋め込みデータセットを使うSourceを生成します。
func NewSource() *Source {
	return &Source{data: defaultDataset}
}

// NewSourceFromBytes は任意のYAMLデータを使うSourceを生成します。
func NewSourceFromBytes(data []byte) *Source {
	return &Source{data: data}
}

// characterID は整数・数値文字列のどちらで書かれたIDも uint に正規化します。
type characterID uint

// UnmarshalYAML は yaml.Unmarshaler を実装します。
func (id *characterID) UnmarshalYAML(node *yaml.Node) error {
	v, err := strconv.ParseUint(strings.TrimSpace(node.Value), 10, 64)
	if err != nil || v == 0 {
		return fmt.Errorf("line %d: invalid character id %q", node.Line, node.Value)
	}
	*id = characterID(v)
	return nil
}

// bounty は数値または "unknown" を受け付けます。
type bounty struct {
	amount *int64
}

// UnmarshalYAML は yaml.Unmarshaler を実装します。
func (b *bounty) UnmarshalYAML(node *yaml.Node) error {
	if strings.EqualFold(strings.TrimSpace(node.Value), bountyUnknown) {
		b.amount = nil
		return nil
	}
	v, err := strconv.ParseInt(strings.TrimSpace(node.Value), 10, 64)
	if err != nil {
		return fmt.Errorf("line %d: invalid bounty %q", node.Line, node.Value)
	}
	b.amount = &v
	return nil
}

type characterRecord struct {
	ID          characterID `yaml:"id"`
	Name        string      `yaml:"name"`
	Symbol      string      `yaml:"symbol"`
	Category    string      `yaml:"category"`
	Faction     string      `yaml:"faction"`
	Icon        string      `yaml:"icon"`
	Power       string      `yaml:"power"`
	Description string      `yaml:"description"`
	Price       int64       `yaml:"price"`
	Change      float64     `yaml:"change"`
	Volatility  float64     `yaml:"volatility"`
	Volume      int64       `yaml:"volume"`
	Glow        string      `yaml:"glow"`
}

type dataset struct {
	Characters []characterRecord `yaml:"characters"`
	Bounties   map[string]bounty `yaml:"bounties"`
}

// LoadEntities はYAMLを解析し、懸賞金テーブルを名前で結合したキャラクター一覧を返します。
// 価格履歴は生成しません（usecase側で生成されます）。
func (s *Source) LoadEntities(ctx context.Context) ([]entity.Character, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ds dataset
	if err := yaml.Unmarshal(s.data, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse character dataset: %w", err)
	}

	out := make([]entity.Character, 0, len(ds.Characters))
	for _, r := range ds.Characters {
		c := entity.Character{
			ID:            uint(r.ID),
			Name:          r.Name,
			Symbol:        r.Symbol,
			Category:      r.Category,
			Faction:       r.Faction,
			Power:         r.Power,
			Description:   r.Description,
			Icon:          r.Icon,
			GlowTag:       r.Glow,
			Price:         r.Price,
			ChangePercent: r.Change,
			Volatility:    r.Volatility,
			Volume:        r.Volume,
		}
		if b, ok := ds.Bounties[r.Name]; ok {
			c.Bounty = b.amount
		}
		out = append(out, c)
	}
	return out, nil
}
