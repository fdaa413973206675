package usecase

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"exchange_backend/internal/feature/market/domain/entity"
)

func newCharacter(id uint, price int64, volatility float64, historyLen int) *entity.Character {
	c := &entity.Character{ID: id, Name: "Test", Price: price, Volatility: volatility}
	for i := 0; i < historyLen; i++ {
		c.History = append(c.History, entity.PricePoint{Date: "2024-01-01", Price: price + int64(i)})
	}
	if historyLen > 0 {
		c.History[historyLen-1].Price = price
	}
	return c
}

func TestSimulator_Tick_PriceStep(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		price      int64
		volatility float64
		random     float64
		wantPrice  int64
		wantChange float64
	}{
		{
			// uniform = 1.0 -> delta = 1 * 0.8 * 5 = 4%
			name:       "upward step",
			price:      10000,
			volatility: 0.8,
			random:     1.0,
			wantPrice:  10400,
			wantChange: 4.0,
		},
		{
			// uniform = -1.0 -> delta = -2.5%
			name:       "downward step",
			price:      8000,
			volatility: 0.5,
			random:     0.0,
			wantPrice:  7800,
			wantChange: -2.5,
		},
		{
			name:       "no movement at the midpoint",
			price:      6500,
			volatility: 0.65,
			random:     0.5,
			wantPrice:  6500,
			wantChange: 0,
		},
		{
			name:       "minimum price floor holds on a negative delta",
			price:      100,
			volatility: 1,
			random:     0.0,
			wantPrice:  100,
			wantChange: 0,
		},
		{
			// 9850 * 1.0123 = 9971.155 -> 9971, change = 121/9850 = 1.228% -> 1.2
			name:       "change percent rounded to one decimal",
			price:      9850,
			volatility: 0.41,
			random:     0.80,
			wantPrice:  9971,
			wantChange: 1.2,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			sim := NewSimulator(DefaultConfig(), newFixedRandom(tt.random), fixedNow)
			c := newCharacter(1, tt.price, tt.volatility, 3)

			sim.Tick([]*entity.Character{c})

			assert.Equal(t, tt.wantPrice, c.Price)
			assert.InDelta(t, tt.wantChange, c.ChangePercent, 1e-9)
			require.Len(t, c.History, 4)
			assert.Equal(t, entity.PricePoint{Date: "2024-03-15", Price: tt.wantPrice}, c.History[3])
		})
	}
}

func TestSimulator_Tick_WindowEvictsOldestFirst(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	sim := NewSimulator(cfg, newFixedRandom(0.9, 0.1, 0.6), fixedNow)
	c := newCharacter(1, 5000, 0.9, cfg.MaxHistoryDays)
	oldest := c.History[0]
	second := c.History[1]

	sim.Tick([]*entity.Character{c})

	require.Len(t, c.History, cfg.MaxHistoryDays)
	assert.NotEqual(t, oldest, c.History[0], "oldest point should have been evicted")
	assert.Equal(t, second, c.History[0])
	assert.Equal(t, c.Price, c.History[len(c.History)-1].Price)
}

func TestSimulator_Tick_Invariants(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	sim := NewSimulator(cfg, nil, nil)
	chars := []*entity.Character{
		newCharacter(1, 100, 1, 0),
		newCharacter(2, 9850, 0.85, 30),
		newCharacter(3, 150, 0.95, 12),
	}

	for i := 0; i < 200; i++ {
		sim.Tick(chars)
		for _, c := range chars {
			require.GreaterOrEqual(t, c.Price, cfg.MinPrice)
			require.LessOrEqual(t, len(c.History), cfg.MaxHistoryDays)
			require.Equal(t, c.Price, c.History[len(c.History)-1].Price)
		}
	}
}

func TestSimulator_Tick_SkipsInvalidVolatility(t *testing.T) {
	t.Parallel()

	sim := NewSimulator(DefaultConfig(), newFixedRandom(1.0), fixedNow)
	nan := newCharacter(1, 5000, math.NaN(), 2)
	inf := newCharacter(2, 5000, math.Inf(1), 2)

	sim.Tick([]*entity.Character{nan, inf, nil})

	for _, c := range []*entity.Character{nan, inf} {
		assert.Equal(t, int64(5000), c.Price)
		assert.Len(t, c.History, 2)
	}
}

func TestChangePercent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, ChangePercent(0, 500), "zero old price must not divide by zero")
	assert.Equal(t, 10.0, ChangePercent(100, 110))
	assert.Equal(t, -33.3, ChangePercent(300, 200))
	assert.Equal(t, 0.3, ChangePercent(3000, 3010))
}
