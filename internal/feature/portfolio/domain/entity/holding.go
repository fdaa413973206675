// Package entity defines the domain models for the portfolio feature.
package entity

// Holding links a character id to an owned share count.
// Shares is always positive; a holding that reaches zero is removed from the ledger.
type Holding struct {
	EntityID uint  `json:"id"`
	Shares   int64 `json:"shares"`
}

// Valuation holds the aggregate statistics of the ledger at current prices.
type Valuation struct {
	TotalValue          float64 // Sum of price * shares
	DailyChangePercent  float64 // Aggregate change of the last tick, weighted by position value
	HoldingCount        int     // Number of distinct holdings
	HighestValueName    string  // Display name of the largest position, "N/A" when empty
	BestPerformerName   string  // Display name of the best performer, "N/A" when empty
	BestPerformerChange float64 // ChangePercent of the best performer, 0 when empty
}

// Position is a holding joined with the current price of its character.
type Position struct {
	Holding
	Name          string
	Symbol        string
	Faction       string
	Icon          string
	Volume        int64
	Price         int64
	ChangePercent float64
	Value         float64
}
