// Package entity defines the domain models for the market feature.
package entity

import "time"

// DateLayout is the calendar-day layout used for history points.
const DateLayout = "2006-01-02"

// PricePoint is one day of a character's price history.
type PricePoint struct {
	Date  string `json:"date"`  // Calendar day (YYYY-MM-DD)
	Price int64  `json:"price"` // Closing price for that day
}

// Character represents a tradable fictional character.
// Only Price, ChangePercent and History change after load, and only through the simulator.
type Character struct {
	ID          uint
	Name        string
	Symbol      string
	Category    string
	Faction     string
	Power       string
	Description string
	Icon        string
	GlowTag     string

	Price         int64   // Current price, never below the configured minimum
	ChangePercent float64 // Most recent movement in percent, one decimal
	Volatility    float64 // Step magnitude in (0, 1]
	Volume        int64

	// History is ordered oldest first. The newest point matches Price after every tick.
	History []PricePoint

	// Bounty is nil when the bounty is unknown.
	Bounty *int64
}

// DisplayName returns the first word of the character's name.
func (c *Character) DisplayName() string {
	for i, r := range c.Name {
		if r == ' ' {
			return c.Name[:i]
		}
	}
	return c.Name
}

// Clone returns a deep copy safe to hand out of the market's lock.
func (c *Character) Clone() Character {
	out := *c
	out.History = make([]PricePoint, len(c.History))
	copy(out.History, c.History)
	if c.Bounty != nil {
		b := *c.Bounty
		out.Bounty = &b
	}
	return out
}

// Today formats t as a history date.
func Today(t time.Time) string {
	return t.Format(DateLayout)
}
