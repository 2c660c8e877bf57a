// Package pricing holds the pure pricing rules: elapsed time, match
// counts and fixed-duration quotes to monetary amounts. Everything is
// computed with decimals so half-unit rounding stays exact.
package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"lartiste-manager/internal/models"
)

type Rates struct {
	HourlyRate    decimal.Decimal
	MatchPricePS5 decimal.Decimal
	MatchPricePS4 decimal.Decimal
}

var two = decimal.NewFromInt(2)

// TimeCost converts an elapsed duration into a time charge, rounded to
// the nearest half currency unit. Sessions under ~90 seconds round to
// zero, which protects against off-by-one charging on an instant
// stop/start.
func (r Rates) TimeCost(d time.Duration) decimal.Decimal {
	if d <= 0 {
		return decimal.Zero
	}
	hours := decimal.NewFromFloat(d.Hours())
	return hours.Mul(r.HourlyRate).Mul(two).Round(0).Div(two)
}

// MatchPrice returns the per-match price for a station hardware type.
func (r Rates) MatchPrice(t models.StationType) decimal.Decimal {
	if t == models.StationPS4 {
		return r.MatchPricePS4
	}
	return r.MatchPricePS5
}

// MatchCost prices a match counter. Half-match increments are allowed,
// so count is a decimal.
func (r Rates) MatchCost(count decimal.Decimal, t models.StationType) decimal.Decimal {
	return count.Mul(r.MatchPrice(t))
}

// MinutesToPrice quotes a fixed-duration session: price scales linearly
// with minutes against the hourly rate.
func (r Rates) MinutesToPrice(minutes int) decimal.Decimal {
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60)).Mul(r.HourlyRate)
}

// PriceToMinutes inverts MinutesToPrice, rounding to the nearest
// minute. A non-positive hourly rate buys no time.
func (r Rates) PriceToMinutes(price decimal.Decimal) int {
	if !r.HourlyRate.IsPositive() {
		return 0
	}
	mins := price.Div(r.HourlyRate).Mul(decimal.NewFromInt(60))
	return int(mins.Round(0).IntPart())
}
