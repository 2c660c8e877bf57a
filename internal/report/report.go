// Package report derives the daily financial aggregates by folding
// over the transaction logs. Nothing here is cached; every call
// recomputes from the snapshots it is given.
package report

import (
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/models"
)

// DailyStats is the point-in-time financial snapshot of the open day.
type DailyStats struct {
	TotalPlayRevenue decimal.Decimal `json:"totalPlayRevenue"`
	TotalFoodRevenue decimal.Decimal `json:"totalFoodRevenue"`
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
	NetProfit        decimal.Decimal `json:"netProfit"`
	TotalSessions    int             `json:"totalSessions"`
	// Utilization is the busy share of the roster right now, in
	// percent. A snapshot, not time-weighted.
	Utilization float64 `json:"utilization"`
}

// StationAggregate is the per-station rollup for tabular displays,
// joined by the station name captured at settlement time.
type StationAggregate struct {
	StationID       string          `json:"id"`
	Name            string          `json:"name"`
	TotalMinutes    int             `json:"totalDuration"`
	TotalTimeRev    decimal.Decimal `json:"totalTimeRev"`
	TotalMatches    decimal.Decimal `json:"totalMatches"`
	TotalMatchRev   decimal.Decimal `json:"totalMatchRev"`
	CompletedCount  int             `json:"sessions"`
	TotalSessionRev decimal.Decimal `json:"totalRevenue"`
}

// Daily folds all logs into the day's stats.
//
// Play revenue is session time + match income plus collected PLAY
// debts; food revenue is session food add-ons plus collected FOOD
// debts plus direct store sales.
func Daily(
	stations []models.Station,
	sessions []models.Session,
	expenses []models.Expense,
	creditLog []models.CreditTransaction,
	sales []models.StoreTransaction,
) DailyStats {
	playRev := decimal.Zero
	foodRev := decimal.Zero
	for _, s := range sessions {
		playRev = playRev.Add(s.SessionCost).Add(s.MatchCost)
		foodRev = foodRev.Add(s.FoodCost)
	}
	for _, t := range creditLog {
		switch t.Type {
		case models.CreditPlay:
			playRev = playRev.Add(t.Amount)
		case models.CreditFood:
			foodRev = foodRev.Add(t.Amount)
		}
	}
	for _, t := range sales {
		foodRev = foodRev.Add(t.Amount)
	}

	totalExpenses := decimal.Zero
	for _, e := range expenses {
		totalExpenses = totalExpenses.Add(e.Amount)
	}

	busy := 0
	for _, st := range stations {
		if st.Status == models.StatusBusy {
			busy++
		}
	}
	utilization := 0.0
	if len(stations) > 0 {
		utilization = float64(busy) / float64(len(stations)) * 100
	}

	totalRev := playRev.Add(foodRev)
	return DailyStats{
		TotalPlayRevenue: playRev,
		TotalFoodRevenue: foodRev,
		TotalRevenue:     totalRev,
		TotalExpenses:    totalExpenses,
		NetProfit:        totalRev.Sub(totalExpenses),
		TotalSessions:    len(sessions),
		Utilization:      utilization,
	}
}

// PerStation rolls sessions up by the roster's station names.
func PerStation(stations []models.Station, sessions []models.Session) []StationAggregate {
	out := make([]StationAggregate, 0, len(stations))
	for _, st := range stations {
		agg := StationAggregate{
			StationID:       st.ID,
			Name:            st.Name,
			TotalTimeRev:    decimal.Zero,
			TotalMatches:    decimal.Zero,
			TotalMatchRev:   decimal.Zero,
			TotalSessionRev: decimal.Zero,
		}
		for _, s := range sessions {
			if s.StationName != st.Name {
				continue
			}
			agg.TotalMinutes += s.DurationMinutes
			agg.TotalTimeRev = agg.TotalTimeRev.Add(s.SessionCost)
			agg.TotalMatches = agg.TotalMatches.Add(s.MatchCount)
			agg.TotalMatchRev = agg.TotalMatchRev.Add(s.MatchCost)
			agg.TotalSessionRev = agg.TotalSessionRev.Add(s.TotalCost)
			agg.CompletedCount++
		}
		out = append(out, agg)
	}
	return out
}
