package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"lartiste-manager/internal/models"
)

type reportTestSuite struct {
	suite.Suite
}

func TestReportSuite(t *testing.T) {
	suite.Run(t, new(reportTestSuite))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (s *reportTestSuite) fixtures() ([]models.Station, []models.Session, []models.Expense, []models.CreditTransaction, []models.StoreTransaction) {
	now := time.Date(2024, 7, 12, 18, 0, 0, 0, time.UTC)

	stations := models.DefaultStations()
	stations[0].Status = models.StatusBusy

	sessions := []models.Session{
		{
			ID: "s1", StationName: "Post 1", DurationMinutes: 90,
			SessionCost: dec("30"), MatchCount: dec("2"), MatchCost: dec("10"),
			FoodCost: dec("10"), TotalCost: dec("50"), EndTime: now,
		},
		{
			ID: "s2", StationName: "Post 4", DurationMinutes: 30,
			SessionCost: dec("10"), MatchCount: dec("0.5"), MatchCost: dec("2"),
			FoodCost: dec("0"), TotalCost: dec("12"), EndTime: now,
		},
	}
	expenses := []models.Expense{
		{ID: "e1", Category: "Utilities", Amount: dec("18"), Timestamp: now},
		{ID: "e2", Category: "Maintenance", Amount: dec("7"), Timestamp: now},
	}
	creditLog := []models.CreditTransaction{
		{ID: "t1", CreditID: "c1", Amount: dec("10"), Type: models.CreditPlay, Timestamp: now},
		{ID: "t2", CreditID: "c1", Amount: dec("5"), Type: models.CreditFood, Timestamp: now},
	}
	sales := []models.StoreTransaction{
		{ID: "x1", ProductName: "Water (x3)", Amount: dec("4.5"), Timestamp: now},
		{ID: "x2", ProductName: "Chips", Amount: dec("7"), Timestamp: now},
	}
	return stations, sessions, expenses, creditLog, sales
}

func (s *reportTestSuite) TestDailyRevenueSplit() {
	stats := Daily(s.fixtures())

	// Play: session time + matches (30+10+10+2) plus collected PLAY
	// debt (10).
	s.True(stats.TotalPlayRevenue.Equal(dec("62")), "play revenue = %s", stats.TotalPlayRevenue)
	// Food: session add-ons (10) plus collected FOOD debt (5) plus
	// store sales (11.5).
	s.True(stats.TotalFoodRevenue.Equal(dec("26.5")), "food revenue = %s", stats.TotalFoodRevenue)
	s.True(stats.TotalExpenses.Equal(dec("25")))
	s.Equal(2, stats.TotalSessions)
}

func (s *reportTestSuite) TestDailyAdditivity() {
	stats := Daily(s.fixtures())

	s.True(stats.TotalRevenue.Equal(stats.TotalPlayRevenue.Add(stats.TotalFoodRevenue)))
	s.True(stats.NetProfit.Equal(stats.TotalRevenue.Sub(stats.TotalExpenses)))
}

func (s *reportTestSuite) TestUtilizationSnapshot() {
	stations, sessions, expenses, creditLog, sales := s.fixtures()

	stats := Daily(stations, sessions, expenses, creditLog, sales)
	s.InDelta(25.0, stats.Utilization, 0.001, "one of four stations is busy")

	stats = Daily(nil, sessions, expenses, creditLog, sales)
	s.Zero(stats.Utilization, "empty roster must not divide by zero")
}

func (s *reportTestSuite) TestPerStationJoinsByCapturedName() {
	stations, sessions, _, _, _ := s.fixtures()
	// Renaming a station must not reclassify its old sessions.
	stations[0].Name = "Post One"

	aggs := PerStation(stations, sessions)
	s.Require().Len(aggs, 4)

	renamed := aggs[0]
	s.Equal("Post One", renamed.Name)
	s.Zero(renamed.CompletedCount, "old sessions stay under the captured name")

	ps4 := aggs[3]
	s.Equal("Post 4", ps4.Name)
	s.Equal(1, ps4.CompletedCount)
	s.Equal(30, ps4.TotalMinutes)
	s.True(ps4.TotalTimeRev.Equal(dec("10")))
	s.True(ps4.TotalMatches.Equal(dec("0.5")))
	s.True(ps4.TotalMatchRev.Equal(dec("2")))
	s.True(ps4.TotalSessionRev.Equal(dec("12")))
}

func (s *reportTestSuite) TestEmptyLogs() {
	stats := Daily(models.DefaultStations(), nil, nil, nil, nil)

	s.True(stats.TotalRevenue.IsZero())
	s.True(stats.NetProfit.IsZero())
	s.Zero(stats.TotalSessions)
	s.Zero(stats.Utilization)
}
