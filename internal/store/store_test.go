package store

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"lartiste-manager/internal/models"
)

type storeTestSuite struct {
	store *Store

	suite.Suite
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(storeTestSuite))
}

func (s *storeTestSuite) SetupTest() {
	st, err := Open(":memory:")
	s.Require().NoError(err)
	s.store = st
}

func (s *storeTestSuite) TestSeedDefaultStations() {
	s.Require().NoError(s.store.SeedDefaultStations())

	stations, err := s.store.LoadStations()
	s.Require().NoError(err)
	s.Len(stations, 4)

	// Seeding again must not duplicate the roster.
	s.Require().NoError(s.store.SeedDefaultStations())
	stations, err = s.store.LoadStations()
	s.Require().NoError(err)
	s.Len(stations, 4)
}

func (s *storeTestSuite) TestReplaceIsFullSnapshot() {
	first := []models.Session{
		{ID: "a", StationName: "Post 1", TotalCost: decimal.NewFromInt(50),
			StartTime: time.Now(), EndTime: time.Now()},
		{ID: "b", StationName: "Post 2", TotalCost: decimal.NewFromInt(12),
			StartTime: time.Now(), EndTime: time.Now()},
	}
	s.Require().NoError(s.store.ReplaceSessions(first))

	loaded, err := s.store.LoadSessions()
	s.Require().NoError(err)
	s.Len(loaded, 2)

	// A later snapshot fully replaces the earlier one.
	second := first[:1]
	s.Require().NoError(s.store.ReplaceSessions(second))

	loaded, err = s.store.LoadSessions()
	s.Require().NoError(err)
	s.Require().Len(loaded, 1)
	s.Equal("a", loaded[0].ID)
	s.True(loaded[0].TotalCost.Equal(decimal.NewFromInt(50)))
}

func (s *storeTestSuite) TestReplaceWithEmptySnapshotClears() {
	s.Require().NoError(s.store.ReplaceExpenses([]models.Expense{
		{ID: "e1", Category: "Utilities", Amount: decimal.NewFromInt(18), Timestamp: time.Now()},
	}))
	s.Require().NoError(s.store.ReplaceExpenses(nil))

	loaded, err := s.store.LoadExpenses()
	s.Require().NoError(err)
	s.Empty(loaded)
}

func (s *storeTestSuite) TestAllKindsRoundTrip() {
	now := time.Now().UTC().Truncate(time.Second)

	s.Require().NoError(s.store.ReplaceCredits([]models.CreditEntry{{
		ID: "c1", CustomerName: "Amine",
		PlayAmount: decimal.NewFromInt(10), FoodAmount: decimal.NewFromInt(5),
		TotalAmount: decimal.NewFromInt(15), Timestamp: now,
	}}))
	s.Require().NoError(s.store.ReplaceCreditTransactions([]models.CreditTransaction{{
		ID: "t1", CreditID: "c1", Amount: decimal.NewFromInt(10),
		Type: models.CreditPlay, Timestamp: now,
	}}))
	s.Require().NoError(s.store.ReplaceStoreTransactions([]models.StoreTransaction{{
		ID: "x1", ProductName: "Water (x3)", Amount: decimal.RequireFromString("4.5"), Timestamp: now,
	}}))

	credits, err := s.store.LoadCredits()
	s.Require().NoError(err)
	s.Require().Len(credits, 1)
	s.True(credits[0].TotalAmount.Equal(decimal.NewFromInt(15)))

	log, err := s.store.LoadCreditTransactions()
	s.Require().NoError(err)
	s.Require().Len(log, 1)
	s.Equal(models.CreditPlay, log[0].Type)

	sales, err := s.store.LoadStoreTransactions()
	s.Require().NoError(err)
	s.Require().Len(sales, 1)
	s.Equal("Water (x3)", sales[0].ProductName)
}
