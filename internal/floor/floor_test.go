package floor

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"lartiste-manager/internal/confirm"
	"lartiste-manager/internal/models"
	"lartiste-manager/internal/pricing"
)

// persisterStub counts mirror calls; the engines treat persistence as
// best effort, so nothing here fails.
type persisterStub struct {
	stations int
	sessions int
}

func (p *persisterStub) ReplaceStations([]models.Station) error {
	p.stations++
	return nil
}

func (p *persisterStub) ReplaceSessions([]models.Session) error {
	p.sessions++
	return nil
}

type floorTestSuite struct {
	board    *Board
	db       *persisterStub
	confirms *confirm.Registry
	current  time.Time

	suite.Suite
}

func TestFloorSuite(t *testing.T) {
	suite.Run(t, new(floorTestSuite))
}

func (s *floorTestSuite) SetupTest() {
	s.db = &persisterStub{}
	s.confirms = confirm.NewRegistry()
	s.current = time.Date(2024, 7, 12, 18, 0, 0, 0, time.UTC)

	rates := pricing.Rates{
		HourlyRate:    decimal.NewFromInt(20),
		MatchPricePS5: decimal.NewFromInt(5),
		MatchPricePS4: decimal.NewFromInt(4),
	}
	s.board = NewBoard(rates, models.DefaultStations(), nil, s.db, s.confirms)
	s.board.SetClock(func() time.Time { return s.current })
}

func (s *floorTestSuite) advance(d time.Duration) {
	s.current = s.current.Add(d)
}

func (s *floorTestSuite) TestStartOpenEnded() {
	st, err := s.board.Start("1", 0)
	s.Require().NoError(err)

	s.Equal(models.StatusBusy, st.Status)
	s.Require().NotNil(st.StartTime)
	s.True(st.StartTime.Equal(s.current))
	s.Nil(st.TargetEndTime)
	s.NotEmpty(st.CurrentSessionID)
}

func (s *floorTestSuite) TestStartCountdown() {
	st, err := s.board.Start("2", 30)
	s.Require().NoError(err)

	s.Require().NotNil(st.TargetEndTime)
	s.True(st.TargetEndTime.Equal(s.current.Add(30 * time.Minute)))
}

func (s *floorTestSuite) TestStartNeverRestartsARunningTimer() {
	first, err := s.board.Start("1", 0)
	s.Require().NoError(err)

	s.advance(10 * time.Minute)
	second, err := s.board.Start("1", 60)
	s.Require().NoError(err)

	s.True(second.StartTime.Equal(*first.StartTime), "start timestamp must survive a second start")
	s.Equal(first.CurrentSessionID, second.CurrentSessionID)
	s.Require().NotNil(second.TargetEndTime)
	s.True(second.TargetEndTime.Equal(s.current.Add(60 * time.Minute)))
}

func (s *floorTestSuite) TestStartWithoutDurationDisarmsCountdown() {
	first, err := s.board.Start("1", 30)
	s.Require().NoError(err)
	s.Require().NotNil(first.TargetEndTime)

	s.advance(10 * time.Minute)
	second, err := s.board.Start("1", 0)
	s.Require().NoError(err)

	s.Nil(second.TargetEndTime, "a start with no duration must convert the session to open-ended")
	s.True(second.StartTime.Equal(*first.StartTime))
}

func (s *floorTestSuite) TestStartUnknownStation() {
	_, err := s.board.Start("99", 0)
	s.ErrorIs(err, ErrStationNotFound)
}

func (s *floorTestSuite) TestMatchOnlySessionMakesStationBusy() {
	st, err := s.board.AddMatch("1", decimal.NewFromInt(1))
	s.Require().NoError(err)

	s.Equal(models.StatusBusy, st.Status)
	s.Nil(st.StartTime, "a match-only session must not start the timer")
	s.NotEmpty(st.CurrentSessionID)
	s.True(st.MatchCount.Equal(decimal.NewFromInt(1)))
}

func (s *floorTestSuite) TestHalfMatchIncrements() {
	_, err := s.board.AddMatch("1", decimal.RequireFromString("0.5"))
	s.Require().NoError(err)
	st, err := s.board.AddMatch("1", decimal.NewFromInt(2))
	s.Require().NoError(err)

	s.True(st.MatchCount.Equal(decimal.RequireFromString("2.5")))
}

func (s *floorTestSuite) TestMatchCountValidation() {
	testCases := []struct {
		name  string
		count string
	}{
		{name: "zero", count: "0"},
		{name: "negative", count: "-1"},
		{name: "not a half step", count: "0.3"},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			_, err := s.board.AddMatch("1", decimal.RequireFromString(tc.count))
			s.ErrorIs(err, ErrBadMatchCount)
		})
	}
}

func (s *floorTestSuite) TestRemoveMatchClampsAtZeroAndKeepsBusy() {
	_, err := s.board.AddMatch("1", decimal.NewFromInt(1))
	s.Require().NoError(err)

	st, err := s.board.RemoveMatch("1", decimal.NewFromInt(3))
	s.Require().NoError(err)

	s.True(st.MatchCount.IsZero())
	s.Equal(models.StatusBusy, st.Status, "removing matches must never release the station")
}

func (s *floorTestSuite) TestPreviewIsNonDestructive() {
	_, err := s.board.Start("1", 0)
	s.Require().NoError(err)
	s.advance(30 * time.Minute)

	preview, err := s.board.Preview("1")
	s.Require().NoError(err)
	s.True(preview.SessionCost.Equal(decimal.NewFromInt(10)))

	st := s.board.Stations()[0]
	s.Equal(models.StatusBusy, st.Status)
	s.NotNil(st.StartTime)
}

func (s *floorTestSuite) TestPreviewNeedsActiveSession() {
	_, err := s.board.Preview("1")
	s.ErrorIs(err, ErrNoActiveSession)
}

func (s *floorTestSuite) TestCountdownChargeFreezesAtTarget() {
	_, err := s.board.Start("1", 30)
	s.Require().NoError(err)

	s.advance(2 * time.Hour)

	views := s.board.LiveViews()
	v := views[0]
	s.True(v.TimeUp)
	s.Equal(time.Duration(0), v.Remaining)
	s.True(v.TimeCost.Equal(decimal.NewFromInt(10)), "charge must freeze at the 30-minute target, got %s", v.TimeCost)

	preview, err := s.board.Preview("1")
	s.Require().NoError(err)
	s.True(preview.SessionCost.Equal(decimal.NewFromInt(10)))
}

func (s *floorTestSuite) TestTimeUpIsDerivedNotStored() {
	_, err := s.board.Start("1", 30)
	s.Require().NoError(err)

	s.advance(2 * time.Hour)
	s.True(s.board.LiveViews()[0].TimeUp)

	// The persisted station carries only timestamps; time-up must be
	// recomputed on every read.
	st := s.board.Stations()[0]
	s.Equal(models.StatusBusy, st.Status)
	s.NotNil(st.TargetEndTime)
}

// The settlement scenario from the floor: Post 1 (PS5, 20/hr, match
// price 5) runs open-ended for 90 minutes with 2 matches and a 10 food
// add-on.
func (s *floorTestSuite) TestCheckoutSettlesAndResets() {
	_, err := s.board.Start("1", 0)
	s.Require().NoError(err)
	s.advance(90 * time.Minute)
	_, err = s.board.AddMatch("1", decimal.NewFromInt(2))
	s.Require().NoError(err)

	preview, err := s.board.Preview("1")
	s.Require().NoError(err)
	s.True(preview.SessionCost.Equal(decimal.NewFromInt(30)))
	s.True(preview.MatchCost.Equal(decimal.NewFromInt(10)))

	sess, err := s.board.ConfirmCheckout("1", CheckoutDetails{
		MatchCount:  decimal.NewFromInt(2),
		MatchCost:   preview.MatchCost,
		SessionCost: preview.SessionCost,
		FoodCost:    decimal.NewFromInt(10),
		TotalCost:   decimal.NewFromInt(50),
		Notes:       "regulars",
	})
	s.Require().NoError(err)

	s.Equal("Post 1", sess.StationName)
	s.Equal(90, sess.DurationMinutes)
	s.True(sess.TotalCost.Equal(decimal.NewFromInt(50)))
	s.True(sess.IsPaid)

	st := s.board.Stations()[0]
	s.Equal(models.StatusAvailable, st.Status)
	s.Nil(st.StartTime)
	s.Nil(st.TargetEndTime)
	s.Empty(st.CurrentSessionID)
	s.True(st.MatchCount.IsZero())

	s.Len(s.board.Sessions(), 1)
	s.Positive(s.db.sessions, "settlement must mirror the session log")
}

func (s *floorTestSuite) TestMatchOnlyCheckoutHasZeroDuration() {
	_, err := s.board.AddMatch("4", decimal.NewFromInt(3))
	s.Require().NoError(err)

	sess, err := s.board.ConfirmCheckout("4", CheckoutDetails{
		MatchCount: decimal.NewFromInt(3),
		MatchCost:  decimal.NewFromInt(12),
		TotalCost:  decimal.NewFromInt(12),
	})
	s.Require().NoError(err)

	s.Equal(0, sess.DurationMinutes)
	s.True(sess.StartTime.Equal(sess.EndTime))
}

func (s *floorTestSuite) TestCheckoutWithoutSessionRejected() {
	_, err := s.board.ConfirmCheckout("1", CheckoutDetails{})
	s.ErrorIs(err, ErrNoActiveSession)
	s.Empty(s.board.Sessions())
}

func (s *floorTestSuite) settleOne(stationID string) models.Session {
	_, err := s.board.Start(stationID, 0)
	s.Require().NoError(err)
	s.advance(time.Hour)
	sess, err := s.board.ConfirmCheckout(stationID, CheckoutDetails{
		SessionCost: decimal.NewFromInt(20),
		TotalCost:   decimal.NewFromInt(20),
	})
	s.Require().NoError(err)
	return sess
}

func (s *floorTestSuite) TestEditSession() {
	sess := s.settleOne("1")

	sess.Notes = "corrected"
	sess.TotalCost = decimal.NewFromInt(25)
	s.Require().NoError(s.board.EditSession(sess))

	got := s.board.Sessions()[0]
	s.Equal("corrected", got.Notes)
	s.True(got.TotalCost.Equal(decimal.NewFromInt(25)))
}

func (s *floorTestSuite) TestEditUnknownSession() {
	err := s.board.EditSession(models.Session{ID: "missing"})
	s.ErrorIs(err, ErrSessionNotFound)
}

func (s *floorTestSuite) TestDeleteSessionIsConfirmGated() {
	sess := s.settleOne("1")

	action, err := s.board.RequestDeleteSession(sess.ID)
	s.Require().NoError(err)
	s.True(action.Danger)
	s.Len(s.board.Sessions(), 1, "nothing is deleted before commit")

	s.Require().NoError(s.confirms.Commit(action.Token))
	s.Empty(s.board.Sessions())
}

func (s *floorTestSuite) TestCancelledDeleteKeepsSession() {
	sess := s.settleOne("1")

	action, err := s.board.RequestDeleteSession(sess.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.confirms.Cancel(action.Token))

	s.Len(s.board.Sessions(), 1)
	s.ErrorIs(s.confirms.Commit(action.Token), confirm.ErrUnknownToken)
}

func (s *floorTestSuite) TestHistoryUsesCapturedNameNewestFirst() {
	first := s.settleOne("1")
	s.advance(time.Minute)
	second := s.settleOne("1")

	history, err := s.board.History("1")
	s.Require().NoError(err)
	s.Require().Len(history, 2)
	s.Equal(second.ID, history[0].ID)
	s.Equal(first.ID, history[1].ID)
}
