// Package floor owns the live station lifecycle: timers, match
// counters, the checkout preview and the settlement that turns a live
// station into a permanent session record.
package floor

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/confirm"
	"lartiste-manager/internal/models"
	"lartiste-manager/internal/pricing"
	"lartiste-manager/internal/store"
)

var (
	ErrStationNotFound = errors.New("station not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrNoActiveSession = errors.New("station has no active session")
	ErrBadMatchCount   = errors.New("match count must be a positive multiple of 0.5")
)

// Persister is the slice of the store the floor engine mirrors into.
type Persister interface {
	ReplaceStations([]models.Station) error
	ReplaceSessions([]models.Session) error
}

type Board struct {
	mu       sync.Mutex
	rates    pricing.Rates
	stations []models.Station
	sessions []models.Session
	db       Persister
	confirms *confirm.Registry
	now      func() time.Time
}

func NewBoard(rates pricing.Rates, stations []models.Station, sessions []models.Session, db Persister, confirms *confirm.Registry) *Board {
	return &Board{
		rates:    rates,
		stations: stations,
		sessions: sessions,
		db:       db,
		confirms: confirms,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (b *Board) SetClock(now func() time.Time) {
	b.now = now
}

func (b *Board) find(stationID string) (*models.Station, error) {
	for i := range b.stations {
		if b.stations[i].ID == stationID {
			return &b.stations[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrStationNotFound, stationID)
}

// Start begins (or extends) timed play. The start timestamp is set only
// if no timer is already running; a running timer is never restarted.
// A positive duration arms a countdown toward now + duration; no
// duration disarms any existing countdown, making the session
// open-ended.
func (b *Board) Start(stationID string, durationMinutes int) (models.Station, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.find(stationID)
	if err != nil {
		return models.Station{}, err
	}

	now := b.now()
	if st.StartTime == nil {
		t := now
		st.StartTime = &t
	}
	if durationMinutes > 0 {
		end := now.Add(time.Duration(durationMinutes) * time.Minute)
		st.TargetEndTime = &end
	} else {
		st.TargetEndTime = nil
	}
	if st.CurrentSessionID == "" {
		st.CurrentSessionID = uuid.New().String()
	}
	st.Status = models.StatusBusy

	b.mirrorStations()
	return *st, nil
}

func validMatchCount(count decimal.Decimal) bool {
	if !count.IsPositive() {
		return false
	}
	return count.Mul(decimal.NewFromInt(2)).IsInteger()
}

// AddMatch bumps the match counter. Adding to an available station
// makes it busy without starting a timer (match-only session).
func (b *Board) AddMatch(stationID string, count decimal.Decimal) (models.Station, error) {
	if !validMatchCount(count) {
		return models.Station{}, ErrBadMatchCount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.find(stationID)
	if err != nil {
		return models.Station{}, err
	}

	if st.CurrentSessionID == "" {
		st.CurrentSessionID = uuid.New().String()
	}
	st.Status = models.StatusBusy
	st.MatchCount = st.MatchCount.Add(count)

	b.mirrorStations()
	return *st, nil
}

// RemoveMatch decrements the counter, clamped at zero. The station
// stays busy even at zero; only checkout releases it.
func (b *Board) RemoveMatch(stationID string, count decimal.Decimal) (models.Station, error) {
	if !validMatchCount(count) {
		return models.Station{}, ErrBadMatchCount
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.find(stationID)
	if err != nil {
		return models.Station{}, err
	}

	if st.MatchCount.IsPositive() {
		next := st.MatchCount.Sub(count)
		if next.IsNegative() {
			next = decimal.Zero
		}
		st.MatchCount = next
		b.mirrorStations()
	}
	return *st, nil
}

// CheckoutDetails are the operator-adjusted final tallies for a
// settlement. The totals are taken as given; they are not re-derived.
type CheckoutDetails struct {
	MatchCount  decimal.Decimal `json:"matchCount"`
	MatchCost   decimal.Decimal `json:"matchCost"`
	SessionCost decimal.Decimal `json:"sessionCost"`
	FoodCost    decimal.Decimal `json:"foodCost"`
	TotalCost   decimal.Decimal `json:"totalCost"`
	Notes       string          `json:"notes"`
}

// CheckoutPreview is the non-destructive stop: the live tallies a
// checkout would settle at, with nothing mutated yet.
type CheckoutPreview struct {
	Station     models.Station  `json:"station"`
	Elapsed     time.Duration   `json:"-"`
	SessionCost decimal.Decimal `json:"sessionCost"`
	MatchPrice  decimal.Decimal `json:"matchPrice"`
	MatchCost   decimal.Decimal `json:"matchCost"`
	TotalCost   decimal.Decimal `json:"totalCost"`
}

// Preview computes the settlement tallies for a busy station without
// touching it.
func (b *Board) Preview(stationID string) (CheckoutPreview, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.find(stationID)
	if err != nil {
		return CheckoutPreview{}, err
	}
	if st.Status != models.StatusBusy {
		return CheckoutPreview{}, fmt.Errorf("%w: %s", ErrNoActiveSession, stationID)
	}

	now := b.now()
	sessionCost := decimal.Zero
	var elapsed time.Duration
	if st.StartTime != nil {
		elapsed = billableElapsed(*st, now)
		sessionCost = b.rates.TimeCost(elapsed)
	}
	matchCost := b.rates.MatchCost(st.MatchCount, st.Type)

	return CheckoutPreview{
		Station:     *st,
		Elapsed:     elapsed,
		SessionCost: sessionCost,
		MatchPrice:  b.rates.MatchPrice(st.Type),
		MatchCost:   matchCost,
		TotalCost:   sessionCost.Add(matchCost),
	}, nil
}

// billableElapsed clamps a countdown session at its target end, so the
// charge freezes at the originally targeted duration once time is up.
func billableElapsed(st models.Station, now time.Time) time.Duration {
	if st.StartTime == nil {
		return 0
	}
	end := now
	if st.TargetEndTime != nil && now.After(*st.TargetEndTime) {
		end = *st.TargetEndTime
	}
	return end.Sub(*st.StartTime)
}

// ConfirmCheckout settles a busy station into one immutable session
// record and resets the station. The two changes happen together under
// the lock; the caller never observes a reset station without its
// session or vice versa.
func (b *Board) ConfirmCheckout(stationID string, d CheckoutDetails) (models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.find(stationID)
	if err != nil {
		return models.Session{}, err
	}
	if st.Status != models.StatusBusy || st.CurrentSessionID == "" {
		return models.Session{}, fmt.Errorf("%w: %s", ErrNoActiveSession, stationID)
	}

	now := b.now()
	startTime := now
	durationMinutes := 0
	if st.StartTime != nil {
		startTime = *st.StartTime
		durationMinutes = int(now.Sub(startTime).Minutes())
	}

	sess := models.Session{
		ID:              st.CurrentSessionID,
		StationID:       st.ID,
		StationName:     st.Name,
		StartTime:       startTime,
		EndTime:         now,
		DurationMinutes: durationMinutes,
		SessionCost:     d.SessionCost,
		MatchCount:      d.MatchCount,
		MatchCost:       d.MatchCost,
		FoodCost:        d.FoodCost,
		TotalCost:       d.TotalCost,
		IsPaid:          true,
		Notes:           d.Notes,
	}

	b.sessions = append([]models.Session{sess}, b.sessions...)

	st.Status = models.StatusAvailable
	st.StartTime = nil
	st.TargetEndTime = nil
	st.CurrentSessionID = ""
	st.MatchCount = decimal.Zero

	b.mirrorStations()
	b.mirrorSessions()
	return sess, nil
}

// EditSession replaces a settled session with an operator correction.
func (b *Board) EditSession(updated models.Session) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.sessions {
		if b.sessions[i].ID == updated.ID {
			b.sessions[i] = updated
			b.mirrorSessions()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSessionNotFound, updated.ID)
}

// RequestDeleteSession registers a confirmation-gated delete. The
// session goes away only when the returned token is committed.
func (b *Board) RequestDeleteSession(sessionID string) (confirm.Action, error) {
	b.mu.Lock()
	found := false
	for i := range b.sessions {
		if b.sessions[i].ID == sessionID {
			found = true
			break
		}
	}
	b.mu.Unlock()

	if !found {
		return confirm.Action{}, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	return b.confirms.Request(
		"Delete session",
		"Permanently remove this session from the records?",
		true,
		"session.delete",
		sessionID,
		func() error { return b.deleteSession(sessionID) },
	), nil
}

func (b *Board) deleteSession(sessionID string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.sessions {
		if b.sessions[i].ID == sessionID {
			b.sessions = append(b.sessions[:i], b.sessions[i+1:]...)
			b.mirrorSessions()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}

// History returns the settled sessions for a station, most recent
// first. The join runs on the name captured at settlement time, so
// renaming a station does not reclassify old sessions.
func (b *Board) History(stationID string) ([]models.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st, err := b.find(stationID)
	if err != nil {
		return nil, err
	}

	var out []models.Session
	for _, s := range b.sessions {
		if s.StationName == st.Name {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndTime.After(out[j].EndTime) })
	return out, nil
}

// Stations returns a snapshot of the roster.
func (b *Board) Stations() []models.Station {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Station, len(b.stations))
	copy(out, b.stations)
	return out
}

// Sessions returns a snapshot of all settled sessions.
func (b *Board) Sessions() []models.Session {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Session, len(b.sessions))
	copy(out, b.sessions)
	return out
}

// LiveView is the tick-derived display state of a station. TimeUp is
// recomputed from the target end on every read and never persisted.
type LiveView struct {
	Station   models.Station  `json:"station"`
	Elapsed   time.Duration   `json:"-"`
	Remaining time.Duration   `json:"-"`
	TimeUp    bool            `json:"timeUp"`
	TimeCost  decimal.Decimal `json:"timeCost"`
	MatchCost decimal.Decimal `json:"matchCost"`
	TotalCost decimal.Decimal `json:"totalCost"`
}

// LiveViews derives the display state for every station at the current
// instant. Missed ticks self-correct because everything is recomputed
// from the stored timestamps.
func (b *Board) LiveViews() []LiveView {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	out := make([]LiveView, 0, len(b.stations))
	for _, st := range b.stations {
		v := LiveView{Station: st, TimeCost: decimal.Zero}
		if st.StartTime != nil {
			v.Elapsed = now.Sub(*st.StartTime)
			if st.TargetEndTime != nil {
				v.Remaining = st.TargetEndTime.Sub(now)
				if v.Remaining <= 0 {
					v.Remaining = 0
					v.TimeUp = true
				}
			}
			v.TimeCost = b.rates.TimeCost(billableElapsed(st, now))
		}
		v.MatchCost = b.rates.MatchCost(st.MatchCount, st.Type)
		v.TotalCost = v.TimeCost.Add(v.MatchCost)
		out = append(out, v)
	}
	return out
}

func (b *Board) mirrorStations() {
	snapshot := make([]models.Station, len(b.stations))
	copy(snapshot, b.stations)
	store.Mirror("stations", func() error { return b.db.ReplaceStations(snapshot) })
}

func (b *Board) mirrorSessions() {
	snapshot := make([]models.Session, len(b.sessions))
	copy(snapshot, b.sessions)
	store.Mirror("sessions", func() error { return b.db.ReplaceSessions(snapshot) })
}
