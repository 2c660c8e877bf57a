// Package ledger tracks open customer debts by category. An entry only
// exists while something is owed: payments that clear the balance
// delete the entry, and collection history is kept in the append-only
// transaction log instead.
package ledger

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/confirm"
	"lartiste-manager/internal/models"
	"lartiste-manager/internal/store"
)

var (
	ErrEntryNotFound    = errors.New("credit entry not found")
	ErrBlankCustomer    = errors.New("customer name must not be blank")
	ErrNoAmount         = errors.New("at least one debt amount must be positive")
	ErrNegativeAmount   = errors.New("debt amounts must not be negative")
	ErrPaymentTooLarge  = errors.New("payment exceeds remaining balance")
	ErrNothingToCollect = errors.New("payment amounts are zero")
)

// Persister is the slice of the store the ledger mirrors into.
type Persister interface {
	ReplaceCredits([]models.CreditEntry) error
	ReplaceCreditTransactions([]models.CreditTransaction) error
}

type Ledger struct {
	mu       sync.Mutex
	entries  []models.CreditEntry
	log      []models.CreditTransaction
	db       Persister
	confirms *confirm.Registry
	now      func() time.Time
}

func New(entries []models.CreditEntry, log []models.CreditTransaction, db Persister, confirms *confirm.Registry) *Ledger {
	return &Ledger{
		entries:  entries,
		log:      log,
		db:       db,
		confirms: confirms,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (l *Ledger) SetClock(now func() time.Time) {
	l.now = now
}

func (l *Ledger) indexOf(entryID string) int {
	for i := range l.entries {
		if l.entries[i].ID == entryID {
			return i
		}
	}
	return -1
}

// CreateDebt opens a new entry. The customer name must be non-blank
// and at least one category must carry a positive amount.
func (l *Ledger) CreateDebt(customerName string, playAmount, foodAmount decimal.Decimal, notes string) (models.CreditEntry, error) {
	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return models.CreditEntry{}, ErrBlankCustomer
	}
	if playAmount.IsNegative() || foodAmount.IsNegative() {
		return models.CreditEntry{}, ErrNegativeAmount
	}
	if playAmount.IsZero() && foodAmount.IsZero() {
		return models.CreditEntry{}, ErrNoAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	entry := models.CreditEntry{
		ID:           uuid.New().String(),
		CustomerName: customerName,
		PlayAmount:   playAmount,
		FoodAmount:   foodAmount,
		TotalAmount:  playAmount.Add(foodAmount),
		IsPaid:       false,
		Timestamp:    l.now(),
		Notes:        notes,
	}
	l.entries = append([]models.CreditEntry{entry}, l.entries...)

	l.mirrorEntries()
	return entry, nil
}

// AddDebt increases an existing entry's balances; it never decreases
// them. Notes are appended with a separator, and the timestamp is
// bumped to mark recent activity.
func (l *Ledger) AddDebt(entryID string, playAmount, foodAmount decimal.Decimal, notes string) (models.CreditEntry, error) {
	if playAmount.IsNegative() || foodAmount.IsNegative() {
		return models.CreditEntry{}, ErrNegativeAmount
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(entryID)
	if i < 0 {
		return models.CreditEntry{}, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}

	e := &l.entries[i]
	e.PlayAmount = e.PlayAmount.Add(playAmount)
	e.FoodAmount = e.FoodAmount.Add(foodAmount)
	e.TotalAmount = e.PlayAmount.Add(e.FoodAmount)
	e.IsPaid = false
	e.Timestamp = l.now()
	if notes != "" {
		if e.Notes != "" {
			e.Notes = e.Notes + " | " + notes
		} else {
			e.Notes = notes
		}
	}

	l.mirrorEntries()
	return *e, nil
}

// RequestPayFull registers a confirmation-gated full payment: on
// commit, one transaction per nonzero category is recorded for the
// entire remaining balance and the entry is deleted.
func (l *Ledger) RequestPayFull(entryID string) (confirm.Action, error) {
	l.mu.Lock()
	i := l.indexOf(entryID)
	l.mu.Unlock()

	if i < 0 {
		return confirm.Action{}, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}

	return l.confirms.Request(
		"Confirm full payment",
		"Collect the entire remaining balance and remove the customer from the debt list?",
		false,
		"credit.payfull",
		entryID,
		func() error { return l.payFull(entryID) },
	), nil
}

func (l *Ledger) payFull(entryID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(entryID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}

	e := l.entries[i]
	l.record(e.ID, e.PlayAmount, e.FoodAmount)
	l.entries = append(l.entries[:i], l.entries[i+1:]...)

	l.mirrorEntries()
	l.mirrorLog()
	return nil
}

// PayPartial collects part of an entry's balances. Each payment must
// not exceed its category's remaining balance; the call is rejected
// unchanged otherwise. An entry whose total reaches exactly zero is
// deleted, same as a full payment.
func (l *Ledger) PayPartial(entryID string, playPayment, foodPayment decimal.Decimal) (remaining *models.CreditEntry, err error) {
	if playPayment.IsNegative() || foodPayment.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if playPayment.IsZero() && foodPayment.IsZero() {
		return nil, ErrNothingToCollect
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(entryID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}

	e := &l.entries[i]
	if playPayment.GreaterThan(e.PlayAmount) || foodPayment.GreaterThan(e.FoodAmount) {
		return nil, ErrPaymentTooLarge
	}

	l.record(e.ID, playPayment, foodPayment)

	e.PlayAmount = e.PlayAmount.Sub(playPayment)
	e.FoodAmount = e.FoodAmount.Sub(foodPayment)
	e.TotalAmount = e.PlayAmount.Add(e.FoodAmount)

	if e.TotalAmount.IsZero() {
		l.entries = append(l.entries[:i], l.entries[i+1:]...)
		l.mirrorEntries()
		l.mirrorLog()
		return nil, nil
	}

	out := *e
	l.mirrorEntries()
	l.mirrorLog()
	return &out, nil
}

// record appends one transaction per nonzero category.
func (l *Ledger) record(creditID string, play, food decimal.Decimal) {
	now := l.now()
	if play.IsPositive() {
		l.log = append([]models.CreditTransaction{{
			ID:        uuid.New().String(),
			CreditID:  creditID,
			Amount:    play,
			Type:      models.CreditPlay,
			Timestamp: now,
		}}, l.log...)
	}
	if food.IsPositive() {
		l.log = append([]models.CreditTransaction{{
			ID:        uuid.New().String(),
			CreditID:  creditID,
			Amount:    food,
			Type:      models.CreditFood,
			Timestamp: now,
		}}, l.log...)
	}
}

// RequestDelete registers a confirmation-gated administrative
// write-off: the entry is removed with no transaction recorded.
func (l *Ledger) RequestDelete(entryID string) (confirm.Action, error) {
	l.mu.Lock()
	i := l.indexOf(entryID)
	l.mu.Unlock()

	if i < 0 {
		return confirm.Action{}, fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}

	return l.confirms.Request(
		"Delete record permanently",
		"Remove this record from the list? This cannot be undone.",
		true,
		"credit.delete",
		entryID,
		func() error { return l.deleteEntry(entryID) },
	), nil
}

func (l *Ledger) deleteEntry(entryID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(entryID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, entryID)
	}
	l.entries = append(l.entries[:i], l.entries[i+1:]...)
	l.mirrorEntries()
	return nil
}

// Entries returns a snapshot of the open debts.
func (l *Ledger) Entries() []models.CreditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.CreditEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Transactions returns a snapshot of the collection log.
func (l *Ledger) Transactions() []models.CreditTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]models.CreditTransaction, len(l.log))
	copy(out, l.log)
	return out
}

// OutstandingTotals sums the open balances per category.
func (l *Ledger) OutstandingTotals() (play, food decimal.Decimal) {
	l.mu.Lock()
	defer l.mu.Unlock()

	play, food = decimal.Zero, decimal.Zero
	for _, e := range l.entries {
		play = play.Add(e.PlayAmount)
		food = food.Add(e.FoodAmount)
	}
	return play, food
}

func (l *Ledger) mirrorEntries() {
	snapshot := make([]models.CreditEntry, len(l.entries))
	copy(snapshot, l.entries)
	store.Mirror("credits", func() error { return l.db.ReplaceCredits(snapshot) })
}

func (l *Ledger) mirrorLog() {
	snapshot := make([]models.CreditTransaction, len(l.log))
	copy(snapshot, l.log)
	store.Mirror("creditTransactions", func() error { return l.db.ReplaceCreditTransactions(snapshot) })
}
