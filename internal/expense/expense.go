// Package expense keeps the day's expense records. Expenses are plain
// operator input: created and edited in place, deleted directly
// (the original flow skips confirmation here).
package expense

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/models"
	"lartiste-manager/internal/store"
)

var (
	ErrNotFound      = errors.New("expense not found")
	ErrBadAmount     = errors.New("expense amount must be positive")
	ErrBlankCategory = errors.New("expense category must not be blank")
)

// Persister is the slice of the store the book mirrors into.
type Persister interface {
	ReplaceExpenses([]models.Expense) error
}

type Book struct {
	mu       sync.Mutex
	expenses []models.Expense
	db       Persister
	now      func() time.Time
}

func New(expenses []models.Expense, db Persister) *Book {
	return &Book{
		expenses: expenses,
		db:       db,
		now:      time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (b *Book) SetClock(now func() time.Time) {
	b.now = now
}

// Upsert creates a new expense when ID is empty, otherwise edits the
// existing one in place (keeping its original timestamp).
func (b *Book) Upsert(id, category string, amount decimal.Decimal, description string) (models.Expense, error) {
	if !amount.IsPositive() {
		return models.Expense{}, ErrBadAmount
	}
	if category == "" {
		return models.Expense{}, ErrBlankCategory
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if id != "" {
		for i := range b.expenses {
			if b.expenses[i].ID == id {
				b.expenses[i].Amount = amount
				b.expenses[i].Category = category
				b.expenses[i].Description = description
				b.mirror()
				return b.expenses[i], nil
			}
		}
		return models.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	exp := models.Expense{
		ID:          uuid.New().String(),
		Category:    category,
		Amount:      amount,
		Description: description,
		Timestamp:   b.now(),
	}
	b.expenses = append([]models.Expense{exp}, b.expenses...)
	b.mirror()
	return exp, nil
}

// Delete removes an expense outright.
func (b *Book) Delete(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i := range b.expenses {
		if b.expenses[i].ID == id {
			b.expenses = append(b.expenses[:i], b.expenses[i+1:]...)
			b.mirror()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Expenses returns a snapshot of the records.
func (b *Book) Expenses() []models.Expense {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]models.Expense, len(b.expenses))
	copy(out, b.expenses)
	return out
}

func (b *Book) mirror() {
	snapshot := make([]models.Expense, len(b.expenses))
	copy(snapshot, b.expenses)
	store.Mirror("expenses", func() error { return b.db.ReplaceExpenses(snapshot) })
}
