// Package storefront accumulates retail line items in a transient cart
// and commits them to store transactions in one atomic checkout.
package storefront

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/models"
	"lartiste-manager/internal/store"
)

var (
	ErrBlankProduct = errors.New("product name must not be blank")
	ErrBadQuantity  = errors.New("quantity must be a positive integer")
	ErrNoAmount     = errors.New("amount must be positive")
	ErrLineNotFound = errors.New("cart line not found")
	ErrSaleNotFound = errors.New("store transaction not found")
)

// unitPriceEpsilon tolerates floating-point noise in quick-pick prices
// when deciding whether two cart lines are the same product.
var unitPriceEpsilon = decimal.NewFromFloat(0.01)

// Persister is the slice of the store the sales log mirrors into.
type Persister interface {
	ReplaceStoreTransactions([]models.StoreTransaction) error
}

type Shop struct {
	mu    sync.Mutex
	cart  []models.CartItem
	sales []models.StoreTransaction
	db    Persister
	now   func() time.Time
}

func New(sales []models.StoreTransaction, db Persister) *Shop {
	return &Shop{
		sales: sales,
		db:    db,
		now:   time.Now,
	}
}

// SetClock overrides the time source. Used by tests.
func (s *Shop) SetClock(now func() time.Time) {
	s.now = now
}

// AddToCart appends a line, or merges into an existing line when the
// product name and unit price match. When unitPrice is zero the unit
// price is derived from totalAmount / quantity (manually typed total).
func (s *Shop) AddToCart(productName string, quantity int, unitPrice, totalAmount decimal.Decimal) (models.CartItem, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return models.CartItem{}, ErrBlankProduct
	}
	if quantity < 1 {
		return models.CartItem{}, ErrBadQuantity
	}

	qty := decimal.NewFromInt(int64(quantity))
	if unitPrice.IsZero() {
		unitPrice = totalAmount.Div(qty)
	}
	if !unitPrice.IsPositive() {
		return models.CartItem{}, ErrNoAmount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		line := &s.cart[i]
		if line.Name == productName && line.UnitPrice.Sub(unitPrice).Abs().LessThan(unitPriceEpsilon) {
			line.Quantity += quantity
			line.Total = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			return *line, nil
		}
	}

	item := models.CartItem{
		ID:        uuid.New().String(),
		Name:      productName,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Total:     unitPrice.Mul(qty),
	}
	s.cart = append(s.cart, item)
	return item, nil
}

// UpdateLine adjusts a line's quantity by delta, clamped at one.
func (s *Shop) UpdateLine(lineID string, quantityDelta int) (models.CartItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		line := &s.cart[i]
		if line.ID == lineID {
			line.Quantity += quantityDelta
			if line.Quantity < 1 {
				line.Quantity = 1
			}
			line.Total = line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
			return *line, nil
		}
	}
	return models.CartItem{}, fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// RemoveLine drops a line entirely.
func (s *Shop) RemoveLine(lineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.cart {
		if s.cart[i].ID == lineID {
			s.cart = append(s.cart[:i], s.cart[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrLineNotFound, lineID)
}

// Checkout commits every cart line as a store transaction, all sharing
// one commit timestamp, and clears the cart in the same step. An empty
// cart is a no-op.
func (s *Shop) Checkout() []models.StoreTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.cart) == 0 {
		return nil
	}

	now := s.now()
	committed := make([]models.StoreTransaction, 0, len(s.cart))
	for _, line := range s.cart {
		label := line.Name
		if line.Quantity > 1 {
			label = fmt.Sprintf("%s (x%d)", line.Name, line.Quantity)
		}
		committed = append(committed, models.StoreTransaction{
			ID:          uuid.New().String(),
			ProductName: label,
			Amount:      line.Total,
			Timestamp:   now,
		})
	}

	s.sales = append(committed, s.sales...)
	s.cart = nil

	s.mirrorSales()
	return committed
}

// ClearCart discards all pending lines without committing anything.
func (s *Shop) ClearCart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = nil
}

// DeleteSale removes a committed store transaction (an operator
// correction; the original flow does this without confirmation).
func (s *Shop) DeleteSale(saleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.sales {
		if s.sales[i].ID == saleID {
			s.sales = append(s.sales[:i], s.sales[i+1:]...)
			s.mirrorSales()
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrSaleNotFound, saleID)
}

// Cart returns a snapshot of the pending lines.
func (s *Shop) Cart() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CartItem, len(s.cart))
	copy(out, s.cart)
	return out
}

// CartTotal sums the pending line totals.
func (s *Shop) CartTotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, line := range s.cart {
		total = total.Add(line.Total)
	}
	return total
}

// Sales returns a snapshot of the committed transactions.
func (s *Shop) Sales() []models.StoreTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.StoreTransaction, len(s.sales))
	copy(out, s.sales)
	return out
}

func (s *Shop) mirrorSales() {
	snapshot := make([]models.StoreTransaction, len(s.sales))
	copy(snapshot, s.sales)
	store.Mirror("storeTransactions", func() error { return s.db.ReplaceStoreTransactions(snapshot) })
}
