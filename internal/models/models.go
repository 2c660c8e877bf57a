package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type StationType string

const (
	StationPS5 StationType = "PS5"
	StationPS4 StationType = "PS4"
)

type StationStatus string

const (
	StatusAvailable StationStatus = "AVAILABLE"
	StatusBusy      StationStatus = "BUSY"
)

// Station is one physical console slot. It is mutated only through the
// floor engine; AVAILABLE implies no start time, no target end and a
// zero match counter.
type Station struct {
	ID               string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name             string        `json:"name"`
	Type             StationType   `gorm:"type:varchar(8)" json:"type"`
	Status           StationStatus `gorm:"type:varchar(16);index" json:"status"`
	CurrentSessionID string        `json:"currentSessionId,omitempty"`
	StartTime        *time.Time    `json:"startTime,omitempty"`
	TargetEndTime    *time.Time    `json:"targetEndTime,omitempty"`
	// MatchCount has half-match granularity, so it is a decimal, never
	// negative.
	MatchCount decimal.Decimal `gorm:"type:decimal(20,2)" json:"currentMatchCount"`
}

// Session is one settled billing cycle. Immutable except for explicit
// user corrections. StationName is captured at settlement time and is
// the join key for every later aggregation.
type Session struct {
	ID              string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	StationID       string          `gorm:"index" json:"stationId"`
	StationName     string          `gorm:"index" json:"stationName"`
	StartTime       time.Time       `json:"startTime"`
	EndTime         time.Time       `json:"endTime"`
	DurationMinutes int             `json:"durationMinutes"`
	SessionCost     decimal.Decimal `gorm:"type:decimal(20,2)" json:"sessionCost"`
	MatchCount      decimal.Decimal `gorm:"type:decimal(20,2)" json:"matchCount"`
	MatchCost       decimal.Decimal `gorm:"type:decimal(20,2)" json:"matchCost"`
	FoodCost        decimal.Decimal `gorm:"type:decimal(20,2)" json:"foodCost"`
	TotalCost       decimal.Decimal `gorm:"type:decimal(20,2)" json:"totalCost"`
	IsPaid          bool            `gorm:"default:true" json:"isPaid"`
	Notes           string          `json:"notes,omitempty"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return
}

type Expense struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Category    string          `gorm:"index" json:"category"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	Description string          `json:"description"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (e *Expense) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}

// CreditEntry is an open customer balance split by category. The entry
// is deleted once its total reaches zero; collection history lives in
// CreditTransaction records only. TotalAmount always equals
// PlayAmount + FoodAmount.
type CreditEntry struct {
	ID           string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CustomerName string          `gorm:"index" json:"customerName"`
	PlayAmount   decimal.Decimal `gorm:"type:decimal(20,2)" json:"playAmount"`
	FoodAmount   decimal.Decimal `gorm:"type:decimal(20,2)" json:"foodAmount"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(20,2)" json:"totalAmount"`
	// IsPaid is always false for open entries. Paid entries are removed
	// from the ledger outright, so nothing should filter on this flag.
	IsPaid    bool      `gorm:"default:false" json:"isPaid"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

func (c *CreditEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}

type CreditCategory string

const (
	CreditPlay CreditCategory = "PLAY"
	CreditFood CreditCategory = "FOOD"
)

// CreditTransaction is an append-only record of a collected payment.
type CreditTransaction struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreditID  string          `gorm:"index" json:"creditId"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	Type      CreditCategory  `gorm:"type:varchar(8);index" json:"type"`
	Timestamp time.Time       `json:"timestamp"`
}

func (t *CreditTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// StoreTransaction is an append-only retail sale, created only by cart
// checkout. ProductName may carry a "(xN)" quantity suffix.
type StoreTransaction struct {
	ID          string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProductName string          `json:"productName"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,2)" json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
}

func (t *StoreTransaction) BeforeCreate(tx *gorm.DB) (err error) {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return
}

// CartItem lives only between add-to-cart and checkout or clear; it is
// never persisted.
type CartItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Total     decimal.Decimal `json:"total"`
}

// DefaultStations is the roster seeded on first run.
func DefaultStations() []Station {
	return []Station{
		{ID: "1", Name: "Post 1", Type: StationPS5, Status: StatusAvailable, MatchCount: decimal.Zero},
		{ID: "2", Name: "Post 2", Type: StationPS5, Status: StatusAvailable, MatchCount: decimal.Zero},
		{ID: "3", Name: "Post 3", Type: StationPS5, Status: StatusAvailable, MatchCount: decimal.Zero},
		{ID: "4", Name: "Post 4", Type: StationPS4, Status: StatusAvailable, MatchCount: decimal.Zero},
	}
}
