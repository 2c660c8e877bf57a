// Package store mirrors the in-memory ledgers into an embedded sqlite
// database. Saves are full-snapshot replacements per entity kind, so a
// failed write is healed by the next one; in-memory state stays
// authoritative either way.
package store

import (
	"fmt"
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"lartiste-manager/internal/models"
)

type Store struct {
	db *gorm.DB
}

func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %s: %w", path, err)
	}

	err = db.AutoMigrate(
		&models.Station{},
		&models.Session{},
		&models.Expense{},
		&models.CreditEntry{},
		&models.CreditTransaction{},
		&models.StoreTransaction{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Store{db: db}, nil
}

// replaceAll swaps the whole table for the given snapshot in one
// transaction.
func replaceAll[T any](db *gorm.DB, rows []T) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var zero T
		if err := tx.Where("1 = 1").Delete(&zero).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
}

func loadAll[T any](db *gorm.DB) ([]T, error) {
	var rows []T
	if err := db.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) LoadStations() ([]models.Station, error) {
	return loadAll[models.Station](s.db)
}

func (s *Store) ReplaceStations(rows []models.Station) error {
	return replaceAll(s.db, rows)
}

func (s *Store) LoadSessions() ([]models.Session, error) {
	return loadAll[models.Session](s.db)
}

func (s *Store) ReplaceSessions(rows []models.Session) error {
	return replaceAll(s.db, rows)
}

func (s *Store) LoadExpenses() ([]models.Expense, error) {
	return loadAll[models.Expense](s.db)
}

func (s *Store) ReplaceExpenses(rows []models.Expense) error {
	return replaceAll(s.db, rows)
}

func (s *Store) LoadCredits() ([]models.CreditEntry, error) {
	return loadAll[models.CreditEntry](s.db)
}

func (s *Store) ReplaceCredits(rows []models.CreditEntry) error {
	return replaceAll(s.db, rows)
}

func (s *Store) LoadCreditTransactions() ([]models.CreditTransaction, error) {
	return loadAll[models.CreditTransaction](s.db)
}

func (s *Store) ReplaceCreditTransactions(rows []models.CreditTransaction) error {
	return replaceAll(s.db, rows)
}

func (s *Store) LoadStoreTransactions() ([]models.StoreTransaction, error) {
	return loadAll[models.StoreTransaction](s.db)
}

func (s *Store) ReplaceStoreTransactions(rows []models.StoreTransaction) error {
	return replaceAll(s.db, rows)
}

// SeedDefaultStations inserts the default roster when the stations
// table is empty, so a fresh database starts with a usable floor.
func (s *Store) SeedDefaultStations() error {
	var count int64
	if err := s.db.Model(&models.Station{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	roster := models.DefaultStations()
	return s.db.Create(&roster).Error
}

// Mirror wraps a replace call so engines can persist without caring
// about the outcome: failures are logged and swallowed.
func Mirror(kind string, save func() error) {
	if err := save(); err != nil {
		slog.Error("persistence mirror failed", "kind", kind, "error", err)
	}
}
