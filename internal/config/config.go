package config

import (
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// App holds the runtime configuration for the lounge manager.
// All values can be overridden through the environment.
type App struct {
	// Pricing
	HourlyRate    float64 `envconfig:"HOURLY_RATE" default:"20"`
	MatchPricePS5 float64 `envconfig:"MATCH_PRICE_PS5" default:"5"`
	MatchPricePS4 float64 `envconfig:"MATCH_PRICE_PS4" default:"4"`
	CurrencyCode  string  `envconfig:"CURRENCY_CODE" default:"MAD"`

	// Storage
	DBPath string `envconfig:"DB_PATH" default:"lartiste.db"`

	// Network
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// Terminal UI refresh interval in seconds.
	UITickSeconds int `envconfig:"UI_TICK_SECONDS" default:"1"`
}

// ExpenseCategories is the fixed set of expense categories.
var ExpenseCategories = []string{
	"Drinks & Snacks",
	"Maintenance",
	"Utilities",
	"Other",
}

// QuickPrices are the unit prices offered by quick-pick buttons in the
// store form.
var QuickPrices = []float64{0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5, 6, 7, 8, 9, 10, 15, 20}

// QuickDurations are the fixed session lengths, in minutes, offered
// when starting a countdown.
var QuickDurations = []int{15, 30, 45, 60, 90, 120}

func Load() (App, error) {
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

func (c App) HourlyRateDec() decimal.Decimal {
	return decimal.NewFromFloat(c.HourlyRate)
}

func (c App) MatchPricePS5Dec() decimal.Decimal {
	return decimal.NewFromFloat(c.MatchPricePS5)
}

func (c App) MatchPricePS4Dec() decimal.Decimal {
	return decimal.NewFromFloat(c.MatchPricePS4)
}
