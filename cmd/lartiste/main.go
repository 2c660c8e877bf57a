package main

import (
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"lartiste-manager/internal/config"
	"lartiste-manager/internal/confirm"
	"lartiste-manager/internal/expense"
	"lartiste-manager/internal/floor"
	"lartiste-manager/internal/httpapi"
	"lartiste-manager/internal/ledger"
	"lartiste-manager/internal/pricing"
	"lartiste-manager/internal/store"
	"lartiste-manager/internal/storefront"
	"lartiste-manager/internal/ui"
)

func main() {
	headless := flag.Bool("headless", false, "run the HTTP API without the terminal dashboard")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := db.SeedDefaultStations(); err != nil {
		log.Fatal(err)
	}

	stations, err := db.LoadStations()
	if err != nil {
		log.Fatal(err)
	}
	sessions, err := db.LoadSessions()
	if err != nil {
		log.Fatal(err)
	}
	expenses, err := db.LoadExpenses()
	if err != nil {
		log.Fatal(err)
	}
	credits, err := db.LoadCredits()
	if err != nil {
		log.Fatal(err)
	}
	creditLog, err := db.LoadCreditTransactions()
	if err != nil {
		log.Fatal(err)
	}
	sales, err := db.LoadStoreTransactions()
	if err != nil {
		log.Fatal(err)
	}

	rates := pricing.Rates{
		HourlyRate:    cfg.HourlyRateDec(),
		MatchPricePS5: cfg.MatchPricePS5Dec(),
		MatchPricePS4: cfg.MatchPricePS4Dec(),
	}

	confirms := confirm.NewRegistry()
	board := floor.NewBoard(rates, stations, sessions, db, confirms)
	led := ledger.New(credits, creditLog, db, confirms)
	shop := storefront.New(sales, db)
	book := expense.New(expenses, db)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	handlers := httpapi.New(cfg, board, led, shop, book, confirms)
	handlers.Register(e)

	go func() {
		if err := e.Start(cfg.HTTPAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed to start:", err)
		}
	}()
	slog.Info("lounge manager up", "addr", cfg.HTTPAddr, "db", cfg.DBPath)

	if *headless {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		return
	}

	dashboard := ui.NewDashboard(cfg, board, led, shop, book)
	if err := dashboard.Run(); err != nil {
		log.Fatal(err)
	}
}
