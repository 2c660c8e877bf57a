// Package httpapi exposes every data operation of the manager over a
// small REST surface. Inputs and outputs are the plain records of the
// models package; monetary fields travel as decimal strings.
package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/config"
	"lartiste-manager/internal/confirm"
	"lartiste-manager/internal/expense"
	"lartiste-manager/internal/floor"
	"lartiste-manager/internal/ledger"
	"lartiste-manager/internal/models"
	"lartiste-manager/internal/pricing"
	"lartiste-manager/internal/report"
	"lartiste-manager/internal/storefront"
)

type Handlers struct {
	cfg      config.App
	rates    pricing.Rates
	board    *floor.Board
	ledger   *ledger.Ledger
	shop     *storefront.Shop
	expenses *expense.Book
	confirms *confirm.Registry
}

func New(cfg config.App, board *floor.Board, led *ledger.Ledger, shop *storefront.Shop, expenses *expense.Book, confirms *confirm.Registry) *Handlers {
	return &Handlers{
		cfg: cfg,
		rates: pricing.Rates{
			HourlyRate:    cfg.HourlyRateDec(),
			MatchPricePS5: cfg.MatchPricePS5Dec(),
			MatchPricePS4: cfg.MatchPricePS4Dec(),
		},
		board:    board,
		ledger:   led,
		shop:     shop,
		expenses: expenses,
		confirms: confirms,
	}
}

func (h *Handlers) Register(e *echo.Echo) {
	e.GET("/stations", h.ListStations)
	e.POST("/stations/:id/start", h.StartStation)
	e.POST("/stations/:id/matches/add", h.AddMatch)
	e.POST("/stations/:id/matches/remove", h.RemoveMatch)
	e.GET("/stations/:id/checkout", h.CheckoutPreview)
	e.POST("/stations/:id/checkout", h.ConfirmCheckout)
	e.GET("/stations/:id/history", h.StationHistory)

	e.PUT("/sessions/:id", h.EditSession)
	e.DELETE("/sessions/:id", h.DeleteSession)

	e.POST("/expenses", h.UpsertExpense)
	e.DELETE("/expenses/:id", h.DeleteExpense)
	e.GET("/expenses", h.ListExpenses)

	e.GET("/credits", h.ListCredits)
	e.POST("/credits", h.CreateDebt)
	e.POST("/credits/:id/add", h.AddDebt)
	e.POST("/credits/:id/pay-full", h.PayFull)
	e.POST("/credits/:id/pay-partial", h.PayPartial)
	e.DELETE("/credits/:id", h.DeleteCredit)

	e.GET("/cart", h.ListCart)
	e.POST("/cart", h.AddToCart)
	e.PATCH("/cart/:id", h.UpdateCartLine)
	e.DELETE("/cart/:id", h.RemoveCartLine)
	e.POST("/cart/checkout", h.CheckoutCart)
	e.DELETE("/cart", h.ClearCart)
	e.DELETE("/store-transactions/:id", h.DeleteStoreTransaction)
	e.GET("/store-transactions", h.ListStoreTransactions)

	e.GET("/stats/daily", h.DailyStats)
	e.GET("/stats/stations", h.StationAggregates)
	e.GET("/quick-prices", h.QuickPrices)

	e.GET("/confirmations", h.PendingConfirmations)
	e.POST("/confirmations/:token/commit", h.CommitConfirmation)
	e.POST("/confirmations/:token/cancel", h.CancelConfirmation)
}

// fail maps engine errors onto HTTP statuses: unknown targets are 404,
// rejected input is 400, everything else is a 500.
func fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, floor.ErrStationNotFound),
		errors.Is(err, floor.ErrSessionNotFound),
		errors.Is(err, ledger.ErrEntryNotFound),
		errors.Is(err, expense.ErrNotFound),
		errors.Is(err, storefront.ErrLineNotFound),
		errors.Is(err, storefront.ErrSaleNotFound),
		errors.Is(err, confirm.ErrUnknownToken):
		status = http.StatusNotFound
	case errors.Is(err, floor.ErrNoActiveSession):
		status = http.StatusConflict
	case errors.Is(err, floor.ErrBadMatchCount),
		errors.Is(err, ledger.ErrBlankCustomer),
		errors.Is(err, ledger.ErrNoAmount),
		errors.Is(err, ledger.ErrNegativeAmount),
		errors.Is(err, ledger.ErrPaymentTooLarge),
		errors.Is(err, ledger.ErrNothingToCollect),
		errors.Is(err, expense.ErrBadAmount),
		errors.Is(err, expense.ErrBlankCategory),
		errors.Is(err, storefront.ErrBlankProduct),
		errors.Is(err, storefront.ErrBadQuantity),
		errors.Is(err, storefront.ErrNoAmount):
		status = http.StatusBadRequest
	default:
		slog.Error("request failed", "error", err)
	}
	return c.JSON(status, map[string]string{"error": err.Error()})
}

func (h *Handlers) ListStations(c echo.Context) error {
	return c.JSON(http.StatusOK, h.board.LiveViews())
}

func (h *Handlers) StartStation(c echo.Context) error {
	var req struct {
		DurationMinutes int `json:"durationMinutes"`
		// Budget is an alternative to an explicit duration: the prepaid
		// amount is converted to minutes at the hourly rate.
		Budget decimal.Decimal `json:"budget"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.DurationMinutes == 0 && req.Budget.IsPositive() {
		req.DurationMinutes = h.rates.PriceToMinutes(req.Budget)
	}

	st, err := h.board.Start(c.Param("id"), req.DurationMinutes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

type matchRequest struct {
	Count decimal.Decimal `json:"count"`
}

func (r matchRequest) countOrDefault() decimal.Decimal {
	if r.Count.IsZero() {
		return decimal.NewFromInt(1)
	}
	return r.Count
}

func (h *Handlers) AddMatch(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	st, err := h.board.AddMatch(c.Param("id"), req.countOrDefault())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handlers) RemoveMatch(c echo.Context) error {
	var req matchRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	st, err := h.board.RemoveMatch(c.Param("id"), req.countOrDefault())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handlers) CheckoutPreview(c echo.Context) error {
	preview, err := h.board.Preview(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, preview)
}

func (h *Handlers) ConfirmCheckout(c echo.Context) error {
	var details floor.CheckoutDetails
	if err := c.Bind(&details); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	sess, err := h.board.ConfirmCheckout(c.Param("id"), details)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handlers) StationHistory(c echo.Context) error {
	history, err := h.board.History(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

func (h *Handlers) EditSession(c echo.Context) error {
	var sess models.Session
	if err := c.Bind(&sess); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	sess.ID = c.Param("id")

	if err := h.board.EditSession(sess); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sess)
}

func (h *Handlers) DeleteSession(c echo.Context) error {
	action, err := h.board.RequestDeleteSession(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusAccepted, action)
}

func (h *Handlers) UpsertExpense(c echo.Context) error {
	var req struct {
		ID          string          `json:"id"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	exp, err := h.expenses.Upsert(req.ID, req.Category, req.Amount, req.Description)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, exp)
}

func (h *Handlers) DeleteExpense(c echo.Context) error {
	if err := h.expenses.Delete(c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) ListExpenses(c echo.Context) error {
	return c.JSON(http.StatusOK, h.expenses.Expenses())
}

func (h *Handlers) ListCredits(c echo.Context) error {
	play, food := h.ledger.OutstandingTotals()
	return c.JSON(http.StatusOK, map[string]any{
		"entries":         h.ledger.Entries(),
		"outstandingPlay": play,
		"outstandingFood": food,
	})
}

func (h *Handlers) CreateDebt(c echo.Context) error {
	var req struct {
		CustomerName string          `json:"customerName"`
		PlayAmount   decimal.Decimal `json:"playAmount"`
		FoodAmount   decimal.Decimal `json:"foodAmount"`
		Notes        string          `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	entry, err := h.ledger.CreateDebt(req.CustomerName, req.PlayAmount, req.FoodAmount, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (h *Handlers) AddDebt(c echo.Context) error {
	var req struct {
		PlayAmount decimal.Decimal `json:"playAmount"`
		FoodAmount decimal.Decimal `json:"foodAmount"`
		Notes      string          `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	entry, err := h.ledger.AddDebt(c.Param("id"), req.PlayAmount, req.FoodAmount, req.Notes)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handlers) PayFull(c echo.Context) error {
	action, err := h.ledger.RequestPayFull(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusAccepted, action)
}

func (h *Handlers) PayPartial(c echo.Context) error {
	var req struct {
		PlayPayment decimal.Decimal `json:"playPayment"`
		FoodPayment decimal.Decimal `json:"foodPayment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	remaining, err := h.ledger.PayPartial(c.Param("id"), req.PlayPayment, req.FoodPayment)
	if err != nil {
		return fail(c, err)
	}
	if remaining == nil {
		// Balance hit zero: the entry left the open ledger.
		return c.JSON(http.StatusOK, map[string]bool{"settled": true})
	}
	return c.JSON(http.StatusOK, remaining)
}

func (h *Handlers) DeleteCredit(c echo.Context) error {
	action, err := h.ledger.RequestDelete(c.Param("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusAccepted, action)
}

func (h *Handlers) ListCart(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"items": h.shop.Cart(),
		"total": h.shop.CartTotal(),
	})
}

func (h *Handlers) AddToCart(c echo.Context) error {
	var req struct {
		ProductName string          `json:"productName"`
		Quantity    int             `json:"quantity"`
		UnitPrice   decimal.Decimal `json:"unitPrice"`
		TotalAmount decimal.Decimal `json:"totalAmount"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	item, err := h.shop.AddToCart(req.ProductName, req.Quantity, req.UnitPrice, req.TotalAmount)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handlers) UpdateCartLine(c echo.Context) error {
	var req struct {
		QuantityDelta int `json:"quantityDelta"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	item, err := h.shop.UpdateLine(c.Param("id"), req.QuantityDelta)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *Handlers) RemoveCartLine(c echo.Context) error {
	if err := h.shop.RemoveLine(c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) CheckoutCart(c echo.Context) error {
	committed := h.shop.Checkout()
	return c.JSON(http.StatusOK, map[string]any{
		"transactions": committed,
		"count":        len(committed),
	})
}

func (h *Handlers) ClearCart(c echo.Context) error {
	h.shop.ClearCart()
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) DeleteStoreTransaction(c echo.Context) error {
	if err := h.shop.DeleteSale(c.Param("id")); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handlers) ListStoreTransactions(c echo.Context) error {
	return c.JSON(http.StatusOK, h.shop.Sales())
}

func (h *Handlers) DailyStats(c echo.Context) error {
	stats := report.Daily(
		h.board.Stations(),
		h.board.Sessions(),
		h.expenses.Expenses(),
		h.ledger.Transactions(),
		h.shop.Sales(),
	)
	return c.JSON(http.StatusOK, stats)
}

func (h *Handlers) StationAggregates(c echo.Context) error {
	return c.JSON(http.StatusOK, report.PerStation(h.board.Stations(), h.board.Sessions()))
}

type durationQuote struct {
	Minutes int             `json:"minutes"`
	Price   decimal.Decimal `json:"price"`
}

func (h *Handlers) QuickPrices(c echo.Context) error {
	quotes := make([]durationQuote, 0, len(config.QuickDurations))
	for _, m := range config.QuickDurations {
		quotes = append(quotes, durationQuote{Minutes: m, Price: h.rates.MinutesToPrice(m)})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"prices":     config.QuickPrices,
		"durations":  quotes,
		"categories": config.ExpenseCategories,
		"currency":   h.cfg.CurrencyCode,
	})
}

func (h *Handlers) PendingConfirmations(c echo.Context) error {
	return c.JSON(http.StatusOK, h.confirms.Pending())
}

func (h *Handlers) CommitConfirmation(c echo.Context) error {
	if err := h.confirms.Commit(c.Param("token")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "applied"})
}

func (h *Handlers) CancelConfirmation(c echo.Context) error {
	if err := h.confirms.Cancel(c.Param("token")); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "discarded"})
}
