// Package ui renders the operator dashboard in the terminal: one panel
// per station with its live timer and charges, plus a daily totals
// footer. The refresh tick only reads derived views; every mutation
// goes through the HTTP API.
package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/shopspring/decimal"

	"lartiste-manager/internal/config"
	"lartiste-manager/internal/expense"
	"lartiste-manager/internal/floor"
	"lartiste-manager/internal/ledger"
	"lartiste-manager/internal/models"
	"lartiste-manager/internal/report"
	"lartiste-manager/internal/storefront"
)

type Dashboard struct {
	cfg      config.App
	board    *floor.Board
	ledger   *ledger.Ledger
	shop     *storefront.Shop
	expenses *expense.Book

	app      *tview.Application
	mainFlex *tview.Flex
	footer   *tview.TextView
}

func NewDashboard(cfg config.App, board *floor.Board, led *ledger.Ledger, shop *storefront.Shop, expenses *expense.Book) *Dashboard {
	d := &Dashboard{
		cfg:      cfg,
		board:    board,
		ledger:   led,
		shop:     shop,
		expenses: expenses,
		app:      tview.NewApplication(),
		mainFlex: tview.NewFlex().SetDirection(tview.FlexColumn),
		footer:   tview.NewTextView().SetTextAlign(tview.AlignCenter),
	}
	return d
}

// Run blocks until the operator exits with Esc.
func (d *Dashboard) Run() error {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			d.app.Stop()
		}
		return event
	})

	hint := tview.NewTextView().
		SetText(" [ESC] Exit | Mutations via HTTP API ").
		SetTextAlign(tview.AlignCenter).
		SetTextColor(tcell.ColorYellow)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(d.mainFlex, 0, 1, true).
		AddItem(d.footer, 1, 0, false).
		AddItem(hint, 1, 0, false)

	interval := time.Duration(d.cfg.UITickSeconds) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			d.refresh()
		}
	}()
	go d.refresh()

	return d.app.SetRoot(root, true).Run()
}

func (d *Dashboard) refresh() {
	views := d.board.LiveViews()
	stats := report.Daily(
		d.board.Stations(),
		d.board.Sessions(),
		d.expenses.Expenses(),
		d.ledger.Transactions(),
		d.shop.Sales(),
	)

	d.app.QueueUpdateDraw(func() {
		d.mainFlex.Clear()

		for _, v := range views {
			col := tview.NewFlex().SetDirection(tview.FlexRow)
			col.SetBorder(true).
				SetTitle(fmt.Sprintf(" %s (%s) ", v.Station.Name, v.Station.Type)).
				SetBorderAttributes(tcell.AttrBold).
				SetBorderPadding(0, 0, 1, 1)
			if v.TimeUp {
				col.SetBorderColor(tcell.ColorOrange)
			} else if v.Station.Status == models.StatusBusy {
				col.SetBorderColor(tcell.ColorRed)
			} else {
				col.SetBorderColor(tcell.ColorGreen)
			}

			table := tview.NewTable().SetBorders(false)
			row := 0
			put := func(label, value string, color tcell.Color) {
				table.SetCell(row, 0, tview.NewTableCell(label).SetTextColor(tcell.ColorYellow).SetAttributes(tcell.AttrBold))
				table.SetCell(row, 1, tview.NewTableCell(value).SetTextColor(color).SetAlign(tview.AlignRight).SetExpansion(1))
				row++
			}

			status := "FREE"
			statusColor := tcell.ColorGreen
			if v.Station.Status == models.StatusBusy {
				status = "BUSY"
				statusColor = tcell.ColorRed
			}
			if v.TimeUp {
				status = "TIME UP"
				statusColor = tcell.ColorOrange
			}
			put("STATE", status, statusColor)

			if v.Station.StartTime != nil {
				if v.Station.TargetEndTime != nil {
					put("LEFT", clock(v.Remaining), tcell.ColorAqua)
				} else {
					put("TIME", clock(v.Elapsed), tcell.ColorWhite)
				}
				put("T-FEE", money(v.TimeCost, d.cfg.CurrencyCode), tcell.ColorGreen)
			}
			if v.Station.MatchCount.IsPositive() {
				put("MATCH", v.Station.MatchCount.String(), tcell.ColorWhite)
				put("M-FEE", money(v.MatchCost, d.cfg.CurrencyCode), tcell.ColorGreen)
			}
			put("TOTAL", money(v.TotalCost, d.cfg.CurrencyCode), tcell.ColorWhite)

			col.AddItem(table, 0, 1, false)
			d.mainFlex.AddItem(col, 28, 0, false)
		}
		d.mainFlex.AddItem(nil, 0, 1, false)

		d.footer.SetText(fmt.Sprintf(
			" PLAY %s | FOOD %s | EXPENSES %s | NET %s | SESSIONS %d | UTIL %.0f%% ",
			money(stats.TotalPlayRevenue, d.cfg.CurrencyCode),
			money(stats.TotalFoodRevenue, d.cfg.CurrencyCode),
			money(stats.TotalExpenses, d.cfg.CurrencyCode),
			money(stats.NetProfit, d.cfg.CurrencyCode),
			stats.TotalSessions,
			stats.Utilization,
		))
	})
}

func money(d decimal.Decimal, code string) string {
	return d.StringFixed(2) + " " + code
}

func clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
