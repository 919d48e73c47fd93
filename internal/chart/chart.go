// Package chart plots the running account balance in the terminal.
package chart

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vdobler/chart"
	"github.com/vdobler/chart/txtg"

	"github.com/reactbank/reactbank/internal/model"
)

const (
	MinWidth  = 20
	MinHeight = 8

	lineSymbol  = '░'
	pointSymbol = '█'
)

var (
	ErrNoData   = errors.New("no transactions to chart")
	ErrTooSmall = fmt.Errorf("chart needs at least %dx%d cells", MinWidth, MinHeight)
)

// Point is the balance right after one transaction.
type Point struct {
	Time    time.Time
	Balance decimal.Decimal
}

// RunningBalance orders txs by transfer date and accumulates their amounts.
// convert maps each amount before it is added; nil keeps amounts as they are.
func RunningBalance(txs []model.Transaction, convert func(decimal.Decimal) decimal.Decimal) []Point {
	sorted := slices.Clone(txs)
	slices.SortStableFunc(sorted, func(a, b model.Transaction) int {
		return a.TransferDate.Compare(b.TransferDate)
	})

	points := make([]Point, 0, len(sorted))
	balance := decimal.Zero
	for _, tx := range sorted {
		amount := tx.Amount
		if convert != nil {
			amount = convert(amount)
		}
		balance = balance.Add(amount)
		points = append(points, Point{Time: tx.TransferDate, Balance: balance})
	}
	return points
}

// Render draws points as a line chart of width x height cells.
func Render(w io.Writer, points []Point, title string, width, height int) error {
	if len(points) == 0 {
		return ErrNoData
	}
	if width < MinWidth || height < MinHeight {
		return ErrTooSmall
	}

	data := make([]chart.EPoint, len(points))
	for i, p := range points {
		data[i] = chart.EPoint{X: float64(p.Time.Unix()), Y: p.Balance.InexactFloat64()}
	}

	tgr := txtg.New(width, height)
	c := chart.ScatterChart{
		Key:    chart.Key{Hide: true},
		YRange: chart.Range{},
		XRange: chart.Range{Time: true},
	}
	c.Title = title
	c.AddData("Balance", data, chart.PlotStyleLines, chart.Style{Symbol: lineSymbol})
	c.AddData("Latest", data[len(data)-1:], chart.PlotStylePoints, chart.Style{Symbol: pointSymbol})
	c.Plot(tgr)

	_, err := fmt.Fprintln(w, tgr.String())
	return err
}
