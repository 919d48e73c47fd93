package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/reactbank/reactbank/internal/app"
	"github.com/reactbank/reactbank/internal/chart"
	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/receipt"
)

const (
	defaultChartWidth  = 72
	defaultChartHeight = 18
)

func printSummary(w io.Writer, s app.Summary) {
	fmt.Fprintf(w, "Total Balance (%s)  %s\n", s.Currency, s.Total)
	fmt.Fprintf(w, "%d transactions, last updated %s\n", s.Count, s.LastUpdated.Local().Format("3:04 PM"))
	if s.RateError != "" {
		fmt.Fprintf(w, "! %s\n", s.RateError)
	}
}

func printList(w io.Writer, a *app.App) error {
	printSummary(w, a.Summary())
	fmt.Fprintln(w)

	rows := a.List()
	if len(rows) == 0 {
		fmt.Fprintln(w, "No transactions.")
		return nil
	}

	converted := rows[0].Converted != nil
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := "REF\tDATE\tRECIPIENT\tTRANSFER\tAMOUNT"
	if converted {
		header += "\t" + a.Store.Snapshot().Selected.String()
	}
	fmt.Fprintln(tw, header)
	for _, r := range rows {
		line := strings.Join([]string{r.RefID, r.Date, r.RecipientName, r.TransferName, r.Amount.Value}, "\t")
		if r.Converted != nil {
			line += "\t" + r.Converted.Value
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func printBalance(w io.Writer, a *app.App, withChart bool, width, height int) error {
	printSummary(w, a.Summary())
	if !withChart {
		return nil
	}

	points, code := a.BalanceSeries()
	fmt.Fprintln(w)
	return chart.Render(w, points, "Running balance ("+code.String()+")", width, height)
}

// printReceipt writes the text receipt for refID without recording it.
func printReceipt(w io.Writer, a *app.App, refID string) error {
	rc, err := a.Receipt(refID)
	if err != nil {
		return err
	}
	return receipt.TextRenderer{}.Render(w, rc)
}

func saveReceipt(w io.Writer, a *app.App, refID, format string) error {
	rc, err := a.Receipt(refID)
	if err != nil {
		return err
	}
	path, err := a.Receipts.Save(rc, format)
	if err != nil {
		if errors.Is(err, receipt.ErrUnknownFormat) {
			return err
		}
		fmt.Fprintln(w, receipt.SaveFailedMessage)
		return err
	}
	fmt.Fprintf(w, receipt.SavedMessage+"\n", path)
	return nil
}

// shareReceipt writes the receipt to target, or to w when target is empty.
func shareReceipt(w io.Writer, a *app.App, refID, format, target string) (err error) {
	rc, err := a.Receipt(refID)
	if err != nil {
		return err
	}
	if _, err := a.Receipts.Renderer(format); err != nil {
		return err
	}

	dst := w
	if target != "" && target != "-" {
		f, cerr := os.Create(target)
		if cerr != nil {
			fmt.Fprintln(w, receipt.ShareFailedMessage)
			return fmt.Errorf("creating %s: %w", target, cerr)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing %s: %w", target, cerr)
			}
		}()
		dst = f
	}

	if err := a.Receipts.Share(dst, rc, format, target); err != nil {
		fmt.Fprintln(w, receipt.ShareFailedMessage)
		return err
	}
	return nil
}

func printRates(ctx context.Context, w io.Writer, a *app.App) error {
	table, err := a.Rates.Fetch(ctx, currency.Base)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "CODE\tCURRENCY\t1 %s =\n", currency.Base)
	for _, c := range currency.Supported() {
		if c.Code.IsBase() {
			continue
		}
		rate := "unavailable"
		if r, ok := table.Rate(c.Code); ok {
			rate = r.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Code, c.Label, rate)
	}
	return tw.Flush()
}

func refresh(ctx context.Context, w io.Writer, a *app.App) error {
	if err := a.Transactions.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintf(w, "Refreshed %d transactions.\n", len(a.Transactions.All()))
	return nil
}
