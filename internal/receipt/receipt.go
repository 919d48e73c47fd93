// Package receipt builds, renders and stores transaction receipts.
package receipt

import (
	"fmt"
	"time"

	"github.com/reactbank/reactbank/internal/currency"
	"github.com/reactbank/reactbank/internal/id"
	"github.com/reactbank/reactbank/internal/model"
	"github.com/reactbank/reactbank/internal/money"
	"github.com/reactbank/reactbank/internal/rates"
)

// Brand is printed in the receipt header and footer.
const Brand = "ReactBank"

// Row is one labelled detail line.
type Row struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Receipt is everything a renderer needs. Amounts are already formatted.
type Receipt struct {
	Number      string          `json:"receipt_number"`
	RefID       string          `json:"ref_id"`
	Currency    currency.Code   `json:"currency"`
	Amount      money.Display   `json:"amount"`
	Original    *money.Display  `json:"original,omitempty"`
	Direction   model.Direction `json:"direction"`
	Badge       string          `json:"badge"`
	Rows        []Row           `json:"rows"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// GeneratedOn is the footer timestamp line.
func (r Receipt) GeneratedOn() string {
	return "Generated on " + money.FormatDate(r.GeneratedAt)
}

// Builder turns transactions into receipts.
type Builder struct {
	Converter money.Converter
	Formatter money.Formatter
	number    func() string
}

// NewBuilder creates a Builder with its own receipt number generator.
func NewBuilder(conv money.Converter, f money.Formatter) (*Builder, error) {
	gen, err := id.ReceiptNumberGenerator()
	if err != nil {
		return nil, fmt.Errorf("creating receipt builder: %w", err)
	}
	return &Builder{Converter: conv, Formatter: f, number: gen}, nil
}

var defaultBuilder = mustBuilder()

func mustBuilder() *Builder {
	b, err := NewBuilder(money.Converter{}, money.Formatter{Locale: money.DefaultLocale})
	if err != nil {
		panic(err)
	}
	return b
}

// Build uses a Builder with the default converter and locale.
func Build(tx model.Transaction, code currency.Code, table rates.Table, now time.Time) Receipt {
	return defaultBuilder.Build(tx, code, table, now)
}

// Build converts tx.Amount into code and lays out the receipt. The original
// base amount is included, unsigned, only when code is not the base currency.
func (b *Builder) Build(tx model.Transaction, code currency.Code, table rates.Table, now time.Time) Receipt {
	converted := b.Converter.Amount(tx.Amount, table, code)
	amount := b.Formatter.Currency(converted, code)

	r := Receipt{
		Number:    b.number(),
		RefID:     tx.RefID,
		Currency:  code,
		Amount:    amount,
		Direction: tx.Direction(),
		Badge:     model.Incoming.Badge(),
		Rows: []Row{
			{Label: "Reference ID", Value: tx.RefID},
			{Label: "Date", Value: money.FormatDate(tx.TransferDate)},
			{Label: "Recipient Name", Value: tx.RecipientName},
			{Label: "Transfer Type", Value: tx.TransferName},
		},
		GeneratedAt: now,
	}
	if amount.IsNegative {
		r.Badge = model.Outgoing.Badge()
	}
	if !code.IsBase() {
		original := b.Formatter.Currency(tx.Amount, currency.Base, money.HideSign())
		r.Original = &original
	}
	return r
}
