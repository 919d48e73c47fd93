package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction tells whether money came in or went out.
type Direction string

const (
	Incoming Direction = "incoming"
	Outgoing Direction = "outgoing"
)

// Badge is the upper-case label shown on receipts.
func (d Direction) Badge() string {
	if d == Outgoing {
		return "OUTGOING"
	}
	return "INCOMING"
}

// Transaction is one row of the transaction list. Amount is in the base
// currency; a negative amount is money sent.
type Transaction struct {
	RefID         string          `json:"refId"`
	TransferDate  time.Time       `json:"transferDate"`
	RecipientName string          `json:"recipientName"`
	TransferName  string          `json:"transferName"`
	Amount        decimal.Decimal `json:"amount"`
}

// Direction is Outgoing for negative amounts and Incoming otherwise.
func (t Transaction) Direction() Direction {
	if t.Amount.IsNegative() {
		return Outgoing
	}
	return Incoming
}
