package transactions

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/reactbank/reactbank/internal/model"
)

// Defaults returns the demo transaction list.
func Defaults() []model.Transaction {
	return []model.Transaction{
		mock("123ABC", "2024-10-15T12:34:56Z", "John Doe", "Salary Payment", "1500.00"),
		mock("456DEF", "2024-09-21T09:12:45Z", "Jane Smith", "Invoice Payment", "2300.75"),
		mock("789GHI", "2024-10-05T16:18:30Z", "Robert Brown", "Refund", "-500.00"),
		mock("101JKL", "2024-08-30T11:47:22Z", "Emily Davis", "Bonus Payment", "1200.00"),
		mock("FGT536", "2025-09-21T07:12:45Z", "Jane Smith", "Invoice Payment", "2399.75"),
		mock("KWP017", "2024-11-01T16:19:30Z", "Robert Brown", "Refund", "-129.00"),
		mock("P77561", "2026-07-20T11:48:22Z", "Emily Davis", "Bonus Payment", "1970.75"),
	}
}

func mock(ref, date, recipient, transfer, amount string) model.Transaction {
	t, err := time.Parse(time.RFC3339, date)
	if err != nil {
		panic(err)
	}
	return model.Transaction{
		RefID:         ref,
		TransferDate:  t,
		RecipientName: recipient,
		TransferName:  transfer,
		Amount:        decimal.RequireFromString(amount),
	}
}
