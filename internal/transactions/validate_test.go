package transactions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reactbank/reactbank/internal/model"
)

func validTx(ref string) model.Transaction {
	return model.Transaction{
		RefID:         ref,
		TransferDate:  time.Date(2024, 10, 15, 12, 34, 56, 0, time.UTC),
		RecipientName: "John Doe",
		TransferName:  "Salary Payment",
		Amount:        decimal.RequireFromString("1500.00"),
	}
}

func TestValidate_Defaults(t *testing.T) {
	assert.Empty(t, Validate(Defaults()))
}

func TestValidate_DuplicateRef(t *testing.T) {
	errs := Validate([]model.Transaction{validTx("A1"), validTx("A2"), validTx("A1")})
	require.Len(t, errs, 1)
	assert.Equal(t, "ref_id", errs[0].Field)
	assert.Equal(t, "A1", errs[0].RefID)
	assert.Contains(t, errs[0].Error(), "duplicate")
}

func TestValidate_EmptyFields(t *testing.T) {
	tx := validTx("")
	tx.RecipientName = " "
	tx.TransferName = ""
	tx.TransferDate = time.Time{}

	errs := Validate([]model.Transaction{tx})
	fields := make([]string, len(errs))
	for i, e := range errs {
		fields[i] = e.Field
	}
	assert.ElementsMatch(t, []string{"ref_id", "recipient_name", "transfer_name", "transfer_date"}, fields)
	assert.Equal(t, "#1", errs[0].RefID)
}

func TestValidate_AmountPrecision(t *testing.T) {
	tx := validTx("A1")
	tx.Amount = decimal.RequireFromString("10.005")

	errs := Validate([]model.Transaction{tx})
	require.Len(t, errs, 1)
	assert.Equal(t, "amount", errs[0].Field)
	assert.Contains(t, errs[0].Error(), "more than 2 decimal places")

	tx.Amount = decimal.RequireFromString("-10.50")
	assert.Empty(t, Validate([]model.Transaction{tx}))
}
